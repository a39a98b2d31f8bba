package upload

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofrs/uuid"
	"github.com/pkg/errors"
)

var (
	ErrNoFile       = errors.New("no file dropped")
	ErrTooManyFiles = errors.New("only a single file can be dropped at once")
	ErrNotAnImage   = errors.New("File must be an image")
)

// SelectedFile is the image a session currently holds. A new selection
// always replaces it; the ID is unique per selection.
type SelectedFile struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	MediaType string `json:"media_type"`
	Data      []byte `json:"data"`
}

// NewSelectedFile sniffs the media type of data and refuses anything that
// is not an image.
func NewSelectedFile(name string, data []byte) (*SelectedFile, error) {
	if len(data) == 0 {
		return nil, ErrNoFile
	}

	mediaType := mimetype.Detect(data).String()
	if !IsImage(mediaType) {
		return nil, errors.Wrapf(ErrNotAnImage, "%s is %s", name, mediaType)
	}

	return &SelectedFile{
		ID:        uuid.Must(uuid.NewV4()).String(),
		Name:      filepath.Base(name),
		MediaType: mediaType,
		Data:      data,
	}, nil
}

// ReadSelectedFile loads a file from disk as a selection.
func ReadSelectedFile(path string) (*SelectedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't read image")
	}
	return NewSelectedFile(path, data)
}

func IsImage(mediaType string) bool {
	return strings.HasPrefix(mediaType, "image/")
}

func (f *SelectedFile) Size() int {
	if f == nil {
		return 0
	}
	return len(f.Data)
}
