package upload

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Selector receives accepted files. The submission controller implements it:
// storing the file and resetting the session to Idle.
type Selector interface {
	Select(ctx context.Context, sessionID string, file *SelectedFile) error
}

// Candidate is one file offered to the surface in a single interaction.
type Candidate struct {
	Name string
	Data []byte
}

// Surface is the drop/click target. It accepts exactly one image per
// interaction and forwards it to the Selector.
type Surface struct {
	selector Selector
}

func NewSurface(selector Selector) *Surface {
	return &Surface{selector: selector}
}

// Drop offers candidates to the surface. Rejections leave the session
// untouched; the returned error only tells the caller why.
func (s *Surface) Drop(ctx context.Context, sessionID string, candidates []Candidate) (*SelectedFile, error) {
	if len(candidates) == 0 {
		log.Debug("[Upload] Ignoring empty drop for session ", sessionID)
		return nil, ErrNoFile
	}
	if len(candidates) > 1 {
		log.Debug("[Upload] Rejecting drop of ", len(candidates), " files for session ", sessionID)
		return nil, ErrTooManyFiles
	}

	file, err := NewSelectedFile(candidates[0].Name, candidates[0].Data)
	if err != nil {
		log.Debug("[Upload] Rejecting file: ", err.Error())
		return nil, err
	}

	if err := s.accept(ctx, sessionID, file); err != nil {
		return nil, err
	}
	return file, nil
}

// DropPath reads a single file from disk and offers it to the surface.
func (s *Surface) DropPath(ctx context.Context, sessionID string, path string) (*SelectedFile, error) {
	file, err := ReadSelectedFile(path)
	if err != nil {
		log.Debug("[Upload] Rejecting ", path, ": ", err.Error())
		return nil, err
	}

	if err := s.accept(ctx, sessionID, file); err != nil {
		return nil, err
	}
	return file, nil
}

func (s *Surface) accept(ctx context.Context, sessionID string, file *SelectedFile) error {
	log.WithFields(log.Fields{
		"session":    sessionID,
		"file":       file.Name,
		"media_type": file.MediaType,
		"bytes":      file.Size(),
	}).Debug("[Upload] Accepted file")

	if err := s.selector.Select(ctx, sessionID, file); err != nil {
		return errors.Wrap(err, "couldn't select file")
	}
	return nil
}

// IsRejection reports whether err is one of the silent rejections of Drop.
func IsRejection(err error) bool {
	cause := errors.Cause(err)
	return cause == ErrNoFile || cause == ErrTooManyFiles || cause == ErrNotAnImage
}
