package upload

import (
	"bytes"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// PreviewSize bounds both sides of a preview thumbnail.
const PreviewSize = 300

// Preview renders a JPEG thumbnail of the selected file for immediate
// feedback. It is unrelated to the annotated image the server returns.
func Preview(file *SelectedFile) ([]byte, error) {
	if file == nil {
		return nil, ErrNoFile
	}

	img, err := imaging.Decode(bytes.NewReader(file.Data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrap(err, "couldn't decode image for preview")
	}

	//Fit never upscales, small images keep their size
	thumb := imaging.Fit(img, PreviewSize, PreviewSize, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, errors.Wrap(err, "couldn't encode preview")
	}
	return buf.Bytes(), nil
}
