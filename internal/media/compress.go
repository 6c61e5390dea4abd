package media

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

// Bounding box an uploaded image has to fit in before it goes to the host.
// Video is never touched.
const (
	MaxImageWidth  = 1920
	MaxImageHeight = 1080
)

// CompressImage downsamples an oversized image to the bounding box,
// preserving aspect ratio, and re-encodes it as JPEG at the given quality.
// Images already inside the box pass through untouched; the bool reports
// whether a re-encode happened.
func CompressImage(data []byte, quality int) ([]byte, bool, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, false, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() <= MaxImageWidth && bounds.Dy() <= MaxImageHeight {
		return data, false, nil
	}

	fitted := imaging.Fit(img, MaxImageWidth, MaxImageHeight, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, fitted, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, false, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), true, nil
}
