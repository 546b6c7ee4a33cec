package face

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
)

// maxDimension is the longest side the recognizer receives.
const maxDimension = 1024

// maxPixels bounds width*height of an upload before it is decoded.
const maxPixels = 40_000_000

var acceptedTypes = []string{"image/jpeg", "image/png", "image/webp"}

// sniff returns the detected media type of data, or ErrInvalidImage when it is not an accepted type.
// The declared content type and filename are ignored.
func sniff(data []byte) (string, error) {
	mt := mimetype.Detect(data)
	for _, accepted := range acceptedTypes {
		if mt.Is(accepted) {
			return accepted, nil
		}
	}
	return "", fmt.Errorf("%w: unsupported type %s", ErrInvalidImage, mt.String())
}

// checkDimensions reads only the header of data and rejects images above maxPixels.
func checkDimensions(data []byte, mediaType string) error {
	var (
		cfg image.Config
		err error
	)
	if mediaType == "image/webp" {
		cfg, err = webp.DecodeConfig(bytes.NewReader(data))
	} else {
		cfg, _, err = image.DecodeConfig(bytes.NewReader(data))
	}
	if err != nil {
		return fmt.Errorf("%w: decode %s header: %v", ErrInvalidImage, mediaType, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrInvalidImage, cfg.Width, cfg.Height, maxPixels)
	}
	return nil
}

// decode sniffs and decodes data, applying EXIF orientation for jpeg.
func decode(data []byte) (image.Image, error) {
	mediaType, err := sniff(data)
	if err != nil {
		return nil, err
	}
	if err := checkDimensions(data, mediaType); err != nil {
		return nil, err
	}
	var img image.Image
	if mediaType == "image/webp" {
		img, err = webp.Decode(bytes.NewReader(data))
	} else {
		img, err = imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrInvalidImage, mediaType, err)
	}
	return img, nil
}

// encodeNormalized writes img as JPEG, shrunk to fit maxDimension. Smaller images keep their size.
func encodeNormalized(w io.Writer, img image.Image) error {
	fitted := imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)
	return imaging.Encode(w, fitted, imaging.JPEG, imaging.JPEGQuality(90))
}
