package icons

import (
	"bytes"
	"fmt"

	"github.com/franz/steam-icon-janitor/internal/util"
)

// MinImageSize is the smallest body accepted as an image
const MinImageSize = 100

var imageSignatures = []struct {
	format string
	magic  []byte
}{
	{"ico", []byte{0x00, 0x00, 0x01, 0x00}},
	{"jpeg", []byte{0xFF, 0xD8, 0xFF}},
	{"png", []byte{0x89, 0x50, 0x4E, 0x47}},
	{"bmp", []byte{0x42, 0x4D}},
}

// ValidateImage checks that data is long enough and starts with a known
// image signature. It returns the detected format.
func ValidateImage(data []byte) (string, error) {
	if len(data) < MinImageSize {
		return "", fmt.Errorf("body is %d bytes, need at least %d: %w", len(data), MinImageSize, util.ErrValidation)
	}
	for _, sig := range imageSignatures {
		if bytes.HasPrefix(data, sig.magic) {
			return sig.format, nil
		}
	}
	return "", fmt.Errorf("unrecognized image signature % x: %w", data[:4], util.ErrValidation)
}
