// Package media decodes visitor screenshots and writes them to storage.
package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidImage is returned when a data URL cannot be decoded into image bytes.
	ErrInvalidImage = errors.New("invalid image")

	// ErrStorageUnavailable is returned when decoded bytes cannot be written.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Decode turns "<prefix>,<base64-payload>" into raw bytes. Everything up to
// the first comma is discarded.
func Decode(dataURL string) ([]byte, error) {
	_, payload, ok := strings.Cut(dataURL, ",")
	if !ok {
		return nil, fmt.Errorf("%w: missing data url separator", ErrInvalidImage)
	}
	payload = strings.TrimSpace(payload)

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// some canvas encoders drop the padding
		var rawErr error
		data, rawErr = base64.RawStdEncoding.DecodeString(payload)
		if rawErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
		}
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidImage)
	}
	return data, nil
}
