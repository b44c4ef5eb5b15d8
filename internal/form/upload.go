package form

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
)

// MaxPictureSize is the largest accepted picture in bytes.
const MaxPictureSize = 5 * 1024 * 1024

// Upload errors. Their text is shown to the user as-is.
var (
	ErrPictureType = errors.New("Image must be PNG or JPEG")        //nolint:staticcheck // User-facing message.
	ErrPictureSize = errors.New("Image size must be less than 5MB") //nolint:staticcheck // User-facing message.
)

// CheckUpload accepts PNG or JPEG content of at most MaxPictureSize bytes.
func CheckUpload(contentType string, size int64) error {
	if contentType != "image/png" && contentType != "image/jpeg" {
		return ErrPictureType
	}
	if size > MaxPictureSize {
		return ErrPictureSize
	}
	return nil
}

// PictureDataURL reads the image at path, checks it with CheckUpload using
// the sniffed content type and returns it as a base64 data URL.
func PictureDataURL(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("reading picture: %w", err)
	}
	if info.Size() > MaxPictureSize {
		return "", ErrPictureSize
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading picture: %w", err)
	}
	contentType := http.DetectContentType(data)
	if err := CheckUpload(contentType, int64(len(data))); err != nil {
		return "", err
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
