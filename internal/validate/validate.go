// Package validate checks upload input before anything touches a store.
package validate

import (
	"bytes"
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"time"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// ValidationError names the field that failed so the caller can report it.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

var allowedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// ReceiptName requires a non-empty name.
func ReceiptName(name string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: "name", Msg: "required"}
	}
	return nil
}

// ReceiptDate requires a parseable YYYY-MM-DD date. The asset identifier
// embeds it, so uploads cannot degrade silently the way search filters do.
func ReceiptDate(date string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return &ValidationError{Field: "date", Msg: "must be YYYY-MM-DD"}
	}
	return nil
}

// Image checks the filename extension, the size ceiling, and that the bytes
// decode as one of the supported image formats.
func Image(filename string, data []byte, maxBytes int64) error {
	if !allowedExt[strings.ToLower(filepath.Ext(filename))] {
		return &ValidationError{Field: "image", Msg: "only jpg, png or webp files allowed"}
	}
	if int64(len(data)) > maxBytes {
		return &ValidationError{Field: "image", Msg: fmt.Sprintf("larger than %d bytes", maxBytes)}
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return &ValidationError{Field: "image", Msg: "not a decodable image"}
	}
	return nil
}
