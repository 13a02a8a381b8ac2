// Package ocr turns receipt images into recognized text. The portal treats
// recognition as an opaque collaborator: bytes in, text out.
package ocr

import "context"

// Recognizer extracts text from an image.
type Recognizer interface {
	RecognizeText(ctx context.Context, image []byte) (string, error)
}
