//go:build !tesseract

package execution

import (
	"fmt"

	"github.com/ocracle/ocracle/internal/models"
)

// TesseractAvailable reports whether this binary was built with the tesseract tag.
const TesseractAvailable = false

// NewTesseractTranscriber fails without the tesseract build tag, which needs libtesseract and cgo.
func NewTesseractTranscriber(handle models.ModelHandle, _ ClientOptions) (Transcriber, error) {
	return nil, fmt.Errorf("%s: rebuild with -tags tesseract to enable the local Tesseract engine", handle.Provider)
}
