package execution

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	// decoders for formats most vision APIs reject
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/ocracle/ocracle/internal/models"
)

// mediaTypes maps extensions to the MIME type sent with the image.
var mediaTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
}

// convertToPNG lists media types re-encoded as PNG before they are sent anywhere.
var convertToPNG = map[string]bool{
	"image/bmp":  true,
	"image/tiff": true,
}

// Payload is an image prepared for one provider.
type Payload struct {
	Encoding  models.Encoding
	MediaType string
	// Data is always populated; DataURL only for EncodingDataURL.
	Data    []byte
	DataURL string
}

// Base64 returns the standard base64 form of the image bytes.
func (p Payload) Base64() string {
	return base64.StdEncoding.EncodeToString(p.Data)
}

// LoadPayload reads an image and prepares it for the given encoding.
func LoadPayload(path string, enc models.Encoding) (Payload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Payload{}, fmt.Errorf("reading image: %w", err)
	}
	return EncodePayload(data, filepath.Ext(path), enc)
}

// EncodePayload prepares raw image bytes. ext picks the media type; unknown
// extensions fall back to content sniffing.
func EncodePayload(data []byte, ext string, enc models.Encoding) (Payload, error) {
	mediaType, ok := mediaTypes[strings.ToLower(ext)]
	if !ok {
		mediaType = http.DetectContentType(data)
	}

	if convertToPNG[mediaType] {
		converted, err := reencodePNG(data)
		if err != nil {
			return Payload{}, fmt.Errorf("converting %s to png: %w", mediaType, err)
		}
		data = converted
		mediaType = "image/png"
	}

	p := Payload{Encoding: enc, MediaType: mediaType, Data: data}
	if enc == models.EncodingDataURL {
		p.DataURL = "data:" + mediaType + ";base64," + p.Base64()
	}
	return p, nil
}

func reencodePNG(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
