package models

import (
	"path/filepath"
	"strings"
)

// GroundTruthSuffix is appended to an image's base name to locate its transcription.
const GroundTruthSuffix = ".gt.txt"

// ImageExtensions lists the file extensions treated as benchmark images.
var ImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp", ".tiff", ".tif"}

// IsImageFile reports whether name carries one of ImageExtensions (case-insensitive).
func IsImageFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range ImageExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// ImageTask is one source image paired with its ground truth.
type ImageTask struct {
	// Path is where the image can be read from.
	Path string `json:"path"`
	// RelPath identifies the image relative to the data root, with forward slashes.
	// Result files mirror this layout.
	RelPath     string `json:"rel_path"`
	GroundTruth string `json:"ground_truth"`
}

// Name returns the image file name.
func (t ImageTask) Name() string {
	return filepath.Base(t.Path)
}

// ImageStem strips the final extension from an image file name.
// Inner extensions survive: "00001.bin.png" becomes "00001.bin".
func ImageStem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// GroundTruthPath returns the sibling ground-truth file for an image.
// "00001.bin.png" and "00001.png" both map to "00001.gt.txt".
func GroundTruthPath(imagePath string) string {
	dir, name := filepath.Split(imagePath)
	stem := strings.TrimSuffix(ImageStem(name), ".bin")
	return filepath.Join(dir, stem+GroundTruthSuffix)
}
