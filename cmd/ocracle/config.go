package main

import (
	"github.com/ocracle/ocracle/internal/config"
)

// loadConfig reads an explicit config file, or walks up from the working
// directory when path is empty.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load(".")
}
