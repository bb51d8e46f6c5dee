package utils

import (
	"fmt"
	"os"
)

// ReadCapture reads a capture file of one symbol per byte.
func ReadCapture(filename string) ([]byte, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read capture: %w", err)
	}
	return data, nil
}

func WriteCapture(filename string, data []byte) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(data); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return file.Close()
}

// WriteText writes s to filename followed by a newline.
func WriteText(filename, s string) error {
	return WriteCapture(filename, []byte(s+"\n"))
}
