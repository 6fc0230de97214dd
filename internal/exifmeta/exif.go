// Package exifmeta extracts the capture timestamp from image metadata.
// The catalog treats its output as an opaque optional timestamp.
package exifmeta

import (
	"fmt"
	"os"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// CaptureTime reads the original capture time from the EXIF block of the
// file at path. Files without usable EXIF data return an error; callers
// treat that as "no capture time", not as a failed file.
func CaptureTime(path string) (time.Time, error) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to decode exif: %w", err)
	}

	t, err := x.DateTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("no capture time in exif: %w", err)
	}
	return t, nil
}
