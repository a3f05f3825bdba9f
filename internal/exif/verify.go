package exif

import (
	"os"

	goexif "github.com/rwcarlsen/goexif/exif"
)

// ReadCaptureDate decodes the file's EXIF block and returns the recorded
// DateTimeOriginal value, for read-back verification after a date stamp.
func ReadCaptureDate(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	x, err := goexif.Decode(f)
	if err != nil {
		return "", err
	}

	tag, err := x.Get(goexif.DateTimeOriginal)
	if err != nil {
		return "", err
	}
	return tag.StringVal()
}
