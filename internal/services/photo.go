package services

import (
	"fmt"
	"net/http"
)

// DefaultMaxPhotoBytes is the upload ceiling for check-in photos.
const DefaultMaxPhotoBytes int64 = 5 << 20

// photoExtensions maps the accepted sniffed types to stored extensions.
var photoExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

// ValidatePhoto checks an upload against the photo rules and returns the
// extension to store it under. head holds the first bytes of the file and
// is sniffed rather than trusting the client's content type.
func ValidatePhoto(head []byte, size, maxBytes int64) (string, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxPhotoBytes
	}
	if size <= 0 {
		return "", invalid("photo is empty", "photo")
	}
	if size > maxBytes {
		return "", invalid(fmt.Sprintf("photo exceeds %d MB", maxBytes>>20), "photo")
	}
	ext, ok := photoExtensions[http.DetectContentType(head)]
	if !ok {
		return "", invalid("only JPG and PNG photos are allowed", "photo")
	}
	return ext, nil
}
