package storage

import (
	"fmt"
	"strings"
)

// AllowedContentTypes are the MIME types accepted for lead media: documents
// and call recordings.
var AllowedContentTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"text/plain": true,

	"audio/mpeg":  true,
	"audio/mp4":   true,
	"audio/wav":   true,
	"audio/x-wav": true,
	"audio/ogg":   true,
	"audio/webm":  true,

	"video/mp4":  true,
	"video/webm": true,
}

// NormalizeContentType drops parameters such as charset and lowercases.
func NormalizeContentType(contentType string) string {
	mediaType, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func checkContentType(contentType string) error {
	if !AllowedContentTypes[NormalizeContentType(contentType)] {
		return fmt.Errorf("content type %q is not allowed", contentType)
	}
	return nil
}

func checkFileSize(size, limit int64) error {
	switch {
	case size <= 0:
		return fmt.Errorf("file is empty")
	case limit > 0 && size > limit:
		return fmt.Errorf("file is %d bytes, limit is %d", size, limit)
	}
	return nil
}
