package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"leadportal_backend/platform/apperr"

	"github.com/google/uuid"
)

// MediaUploader validates lead attachments, stores them and returns their
// public URL.
type MediaUploader struct {
	store      ObjectStore
	publicBase string
	maxSize    int64
	suffix     func() string
}

// NewMediaUploader creates an uploader. publicBase is the externally reachable
// prefix of the bucket, e.g. "https://cdn.example.com/lead-media". A maxSize
// of zero disables the size ceiling.
func NewMediaUploader(store ObjectStore, publicBase string, maxSize int64) *MediaUploader {
	return &MediaUploader{
		store:      store,
		publicBase: strings.TrimRight(publicBase, "/"),
		maxSize:    maxSize,
		suffix:     func() string { return uuid.NewString()[:8] },
	}
}

// UploadMedia checks and stores one attachment under folder.
func (u *MediaUploader) UploadMedia(ctx context.Context, folder, fileName, contentType string, reader io.Reader, size int64) (string, error) {
	if err := checkContentType(contentType); err != nil {
		return "", apperr.Validation(err.Error())
	}
	if err := checkFileSize(size, u.maxSize); err != nil {
		return "", apperr.Validation(err.Error())
	}

	key := ObjectKey(folder, fileName, u.suffix())
	if err := u.store.PutObject(ctx, key, NormalizeContentType(contentType), reader, size); err != nil {
		return "", err
	}
	return u.URL(key), nil
}

// URL renders the public location of an object key.
func (u *MediaUploader) URL(key string) string {
	if u.publicBase == "" {
		return "/" + u.store.Bucket() + "/" + key
	}
	return u.publicBase + "/" + key
}

// ObjectKey builds "<folder>/<base>_<suffix><ext>" from an uploaded file name.
// Directory parts of fileName are discarded.
func ObjectKey(folder, fileName, suffix string) string {
	name := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if name == "." || name == "/" {
		name = "file"
	}
	ext := path.Ext(name)
	return path.Join(folder, fmt.Sprintf("%s_%s%s", strings.TrimSuffix(name, ext), suffix, ext))
}
