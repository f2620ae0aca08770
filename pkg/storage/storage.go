package storage

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

const (
	// FolderPhotos is the key prefix for photo objects.
	FolderPhotos = "photos"
)

// Blob stores and removes uploaded files.
type Blob interface {
	// Put stores body under key and returns the URL clients fetch it from.
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Allowed photo MIME types and extensions.
var (
	AllowedPhotoTypes = map[string]string{
		"image/jpeg": ".jpg",
		"image/jpg":  ".jpg",
		"image/png":  ".png",
		"image/webp": ".webp",
		"image/gif":  ".gif",
	}
	AllowedPhotoExtensions = map[string]string{
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".png":  "image/png",
		".webp": "image/webp",
		".gif":  "image/gif",
	}
)

// ValidatePhotoFileType returns true if the content type and/or extension are allowed for photos.
func ValidatePhotoFileType(contentType, filename string) bool {
	if contentType != "" {
		if _, ok := AllowedPhotoTypes[strings.ToLower(contentType)]; ok {
			return true
		}
	}
	if ext := strings.ToLower(path.Ext(filename)); ext != "" {
		if _, ok := AllowedPhotoExtensions[ext]; ok {
			return true
		}
	}
	return false
}

// ContentTypeForFilename returns the MIME type for a photo filename extension.
func ContentTypeForFilename(filename string) string {
	if ct, ok := AllowedPhotoExtensions[strings.ToLower(path.Ext(filename))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// PhotoKey returns a fresh object key: photos/{uuid}{ext}. The client filename only
// contributes its extension.
func PhotoKey(filename, contentType string) string {
	ext := strings.ToLower(path.Ext(filename))
	if _, ok := AllowedPhotoExtensions[ext]; !ok {
		ext = AllowedPhotoTypes[strings.ToLower(contentType)]
	}
	return path.Join(FolderPhotos, uuid.New().String()+ext)
}
