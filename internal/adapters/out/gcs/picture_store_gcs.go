package gcs

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

const picturePrefix = "profile-pictures"

// PictureStoreGCS implements user.PictureStore on a public bucket.
type PictureStoreGCS struct {
	Client *storage.Client
	Bucket string
}

func NewPictureStoreGCS(client *storage.Client, bucket string) *PictureStoreGCS {
	return &PictureStoreGCS{Client: client, Bucket: strings.TrimSpace(bucket)}
}

// Put writes data under profile-pictures/<uid>/<id><ext> and returns the
// public object URL. Every upload gets a new name so caches never serve a
// stale picture.
func (s *PictureStoreGCS) Put(ctx context.Context, uid, contentType string, data []byte) (string, error) {
	if s.Client == nil {
		return "", errors.New("PictureStoreGCS: nil storage client")
	}
	if s.Bucket == "" {
		return "", errors.New("PictureStoreGCS: bucket is empty")
	}
	uid = sanitizePathSegment(uid)
	if uid == "" {
		return "", errors.New("PictureStoreGCS: uid is empty")
	}
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}

	obj := objectName(uid, id.String(), contentType)
	w := s.Client.Bucket(s.Bucket).Object(obj).NewWriter(ctx)
	w.ContentType = strings.TrimSpace(contentType)
	w.CacheControl = "public, max-age=31536000"

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("PictureStoreGCS: write %s: %w", obj, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("PictureStoreGCS: close %s: %w", obj, err)
	}
	return PublicURL(s.Bucket, obj), nil
}

func objectName(uid, id, contentType string) string {
	return picturePrefix + "/" + uid + "/" + extensionByMIME(id, contentType)
}

// PublicURL is the storage.googleapis.com address of an object.
func PublicURL(bucket, object string) string {
	segs := strings.Split(object, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return "https://storage.googleapis.com/" + bucket + "/" + strings.Join(segs, "/")
}

// sanitizePathSegment removes separators and surrounding dots/spaces.
func sanitizePathSegment(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, "/", "_")
	return strings.Trim(s, ". ")
}

// extensionByMIME appends an image extension derived from mime.
func extensionByMIME(name, mime string) string {
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case "image/jpeg", "image/jpg":
		return name + ".jpg"
	case "image/png":
		return name + ".png"
	case "image/webp":
		return name + ".webp"
	case "image/gif":
		return name + ".gif"
	default:
		return name
	}
}
