package gcs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectName(t *testing.T) {
	assert.Equal(t, "profile-pictures/u1/abc.png", objectName("u1", "abc", "image/png"))
	assert.Equal(t, "profile-pictures/u1/abc.jpg", objectName("u1", "abc", "IMAGE/JPEG"))
	assert.Equal(t, "profile-pictures/u1/abc", objectName("u1", "abc", "image/tiff"))
}

func TestSanitizePathSegment(t *testing.T) {
	assert.Equal(t, "a_b_c", sanitizePathSegment(" a/b\\c "))
	assert.Equal(t, "", sanitizePathSegment(" .. "))
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t,
		"https://storage.googleapis.com/bkt/profile-pictures/u%201/x.png",
		PublicURL("bkt", "profile-pictures/u 1/x.png"))
}

func TestPut_RequiresClientAndBucket(t *testing.T) {
	_, err := NewPictureStoreGCS(nil, "b").Put(context.Background(), "u", "image/png", []byte{1})
	assert.Error(t, err)
}
