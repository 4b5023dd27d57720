package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateKey(t *testing.T) {
	key := GenerateKey("listings", 12, "Desk Lamp.JPG")

	assert.True(t, strings.HasPrefix(key, "listings/12/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
	assert.NotEqual(t, key, GenerateKey("listings", 12, "Desk Lamp.JPG"))
}

func TestPublicURL(t *testing.T) {
	tests := []struct {
		name   string
		client *S3Client
		want   string
	}{
		{
			name:   "cdn",
			client: &S3Client{bucket: "titan", cdnURL: "https://cdn.example.com", endpoint: "http://minio:9000"},
			want:   "https://cdn.example.com/listings/a.jpg",
		},
		{
			name:   "path style endpoint",
			client: &S3Client{bucket: "titan", endpoint: "http://localhost:9000", forcePathStyle: true},
			want:   "http://localhost:9000/titan/listings/a.jpg",
		},
		{
			name:   "aws",
			client: &S3Client{bucket: "titan"},
			want:   "https://titan.s3.amazonaws.com/listings/a.jpg",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.client.PublicURL("listings/a.jpg"))
		})
	}
}

func TestNewS3Client(t *testing.T) {
	_, err := NewS3Client(S3Config{})
	assert.Error(t, err)

	c, err := NewS3Client(S3Config{Bucket: "titan", BasePath: "/uploads/", CDNURL: "https://cdn.example.com/"})
	require.NoError(t, err)
	assert.Equal(t, "uploads/profiles/1/a.png", c.objectKey("/profiles/1/a.png"))
	assert.Equal(t, "https://cdn.example.com/x", c.PublicURL("x"))
}
