package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io"
	"net/http"

	"github.com/titanmarket/titanmarket-backend/internal/common"
	pkglogger "github.com/titanmarket/titanmarket-backend/pkg/logger"
	"github.com/titanmarket/titanmarket-backend/pkg/storage"
)

// Storage key prefixes
const (
	PrefixProfilePhotos = "profiles"
	PrefixListingImages = "listings"
)

// DefaultMaxImageSize is the upload limit used when none is configured
const DefaultMaxImageSize int64 = 5 << 20

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ObjectStore is the subset of the S3 client used for uploads
type ObjectStore interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string, size int64) (*storage.UploadResult, error)
}

// UploadFile is an uploaded file as received from a multipart form
type UploadFile struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// MediaUploadResult describes a stored image
type MediaUploadResult struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
}

// MediaService stores user images in object storage
type MediaService interface {
	UploadImage(ctx context.Context, prefix string, ownerID uint64, file *UploadFile) (*MediaUploadResult, error)
}

type mediaService struct {
	store   ObjectStore
	maxSize int64
}

// NewMediaService creates a MediaService. A nil store makes every upload fail with ErrStorageUnavailable.
func NewMediaService(store ObjectStore, maxSize int64) MediaService {
	if maxSize <= 0 {
		maxSize = DefaultMaxImageSize
	}
	return &mediaService{store: store, maxSize: maxSize}
}

func (s *mediaService) UploadImage(ctx context.Context, prefix string, ownerID uint64, file *UploadFile) (*MediaUploadResult, error) {
	if s.store == nil {
		return nil, common.ErrStorageUnavailable
	}
	if file.Size > s.maxSize {
		return nil, fmt.Errorf("%w (max %dMB)", common.ErrFileTooLarge, s.maxSize>>20)
	}

	// read one byte past the limit so an understated Size is still caught
	data, err := io.ReadAll(io.LimitReader(file.Content, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > s.maxSize {
		return nil, fmt.Errorf("%w (max %dMB)", common.ErrFileTooLarge, s.maxSize>>20)
	}

	contentType := http.DetectContentType(data)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", common.ErrUnsupportedFile, contentType)
	}

	var width, height int
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		width, height = cfg.Width, cfg.Height
	} else if contentType != "image/webp" {
		return nil, fmt.Errorf("%w: corrupt image", common.ErrUnsupportedFile)
	}

	key := storage.GenerateKey(prefix, ownerID, "upload"+ext)
	result, err := s.store.Upload(ctx, key, bytes.NewReader(data), contentType, int64(len(data)))
	if err != nil {
		return nil, err
	}

	pkglogger.GetLogger().Info().
		Str("key", result.Key).
		Int64("size", result.Size).
		Uint64("owner_id", ownerID).
		Msg("image uploaded")

	return &MediaUploadResult{
		Key:         result.Key,
		URL:         result.URL,
		ContentType: contentType,
		Size:        result.Size,
		Width:       width,
		Height:      height,
	}, nil
}
