package images

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/avraam311/image-compressor/internal/models"
	service "github.com/avraam311/image-compressor/internal/service/images"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultQuality        = 50
	DefaultMaxUploadBytes = 32 << 20
)

type Service interface {
	Compress(context.Context, *models.UploadRequest) (*models.CompressedResult, error)
}

type Handler struct {
	service        Service
	validator      *validator.Validate
	defaultQuality int
	maxUploadBytes int64
}

// NewHandler builds the HTTP adapter. Non-positive maxUploadBytes falls back
// to DefaultMaxUploadBytes.
func NewHandler(service Service, validator *validator.Validate, defaultQuality int, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}

	return &Handler{
		service:        service,
		validator:      validator,
		defaultQuality: defaultQuality,
		maxUploadBytes: maxUploadBytes,
	}
}

// ParseDefaultQuality reads the configured default quality. An unset (empty)
// value means DefaultQuality; 0 is a valid setting.
func ParseDefaultQuality(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultQuality, nil
	}

	q, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("handlers/images - %w - %q", service.ErrInvalidQuality, raw)
	}
	if q < service.MinQuality || q > service.MaxQuality {
		return 0, fmt.Errorf("handlers/images - %w - got %d", service.ErrInvalidQuality, q)
	}

	return q, nil
}
