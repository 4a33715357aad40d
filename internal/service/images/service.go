package images

import (
	"context"
	"errors"
	"image"

	"github.com/avraam311/image-compressor/internal/models"
)

var (
	ErrMissingFile    = errors.New("file is required")
	ErrEmptyFilename  = errors.New("filename is empty")
	ErrInvalidQuality = errors.New("quality must be an integer between 0 and 100")
	ErrDecode         = errors.New("failed to decode the image, ensure it's a valid image format")
	ErrEncode         = errors.New("failed to encode image")
)

const (
	MinQuality = 0
	MaxQuality = 100
)

type Codec interface {
	Decode([]byte) (image.Image, string, error)
	EncodeJPEG(image.Image, int) ([]byte, error)
}

type Publisher interface {
	Publish(context.Context, *models.CompressionEvent) error
}

type Service struct {
	codec Codec
	pub   Publisher
}

// NewService wires the codec and an optional journal publisher; pub may be nil.
func NewService(codec Codec, pub Publisher) *Service {
	return &Service{
		codec: codec,
		pub:   pub,
	}
}
