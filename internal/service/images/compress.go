package images

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/avraam311/image-compressor/internal/models"

	"github.com/wb-go/wbf/zlog"

	"github.com/google/uuid"
)

func (s *Service) Compress(ctx context.Context, req *models.UploadRequest) (*models.CompressedResult, error) {
	if req == nil || req.FileBytes == nil {
		return nil, ErrMissingFile
	}
	if strings.TrimSpace(req.Filename) == "" {
		return nil, ErrEmptyFilename
	}
	if req.Quality < MinQuality || req.Quality > MaxQuality {
		return nil, fmt.Errorf("service/images - %w - got %d", ErrInvalidQuality, req.Quality)
	}

	start := time.Now()

	img, format, err := s.codec.Decode(req.FileBytes)
	if err != nil {
		return nil, fmt.Errorf("service/images - %w - %w", ErrDecode, err)
	}

	encoded, err := s.codec.EncodeJPEG(img, req.Quality)
	if err != nil {
		return nil, fmt.Errorf("service/images - %w - %w", ErrEncode, err)
	}
	if len(encoded) == 0 {
		return nil, fmt.Errorf("service/images - %w - encoder produced no data", ErrEncode)
	}

	res := &models.CompressedResult{
		Bytes:        encoded,
		Filename:     compressedFilename(req.Filename),
		Format:       format,
		Width:        img.Bounds().Dx(),
		Height:       img.Bounds().Dy(),
		OriginalSize: len(req.FileBytes),
	}

	s.publish(ctx, req, res, time.Since(start))

	return res, nil
}

// publish records the compression in the journal. Failures are logged only:
// the caller already has a complete result.
func (s *Service) publish(ctx context.Context, req *models.UploadRequest, res *models.CompressedResult, took time.Duration) {
	if s.pub == nil {
		return
	}

	event := &models.CompressionEvent{
		ID:             uuid.New(),
		Filename:       res.Filename,
		Format:         res.Format,
		Quality:        req.Quality,
		OriginalSize:   res.OriginalSize,
		CompressedSize: len(res.Bytes),
		Width:          res.Width,
		Height:         res.Height,
		DurationMs:     took.Milliseconds(),
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.pub.Publish(ctx, event); err != nil {
		zlog.Logger.Warn().Err(err).Str("event_id", event.ID.String()).Msg("failed to publish compression event")
	}
}
