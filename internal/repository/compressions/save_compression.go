package compressions

import (
	"context"
	"fmt"

	"github.com/avraam311/image-compressor/internal/models"
)

// SaveCompression inserts a journal row. Redelivered events are ignored.
func (r *Repository) SaveCompression(ctx context.Context, e *models.CompressionEvent) error {
	query := `
		INSERT INTO compression (id, filename, format, quality, original_size, compressed_size, width, height, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING;
	`

	_, err := r.db.ExecContext(ctx, query,
		e.ID.String(), e.Filename, e.Format, e.Quality,
		e.OriginalSize, e.CompressedSize, e.Width, e.Height,
		e.DurationMs, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository/save_compression.go - failed to insert compression - %w", err)
	}

	return nil
}
