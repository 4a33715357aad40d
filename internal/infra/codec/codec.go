package codec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/avraam311/image-compressor/pkg/pool"
)

var (
	ErrEmptyInput  = errors.New("empty image data")
	ErrTooLarge    = errors.New("image dimensions exceed limit")
	ErrNilImage    = errors.New("nothing to encode")
	ErrUnsupported = errors.New("unsupported or malformed image format")
)

type Codec struct {
	maxPixels int64
	bufs      *pool.BufferPool
}

// New returns a codec. maxPixels <= 0 disables the dimension guard.
func New(maxPixels int64, bufs *pool.BufferPool) *Codec {
	return &Codec{
		maxPixels: maxPixels,
		bufs:      bufs,
	}
}

// Decode sniffs the container format and decodes data into a raster,
// applying EXIF orientation. The returned string is the detected format name.
func (c *Codec) Decode(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", ErrEmptyInput
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupported, err.Error())
	}
	if c.maxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > c.maxPixels {
		return nil, "", fmt.Errorf("%w: %dx%d", ErrTooLarge, cfg.Width, cfg.Height)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupported, err.Error())
	}

	return img, format, nil
}

// EncodeJPEG encodes img at the given quality. Quality is handed to the
// encoder as is; image/jpeg clamps it into [1,100].
func (c *Codec) EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	if img == nil {
		return nil, ErrNilImage
	}

	buf := c.bufs.Get()
	defer c.bufs.Put(buf)

	if err := imaging.Encode(buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, err
	}

	return pool.CopyBytes(buf), nil
}
