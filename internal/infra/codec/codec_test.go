package codec

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/avraam311/image-compressor/pkg/pool"
)

func newCodec(maxPixels int64) *Codec {
	return New(maxPixels, pool.NewBufferPool(1<<16))
}

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 7), G: uint8(y * 13), B: uint8(x ^ y), A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func TestCodec_Decode(t *testing.T) {
	bmpBuf := new(bytes.Buffer)
	require.NoError(t, bmp.Encode(bmpBuf, gradient(20, 10)))

	tests := []struct {
		name        string
		data        []byte
		maxPixels   int64
		wantFormat  string
		wantW       int
		wantH       int
		expectError error
	}{
		{
			name:       "png",
			data:       encodePNG(t, gradient(100, 100)),
			wantFormat: "png",
			wantW:      100,
			wantH:      100,
		},
		{
			name:       "bmp",
			data:       bmpBuf.Bytes(),
			wantFormat: "bmp",
			wantW:      20,
			wantH:      10,
		},
		{
			name:        "empty",
			data:        []byte{},
			expectError: ErrEmptyInput,
		},
		{
			name:        "text",
			data:        []byte("definitely not an image"),
			expectError: ErrUnsupported,
		},
		{
			name:        "too many pixels",
			data:        encodePNG(t, gradient(50, 50)),
			maxPixels:   50*50 - 1,
			expectError: ErrTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, format, err := newCodec(tt.maxPixels).Decode(tt.data)

			if tt.expectError != nil {
				assert.ErrorIs(t, err, tt.expectError)
				assert.Nil(t, img)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantFormat, format)
			assert.Equal(t, tt.wantW, img.Bounds().Dx())
			assert.Equal(t, tt.wantH, img.Bounds().Dy())
		})
	}
}

func TestCodec_EncodeJPEG(t *testing.T) {
	c := newCodec(0)
	src := gradient(64, 48)

	for _, q := range []int{0, 1, 50, 80, 100, 150} {
		out, err := c.EncodeJPEG(src, q)
		require.NoError(t, err, "quality %d", q)

		cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
		require.NoError(t, err, "quality %d", q)
		assert.Equal(t, 64, cfg.Width)
		assert.Equal(t, 48, cfg.Height)
	}
}

func TestCodec_EncodeJPEG_QualityAffectsSize(t *testing.T) {
	c := newCodec(0)
	src := gradient(128, 128)

	low, err := c.EncodeJPEG(src, 5)
	require.NoError(t, err)
	high, err := c.EncodeJPEG(src, 95)
	require.NoError(t, err)

	assert.Less(t, len(low), len(high))
}

func TestCodec_EncodeJPEG_Deterministic(t *testing.T) {
	c := newCodec(0)
	src := gradient(40, 30)

	first, err := c.EncodeJPEG(src, 70)
	require.NoError(t, err)
	second, err := c.EncodeJPEG(src, 70)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCodec_EncodeJPEG_Nil(t *testing.T) {
	_, err := newCodec(0).EncodeJPEG(nil, 50)
	assert.ErrorIs(t, err, ErrNilImage)
}
