package images

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	service "github.com/avraam311/image-compressor/internal/service/images"
)

func TestParseDefaultQuality(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		want        int
		expectError error
	}{
		{name: "unset", raw: "", want: DefaultQuality},
		{name: "zero is kept", raw: "0", want: 0},
		{name: "configured", raw: "80", want: 80},
		{name: "padded", raw: " 100 ", want: 100},
		{name: "not a number", raw: "abc", expectError: service.ErrInvalidQuality},
		{name: "above range", raw: "101", expectError: service.ErrInvalidQuality},
		{name: "negative", raw: "-5", expectError: service.ErrInvalidQuality},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDefaultQuality(tt.raw)

			if tt.expectError != nil {
				assert.ErrorIs(t, err, tt.expectError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
