package images

import (
	"path"
	"strings"
)

const (
	compressedPrefix  = "compressed_"
	fallbackStem      = "image"
	maxFilenameLength = 200
)

// SanitizeFilename reduces name to its last path element and replaces every
// byte outside [A-Za-z0-9._-] with '_'. Leading dots are dropped. A stem left
// with nothing but '_' (".." or "фото.png", say) becomes "image", so the
// result is never empty.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}

	var b strings.Builder
	b.Grow(len(name))
	for i := 0; i < len(name); i++ {
		ch := name[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9',
			ch == '.', ch == '-', ch == '_':
			b.WriteByte(ch)
		default:
			b.WriteByte('_')
		}
	}

	out := strings.TrimLeft(b.String(), ".")
	if len(out) > maxFilenameLength {
		out = strings.TrimLeft(out[len(out)-maxFilenameLength:], ".")
	}

	ext := path.Ext(out)
	if strings.Trim(strings.TrimSuffix(out, ext), "_") == "" {
		if strings.Trim(ext, "._") == "" || len(fallbackStem)+len(ext) > maxFilenameLength {
			return fallbackStem
		}
		return fallbackStem + ext
	}

	return out
}

func compressedFilename(original string) string {
	return compressedPrefix + SanitizeFilename(original)
}
