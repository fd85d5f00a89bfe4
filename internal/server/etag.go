package server

import (
	"encoding/hex"
	"io"
	"io/fs"
	"log/slog"

	"github.com/spf13/afero"
	"github.com/zeebo/blake3"
)

// maxETagSize bounds the files hashed per request.
const maxETagSize = 8 << 20

// fileETag returns a strong ETag derived from the file content, or "" when
// the file is too large to hash on the request path.
func fileETag(fsys afero.Fs, name string, info fs.FileInfo) (string, error) {
	if info.Size() > maxETagSize {
		return "", nil
	}
	f, err := fsys.Open(name)
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			slog.Warn("Failed to close file", "path", name, "error", cerr)
		}
	}()

	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	sum := h.Sum(nil)
	return `"` + hex.EncodeToString(sum[:16]) + `"`, nil
}
