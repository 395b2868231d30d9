// Package uploads stores logo and product images on local disk, the way the
// presentation layer serves them: under a single public directory with
// random, extension-safe names.
package uploads

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// PublicPrefix is the URL prefix the stored path is exposed under.
const PublicPrefix = "/uploads/"

var ErrUnsupportedType = errors.New("unsupported image type")

// allowed raster types; content is sniffed, the client filename is ignored
var allowedTypes = []string{"image/png", "image/jpeg", "image/gif", "image/webp"}

type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	return &Store{dir: dir}, nil
}

// Save writes the upload to disk and returns its public path. The caller
// must record the entity row only after Save returns, and call Remove if
// that record write fails, so no row ever references a missing file and no
// file outlives a failed row.
func (s *Store) Save(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()

	if err != nil {
		return "", err
	}

	defer src.Close()

	mtype, err := mimetype.DetectReader(src)

	if err != nil {
		return "", err
	}

	if !isAllowed(mtype) {
		return "", ErrUnsupportedType
	}

	// DetectReader consumed a prefix; rewind before copying
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	name := uuid.NewString() + mtype.Extension()
	dstPath := filepath.Join(s.dir, name)

	dst, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)

	if err != nil {
		return "", err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = os.Remove(dstPath)
		return "", err
	}

	if err := dst.Close(); err != nil {
		_ = os.Remove(dstPath)
		return "", err
	}

	return PublicPrefix + name, nil
}

// Remove deletes a previously saved file by its public path. Idempotent.
func (s *Store) Remove(publicPath string) error {
	name := filepath.Base(strings.TrimPrefix(publicPath, PublicPrefix))

	if name == "" || name == "." || name == "/" {
		return nil
	}

	err := os.Remove(filepath.Join(s.dir, name))

	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	return nil
}

// Dir exposes the storage root so the router can serve it statically.
func (s *Store) Dir() string {
	return s.dir
}

func isAllowed(mtype *mimetype.MIME) bool {
	for _, t := range allowedTypes {
		if mtype.Is(t) {
			return true
		}
	}
	return false
}
