package images

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const MaxFileSize = 10 * 1024 * 1024 // 10 MB

var (
	ErrEmptyFile       = errors.New("empty file")
	ErrFileTooLarge    = errors.New("file too large")
	ErrInvalidImage    = errors.New("invalid image payload")
	ErrInvalidMimeType = errors.New("unsupported image type")
)

// AllowedMimeTypes defines which image types are accepted.
var AllowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Store writes normalized image files to local disk. Payloads arrive
// either as multipart uploads or inline data URIs; both end up as the
// same canonical stored file, so validation downstream sees one shape.
type Store struct {
	baseDir string
	urlBase string
}

func NewStore(baseDir, urlBase string) *Store {
	return &Store{baseDir: baseDir, urlBase: strings.TrimRight(urlBase, "/")}
}

// SaveDataURI decodes a "data:image/...;base64," payload into a stored
// file under subdir and returns the relative path.
func (s *Store) SaveDataURI(data, subdir string) (string, error) {
	mimeType, encoded, err := splitDataURI(data)
	if err != nil {
		return "", err
	}
	if !AllowedMimeTypes[mimeType] {
		return "", ErrInvalidMimeType
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrInvalidImage
	}
	if len(raw) == 0 {
		return "", ErrEmptyFile
	}
	if len(raw) > MaxFileSize {
		return "", ErrFileTooLarge
	}

	return s.write(raw, subdir, mimeToExt(mimeType))
}

// SaveMultipart stores an uploaded file, sniffing the MIME type from
// the first 512 bytes rather than trusting the client header.
func (s *Store) SaveMultipart(fh *multipart.FileHeader, subdir string) (string, error) {
	if fh.Size == 0 {
		return "", ErrEmptyFile
	}
	if fh.Size > MaxFileSize {
		return "", ErrFileTooLarge
	}

	file, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	buf := make([]byte, 512)
	n, _ := file.Read(buf)
	mimeType := strings.Split(http.DetectContentType(buf[:n]), ";")[0]
	if !AllowedMimeTypes[mimeType] {
		return "", ErrInvalidMimeType
	}

	if seeker, ok := file.(io.Seeker); ok {
		_, _ = seeker.Seek(0, io.SeekStart)
	}

	raw, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	return s.write(raw, subdir, mimeToExt(mimeType))
}

// URL maps a stored relative path to its public URL.
func (s *Store) URL(relPath string) string {
	return s.urlBase + "/" + strings.ReplaceAll(relPath, "\\", "/")
}

// Remove deletes a stored file. Missing files are not an error, the
// row pointing at them is already gone or about to be.
func (s *Store) Remove(relPath string) {
	if relPath == "" {
		return
	}
	_ = os.Remove(filepath.Join(s.baseDir, relPath))
}

func (s *Store) write(raw []byte, subdir, ext string) (string, error) {
	absDir := filepath.Join(s.baseDir, filepath.FromSlash(subdir))
	if err := os.MkdirAll(absDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create image directory: %w", err)
	}

	filename := uuid.New().String() + ext
	absPath := filepath.Join(absDir, filename)
	if err := os.WriteFile(absPath, raw, 0644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}

	return path.Join(subdir, filename), nil
}

func splitDataURI(data string) (mimeType, encoded string, err error) {
	if !strings.HasPrefix(data, "data:") {
		return "", "", ErrInvalidImage
	}
	rest := strings.TrimPrefix(data, "data:")
	header, encoded, ok := strings.Cut(rest, ",")
	if !ok {
		return "", "", ErrInvalidImage
	}
	mimeType, _, ok = strings.Cut(header, ";base64")
	if !ok {
		return "", "", ErrInvalidImage
	}
	return mimeType, encoded, nil
}

func mimeToExt(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}
