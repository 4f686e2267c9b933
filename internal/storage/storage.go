package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/loopboard/internal/model"
)

// ErrUnsupportedType is returned for uploads that are neither images nor videos.
var ErrUnsupportedType = errors.New("unsupported upload type")

// Upload is what the upload boundary reports back on success.
type Upload struct {
	PublicURL    string     `json:"public_url"`
	ResourceType model.Kind `json:"resource_type"`
	ContentType  string     `json:"content_type"`
}

type Storage interface {
	SaveFile(fileHeader *multipart.FileHeader, filename string) (Upload, error)
}

type LocalStorage struct {
	uploadDir string
	baseURL   string
}

// NewLocalStorage stores files under uploadDir. They are expected to be
// served at baseURL + "/uploads/".
func NewLocalStorage(uploadDir, baseURL string) *LocalStorage {
	return &LocalStorage{uploadDir: uploadDir, baseURL: strings.TrimSuffix(baseURL, "/")}
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// normalizeFilename creates a unique, normalized filename without spaces.
// Same-named uploads within one second still differ by the random suffix.
func normalizeFilename(originalFilename string) string {
	ext := filepath.Ext(originalFilename)
	baseName := strings.TrimSuffix(originalFilename, ext)

	baseName = strings.ReplaceAll(baseName, " ", "_")
	// keep only alphanumeric, dash, underscore
	baseName = unsafeFilenameChars.ReplaceAllString(baseName, "")
	if baseName == "" {
		baseName = "file"
	}

	timestamp := time.Now().Format("20060102_150405")
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%s_%s_%s%s", baseName, timestamp, suffix, strings.ToLower(ext))
}

// DetectKind sniffs the content and maps it onto a media kind.
func DetectKind(r io.Reader) (model.Kind, string, error) {
	mt, err := mimetype.DetectReader(r)
	if err != nil {
		return "", "", fmt.Errorf("failed to detect content type: %w", err)
	}
	contentType := mt.String()
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return model.KindImage, contentType, nil
	case strings.HasPrefix(contentType, "video/"):
		return model.KindVideo, contentType, nil
	}
	return "", contentType, fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
}

func sniff(fileHeader *multipart.FileHeader) (model.Kind, string, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return "", "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()
	return DetectKind(src)
}

func (ls *LocalStorage) SaveFile(fileHeader *multipart.FileHeader, filename string) (Upload, error) {
	kind, contentType, err := sniff(fileHeader)
	if err != nil {
		return Upload{}, err
	}

	normalizedFilename := normalizeFilename(filename)
	log.Debug().Str("original", filename).Str("normalized", normalizedFilename).Msg("File upload normalized")
	uploadPath := filepath.Join(ls.uploadDir, normalizedFilename)

	if err := os.MkdirAll(ls.uploadDir, 0755); err != nil {
		return Upload{}, fmt.Errorf("failed to create upload directory: %w", err)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return Upload{}, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(uploadPath)
	if err != nil {
		return Upload{}, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return Upload{}, fmt.Errorf("failed to save file: %w", err)
	}

	return Upload{
		PublicURL:    fmt.Sprintf("%s/uploads/%s", ls.baseURL, normalizedFilename),
		ResourceType: kind,
		ContentType:  contentType,
	}, nil
}
