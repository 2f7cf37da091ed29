package filestorage

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/yigit/educareway/internal/pkg/apperrors"
	"github.com/yigit/educareway/internal/pkg/logger"
)

// DefaultMaxUploadSize is 50 MiB
const DefaultMaxUploadSize int64 = 50 << 20

// Media kinds of stored files
const (
	KindPDF   = "pdf"
	KindPPT   = "ppt"
	KindPPTX  = "pptx"
	KindDOC   = "doc"
	KindDOCX  = "docx"
	KindImage = "image"
)

// allowedTypes maps every accepted MIME type to its media kind
var allowedTypes = map[string]string{
	"application/pdf":               KindPDF,
	"application/vnd.ms-powerpoint": KindPPT,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": KindPPTX,
	"application/msword": KindDOC,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": KindDOCX,
	"image/jpeg": KindImage,
	"image/png":  KindImage,
}

// extensionTypes is used when the client declares no usable content type
var extensionTypes = map[string]string{
	".pdf":  "application/pdf",
	".ppt":  "application/vnd.ms-powerpoint",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// MemoryReader holds whole uploads in memory. Files are stored as blobs, so
// nothing is written to disk.
type MemoryReader struct {
	maxSize int64
}

// NewMemoryReader creates a MemoryReader with the given size cap.
func NewMemoryReader(maxSize int64) *MemoryReader {
	if maxSize <= 0 {
		maxSize = DefaultMaxUploadSize
	}
	return &MemoryReader{maxSize: maxSize}
}

// MaxSize returns the size cap
func (r *MemoryReader) MaxSize() int64 {
	return r.maxSize
}

// ReadUpload reads and validates a multipart file.
func (r *MemoryReader) ReadUpload(fileHeader *multipart.FileHeader) (*FileInfo, error) {
	if fileHeader == nil {
		return nil, fmt.Errorf("%w: no file uploaded", apperrors.ErrValidationFailed)
	}
	if fileHeader.Size > r.maxSize {
		return nil, r.tooLarge(fileHeader.Size)
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to open uploaded file")
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	data, err := r.readCapped(file)
	if err != nil {
		return nil, err
	}

	return r.inspect(fileHeader.Filename, fileHeader.Header.Get("Content-Type"), data)
}

// ReadLocalFile reads and validates a file from disk. The declared type comes from the extension.
func (r *MemoryReader) ReadLocalFile(path string) (*FileInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if stat.Size() > r.maxSize {
		return nil, r.tooLarge(stat.Size())
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	data, err := r.readCapped(file)
	if err != nil {
		return nil, err
	}

	return r.inspect(filepath.Base(path), "", data)
}

func (r *MemoryReader) readCapped(src io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(src, r.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file content: %w", err)
	}
	if n > r.maxSize {
		return nil, r.tooLarge(n)
	}
	return buf.Bytes(), nil
}

func (r *MemoryReader) tooLarge(size int64) error {
	return apperrors.NewCustomError(apperrors.ErrFileTooLarge,
		fmt.Sprintf("file exceeds the %d MB limit", r.maxSize>>20)).
		WithDetails(map[string]interface{}{"size": size, "limit": r.maxSize})
}

// inspect checks the declared type and the sniffed content against the allow-list.
func (r *MemoryReader) inspect(filename, declared string, data []byte) (*FileInfo, error) {
	name := filepath.Base(strings.TrimSpace(filename))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return nil, fmt.Errorf("%w: file name is required", apperrors.ErrValidationFailed)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: file is empty", apperrors.ErrValidationFailed)
	}

	declared = NormalizeMimeType(declared)
	if declared == "" || declared == "application/octet-stream" {
		declared = extensionTypes[strings.ToLower(filepath.Ext(name))]
	}

	mimeType, ok := VerifyContent(declared, data)
	if !ok {
		sniffed := mimetype.Detect(data).String()
		logger.Warn().Str("filename", name).Str("declared", declared).Str("sniffed", sniffed).Msg("Rejected upload with disallowed type")
		return nil, apperrors.NewCustomError(apperrors.ErrUnsupportedMedia, "Invalid file type. Only PDF, PPT, PPTX, DOC, DOCX and images are allowed.").
			WithDetails(map[string]interface{}{"declared": declared, "detected": sniffed})
	}

	return &FileInfo{
		Filename: name,
		FileSize: int64(len(data)),
		MimeType: mimeType,
		Kind:     allowedTypes[mimeType],
		Data:     data,
	}, nil
}

// VerifyContent returns the MIME type to store when both the declared type
// and the sniffed content are acceptable.
func VerifyContent(declared string, data []byte) (string, bool) {
	declared = NormalizeMimeType(declared)
	if _, ok := allowedTypes[declared]; !ok {
		return "", false
	}

	detected := mimetype.Detect(data)
	sniffed := NormalizeMimeType(detected.String())
	if _, ok := allowedTypes[sniffed]; ok {
		// Both are allowed but they must describe the same kind of file.
		if allowedTypes[sniffed] != allowedTypes[declared] {
			return "", false
		}
		return sniffed, true
	}

	// Legacy Office files may only be recognised as OLE containers and some
	// OOXML files only as zip archives. Trust the declared subtype in that case.
	switch allowedTypes[declared] {
	case KindDOC, KindPPT:
		if detected.Is("application/x-ole-storage") {
			return declared, true
		}
	case KindDOCX, KindPPTX:
		if detected.Is("application/zip") {
			return declared, true
		}
	}
	return "", false
}

// NormalizeMimeType strips parameters, lower cases and folds image/jpg into image/jpeg.
func NormalizeMimeType(mimeType string) string {
	mimeType = strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	if mimeType == "image/jpg" || mimeType == "image/pjpeg" {
		return "image/jpeg"
	}
	return mimeType
}

// IsAllowedMimeType reports whether mimeType is in the allow-list.
func IsAllowedMimeType(mimeType string) bool {
	_, ok := allowedTypes[NormalizeMimeType(mimeType)]
	return ok
}

// KindForMimeType returns the media kind for an allowed MIME type.
func KindForMimeType(mimeType string) (string, bool) {
	kind, ok := allowedTypes[NormalizeMimeType(mimeType)]
	return kind, ok
}
