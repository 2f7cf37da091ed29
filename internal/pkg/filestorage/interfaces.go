package filestorage

import (
	"mime/multipart"
)

// FileInfo describes a validated upload held in memory
type FileInfo struct {
	Filename string // Original filename, base name only
	FileSize int64  // Size in bytes
	MimeType string // Verified MIME type
	Kind     string // Media kind derived from MimeType (pdf, ppt, pptx, doc, docx, image)
	Data     []byte
}

// UploadReader buffers uploads and checks them against the size cap and the MIME allow-list.
type UploadReader interface {
	// ReadUpload reads a multipart file part.
	ReadUpload(fileHeader *multipart.FileHeader) (*FileInfo, error)

	// ReadLocalFile reads a file from disk, used by bulk ingestion.
	ReadLocalFile(path string) (*FileInfo, error)

	// MaxSize returns the configured size cap in bytes.
	MaxSize() int64
}
