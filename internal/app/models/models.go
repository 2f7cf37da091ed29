package models

// RoleType defines the user role type
type RoleType string

const (
	RoleStudent RoleType = "student"
	RoleAdmin   RoleType = "admin"
)

// IsValid reports whether r is a known role
func (r RoleType) IsValid() bool {
	return r == RoleStudent || r == RoleAdmin
}

// ResourceCategory is the kind of study material
type ResourceCategory string

const (
	CategoryNotes         ResourceCategory = "notes"
	CategoryVideo         ResourceCategory = "video"
	CategoryReferenceBook ResourceCategory = "reference_book"
)

// IsValid reports whether c is a known category
func (c ResourceCategory) IsValid() bool {
	switch c {
	case CategoryNotes, CategoryVideo, CategoryReferenceBook:
		return true
	}
	return false
}

// MediaKind describes how a resource is stored
type MediaKind string

const (
	MediaPDF      MediaKind = "pdf"
	MediaPPT      MediaKind = "ppt"
	MediaPPTX     MediaKind = "pptx"
	MediaDOC      MediaKind = "doc"
	MediaDOCX     MediaKind = "docx"
	MediaVideoURL MediaKind = "video_url"
	MediaImage    MediaKind = "image"
)

// IsValid reports whether k is a known media kind
func (k MediaKind) IsValid() bool {
	switch k {
	case MediaPDF, MediaPPT, MediaPPTX, MediaDOC, MediaDOCX, MediaVideoURL, MediaImage:
		return true
	}
	return false
}
