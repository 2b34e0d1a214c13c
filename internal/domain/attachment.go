// File: internal/domain/attachment.go
package domain

import (
	"path"
	"strings"
)

// MediaKind is the closed set of upload types the ingestion pipeline
// understands. The kind is resolved once, from the filename, at upload
// time; everything downstream switches on it exhaustively.
type MediaKind string

const (
	MediaPDF   MediaKind = "pdf"
	MediaImage MediaKind = "image"
	MediaDocx  MediaKind = "docx"
	MediaOther MediaKind = "other"
)

// KindForFilename classifies an upload by its filename extension.
// Unknown extensions map to MediaOther; they are attached but never
// extracted or indexed.
func KindForFilename(name string) MediaKind {
	switch strings.ToLower(path.Ext(name)) {
	case ".pdf":
		return MediaPDF
	case ".png", ".jpg", ".jpeg":
		return MediaImage
	case ".docx":
		return MediaDocx
	default:
		return MediaOther
	}
}

// ContentType returns the MIME type stored alongside the raw blob.
func (k MediaKind) ContentType() string {
	switch k {
	case MediaPDF:
		return "application/pdf"
	case MediaImage:
		return "image/jpeg"
	case MediaDocx:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/octet-stream"
	}
}

// FileAttachment records an uploaded file on its owning session. The
// attachment owns the stored blob: deleting the session must also
// request deletion of the object behind StorageURL.
type FileAttachment struct {
	ID            uint      `gorm:"primarykey" json:"-"`
	SessionID     uint      `json:"-" gorm:"index;not null"`
	Filename      string    `json:"filename" gorm:"not null"`
	StorageURL    string    `json:"storageUrl"`
	MediaKind     MediaKind `json:"mediaKind" gorm:"not null"`
	ExtractedText string    `json:"extractedText"`
}
