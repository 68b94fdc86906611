package documents

import (
	"path/filepath"
	"strings"
	"time"
)

// Document is the extracted content of one uploaded file.
// It is only ever visible to its owner.
type Document struct {
	ID         int64     `json:"id"`
	OwnerID    int64     `json:"owner_id"`
	Title      string    `json:"title"`
	Filename   string    `json:"filename"`
	Content    string    `json:"content"`
	ArchiveKey string    `json:"archive_key,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Summary is the list view of a document, without content.
type Summary struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Filename   string    `json:"filename"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// DeriveTitle returns title when set, otherwise the filename without its extension.
func DeriveTitle(title, filename string) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	base := filepath.Base(filename)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
