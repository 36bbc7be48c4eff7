package database

import (
	"time"

	"docvault/internal/doctypes"
)

// ThumbStatus tracks the thumbnail lifecycle on a document.
type ThumbStatus string

const (
	// ThumbPending means the background render has not completed yet.
	ThumbPending ThumbStatus = "pending"
	// ThumbReady means the thumbnail is a real rendering of the content.
	ThumbReady ThumbStatus = "ready"
	// ThumbFailed means rendering fell back to a synthetic placeholder
	// (or the thumbnail write failed); the reference may still point at
	// the placeholder artifact.
	ThumbFailed ThumbStatus = "failed"
)

// Document is one user-owned uploaded artifact and its storage references.
// FilePath and ThumbPath are blob keys owned exclusively by this record.
type Document struct {
	ID          string               `json:"id"`
	UserID      string               `json:"-"`
	Name        string               `json:"name"`
	FileName    string               `json:"fileName"`
	Category    doctypes.DocCategory `json:"category"`
	MimeType    string               `json:"mimeType"`
	Size        int64                `json:"size"`
	FilePath    string               `json:"-"`
	ThumbPath   string               `json:"-"`
	ThumbStatus ThumbStatus          `json:"thumbnailStatus"`
	Pinned      bool                 `json:"pinned"`
	SortOrder   int                  `json:"sortOrder"`
	Tags        []string             `json:"tags,omitempty"`
	CreatedAt   time.Time            `json:"createdAt"`
}

// HasThumbnail reports whether a thumbnail artifact exists for serving.
func (d *Document) HasThumbnail() bool {
	return d.ThumbPath != ""
}

// Tag is a named label with its usage count for one user.
type Tag struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// MetaUpdate carries optional metadata-only changes. Nil fields are left
// untouched. File storage is never affected.
type MetaUpdate struct {
	Name      *string
	Pinned    *bool
	SortOrder *int
}
