package models

import "time"

type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

// MediaAsset records where a generated file lives. The bytes stay on disk.
type MediaAsset struct {
	ID          string    `db:"id" json:"id"`
	SessionID   string    `db:"session_id" json:"sessionId"`
	Kind        MediaKind `db:"kind" json:"kind"`
	Path        string    `db:"path" json:"path"`
	SourceQuery string    `db:"source_query" json:"sourceQuery"` // raw user text, metadata only
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}
