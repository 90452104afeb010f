package models

import "time"

// Turn is one user submission and everything the pipeline produced for it.
// Video is only ever set when Image is set.
type Turn struct {
	ID        string
	SessionID string
	Query     string

	Summary   string
	LookupErr error

	Image    *MediaAsset
	ImageErr error

	Video    *MediaAsset
	VideoErr error

	StartedAt  time.Time
	FinishedAt time.Time
}

func (t *Turn) Assets() []*MediaAsset {
	var out []*MediaAsset
	if t.Image != nil {
		out = append(out, t.Image)
	}
	if t.Video != nil {
		out = append(out, t.Video)
	}
	return out
}
