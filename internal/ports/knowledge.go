package ports

import (
	"context"
	"errors"
)

var (
	ErrLookupAmbiguous = errors.New("lookup: query matches several topics")
	ErrLookupNotFound  = errors.New("lookup: no matching topic")
	ErrLookupService   = errors.New("lookup: service failure")
)

type KnowledgeService interface {
	// Summary returns the first sentences of the best matching article.
	Summary(ctx context.Context, query string, sentences int) (string, error)
}
