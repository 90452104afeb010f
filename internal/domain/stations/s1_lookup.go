package stations

import (
	"context"
	"time"

	"github.com/Vovarama1992/companion/internal/ports"
	"go.uber.org/zap"
)

type S1Lookup struct {
	knowledge ports.KnowledgeService
	sentences int
	log       *zap.Logger
}

func NewS1Lookup(knowledge ports.KnowledgeService, sentences int, log *zap.Logger) *S1Lookup {
	return &S1Lookup{knowledge: knowledge, sentences: sentences, log: log}
}

func (s *S1Lookup) Run(ctx context.Context, query string) (string, error) {
	start := time.Now()
	s.log.Debug("[S1][START]", zap.String("query", query))

	summary, err := s.knowledge.Summary(ctx, query, s.sentences)
	if err != nil {
		s.log.Warn("[S1][ERR]", zap.String("query", query), zap.Error(err))
		return "", err
	}

	s.log.Info("[S1][OK]",
		zap.String("query", query),
		zap.Int("chars", len(summary)),
		zap.Duration("dur", time.Since(start)),
	)
	return summary, nil
}
