package search

import (
	"context"

	"go.uber.org/zap"

	"cvstudio/api/internal/store"
)

// Service is the facade that tries Meilisearch first and falls back to the
// Postgres scan.
type Service struct {
	meili *Meili
	pgfts *PgFTS
	log   *zap.Logger
}

// NewService creates a search service. meili may be nil when Meilisearch is
// not configured.
func NewService(meili *Meili, pgfts *PgFTS, log *zap.Logger) *Service {
	return &Service{meili: meili, pgfts: pgfts, log: log}
}

func (s *Service) Search(ctx context.Context, q Query) Response {
	if s.meili != nil && s.meili.Healthy() {
		results, total, err := s.meili.Search(q)
		if err == nil {
			return Response{Results: nonNil(results), Total: total, Query: q.Text}
		}
		s.log.Warn("meilisearch error, falling back to postgres", zap.Error(err))
	}

	results, total, err := s.pgfts.Search(ctx, q)
	if err != nil {
		s.log.Error("postgres search failed", zap.Error(err))
		return Response{Results: []ResumeRecord{}, Total: 0, Query: q.Text}
	}
	return Response{Results: nonNil(results), Total: total, Query: q.Text}
}

// IndexResume pushes a resume into the index, fire-and-forget. The save
// path never waits on search.
func (s *Service) IndexResume(r store.Resume) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	rec := toRecord(r)
	go func() {
		if err := s.meili.IndexResume(rec); err != nil {
			s.log.Warn("index resume", zap.String("resume_id", rec.ID), zap.Error(err))
		}
	}()
}

// DeleteResume removes a resume from the index, fire-and-forget.
func (s *Service) DeleteResume(id string) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.DeleteResume(id); err != nil {
			s.log.Warn("delete resume from index", zap.String("resume_id", id), zap.Error(err))
		}
	}()
}

func toRecord(r store.Resume) ResumeRecord {
	return ResumeRecord{
		ID:        r.ID,
		OwnerID:   r.OwnerID,
		Title:     r.Title,
		FullName:  r.Content.PersonalInfo.FullName,
		Objective: r.Content.PersonalInfo.Objective,
		Skills:    r.Content.Skills,
		UpdatedAt: r.UpdatedAt.Unix(),
	}
}

func nonNil(r []ResumeRecord) []ResumeRecord {
	if r == nil {
		return []ResumeRecord{}
	}
	return r
}
