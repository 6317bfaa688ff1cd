package search

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	meili "github.com/meilisearch/meilisearch-go"
	"go.uber.org/zap"
)

const idxResumes = "cvstudio_resumes"

// Meili wraps the Meilisearch client with a liveness flag so the facade can
// fall back instantly instead of timing out per request.
type Meili struct {
	client  meili.ServiceManager
	log     *zap.Logger
	healthy atomic.Bool
	done    chan struct{}
}

// NewMeili creates the client and configures the resume index. A failed
// initial connection is tolerated; the health loop keeps probing.
func NewMeili(url, apiKey string, log *zap.Logger) *Meili {
	client := meili.New(url, meili.WithAPIKey(apiKey))

	m := &Meili{
		client: client,
		log:    log,
		done:   make(chan struct{}),
	}

	if _, err := client.Health(); err != nil {
		log.Warn("meilisearch unavailable", zap.String("url", url), zap.Error(err))
		m.healthy.Store(false)
	} else {
		m.healthy.Store(true)
		m.configureIndex()
	}

	go m.healthLoop()
	return m
}

func (m *Meili) configureIndex() {
	if _, err := m.client.CreateIndex(&meili.IndexConfig{
		Uid:        idxResumes,
		PrimaryKey: "id",
	}); err != nil {
		m.log.Debug("create index (may already exist)", zap.Error(err))
	}

	index := m.client.Index(idxResumes)
	filterable := []interface{}{"ownerId"}
	if _, err := index.UpdateFilterableAttributes(&filterable); err != nil {
		m.log.Warn("update filterable attrs", zap.Error(err))
	}
	searchable := []string{"title", "fullName", "objective", "skills"}
	if _, err := index.UpdateSearchableAttributes(&searchable); err != nil {
		m.log.Warn("update searchable attrs", zap.Error(err))
	}
}

func (m *Meili) healthLoop() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			_, err := m.client.Health()
			wasHealthy := m.healthy.Load()
			m.healthy.Store(err == nil)
			if err == nil && !wasHealthy {
				m.log.Info("meilisearch recovered, reconfiguring index")
				m.configureIndex()
			}
		}
	}
}

// Close stops the background health monitor.
func (m *Meili) Close() {
	close(m.done)
}

func (m *Meili) Healthy() bool {
	return m.healthy.Load()
}

func (m *Meili) Search(q Query) ([]ResumeRecord, int, error) {
	if !m.healthy.Load() {
		return nil, 0, fmt.Errorf("meilisearch unhealthy")
	}

	limit := int64(q.Limit)
	if limit == 0 {
		limit = 20
	}

	// An empty owner means an admin query across all owners.
	req := &meili.SearchRequest{Limit: limit}
	if q.OwnerID != "" {
		req.Filter = fmt.Sprintf("ownerId = %q", q.OwnerID)
	}

	resp, err := m.client.Index(idxResumes).Search(q.Text, req)
	if err != nil {
		return nil, 0, fmt.Errorf("meilisearch query: %w", err)
	}

	results := make([]ResumeRecord, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		raw, err := json.Marshal(hit)
		if err != nil {
			continue
		}
		var rec ResumeRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			continue
		}
		results = append(results, rec)
	}
	return results, int(resp.EstimatedTotalHits), nil
}

func (m *Meili) IndexResume(rec ResumeRecord) error {
	if _, err := m.client.Index(idxResumes).AddDocuments([]ResumeRecord{rec}, nil); err != nil {
		return fmt.Errorf("index resume: %w", err)
	}
	return nil
}

func (m *Meili) DeleteResume(id string) error {
	if _, err := m.client.Index(idxResumes).DeleteDocument(id, nil); err != nil {
		return fmt.Errorf("delete resume from index: %w", err)
	}
	return nil
}
