package template

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"cvstudio/api/internal/store"
)

const (
	catalogCacheKey = "cvstudio:templates"
	catalogCacheTTL = 5 * time.Minute
)

// TemplateStore is the persistence slice the catalog reads from.
type TemplateStore interface {
	ListTemplates(ctx context.Context) ([]store.Template, error)
}

// Catalog serves the template listing. The database is authoritative; when
// it is empty or unreachable the builtin set keeps the picker populated.
// A Redis cache in front is optional.
type Catalog struct {
	store    TemplateStore
	registry *Registry
	cache    *redis.Client
	log      *zap.Logger
}

func NewCatalog(st TemplateStore, registry *Registry, cache *redis.Client, log *zap.Logger) *Catalog {
	return &Catalog{store: st, registry: registry, cache: cache, log: log}
}

func (c *Catalog) List(ctx context.Context) []store.Template {
	if cached, ok := c.fromCache(ctx); ok {
		return cached
	}

	templates, err := c.store.ListTemplates(ctx)
	if err != nil {
		c.log.Warn("template store unavailable, serving builtin set", zap.Error(err))
		return c.registry.Builtin()
	}
	if len(templates) == 0 {
		return c.registry.Builtin()
	}

	c.toCache(ctx, templates)
	return templates
}

func (c *Catalog) fromCache(ctx context.Context) ([]store.Template, bool) {
	if c.cache == nil {
		return nil, false
	}
	raw, err := c.cache.Get(ctx, catalogCacheKey).Bytes()
	if err != nil {
		return nil, false
	}
	var templates []store.Template
	if err := json.Unmarshal(raw, &templates); err != nil {
		return nil, false
	}
	return templates, true
}

func (c *Catalog) toCache(ctx context.Context, templates []store.Template) {
	if c.cache == nil {
		return
	}
	raw, err := json.Marshal(templates)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, catalogCacheKey, raw, catalogCacheTTL).Err(); err != nil {
		c.log.Debug("template cache write failed", zap.Error(err))
	}
}

// Invalidate drops the cached listing after an admin edits the catalog.
func (c *Catalog) Invalidate(ctx context.Context) {
	if c.cache == nil {
		return
	}
	_ = c.cache.Del(ctx, catalogCacheKey).Err()
}
