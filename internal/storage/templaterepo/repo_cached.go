package templaterepo

import (
	"context"
	"fmt"

	"github.com/yusufsyaifudin/mailmerge/pkg/cache"
	"github.com/yusufsyaifudin/mailmerge/pkg/logger"
	"github.com/yusufsyaifudin/mailmerge/pkg/validator"
)

type CachedConfig struct {
	Persistent     Repo        `validate:"required"`
	CachePrefixKey string      `validate:"required,alphanumeric"`
	Cache          cache.Cache `validate:"required"`
}

// CachedRepo loads each template from the persistent repo once and serves
// later lookups from the cache. There is no invalidation, use one per run.
type CachedRepo struct {
	Config CachedConfig
}

var _ Repo = (*CachedRepo)(nil)

func NewCached(cfg CachedConfig) (*CachedRepo, error) {
	if err := validator.Validate(cfg); err != nil {
		return nil, err
	}

	return &CachedRepo{
		Config: cfg,
	}, nil
}

func (c *CachedRepo) Get(ctx context.Context, name string) (Template, error) {
	var tmpl Template
	err := c.Config.Cache.GetAs(ctx, c.genCacheKey(name), &tmpl)
	if err == nil {
		return tmpl, nil
	}

	tmpl, err = c.Config.Persistent.Get(ctx, name)
	if err != nil {
		return Template{}, err
	}

	// only log when error, the template is still usable
	if _err := c.Config.Cache.Set(ctx, c.genCacheKey(name), tmpl); _err != nil {
		logger.Warn(ctx, fmt.Sprintf("cannot cache template %s", name), logger.KV("error", _err))
	}

	logger.Debug(ctx, fmt.Sprintf("template %s loaded", name))
	return tmpl, nil
}

func (c *CachedRepo) Exists(ctx context.Context, name string) bool {
	if c.Config.Cache.Has(ctx, c.genCacheKey(name)) {
		return true
	}

	return c.Config.Persistent.Exists(ctx, name)
}

func (c *CachedRepo) genCacheKey(name string) string {
	return fmt.Sprintf("%s:%s", c.Config.CachePrefixKey, name)
}
