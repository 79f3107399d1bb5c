package repository

import (
    "context"
    "encoding/json"
    "errors"
    "time"

    "github.com/redis/go-redis/v9"
    "go.uber.org/zap"

    "github.com/iliyamo/course-stream/internal/config"
    "github.com/iliyamo/course-stream/internal/model"
)

// ModuleFinder is the point lookup the enrollment authorizer needs.
type ModuleFinder interface {
    GetByID(ctx context.Context, id string) (*model.Module, error)
}

// CachedModuleRepo is a redis read-through cache in front of a
// ModuleFinder.  Only successful lookups are cached; ErrNotFound and
// store errors pass straight through.  Redis failures are logged and the
// lookup falls back to the wrapped finder.
type CachedModuleRepo struct {
    next ModuleFinder
    rdb  *redis.Client
    cfg  config.ModuleCacheConfig
    log  *zap.Logger
}

// NewCachedModuleRepo wraps next.  When caching is disabled or rdb is nil
// next is returned unchanged.
func NewCachedModuleRepo(next ModuleFinder, rdb *redis.Client, cfg config.ModuleCacheConfig, log *zap.Logger) ModuleFinder {
    if !cfg.Enabled || rdb == nil {
        return next
    }
    if cfg.TTL <= 0 {
        cfg.TTL = time.Minute
    }
    return &CachedModuleRepo{next: next, rdb: rdb, cfg: cfg, log: log}
}

func (r *CachedModuleRepo) key(id string) string { return r.cfg.Prefix + ":" + id }

// GetByID serves the module from redis when present, otherwise loads it
// and stores it for cfg.TTL.
func (r *CachedModuleRepo) GetByID(ctx context.Context, id string) (*model.Module, error) {
    key := r.key(id)
    bs, err := r.rdb.Get(ctx, key).Bytes()
    switch {
    case err == nil:
        var m model.Module
        if jerr := json.Unmarshal(bs, &m); jerr == nil && m.ID == id {
            return &m, nil
        }
        r.log.Warn("module cache: dropping undecodable entry", zap.String("key", key))
        _ = r.rdb.Del(ctx, key).Err()
    case !errors.Is(err, redis.Nil):
        r.log.Warn("module cache: redis get failed", zap.String("key", key), zap.Error(err))
    }

    m, err := r.next.GetByID(ctx, id)
    if err != nil {
        return nil, err
    }
    if payload, jerr := json.Marshal(m); jerr == nil {
        if serr := r.rdb.SetEx(ctx, key, payload, r.cfg.TTL).Err(); serr != nil {
            r.log.Warn("module cache: redis set failed", zap.String("key", key), zap.Error(serr))
        }
    }
    return m, nil
}
