package service

import (
    "context"
    "encoding/json"
    "log"
    "time"

    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/library-management/internal/model"
)

// settingsCacheKey holds the serialized policy singleton in Redis.
const settingsCacheKey = "settings:policy"

// settingsCacheTTL bounds staleness if an invalidation is ever lost.
const settingsCacheTTL = 5 * time.Minute

// SettingsStore persists the policy singleton.
type SettingsStore interface {
    Get(ctx context.Context) (model.PolicySettings, error)
    Update(ctx context.Context, s model.PolicySettings) error
}

// SettingsService supplies the policy limits consulted on every
// borrowing decision and applies admin edits. Reads go through a
// Redis cache that is explicitly invalidated on every write; when
// Redis is unavailable the service degrades to direct database
// reads.
type SettingsService struct {
    store SettingsStore
    cache *redis.Client
}

// NewSettingsService constructs a SettingsService. The cache client
// may be nil, in which case caching is disabled.
func NewSettingsService(store SettingsStore, cache *redis.Client) *SettingsService {
    if store == nil {
        panic("nil store passed to NewSettingsService")
    }
    return &SettingsService{store: store, cache: cache}
}

// Policy returns the current policy settings, lazily creating the
// defaults (14/2/5/7) on first read if none exist.
func (s *SettingsService) Policy(ctx context.Context) (model.PolicySettings, error) {
    if s.cache != nil {
        if raw, err := s.cache.Get(ctx, settingsCacheKey).Bytes(); err == nil {
            var cached model.PolicySettings
            if err := json.Unmarshal(raw, &cached); err == nil {
                return cached, nil
            }
        }
    }
    settings, err := s.store.Get(ctx)
    if err != nil {
        return model.PolicySettings{}, err
    }
    if s.cache != nil {
        if raw, err := json.Marshal(settings); err == nil {
            if err := s.cache.Set(ctx, settingsCacheKey, raw, settingsCacheTTL).Err(); err != nil {
                log.Printf("settings: cache set failed: %v", err)
            }
        }
    }
    return settings, nil
}

// SetBorrowDayLimit updates the loan period in days.
func (s *SettingsService) SetBorrowDayLimit(ctx context.Context, v int) (model.PolicySettings, error) {
    return s.update(ctx, func(p *model.PolicySettings) { p.BorrowDayLimit = v })
}

// SetBorrowExtendLimit updates the maximum extensions per borrow.
func (s *SettingsService) SetBorrowExtendLimit(ctx context.Context, v int) (model.PolicySettings, error) {
    return s.update(ctx, func(p *model.PolicySettings) { p.BorrowExtendLimit = v })
}

// SetBorrowBookLimit updates the maximum concurrent borrows per user.
func (s *SettingsService) SetBorrowBookLimit(ctx context.Context, v int) (model.PolicySettings, error) {
    return s.update(ctx, func(p *model.PolicySettings) { p.BorrowBookLimit = v })
}

// SetBookingDaysLimit updates the maximum booking horizon in days.
func (s *SettingsService) SetBookingDaysLimit(ctx context.Context, v int) (model.PolicySettings, error) {
    return s.update(ctx, func(p *model.PolicySettings) { p.BookingDaysLimit = v })
}

// update applies one field edit to the singleton, persists it and
// invalidates the cache entry so the next read observes the new
// value.
func (s *SettingsService) update(ctx context.Context, apply func(*model.PolicySettings)) (model.PolicySettings, error) {
    settings, err := s.store.Get(ctx)
    if err != nil {
        return model.PolicySettings{}, err
    }
    apply(&settings)
    if err := s.store.Update(ctx, settings); err != nil {
        return model.PolicySettings{}, err
    }
    if s.cache != nil {
        if err := s.cache.Del(ctx, settingsCacheKey).Err(); err != nil {
            log.Printf("settings: cache invalidation failed: %v", err)
        }
    }
    return settings, nil
}
