package gamedata

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// Fetcher resolves a game id against the upstream metadata provider. It must
// return ErrNotAvailable for ids that do not represent a matchable game.
type Fetcher interface {
	Fetch(ctx context.Context, id string) (*GameData, error)
}

// Options tune the cache. Zero values fall back to the defaults.
type Options struct {
	TTL             time.Duration // memory-tier entry lifetime
	TokensPerMinute int           // token-bucket replenishment rate
	Burst           int           // token-bucket capacity
	QueueWait       time.Duration // max time a fetch waits for a token
}

const (
	defaultTTL             = 7 * 24 * time.Hour
	defaultTokensPerMinute = 60
	defaultBurst           = 60
	defaultQueueWait       = 10 * time.Second
)

// Cache is the two-tier lookup: a TTL-bounded memory map over the durable
// store, with singleflight coalescing and a token-bucket limiter guarding the
// slow, rate-limited upstream fetch.
type Cache struct {
	fetcher   Fetcher
	store     *Store
	limiter   *rate.Limiter
	ttl       time.Duration
	queueWait time.Duration

	mu  sync.RWMutex
	mem map[string]memEntry

	group singleflight.Group
}

type memEntry struct {
	data    *GameData
	expires time.Time
}

// NewCache builds a cache over the given fetcher and durable store.
func NewCache(fetcher Fetcher, store *Store, opts Options) *Cache {
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.TokensPerMinute <= 0 {
		opts.TokensPerMinute = defaultTokensPerMinute
	}
	if opts.Burst <= 0 {
		opts.Burst = defaultBurst
	}
	if opts.QueueWait <= 0 {
		opts.QueueWait = defaultQueueWait
	}
	return &Cache{
		fetcher:   fetcher,
		store:     store,
		limiter:   rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.TokensPerMinute)), opts.Burst),
		ttl:       opts.TTL,
		queueWait: opts.QueueWait,
		mem:       make(map[string]memEntry),
	}
}

// Get resolves a game id: memory tier first, then the durable store, then a
// coalesced, rate-limited upstream fetch. Concurrent callers for the same
// uncached id share one upstream call; once that call settles the in-flight
// entry is dropped, so a later request starts fresh instead of replaying a
// stale result. All failure modes surface as ErrNotAvailable.
func (c *Cache) Get(ctx context.Context, id string) (*GameData, error) {
	if data, ok := c.fromMemory(id); ok {
		return data, nil
	}

	if c.store != nil {
		data, err := c.store.Get(ctx, id)
		if err != nil {
			log.Printf("Durable cache read failed for %s: %v", id, err)
		} else if data != nil {
			c.toMemory(id, data)
			return data, nil
		}
	}

	v, err, _ := c.group.Do(id, func() (interface{}, error) {
		return c.fetch(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return v.(*GameData), nil
}

func (c *Cache) fetch(ctx context.Context, id string) (*GameData, error) {
	waitCtx, cancel := context.WithTimeout(ctx, c.queueWait)
	defer cancel()
	if err := c.limiter.Wait(waitCtx); err != nil {
		log.Printf("Rate limit wait gave up for %s: %v", id, err)
		return nil, ErrNotAvailable
	}

	data, err := c.fetcher.Fetch(ctx, id)
	if err != nil {
		if err != ErrNotAvailable {
			log.Printf("Upstream fetch failed for %s: %v", id, err)
		}
		return nil, ErrNotAvailable
	}

	if c.store != nil {
		if err := c.store.Set(ctx, id, data); err != nil {
			log.Printf("Durable cache write failed for %s: %v", id, err)
		}
	}
	c.toMemory(id, data)
	return data, nil
}

func (c *Cache) fromMemory(id string) (*GameData, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.mem[id]
	if !ok || time.Now().After(entry.expires) {
		return nil, false
	}
	return entry.data, true
}

func (c *Cache) toMemory(id string, data *GameData) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mem[id] = memEntry{data: data, expires: time.Now().Add(c.ttl)}
}

// MatchedGame is a vote summary resolved into its full metadata record.
type MatchedGame struct {
	ID                string    `json:"id"`
	Likes             int       `json:"likes"`
	TotalParticipants int       `json:"total_participants"`
	Data              *GameData `json:"data"`
}

// Vote identifies one summary entry to resolve.
type Vote struct {
	ID                string `json:"id"`
	Likes             int    `json:"likes"`
	TotalParticipants int    `json:"total_participants"`
}

// Resolve populates a list of vote summaries with metadata. Entries whose id
// does not resolve are dropped; one unavailable game never blocks the rest.
func (c *Cache) Resolve(ctx context.Context, votes []Vote) []MatchedGame {
	out := make([]MatchedGame, 0, len(votes))
	for _, vote := range votes {
		data, err := c.Get(ctx, vote.ID)
		if err != nil {
			continue
		}
		out = append(out, MatchedGame{
			ID:                vote.ID,
			Likes:             vote.Likes,
			TotalParticipants: vote.TotalParticipants,
			Data:              data,
		})
	}
	return out
}
