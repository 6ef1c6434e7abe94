package generation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// CachedGenerator serves identical requests from memory until they expire.
// Failures are never cached.
type CachedGenerator struct {
	next   Generator
	cache  *gocache.Cache
	logger *slog.Logger
}

func NewCachedGenerator(next Generator, ttl time.Duration) *CachedGenerator {
	return &CachedGenerator{
		next:   next,
		cache:  gocache.New(ttl, 2*ttl),
		logger: slog.Default().With("component", "generation_cache"),
	}
}

func (c *CachedGenerator) Generate(ctx context.Context, req Request) (string, error) {
	key := cacheKey(req)

	if v, ok := c.cache.Get(key); ok {
		text := v.(string)
		c.logger.Debug("cache hit",
			"key", key[:12],
			"response_length", len(text))
		return text, nil
	}

	text, err := c.next.Generate(ctx, req)
	if err != nil {
		return "", err
	}

	c.cache.Set(key, text, gocache.DefaultExpiration)
	return text, nil
}

// Len reports the number of cached responses, expired ones included.
func (c *CachedGenerator) Len() int {
	return c.cache.ItemCount()
}

func cacheKey(req Request) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%.4f\x00%d", req.System, req.Prompt, req.Temperature, req.MaxTokens)
	return hex.EncodeToString(h.Sum(nil))
}
