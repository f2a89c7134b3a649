// Package banks fetches and searches the bank directory backing the bank
// picker on the fiat transfer path.
package banks

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"tagpay/internal/api"
	"tagpay/internal/models"
)

const (
	directoryCacheKey = "tagpay:banks:directory"
	directoryCacheTTL = 12 * time.Hour
)

// Cache stores the fetched directory between runs. Optional.
type Cache interface {
	Get(ctx context.Context) ([]models.Bank, bool)
	Set(ctx context.Context, banks []models.Bank) error
}

// Directory serves the bank list, memoizing in process and through an
// optional shared cache. The directory endpoint is unauthenticated and on
// its own host, so Directory takes its own api.Doer.
type Directory struct {
	client api.Doer
	cache  Cache

	mu     sync.Mutex
	loaded []models.Bank
}

// New creates a Directory. cache may be nil.
func New(client api.Doer, cache Cache) *Directory {
	if client == nil {
		panic("api client is required")
	}
	return &Directory{client: client, cache: cache}
}

// List returns all banks, sorted by name.
func (d *Directory) List(ctx context.Context) ([]models.Bank, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.loaded != nil {
		return d.loaded, nil
	}
	if d.cache != nil {
		if banks, ok := d.cache.Get(ctx); ok {
			d.loaded = banks
			return banks, nil
		}
	}

	var resp models.BankDirectoryResponse
	if err := d.client.Get(ctx, "/bank", &resp); err != nil {
		return nil, fmt.Errorf("fetch bank directory: %w", err)
	}
	if !resp.Status {
		return nil, fmt.Errorf("bank directory unavailable")
	}
	banks := resp.Data
	sort.Slice(banks, func(i, j int) bool { return banks[i].Name < banks[j].Name })

	d.loaded = banks
	if d.cache != nil {
		if err := d.cache.Set(ctx, banks); err != nil {
			log.Printf("bank directory cache write: %v", err)
		}
	}
	return banks, nil
}

// Search filters the directory by case-insensitive substring match on the
// bank name. An empty term returns the full list.
func (d *Directory) Search(ctx context.Context, term string) ([]models.Bank, error) {
	banks, err := d.List(ctx)
	if err != nil {
		return nil, err
	}
	if term == "" {
		return banks, nil
	}
	needle := strings.ToLower(term)
	var out []models.Bank
	for _, b := range banks {
		if strings.Contains(strings.ToLower(b.Name), needle) {
			out = append(out, b)
		}
	}
	return out, nil
}

// Find resolves a bank by exact code, exact name or an unambiguous name
// substring.
func (d *Directory) Find(ctx context.Context, query string) (models.Bank, error) {
	banks, err := d.List(ctx)
	if err != nil {
		return models.Bank{}, err
	}
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return models.Bank{}, fmt.Errorf("bank name or code is required")
	}
	var partial []models.Bank
	for _, b := range banks {
		name := strings.ToLower(b.Name)
		if b.Code == query || name == needle {
			return b, nil
		}
		if strings.Contains(name, needle) {
			partial = append(partial, b)
		}
	}
	switch len(partial) {
	case 1:
		return partial[0], nil
	case 0:
		return models.Bank{}, fmt.Errorf("no bank matches %q", query)
	default:
		return models.Bank{}, fmt.Errorf("%q matches %d banks, be more specific", query, len(partial))
	}
}

// RedisCache shares the fetched directory across processes.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context) ([]models.Bank, bool) {
	raw, err := c.client.Get(ctx, directoryCacheKey).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("bank directory cache read: %v", err)
		}
		return nil, false
	}
	var banks []models.Bank
	if err := json.Unmarshal([]byte(raw), &banks); err != nil {
		return nil, false
	}
	return banks, true
}

func (c *RedisCache) Set(ctx context.Context, banks []models.Bank) error {
	raw, err := json.Marshal(banks)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, directoryCacheKey, raw, directoryCacheTTL).Err()
}
