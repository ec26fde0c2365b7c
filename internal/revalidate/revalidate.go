// Package revalidate drops stale copies of public pages after the chart
// configuration changes.
package revalidate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// Invalidator is satisfied by settings.Invalidator.
type Invalidator interface {
	Invalidate(ctx context.Context, path string) error
}

// Entry is one cached response body. Version is the fingerprint of the data
// the body was rendered from.
type Entry struct {
	Version     string
	ContentType string
	Body        []byte
}

// Cache holds rendered chart responses keyed by request path. Every entry is
// derived from the same chart document, so any invalidation drops them all.
// Saves made by another process never reach Invalidate; Lookup guards against
// that by comparing versions.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewCache() *Cache {
	return &Cache{entries: map[string]Entry{}}
}

func (c *Cache) Get(key string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e, ok
}

// Lookup returns the entry for key only when it was rendered from version.
func (c *Cache) Lookup(key, version string) (Entry, bool) {
	e, ok := c.Get(key)
	if !ok || e.Version != version {
		return Entry{}, false
	}
	return e, true
}

func (c *Cache) Put(key string, e Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = e
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) Invalidate(context.Context, string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string]Entry{}
	return nil
}

// Webhook asks the public site to rebuild a page, Next.js style:
// POST {"path": ..., "secret": ...}.
type Webhook struct {
	url    string
	secret string
	http   *resty.Client
}

func NewWebhook(url, secret string) *Webhook {
	return &Webhook{url: url, secret: secret, http: resty.New().SetTimeout(10 * time.Second)}
}

func (w *Webhook) Invalidate(ctx context.Context, path string) error {
	resp, err := w.http.R().SetContext(ctx).
		SetBody(map[string]string{"path": path, "secret": w.secret}).
		Post(w.url)
	if err != nil {
		return fmt.Errorf("revalidate %s: %w", path, err)
	}
	if resp.IsError() {
		return fmt.Errorf("revalidate %s: %s", path, resp.Status())
	}
	return nil
}

// Multi calls every invalidator and joins their errors.
type Multi []Invalidator

func (m Multi) Invalidate(ctx context.Context, path string) error {
	var errs []error
	for _, inv := range m {
		if inv == nil {
			continue
		}
		if err := inv.Invalidate(ctx, path); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
