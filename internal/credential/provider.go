// Package credential owns the Graph API access token: where it is stored
// and the process-wide in-memory copy handed to outgoing calls.
package credential

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrUnavailable is returned when no token can be loaded.
var ErrUnavailable = errors.New("credential unavailable")

// Provider supplies the bearer token to outgoing calls.
type Provider interface {
	// Get returns the cached token, loading it from storage on first use.
	Get() (string, error)
	// Set persists the token and replaces the cached value.
	Set(token string) error
	// Invalidate drops the cached value; storage is left untouched.
	Invalidate()
}

// CachedProvider caches the token loaded from a Store.
type CachedProvider struct {
	store Store

	mu    sync.RWMutex
	token string
}

func NewCachedProvider(store Store) *CachedProvider {
	return &CachedProvider{store: store}
}

func (p *CachedProvider) Get() (string, error) {
	p.mu.RLock()
	token := p.token
	p.mu.RUnlock()
	if token != "" {
		return token, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != "" {
		return p.token, nil
	}

	loaded, err := p.store.Load()
	if err != nil {
		return "", fmt.Errorf("get credential: %w", err)
	}
	p.token = loaded
	return p.token, nil
}

func (p *CachedProvider) Set(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("set credential: empty token")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.store.Save(token); err != nil {
		return fmt.Errorf("set credential: %w", err)
	}
	p.token = token
	return nil
}

func (p *CachedProvider) Invalidate() {
	p.mu.Lock()
	p.token = ""
	p.mu.Unlock()
}

// Cached reports the in-memory value without touching storage.
func (p *CachedProvider) Cached() (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.token, p.token != ""
}

// Available reports whether a token is cached or loadable. It never fills
// the cache, so a pending Invalidate stays in effect.
func (p *CachedProvider) Available() bool {
	if _, ok := p.Cached(); ok {
		return true
	}
	token, err := p.store.Load()
	return err == nil && token != ""
}

// Path returns where the token is persisted.
func (p *CachedProvider) Path() string {
	return p.store.Path()
}

// Mask shortens a token for display.
func Mask(token string) string {
	token = strings.TrimSpace(token)
	if token == "" {
		return ""
	}
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + "..." + token[len(token)-4:]
}
