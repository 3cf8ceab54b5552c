// Package memory is a mutex-guarded in-process Provider. It is the default
// backing store and the one unit tests run against.
package memory

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	v   []byte
	exp time.Time // zero => no TTL
}

type Provider struct {
	mu sync.RWMutex
	m  map[string]entry
}

func New() *Provider {
	return &Provider{m: make(map[string]entry)}
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	p.mu.RLock()
	e, ok := p.m[key]
	p.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !e.exp.IsZero() && time.Now().After(e.exp) {
		p.mu.Lock()
		delete(p.m, key)
		p.mu.Unlock()
		return nil, false, nil
	}
	return e.v, true, nil
}

func (p *Provider) Set(_ context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	p.mu.Lock()
	p.m[key] = entry{v: value, exp: exp}
	p.mu.Unlock()
	return true, nil
}

func (p *Provider) Del(_ context.Context, key string) error {
	p.mu.Lock()
	delete(p.m, key)
	p.mu.Unlock()
	return nil
}

func (p *Provider) Close(_ context.Context) error {
	p.mu.Lock()
	p.m = make(map[string]entry)
	p.mu.Unlock()
	return nil
}

// Len reports the number of live entries (expired ones included until read).
func (p *Provider) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.m)
}
