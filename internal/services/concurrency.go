package services

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// ConcurrencyConfig defines how many syncs of one shop may run at once
type ConcurrencyConfig struct {
	MaxConcurrentPerShop int           // Max concurrent syncs per shop
	QueueTimeout         time.Duration // Max time to wait for a slot
}

// DefaultConcurrencyConfig returns production-ready defaults
func DefaultConcurrencyConfig() *ConcurrencyConfig {
	return &ConcurrencyConfig{
		MaxConcurrentPerShop: 2,
		QueueTimeout:         5 * time.Minute,
	}
}

// ShopSemaphore bounds the background syncs running for each shop
type ShopSemaphore struct {
	mu     sync.Mutex
	sems   map[string]chan struct{}
	active map[string]int
	config *ConcurrencyConfig
}

// NewShopSemaphore creates a new per-shop semaphore
func NewShopSemaphore(config *ConcurrencyConfig) *ShopSemaphore {
	if config == nil {
		config = DefaultConcurrencyConfig()
	}
	if config.MaxConcurrentPerShop < 1 {
		config.MaxConcurrentPerShop = 1
	}
	return &ShopSemaphore{
		sems:   make(map[string]chan struct{}),
		active: make(map[string]int),
		config: config,
	}
}

func (s *ShopSemaphore) semFor(shop string) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sem, ok := s.sems[shop]; ok {
		return sem
	}
	sem := make(chan struct{}, s.config.MaxConcurrentPerShop)
	s.sems[shop] = sem
	return sem
}

// Acquire waits for a slot of shop. The returned release must be called when done.
func (s *ShopSemaphore) Acquire(ctx context.Context, shop string) (func(), error) {
	queueCtx, cancel := context.WithTimeout(ctx, s.config.QueueTimeout)
	defer cancel()

	sem := s.semFor(shop)
	select {
	case sem <- struct{}{}:
	case <-queueCtx.Done():
		return nil, fmt.Errorf("timeout waiting for concurrency slot: shop=%s", shop)
	}

	s.mu.Lock()
	s.active[shop]++
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.active[shop]--
			s.mu.Unlock()
			<-sem
		})
	}, nil
}

// ActiveCount returns the number of syncs running for a shop
func (s *ShopSemaphore) ActiveCount(shop string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active[shop]
}

// Stats returns the active sync count per shop
func (s *ShopSemaphore) Stats() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make(map[string]int, len(s.active))
	for k, v := range s.active {
		active[k] = v
	}
	return map[string]interface{}{
		"maxConcurrentPerShop": s.config.MaxConcurrentPerShop,
		"queueTimeout":         s.config.QueueTimeout.String(),
		"activeByShop":         active,
	}
}
