// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/danielhkuo/votebox/metrics"
	"github.com/danielhkuo/votebox/models"
)

type snapshot struct {
	result  models.TallyResult
	fetched time.Time
}

// Poller serves live results that are at most one interval old.
// Concurrent refreshes of the same campaign share one computation.
type Poller struct {
	engine   *Engine
	interval time.Duration
	now      func() time.Time

	group singleflight.Group
	mu    sync.RWMutex
	cache map[string]snapshot
}

func NewPoller(e *Engine, interval time.Duration) *Poller {
	return &Poller{
		engine:   e,
		interval: interval,
		now:      time.Now,
		cache:    make(map[string]snapshot),
	}
}

// Results returns a cached snapshot younger than the interval, or
// computes a fresh one.
func (p *Poller) Results(ctx context.Context, campaignID string) (models.TallyResult, error) {
	p.mu.RLock()
	snap, ok := p.cache[campaignID]
	p.mu.RUnlock()
	if ok && p.now().Sub(snap.fetched) < p.interval {
		metrics.RecordLiveResults(metrics.ResultCacheHit)
		return snap.result, nil
	}

	// The computation is shared, so one caller giving up must not fail the rest.
	v, err, shared := p.group.Do(campaignID, func() (any, error) {
		r, err := p.engine.ComputeResults(context.WithoutCancel(ctx), campaignID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				p.Invalidate(campaignID)
			}
			return nil, err
		}
		p.mu.Lock()
		p.cache[campaignID] = snapshot{result: r, fetched: p.now()}
		p.mu.Unlock()
		return r, nil
	})
	if shared {
		metrics.RecordLiveResults(metrics.ResultCacheShared)
	} else {
		metrics.RecordLiveResults(metrics.ResultCacheMiss)
	}
	if err != nil {
		return models.TallyResult{}, err
	}
	return v.(models.TallyResult), nil
}

// Invalidate drops the cached snapshot for a campaign.
func (p *Poller) Invalidate(campaignID string) {
	p.mu.Lock()
	delete(p.cache, campaignID)
	p.mu.Unlock()
}
