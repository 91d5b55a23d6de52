// Copyright 2023 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package nodes

import (
	"context"
	"sync"
	"time"

	"github.com/bufbuild/searchclient/internal"
	"go.uber.org/zap"
)

const defaultSniffInterval = 5 * time.Minute

// SnifferOption is an option used to customize the behavior of a Sniffer.
type SnifferOption interface {
	apply(*Sniffer)
}

// WithInterval configures how long a successfully sniffed node set stays
// fresh. Once it has elapsed, the next call to Next refreshes the set. Zero
// disables periodic refreshes, leaving only the initial one and retries
// after failures. If no WithInterval option is used, a default of 5 minutes
// is used.
func WithInterval(interval time.Duration) SnifferOption {
	return snifferOptionFunc(func(s *Sniffer) {
		s.interval = interval
	})
}

// WithRetryInterval configures the minimum time between a failed refresh
// and the next attempt. If zero or no WithRetryInterval option is used, the
// very next call to Next retries.
func WithRetryInterval(interval time.Duration) SnifferOption {
	return snifferOptionFunc(func(s *Sniffer) {
		s.retryInterval = interval
	})
}

// WithLogger configures the logger used to report refreshes. If not
// provided, nothing is logged.
func WithLogger(logger *zap.Logger) SnifferOption {
	return snifferOptionFunc(func(s *Sniffer) {
		s.logger = logger
	})
}

// WithRefreshHook configures a function that is called after every refresh
// attempt with the resulting node set, or with the error that caused the
// refresh to fail. It is called from the goroutine that ran the refresh.
func WithRefreshHook(hook func(addrs []Address, err error)) SnifferOption {
	return snifferOptionFunc(func(s *Sniffer) {
		s.onRefresh = hook
	})
}

// Sniffer is a Source that discovers node addresses from the cluster
// itself. It is safe for concurrent use.
type Sniffer struct {
	base          Address
	prober        Prober
	picker        *RoundRobin
	clock         internal.Clock
	logger        *zap.Logger
	interval      time.Duration
	retryInterval time.Duration
	onRefresh     func([]Address, error)

	mu sync.Mutex
	// +checklocks:mu
	needsRefresh bool
	// +checklocks:mu
	refreshing bool
	// +checklocks:mu
	lastRefresh time.Time
	// +checklocks:mu
	lastFailure time.Time
}

// NewSniffer returns a sniffer that initially knows only base. The first
// call to Next refreshes the node set through prober. If a refresh finds no
// nodes, the set falls back to base. Sniffed addresses use the scheme of
// the node they were discovered through.
func NewSniffer(base Address, prober Prober, options ...SnifferOption) *Sniffer {
	return NewSnifferWithRegistry(base, NewRegistry(base), prober, options...)
}

// NewSnifferWithRegistry is like NewSniffer, but reads and refreshes the
// given registry instead of creating its own. The registry's current
// contents are used until the first refresh completes.
func NewSnifferWithRegistry(base Address, registry *Registry, prober Prober, options ...SnifferOption) *Sniffer {
	sniffer := &Sniffer{
		base:         base,
		prober:       prober,
		picker:       NewRoundRobin(registry),
		clock:        internal.NewRealClock(),
		logger:       zap.NewNop(),
		interval:     defaultSniffInterval,
		needsRefresh: true,
	}
	for _, opt := range options {
		opt.apply(sniffer)
	}
	return sniffer
}

// Next implements Source. If the node set is stale and no refresh is in
// flight, this call runs the refresh before picking an address. Otherwise
// it picks from the current set without waiting.
//
// The refresh uses ctx, so cancelling the call that runs it fails that
// refresh, which is then retried later.
func (s *Sniffer) Next(ctx context.Context) (Address, error) {
	if s.claimRefresh() {
		s.refresh(ctx)
	}
	return s.picker.Next(ctx)
}

// Addresses returns the currently known node addresses.
func (s *Sniffer) Addresses() []Address {
	return s.picker.Registry().Addresses()
}

// Registry returns the registry this sniffer refreshes.
func (s *Sniffer) Registry() *Registry {
	return s.picker.Registry()
}

func (s *Sniffer) claimRefresh() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.refreshing || !s.staleLocked() {
		return false
	}
	s.refreshing = true
	s.needsRefresh = false
	return true
}

// +checklocks:s.mu
func (s *Sniffer) staleLocked() bool {
	if s.needsRefresh {
		return s.lastFailure.IsZero() || s.clock.Since(s.lastFailure) >= s.retryInterval
	}
	return s.interval > 0 && s.clock.Since(s.lastRefresh) >= s.interval
}

func (s *Sniffer) refresh(ctx context.Context) {
	addrs, err := s.probe(ctx)
	if err == nil {
		s.picker.Registry().Replace(addrs)
	}

	s.mu.Lock()
	s.refreshing = false
	if err != nil {
		s.needsRefresh = true
		s.lastFailure = s.clock.Now()
	} else {
		s.lastRefresh = s.clock.Now()
		s.lastFailure = time.Time{}
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("node sniffing failed, keeping previous nodes", zap.Error(err))
	} else {
		s.logger.Debug("refreshed nodes", zap.Int("count", len(addrs)))
	}
	if s.onRefresh != nil {
		s.onRefresh(addrs, err)
	}
}

func (s *Sniffer) probe(ctx context.Context) ([]Address, error) {
	via, err := s.picker.Next(ctx)
	if err != nil {
		return nil, err
	}
	addrs, err := s.prober.Probe(ctx, via)
	if err != nil {
		return nil, err
	}
	if len(addrs) == 0 {
		return []Address{s.base}, nil
	}
	return addrs, nil
}

type snifferOptionFunc func(*Sniffer)

func (f snifferOptionFunc) apply(s *Sniffer) {
	f(s)
}
