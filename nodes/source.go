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
	"errors"
	"sync"
	"sync/atomic"
)

// ErrEmpty is returned by a Source that knows no addresses at all.
var ErrEmpty = errors.New("no node addresses available")

// Address is the base URL of a node, such as "http://10.0.0.1:9200".
// Addresses are compared by string equality.
type Address string

// Source supplies the node address for each request.
type Source interface {
	// Next returns the address to send the next request to. Implementations
	// must be safe for concurrent use.
	Next(ctx context.Context) (Address, error)
}

// Registry is the shared, mutable list of known node addresses. Lookups take
// a read lock; replacing the list takes the write lock. A Registry is owned
// by a client and shared by handle between the RoundRobin that reads it and
// the Sniffer that refreshes it.
type Registry struct {
	mu    sync.RWMutex
	addrs []Address
}

// NewRegistry returns a registry holding a copy of the given addresses.
func NewRegistry(addrs ...Address) *Registry {
	return &Registry{addrs: append([]Address(nil), addrs...)}
}

// Addresses returns a copy of the current address list.
func (r *Registry) Addresses() []Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Address(nil), r.addrs...)
}

// Len returns the number of known addresses.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.addrs)
}

// Replace swaps in a copy of the given addresses, discarding the old list.
func (r *Registry) Replace(addrs []Address) {
	addrs = append([]Address(nil), addrs...)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.addrs = addrs
}

func (r *Registry) at(counter uint64) (Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.addrs) == 0 {
		return "", ErrEmpty
	}
	return r.addrs[counter%uint64(len(r.addrs))], nil
}

// RoundRobin is a Source that picks addresses in sequential order. The
// i-th call to Next (counting from zero) returns the address at index
// i mod N of the registry's list at the time of the call.
type RoundRobin struct {
	registry *Registry
	// +checkatomic
	counter atomic.Int64
}

// NewRoundRobin returns a round-robin source over the given registry.
func NewRoundRobin(registry *Registry) *RoundRobin {
	rr := &RoundRobin{registry: registry}
	rr.counter.Store(-1)
	return rr
}

// NewStatic returns a round-robin source over a fixed set of addresses.
// With no addresses, every call to Next fails with ErrEmpty.
func NewStatic(addrs ...Address) *RoundRobin {
	return NewRoundRobin(NewRegistry(addrs...))
}

// Next implements Source. It never blocks on I/O.
func (r *RoundRobin) Next(context.Context) (Address, error) {
	return r.registry.at(uint64(r.counter.Add(1)))
}

// Registry returns the registry this source reads from.
func (r *RoundRobin) Registry() *Registry {
	return r.registry
}
