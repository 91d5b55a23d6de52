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

// Package nodes decides which cluster node each request is sent to.
//
// The core interface is [Source], which yields the base URL of the node
// for the next request. Two implementations are provided:
//
//   - [RoundRobin] cycles through the addresses of a [Registry] using a
//     single lock-free counter. [NewStatic] returns one over a fixed list.
//   - [Sniffer] wraps a RoundRobin over the last known node set and keeps
//     that set fresh by periodically querying the cluster's nodes-info API
//     through a [Prober].
//
// # Refreshing Without Blocking
//
// A Sniffer starts out stale. The first call to Next that observes the
// stale state claims the refresh and performs it before picking an address.
// Every other caller that arrives while that refresh is in flight picks
// from the previous address set without waiting. So across any number of
// concurrent calls during one stale window, exactly one nodes-info request
// is issued.
//
// A successful refresh replaces the node set wholesale. A failed refresh
// keeps the previous set and marks the sniffer stale again, so that a later
// call retries. In both cases the caller that ran the refresh still gets a
// usable address.
//
// Node state is process-local and best-effort: nothing is persisted and
// nothing is shared across processes.
package nodes
