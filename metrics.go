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

package searchclient

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors a client reports to. A single
// Metrics may be shared by several clients.
type Metrics struct {
	requests *prometheus.CounterVec
	sniffs   *prometheus.CounterVec
	nodes    prometheus.Gauge
}

// NewMetrics creates the client collectors and registers them with the
// given registerer. If registerer is nil, the collectors are not registered.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "searchclient_requests_total",
			Help: "Total requests sent, by outcome.",
		}, []string{"outcome"}),
		sniffs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "searchclient_sniff_refreshes_total",
			Help: "Total node sniffing refreshes, by result.",
		}, []string{"result"}),
		nodes: factory.NewGauge(prometheus.GaugeOpts{
			Name: "searchclient_nodes",
			Help: "Number of node addresses currently known.",
		}),
	}
}

func (m *Metrics) observeRequest(outcome string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observeSniff(known int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.sniffs.WithLabelValues("failure").Inc()
		return
	}
	m.sniffs.WithLabelValues("success").Inc()
	m.nodes.Set(float64(known))
}

func (m *Metrics) setNodes(known int) {
	if m == nil {
		return
	}
	m.nodes.Set(float64(known))
}
