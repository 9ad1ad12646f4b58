// Copyright 2026 The Gateway Core Authors
// This file is part of gateway-core.
//
// gateway-core is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// gateway-core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with gateway-core. If not, see <http://www.gnu.org/licenses/>.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the process-wide counter/gauge set described in spec.md §9
// ("Global mutable state (metric counters) ... initialized at startup and
// frozen after. Components receive handles at construction"). The actual
// HTTP scrape endpoint lives outside the core (spec.md §1, §6).
type Registry struct {
	reg *prometheus.Registry

	TxsSubmitted  prometheus.Counter
	TxsLanded     prometheus.Counter
	TxsFinalized  prometheus.Counter
	TxsExpired    prometheus.Counter
	BlocksIngested *prometheus.CounterVec // labeled by commitment
	Lagged        prometheus.Counter
	AuditViolations prometheus.Counter
}

// NewRegistry constructs and registers every counter against a fresh
// prometheus.Registry, then freezes — no ad-hoc registration from hot paths
// after construction (spec.md §9).
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	r := &Registry{
		reg: reg,
		TxsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gateway", Subsystem: "tx", Name: "submitted_total",
			Help: "Transactions accepted by send_transaction.",
		}),
		TxsLanded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gateway", Subsystem: "tx", Name: "landed_total",
			Help: "Transactions observed inside a block's transaction list.",
		}),
		TxsFinalized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gateway", Subsystem: "tx", Name: "finalized_total",
			Help: "Transactions that reached the Finalized terminal state.",
		}),
		TxsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gateway", Subsystem: "tx", Name: "expired_total",
			Help: "Transactions that reached the Expired terminal state.",
		}),
		BlocksIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gateway", Subsystem: "ingest", Name: "blocks_total",
			Help: "Blocks emitted by the multiplexer, labeled by commitment.",
		}, []string{"commitment"}),
		Lagged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gateway", Subsystem: "ingest", Name: "lagged_total",
			Help: "Lagged(n) events observed by slow broadcast subscribers.",
		}),
		AuditViolations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gateway", Subsystem: "audit", Name: "violations_total",
			Help: "Invariant violations logged by the invariant auditor.",
		}),
	}
	reg.MustRegister(r.TxsSubmitted, r.TxsLanded, r.TxsFinalized, r.TxsExpired, r.BlocksIngested, r.Lagged, r.AuditViolations)
	return r
}

// Gatherer exposes the underlying prometheus.Gatherer for the out-of-scope
// HTTP scrape handler named in spec.md §6 to mount.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }
