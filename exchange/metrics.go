// Copyright (C) 2024, Vortelus, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package exchange

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	poolsCreated prometheus.Counter
	swaps        *prometheus.CounterVec
	liquidityOps *prometheus.CounterVec
	opFailures   prometheus.Counter
}

func newMetrics(r prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		poolsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "exchange",
			Name:      "pools_created",
			Help:      "number of pools created",
		}),
		swaps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "exchange",
			Name:      "swaps",
			Help:      "number of executed swaps by pool kind",
		}, []string{"kind"}),
		liquidityOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "exchange",
			Name:      "liquidity_ops",
			Help:      "number of executed liquidity operations by type",
		}, []string{"op"}),
		opFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "exchange",
			Name:      "op_failures",
			Help:      "number of state-changing operations rejected",
		}),
	}
	if r == nil {
		return m, nil
	}
	errs := errors.Join(
		r.Register(m.poolsCreated),
		r.Register(m.swaps),
		r.Register(m.liquidityOps),
		r.Register(m.opFailures),
	)
	return m, errs
}
