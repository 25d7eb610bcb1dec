// Copyright (C) 2026, The Leanr Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// NewPrefixGatherer returns a new, empty prometheus registry as a
// gatherer. It adds no prefix to the metrics it gathers.
func NewPrefixGatherer() prometheus.Gatherer {
	return prometheus.NewRegistry()
}