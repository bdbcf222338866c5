// Package prometheus serves the metrics of the service on a dedicated
// registry, so only the service collectors and the runtime ones are exposed.
package prometheus

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/slotdraw/backend/internal/common"
	"github.com/slotdraw/backend/pkg/logger"
)

// NewRegistry returns a registry holding the runtime collectors and every
// counter and histogram declared in common.
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewBuildInfoCollector(),
	)

	for _, counter := range common.PromCounters {
		registry.MustRegister(counter)
	}

	for _, histogram := range common.PromHistograms {
		registry.MustRegister(histogram)
	}

	return registry
}

// NewHandler serves registry in the text exposition format. A collector that
// fails is logged and the other metrics are still served.
func NewHandler(registry *prometheus.Registry, log logger.Logger) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		ErrorLog:      errorLog{log: log},
		ErrorHandling: promhttp.ContinueOnError,
		Registry:      registry,
	})
}

type errorLog struct {
	log logger.Logger
}

func (l errorLog) Println(v ...any) {
	l.log.Errorf("Cannot serve metrics: %s", fmt.Sprint(v...))
}
