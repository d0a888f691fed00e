package handler

import (
	"net/http"

	"connectrpc.com/connect"
	"connectrpc.com/grpchealth"
	"connectrpc.com/otelconnect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
)

type Handler struct {
	informers *InformerService
	health    *SyncChecker
	registry  *prometheus.Registry
}

func NewHandler(informers *InformerService, health *SyncChecker, registry *prometheus.Registry) *Handler {
	return &Handler{
		informers: informers,
		health:    health,
		registry:  registry,
	}
}

// Mount registers the status service, health checks and metrics on mux.
func (h *Handler) Mount(mux *http.ServeMux) error {
	exporter, err := otelprom.New(otelprom.WithRegisterer(h.registry))
	if err != nil {
		return err
	}
	provider := metric.NewMeterProvider(metric.WithReader(exporter))

	otelInterceptor, err := otelconnect.NewInterceptor(otelconnect.WithMeterProvider(provider))
	if err != nil {
		return err
	}
	interceptors := connect.WithInterceptors(otelInterceptor)

	mux.Handle(h.informers.Handler(interceptors))
	mux.Handle(grpchealth.NewHandler(h.health))
	mux.Handle("/metrics", promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{Registry: h.registry}))
	return nil
}
