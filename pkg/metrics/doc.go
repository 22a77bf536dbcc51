// Package metrics exports transport and batch activity as Prometheus metrics.
//
// A Collector implements both transport.Observer and batch.Observer, so one
// instance can be handed to the client options:
//
//	reg := prometheus.NewRegistry()
//	m := metrics.NewCollector(reg)
//	c, _ := sapphire.New(cfg, sapphire.WithObserver(m), sapphire.WithBatchObserver(m))
//	http.Handle("/metrics", metrics.Handler(reg))
package metrics
