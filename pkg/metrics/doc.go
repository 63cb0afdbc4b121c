// Package metrics exposes Prometheus series for the revalidating cache, the
// backend client and the HTTP server on a private registry.
//
//	m := metrics.New()
//	store := swr.New(swr.WithRecorder(m.Recorder()))
//	client, _ := apiclient.New(origin, apiclient.WithObserver(m))
//	router.Handle("/metrics", m.Handler())
package metrics
