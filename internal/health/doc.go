// Package health provides liveness and readiness endpoints for the jwkset
// watch mode.
//
// Readiness aggregates registered checks; the key set check reports
// unhealthy until a key set has been loaded:
//
//	checker := health.NewChecker(version)
//	checker.RegisterCheck("keyset", health.KeySetCheck(store.Current))
//
//	mux.HandleFunc("/health", checker.HealthHandler())
//	mux.HandleFunc("/ready", checker.ReadinessHandler())
//	mux.HandleFunc("/live", checker.LivenessHandler())
package health
