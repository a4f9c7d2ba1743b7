// Package observability provides structured logging and distributed
// tracing for jwkset.
//
// Logging is backed by zap; tracing by OpenTelemetry with an optional
// OTLP gRPC exporter.
//
// # Logging
//
//	logger, err := observability.NewLogger(observability.LogConfig{
//	    Level:  "info",
//	    Format: "json",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Sync()
//
//	logger.Warn("skipping key", observability.String("kid", kid))
//
// # Tracing
//
//	tracer, err := observability.NewTracer(observability.TracerConfig{
//	    ServiceName:  "jwkset",
//	    OTLPEndpoint: "localhost:4317",
//	    Enabled:      true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tracer.Shutdown(ctx)
package observability
