package keystore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vyrodovalexey/jwkset/internal/jwk"
	"github.com/vyrodovalexey/jwkset/internal/observability"
)

const tracerName = "github.com/vyrodovalexey/jwkset/internal/keystore"

// ErrNoKeySet is returned by lookups before the first successful load.
var ErrNoKeySet = errors.New("no key set loaded")

// Store holds the current key set. It is safe for concurrent use.
type Store struct {
	current      atomic.Pointer[jwk.Set]
	logger       observability.Logger
	metrics      *Metrics
	parseMetrics *jwk.Metrics
	tracer       trace.Tracer
	now          func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(logger observability.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the key store metrics.
func WithMetrics(metrics *Metrics) Option {
	return func(s *Store) {
		if metrics != nil {
			s.metrics = metrics
		}
	}
}

// WithParseMetrics sets the metrics passed to jwk.Parse.
func WithParseMetrics(metrics *jwk.Metrics) Option {
	return func(s *Store) {
		if metrics != nil {
			s.parseMetrics = metrics
		}
	}
}

// WithTracer sets the tracer used for load spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Store) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// NewStore creates an empty Store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		logger:       observability.NopLogger(),
		metrics:      GetSharedMetrics(),
		parseMetrics: jwk.GetSharedMetrics(),
		tracer:       otel.Tracer(tracerName),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load parses data and installs the result as the current key set. On
// failure the previous key set stays in place.
func (s *Store) Load(ctx context.Context, data []byte) (*jwk.Set, error) {
	ctx, span := observability.StartSpan(ctx, s.tracer, "keystore.Load",
		trace.WithAttributes(attribute.Int("jwk.document.size", len(data))),
	)
	defer span.End()
	logger := s.logger.WithContext(ctx)

	if err := ctx.Err(); err != nil {
		return nil, s.fail(span, logger, err)
	}

	set, err := jwk.Parse(data,
		jwk.WithLogger(logger),
		jwk.WithMetrics(s.parseMetrics),
	)
	if err != nil {
		return nil, s.fail(span, logger, err)
	}

	signers, verifiers := set.NumSigners(), set.NumVerifiers()
	s.current.Store(set)
	s.metrics.RecordReload(StatusSuccess)
	s.metrics.SetKeys(signers, verifiers, s.now())

	span.SetAttributes(
		attribute.Int("jwk.signers", signers),
		attribute.Int("jwk.verifiers", verifiers),
	)
	span.SetStatus(codes.Ok, "")

	logger.Info("key set loaded",
		observability.Int("signers", signers),
		observability.Int("verifiers", verifiers),
	)

	return set, nil
}

// LoadFile reads the document at path and loads it.
func (s *Store) LoadFile(ctx context.Context, path string) (*jwk.Set, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is operator supplied
	if err != nil {
		s.metrics.RecordReload(StatusError)
		s.logger.WithContext(ctx).Error("failed to read key set",
			observability.String("path", path),
			observability.Error(err),
		)
		return nil, fmt.Errorf("failed to read key set %s: %w", path, err)
	}

	return s.Load(ctx, data)
}

// Current returns the current key set, or nil before the first load.
func (s *Store) Current() *jwk.Set {
	return s.current.Load()
}

// FindSigner looks up a signer in the current key set.
func (s *Store) FindSigner(kid string) (jwk.Signer, error) {
	set := s.current.Load()
	if set == nil {
		return nil, ErrNoKeySet
	}
	return set.FindSigner(kid)
}

// FindVerifier looks up a verifier in the current key set.
func (s *Store) FindVerifier(kid string) (jwk.Verifier, error) {
	set := s.current.Load()
	if set == nil {
		return nil, ErrNoKeySet
	}
	return set.FindVerifier(kid)
}

func (s *Store) fail(span trace.Span, logger observability.Logger, err error) error {
	s.metrics.RecordReload(StatusError)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	fields := []observability.Field{observability.Error(err)}
	if prev := s.current.Load(); prev != nil {
		fields = append(fields, observability.Bool("kept_previous", true))
	}
	logger.Error("failed to load key set", fields...)

	return err
}
