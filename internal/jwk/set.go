package jwk

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/vyrodovalexey/jwkset/internal/observability"
)

// builtKey is the result of a key builder; exactly one field is set.
type builtKey struct {
	signer   Signer
	verifier Verifier
}

// keyBuilder turns a key object of one key family into a capability.
type keyBuilder func(obj keyObject) (builtKey, error)

// keyBuilders maps "kty" values to their builders. Supporting a new key
// family means adding a builder here together with its Signer and
// Verifier implementations.
var keyBuilders = map[string]keyBuilder{
	KeyTypeRSA: buildRSA,
}

// Set holds the signers and verifiers derived from a JWK set document,
// indexed by key ID. A Set is immutable once returned by Parse and may be
// read concurrently. Capabilities obtained from it stay valid for as long
// as the caller keeps the Set.
type Set struct {
	signers   map[string]Signer
	verifiers map[string]Verifier
}

// Option configures Parse.
type Option func(*parser)

// WithLogger sets the logger that receives per-key warnings.
func WithLogger(logger observability.Logger) Option {
	return func(p *parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(metrics *Metrics) Option {
	return func(p *parser) {
		if metrics != nil {
			p.metrics = metrics
		}
	}
}

type parser struct {
	logger  observability.Logger
	metrics *Metrics
}

// Parse converts a JWK set document (RFC 7517 section 5) into a Set.
//
// Structural problems fail the whole parse: invalid JSON, a missing or
// non-array "keys" member, or an element of "keys" that is not an object.
// Problems confined to one key (missing "kty" or "kid", unsupported key
// type, missing or malformed key parameters) are logged as warnings and
// that key is skipped. When two keys of the same kind share a key ID the
// first one is kept.
func Parse(data []byte, opts ...Option) (*Set, error) {
	p := &parser{
		logger:  observability.NopLogger(),
		metrics: GetSharedMetrics(),
	}
	for _, opt := range opts {
		opt(p)
	}

	start := time.Now()
	set, err := p.parse(data)
	if err != nil {
		p.metrics.RecordParse(StatusError, time.Since(start))
		return nil, err
	}
	p.metrics.RecordParse(StatusSuccess, time.Since(start))

	p.logger.Debug("parsed JWK set",
		observability.Int("signers", len(set.signers)),
		observability.Int("verifiers", len(set.verifiers)),
	)

	return set, nil
}

// ParseString is like Parse but takes the document as a string.
func ParseString(s string, opts ...Option) (*Set, error) {
	return Parse([]byte(s), opts...)
}

func (p *parser) parse(data []byte) (*Set, error) {
	doc, err := decodeDocument(data)
	if err != nil {
		return nil, err
	}

	rawKeys, ok := doc["keys"]
	if !ok {
		return nil, newDocumentError("failed to locate 'keys' in JWK set", nil)
	}

	keys, ok := rawKeys.([]any)
	if !ok {
		return nil, newDocumentError("'keys' is not an array", nil)
	}

	set := &Set{
		signers:   make(map[string]Signer),
		verifiers: make(map[string]Verifier),
	}

	for i, rawKey := range keys {
		obj, ok := rawKey.(map[string]any)
		if !ok {
			return nil, newDocumentError(
				fmt.Sprintf("'keys' must contain objects only, element %d is not an object", i), nil)
		}

		outcome, err := set.add(i, keyObject(obj))
		p.metrics.RecordKey(outcome)
		if err != nil {
			fields := []observability.Field{observability.Int("index", i)}
			var keyErr *KeyError
			if errors.As(err, &keyErr) && keyErr.KeyID != "" {
				fields = append(fields, observability.String("kid", keyErr.KeyID))
			}
			p.logger.Warn("ignoring JWK", append(fields, observability.Error(err))...)
		}
	}

	return set, nil
}

// decodeDocument decodes data as a single JSON object.
func decodeDocument(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, newDocumentError("failed to parse into JSON", err)
	}
	if doc == nil {
		return nil, newDocumentError("document is not a JSON object", nil)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, newDocumentError("unexpected data after JSON object", err)
	}

	return doc, nil
}

// add builds one key object and registers the resulting capability.
func (s *Set) add(index int, obj keyObject) (string, error) {
	kty, err := stringField(obj, "kty")
	if err != nil {
		return OutcomeSkipped, &KeyError{Index: index, Message: "failed to parse JWK", Cause: err}
	}

	kid, err := stringField(obj, "kid")
	if err != nil {
		return OutcomeSkipped, &KeyError{Index: index, Message: "failed to parse JWK", Cause: err}
	}

	build, ok := keyBuilders[kty]
	if !ok {
		return OutcomeSkipped, &KeyError{
			KeyID:   kid,
			Index:   index,
			Message: "failed to parse JWK",
			Cause:   fmt.Errorf("%w: %q", ErrUnsupportedKeyType, kty),
		}
	}

	key, err := build(obj)
	if err != nil {
		return OutcomeSkipped, &KeyError{KeyID: kid, Index: index, Message: "failed to build key", Cause: err}
	}

	switch {
	case key.signer != nil:
		if _, exists := s.signers[kid]; exists {
			return OutcomeDuplicate, &KeyError{
				KeyID: kid, Index: index, Message: "signer already registered", Cause: ErrDuplicateKeyID,
			}
		}
		s.signers[kid] = key.signer
		return OutcomeSigner, nil
	case key.verifier != nil:
		if _, exists := s.verifiers[kid]; exists {
			return OutcomeDuplicate, &KeyError{
				KeyID: kid, Index: index, Message: "verifier already registered", Cause: ErrDuplicateKeyID,
			}
		}
		s.verifiers[kid] = key.verifier
		return OutcomeVerifier, nil
	default:
		return OutcomeSkipped, &KeyError{KeyID: kid, Index: index, Message: "key builder returned no capability"}
	}
}

// FindSigner returns the signer registered under kid.
func (s *Set) FindSigner(kid string) (Signer, error) {
	if signer, ok := s.signers[kid]; ok {
		return signer, nil
	}
	return nil, NewKeyError(kid, "lookup failed", ErrSignerNotFound)
}

// FindVerifier returns the verifier registered under kid.
func (s *Set) FindVerifier(kid string) (Verifier, error) {
	if verifier, ok := s.verifiers[kid]; ok {
		return verifier, nil
	}
	return nil, NewKeyError(kid, "lookup failed", ErrVerifierNotFound)
}

// Signers returns a copy of the signers indexed by key ID.
func (s *Set) Signers() map[string]Signer {
	return maps.Clone(s.signers)
}

// Verifiers returns a copy of the verifiers indexed by key ID.
func (s *Set) Verifiers() map[string]Verifier {
	return maps.Clone(s.verifiers)
}

// SignerKeyIDs returns the sorted key IDs of all signers.
func (s *Set) SignerKeyIDs() []string {
	return slices.Sorted(maps.Keys(s.signers))
}

// VerifierKeyIDs returns the sorted key IDs of all verifiers.
func (s *Set) VerifierKeyIDs() []string {
	return slices.Sorted(maps.Keys(s.verifiers))
}

// NumSigners returns the number of registered signers.
func (s *Set) NumSigners() int {
	return len(s.signers)
}

// NumVerifiers returns the number of registered verifiers.
func (s *Set) NumVerifiers() int {
	return len(s.verifiers)
}

// Len returns the number of registered signers and verifiers.
func (s *Set) Len() int {
	return s.NumSigners() + s.NumVerifiers()
}
