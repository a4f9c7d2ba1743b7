// Package keygen creates RSA key pairs and their JWK set documents, for use
// as fixtures and for bootstrapping a key store.
package keygen

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
)

// Defaults used when Options fields are zero.
const (
	DefaultBits      = 2048
	DefaultAlgorithm = "RS256"
	MinBits          = 2048
)

var supportedAlgorithms = []jwa.SignatureAlgorithm{
	jwa.RS256, jwa.RS384, jwa.RS512,
	jwa.PS256, jwa.PS384, jwa.PS512,
}

// ErrInvalidOptions is returned for unusable generation options.
var ErrInvalidOptions = errors.New("invalid key generation options")

// Options controls Generate.
type Options struct {
	// KeyID is the "kid" of both keys. A random UUID is used when empty.
	KeyID string
	// Bits is the modulus size.
	Bits int
	// Algorithm is the "alg" member, one of RS256..RS512 or PS256..PS512.
	Algorithm string
}

// KeyPair is a generated key with its private and public JWK set documents.
type KeyPair struct {
	KeyID      string
	Algorithm  string
	PrivateKey *rsa.PrivateKey

	// PrivateJWKS holds the private key with every RSA member.
	PrivateJWKS []byte
	// PublicJWKS holds the matching public key.
	PublicJWKS []byte
	// CombinedJWKS holds both keys under the same key ID.
	CombinedJWKS []byte
}

// Generate creates an RSA key pair according to opts.
func Generate(opts Options) (*KeyPair, error) {
	if opts.Bits == 0 {
		opts.Bits = DefaultBits
	}
	if opts.Algorithm == "" {
		opts.Algorithm = DefaultAlgorithm
	}
	if opts.KeyID == "" {
		opts.KeyID = uuid.New().String()
	}

	if opts.Bits < MinBits {
		return nil, fmt.Errorf("%w: key size %d is below %d bits", ErrInvalidOptions, opts.Bits, MinBits)
	}
	alg := jwa.SignatureAlgorithm(opts.Algorithm)
	if !slices.Contains(supportedAlgorithms, alg) {
		return nil, fmt.Errorf("%w: unsupported algorithm %q", ErrInvalidOptions, opts.Algorithm)
	}

	privateKey, err := rsa.GenerateKey(rand.Reader, opts.Bits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate RSA key: %w", err)
	}

	private, err := jwk.FromRaw(privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWK: %w", err)
	}
	if err := annotate(private, opts.KeyID, alg); err != nil {
		return nil, err
	}

	public, err := jwk.PublicKeyOf(private)
	if err != nil {
		return nil, fmt.Errorf("failed to derive public JWK: %w", err)
	}
	if err := annotate(public, opts.KeyID, alg); err != nil {
		return nil, err
	}

	privateJWKS, err := marshalSet(private)
	if err != nil {
		return nil, err
	}
	publicJWKS, err := marshalSet(public)
	if err != nil {
		return nil, err
	}
	combinedJWKS, err := marshalSet(private, public)
	if err != nil {
		return nil, err
	}

	return &KeyPair{
		KeyID:        opts.KeyID,
		Algorithm:    opts.Algorithm,
		PrivateKey:   privateKey,
		PrivateJWKS:  privateJWKS,
		PublicJWKS:   publicJWKS,
		CombinedJWKS: combinedJWKS,
	}, nil
}

func annotate(key jwk.Key, kid string, alg jwa.SignatureAlgorithm) error {
	if err := key.Set(jwk.KeyIDKey, kid); err != nil {
		return fmt.Errorf("failed to set kid: %w", err)
	}
	if err := key.Set(jwk.AlgorithmKey, alg); err != nil {
		return fmt.Errorf("failed to set alg: %w", err)
	}
	if err := key.Set(jwk.KeyUsageKey, jwk.ForSignature); err != nil {
		return fmt.Errorf("failed to set use: %w", err)
	}
	return nil
}

func marshalSet(keys ...jwk.Key) ([]byte, error) {
	set := jwk.NewSet()
	for _, key := range keys {
		if err := set.AddKey(key); err != nil {
			return nil, fmt.Errorf("failed to add key to set: %w", err)
		}
	}
	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JWK set: %w", err)
	}
	return data, nil
}
