package jwk

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	_ "crypto/sha256" // registers SHA-256 for crypto.Hash.New
	_ "crypto/sha512" // registers SHA-384 and SHA-512 for crypto.Hash.New
	"errors"
	"fmt"
	"io"
)

// JSON Web Algorithm names supported for RSA keys.
const (
	AlgRS256 = "RS256"
	AlgRS384 = "RS384"
	AlgRS512 = "RS512"
	AlgPS256 = "PS256"
	AlgPS384 = "PS384"
	AlgPS512 = "PS512"
)

// DefaultRSAAlgorithm is used for RSA keys that do not declare "alg".
const DefaultRSAAlgorithm = AlgRS256

// Signer produces signatures with a private key it exclusively owns.
type Signer interface {
	// Sign returns the signature of message.
	Sign(message []byte) ([]byte, error)

	// Algorithm returns the JSON Web Algorithm name of the signatures.
	Algorithm() string
}

// Verifier checks signatures with a public key it exclusively owns.
type Verifier interface {
	// Verify returns nil if signature is valid for message. Failures match
	// ErrInvalidSignature, ErrMalformedSignature or ErrInvalidKey.
	Verify(message, signature []byte) error

	// Algorithm returns the JSON Web Algorithm name the verifier expects.
	Algorithm() string
}

// rsaAlgorithm describes one RSA signature scheme.
type rsaAlgorithm struct {
	name string
	hash crypto.Hash
	pss  bool
}

var rsaAlgorithms = map[string]rsaAlgorithm{
	AlgRS256: {name: AlgRS256, hash: crypto.SHA256},
	AlgRS384: {name: AlgRS384, hash: crypto.SHA384},
	AlgRS512: {name: AlgRS512, hash: crypto.SHA512},
	AlgPS256: {name: AlgPS256, hash: crypto.SHA256, pss: true},
	AlgPS384: {name: AlgPS384, hash: crypto.SHA384, pss: true},
	AlgPS512: {name: AlgPS512, hash: crypto.SHA512, pss: true},
}

// lookupRSAAlgorithm resolves an "alg" value, falling back to the default
// when name is empty.
func lookupRSAAlgorithm(name string) (rsaAlgorithm, error) {
	if name == "" {
		name = DefaultRSAAlgorithm
	}
	alg, ok := rsaAlgorithms[name]
	if !ok {
		return rsaAlgorithm{}, fmt.Errorf("%w: %q is not an RSA algorithm", ErrUnsupportedAlgorithm, name)
	}
	return alg, nil
}

func (a rsaAlgorithm) digest(message []byte) []byte {
	h := a.hash.New()
	h.Write(message)
	return h.Sum(nil)
}

func (a rsaAlgorithm) pssOptions() *rsa.PSSOptions {
	return &rsa.PSSOptions{
		SaltLength: rsa.PSSSaltLengthEqualsHash,
		Hash:       a.hash,
	}
}

// rsaSigner implements Signer for RSA private keys.
type rsaSigner struct {
	key    *rsa.PrivateKey
	alg    rsaAlgorithm
	random io.Reader
}

func newRSASigner(key *rsa.PrivateKey, alg rsaAlgorithm) *rsaSigner {
	return &rsaSigner{key: key, alg: alg, random: rand.Reader}
}

// Sign signs the digest of message with RSASSA-PKCS1-v1_5 or RSASSA-PSS.
func (s *rsaSigner) Sign(message []byte) ([]byte, error) {
	digest := s.alg.digest(message)

	var (
		signature []byte
		err       error
	)
	if s.alg.pss {
		signature, err = rsa.SignPSS(s.random, s.key, s.alg.hash, digest, s.alg.pssOptions())
	} else {
		signature, err = rsa.SignPKCS1v15(s.random, s.key, s.alg.hash, digest)
	}
	if err != nil {
		return nil, &SigningError{
			Algorithm: s.alg.name,
			Cause:     fmt.Errorf("%w: %w", ErrInvalidKey, err),
		}
	}

	return signature, nil
}

// Algorithm returns the signing algorithm.
func (s *rsaSigner) Algorithm() string {
	return s.alg.name
}

// rsaVerifier implements Verifier for RSA public keys.
type rsaVerifier struct {
	key *rsa.PublicKey
	alg rsaAlgorithm
}

func newRSAVerifier(key *rsa.PublicKey, alg rsaAlgorithm) *rsaVerifier {
	return &rsaVerifier{key: key, alg: alg}
}

// Verify checks signature against the digest of message.
func (v *rsaVerifier) Verify(message, signature []byte) error {
	if len(signature) == 0 || len(signature) != v.key.Size() {
		return fmt.Errorf("%w: expected %d bytes, got %d",
			ErrMalformedSignature, v.key.Size(), len(signature))
	}

	digest := v.alg.digest(message)

	var err error
	if v.alg.pss {
		err = rsa.VerifyPSS(v.key, v.alg.hash, digest, signature, v.alg.pssOptions())
	} else {
		err = rsa.VerifyPKCS1v15(v.key, v.alg.hash, digest, signature)
	}

	switch {
	case err == nil:
		return nil
	case errors.Is(err, rsa.ErrVerification):
		return fmt.Errorf("%w (alg=%s)", ErrInvalidSignature, v.alg.name)
	default:
		return fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
}

// Algorithm returns the verification algorithm.
func (v *rsaVerifier) Algorithm() string {
	return v.alg.name
}

var (
	_ Signer   = (*rsaSigner)(nil)
	_ Verifier = (*rsaVerifier)(nil)
)
