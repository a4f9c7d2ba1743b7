package jwk

import (
	"crypto/rsa"
	"fmt"
	"math"
	"math/big"
)

// KeyTypeRSA is the "kty" value of RSA keys (RFC 7518 section 6.3).
const KeyTypeRSA = "RSA"

// RSA key members.
var (
	rsaPublicParams  = []string{"n", "e"}
	rsaPrivateParams = []string{"n", "e", "d"}

	// p and q are the prime factors; dp is d mod (p-1), dq is d mod (q-1)
	// and qi is q^-1 mod p.
	rsaCRTParams = []string{"p", "q", "dp", "dq", "qi"}
)

// buildRSA classifies an RSA key object and wraps its key material. A key
// carrying a string "d" member is private, anything else is public.
func buildRSA(obj keyObject) (builtKey, error) {
	alg := algorithmOf(obj)

	if _, err := stringField(obj, "d"); err == nil {
		key, err := buildRSAPrivateKey(obj)
		if err != nil {
			return builtKey{}, err
		}
		return builtKey{signer: newRSASigner(key, alg)}, nil
	}

	key, err := buildRSAPublicKey(obj)
	if err != nil {
		return builtKey{}, err
	}
	return builtKey{verifier: newRSAVerifier(key, alg)}, nil
}

// algorithmOf picks the signature scheme named by the optional "alg"
// member. Anything that is not an RS* or PS* name, such as RSA-OAEP on an
// encryption key, selects DefaultRSAAlgorithm and the key stays usable.
func algorithmOf(obj keyObject) rsaAlgorithm {
	name, _ := stringField(obj, "alg")
	alg, err := lookupRSAAlgorithm(name)
	if err != nil {
		return rsaAlgorithms[DefaultRSAAlgorithm]
	}
	return alg
}

// buildRSAPublicKey builds a public key from the required "n" and "e" members.
func buildRSAPublicKey(obj keyObject) (*rsa.PublicKey, error) {
	params, err := extractBigInts(obj, rsaPublicParams, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create RSA public key: %w", err)
	}

	return newRSAPublicKey(params["n"], params["e"])
}

// buildRSAPrivateKey builds a private key from the required "n", "e" and
// "d" members. The prime factors are installed only when both "p" and "q"
// decode, and the CRT values only when all of "dp", "dq" and "qi" decode.
func buildRSAPrivateKey(obj keyObject) (*rsa.PrivateKey, error) {
	params, err := extractBigInts(obj, rsaPrivateParams, rsaCRTParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create RSA private key: %w", err)
	}

	pub, err := newRSAPublicKey(params["n"], params["e"])
	if err != nil {
		return nil, err
	}

	d := params["d"]
	if d.Sign() <= 0 {
		return nil, fmt.Errorf("%w: RSA private exponent must be positive", ErrInvalidKey)
	}

	key := &rsa.PrivateKey{
		PublicKey: *pub,
		D:         d,
	}

	if p, q := params["p"], params["q"]; p != nil && q != nil {
		key.Primes = []*big.Int{p, q}
	}

	if dp, dq, qi := params["dp"], params["dq"], params["qi"]; dp != nil && dq != nil && qi != nil {
		key.Precomputed.Dp = dp
		key.Precomputed.Dq = dq
		key.Precomputed.Qinv = qi
	}

	return key, nil
}

// newRSAPublicKey checks the modulus and exponent ranges accepted by crypto/rsa.
func newRSAPublicKey(n, e *big.Int) (*rsa.PublicKey, error) {
	if n.Sign() <= 0 {
		return nil, fmt.Errorf("%w: RSA modulus must be positive", ErrInvalidKey)
	}

	if !e.IsInt64() || e.Int64() < 2 || e.Int64() > math.MaxInt32 {
		return nil, fmt.Errorf("%w: RSA public exponent out of range", ErrInvalidKey)
	}

	return &rsa.PublicKey{
		N: n,
		E: int(e.Int64()),
	}, nil
}
