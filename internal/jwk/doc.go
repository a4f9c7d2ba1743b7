// Package jwk turns JSON Web Key Set documents into signing and
// verification capabilities indexed by key ID.
//
// # Features
//
//   - RFC 7517 key set parsing with a two-tier failure policy
//   - RSA public and private keys (RFC 7518 section 6.3), including
//     minimal private keys and keys with CRT parameters
//   - RS256/384/512 and PS256/384/512 signatures, RS256 by default
//   - Per-key warnings through the observability logger
//   - Prometheus metrics for parse attempts and key outcomes
//
// # Parsing
//
// A document whose structure is wrong fails as a whole. A key that is
// merely unusable is skipped with a warning:
//
//	set, err := jwk.Parse(data, jwk.WithLogger(logger))
//	if err != nil {
//	    // not a JWK set at all
//	}
//
//	verifier, err := set.FindVerifier(kid)
//	if err != nil {
//	    // unknown kid
//	}
//	if err := verifier.Verify(signingInput, signature); err != nil {
//	    // reject
//	}
//
// A key object carrying a string "d" member becomes a Signer, any other
// RSA key a Verifier. The "use" and "key_ops" members are not enforced.
package jwk
