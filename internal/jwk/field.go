package jwk

import (
	"encoding/base64"
	"fmt"
	"math/big"
)

// keyObject is a single decoded member of the "keys" array.
type keyObject map[string]any

// stringField returns the named member if it is a JSON string.
func stringField(obj keyObject, name string) (string, error) {
	raw, ok := obj[name]
	if !ok {
		return "", fmt.Errorf("%w: failed to locate %q in JWK", ErrMissingField, name)
	}

	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q is not a string", ErrInvalidField, name)
	}

	return s, nil
}

// bigIntField decodes the named member as a base64url (unpadded) encoded
// big-endian unsigned integer.
func bigIntField(obj keyObject, name string) (*big.Int, error) {
	encoded, err := stringField(obj, name)
	if err != nil {
		return nil, err
	}

	decoded, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to base64url-decode %q: %w", ErrInvalidField, name, err)
	}

	return new(big.Int).SetBytes(decoded), nil
}

// extractBigInts decodes every required member, stopping at the first
// failure, and every optional member, recording a nil entry for optional
// members that are missing or malformed.
func extractBigInts(obj keyObject, required, optional []string) (map[string]*big.Int, error) {
	values := make(map[string]*big.Int, len(required)+len(optional))

	for _, name := range required {
		v, err := bigIntField(obj, name)
		if err != nil {
			return nil, err
		}
		values[name] = v
	}

	for _, name := range optional {
		v, err := bigIntField(obj, name)
		if err != nil {
			values[name] = nil
			continue
		}
		values[name] = v
	}

	return values, nil
}
