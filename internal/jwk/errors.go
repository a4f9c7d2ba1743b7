package jwk

import (
	"errors"
	"fmt"
)

// Sentinel errors for key set operations.
var (
	// ErrInvalidDocument indicates that the key set document is structurally invalid.
	ErrInvalidDocument = errors.New("invalid JWK set document")

	// ErrMissingField indicates that a required key member is absent.
	ErrMissingField = errors.New("missing field")

	// ErrInvalidField indicates that a key member has the wrong type or encoding.
	ErrInvalidField = errors.New("invalid field")

	// ErrUnsupportedKeyType indicates that the "kty" value has no builder.
	ErrUnsupportedKeyType = errors.New("unsupported key type")

	// ErrUnsupportedAlgorithm indicates that the "alg" value is not usable with the key type.
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")

	// ErrInvalidKey indicates that the key material is unusable.
	ErrInvalidKey = errors.New("key is invalid")

	// ErrDuplicateKeyID indicates that a key ID was already registered.
	ErrDuplicateKeyID = errors.New("duplicate key ID")

	// ErrSignerNotFound indicates that no signer is registered for a key ID.
	ErrSignerNotFound = errors.New("signer not found")

	// ErrVerifierNotFound indicates that no verifier is registered for a key ID.
	ErrVerifierNotFound = errors.New("verifier not found")

	// ErrInvalidSignature indicates that a signature does not match the message.
	ErrInvalidSignature = errors.New("signature is invalid")

	// ErrMalformedSignature indicates that a signature cannot be a valid
	// encoding for the key, regardless of the message.
	ErrMalformedSignature = errors.New("signature is malformed")
)

// DocumentError reports a structural failure that aborts a whole parse.
type DocumentError struct {
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *DocumentError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("jwk set: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("jwk set: %s", e.Message)
}

// Unwrap returns the underlying error.
func (e *DocumentError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrInvalidDocument or a *DocumentError.
func (e *DocumentError) Is(target error) bool {
	if target == ErrInvalidDocument {
		return true
	}
	_, ok := target.(*DocumentError)
	return ok
}

func newDocumentError(message string, cause error) *DocumentError {
	return &DocumentError{Message: message, Cause: cause}
}

// KeyError reports a failure tied to a single key. Index is the position
// of the key in the "keys" array, or -1 when the error comes from a lookup.
type KeyError struct {
	KeyID   string
	Index   int
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *KeyError) Error() string {
	prefix := "jwk"
	switch {
	case e.KeyID != "":
		prefix = fmt.Sprintf("jwk (kid=%q)", e.KeyID)
	case e.Index >= 0:
		prefix = fmt.Sprintf("jwk (index=%d)", e.Index)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Unwrap returns the underlying error.
func (e *KeyError) Unwrap() error {
	return e.Cause
}

// Is matches any *KeyError target.
func (e *KeyError) Is(target error) bool {
	_, ok := target.(*KeyError)
	return ok
}

// NewKeyError creates a new KeyError that is not tied to a document position.
func NewKeyError(keyID, message string, cause error) *KeyError {
	return &KeyError{
		KeyID:   keyID,
		Index:   -1,
		Message: message,
		Cause:   cause,
	}
}

// SigningError represents a failure to produce a signature.
type SigningError struct {
	Algorithm string
	Cause     error
}

// Error implements the error interface.
func (e *SigningError) Error() string {
	return fmt.Sprintf("jwk signing error (alg=%s): %v", e.Algorithm, e.Cause)
}

// Unwrap returns the underlying error.
func (e *SigningError) Unwrap() error {
	return e.Cause
}

// IsStructuralError reports whether err aborted a whole parse.
func IsStructuralError(err error) bool {
	var docErr *DocumentError
	return errors.As(err, &docErr)
}

// IsKeyError reports whether err concerns a single key.
func IsKeyError(err error) bool {
	var keyErr *KeyError
	return errors.As(err, &keyErr)
}

// IsNotFound reports whether err is a failed signer or verifier lookup.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSignerNotFound) || errors.Is(err, ErrVerifierNotFound)
}
