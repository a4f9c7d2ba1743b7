package jwk

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentError(t *testing.T) {
	t.Parallel()

	cause := errors.New("unexpected EOF")
	err := newDocumentError("invalid JSON", cause)

	assert.Equal(t, "jwk set: invalid JSON: unexpected EOF", err.Error())
	assert.ErrorIs(t, err, ErrInvalidDocument)
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, &DocumentError{})
	assert.True(t, IsStructuralError(fmt.Errorf("load: %w", err)))
	assert.False(t, IsKeyError(err))

	assert.Equal(t, "jwk set: 'keys' is not an array", newDocumentError("'keys' is not an array", nil).Error())
}

func TestKeyError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *KeyError
		want string
	}{
		{
			name: "with key ID",
			err:  &KeyError{KeyID: "k1", Index: 2, Message: "failed to build key", Cause: ErrInvalidKey},
			want: `jwk (kid="k1"): failed to build key: key is invalid`,
		},
		{
			name: "index only",
			err:  &KeyError{Index: 3, Message: "failed to parse JWK"},
			want: "jwk (index=3): failed to parse JWK",
		},
		{
			name: "lookup",
			err:  NewKeyError("", "lookup failed", ErrSignerNotFound),
			want: "jwk: lookup failed: signer not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.err.Error())
			assert.True(t, IsKeyError(tt.err))
			assert.False(t, IsStructuralError(tt.err))
			assert.ErrorIs(t, tt.err, &KeyError{})
		})
	}
}

func TestSigningError(t *testing.T) {
	t.Parallel()

	err := &SigningError{Algorithm: AlgPS256, Cause: ErrInvalidKey}
	assert.Equal(t, "jwk signing error (alg=PS256): key is invalid", err.Error())
	assert.ErrorIs(t, err, ErrInvalidKey)
	assert.False(t, IsKeyError(err))
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	assert.True(t, IsNotFound(NewKeyError("a", "lookup failed", ErrSignerNotFound)))
	assert.True(t, IsNotFound(NewKeyError("a", "lookup failed", ErrVerifierNotFound)))
	assert.False(t, IsNotFound(ErrInvalidKey))
	assert.False(t, IsNotFound(nil))
}
