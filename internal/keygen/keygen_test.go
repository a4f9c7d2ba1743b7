package keygen

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/jwkset/internal/jwk"
)

func TestGenerate_Defaults(t *testing.T) {
	t.Parallel()

	pair, err := Generate(Options{})
	require.NoError(t, err)

	_, err = uuid.Parse(pair.KeyID)
	assert.NoError(t, err, "generated kid should be a UUID")
	assert.Equal(t, DefaultAlgorithm, pair.Algorithm)
	assert.Equal(t, DefaultBits, pair.PrivateKey.N.BitLen())

	var doc struct {
		Keys []map[string]any `json:"keys"`
	}
	require.NoError(t, json.Unmarshal(pair.PublicJWKS, &doc))
	require.Len(t, doc.Keys, 1)
	assert.Equal(t, "RSA", doc.Keys[0]["kty"])
	assert.Equal(t, pair.KeyID, doc.Keys[0]["kid"])
	assert.Equal(t, "RS256", doc.Keys[0]["alg"])
	assert.Equal(t, "sig", doc.Keys[0]["use"])
	assert.NotContains(t, doc.Keys[0], "d")
}

func TestGenerate_DocumentsParse(t *testing.T) {
	t.Parallel()

	pair, err := Generate(Options{KeyID: "signing-1", Algorithm: "PS384"})
	require.NoError(t, err)

	private, err := jwk.Parse(pair.PrivateJWKS)
	require.NoError(t, err)
	assert.Equal(t, []string{"signing-1"}, private.SignerKeyIDs())
	assert.Empty(t, private.VerifierKeyIDs())

	public, err := jwk.Parse(pair.PublicJWKS)
	require.NoError(t, err)
	assert.Empty(t, public.SignerKeyIDs())
	assert.Equal(t, []string{"signing-1"}, public.VerifierKeyIDs())

	combined, err := jwk.Parse(pair.CombinedJWKS)
	require.NoError(t, err)
	assert.Equal(t, 2, combined.Len())

	signer, err := private.FindSigner("signing-1")
	require.NoError(t, err)
	assert.Equal(t, jwk.AlgPS384, signer.Algorithm())

	verifier, err := public.FindVerifier("signing-1")
	require.NoError(t, err)

	message := []byte("payload")
	signature, err := signer.Sign(message)
	require.NoError(t, err)
	assert.NoError(t, verifier.Verify(message, signature))
}

func TestGenerate_InvalidOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts Options
	}{
		{name: "small key", opts: Options{Bits: 1024}},
		{name: "EC algorithm", opts: Options{Algorithm: "ES256"}},
		{name: "HMAC algorithm", opts: Options{Algorithm: "HS256"}},
		{name: "none", opts: Options{Algorithm: "none"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pair, err := Generate(tt.opts)
			assert.ErrorIs(t, err, ErrInvalidOptions)
			assert.Nil(t, pair)
		})
	}
}
