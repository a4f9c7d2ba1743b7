package keystore

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/jwkset/internal/jwk"
	"github.com/vyrodovalexey/jwkset/internal/keygen"
)

var (
	pairOne = sync.OnceValues(func() (*keygen.KeyPair, error) { return keygen.Generate(keygen.Options{KeyID: "one"}) })
	pairTwo = sync.OnceValues(func() (*keygen.KeyPair, error) { return keygen.Generate(keygen.Options{KeyID: "two"}) })
)

func documentOne(t *testing.T) []byte {
	t.Helper()
	pair, err := pairOne()
	require.NoError(t, err)
	return pair.CombinedJWKS
}

func documentTwo(t *testing.T) []byte {
	t.Helper()
	pair, err := pairTwo()
	require.NoError(t, err)
	return pair.CombinedJWKS
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, data, 0o600))
}

func tempKeySet(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jwks.json")
	writeFile(t, path, data)
	return path
}

func testStore(opts ...Option) *Store {
	base := []Option{
		WithMetrics(NewMetrics("test")),
		WithParseMetrics(jwk.NewMetrics("test")),
	}
	return NewStore(append(base, opts...)...)
}
