package jwk

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// Well-known mesos.com fixtures. Only their shape matters here.
const (
	mesosPublicN = "ALhQ-ZVQM9gIxRI8yFjMAY7S60DcWl8tsJPWIsIPFDnmCXr5Bt__lFlwBLM7q6ie5av-LkjwG0xAm7cohOHU7xEhZqh6n8CmJPlRbz_E8uFYfW67eP0YmdcS9dDBYn_77t_Ji7L0T2w62k7rE_vZ4k0MoSQnYkRq6uYZoltwaAO_3pab6dPov9HtRcTERHDTlKkNR4WDBZ9zLJKo2UbNoIoJpJ0D1T6CQXQVkFRiGFW-dnd-IZi4b2Dw93-ISR0vpmb0uVuo3pAlyuBwIXgzcTrwROFdXbSC3STyRLMd1Gvdc_CBGmGvIsGzld8no3WVWdzR0sZrawEWAaaOSvQcOI0"
	mesosPrivateD = "bzSD8V-LeBuKc39yzYiApCCDygVpDSXu9LNtEzKv3GL7c1OOn1V_txqL62vkHP-JyOS6Hk2n2rDcgnyS-AJWHzrMynf5rO1RP4-vlIUKmYWfYFECJYpTP110LHiRKnDhZeofPGCFDuLPVnAlBX4nOJ-XFc4hTvBHO39Z4tuGFkQFy5nMz6b24ku29NB3_-bebdpAbsY-tMIeY0-mtH9T3ysKv0OuNfRUvpHGfh_xgyHh1lnS70cuQEqxF46DuIsi0FoU-GOZkPyHQdoSNo1sy8fx4F6EOBa3mvuw3p2JwXWOgHu6oqmfhSSRVy_6JwhC8t9Gx-MBP_Fq05ufHZIMoQ"
	apacheMesosN  = "AOpT1NsW_MD8Qqxjx-DYckAQh0W1l5Y-i8VDJjctOtfO1CzVLk4quM2uqxvh7WS_Q6XrOXW5sxur6PT8KR_gy-WJBzizlPPpKik9GuAzH8gP1lka4bGLeGmiXimd3w57wkiOKdl2oGlB--qd7gtND4hPqFjDOcEzi_lPZltXweFDij9OqVs6q65VSKD7rQ1v5cHVl0Df0oNeFNpU7ORSV9iflusx7JdKLhUc_RpLnLafmF4X-HbL8CErOQVMbpHC8SMGNxEIiFNN9TpMarSBiFrJuWbsBbTucw9_RqoPLRXX_c30t-VbHpD-1sJfhKvacBLFm5C4kFThOLeov7qeAXM"
)

var (
	testKeyA = sync.OnceValues(func() (*rsa.PrivateKey, error) { return rsa.GenerateKey(rand.Reader, 2048) })
	testKeyB = sync.OnceValues(func() (*rsa.PrivateKey, error) { return rsa.GenerateKey(rand.Reader, 2048) })
)

func keyA(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := testKeyA()
	require.NoError(t, err)
	return key
}

func keyB(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := testKeyB()
	require.NoError(t, err)
	return key
}

func b64(i *big.Int) string {
	return base64.RawURLEncoding.EncodeToString(i.Bytes())
}

// rsaParams returns every RFC 7518 member of key, keyed by member name.
func rsaParams(key *rsa.PrivateKey) map[string]string {
	p, q := key.Primes[0], key.Primes[1]
	one := big.NewInt(1)
	return map[string]string{
		"n":  b64(key.N),
		"e":  b64(big.NewInt(int64(key.E))),
		"d":  b64(key.D),
		"p":  b64(p),
		"q":  b64(q),
		"dp": b64(new(big.Int).Mod(key.D, new(big.Int).Sub(p, one))),
		"dq": b64(new(big.Int).Mod(key.D, new(big.Int).Sub(q, one))),
		"qi": b64(new(big.Int).ModInverse(q, p)),
	}
}

// rsaJWK builds a key object with "n", "e" and the listed extra members.
func rsaJWK(kid string, key *rsa.PrivateKey, members ...string) map[string]any {
	params := rsaParams(key)
	obj := map[string]any{
		"kty": "RSA",
		"kid": kid,
		"n":   params["n"],
		"e":   params["e"],
	}
	for _, m := range members {
		obj[m] = params[m]
	}
	return obj
}

func jwksDocument(t *testing.T, keys ...any) []byte {
	t.Helper()
	data, err := json.Marshal(map[string]any{"keys": keys})
	require.NoError(t, err)
	return data
}

func mustParse(t *testing.T, data []byte, opts ...Option) *Set {
	t.Helper()
	set, err := Parse(data, append([]Option{WithMetrics(NewMetrics("test"))}, opts...)...)
	require.NoError(t, err)
	require.NotNil(t, set)
	return set
}
