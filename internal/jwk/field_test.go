package jwk

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringField(t *testing.T) {
	t.Parallel()

	obj := keyObject{"kid": "abc", "num": 1.5, "null": nil}

	v, err := stringField(obj, "kid")
	require.NoError(t, err)
	assert.Equal(t, "abc", v)

	_, err = stringField(obj, "missing")
	assert.ErrorIs(t, err, ErrMissingField)
	assert.Contains(t, err.Error(), `"missing"`)

	_, err = stringField(obj, "num")
	assert.ErrorIs(t, err, ErrInvalidField)
	assert.Contains(t, err.Error(), `"num"`)

	_, err = stringField(obj, "null")
	assert.ErrorIs(t, err, ErrInvalidField)
}

func TestBigIntField(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   any
		want    *big.Int
		wantErr error
	}{
		{name: "exponent", value: "AQAB", want: big.NewInt(65537)},
		{name: "leading zero byte", value: "AAEAAQ", want: big.NewInt(65537)},
		{name: "url safe alphabet", value: "-_8", want: big.NewInt(0xfbff)},
		{name: "empty string is zero", value: "", want: big.NewInt(0)},
		{name: "padding rejected", value: "AQAB=", wantErr: ErrInvalidField},
		{name: "standard alphabet rejected", value: "+/8", wantErr: ErrInvalidField},
		{name: "not a string", value: true, wantErr: ErrInvalidField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := bigIntField(keyObject{"x": tt.value}, "x")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Zero(t, tt.want.Cmp(got), "got %s", got)
		})
	}

	_, err := bigIntField(keyObject{}, "x")
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestExtractBigInts(t *testing.T) {
	t.Parallel()

	t.Run("required fail fast with first error", func(t *testing.T) {
		t.Parallel()

		obj := keyObject{"e": "AQAB", "d": "!!"}
		values, err := extractBigInts(obj, []string{"n", "e", "d"}, nil)

		assert.Nil(t, values)
		require.ErrorIs(t, err, ErrMissingField)
		assert.Contains(t, err.Error(), `"n"`)
	})

	t.Run("optional failures are absent", func(t *testing.T) {
		t.Parallel()

		obj := keyObject{"n": "AQAB", "p": "AQ", "q": "*bad*", "dp": 7}
		values, err := extractBigInts(obj, []string{"n"}, []string{"p", "q", "dp", "qi"})
		require.NoError(t, err)

		assert.Len(t, values, 5)
		assert.Zero(t, big.NewInt(65537).Cmp(values["n"]))
		assert.Zero(t, big.NewInt(1).Cmp(values["p"]))
		assert.Nil(t, values["q"])
		assert.Nil(t, values["dp"])
		assert.Nil(t, values["qi"])
		assert.Contains(t, values, "qi")
	})
}
