package crypto

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestGenerateCode(t *testing.T) {
	seen := map[string]struct{}{}
	for i := 0; i < 20; i++ {
		code, err := GenerateCode()
		require.NoError(t, err)
		assert.Len(t, code, CodeDigits)
		assert.True(t, IsNumericCode(code))
		seen[code] = struct{}{}
	}
	assert.Greater(t, len(seen), 1)
}

func TestGenerateCode_RejectsBiasedBytes(t *testing.T) {
	orig := randomRead
	t.Cleanup(func() { randomRead = orig })

	seq := []byte{255, 251, 7, 12, 250, 99, 3, 200, 41}
	i := 0
	randomRead = func(b []byte) (int, error) {
		b[0] = seq[i]
		i++
		return 1, nil
	}

	code, err := GenerateCode()
	require.NoError(t, err)
	assert.Equal(t, "729301", code)
}

func TestHashAndCheckCode(t *testing.T) {
	hash, err := HashCode("123456", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "123456", hash)

	ok, err := CheckCode("123456", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckCode("000000", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashCode_OutOfRangeCostFallsBack(t *testing.T) {
	orig := bcryptGenerateFromPassword
	t.Cleanup(func() { bcryptGenerateFromPassword = orig })

	var gotCost int
	bcryptGenerateFromPassword = func(p []byte, cost int) ([]byte, error) {
		gotCost = cost
		return []byte("hashed"), nil
	}

	_, err := HashCode("123456", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultCost, gotCost)
}

func TestCheckCode_MalformedHash(t *testing.T) {
	ok, err := CheckCode("123456", "not-a-bcrypt-hash")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestCodeHelpers_ErrorBranches(t *testing.T) {
	origBcrypt := bcryptGenerateFromPassword
	origRandRead := randomRead
	t.Cleanup(func() {
		bcryptGenerateFromPassword = origBcrypt
		randomRead = origRandRead
	})

	bcryptGenerateFromPassword = func([]byte, int) ([]byte, error) {
		return nil, errors.New("bcrypt failed")
	}
	_, err := HashCode("123456", bcrypt.MinCost)
	assert.Error(t, err)

	randomRead = func([]byte) (int, error) {
		return 0, errors.New("rand failed")
	}
	_, err = GenerateCode()
	assert.Error(t, err)
}

func TestIsNumericCode(t *testing.T) {
	assert.True(t, IsNumericCode("000000"))
	assert.False(t, IsNumericCode("12345"))
	assert.False(t, IsNumericCode("12a456"))
	assert.False(t, IsNumericCode(""))
}
