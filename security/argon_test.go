package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Cheap parameters so the suite doesn't spend seconds hashing
func testArgon() *ArgonHash {
	return &ArgonHash{
		Memory:      1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func TestArgonHash_RoundTrip(t *testing.T) {
	a := testArgon()

	hash, err := a.Hash("p")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$"))

	ok, err := a.Verify("p", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.Verify("wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArgonHash_SaltedHashesDiffer(t *testing.T) {
	a := testArgon()

	h1, err := a.Hash("same")
	require.NoError(t, err)
	h2, err := a.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestArgonHash_VerifyUsesStoredParams(t *testing.T) {
	hash, err := testArgon().Hash("secret")
	require.NoError(t, err)

	// Changing the default parameters must not break existing hashes
	ok, err := NewArgon().Verify("secret", hash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestArgonHash_VerifyMalformed(t *testing.T) {
	a := testArgon()

	for _, e := range []string{
		"",
		"plain",
		"$argon2i$v=19$m=1024,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$garbage$c2FsdA$a2V5",
		"$argon2id$v=19$m=1024,t=1,p=1$!!!$a2V5",
	} {
		ok, err := a.Verify("p", e)
		assert.Error(t, err, e)
		assert.False(t, ok, e)
	}
}
