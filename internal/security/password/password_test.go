package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// parámetros baratos para que los tests no tarden
var testParams = Params{Memory: 1024, Time: 1, Parallelism: 1, KeyLen: 32, SaltLen: 16}

func TestHashVerify_Argon2id(t *testing.T) {
	h, err := Hash(testParams, "200328")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(h, "$argon2id$v=19$m=1024,t=1,p=1$"))

	assert.True(t, Verify("200328", h))
	assert.False(t, Verify("200329", h))
	assert.False(t, Verify("", h))

	h2, err := Hash(testParams, "200328")
	require.NoError(t, err)
	assert.NotEqual(t, h, h2, "salt must differ")
}

func TestHash_Empty(t *testing.T) {
	_, err := Hash(testParams, "")
	require.ErrorIs(t, err, ErrEmptyPassword)
}

func TestVerify_Bcrypt(t *testing.T) {
	raw, err := bcrypt.GenerateFromPassword([]byte("legacy-pass"), bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, Verify("legacy-pass", string(raw)))
	assert.False(t, Verify("other", string(raw)))
}

func TestVerify_RejectsGarbage(t *testing.T) {
	for _, h := range []string{
		"",
		"plaintext",
		"$argon2id$v=18$m=1024,t=1,p=1$c2FsdA$ZGs",
		"$argon2id$v=19$m=1024,t=0,p=1$c2FsdA$ZGs",
		"$argon2id$v=19$m=1024,t=1,p=1$***$ZGs",
		"$argon2id$v=19$m=1024,t=1,p=1$c2FsdA",
		"$2b$garbage",
	} {
		assert.False(t, Verify("x", h), "hash=%q", h)
	}
}

func TestUnusable(t *testing.T) {
	a, b := Unusable(), Unusable()
	assert.True(t, strings.HasPrefix(a, UnusablePrefix))
	assert.NotEqual(t, a, b)
	assert.False(t, IsUsable(a))
	assert.False(t, IsUsable(""))
	assert.False(t, Verify("", a))
	assert.False(t, Verify(a, a))
	assert.False(t, NeedsRehash(Default, a))
}

func TestNeedsRehash(t *testing.T) {
	h, err := Hash(testParams, "secret-1")
	require.NoError(t, err)
	assert.False(t, NeedsRehash(testParams, h))
	assert.True(t, NeedsRehash(Default, h))

	raw, err := bcrypt.GenerateFromPassword([]byte("x"), bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, NeedsRehash(testParams, string(raw)))
}

func TestPolicy_Check(t *testing.T) {
	bl, err := ReadBlacklist(strings.NewReader("# comunes\npassword1\n\n  QWERTY123 \n"))
	require.NoError(t, err)
	assert.Equal(t, 2, bl.Len())

	p := Policy{MinLength: 8, RequireLower: true, RequireDigit: true, Blacklist: bl}

	require.NoError(t, p.Check("jona", "tortuga-77"))

	err = p.Check("jona", "Password1")
	require.True(t, IsPolicyError(err))
	assert.Equal(t, []string{ReasonBlacklisted}, err.(*PolicyError).Reasons)

	err = p.Check("jona", "qwerty123")
	require.True(t, IsPolicyError(err))

	err = p.Check("jonathan", "xjonathan9")
	require.True(t, IsPolicyError(err))
	assert.Contains(t, err.(*PolicyError).Reasons, ReasonContainsUser)

	err = p.Check("jona", "ABC")
	require.True(t, IsPolicyError(err))
	assert.ElementsMatch(t, []string{ReasonTooShort, ReasonMissingLower, ReasonMissingDigit}, err.(*PolicyError).Reasons)
}

func TestBlacklist_NilSafe(t *testing.T) {
	var bl *Blacklist
	assert.False(t, bl.Contains("x"))
	assert.Equal(t, 0, bl.Len())

	empty, err := LoadBlacklist("  ")
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())
}
