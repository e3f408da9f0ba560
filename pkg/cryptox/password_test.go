package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("s3cret-passw0rd")
	require.NoError(t, err)
	require.Contains(t, hash, "$argon2id$v=19$")

	require.NoError(t, VerifyPassword("s3cret-passw0rd", hash))
	require.Error(t, VerifyPassword("wrong-password", hash))
}

func TestHashIsSalted(t *testing.T) {
	t.Parallel()

	a, err := HashPassword("same-input")
	require.NoError(t, err)
	b, err := HashPassword("same-input")
	require.NoError(t, err)

	require.NotEqual(t, a, b)
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	t.Parallel()

	require.Error(t, VerifyPassword("pw", "not-a-phc-string"))
	require.Error(t, VerifyPassword("pw", "$bcrypt$v=19$m=1,t=1,p=1$AAAA$BBBB"))
}

func TestGenerateSeed(t *testing.T) {
	t.Parallel()

	seed, err := GenerateSeed(SeedSize160)
	require.NoError(t, err)
	require.NotEmpty(t, seed)

	other, err := GenerateSeed(SeedSize160)
	require.NoError(t, err)
	require.NotEqual(t, seed, other)

	_, err = GenerateSeed(0)
	require.Error(t, err)
}
