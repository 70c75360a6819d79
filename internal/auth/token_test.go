package auth

import (
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-123"

func TestIssueAndParse(t *testing.T) {
	t.Parallel()

	tok, err := IssueToken(testSecret, 42, "alice", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(testSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.NotEmpty(t, claims.JTI)
}

func TestParseToken_Rejects(t *testing.T) {
	t.Parallel()

	sign := func(claims jwt.MapClaims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)
		return s
	}
	valid := func() jwt.MapClaims {
		return jwt.MapClaims{
			"sub": strconv.Itoa(7),
			"iss": Issuer,
			"aud": Audience,
			"exp": time.Now().Add(time.Hour).Unix(),
		}
	}

	expired := valid()
	expired["exp"] = time.Now().Add(-time.Hour).Unix()

	wrongIssuer := valid()
	wrongIssuer["iss"] = "someone-else"

	wrongAudience := valid()
	wrongAudience["aud"] = "other-client"

	badSubject := valid()
	badSubject["sub"] = "not-a-number"

	noExpiry := valid()
	delete(noExpiry, "exp")

	otherSecret, err := IssueToken("a-completely-different-secret-value", 7, "bob", time.Hour)
	require.NoError(t, err)

	tests := map[string]string{
		"expired":        sign(expired),
		"wrong issuer":   sign(wrongIssuer),
		"wrong audience": sign(wrongAudience),
		"bad subject":    sign(badSubject),
		"no expiry":      sign(noExpiry),
		"other secret":   otherSecret,
		"garbage":        "not.a.token",
	}

	for name, tok := range tests {
		_, err := ParseToken(testSecret, tok)
		assert.ErrorIs(t, err, ErrInvalidToken, name)
	}

	_, err = ParseToken(testSecret, sign(valid()))
	assert.NoError(t, err)
}

func TestMissingSecret(t *testing.T) {
	t.Parallel()

	_, err := IssueToken("", 1, "x", time.Hour)
	assert.ErrorIs(t, err, ErrMissingSecret)
	_, err = ParseToken("", "x")
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestRevocationKey(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "blacklist:abc", RevocationKey("abc"))
}
