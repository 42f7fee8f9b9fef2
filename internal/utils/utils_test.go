package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	sub := TokenSubject{UserID: "65a0c0ffee", Email: "admin@example.com", IsAdmin: true}

	access, err := GenerateAccessToken(sub, "secret", time.Minute)
	require.NoError(t, err)

	claims, err := ValidateToken(access, "secret", TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, sub.UserID, claims.UserID)
	assert.Equal(t, sub.Email, claims.Email)
	assert.True(t, claims.IsAdmin)

	_, err = ValidateToken(access, "secret", TokenTypeRefresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ValidateToken(access, "other-secret", TokenTypeAccess)
	assert.Error(t, err)
}

func TestExpiredToken(t *testing.T) {
	tok, err := GenerateRefreshToken(TokenSubject{UserID: "u"}, "secret", -time.Minute)
	require.NoError(t, err)
	_, err = ValidateToken(tok, "secret", TokenTypeRefresh)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("Str0ng!pass")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "Str0ng!pass"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestStrongPassword(t *testing.T) {
	assert.True(t, StrongPassword("Abcdef1!"))
	for _, p := range []string{"short1!", "alllower1!", "ALLUPPER1!", "NoDigits!!", "NoSpecial12"} {
		assert.False(t, StrongPassword(p), p)
	}
}

func TestValidUsername(t *testing.T) {
	assert.True(t, ValidUsername("admin_01"))
	assert.False(t, ValidUsername("ab"))
	assert.False(t, ValidUsername("has space"))
	assert.False(t, ValidUsername("waytoolongusername123"))
}

func TestStripHTML(t *testing.T) {
	in := `<p>Hello <b>world</b></p><script>alert(1)</script>  &amp; more`
	assert.Equal(t, "Hello world & more", StripHTML(in))
}

func TestSanitizeRichText(t *testing.T) {
	out := SanitizeRichText(`<ul><li>Go</li></ul><img src=x onerror="alert(1)"><script>x()</script>`)
	assert.Contains(t, out, "<li>Go</li>")
	assert.NotContains(t, out, "onerror")
	assert.NotContains(t, out, "<script")
}

func TestFoldText(t *testing.T) {
	assert.Equal(t, "jose muller", FoldText("José Müller"))
	assert.Equal(t, "nguyen", FoldText("Nguyễn"))
}

func TestParseAmount(t *testing.T) {
	cases := map[string]string{
		"$5,000":         "5000",
		"3000-4000 USD":  "3000",
		"EUR 1200.50/mo": "1200.5",
	}
	for in, want := range cases {
		d, ok := ParseAmount(in)
		require.True(t, ok, in)
		assert.Equal(t, want, d.String(), in)
	}
	_, ok := ParseAmount("negotiable")
	assert.False(t, ok)
}
