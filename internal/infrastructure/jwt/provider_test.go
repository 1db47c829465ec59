package jwtinfra

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, expiry time.Duration) *Provider {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return NewProviderFromKeys(key, &key.PublicKey, expiry)
}

func TestSignVerify_RoundTrip(t *testing.T) {
	p := newTestProvider(t, time.Hour)

	tok, err := p.Sign("u1", "d1", "admin", "s1")
	require.NoError(t, err)

	claims, err := p.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID())
	assert.Equal(t, "d1", claims.DeviceID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "s1", claims.SessionID)
	assert.Equal(t, issuer, claims.Issuer)
}

func TestVerify_Expired(t *testing.T) {
	p := newTestProvider(t, time.Minute)
	p.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	tok, err := p.Sign("u1", "d1", "user", "s1")
	require.NoError(t, err)

	_, err = p.Verify(tok)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestVerify_OtherKey(t *testing.T) {
	signer := newTestProvider(t, time.Hour)
	verifier := newTestProvider(t, time.Hour)

	tok, err := signer.Sign("u1", "d1", "user", "s1")
	require.NoError(t, err)

	_, err = verifier.Verify(tok)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestVerify_RejectsHMAC(t *testing.T) {
	p := newTestProvider(t, time.Hour)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = p.Verify(tok)
	assert.Error(t, err)
}

func TestVerify_WrongIssuer(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	p := NewProviderFromKeys(key, &key.PublicKey, time.Hour)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodRS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(key)
	require.NoError(t, err)

	_, err = p.Verify(tok)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
}

func TestVerify_MissingExpiry(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	p := NewProviderFromKeys(key, &key.PublicKey, time.Hour)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodRS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer, Subject: "u1"},
	}).SignedString(key)
	require.NoError(t, err)

	_, err = p.Verify(tok)
	assert.ErrorIs(t, err, jwt.ErrTokenRequiredClaimMissing)
}

func TestSignVerifyLink_RoundTrip(t *testing.T) {
	p := newTestProvider(t, time.Hour)

	tok, err := p.SignLink("u1", "email-verify", "abc123", "link-1", time.Now().Add(time.Hour))
	require.NoError(t, err)

	claims, err := p.VerifyLink(tok, "email-verify")
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "abc123", claims.Digest)
	assert.Equal(t, "link-1", claims.ID)
}

func TestVerifyLink_Expired(t *testing.T) {
	p := newTestProvider(t, time.Hour)
	tok, err := p.SignLink("u1", "email-verify", "abc123", "link-1", time.Now().Add(-time.Minute))
	require.NoError(t, err)

	_, err = p.VerifyLink(tok, "email-verify")
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestVerifyLink_OtherPurpose(t *testing.T) {
	p := newTestProvider(t, time.Hour)
	tok, err := p.SignLink("u1", "password-reset", "abc123", "link-1", time.Now().Add(time.Hour))
	require.NoError(t, err)

	_, err = p.VerifyLink(tok, "email-verify")
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidAudience)
}

func TestVerifyLink_TamperedSignature(t *testing.T) {
	p := newTestProvider(t, time.Hour)
	tok, err := p.SignLink("u1", "email-verify", "abc123", "link-1", time.Now().Add(time.Hour))
	require.NoError(t, err)

	_, err = p.VerifyLink(tok[:len(tok)-4]+"AAAA", "email-verify")
	assert.Error(t, err)
}

func TestLinkAndBearerTokensDoNotCross(t *testing.T) {
	p := newTestProvider(t, time.Hour)

	link, err := p.SignLink("u1", "email-verify", "abc123", "link-1", time.Now().Add(time.Hour))
	require.NoError(t, err)
	_, err = p.Verify(link)
	assert.Error(t, err, "a link signature must not authenticate requests")

	bearer, err := p.Sign("u1", "d1", "user", "s1")
	require.NoError(t, err)
	_, err = p.VerifyLink(bearer, "email-verify")
	assert.Error(t, err, "a bearer token must not verify an email")
}
