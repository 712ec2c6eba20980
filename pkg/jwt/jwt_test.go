package jwt_test

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aguahielo/movimientos-api/pkg/jwt"
)

const secret = "test-secret-key-for-unit-tests"

func newSigner(t *testing.T, issuer string) *jwt.Signer {
	t.Helper()
	s, err := jwt.NewSigner(secret, issuer, time.Hour)
	require.NoError(t, err)
	return s
}

func TestSignVerify_DevuelveIdentidad(t *testing.T) {
	s := newSigner(t, "movimientos-api")

	tok, err := s.Sign(jwt.Identity{UserID: "bodeguero-1", Role: "bodeguero"})
	require.NoError(t, err)

	id, err := s.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, jwt.Identity{UserID: "bodeguero-1", Role: "bodeguero"}, id)
}

func TestNewSigner_SecretVacio(t *testing.T) {
	_, err := jwt.NewSigner("", "movimientos-api", time.Hour)
	assert.ErrorIs(t, err, jwt.ErrEmptySecret)
}

func TestSign_SinUsuario(t *testing.T) {
	_, err := newSigner(t, "").Sign(jwt.Identity{Role: "admin"})
	assert.ErrorIs(t, err, jwt.ErrNoSubject)
}

func TestVerify_Rechazos(t *testing.T) {
	s := newSigner(t, "movimientos-api")

	expired, err := s.SignFor(jwt.Identity{UserID: "u"}, -time.Minute)
	require.NoError(t, err)
	_, err = s.Verify(expired)
	assert.ErrorIs(t, err, gojwt.ErrTokenExpired)

	otherIssuer, err := newSigner(t, "otro-servicio").Sign(jwt.Identity{UserID: "u"})
	require.NoError(t, err)
	_, err = s.Verify(otherIssuer)
	assert.ErrorIs(t, err, gojwt.ErrTokenInvalidIssuer)

	otherSecret, err := jwt.NewSigner("otro-secret-completamente-distinto", "movimientos-api", time.Hour)
	require.NoError(t, err)
	forged, err := otherSecret.Sign(jwt.Identity{UserID: "u"})
	require.NoError(t, err)
	_, err = s.Verify(forged)
	assert.ErrorIs(t, err, gojwt.ErrTokenSignatureInvalid)

	none := gojwt.NewWithClaims(gojwt.SigningMethodNone, gojwt.MapClaims{"sub": "u", "iss": "movimientos-api", "exp": time.Now().Add(time.Hour).Unix()})
	raw, err := none.SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = s.Verify(raw)
	assert.Error(t, err)
}
