package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/metadata"

	"github.com/webitel/im-delivery-service/internal/domain/model"
)

func signToken(t *testing.T, secret string, sub string, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sub,
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	signed, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestJWTAutherVerifyValidToken(t *testing.T) {
	auther := NewJWTAuther("s3cret")
	token := signToken(t, "s3cret", "user-1", time.Now().Add(time.Hour))

	contact, err := auther.Verify(token, model.PlatformMobile)
	require.NoError(t, err)
	assert.Equal(t, "user-1", contact.UserID)
	assert.Equal(t, model.PlatformMobile, contact.Platform)
}

func TestJWTAutherVerifyRejectsWrongSecret(t *testing.T) {
	auther := NewJWTAuther("s3cret")
	token := signToken(t, "wrong-secret", "user-1", time.Now().Add(time.Hour))

	_, err := auther.Verify(token, model.PlatformMobile)
	assert.Error(t, err)
}

func TestJWTAutherVerifyRejectsExpiredToken(t *testing.T) {
	auther := NewJWTAuther("s3cret")
	token := signToken(t, "s3cret", "user-1", time.Now().Add(-time.Hour))

	_, err := auther.Verify(token, model.PlatformMobile)
	assert.Error(t, err)
}

func TestJWTAutherVerifyRejectsMissingSubject(t *testing.T) {
	auther := NewJWTAuther("s3cret")
	token := signToken(t, "s3cret", "", time.Now().Add(time.Hour))

	_, err := auther.Verify(token, model.PlatformMobile)
	assert.Error(t, err)
}

func TestJWTAutherInspectReadsBearerFromMetadata(t *testing.T) {
	auther := NewJWTAuther("s3cret")
	token := signToken(t, "s3cret", "user-1", time.Now().Add(time.Hour))

	ctx := metadata.NewIncomingContext(t.Context(), metadata.Pairs("authorization", "Bearer "+token))
	contact, err := auther.Inspect(ctx)
	require.NoError(t, err)
	assert.Equal(t, "user-1", contact.UserID)
	assert.Equal(t, model.PlatformUnspecified, contact.Platform)
}

func TestJWTAutherInspectMissingMetadataFails(t *testing.T) {
	auther := NewJWTAuther("s3cret")
	_, err := auther.Inspect(t.Context())
	assert.Error(t, err)
}
