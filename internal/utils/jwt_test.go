package utils

import (
	"crypto/rand"
	"crypto/rsa"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/course-stream/internal/model"
)

const testSecret = "this_is_a_very_long_secret_key_for_testing_purposes_12345"

func TestAccessTokenRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		id   model.Identity
	}{
		{"admin", model.Identity{ID: "a-1", Email: "admin@example.com", Role: model.RoleAdmin}},
		{"student", model.Identity{ID: "s-1", Email: "student@example.com", Role: model.RoleStudent}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok, err := NewAccessToken(testSecret, tt.id, time.Hour)
			require.NoError(t, err)
			assert.WithinDuration(t, time.Now().Add(time.Hour), tok.Exp, 5*time.Second)

			got, err := VerifyAccessToken(testSecret, tok.Token)
			require.NoError(t, err)
			assert.Equal(t, tt.id, got)
		})
	}
}

func TestNewAccessTokenEmptySecret(t *testing.T) {
	_, err := NewAccessToken("", model.Identity{ID: "x", Role: model.RoleStudent}, time.Hour)
	assert.Error(t, err)
}

func TestVerifyAccessTokenFailures(t *testing.T) {
	student := model.Identity{ID: "s-1", Email: "s@example.com", Role: model.RoleStudent}
	valid, err := NewAccessToken(testSecret, student, time.Hour)
	require.NoError(t, err)
	expired, err := NewAccessToken(testSecret, student, -time.Minute)
	require.NoError(t, err)
	otherSecret, err := NewAccessToken("another_secret_that_is_long_enough_123456", student, time.Hour)
	require.NoError(t, err)

	parts := strings.Split(valid.Token, ".")
	require.Len(t, parts, 3)
	// Swap in a payload from a different identity but keep the old signature.
	admin, err := NewAccessToken(testSecret, model.Identity{ID: "s-1", Role: model.RoleAdmin}, time.Hour)
	require.NoError(t, err)
	tampered := parts[0] + "." + strings.Split(admin.Token, ".")[1] + "." + parts[2]

	noExp := signHS(t, jwt.MapClaims{"id": "s-1", "role": model.RoleStudent})
	badRole := signHS(t, jwt.MapClaims{"id": "s-1", "role": "OWNER", "exp": time.Now().Add(time.Hour).Unix()})

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	rs, err := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"id": "s-1", "role": model.RoleStudent, "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(key)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"id": "s-1", "role": model.RoleAdmin, "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"expired", expired.Token, ErrTokenExpired},
		{"wrong secret", otherSecret.Token, ErrTokenSignature},
		{"tampered payload", tampered, ErrTokenSignature},
		{"garbage", "not-a-token", ErrTokenMalformed},
		{"empty", "", ErrTokenMalformed},
		{"missing exp", noExp, ErrTokenMalformed},
		{"unknown role", badRole, ErrTokenMalformed},
		{"rs256 algorithm", rs, ErrTokenSignature},
		{"none algorithm", none, ErrTokenSignature},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := VerifyAccessToken(testSecret, tt.token)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func signHS(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}
