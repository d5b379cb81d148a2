package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/phrazzld/roadmap-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-for-testing"

var fixedTime = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func testAuthConfig(secret string) config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:            secret,
		TokenLifetimeMinutes: 60,
		ClockSkewSeconds:     30,
	}
}

func newTestService(t *testing.T, secret string, clock clockwork.Clock) JWTService {
	t.Helper()
	svc, err := NewJWTService(testAuthConfig(secret), clock)
	require.NoError(t, err)
	return svc
}

func TestNewJWTService(t *testing.T) {
	t.Parallel()

	_, err := NewJWTService(testAuthConfig("short"), clockwork.NewRealClock())
	assert.ErrorIs(t, err, ErrWeakSecret)

	cfg := testAuthConfig(testSecret)
	cfg.TokenLifetimeMinutes = 0
	_, err = NewJWTService(cfg, clockwork.NewRealClock())
	assert.Error(t, err)
}

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClockAt(fixedTime)
	svc := newTestService(t, testSecret, clock)
	userID := uuid.New()

	token, expiresAt, err := svc.GenerateToken(context.Background(), userID, "dev@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, fixedTime.Add(time.Hour), expiresAt)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "dev@example.com", claims.Email)
	assert.Equal(t, "access", claims.TokenType)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, expiresAt.Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)
}

func TestValidateToken_Expiry(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClockAt(fixedTime)
	svc := newTestService(t, testSecret, clock)

	token, _, err := svc.GenerateToken(context.Background(), uuid.New(), "dev@example.com")
	require.NoError(t, err)

	clock.Advance(time.Hour - time.Second)
	_, err = svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)

	// Clock skew does not extend the lifetime reported to the client.
	clock.Advance(2 * time.Second)
	_, err = svc.ValidateToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_SkewAppliesToIssuedAt(t *testing.T) {
	t.Parallel()

	issuerClock := clockwork.NewFakeClockAt(fixedTime.Add(20 * time.Second))
	issuer := newTestService(t, testSecret, issuerClock)
	token, _, err := issuer.GenerateToken(context.Background(), uuid.New(), "dev@example.com")
	require.NoError(t, err)

	// A validator running 20s behind the issuer is within the 30s skew.
	validator := newTestService(t, testSecret, clockwork.NewFakeClockAt(fixedTime))
	_, err = validator.ValidateToken(context.Background(), token)
	require.NoError(t, err)
}

func TestValidateToken_Errors(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	sign := func(t *testing.T, claims jwtCustomClaims, method jwt.SigningMethod, key interface{}) string {
		t.Helper()
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}

	validClaims := func(tokenType string) jwtCustomClaims {
		return jwtCustomClaims{
			UserID:    userID,
			TokenType: tokenType,
			RegisteredClaims: jwt.RegisteredClaims{
				IssuedAt:  jwt.NewNumericDate(fixedTime),
				ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
			},
		}
	}

	tests := []struct {
		name    string
		token   func(t *testing.T) string
		wantErr error
	}{
		{
			name:    "empty",
			token:   func(t *testing.T) string { return "" },
			wantErr: ErrMissingToken,
		},
		{
			name:    "malformed",
			token:   func(t *testing.T) string { return "not.a.jwt" },
			wantErr: ErrInvalidToken,
		},
		{
			name: "wrong secret",
			token: func(t *testing.T) string {
				return sign(t, validClaims("access"), jwt.SigningMethodHS256,
					[]byte("wrong-secret-that-is-long-enough-for-testing"))
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "wrong algorithm",
			token: func(t *testing.T) string {
				return sign(t, validClaims("access"), jwt.SigningMethodHS512, []byte(testSecret))
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "wrong token type",
			token: func(t *testing.T) string {
				return sign(t, validClaims("refresh"), jwt.SigningMethodHS256, []byte(testSecret))
			},
			wantErr: ErrWrongTokenType,
		},
		{
			name: "missing expiry",
			token: func(t *testing.T) string {
				c := validClaims("access")
				c.ExpiresAt = nil
				return sign(t, c, jwt.SigningMethodHS256, []byte(testSecret))
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "issued in the future",
			token: func(t *testing.T) string {
				c := validClaims("access")
				c.IssuedAt = jwt.NewNumericDate(fixedTime.Add(10 * time.Minute))
				return sign(t, c, jwt.SigningMethodHS256, []byte(testSecret))
			},
			wantErr: ErrTokenNotYetValid,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := newTestService(t, testSecret, clockwork.NewFakeClockAt(fixedTime))

			claims, err := svc.ValidateToken(context.Background(), tt.token(t))
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, claims)
		})
	}
}
