package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signClaims(t *testing.T, secret string, method jwt.SigningMethod, claims Claims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func TestGenerateAndParseJWT(t *testing.T) {
	tok, err := GenerateJWT(testSecret, "0xAbC0000000000000000000000000000000000001", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(testSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, "0xabc0000000000000000000000000000000000001", claims.Address)
	assert.Equal(t, claims.Address, claims.Subject)
	assert.Equal(t, Issuer, claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestGenerateJWT_DefaultExpiration(t *testing.T) {
	tok, err := GenerateJWT(testSecret, "0xabc", 0)
	require.NoError(t, err)

	claims, err := ParseJWT(testSecret, tok)
	require.NoError(t, err)
	lifetime := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	assert.Equal(t, DefaultExpiration, lifetime)
}

func TestParseJWT_Rejects(t *testing.T) {
	valid, err := GenerateJWT(testSecret, "0xabc", time.Hour)
	require.NoError(t, err)

	issued := time.Now().Add(-8 * 24 * time.Hour)
	expired := signClaims(t, testSecret, jwt.SigningMethodHS256, Claims{
		Address: "0xabc",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(DefaultExpiration)),
		},
	})

	noExpiry := signClaims(t, testSecret, jwt.SigningMethodHS256, Claims{
		Address:          "0xabc",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: Issuer},
	})

	foreignIssuer := signClaims(t, testSecret, jwt.SigningMethodHS256, Claims{
		Address: "0xabc",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	noAddress := signClaims(t, testSecret, jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	tests := []struct {
		name   string
		secret string
		token  string
	}{
		{"wrong secret", "other-secret", valid},
		{"expired after seven days", testSecret, expired},
		{"missing expiry", testSecret, noExpiry},
		{"foreign issuer", testSecret, foreignIssuer},
		{"no address", testSecret, noAddress},
		{"tampered payload", testSecret, tampered},
		{"garbage", testSecret, "not-a-jwt"},
		{"empty", testSecret, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJWT(tt.secret, tt.token)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestParseJWT_RejectsNoneAlgorithm(t *testing.T) {
	claims := Claims{
		Address: "0xabc",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ParseJWT(testSecret, tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
