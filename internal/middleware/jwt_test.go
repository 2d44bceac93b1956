package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newProtectedApp() *fiber.App {
	app := fiber.New()
	app.Get("/protected", JWTProtected(testSecret), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id": c.Locals("user_id"),
			"role":    c.Locals("user_role"),
		})
	})
	return app
}

func TestJWTProtectedAcceptsValidToken(t *testing.T) {
	app := newProtectedApp()
	token := signToken(t, testSecret, jwt.MapClaims{"sub": "42", "role": "teacher"})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestJWTProtectedRejectsBadTokens(t *testing.T) {
	app := newProtectedApp()

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"empty token", "Bearer "},
		{"garbage token", "Bearer not.a.jwt"},
		{"wrong secret", "Bearer " + signToken(t, "other-secret", jwt.MapClaims{"sub": "42", "role": "teacher"})},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}

			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestExtractUserIDFromClaims(t *testing.T) {
	tests := []struct {
		name   string
		claims jwt.MapClaims
		want   *uint
	}{
		{"numeric sub", jwt.MapClaims{"sub": float64(7)}, ptrUint(7)},
		{"string sub", jwt.MapClaims{"sub": "7"}, ptrUint(7)},
		{"user_id fallback", jwt.MapClaims{"user_id": float64(9)}, ptrUint(9)},
		{"no identity", jwt.MapClaims{"name": "anon"}, nil},
		{"negative", jwt.MapClaims{"sub": float64(-1)}, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := extractUserIDFromClaims(tc.claims)
			if tc.want == nil {
				require.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			require.Equal(t, *tc.want, *got)
		})
	}
}

func TestExtractUserRoleFromClaims(t *testing.T) {
	require.Equal(t, "teacher", extractUserRoleFromClaims(jwt.MapClaims{"role": " Teacher "}))
	require.Equal(t, "student", extractUserRoleFromClaims(jwt.MapClaims{"roles": []interface{}{"Student", "other"}}))
	require.Equal(t, "", extractUserRoleFromClaims(jwt.MapClaims{}))
}

func ptrUint(v uint) *uint {
	return &v
}
