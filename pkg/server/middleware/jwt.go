// Package middleware holds HTTP middleware shared by the API routes.
package middleware

import (
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"

	"github.com/doodlesbykumbi/ezra-in-go/pkg/identity"
	"github.com/doodlesbykumbi/ezra-in-go/pkg/logging"
)

// JWTAuthenticator is middleware that validates HS256 bearer tokens
type JWTAuthenticator struct {
	secret []byte
	parser *jwt.Parser
}

// NewJWTAuthenticator creates a new JWT authenticator middleware
func NewJWTAuthenticator(secret string) *JWTAuthenticator {
	return &JWTAuthenticator{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
		),
	}
}

// Middleware returns an HTTP middleware that validates bearer tokens and
// stores the caller identity in the request context.
func (j *JWTAuthenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			unauthorized(w, "Authorization missing")
			return
		}

		tokenStr, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || tokenStr == "" {
			unauthorized(w, "Malformed authorization header")
			return
		}

		claims := &jwt.RegisteredClaims{}
		_, err := j.parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
			return j.secret, nil
		})
		if err != nil {
			logging.Ctx(r.Context()).Debug().Err(err).Msg("rejected bearer token")
			unauthorized(w, "Invalid token")
			return
		}
		if claims.Subject == "" {
			unauthorized(w, "Token has no subject")
			return
		}

		id := identity.FromClaims(claims)
		r = r.WithContext(identity.Set(r.Context(), id))

		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="ezra"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
