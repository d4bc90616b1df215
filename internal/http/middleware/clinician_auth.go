package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const callerKey contextKey = "caller"

// RoleClinician is the role claim that unlocks clinician answers.
const RoleClinician = "clinician"

// ClinicianClaims is the token issued by the doctors' portal.
type ClinicianClaims struct {
	Role string `json:"role"`
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// Caller is who is talking to the assistant.
type Caller struct {
	Clinician bool
	Identity  string
}

// ClinicianJWT marks requests carrying a valid HMAC-signed clinician token.
// Requests without an Authorization header continue as anonymous patients;
// a header that is present but invalid is rejected.
func ClinicianJWT(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				next.ServeHTTP(w, r)
				return
			}
			if secret == "" {
				http.Error(w, "clinician auth disabled", http.StatusUnauthorized)
				return
			}
			if !strings.HasPrefix(auth, "Bearer ") {
				http.Error(w, "malformed authorization header", http.StatusUnauthorized)
				return
			}
			tokenString := strings.TrimPrefix(auth, "Bearer ")
			claims := ClinicianClaims{}
			token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			if claims.Role != RoleClinician {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			identity := strings.TrimSpace(claims.Name)
			if identity == "" {
				identity = claims.Subject
			}
			ctx := WithCaller(r.Context(), Caller{Clinician: true, Identity: identity})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithCaller stores c on ctx.
func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey, c)
}

// CallerFromContext returns the authenticated caller, or the zero Caller
// (an anonymous patient).
func CallerFromContext(ctx context.Context) Caller {
	c, _ := ctx.Value(callerKey).(Caller)
	return c
}
