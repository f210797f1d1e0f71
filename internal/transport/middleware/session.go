package middleware

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/radityasurya/pharmacy-network/internal"
	"github.com/radityasurya/pharmacy-network/pkg/logger"
)

// SessionClaims is the shape of the token the network's session provider
// issues. This service only verifies; it never signs.
type SessionClaims struct {
	TenantID     string `json:"tenant_id"`
	UserID       string `json:"user_id"`
	Name         string `json:"name"`
	NetworkAdmin bool   `json:"network_admin"`
	jwt.RegisteredClaims
}

// Session verifies the bearer token and installs the resulting Actor in the
// request context. Requests without a valid token never reach a handler.
func Session(secret string) func(http.Handler) http.Handler {
	key := []byte(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := bearerToken(r)
			if tokenString == "" {
				writeSessionError(w)
				return
			}

			claims := &SessionClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return key, nil
			})
			if err != nil || !token.Valid || claims.TenantID == "" || claims.UserID == "" {
				writeSessionError(w)
				return
			}

			actor := internal.Actor{
				TenantID:     claims.TenantID,
				UserID:       claims.UserID,
				DisplayName:  claims.Name,
				NetworkAdmin: claims.NetworkAdmin,
				OriginIP:     originIP(r),
			}

			ctx := internal.ContextWithActor(r.Context(), actor)
			ctx = logger.With(ctx, "tenant_id", actor.TenantID, "user_id", actor.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// originIP prefers the first X-Forwarded-For hop; the service runs behind
// the network's ingress proxy.
func originIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeSessionError(w http.ResponseWriter) {
	status, body := internal.ErrInvalidSession.ToHTTPResponse()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
