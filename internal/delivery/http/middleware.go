package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/vogiaan1904/ticketbottle-checkout/pkg/logger"
	resp "github.com/vogiaan1904/ticketbottle-checkout/pkg/response"
)

var errUnexpectedSigningMethod = errors.New("unexpected signing method")

// Claims identifies the caller. Checkout tokens minted by the waitroom also
// pin the event and queue session they were admitted for.
type Claims struct {
	UserID    string
	EventID   string
	SessionID string
}

type claimsKey struct{}

func ClaimsFromContext(ctx context.Context) Claims {
	c, _ := ctx.Value(claimsKey{}).(Claims)
	return c
}

// Authenticate requires an HS256 bearer token carrying a user_id claim.
func Authenticate(secret string, l logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				_ = resp.Error(w, errMissingToken)
				return
			}

			claims, err := parseToken(token, secret)
			if err != nil {
				l.Warnf(r.Context(), "delivery.http.Authenticate: %v", err)
				_ = resp.Error(w, errInvalidToken)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey{}, claims)
			ctx = l.With(ctx, "user_id", claims.UserID)
			if claims.SessionID != "" {
				ctx = l.With(ctx, "session_id", claims.SessionID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func parseToken(token, secret string) (Claims, error) {
	mc := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, mc, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errUnexpectedSigningMethod
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Claims{}, err
	}
	if !parsed.Valid {
		return Claims{}, jwt.ErrTokenInvalidClaims
	}

	userID, _ := mc["user_id"].(string)
	if userID == "" {
		return Claims{}, jwt.ErrTokenInvalidClaims
	}
	eventID, _ := mc["event_id"].(string)
	sessionID, _ := mc["session_id"].(string)

	return Claims{UserID: userID, EventID: eventID, SessionID: sessionID}, nil
}
