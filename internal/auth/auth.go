package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
	RoleAdmin   = "admin"
)

var (
	ErrNoToken      = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid identity token")
)

// Subject is the verified identity on a request: who is calling and in
// what role. The rest of the system trusts this pair.
type Subject struct {
	ID   uuid.UUID
	Role string
}

type contextKey string

const subjectKey contextKey = "auth_subject"

// SignToken issues an HS256 token carrying (sub, role). Exposed for the
// seed tool and tests; a real deployment's identity provider does this.
func SignToken(secret string, subjectID uuid.UUID, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  subjectID.String(),
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	})
	return token.SignedString([]byte(secret))
}

// VerifyToken checks the signature and extracts the subject.
func VerifyToken(secret, tokenStr string) (Subject, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return Subject{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Subject{}, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)

	id, err := uuid.Parse(sub)
	if err != nil {
		return Subject{}, ErrInvalidToken
	}
	switch role {
	case RolePatient, RoleDoctor, RoleAdmin:
	default:
		return Subject{}, ErrInvalidToken
	}

	return Subject{ID: id, Role: role}, nil
}

// Middleware verifies the Authorization header and stores the subject in
// the request context. Requests without a valid token get 401.
func Middleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				unauthorized(w, ErrNoToken)
				return
			}

			subject, err := VerifyToken(secret, strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				unauthorized(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), subjectKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FromContext returns the verified subject, if any.
func FromContext(ctx context.Context) (Subject, bool) {
	s, ok := ctx.Value(subjectKey).(Subject)
	return s, ok
}

func unauthorized(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	fmt.Fprintf(w, `{"error":"unauthorized","details":%q}`, err.Error())
}
