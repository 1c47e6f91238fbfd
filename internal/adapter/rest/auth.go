package rest

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"google.golang.org/grpc/codes"

	"github.com/eslsoft/vocengage/internal/entity"
	"github.com/eslsoft/vocengage/internal/infrastructure/config"
)

// Claims are the bearer token claims the API understands. The user id comes from "uid", or from
// a numeric "sub" when "uid" is absent.
type Claims struct {
	UserID int64  `json:"uid,omitempty"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	Admin  bool   `json:"admin,omitempty"`
	jwt.RegisteredClaims
}

// Authenticator verifies HS256 bearer tokens issued by the identity service.
type Authenticator struct {
	secret []byte
	parser *jwt.Parser
}

// NewAuthenticator builds an Authenticator from the auth config section.
func NewAuthenticator(cfg *config.Config) (*Authenticator, error) {
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("auth.jwt_secret is required to serve the API")
	}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if cfg.Auth.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Auth.Issuer))
	}
	return &Authenticator{secret: []byte(cfg.Auth.JWTSecret), parser: jwt.NewParser(opts...)}, nil
}

// Authenticate resolves a raw token into the user it was issued for.
func (a *Authenticator) Authenticate(raw string) (entity.User, error) {
	claims := &Claims{}
	if _, err := a.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}); err != nil {
		return entity.User{}, err
	}

	id := claims.UserID
	if id == 0 && claims.Subject != "" {
		parsed, err := strconv.ParseInt(claims.Subject, 10, 64)
		if err != nil {
			return entity.User{}, fmt.Errorf("subject %q is not a user id", claims.Subject)
		}
		id = parsed
	}
	user := entity.User{ID: id, Name: claims.Name, Email: claims.Email, Admin: claims.Admin}
	if err := user.Validate(); err != nil {
		return entity.User{}, err
	}
	return user, nil
}

// Middleware rejects requests without a valid bearer token and stores the user in the context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			writeStatus(w, codes.Unauthenticated, "bearer token required")
			return
		}
		user, err := a.Authenticate(strings.TrimSpace(token))
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "token has expired"
			}
			writeStatus(w, codes.Unauthenticated, msg)
			return
		}
		next.ServeHTTP(w, r.WithContext(entity.WithUser(r.Context(), user)))
	})
}

// RequireAdmin lets through authenticated users carrying the admin claim.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := entity.UserFromContext(r.Context())
		if !ok || !user.Admin {
			writeStatus(w, codes.PermissionDenied, "admin privileges required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
