package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// Identity is what the hosted auth provider vouches for.
type Identity struct {
	UserID    uuid.UUID
	Email     string
	FullName  string
	AvatarURL string
}

// Verifier turns a bearer token into an Identity. Implementations never issue
// tokens or see credentials.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// VerifierFunc adapts a function to Verifier.
type VerifierFunc func(ctx context.Context, token string) (Identity, error)

func (f VerifierFunc) Verify(ctx context.Context, token string) (Identity, error) {
	return f(ctx, token)
}

type userMetadata struct {
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
}

type supabaseClaims struct {
	Email        string       `json:"email"`
	UserMetadata userMetadata `json:"user_metadata"`
	jwt.RegisteredClaims
}

// JWTVerifier checks provider-issued HS256 access tokens locally with the
// project's JWT secret. The subject claim is the user id.
type JWTVerifier struct {
	secret   []byte
	audience string
}

func NewJWTVerifier(secret, audience string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret), audience: audience}
}

func (v *JWTVerifier) Verify(_ context.Context, token string) (Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	var claims supabaseClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return Identity{}, ErrInvalidToken
	}

	uid, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}

	return Identity{
		UserID:    uid,
		Email:     claims.Email,
		FullName:  claims.UserMetadata.FullName,
		AvatarURL: claims.UserMetadata.AvatarURL,
	}, nil
}

// RemoteVerifier asks the auth provider's user endpoint to validate the token.
// Use it when the JWT secret is not available to the service.
type RemoteVerifier struct {
	BaseURL string
	AnonKey string
	Client  *http.Client
}

func NewRemoteVerifier(baseURL, anonKey string) *RemoteVerifier {
	return &RemoteVerifier{
		BaseURL: strings.TrimRight(baseURL, "/"),
		AnonKey: anonKey,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type remoteUser struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	UserMetadata userMetadata `json:"user_metadata"`
}

type verifyHTTPError struct {
	Status int
	Body   string
}

func (e *verifyHTTPError) Error() string {
	return fmt.Sprintf("auth provider returned %d", e.Status)
}

func (v *RemoteVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.BaseURL+"/auth/v1/user", nil)
	if err != nil {
		return Identity{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", v.AnonKey)

	res, err := v.Client.Do(req)
	if err != nil {
		return Identity{}, err
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(res.Body)
	if res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden {
		return Identity{}, ErrInvalidToken
	}
	if res.StatusCode >= 300 {
		return Identity{}, &verifyHTTPError{Status: res.StatusCode, Body: string(body)}
	}

	var u remoteUser
	if err := json.Unmarshal(body, &u); err != nil {
		return Identity{}, err
	}
	uid, err := uuid.Parse(u.ID)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}
	return Identity{
		UserID:    uid,
		Email:     u.Email,
		FullName:  u.UserMetadata.FullName,
		AvatarURL: u.UserMetadata.AvatarURL,
	}, nil
}
