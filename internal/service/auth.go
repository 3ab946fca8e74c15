package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"google.golang.org/grpc/metadata"

	"github.com/webitel/im-delivery-service/internal/domain/model"
)

// Auther validates the bearer credential carried by a gateway session
// or gRPC call and resolves it to an AuthContact (§4.6).
type Auther interface {
	Inspect(ctx context.Context) (*model.AuthContact, error)
	Verify(token string, platform model.Platform) (*model.AuthContact, error)
}

// JWTAuther is an HMAC-signed bearer verifier: `sub`, `iat`, `exp`
// claims, as §4.6 names them.
type JWTAuther struct {
	secret []byte
}

func NewJWTAuther(secret string) *JWTAuther {
	return &JWTAuther{secret: []byte(secret)}
}

type claims struct {
	jwt.RegisteredClaims
}

// Verify parses and validates a bearer token extracted from the
// WebSocket upgrade path, binding it to the platform the client
// claims to be connecting from.
func (a *JWTAuther) Verify(token string, platform model.Platform) (*model.AuthContact, error) {
	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}
	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("auth: invalid token claims")
	}
	sub, err := c.GetSubject()
	if err != nil || sub == "" {
		return nil, errors.New("auth: token missing subject")
	}
	return &model.AuthContact{UserID: sub, Platform: platform}, nil
}

// Inspect implements Auther for the gRPC stream-auth interceptor: it
// reads a bearer token from incoming metadata. Unlike Verify, the
// platform is not known from the RPC call itself, so it is left
// unspecified; callers that need a platform use Verify directly.
func (a *JWTAuther) Inspect(ctx context.Context) (*model.AuthContact, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil, errors.New("auth: no metadata in context")
	}
	values := md.Get("authorization")
	if len(values) == 0 {
		return nil, errors.New("auth: missing authorization metadata")
	}
	token := strings.TrimPrefix(values[0], "Bearer ")
	return a.Verify(token, model.PlatformUnspecified)
}
