// Package middleware provides common gin middlewares.
package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/fin-ledger/pkg/tokenpkg"
	"github.com/go-petr/fin-ledger/pkg/web"
)

var (
	// ErrTokenMissing indicates that the request carries no bearer token.
	ErrTokenMissing = errors.New("JWT token is missing!")
	// ErrTokenInvalid indicates a malformed or unverifiable bearer token.
	ErrTokenInvalid = errors.New("JWT invalid token!")
)

// Authorization header conventions.
const (
	AuthHeaderKey  = "authorization"
	AuthTypeBearer = "bearer"
	AuthPayloadKey = "authorization_payload"
)

// AddAuthorization sets a valid bearer token on the given request. Used in tests.
func AddAuthorization(r *http.Request, tokenMaker tokenpkg.Maker, authType, userID string, duration time.Duration) error {
	token, _, err := tokenMaker.CreateToken(userID, duration)
	if err != nil {
		return err
	}

	r.Header.Set(AuthHeaderKey, authType+" "+token)

	return nil
}

// AuthMiddleware verifies the bearer token and stores its payload in the gin context.
func AuthMiddleware(tokenMaker tokenpkg.Maker) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		authHeader := gctx.GetHeader(AuthHeaderKey)
		if len(authHeader) == 0 {
			gctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(ErrTokenMissing))
			return
		}

		fields := strings.Fields(authHeader)
		if len(fields) < 2 || strings.ToLower(fields[0]) != AuthTypeBearer {
			gctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(ErrTokenInvalid))
			return
		}

		payload, err := tokenMaker.VerifyToken(fields[1])
		if err != nil {
			gctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(ErrTokenInvalid))
			return
		}

		gctx.Set(AuthPayloadKey, payload)
		gctx.Next()
	}
}
