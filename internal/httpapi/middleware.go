package httpapi

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Leganyst/salon-core/internal/apperror"
	"github.com/Leganyst/salon-core/internal/service"
)

const (
	RequestIDHeader = "X-Request-Id"

	ctxRequestID = "request_id"
	ctxActor     = "actor"
)

// Claims are issued by the identity service; only user_id and role are read.
type Claims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// RequestID reuses the caller's X-Request-Id or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func RequestIDFrom(c *gin.Context) string {
	return c.GetString(ctxRequestID)
}

func AccessLog(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.WithFields(logrus.Fields{
			"request_id":  RequestIDFrom(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("http request")
	}
}

// Authenticate verifies the HS256 bearer token and loads the acting account.
// The stored role wins over the role claim.
func Authenticate(secret []byte, accounts service.AccountLookup, log logrus.FieldLogger) gin.HandlerFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			RespondError(c, log, apperror.Unauthorized("authorization header missing"))
			return
		}

		claims := &Claims{}
		_, err := parser.ParseWithClaims(strings.TrimSpace(raw), claims, func(*jwt.Token) (any, error) {
			return secret, nil
		})
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				RespondError(c, log, apperror.Unauthorized("token expired"))
				return
			}
			RespondError(c, log, apperror.Unauthorized("invalid token"))
			return
		}

		actor, err := service.ValidateActor(c.Request.Context(), accounts, claims.UserID)
		if err != nil {
			RespondError(c, log, err)
			return
		}

		c.Set(ctxActor, actor)
		c.Next()
	}
}

func actorFrom(c *gin.Context) service.Actor {
	v, _ := c.Get(ctxActor)
	a, _ := v.(service.Actor)
	return a
}
