package middleware

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/hphuyvu-stack/inclusing/internal/platform/ctxutil"
	"github.com/hphuyvu-stack/inclusing/internal/platform/logger"
)

const HeaderProfileID = "X-Profile-Id"

var profileIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:@-]{1,128}$`)

// ProfileMiddleware decides whose settings a request reads and writes.
type ProfileMiddleware struct {
	log    *logger.Logger
	secret []byte
}

// NewProfileMiddleware requires a verified HS256 bearer token when secret is
// non-empty. Without a secret, tokens are ignored and callers name their
// profile.
func NewProfileMiddleware(log *logger.Logger, secret string) *ProfileMiddleware {
	return &ProfileMiddleware{
		log:    log.With("Middleware", "ProfileMiddleware"),
		secret: []byte(strings.TrimSpace(secret)),
	}
}

// Resolve takes the profile from the verified token subject when a secret is
// configured, rejecting requests without one. Otherwise it takes, in order,
// the X-Profile-Id header, the profile query parameter, or the anonymous
// profile.
func (pm *ProfileMiddleware) Resolve() gin.HandlerFunc {
	return func(c *gin.Context) {
		pd, err := pm.resolve(c)
		if err != nil {
			status := http.StatusBadRequest
			code := "invalid_profile"
			if errors.Is(err, errBadToken) || errors.Is(err, errMissingToken) {
				status = http.StatusUnauthorized
				code = "unauthorized"
			}
			c.AbortWithStatusJSON(status, gin.H{
				"error": gin.H{"message": err.Error(), "code": code},
			})
			return
		}
		c.Request = c.Request.WithContext(ctxutil.WithProfile(c.Request.Context(), pd))
		c.Next()
	}
}

var (
	errBadToken     = errors.New("invalid or expired token")
	errMissingToken = errors.New("missing bearer token")
)

func (pm *ProfileMiddleware) resolve(c *gin.Context) (*ctxutil.ProfileData, error) {
	if len(pm.secret) > 0 {
		tok := extractToken(c)
		if tok == "" {
			return nil, errMissingToken
		}
		sub, err := pm.subject(tok)
		if err != nil {
			pm.log.Debug("Rejected bearer token", "error", err)
			return nil, errBadToken
		}
		return checked(sub, "jwt")
	}
	if h := strings.TrimSpace(c.GetHeader(HeaderProfileID)); h != "" {
		return checked(h, "header")
	}
	if q := strings.TrimSpace(c.Query("profile")); q != "" {
		return checked(q, "query")
	}
	return &ctxutil.ProfileData{ProfileID: ctxutil.AnonymousProfile, Source: "anonymous"}, nil
}

func (pm *ProfileMiddleware) subject(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return pm.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

func checked(id, source string) (*ctxutil.ProfileData, error) {
	if !profileIDPattern.MatchString(id) {
		return nil, errors.New("profile id must be 1-128 characters of letters, digits or ._:@-")
	}
	return &ctxutil.ProfileData{ProfileID: id, Source: source}, nil
}

// extractToken accepts a bearer header or a token query parameter, the
// latter for EventSource and WebSocket clients that cannot set headers.
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return strings.TrimSpace(c.Query("token"))
}
