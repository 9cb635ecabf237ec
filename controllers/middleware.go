package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"mariadbpaas/config"
	"mariadbpaas/pkg/apperrors"
	"mariadbpaas/utils"

	"github.com/gin-gonic/gin"
)

const contextUsernameKey = "username"

// AuthRequired validates the bearer token and stores the platform username
// in the request context for the handlers behind it.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    http.StatusUnauthorized,
				"message": "missing bearer token",
			})
			return
		}

		username, err := utils.UsernameFromToken(
			strings.TrimPrefix(header, "Bearer "),
			[]byte(config.Cfg.JWTSecret),
		)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    http.StatusUnauthorized,
				"message": "invalid or expired token",
			})
			return
		}

		c.Set(contextUsernameKey, username)
		c.Next()
	}
}

// currentUsername reads the username set by AuthRequired.
func currentUsername(c *gin.Context) string {
	return c.GetString(contextUsernameKey)
}

// uintParam parses a numeric path parameter.
func uintParam(c *gin.Context, name string) (uint, error) {
	value, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s %q", apperrors.ErrBadRequest, name, c.Param(name))
	}
	return uint(value), nil
}

// intQuery parses an optional numeric query parameter, falling back to def.
func intQuery(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return value
}
