package middleware

import (
	"crypto/subtle"
	"net/http"

	"ytpicker/internal/model"
	"ytpicker/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CSRFContextKey is where the request's token is stored for templates
const CSRFContextKey = "csrf_token"

const csrfCookieMaxAge = 365 * 24 * 60 * 60

// CSRFFailureMessage is returned to clients whose token does not match
const CSRFFailureMessage = "CSRF verification failed. Request aborted."

// CSRF issues a token cookie and requires state-changing requests to echo it
// back in the X-CSRFToken header or the csrfmiddlewaretoken form field
func CSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(model.CSRFCookieName)
		fresh := err != nil || token == ""
		if fresh {
			token = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(model.CSRFCookieName, token, csrfCookieMaxAge, "/", "", false, false)
			if isSafeMethod(c.Request.Method) {
				logger.Logger.Debug("CSRF token issued", zap.String("ip", c.ClientIP()))
			}
		}
		c.Set(CSRFContextKey, token)

		if isSafeMethod(c.Request.Method) {
			c.Next()
			return
		}

		sent := c.GetHeader(model.CSRFHeaderName)
		if sent == "" {
			sent = c.PostForm(model.CSRFFormField)
		}

		// a freshly minted token can never match, the browser has not seen it yet
		if fresh || sent == "" || subtle.ConstantTimeCompare([]byte(sent), []byte(token)) != 1 {
			logger.Logger.Warn("CSRF verification failed",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": CSRFFailureMessage})
			return
		}

		c.Next()
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}
