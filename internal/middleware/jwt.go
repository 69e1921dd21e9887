package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/nastava-api/internal/models"
	appErrors "github.com/noah-isme/nastava-api/pkg/errors"
	"github.com/noah-isme/nastava-api/pkg/response"
)

// ContextUserKey is the gin context key storing the caller identity.
const ContextUserKey = "currentUser"

// TokenValidator decodes bearer tokens.
type TokenValidator interface {
	ValidateToken(token string) (*models.AuthContext, error)
}

// JWT protects routes by requiring a valid access token.
func JWT(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "missing or malformed authorization header"))
			c.Abort()
			return
		}

		auth, err := validator.ValidateToken(token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, auth)
		c.Next()
	}
}

// CurrentUser returns the identity stored by JWT, or nil.
func CurrentUser(c *gin.Context) *models.AuthContext {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	auth, _ := value.(*models.AuthContext)
	return auth
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
