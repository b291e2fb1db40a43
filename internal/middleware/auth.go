package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/agroplan/agroplan-api/internal/constants"
	apierrors "github.com/agroplan/agroplan-api/internal/errors"
)

// Principal is the tenant-scoped identity attached to every request by the
// upstream identity provider's token.
type Principal struct {
	UserID    uuid.UUID
	CompanyID uuid.UUID
	Role      string
}

// RequireAuth validates the bearer token and attaches the principal.
// Tokens are issued upstream; this layer only verifies the shared-secret
// signature and lifts the claims into the request context.
func RequireAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			apierrors.Unauthorized(c, "Invalid token")
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			apierrors.Unauthorized(c, "Invalid token")
			c.Abort()
			return
		}

		userID, err := claimUUID(claims, "sub")
		if err != nil {
			apierrors.Unauthorized(c, "Invalid token")
			c.Abort()
			return
		}
		companyID, err := claimUUID(claims, "company_id")
		if err != nil {
			apierrors.Unauthorized(c, "Invalid token")
			c.Abort()
			return
		}

		role, _ := claims["role"].(string)

		c.Set(constants.ContextKeyUserID, userID)
		c.Set(constants.ContextKeyCompanyID, companyID)
		c.Set(constants.ContextKeyRole, role)
		c.Next()
	}
}

func claimUUID(claims jwt.MapClaims, key string) (uuid.UUID, error) {
	raw, _ := claims[key].(string)
	return uuid.Parse(raw)
}

// GetPrincipal retrieves the authenticated principal from the context.
func GetPrincipal(c *gin.Context) (Principal, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return Principal{}, false
	}
	companyID, exists := c.Get(constants.ContextKeyCompanyID)
	if !exists {
		return Principal{}, false
	}

	uid, ok := userID.(uuid.UUID)
	if !ok {
		return Principal{}, false
	}
	cid, ok := companyID.(uuid.UUID)
	if !ok {
		return Principal{}, false
	}

	role, _ := c.Get(constants.ContextKeyRole)
	roleStr, _ := role.(string)

	return Principal{UserID: uid, CompanyID: cid, Role: roleStr}, true
}
