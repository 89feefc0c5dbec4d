package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
)

const ContextActor = "actor"

func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			unauthorized(c, "missing_authorization_header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			unauthorized(c, "invalid_authorization_header")
			return
		}

		token, err := jwt.Parse(
			parts[1],
			func(token *jwt.Token) (interface{}, error) {
				return []byte(secret), nil
			},
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		)
		if err != nil || !token.Valid {
			unauthorized(c, "invalid_token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			unauthorized(c, "invalid_token_claims")
			return
		}

		actor, ok := actorFromClaims(claims)
		if !ok {
			unauthorized(c, "invalid_token_payload")
			return
		}

		c.Set(ContextActor, actor)
		c.Next()
	}
}

// ActorFrom returns the authenticated actor. It is only valid behind
// AuthMiddleware.
func ActorFrom(c *gin.Context) domain.Actor {
	return c.MustGet(ContextActor).(domain.Actor)
}

func actorFromClaims(claims jwt.MapClaims) (domain.Actor, bool) {
	sub, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	if sub == "" || !domain.Role(role).Valid() {
		return domain.Actor{}, false
	}

	shopID, _ := claims["shopId"].(string)
	return domain.Actor{ID: sub, Role: domain.Role(role), ShopID: shopID}, true
}

func unauthorized(c *gin.Context, code string) {
	httperr.Unauthorized(c, code, "Authentication required.")
	c.Abort()
}
