package middleware

import (
	"net/http"
	"strings"

	"backend/internal/policy"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const actorKey = "actor"

// Auth verifies bearer credentials issued by the external identity provider
// and exposes the resulting claims (principal id, role, branch) to handlers.
// Token issuing and refresh live with the provider, not here.
type Auth struct {
	secret []byte
}

func NewAuth(secret []byte) *Auth {
	return &Auth{secret: secret}
}

// GetActor returns the verified actor set by the auth middleware
func GetActor(c *gin.Context) (policy.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return policy.Actor{}, false
	}
	actor, ok := v.(policy.Actor)
	return actor, ok
}

// RequireRole validates the bearer token, checks the actor's role against
// the allowed list and stores the actor on the context. It accepts the
// Authorization header or an access_token cookie.
func (a *Auth) RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := a.verify(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(err.Error()))
			return
		}

		allowed := false
		for _, role := range allowedRoles {
			if actor.Role == role {
				allowed = true
				break
			}
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error("access denied: insufficient permissions"))
			return
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

// RequireBranchAccess ensures branch-scoped staff only reach their own
// branch. Global roles pass for any branch; customers are not branch-bound.
// Must run after RequireRole.
func (a *Auth) RequireBranchAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("authorization is missing"))
			return
		}

		if policy.IsGlobal(actor.Role) || actor.Role == policy.RoleCustomer {
			c.Next()
			return
		}

		branchParam := c.Param("branchId")
		if branchParam == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, response.Error("branch id is missing from request"))
			return
		}

		branchID, err := uuid.Parse(branchParam)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, response.Error("invalid branch id"))
			return
		}

		if actor.BranchID != branchID {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error("access denied: no access to this branch"))
			return
		}

		c.Next()
	}
}

// verify extracts and validates the bearer token, returning the actor claims
func (a *Auth) verify(c *gin.Context) (policy.Actor, error) {
	tokenString, cookieErr := c.Cookie("access_token")
	if cookieErr != nil || tokenString == "" {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			return policy.Actor{}, errMissingToken
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return policy.Actor{}, errBadAuthFormat
		}
		tokenString = parts[1]
	}

	return ParseClaims(tokenString, a.secret)
}

// ParseClaims validates a signed token and maps its claims to an actor.
// Shared with the websocket handshake, which carries the token in a query
// parameter instead of a header.
func ParseClaims(tokenString string, secret []byte) (policy.Actor, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return policy.Actor{}, errInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return policy.Actor{}, errInvalidToken
	}

	sub, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	if sub == "" || role == "" {
		return policy.Actor{}, errInvalidToken
	}

	actor := policy.Actor{ID: sub, Role: role}
	if branchClaim, ok := claims["branch_id"].(string); ok && branchClaim != "" {
		if branchID, parseErr := uuid.Parse(branchClaim); parseErr == nil {
			actor.BranchID = branchID
		}
	}

	return actor, nil
}

var (
	errMissingToken  = authError("authorization is missing")
	errBadAuthFormat = authError("invalid authorization format, expected 'Bearer <token>'")
	errInvalidToken  = authError("invalid token")
)

type authError string

func (e authError) Error() string { return string(e) }
