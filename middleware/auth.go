package middleware

import (
	"context"
	"time"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/solarhub/solarhub-api/apperrors"
	"github.com/solarhub/solarhub-api/models"
	"github.com/solarhub/solarhub-api/services"
)

const (
	userKey   = "current_user"
	claimsKey = "validated_claims"
)

// UserFinder resolves the subject of a validated token
type UserFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Authenticate validates the bearer token and attaches the referenced user to the context
func Authenticate(tokens *services.TokenService, users UserFinder, logger *zap.Logger) (gin.HandlerFunc, error) {
	jwtValidator, err := validator.New(
		tokens.KeyFunc,
		validator.HS256,
		tokens.Issuer(),
		[]string{tokens.Audience()},
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, errors.Wrap(err, "set up the jwt validator")
	}

	return func(c *gin.Context) {
		token, err := jwtmiddleware.AuthHeaderTokenExtractor(c.Request)
		if err != nil || token == "" {
			AbortWithError(c, apperrors.Unauthenticated("Not authorized, no token"))
			return
		}

		validated, err := jwtValidator.ValidateToken(c.Request.Context(), token)
		if err != nil {
			Logger(c, logger).Debug("Encountered error while validating JWT", zap.Error(err))
			AbortWithError(c, apperrors.Unauthenticated("Not authorized, token failed"))
			return
		}
		claims, ok := validated.(*validator.ValidatedClaims)
		if !ok {
			AbortWithError(c, apperrors.Unauthenticated("Not authorized, token failed"))
			return
		}

		userID, err := uuid.Parse(claims.RegisteredClaims.Subject)
		if err != nil {
			AbortWithError(c, apperrors.Unauthenticated("Not authorized, token failed"))
			return
		}

		user, err := users.FindByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				AbortWithError(c, apperrors.Unauthenticated("Not authorized, user no longer exists"))
				return
			}
			AbortWithError(c, err)
			return
		}

		c.Set(claimsKey, claims)
		c.Set(userKey, user)
		c.Next()
	}, nil
}

// RequireAdmin rejects callers whose account is not an administrator. It must run after Authenticate.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := CurrentUser(c)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if !user.IsAdmin {
			AbortWithError(c, apperrors.Forbidden("Not authorized as an admin"))
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user
func CurrentUser(c *gin.Context) (*models.User, error) {
	value, exists := c.Get(userKey)
	if !exists {
		return nil, apperrors.Unauthenticated("Not authorized")
	}
	user, ok := value.(*models.User)
	if !ok || user == nil {
		return nil, apperrors.Unauthenticated("Not authorized")
	}
	return user, nil
}

// SetCurrentUser attaches user to the context
func SetCurrentUser(c *gin.Context, user *models.User) {
	c.Set(userKey, user)
}

// GetClaims returns the validated token claims
func GetClaims(c *gin.Context) (*validator.ValidatedClaims, error) {
	value, exists := c.Get(claimsKey)
	if !exists {
		return nil, apperrors.Unauthenticated("Claims not found in context")
	}
	claims, ok := value.(*validator.ValidatedClaims)
	if !ok {
		return nil, apperrors.Unauthenticated("Claims are not in the expected format")
	}
	return claims, nil
}
