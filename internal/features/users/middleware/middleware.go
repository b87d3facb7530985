package users_middleware

import (
	users_enums "crmm/internal/features/users/enums"
	users_models "crmm/internal/features/users/models"
	users_services "crmm/internal/features/users/services"
	"crmm/internal/metrics"
	errors_utils "crmm/internal/util/errors"
	"crmm/internal/util/logger"
	"crmm/internal/util/rate_limit"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates JWT token and adds user to context
func AuthMiddleware(userService *users_services.UserService) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := ctx.GetHeader("Authorization")
		if token == "" {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization token required"})
			ctx.Abort()
			return
		}

		if len(token) > 7 && token[:7] == "Bearer " {
			token = token[7:]
		}

		user, err := userService.GetUserFromToken(token)
		if err != nil {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			ctx.Abort()
			return
		}

		ctx.Set("user", user)
		ctx.Next()
	}
}

func RequireRole(requiredRole users_enums.UserRole) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, ok := GetUserFromContext(ctx)
		if !ok {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			ctx.Abort()
			return
		}

		if user.Role != requiredRole {
			ctx.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			ctx.Abort()
			return
		}

		ctx.Next()
	}
}

// InvalidAttemptsGuard rejects callers that collected too many invalid
// attempts (failed permission checks, bogus invite accepts) within the
// counter window, and counts the attempts flagged by handlers.
func InvalidAttemptsGuard(counter *rate_limit.InvalidAttemptsCounter) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		subject := requestSubject(ctx)

		isBlocked, err := counter.IsBlocked(subject)
		if err != nil {
			logger.GetLogger().Error("failed to check invalid attempts", "error", err)
		}

		if isBlocked {
			metrics.InvalidAttemptsRejectionsTotal.Inc()
			ctx.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many invalid requests. Please try again later."})
			ctx.Abort()
			return
		}

		ctx.Next()

		if errors_utils.IsInvalidAttempt(ctx) {
			if _, err := counter.AddAttempt(subject); err != nil {
				logger.GetLogger().Error("failed to add invalid attempt", "error", err)
			}
		}
	}
}

// ModifyRequestLimiter throttles mutating requests per user with the shared
// Valkey token bucket. Reads pass through untouched.
func ModifyRequestLimiter(limiter *rate_limit.RateLimiter, rps, burst int) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.Request.Method == http.MethodGet || ctx.Request.Method == http.MethodHead {
			ctx.Next()
			return
		}

		result, err := limiter.CheckRateLimit(requestSubject(ctx), rps, burst)
		if err != nil {
			logger.GetLogger().Error("failed to check rate limit", "error", err)
			ctx.Next()
			return
		}

		if !result.Allowed {
			ctx.Header("Retry-After", strconv.Itoa(result.RetryAfterSec))
			ctx.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded. Please try again later."})
			ctx.Abort()
			return
		}

		ctx.Next()
	}
}

// GetUserFromContext helper function to extract user from gin context
func GetUserFromContext(ctx *gin.Context) (*users_models.User, bool) {
	userInterface, exists := ctx.Get("user")
	if !exists {
		return nil, false
	}

	user, ok := userInterface.(*users_models.User)

	return user, ok
}

func requestSubject(ctx *gin.Context) string {
	if user, ok := GetUserFromContext(ctx); ok {
		return "user:" + user.ID.String()
	}

	return "ip:" + ctx.ClientIP()
}
