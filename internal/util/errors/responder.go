package errors_utils

import (
	"errors"
	"log/slog"

	"crmm/internal/metrics"

	"github.com/gin-gonic/gin"
)

const invalidAttemptContextKey = "invalidAttempt"

// RespondWithError writes err as {"error": message}. Server errors are logged
// and replaced with a generic message. Unauthorized results are flagged on the
// context, together with errors built by InvalidAttempt, so the invalid
// attempts guard can count them.
func RespondWithError(ctx *gin.Context, log *slog.Logger, err error) {
	kind := KindOf(err)

	if kind == KindServer {
		log.Error("request failed", "path", ctx.FullPath(), "error", err)
		ctx.JSON(kind.HTTPStatus(), gin.H{"error": "Internal server error"})
		return
	}

	if IsInvalidAttemptError(err) {
		MarkInvalidAttempt(ctx)
	}

	if kind == KindUnauthorized {
		metrics.AuthorizationFailuresTotal.WithLabelValues(ctx.FullPath()).Inc()
	}

	var appErr *AppError
	errors.As(err, &appErr)

	ctx.JSON(kind.HTTPStatus(), gin.H{"error": appErr.Message})
}

// MarkInvalidAttempt flags the request as an invalid attempt without changing
// its status, e.g. accepting an invite that does not exist.
func MarkInvalidAttempt(ctx *gin.Context) {
	ctx.Set(invalidAttemptContextKey, true)
}

func IsInvalidAttempt(ctx *gin.Context) bool {
	return ctx.GetBool(invalidAttemptContextKey)
}
