package handlers

import (
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/upb/student-records/services"
	"github.com/upb/student-records/utils"
	"github.com/upb/student-records/web"
	"go.uber.org/zap"
)

// HandleServiceError turns a domain error into flash notifications and a
// redirect to redirectTo. Internal errors are logged and shown generically.
func HandleServiceError(w http.ResponseWriter, r *http.Request, err error, redirectTo string, logger *zap.Logger) {
	if err == nil {
		return
	}

	requestID := chimiddleware.GetReqID(r.Context())

	switch {
	case services.IsValidationError(err):
		// One notification per invalid field
		if messages := utils.GetValidationMessages(err); len(messages) > 0 {
			for _, msg := range messages {
				web.AddFlash(r, msg, web.CategoryError)
			}
		} else {
			web.AddFlash(r, services.UserMessage(err), web.CategoryError)
		}
		logger.Debug("invalid input",
			zap.String("request_id", requestID),
			zap.Any("fields", utils.GetValidationFields(err)))

	case services.IsNotFoundError(err),
		services.IsConflictError(err),
		services.IsForbiddenError(err),
		services.IsUnauthorizedError(err):
		web.AddFlash(r, services.UserMessage(err), web.CategoryError)
		logger.Info("request refused",
			zap.String("request_id", requestID),
			zap.String("error_type", string(services.GetErrorType(err))),
			zap.Error(err))

	case services.IsInternalError(err):
		logger.Error("internal server error",
			zap.String("request_id", requestID),
			zap.Error(err))
		web.AddFlash(r, services.UserMessage(err), web.CategoryError)

	default:
		logger.Error("unhandled error type",
			zap.String("request_id", requestID),
			zap.Error(err),
			zap.String("error_type", string(services.GetErrorType(err))))
		web.AddFlash(r, services.UserMessage(err), web.CategoryError)
	}

	web.Redirect(w, r, redirectTo)
}
