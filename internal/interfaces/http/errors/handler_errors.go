package errors

import (
	"errors"
	"net/http"

	"github.com/ipede/authcode-exchange-demo/internal/domain"
	apperrors "github.com/ipede/authcode-exchange-demo/internal/domain/errors"
)

func getStatus(appErr *apperrors.AppError) int {
	switch appErr.Code {
	case apperrors.UpstreamRejected:
		// the provider's own status is surfaced; a 2xx with an unusable body is not a success
		if appErr.UpstreamStatus >= http.StatusBadRequest {
			return appErr.UpstreamStatus
		}
		return http.StatusBadGateway
	case apperrors.NetworkFailure:
		return http.StatusBadGateway
	case apperrors.MalformedToken, apperrors.ValidationMismatch:
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

// RespondWithAppError maps err onto an HTTP error response.
// Upstream rejections carry the provider's status code and raw body.
func RespondWithAppError(w http.ResponseWriter, err error) {
	var validationErrs ValidationErrors
	switch {
	case errors.Is(err, domain.ErrMissingCode):
		validationErrs.Add("code", domain.ErrMissingCode.Error())
	case errors.Is(err, domain.ErrMissingSubjectToken):
		validationErrs.Add("subject_token", domain.ErrMissingSubjectToken.Error())
	}
	if validationErrs.HasErrors() {
		RespondWithError(w, ErrCodeValidation, "Validation failed", validationErrs.ToErrorDetails(), http.StatusBadRequest)
		return
	}

	appErr, ok := apperrors.As(err)
	if !ok {
		RespondWithError(w, ErrCodeInternal, domain.ErrInternal.Error(), nil, http.StatusInternalServerError)
		return
	}

	var details []ErrorDetail
	if appErr.Err != nil {
		details = []ErrorDetail{{Field: "cause", Message: appErr.Err.Error()}}
	}

	writeError(w, getStatus(appErr), ErrorResponse{
		Code:             appErr.Code,
		Message:          appErr.Message,
		Details:          details,
		UpstreamStatus:   appErr.UpstreamStatus,
		UpstreamResponse: appErr.UpstreamBody,
	})
}
