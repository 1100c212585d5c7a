package errors

import "net/http"

// ErrorDetail is the machine-readable part of an API error.
type ErrorDetail struct {
	Message string                 `json:"message"`
	Hint    string                 `json:"hint,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ErrorResponse is the JSON envelope every failed request returns.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// NewErrorResponse converts any error into the API error envelope.
func NewErrorResponse(err error) *ErrorResponse {
	if err == nil {
		return nil
	}
	return &ErrorResponse{
		Success: false,
		Error: ErrorDetail{
			Message: err.Error(),
			Hint:    Hint(err),
			Details: ReportableDetails(err),
		},
	}
}

// HTTPStatusFromErr maps an error's sentinel mark to an HTTP status code.
func HTTPStatusFromErr(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsValidation(err):
		return http.StatusBadRequest
	case IsNotFound(err):
		return http.StatusNotFound
	case IsAlreadyExists(err):
		return http.StatusConflict
	case IsAlreadyUsedTrial(err):
		return http.StatusConflict
	case IsNoActiveSubscription(err):
		return http.StatusPaymentRequired
	case IsInvalidOperation(err):
		return http.StatusBadRequest
	case Is(err, ErrPermissionDenied):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
