package idkit

import (
	"fmt"

	"github.com/go-errors/errors"
)

// ErrorCode is the wire code of an AppError, as it appears in the error_code
// field of a decrypted response.
type ErrorCode string

// AppError is an application-level failure reason. The set of AppErrors is closed:
// every value is one of the package-level Error* variables below.
type AppError struct {
	Code    ErrorCode `json:"error_code"`
	Message string    `json:"-"`
}

var (
	// Originating from the bridge or the World App.
	ErrorConnectionFailed        = AppError{Code: "connection_failed", Message: "Failed to connect to the World App. Please create a new session and try again."}
	ErrorVerificationRejected    = AppError{Code: "verification_rejected", Message: "The user rejected the verification request in the World App."}
	ErrorMaxVerificationsReached = AppError{Code: "max_verifications_reached", Message: "This credential has been used the maximum number of times for this action."}
	ErrorCredentialUnavailable   = AppError{Code: "credential_unavailable", Message: "The user does not have the credential required for this action."}
	ErrorMalformedRequest        = AppError{Code: "malformed_request", Message: "There was a problem with this request. Please try again or contact the app owner."}
	ErrorInvalidNetwork          = AppError{Code: "invalid_network", Message: "Invalid network. If you are the owner of this app, visit docs.worldcoin.org/test for details."}
	ErrorInclusionProofFailed    = AppError{Code: "inclusion_proof_failed", Message: "There was an issue fetching the user's credential. Please try again."}
	ErrorInclusionProofPending   = AppError{Code: "inclusion_proof_pending", Message: "The user's identity is still being registered. Please wait a few minutes and try again."}
	ErrorFailedByHostApp         = AppError{Code: "failed_by_host_app", Message: "Verification failed by the app. Please contact the app owner for details."}

	// Raised locally when the bridge violates its contract.
	ErrorUnexpectedResponse = AppError{Code: "unexpected_response", Message: "Unexpected response from the user's World App. Please try again."}
	ErrorGenericError       = AppError{Code: "generic_error", Message: "Something unexpected went wrong. Please try again."}
)

var appErrors = map[ErrorCode]AppError{}

func init() {
	for _, e := range []AppError{
		ErrorConnectionFailed,
		ErrorVerificationRejected,
		ErrorMaxVerificationsReached,
		ErrorCredentialUnavailable,
		ErrorMalformedRequest,
		ErrorInvalidNetwork,
		ErrorInclusionProofFailed,
		ErrorInclusionProofPending,
		ErrorUnexpectedResponse,
		ErrorFailedByHostApp,
		ErrorGenericError,
	} {
		appErrors[e.Code] = e
	}
}

// ParseErrorCode returns the AppError having the specified wire code.
func ParseErrorCode(code string) (AppError, error) {
	e, ok := appErrors[ErrorCode(code)]
	if !ok {
		return AppError{}, errors.Errorf("%w: %q", ErrUnknownErrorCode, code)
	}
	return e, nil
}

func (e AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e AppError) Is(target error) bool {
	switch t := target.(type) {
	case AppError:
		return t.Code == e.Code
	case *AppError:
		return t != nil && t.Code == e.Code
	}
	return false
}

// SessionError is a locally raised failure. It carries the AppError reported to
// the consumer of a session alongside the lower-level cause.
type SessionError struct {
	AppError
	Err          error
	RemoteStatus int
}

func (e *SessionError) Error() string {
	var s string
	if e.RemoteStatus != 0 {
		s = fmt.Sprintf(" (remote status %d)", e.RemoteStatus)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s%s: %s", e.Code, s, e.Err.Error())
	}
	return string(e.Code) + s
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

func (e *SessionError) Is(target error) bool {
	return e.AppError.Is(target)
}

func newSessionError(appErr AppError, err error) *SessionError {
	return &SessionError{AppError: appErr, Err: err}
}
