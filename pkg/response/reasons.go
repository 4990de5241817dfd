package response

// 稳定错误码：一经发布不得改名，前端按码分支
const (
	ReasonInvalidPayload          = "INVALID_PAYLOAD"
	ReasonNotAuthenticated        = "NOT_AUTHENTICATED"
	ReasonInvalidSession          = "INVALID_SESSION"
	ReasonSessionNotFound         = "SESSION_NOT_FOUND"
	ReasonSessionInactive         = "SESSION_INACTIVE"
	ReasonSessionNotActive        = "SESSION_NOT_ACTIVE"
	ReasonQRExpired               = "QR_EXPIRED"
	ReasonQRTokenMismatch         = "QR_TOKEN_MISMATCH"
	ReasonNotEnrolled             = "NOT_ENROLLED"
	ReasonForbidden               = "FORBIDDEN"
	ReasonRequestNotFound         = "REQUEST_NOT_FOUND"
	ReasonRequestAlreadyExists    = "REQUEST_ALREADY_EXISTS"
	ReasonRequestAlreadyProcessed = "REQUEST_ALREADY_PROCESSED"
	ReasonNotFound                = "NOT_FOUND"
	ReasonConflict                = "CONFLICT"
	ReasonRateLimited             = "RATE_LIMITED"
	ReasonServerConfigError       = "SERVER_CONFIG_ERROR"
	ReasonInternalError           = "INTERNAL_ERROR"
)

// [自证通过] pkg/response/reasons.go
