package i18n

// Common errors
var (
	ErrNotFound       = NewErrorWithCode("ErrorResourceNotFound", ErrorNotFound)
	ErrUnauthorized   = NewErrorWithCode("ErrorUnauthorized", ErrorUnauthorized)
	ErrForbidden      = NewErrorWithCode("ErrorForbidden", ErrorForbidden)
	ErrBadRequest     = NewErrorWithCode("ErrorBadRequest", ErrorBadRequest)
	ErrInternalServer = NewErrorWithCode("ErrorInternalServer", ErrorInternalServer)
)

// Tenant related errors
var (
	ErrorTenantNotFound       = NewErrorWithCode("ErrorTenantNotFound", ErrorNotFound)
	ErrorTenantRequiredFields = NewErrorWithCode("ErrorTenantRequiredFields", ErrorBadRequest)
	ErrorTenantSlugExists     = NewErrorWithCode("ErrorTenantSlugExists", ErrorConflict)
	ErrorTenantNameExists     = NewErrorWithCode("ErrorTenantNameExists", ErrorConflict)
	ErrorTenantSuspended      = NewErrorWithCode("ErrorTenantSuspended", ErrorForbidden)
	ErrorInvalidVisibility    = NewErrorWithCode("ErrorInvalidVisibility", ErrorBadRequest)
)

// User related errors
var (
	ErrorUserNotFound          = NewErrorWithCode("ErrorUserNotFound", ErrorNotFound)
	ErrorInvalidCredentials    = NewErrorWithCode("ErrorInvalidCredentials", ErrorUnauthorized)
	ErrorUserDisabled          = NewErrorWithCode("ErrorUserDisabled", ErrorForbidden)
	ErrorEmailPasswordRequired = NewErrorWithCode("ErrorEmailPasswordRequired", ErrorBadRequest)
	ErrorInvalidOldPassword    = NewErrorWithCode("ErrorInvalidOldPassword", ErrorForbidden)
	ErrorEmailExists           = NewErrorWithCode("ErrorEmailExists", ErrorConflict)
	ErrorInvalidRole           = NewErrorWithCode("ErrorInvalidRole", ErrorBadRequest)
)

// Agent related errors
var (
	ErrorAgentNotFound = NewErrorWithCode("ErrorAgentNotFound", ErrorNotFound)
	ErrorAgentInactive = NewErrorWithCode("ErrorAgentInactive", ErrorBadRequest)
)

// Pipeline related errors
var (
	ErrorLeadNotFound      = NewErrorWithCode("ErrorLeadNotFound", ErrorNotFound)
	ErrorStageNotFound     = NewErrorWithCode("ErrorStageNotFound", ErrorNotFound)
	ErrorStageNameRequired = NewErrorWithCode("ErrorStageNameRequired", ErrorBadRequest)
	ErrorStageBatchFailed  = NewErrorWithCode("ErrorStageBatchFailed", ErrorConflict)
	ErrorLeadRequiredField = NewErrorWithCode("ErrorLeadRequiredField", ErrorBadRequest)
)

// Intake related errors
var (
	ErrorIntakeFormNotFound = NewErrorWithCode("ErrorIntakeFormNotFound", ErrorNotFound)
	ErrorIntakeThrottled    = NewErrorWithCode("ErrorIntakeThrottled", ErrorTooManyRequests)
)

// Success messages
const (
	SuccessLogin           = "SuccessLogin"
	SuccessPasswordChanged = "SuccessPasswordChanged"
	SuccessTenantCreated   = "SuccessTenantCreated"
	SuccessTenantUpdated   = "SuccessTenantUpdated"
	SuccessUserCreated     = "SuccessUserCreated"
	SuccessRoleChanged     = "SuccessRoleChanged"
	SuccessAgentUpdated    = "SuccessAgentUpdated"
	SuccessStagesSaved     = "SuccessStagesSaved"
	SuccessLeadCreated     = "SuccessLeadCreated"
	SuccessLeadMoved       = "SuccessLeadMoved"
	SuccessLeadAssigned    = "SuccessLeadAssigned"
	SuccessLeadScored      = "SuccessLeadScored"
	SuccessFormReceived    = "SuccessFormReceived"
)
