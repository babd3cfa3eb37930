package provisioning

import "errors"

// Failure kinds of the login callback. Callers match them with errors.Is.
var (
	ErrMissingAuthCode        = errors.New("missing auth code")
	ErrAuthExchangeFailed     = errors.New("auth code exchange failed")
	ErrMissingEmail           = errors.New("identity has no email")
	ErrInvalidProfile         = errors.New("identity profile cannot be stored")
	ErrUserLookupFailed       = errors.New("user lookup failed")
	ErrCustomerCreationFailed = errors.New("billing customer creation failed")
	ErrUserInsertFailed       = errors.New("user insert failed")
	ErrDuplicateUser          = errors.New("duplicate user")
)
