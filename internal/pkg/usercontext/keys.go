package usercontext

// Shared Locals/session keys used across controllers and middlewares
const (
	KeyUserID        = "user_id"
	KeyUsername      = "username"
	KeyPlan          = "user_plan"
	KeyLoginNext     = "login_next"
	KeyFromProtected = "from_protected"
	localsKey        = "USER_CONTEXT"
)
