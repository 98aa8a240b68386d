package server

// API route paths.
const (
	RouteLogin        = "/api/v1/auth/login"
	RouteRegister     = "/api/v1/auth/register"
	RouteRefreshToken = "/api/v1/auth/refresh_token"
	RouteLogout       = "/api/v1/auth/logout"
	RouteSession      = "/api/v1/auth/session"
	RouteHealth       = "/health"
)

// Cookie names for the token pair.
const (
	CookieAccessToken  = "access_token"
	CookieRefreshToken = "refresh_token"
)
