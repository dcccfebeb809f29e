package common

// AuthorizationHeaderName is the HTTP header carrying the bearer access token.
const AuthorizationHeaderName = "Authorization"

// RefreshCookieName is the HTTP-only cookie carrying the refresh token.
const RefreshCookieName = "refresh_token"

// RefreshCookiePath limits the refresh cookie to the auth endpoints so it is
// not replayed on every API request.
const RefreshCookiePath = "/api/auth"
