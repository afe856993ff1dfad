package common

// Cookie names used to deliver tokens to browsers. The same names are read
// back by the refresh endpoint and the auth middleware.
const (
	AccessTokenCookieName  = "accessToken"
	RefreshTokenCookieName = "refreshToken"
)

// AuthorizationHeaderName carries "Bearer <access token>" for non-browser
// clients.
const AuthorizationHeaderName = "Authorization"

// Messages the auth middleware answers with. Clients use them to tell a
// rejected access token apart from other 401s.
const (
	MsgUnauthorizedRequest = "unauthorized request"
	MsgInvalidAccessToken  = "invalid access token"
)
