package middlewares

const CtxRequestID = "request_id"

const (
	ctxUserIDKey       = "auth.userID"
	ctxSessionTokenKey = "auth.sessionToken"
)
