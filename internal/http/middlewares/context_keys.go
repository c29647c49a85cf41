package middlewares

const (
	CtxRequestID = "request_id"
	CtxSessionID = "sess.id"
	CtxUserID    = "sess.userID"
	CtxEmail     = "sess.email"
)
