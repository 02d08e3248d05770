package customer

import (
	"context"

	"github.com/korattejas/beautyden-nextjs-sub001/internal/session"
)

// authKeys are removed together whenever the login ends.
var authKeys = []string{session.KeyAuthToken, session.KeyMobileNumber, session.KeyIsOTPVerified}

// sessionCredentials reads the bearer token from the visitor session.
type sessionCredentials struct {
	sess *session.Session
}

func (c sessionCredentials) Token(ctx context.Context) (string, error) {
	return c.sess.String(ctx, session.KeyAuthToken)
}

func (c sessionCredentials) Purge(ctx context.Context) error {
	return c.sess.Remove(ctx, authKeys...)
}
