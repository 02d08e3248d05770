package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/korattejas/beautyden-nextjs-sub001/internal/session"
	apperrors "github.com/korattejas/beautyden-nextjs-sub001/pkg/errors"
	"github.com/korattejas/beautyden-nextjs-sub001/pkg/httputil"
	"github.com/korattejas/beautyden-nextjs-sub001/pkg/metrics"
)

const (
	HeaderSessionToken = "X-Session-Token"
	ContextSessionID   = "session_id"
)

type SessionConfig struct {
	Tokens  *session.TokenManager
	Storage session.Storage
	Locker  *session.Locker
	TTL     time.Duration
	Metrics *metrics.Metrics
}

// Session resolves the visitor session from the X-Session-Token header. A
// missing or invalid token starts a new session whose token is returned in
// the same header. Requests that may change state hold the session lock
// until the handler returns.
func Session(config SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := config.Tokens.Verify(c.GetHeader(HeaderSessionToken))
		if err != nil {
			var token string
			id, token, err = config.Tokens.Issue()
			if err != nil {
				log.Error().Err(err).Str("request_id", c.GetString(ContextRequestID)).Msg("failed to issue session")
				httputil.RespondWithError(c, apperrors.NewInternal(err))
				return
			}
			if config.Metrics != nil {
				config.Metrics.SessionsIssued.Inc()
			}
			c.Header(HeaderSessionToken, token)
		}

		if mutates(c.Request.Method) {
			unlock, err := config.Locker.Lock(c.Request.Context(), id)
			if err != nil {
				log.Warn().Err(err).Str("request_id", c.GetString(ContextRequestID)).Msg("gave up waiting for session lock")
				httputil.RespondWithError(c, err)
				return
			}
			defer unlock()
		}

		sess := session.New(id, config.Storage, config.TTL)
		c.Set(ContextSessionID, id)
		c.Request = c.Request.WithContext(session.NewContext(c.Request.Context(), sess))
		c.Next()
	}
}

func mutates(method string) bool {
	return method != http.MethodGet && method != http.MethodHead && method != http.MethodOptions
}
