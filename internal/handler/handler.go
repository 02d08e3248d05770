// Package handler holds helpers shared by the HTTP handlers in its subpackages.
package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/korattejas/beautyden-nextjs-sub001/internal/session"
	apperrors "github.com/korattejas/beautyden-nextjs-sub001/pkg/errors"
	"github.com/korattejas/beautyden-nextjs-sub001/pkg/httputil"
)

// Session returns the visitor session, rendering an error when the session
// middleware did not run.
func Session(c *gin.Context) (*session.Session, bool) {
	sess, ok := session.FromContext(c.Request.Context())
	if !ok {
		httputil.RespondWithError(c, apperrors.NewInternal(errors.New("request has no session")))
	}
	return sess, ok
}

// BindJSON decodes and validates the body into v, rendering a 400 on failure.
func BindJSON(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest("invalid request body", err))
		return false
	}
	return true
}

// BindQuery decodes and validates the query string into v.
func BindQuery(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindQuery(v); err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest("invalid query parameters", err))
		return false
	}
	return true
}
