package httputil

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/korattejas/beautyden-nextjs-sub001/pkg/errors"
	"github.com/korattejas/beautyden-nextjs-sub001/pkg/validator"
)

// LoginPath is where clients send visitors whose login has expired.
const LoginPath = "/login"

// Response wraps all API responses
type Response struct {
	Status     string                 `json:"status"`
	Message    string                 `json:"message,omitempty"`
	Data       interface{}            `json:"data,omitempty"`
	Meta       interface{}            `json:"meta,omitempty"`
	Empty      *bool                  `json:"empty,omitempty"`
	Code       apperrors.ErrorCode    `json:"code,omitempty"`
	Details    []validator.FieldError `json:"details,omitempty"`
	Redirect   string                 `json:"redirect,omitempty"`
	Prompt     *Prompt                `json:"prompt,omitempty"`
	ErrorState *ErrorState            `json:"error_state,omitempty"`
	RequestID  string                 `json:"request_id,omitempty"`
}

// Prompt asks the client to collect something before retrying.
type Prompt struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ErrorState is the friendly failure block list views render.
type ErrorState struct {
	Emoji    string `json:"emoji"`
	Headline string `json:"headline"`
	Subtext  string `json:"subtext"`
	Action   string `json:"action"`
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{
		Status: "success",
		Data:   data,
	})
}

// RespondWithList sends a list, flagging empty results so clients can show
// their "nothing here" view.
func RespondWithList(c *gin.Context, items interface{}, count int, meta interface{}) {
	empty := count == 0
	c.JSON(http.StatusOK, Response{
		Status: "success",
		Data:   items,
		Meta:   meta,
		Empty:  &empty,
	})
}

// RespondWithError maps err to a status and an error body.
func RespondWithError(c *gin.Context, err error) {
	status, body := errorBody(c, err)
	c.AbortWithStatusJSON(status, body)
}

// RespondWithListError is RespondWithError plus the friendly error state for
// the named list.
func RespondWithListError(c *gin.Context, err error, resource string) {
	status, body := errorBody(c, err)
	if status >= http.StatusInternalServerError {
		body.ErrorState = ListErrorState(resource)
	}
	c.AbortWithStatusJSON(status, body)
}

// ListErrorState is what a list view shows when loading failed.
func ListErrorState(resource string) *ErrorState {
	return &ErrorState{
		Emoji:    "😔",
		Headline: "Oops! Something went wrong",
		Subtext:  "We couldn't load " + resource + " right now. Please try again in a moment.",
		Action:   "Try Again",
	}
}

func errorBody(c *gin.Context, err error) (int, Response) {
	body := Response{
		Status:    "error",
		RequestID: c.GetString("request_id"),
	}

	if details := validator.Details(err); details != nil {
		body.Code = apperrors.ErrBadRequest
		body.Message = "validation failed"
		body.Details = details
		return http.StatusBadRequest, body
	}

	if errors.Is(err, context.DeadlineExceeded) {
		body.Code = apperrors.ErrUpstreamTimeout
		body.Message = "request timed out"
		return http.StatusGatewayTimeout, body
	}

	appErr, ok := apperrors.As(err)
	if !ok {
		body.Code = apperrors.ErrInternal
		body.Message = "internal server error"
		return http.StatusInternalServerError, body
	}

	body.Code = appErr.Code
	body.Message = appErr.Message
	switch appErr.Code {
	case apperrors.ErrUnauthorized:
		body.Redirect = LoginPath
	case apperrors.ErrCityRequired:
		body.Prompt = &Prompt{Type: "select_city", Message: "Please select your city to see available services"}
	case apperrors.ErrInternal:
		body.Message = "internal server error"
	}
	return appErr.StatusCode(), body
}
