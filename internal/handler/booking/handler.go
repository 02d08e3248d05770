package booking

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/korattejas/beautyden-nextjs-sub001/internal/handler"
	"github.com/korattejas/beautyden-nextjs-sub001/internal/model"
	"github.com/korattejas/beautyden-nextjs-sub001/internal/service/booking"
	"github.com/korattejas/beautyden-nextjs-sub001/internal/session"
	"github.com/korattejas/beautyden-nextjs-sub001/pkg/httputil"
)

type Handler struct {
	svc booking.BookingServicer
}

func NewHandler(svc booking.BookingServicer) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	b := r.Group("/booking")
	{
		b.GET("", h.GetState)
		b.POST("/next", h.Next)
		b.POST("/prev", h.Prev)
		b.PATCH("/form", h.UpdateForm)
		b.PUT("/services", h.SelectServices)
		b.POST("/advance", h.AdvanceFromCart)
		b.POST("/reset", h.Reset)
		b.POST("/confirm", h.Confirm)
	}
}

type viewFunc func(ctx context.Context, sess *session.Session) (*booking.View, error)

func (h *Handler) respond(c *gin.Context, fn viewFunc) {
	sess, ok := handler.Session(c)
	if !ok {
		return
	}
	view, err := fn(c.Request.Context(), sess)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, view)
}

func (h *Handler) GetState(c *gin.Context) { h.respond(c, h.svc.State) }

func (h *Handler) Next(c *gin.Context) { h.respond(c, h.svc.Next) }

func (h *Handler) Prev(c *gin.Context) { h.respond(c, h.svc.Prev) }

func (h *Handler) AdvanceFromCart(c *gin.Context) { h.respond(c, h.svc.AdvanceFromCart) }

func (h *Handler) Reset(c *gin.Context) { h.respond(c, h.svc.Reset) }

func (h *Handler) UpdateForm(c *gin.Context) {
	var patch model.BookingFormPatch
	if !handler.BindJSON(c, &patch) {
		return
	}
	h.respond(c, func(ctx context.Context, sess *session.Session) (*booking.View, error) {
		return h.svc.Update(ctx, sess, patch)
	})
}

func (h *Handler) SelectServices(c *gin.Context) {
	var req model.SelectServicesRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	h.respond(c, func(ctx context.Context, sess *session.Session) (*booking.View, error) {
		return h.svc.SelectServices(ctx, sess, req.Services)
	})
}

func (h *Handler) Confirm(c *gin.Context) {
	sess, ok := handler.Session(c)
	if !ok {
		return
	}
	conf, err := h.svc.Confirm(c.Request.Context(), sess)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, conf)
}
