package cart

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/korattejas/beautyden-nextjs-sub001/internal/handler"
	"github.com/korattejas/beautyden-nextjs-sub001/internal/model"
	"github.com/korattejas/beautyden-nextjs-sub001/internal/service/cart"
	apperrors "github.com/korattejas/beautyden-nextjs-sub001/pkg/errors"
	"github.com/korattejas/beautyden-nextjs-sub001/pkg/httputil"
)

type addItemRequest struct {
	Service model.BookingService `json:"service"`
}

type Handler struct {
	svc cart.CartServicer
}

func NewHandler(svc cart.CartServicer) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	items := r.Group("/cart")
	{
		items.GET("", h.GetCart)
		items.POST("/items", h.AddItem)
		items.DELETE("/items/:id", h.RemoveItem)
		items.DELETE("", h.ClearCart)
	}
}

func (h *Handler) GetCart(c *gin.Context) {
	sess, ok := handler.Session(c)
	if !ok {
		return
	}
	summary, err := h.svc.Summary(c.Request.Context(), sess)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, summary)
}

func (h *Handler) AddItem(c *gin.Context) {
	var req addItemRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	if req.Service.ID == "" {
		httputil.RespondWithError(c, apperrors.NewBadRequest("service id is required", nil))
		return
	}
	sess, ok := handler.Session(c)
	if !ok {
		return
	}

	summary, err := h.svc.AddItem(c.Request.Context(), sess, req.Service)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, summary)
}

func (h *Handler) RemoveItem(c *gin.Context) {
	sess, ok := handler.Session(c)
	if !ok {
		return
	}
	summary, err := h.svc.RemoveItem(c.Request.Context(), sess, model.ID(c.Param("id")))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, summary)
}

func (h *Handler) ClearCart(c *gin.Context) {
	sess, ok := handler.Session(c)
	if !ok {
		return
	}
	if err := h.svc.Clear(c.Request.Context(), sess); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, model.CartSummary{Items: []model.CartItem{}})
}
