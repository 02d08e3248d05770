package city

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/korattejas/beautyden-nextjs-sub001/internal/handler"
	"github.com/korattejas/beautyden-nextjs-sub001/internal/model"
	"github.com/korattejas/beautyden-nextjs-sub001/internal/service/city"
	apperrors "github.com/korattejas/beautyden-nextjs-sub001/pkg/errors"
	"github.com/korattejas/beautyden-nextjs-sub001/pkg/httputil"
)

type Handler struct {
	svc city.CityServicer
}

func NewHandler(svc city.CityServicer) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	c := r.Group("/city")
	{
		c.GET("", h.GetState)
		c.PUT("", h.SelectCity)
		c.DELETE("", h.ClearCity)
		c.PUT("/popup", h.SetPopup)
	}
}

func (h *Handler) GetState(c *gin.Context) {
	sess, ok := handler.Session(c)
	if !ok {
		return
	}
	state, err := h.svc.Load(c.Request.Context(), sess)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, state)
}

func (h *Handler) SelectCity(c *gin.Context) {
	var req model.SelectCityRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	if req.City != nil && req.City.ID == "" {
		httputil.RespondWithError(c, apperrors.NewBadRequest("city id is required", nil))
		return
	}
	h.setCity(c, req.City)
}

func (h *Handler) ClearCity(c *gin.Context) {
	h.setCity(c, nil)
}

func (h *Handler) setCity(c *gin.Context, selected *model.City) {
	sess, ok := handler.Session(c)
	if !ok {
		return
	}
	state, err := h.svc.SetSelectedCity(c.Request.Context(), sess, selected)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, state)
}

func (h *Handler) SetPopup(c *gin.Context) {
	var req model.CityPopupRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	sess, ok := handler.Session(c)
	if !ok {
		return
	}
	state, err := h.svc.SetPopup(c.Request.Context(), sess, req.Visible)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, state)
}
