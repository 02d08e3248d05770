package preference

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/korattejas/beautyden-nextjs-sub001/internal/handler"
	"github.com/korattejas/beautyden-nextjs-sub001/internal/model"
	"github.com/korattejas/beautyden-nextjs-sub001/internal/service/preference"
	"github.com/korattejas/beautyden-nextjs-sub001/pkg/httputil"
)

type Handler struct {
	svc preference.PreferenceServicer
}

func NewHandler(svc preference.PreferenceServicer) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	p := r.Group("/preferences")
	{
		p.GET("", h.Get)
		p.PUT("/cookie-consent", h.SetCookieConsent)
		p.POST("/seasonal-banner", h.MarkSeasonalBanner)
	}
}

func (h *Handler) Get(c *gin.Context) {
	sess, ok := handler.Session(c)
	if !ok {
		return
	}
	prefs, err := h.svc.Get(c.Request.Context(), sess)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, prefs)
}

func (h *Handler) SetCookieConsent(c *gin.Context) {
	var req model.CookieConsentRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	sess, ok := handler.Session(c)
	if !ok {
		return
	}
	prefs, err := h.svc.SetCookieConsent(c.Request.Context(), sess, req.Choice)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, prefs)
}

// MarkSeasonalBanner records that the banner was shown. show is true only the
// first time in a session.
func (h *Handler) MarkSeasonalBanner(c *gin.Context) {
	sess, ok := handler.Session(c)
	if !ok {
		return
	}
	already, err := h.svc.MarkSeasonalBannerShown(c.Request.Context(), sess)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{"show": !already})
}
