package beautician

import (
	"github.com/gin-gonic/gin"

	"github.com/korattejas/beautyden-nextjs-sub001/internal/handler"
	"github.com/korattejas/beautyden-nextjs-sub001/internal/model"
	"github.com/korattejas/beautyden-nextjs-sub001/internal/service/beautician"
	"github.com/korattejas/beautyden-nextjs-sub001/pkg/httputil"
)

type Handler struct {
	svc beautician.BeauticianServicer
}

func NewHandler(svc beautician.BeauticianServicer) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/beauticians", h.Search)
}

// Search finds beauticians near lat/lng or a typed Surat neighborhood. With
// neither it lists every beautician.
func (h *Handler) Search(c *gin.Context) {
	var q model.BeauticianQuery
	if !handler.BindQuery(c, &q) {
		return
	}

	if q.Lat == nil && q.Lng == nil && q.Location == "" {
		list, err := h.svc.List(c.Request.Context())
		if err != nil {
			httputil.RespondWithListError(c, err, "beauticians")
			return
		}
		httputil.RespondWithList(c, list, len(list), nil)
		return
	}

	res, err := h.svc.Search(c.Request.Context(), q)
	if err != nil {
		httputil.RespondWithListError(c, err, "beauticians")
		return
	}
	httputil.RespondWithList(c, res, len(res.Beauticians), nil)
}
