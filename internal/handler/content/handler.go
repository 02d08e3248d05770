package content

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/korattejas/beautyden-nextjs-sub001/internal/handler"
	"github.com/korattejas/beautyden-nextjs-sub001/internal/model"
	"github.com/korattejas/beautyden-nextjs-sub001/internal/service/catalog"
	"github.com/korattejas/beautyden-nextjs-sub001/pkg/httputil"
)

type Handler struct {
	svc catalog.CatalogServicer
}

func NewHandler(svc catalog.CatalogServicer) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/settings", h.GetSettings)
	r.GET("/cities", h.ListCities)
	r.GET("/categories", h.ListCategories)
	r.GET("/services", h.ListServices)
	r.GET("/services/:id", h.GetService)
	r.GET("/blogs", h.ListBlogs)
	r.GET("/blogs/:slug", h.GetBlog)
	r.GET("/faqs", h.ListFAQs)
	r.GET("/policies/:type", h.GetPolicy)
	r.GET("/reviews", h.ListReviews)
	r.GET("/team", h.ListTeam)
	r.GET("/product-brands", h.ListProductBrands)
	r.POST("/hiring", h.SubmitHiring)
	r.POST("/contact", h.SubmitContact)
}

func (h *Handler) GetSettings(c *gin.Context) {
	settings, err := h.svc.Settings(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, settings)
}

func (h *Handler) ListCities(c *gin.Context) {
	cities, err := h.svc.Cities(c.Request.Context(), c.Query("popular") == "true")
	if err != nil {
		httputil.RespondWithListError(c, err, "cities")
		return
	}
	httputil.RespondWithList(c, cities, len(cities), nil)
}

func (h *Handler) ListCategories(c *gin.Context) {
	sess, ok := handler.Session(c)
	if !ok {
		return
	}
	categories, err := h.svc.Categories(c.Request.Context(), sess)
	if err != nil {
		httputil.RespondWithListError(c, err, "categories")
		return
	}
	httputil.RespondWithList(c, categories, len(categories), nil)
}

func (h *Handler) ListServices(c *gin.Context) {
	var f model.ServiceFilter
	if !handler.BindQuery(c, &f) {
		return
	}
	sess, ok := handler.Session(c)
	if !ok {
		return
	}

	page, err := h.svc.Services(c.Request.Context(), sess, f)
	if err != nil {
		httputil.RespondWithListError(c, err, "services")
		return
	}
	httputil.RespondWithList(c, page.Items, len(page.Items), page.Meta)
}

func (h *Handler) GetService(c *gin.Context) {
	svc, err := h.svc.Service(c.Request.Context(), model.ID(c.Param("id")))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, svc)
}

func (h *Handler) ListBlogs(c *gin.Context) {
	var f model.BlogFilter
	if !handler.BindQuery(c, &f) {
		return
	}
	sess, ok := handler.Session(c)
	if !ok {
		return
	}

	page, err := h.svc.Blogs(c.Request.Context(), sess, f)
	if err != nil {
		httputil.RespondWithListError(c, err, "blogs")
		return
	}
	httputil.RespondWithList(c, page.Items, len(page.Items), page.Meta)
}

func (h *Handler) GetBlog(c *gin.Context) {
	blog, err := h.svc.Blog(c.Request.Context(), c.Param("slug"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, blog)
}

func (h *Handler) ListFAQs(c *gin.Context) {
	faqs, err := h.svc.FAQs(c.Request.Context())
	if err != nil {
		httputil.RespondWithListError(c, err, "FAQs")
		return
	}
	httputil.RespondWithList(c, faqs, len(faqs), nil)
}

func (h *Handler) GetPolicy(c *gin.Context) {
	policy, err := h.svc.Policy(c.Request.Context(), c.Param("type"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, policy)
}

func (h *Handler) ListReviews(c *gin.Context) {
	var f model.ReviewFilter
	if !handler.BindQuery(c, &f) {
		return
	}
	page, err := h.svc.Reviews(c.Request.Context(), f)
	if err != nil {
		httputil.RespondWithListError(c, err, "reviews")
		return
	}
	httputil.RespondWithList(c, page.Items, len(page.Items), page.Meta)
}

func (h *Handler) ListTeam(c *gin.Context) {
	members, err := h.svc.TeamMembers(c.Request.Context())
	if err != nil {
		httputil.RespondWithListError(c, err, "our team")
		return
	}
	httputil.RespondWithList(c, members, len(members), nil)
}

func (h *Handler) ListProductBrands(c *gin.Context) {
	brands, err := h.svc.ProductBrands(c.Request.Context())
	if err != nil {
		httputil.RespondWithListError(c, err, "product brands")
		return
	}
	httputil.RespondWithList(c, brands, len(brands), nil)
}

func (h *Handler) SubmitHiring(c *gin.Context) {
	var req model.HiringApplication
	if !handler.BindJSON(c, &req) {
		return
	}
	if err := h.svc.SubmitHiring(c.Request.Context(), req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, gin.H{"submitted": true})
}

func (h *Handler) SubmitContact(c *gin.Context) {
	var req model.ContactRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	if err := h.svc.SubmitContact(c.Request.Context(), req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, gin.H{"submitted": true})
}
