package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/korattejas/beautyden-nextjs-sub001/internal/handler"
	"github.com/korattejas/beautyden-nextjs-sub001/internal/model"
	"github.com/korattejas/beautyden-nextjs-sub001/internal/service/customer"
	"github.com/korattejas/beautyden-nextjs-sub001/pkg/httputil"
)

type Handler struct {
	svc customer.CustomerServicer
}

func NewHandler(svc customer.CustomerServicer) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/otp/send", h.SendOTP)
		auth.POST("/otp/verify", h.VerifyOTP)
		auth.GET("/session", h.Status)
		auth.GET("/profile", h.Profile)
		auth.PUT("/profile", h.UpdateProfile)
		auth.POST("/logout", h.Logout)
	}
}

func (h *Handler) SendOTP(c *gin.Context) {
	var req model.SendOTPRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	sess, ok := handler.Session(c)
	if !ok {
		return
	}

	if err := h.svc.SendOTP(c.Request.Context(), sess, req.MobileNumber); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{"otp_sent": true})
}

func (h *Handler) VerifyOTP(c *gin.Context) {
	var req model.VerifyOTPRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	sess, ok := handler.Session(c)
	if !ok {
		return
	}

	cust, err := h.svc.VerifyOTP(c.Request.Context(), sess, req.MobileNumber, req.OTP)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{
		"customer":        cust,
		"is_otp_verified": true,
	})
}

func (h *Handler) Status(c *gin.Context) {
	sess, ok := handler.Session(c)
	if !ok {
		return
	}
	status, err := h.svc.Status(c.Request.Context(), sess)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, status)
}

func (h *Handler) Profile(c *gin.Context) {
	sess, ok := handler.Session(c)
	if !ok {
		return
	}
	cust, err := h.svc.Profile(c.Request.Context(), sess)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, cust)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req model.UpdateProfileRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	sess, ok := handler.Session(c)
	if !ok {
		return
	}

	cust, err := h.svc.UpdateProfile(c.Request.Context(), sess, req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, cust)
}

func (h *Handler) Logout(c *gin.Context) {
	sess, ok := handler.Session(c)
	if !ok {
		return
	}
	if err := h.svc.Logout(c.Request.Context(), sess); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{"logged_out": true})
}
