package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"monetization-backend/internal/domains/ambassador/model"
	"monetization-backend/internal/domains/ambassador/service"
	"monetization-backend/internal/shared/middleware"
	"monetization-backend/internal/shared/response"
)

type Handler struct {
	service service.ServiceInterface
}

func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{service: service}
}

// ===================================
// AMBASSADOR
// ===================================

// SubmitPayment - Stage A
// @Router /v1/ambassador/payment [post]
func (h *Handler) SubmitPayment(c *gin.Context) {
	var req model.SubmitPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Dữ liệu request không hợp lệ")
		return
	}

	app, err := h.service.SubmitPayment(c.Request.Context(), middleware.ActorFrom(c), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Payment submitted", app)
}

// SubmitSocial - Stage B, handle được kiểm tra tồn tại trước khi lưu
// @Router /v1/ambassador/social [post]
func (h *Handler) SubmitSocial(c *gin.Context) {
	var req model.SubmitSocialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Dữ liệu request không hợp lệ")
		return
	}

	res, err := h.service.SubmitSocialHandle(c.Request.Context(), middleware.ActorFrom(c), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Social handle submitted", res)
}

// SubmitIdentity - Stage C
// @Router /v1/ambassador/identity [post]
func (h *Handler) SubmitIdentity(c *gin.Context) {
	var req model.SubmitIdentityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Dữ liệu request không hợp lệ")
		return
	}

	app, err := h.service.SubmitIdentity(c.Request.Context(), middleware.ActorFrom(c), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Identity submitted", app)
}

// Me trả về dashboard: số dư, người được mời, lịch sử
// @Router /v1/ambassador/me [get]
func (h *Handler) Me(c *gin.Context) {
	dash, err := h.service.Dashboard(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "", dash)
}

// PromoCode
// @Router /v1/ambassador/promo-code [get]
func (h *Handler) PromoCode(c *gin.Context) {
	view, err := h.service.PromoCode(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "", view)
}

// ===================================
// ADMIN
// ===================================

// Get
// @Router /v1/admin/ambassadors/:userId [get]
func (h *Handler) Get(c *gin.Context) {
	app, err := h.service.Get(c.Request.Context(), middleware.ActorFrom(c), c.Param("userId"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "", app)
}

// ListPending
// @Router /v1/admin/ambassadors/pending [get]
func (h *Handler) ListPending(c *gin.Context) {
	list, err := h.service.ListPending(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "", list)
}

// ApprovePayment
// @Router /v1/admin/ambassadors/:userId/payment/approve [post]
func (h *Handler) ApprovePayment(c *gin.Context) {
	app, err := h.service.ApprovePayment(c.Request.Context(), middleware.ActorFrom(c), c.Param("userId"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Payment approved", app)
}

// ApproveSocialPlatform
// @Router /v1/admin/ambassadors/:userId/social/:platform/approve [post]
func (h *Handler) ApproveSocialPlatform(c *gin.Context) {
	app, err := h.service.ApproveSocialPlatform(c.Request.Context(), middleware.ActorFrom(c), c.Param("userId"), c.Param("platform"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Platform verified", app)
}

// RejectSocialPlatform ghi thêm một strike
// @Router /v1/admin/ambassadors/:userId/social/:platform/reject [post]
func (h *Handler) RejectSocialPlatform(c *gin.Context) {
	app, err := h.service.RejectSocialPlatform(c.Request.Context(), middleware.ActorFrom(c), c.Param("userId"), c.Param("platform"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Platform rejected", app)
}

// ApproveSocial
// @Router /v1/admin/ambassadors/:userId/social/approve [post]
func (h *Handler) ApproveSocial(c *gin.Context) {
	app, err := h.service.ApproveSocial(c.Request.Context(), middleware.ActorFrom(c), c.Param("userId"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Social proof approved", app)
}

// ApproveIdentity
// @Router /v1/admin/ambassadors/:userId/identity/approve [post]
func (h *Handler) ApproveIdentity(c *gin.Context) {
	app, err := h.service.ApproveIdentity(c.Request.Context(), middleware.ActorFrom(c), c.Param("userId"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Identity approved", app)
}

// Activate phát hành mã giới thiệu; gọi lại sẽ trả về mã cũ
// @Router /v1/admin/ambassadors/:userId/activate [post]
func (h *Handler) Activate(c *gin.Context) {
	var req model.ActivateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Dữ liệu request không hợp lệ")
		return
	}

	res, err := h.service.Activate(c.Request.Context(), middleware.ActorFrom(c), c.Param("userId"), req.TermsAccepted)
	if err != nil {
		response.FromError(c, err)
		return
	}
	msg := "Ambassador activated"
	if res.Reused {
		msg = "Ambassador already active"
	}
	response.Success(c, http.StatusOK, msg, res)
}
