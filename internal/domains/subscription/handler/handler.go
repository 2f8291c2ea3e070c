package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"monetization-backend/internal/domains/subscription/model"
	"monetization-backend/internal/domains/subscription/service"
	"monetization-backend/internal/shared/middleware"
	"monetization-backend/internal/shared/response"
)

type Handler struct {
	service service.ServiceInterface
}

func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{service: service}
}

// Submit - user gửi thông tin thanh toán gói đăng ký
// @Router /v1/subscriptions [post]
func (h *Handler) Submit(c *gin.Context) {
	var req model.SubmitSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Dữ liệu request không hợp lệ")
		return
	}

	sub, err := h.service.Submit(c.Request.Context(), middleware.ActorFrom(c), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Subscription submitted", sub)
}

// GetMine
// @Router /v1/subscriptions/me [get]
func (h *Handler) GetMine(c *gin.Context) {
	sub, err := h.service.GetMine(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "", sub)
}

// ListPending
// @Router /v1/admin/subscriptions/pending [get]
func (h *Handler) ListPending(c *gin.Context) {
	list, err := h.service.ListPending(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "", list)
}

// Approve kích hoạt tính hoa hồng nếu có mã giới thiệu
// @Router /v1/admin/subscriptions/:id/approve [post]
func (h *Handler) Approve(c *gin.Context) {
	res, err := h.service.Approve(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	msg := "Subscription approved"
	if res.AlreadyApproved {
		msg = "Subscription already approved"
	}
	response.Success(c, http.StatusOK, msg, res)
}

// Reject
// @Router /v1/admin/subscriptions/:id/reject [post]
func (h *Handler) Reject(c *gin.Context) {
	sub, err := h.service.Reject(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Subscription rejected", sub)
}

// GrantManual
// @Router /v1/admin/subscriptions/manual [post]
func (h *Handler) GrantManual(c *gin.Context) {
	var req model.GrantManualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Dữ liệu request không hợp lệ")
		return
	}

	sub, err := h.service.GrantManual(c.Request.Context(), middleware.ActorFrom(c), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Subscription granted", sub)
}
