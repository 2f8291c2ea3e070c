package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"monetization-backend/internal/domains/promocode/model"
	"monetization-backend/internal/domains/promocode/service"
	"monetization-backend/internal/shared/middleware"
	"monetization-backend/internal/shared/response"
)

type Handler struct {
	service service.ServiceInterface
}

func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{service: service}
}

// Create tạo mã giới thiệu thủ công
// @Router /v1/admin/promo-codes [post]
func (h *Handler) Create(c *gin.Context) {
	var req model.CreatePromoCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Dữ liệu request không hợp lệ")
		return
	}

	promo, err := h.service.Create(c.Request.Context(), middleware.ActorFrom(c), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Promo code created", model.ToResponse(promo, 0))
}

// List
// @Router /v1/admin/promo-codes [get]
func (h *Handler) List(c *gin.Context) {
	list, err := h.service.List(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "", list)
}

// Delete
// @Router /v1/admin/promo-codes/:code [delete]
func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), middleware.ActorFrom(c), c.Param("code")); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Promo code deleted", nil)
}

// Usage trả về số lượt dùng thực tế
// @Router /v1/admin/promo-codes/:code/usage [get]
func (h *Handler) Usage(c *gin.Context) {
	code := c.Param("code")
	promo, err := h.service.ResolveOwner(c.Request.Context(), code)
	if err != nil {
		response.FromError(c, err)
		return
	}

	count, err := h.service.UsageCount(c.Request.Context(), promo.Code)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "", model.UsageResponse{Code: promo.Code, Count: count})
}
