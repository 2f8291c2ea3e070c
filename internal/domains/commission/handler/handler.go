package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"monetization-backend/internal/domains/commission/model"
	"monetization-backend/internal/domains/commission/service"
	"monetization-backend/internal/shared/apperror"
	"monetization-backend/internal/shared/middleware"
	"monetization-backend/internal/shared/response"
)

type Handler struct {
	service service.ServiceInterface
}

func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{service: service}
}

// Deduct
// @Router /v1/admin/commissions/:id/deduct [post]
func (h *Handler) Deduct(c *gin.Context) {
	res, err := h.service.Deduct(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	msg := "Commission deducted"
	if res.AlreadyDeducted {
		msg = "Commission already deducted"
	}
	response.Success(c, http.StatusOK, msg, res)
}

// DeductBatch trả về kết quả riêng cho từng subscription
// @Router /v1/admin/commissions/deduct [post]
func (h *Handler) DeductBatch(c *gin.Context) {
	var req model.DeductBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Dữ liệu request không hợp lệ")
		return
	}
	if err := req.Validate(); err != nil {
		response.FromError(c, apperror.FromValidation(err))
		return
	}

	results, err := h.service.DeductBatch(c.Request.Context(), middleware.ActorFrom(c), req.SubscriptionIDs)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "", results)
}

// Release
// @Router /v1/admin/commissions/:id/release [post]
func (h *Handler) Release(c *gin.Context) {
	res, err := h.service.Release(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	switch {
	case res.AlreadyReleased:
		response.Success(c, http.StatusOK, "Commission already released", res)
	case res.CreditPending:
		response.Success(c, http.StatusAccepted, "Commission released, balance credit scheduled", res)
	default:
		response.Success(c, http.StatusOK, "Commission released", res)
	}
}

// GrossEarnings
// @Router /v1/admin/earnings/gross [get]
func (h *Handler) GrossEarnings(c *gin.Context) {
	out, err := h.service.GrossPlatformEarnings(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "", out)
}
