package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"monetization-backend/internal/domains/withdrawal/model"
	"monetization-backend/internal/domains/withdrawal/service"
	"monetization-backend/internal/shared/middleware"
	"monetization-backend/internal/shared/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	service service.ServiceInterface
}

func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{service: service}
}

// Request tạo yêu cầu rút tiền
// @Router /v1/withdrawals [post]
func (h *Handler) Request(c *gin.Context) {
	var req model.RequestWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Dữ liệu request không hợp lệ")
		return
	}

	w, err := h.service.RequestWithdrawal(c.Request.Context(), middleware.ActorFrom(c), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Withdrawal requested", w)
}

// ListMine
// @Router /v1/withdrawals [get]
func (h *Handler) ListMine(c *gin.Context) {
	list, err := h.service.ListMine(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "", list)
}

// MarkPaid
// @Router /v1/admin/withdrawals/:id/paid [post]
func (h *Handler) MarkPaid(c *gin.Context) {
	w, err := h.service.MarkPaid(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Withdrawal marked paid", w)
}

// ListPending
// @Router /v1/admin/withdrawals/pending [get]
func (h *Handler) ListPending(c *gin.Context) {
	list, err := h.service.ListPending(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "", list)
}

// Export tải file xlsx các khoản cần chi trả
// @Router /v1/admin/withdrawals/export [get]
func (h *Handler) Export(c *gin.Context) {
	data, err := h.service.ExportPayoutSheet(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		response.FromError(c, err)
		return
	}

	filename := fmt.Sprintf("payouts_%s.xlsx", time.Now().UTC().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
