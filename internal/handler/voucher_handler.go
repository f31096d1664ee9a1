package handler

import (
	"errors"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"strikealight/playhub/internal/model"
	"strikealight/playhub/internal/service"
	"strikealight/playhub/pkg/response"
)

type VoucherHandler struct {
	voucherService service.VoucherService
}

func NewVoucherHandler(voucherService service.VoucherService) *VoucherHandler {
	return &VoucherHandler{voucherService: voucherService}
}

type IssueVoucherRequest struct {
	UserID           string  `json:"userId" binding:"required,uuid"`
	UserType         string  `json:"userType" binding:"required,oneof=individual student"`
	InstitutionID    *string `json:"institutionId" binding:"omitempty,uuid"`
	AssignedPlays    int     `json:"assignedPlays" binding:"required,gt=0"`
	AmountPaid       float64 `json:"amountPaid" binding:"omitempty,gte=0"`
	ExpiresInMinutes int     `json:"expiresInMinutes" binding:"omitempty,gte=0"`
}

type IssueVoucherResponse struct {
	Token         string     `json:"token"`
	AssignedPlays int        `json:"assignedPlays"`
	AmountPaid    float64    `json:"amountPaid"`
	ExpiresAt     *time.Time `json:"expiresAt"`
}

type RedeemRequest struct {
	RequestID string `json:"requestId"`
}

type RedeemResponse struct {
	OK             bool `json:"ok"`
	RemainingPlays int  `json:"remainingPlays"`
}

// VoucherStatusResponse is the polling shape: the voucher record plus the
// derived balance.
type VoucherStatusResponse struct {
	model.Voucher
	RemainingPlays int `json:"remainingPlays"`
}

// Issue creates a voucher for a payer and returns the token the client
// renders as a QR payload.
func (h *VoucherHandler) Issue(c *gin.Context) {
	var req IssueVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	ownerID, err := uuid.Parse(req.UserID)
	if err != nil {
		response.BadRequest(c, "invalid userId")
		return
	}
	var institutionID *uuid.UUID
	if req.InstitutionID != nil {
		id, err := uuid.Parse(*req.InstitutionID)
		if err != nil {
			response.BadRequest(c, "invalid institutionId")
			return
		}
		institutionID = &id
	}

	voucher, err := h.voucherService.Issue(c.Request.Context(), service.IssueVoucherInput{
		OwnerID:          ownerID,
		OwnerType:        model.OwnerType(req.UserType),
		InstitutionID:    institutionID,
		AssignedPlays:    req.AssignedPlays,
		AmountPaid:       req.AmountPaid,
		ExpiresInMinutes: req.ExpiresInMinutes,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidVoucher):
			response.BadRequest(c, err.Error())
		case errors.Is(err, service.ErrStoreUnavailable):
			response.ServiceUnavailable(c, "store temporarily unavailable")
		default:
			response.InternalError(c, "failed to create voucher")
		}
		return
	}

	response.Created(c, IssueVoucherResponse{
		Token:         voucher.Token,
		AssignedPlays: voucher.AssignedPlays,
		AmountPaid:    voucher.AmountPaid,
		ExpiresAt:     voucher.ExpiresAt,
	})
}

// Redeem is the machine endpoint: one call consumes one play.
func (h *VoucherHandler) Redeem(c *gin.Context) {
	var req RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	result, err := h.voucherService.Redeem(c.Request.Context(), c.Param("token"), req.RequestID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrVoucherNotFound):
			response.NotFound(c, "voucher not found")
		case errors.Is(err, service.ErrVoucherRevoked):
			response.BadRequest(c, "voucher not active")
		case errors.Is(err, service.ErrVoucherExhausted):
			response.Conflict(c, "no plays remaining")
		case errors.Is(err, service.ErrVoucherExpired):
			response.Gone(c, "voucher expired")
		case errors.Is(err, service.ErrStoreUnavailable):
			response.ServiceUnavailable(c, "redemption temporarily unavailable, retry")
		default:
			response.InternalError(c, "failed to redeem voucher")
		}
		return
	}

	response.OK(c, RedeemResponse{OK: true, RemainingPlays: result.RemainingPlays})
}

// Get lets any party holding the token poll balance and metadata.
func (h *VoucherHandler) Get(c *gin.Context) {
	voucher, err := h.voucherService.Get(c.Request.Context(), c.Param("token"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrVoucherNotFound):
			response.NotFound(c, "voucher not found")
		default:
			response.ServiceUnavailable(c, "store temporarily unavailable")
		}
		return
	}

	response.OK(c, VoucherStatusResponse{
		Voucher:        *voucher,
		RemainingPlays: voucher.RemainingPlays(),
	})
}

// Revoke is the out-of-band admin transition into the absorbing revoked state.
func (h *VoucherHandler) Revoke(c *gin.Context) {
	voucher, err := h.voucherService.Revoke(c.Request.Context(), c.Param("token"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrVoucherNotFound):
			response.NotFound(c, "voucher not found")
		case errors.Is(err, service.ErrVoucherNotActive):
			response.Conflict(c, err.Error())
		default:
			response.ServiceUnavailable(c, "store temporarily unavailable")
		}
		return
	}
	response.OK(c, voucher)
}

// List returns all vouchers, newest first.
func (h *VoucherHandler) List(c *gin.Context) {
	vouchers, err := h.voucherService.List(c.Request.Context())
	if err != nil {
		response.InternalError(c, "failed to list vouchers")
		return
	}
	response.OK(c, vouchers)
}
