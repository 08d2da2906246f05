package dto

import "shift-flow/backend/internal/model"

// ── 换班模块 DTO ──

// CreateExchangeRequest 发起换班/转让请求
//
// ShiftBID 与 TransferToUserID 二选一：前者互换，后者转让。
type CreateExchangeRequest struct {
	ShiftAID         string  `json:"shift_a_id"          binding:"required,uuid"`
	ShiftBID         *string `json:"shift_b_id"          binding:"omitempty,uuid"`
	TransferToUserID *string `json:"transfer_to_user_id" binding:"omitempty,uuid"`
	Comment          string  `json:"comment"             binding:"max=500"`
}

// UpdateApprovalRequest 审批表态请求
//
// Approved 为 null 时把该审批席位重置回未表态。
type UpdateApprovalRequest struct {
	Approved *bool   `json:"approved"`
	Comment  *string `json:"comment"  binding:"omitempty,max=500"`
}

// ApprovalResponse 审批记录响应
type ApprovalResponse struct {
	ApprovalID string  `json:"approval_id"`
	UserID     *string `json:"user_id"`
	Approved   *bool   `json:"approved"`
}

// ExchangeResponse 换班申请响应
type ExchangeResponse struct {
	ExchangeID     string            `json:"exchange_id"`
	ShiftA         *ShiftResponse    `json:"shift_a,omitempty"`
	ShiftB         *ShiftResponse    `json:"shift_b,omitempty"`
	TransferToUser *UserBrief        `json:"transfer_to_user,omitempty"`
	Comment        string            `json:"comment,omitempty"`
	Done           bool              `json:"done"`
	Approved       *bool             `json:"approved"`
	UserAApproval  *ApprovalResponse `json:"user_a_approval,omitempty"`
	UserBApproval  *ApprovalResponse `json:"user_b_approval,omitempty"`
	AdminApproval  *ApprovalResponse `json:"admin_approval,omitempty"`
	CreatedAt      string            `json:"created_at"`
}

func newApprovalResponse(a *model.ShiftExchangeApproval) *ApprovalResponse {
	if a == nil {
		return nil
	}
	return &ApprovalResponse{
		ApprovalID: a.ApprovalID,
		UserID:     a.UserID,
		Approved:   a.Approved,
	}
}

// NewExchangeResponse 由模型构造换班响应
func NewExchangeResponse(e *model.ShiftExchange) ExchangeResponse {
	resp := ExchangeResponse{
		ExchangeID:     e.ExchangeID,
		TransferToUser: NewUserBrief(e.TransferToUser),
		Comment:        e.Comment,
		Done:           e.Done,
		Approved:       e.Approved,
		UserAApproval:  newApprovalResponse(e.UserAApproval),
		UserBApproval:  newApprovalResponse(e.UserBApproval),
		AdminApproval:  newApprovalResponse(e.AdminApproval),
		CreatedAt:      e.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
	if e.ShiftA != nil {
		a := NewShiftResponse(e.ShiftA)
		resp.ShiftA = &a
	}
	if e.ShiftB != nil {
		b := NewShiftResponse(e.ShiftB)
		resp.ShiftB = &b
	}
	return resp
}

// NewExchangeResponses 批量构造换班响应
func NewExchangeResponses(exchanges []model.ShiftExchange) []ExchangeResponse {
	out := make([]ExchangeResponse, 0, len(exchanges))
	for i := range exchanges {
		out = append(out, NewExchangeResponse(&exchanges[i]))
	}
	return out
}
