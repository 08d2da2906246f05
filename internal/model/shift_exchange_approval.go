package model

// ShiftExchangeApproval 换班审批记录表 — 对应 shift_exchange_approvals
//
// UserID 为空表示该席位尚未有人表态；Approved 三态：
// nil 未决、true 同意、false 拒绝。
type ShiftExchangeApproval struct {
	ApprovalID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"approval_id"`
	UserID     *string `gorm:"type:uuid"                                      json:"user_id,omitempty"`
	Approved   *bool   `json:"approved"`
	BaseModel
}

// TableName 指定表名
func (ShiftExchangeApproval) TableName() string { return "shift_exchange_approvals" }
