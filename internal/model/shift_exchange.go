package model

// ShiftExchange 换班/转让申请表 — 对应 shift_exchanges
//
// ShiftBID 与 TransferToUserID 互斥：前者为互换，后者为单向转让。
// Done=true 表示流程终结；Approved 记录终结时的结论（nil 仅在未终结时出现）。
type ShiftExchange struct {
	ExchangeID       string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"exchange_id"`
	ShiftAID         string  `gorm:"type:uuid;not null"                             json:"shift_a_id"`
	ShiftBID         *string `gorm:"type:uuid"                                      json:"shift_b_id,omitempty"`
	TransferToUserID *string `gorm:"type:uuid"                                      json:"transfer_to_user_id,omitempty"`
	Comment          string  `gorm:"type:varchar(500)"                              json:"comment,omitempty"`
	Done             bool    `gorm:"not null;default:false"                         json:"done"`
	Approved         *bool   `json:"approved"`
	UserAApprovalID  string  `gorm:"type:uuid;not null"                             json:"-"`
	UserBApprovalID  string  `gorm:"type:uuid;not null"                             json:"-"`
	AdminApprovalID  string  `gorm:"type:uuid;not null"                             json:"-"`
	BaseModel

	// 关联
	ShiftA         *Shift                 `gorm:"foreignKey:ShiftAID;references:ShiftID"            json:"shift_a,omitempty"`
	ShiftB         *Shift                 `gorm:"foreignKey:ShiftBID;references:ShiftID"            json:"shift_b,omitempty"`
	TransferToUser *User                  `gorm:"foreignKey:TransferToUserID;references:UserID"     json:"transfer_to_user,omitempty"`
	UserAApproval  *ShiftExchangeApproval `gorm:"foreignKey:UserAApprovalID;references:ApprovalID"  json:"user_a_approval,omitempty"`
	UserBApproval  *ShiftExchangeApproval `gorm:"foreignKey:UserBApprovalID;references:ApprovalID"  json:"user_b_approval,omitempty"`
	AdminApproval  *ShiftExchangeApproval `gorm:"foreignKey:AdminApprovalID;references:ApprovalID"  json:"admin_approval,omitempty"`
}

// TableName 指定表名
func (ShiftExchange) TableName() string { return "shift_exchanges" }

// IsTransfer 是否为单向转让
func (e *ShiftExchange) IsTransfer() bool { return e.TransferToUserID != nil }
