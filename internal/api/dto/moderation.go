package dto

// ReviewDecisionDTO 审核裁决请求
type ReviewDecisionDTO struct {
	Action string `json:"action" binding:"required,oneof=approve reject"`
	Reason string `json:"reason" validate:"max=255"`
}

// ApprovalCountDTO 审核状态分布项
type ApprovalCountDTO struct {
	ApprovalStatus string `json:"approval_status"`
	Count          int64  `json:"count"`
}

// ModerationQueryDTO 管理端商品列表查询
type ModerationQueryDTO struct {
	ApprovalStatus string `form:"approval_status"`
	Status         string `form:"status"`
	Category       string `form:"category"`
	Page           int    `form:"page"`
	Size           int    `form:"size"`
}
