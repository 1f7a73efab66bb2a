package dto

// RequestBorrowRequest HTTP借阅申请请求
type RequestBorrowRequest struct {
	BookIDs []uint `json:"book_ids" binding:"required,min=1,dive,required" example:"1,2"`
}

// RequestBorrowResponse HTTP借阅申请响应
type RequestBorrowResponse struct {
	LoanID     uint   `json:"loan_id" example:"1"`
	Label      string `json:"label" example:"waiting for approval"`
	BorrowedAt string `json:"borrowed_at" example:"2026-01-15 10:30:00"`
	DueAt      string `json:"due_at" example:"2026-01-29 10:30:00"`
}

// TransitionResponse HTTP状态流转响应(审批借阅/驳回借阅共用)
type TransitionResponse struct {
	LoanID uint   `json:"loan_id" example:"1"`
	Label  string `json:"label" example:"borrowed"`
}

// ReturnResponse HTTP归还流转响应(归还申请/审批归还共用,携带罚金)
type ReturnResponse struct {
	LoanID      uint   `json:"loan_id" example:"1"`
	Label       string `json:"label" example:"waiting for return approval"`
	DaysOverdue int    `json:"days_overdue" example:"3"`
	Fine        int64  `json:"fine" example:"3000"`
}

// RejectReturnRequest HTTP驳回归还请求
type RejectReturnRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=255" example:"书籍有污损,请先处理"`
}

// RejectReturnResponse HTTP驳回归还响应
type RejectReturnResponse struct {
	LoanID uint   `json:"loan_id" example:"1"`
	Label  string `json:"label" example:"borrowed (return rejected)"`
	Reason string `json:"reason" example:"书籍有污损,请先处理"`
}

// ListLoansRequest HTTP借阅单列表请求(管理端/读者书架共用)
// label取值为枚举的派生标签,传未知值返回参数错误
type ListLoansRequest struct {
	Label    string `form:"label" binding:"omitempty,max=50" example:"waiting for approval"`
	Page     int    `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100" example:"20"`
}
