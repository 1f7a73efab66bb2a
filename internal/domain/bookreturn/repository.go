package bookreturn

import (
	"context"
)

// Repository 归还记录仓储接口
// 设计说明:
// 1. 每张借阅单至多一条记录,Upsert保证"驳回后重试"就地更新
// 2. 所有写操作都由生命周期状态机在事务内调用(context携带事务)
type Repository interface {
	// Upsert 创建或更新归还记录
	// 已存在同loan_id的记录时更新归还时间/罚金并把审批标记复位为Pending
	Upsert(ctx context.Context, ret *Return) error

	// SetApproval 写入审批结果
	// 记录不存在时返回ErrReturnNotFound
	SetApproval(ctx context.Context, loanID uint, approval Approval) error

	// FindByLoanID 查询借阅单的归还记录
	// 不存在时返回ErrReturnNotFound
	FindByLoanID(ctx context.Context, loanID uint) (*Return, error)
}
