package loan

import (
	"context"
)

// ListFilter 借阅单列表查询条件
// 所有可选条件都是类型化字段,仓储实现据此拼装查询,
// 不接受调用方传入的原始SQL片段
type ListFilter struct {
	BorrowerID uint         // 读者ID(0表示不限,管理端全量视图)
	Label      *LabelFilter // 标签筛选(nil表示不限)
	Page       int
	PageSize   int
}

// Repository 借阅单仓储接口
// 设计说明:
// 1. 写方法只允许生命周期状态机(application/loan)在事务内调用
// 2. UpdateStatus采用CAS(带期望原状态),并发流转时后到者失败
// 3. 查询方法预加载明细与归还记录,供标签派生使用
type Repository interface {
	// Create 创建借阅单(级联创建明细)
	Create(ctx context.Context, l *Loan) error

	// FindByID 根据ID查询(含明细与归还记录)
	// 不存在时返回ErrLoanNotFound
	FindByID(ctx context.Context, id uint) (*Loan, error)

	// LockByID 锁定并查询借阅单(SELECT ... FOR UPDATE)
	// 必须在事务内调用,持锁至事务结束
	LockByID(ctx context.Context, id uint) (*Loan, error)

	// UpdateStatus 状态CAS更新:仅当前状态为from时改为to
	// 当前状态不是from时返回ErrInvalidTransition(并发流转被拒绝,不静默覆盖)
	UpdateStatus(ctx context.Context, id uint, from, to Status) error

	// Delete 物理删除借阅单及其明细
	// 仅用于驳回从未生效(Requested)的申请
	Delete(ctx context.Context, id uint) error

	// ListByBorrower 查询读者的借阅历史(含明细与归还记录)
	ListByBorrower(ctx context.Context, borrowerID uint, filter ListFilter) ([]*Loan, int64, error)

	// List 管理端列表查询
	List(ctx context.Context, filter ListFilter) ([]*Loan, int64, error)

	// CountActiveByBorrowerAndBooks 统计读者对指定图书的未完结借阅明细数
	// 未完结 = Requested/Active/ReturnRequested,用于防止重复借阅
	CountActiveByBorrowerAndBooks(ctx context.Context, borrowerID uint, bookIDs []uint) (int64, error)

	// CountByStatus 按状态统计借阅单数量(报表)
	CountByStatus(ctx context.Context) (map[Status]int64, error)

	// CountActiveWithRejectedReturn 统计"借出中且归还被驳回"的借阅单数
	// 报表按标签分桶时用于从Active中拆出borrowed (return rejected)
	CountActiveWithRejectedReturn(ctx context.Context) (int64, error)
}
