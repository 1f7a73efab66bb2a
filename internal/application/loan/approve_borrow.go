package loan

import (
	"context"
	"time"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/tracing"
)

// ApproveBorrowUseCase 审批借阅用例(Requested → Active)
// 教学要点:这是整个项目最核心的用例
// 涉及:事务处理、并发控制、库存扣减
type ApproveBorrowUseCase struct {
	loanRepo  loan.Repository
	bookRepo  book.Repository
	txManager *mysql.TxManager
}

// NewApproveBorrowUseCase 创建审批借阅用例
func NewApproveBorrowUseCase(
	loanRepo loan.Repository,
	bookRepo book.Repository,
	txManager *mysql.TxManager,
) *ApproveBorrowUseCase {
	return &ApproveBorrowUseCase{
		loanRepo:  loanRepo,
		bookRepo:  bookRepo,
		txManager: txManager,
	}
}

// ApproveBorrowRequest 审批借阅请求DTO
type ApproveBorrowRequest struct {
	LoanID uint // 借阅单ID
}

// ApproveBorrowResponse 审批借阅响应DTO
type ApproveBorrowResponse struct {
	LoanID uint   `json:"loan_id"`
	Label  string `json:"label"`
	DueAt  string `json:"due_at"`
}

// Execute 执行审批借阅
// 教学重点:防止超借的完整流程
//
// 核心问题:库存超借
// 场景:某书只剩1本,两个管理员同时审批两张都借这本书的借阅单
// 错误实现:
//  1. 查询库存 → 1本
//  2. 判断够不够 → 够
//  3. 扣减库存 → stock = stock - 1
//     结果:两个请求都通过了步骤2,最后借出2本(库存变-1!)
//
// 正确实现:锁定借阅单行 + 条件更新扣库存
//  1. SELECT FOR UPDATE 锁定借阅单行(同一张单的并发流转在此串行化)
//  2. 校验状态必须是Requested
//  3. 逐本执行 UPDATE ... SET stock = stock - 1 WHERE stock >= 1
//     (UPDATE自带行锁;WHERE条件保证并发下至多一个请求命中)
//  4. CAS改状态 Requested→Active
//  5. COMMIT释放锁;任何一步失败整个事务回滚,已扣的库存一并撤销
func (uc *ApproveBorrowUseCase) Execute(ctx context.Context, req ApproveBorrowRequest) (*ApproveBorrowResponse, error) {
	ctx, span := tracing.Tracer().Start(ctx, "ApproveBorrow")
	defer span.End()

	start := time.Now()
	var result *loan.Loan
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 1. 锁定借阅单
		l, err := uc.loanRepo.LockByID(txCtx, req.LoanID)
		if err != nil {
			return err
		}

		// 2. 状态前置校验
		if !l.CanTransitionTo(loan.StatusActive) {
			return loan.ErrInvalidTransition
		}

		// 3. 逐本扣减库存
		// 任何一本无货则返回ErrOutOfStock,事务整体回滚:
		// 不存在"借到一半"的借阅单
		for _, line := range l.Lines {
			if err := uc.bookRepo.ReserveStock(txCtx, line.BookID); err != nil {
				return err
			}
		}

		// 4. 状态流转(CAS,期望原状态Requested)
		if err := uc.loanRepo.UpdateStatus(txCtx, l.ID, loan.StatusRequested, loan.StatusActive); err != nil {
			return err
		}

		l.Status = loan.StatusActive
		result = l
		return nil
	})

	metrics.ObserveTransition("approve_borrow", err, time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	return &ApproveBorrowResponse{
		LoanID: result.ID,
		Label:  result.Label(),
		DueAt:  result.DueAt.Format("2006-01-02 15:04:05"),
	}, nil
}
