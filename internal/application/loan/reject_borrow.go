package loan

import (
	"context"
	"time"

	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/tracing"
)

// RejectBorrowUseCase 驳回借阅用例(Requested → 删除)
// 设计说明:
// 1. 借阅申请从未生效(Requested期间库存未扣减),驳回时无需恢复库存
// 2. 从未生效的申请物理删除借阅单及明细,不留归档
//    (已生效的借阅单永不删除,归还审批通过后转Completed留档)
type RejectBorrowUseCase struct {
	loanRepo  loan.Repository
	txManager *mysql.TxManager
}

// NewRejectBorrowUseCase 创建驳回借阅用例
func NewRejectBorrowUseCase(loanRepo loan.Repository, txManager *mysql.TxManager) *RejectBorrowUseCase {
	return &RejectBorrowUseCase{loanRepo: loanRepo, txManager: txManager}
}

// RejectBorrowRequest 驳回借阅请求DTO
type RejectBorrowRequest struct {
	LoanID uint
}

// RejectBorrowResponse 驳回借阅响应DTO
type RejectBorrowResponse struct {
	LoanID uint   `json:"loan_id"`
	Label  string `json:"label"`
}

// Execute 执行驳回借阅
// 前置条件:借阅单必须处于Requested状态
// 对已驳回/已借出的单再次驳回返回InvalidTransition,无任何副作用
func (uc *RejectBorrowUseCase) Execute(ctx context.Context, req RejectBorrowRequest) (*RejectBorrowResponse, error) {
	ctx, span := tracing.Tracer().Start(ctx, "RejectBorrow")
	defer span.End()

	start := time.Now()
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 1. 锁定借阅单
		l, err := uc.loanRepo.LockByID(txCtx, req.LoanID)
		if err != nil {
			return err
		}

		// 2. 状态前置校验
		if !l.CanTransitionTo(loan.StatusRejected) {
			return loan.ErrInvalidTransition
		}

		// 3. 物理删除借阅单及明细(库存从未扣减,无需恢复)
		return uc.loanRepo.Delete(txCtx, l.ID)
	})

	metrics.ObserveTransition("reject_borrow", err, time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	return &RejectBorrowResponse{
		LoanID: req.LoanID,
		Label:  loan.LabelRejected,
	}, nil
}
