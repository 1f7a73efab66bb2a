package loan

import (
	"context"
	"time"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/bookreturn"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/tracing"
)

// ApproveReturnUseCase 审批归还用例(ReturnRequested → Completed)
// 设计说明:
// 1. 审批通过时逐本归还库存(Release永远成功,无需校验)
// 2. 审批标记记录审批人,罚金数值维持申请时计算的结果
// 3. 库存归还、审批标记、状态流转在同一事务中,守恒律由此保证:
//    每条明细在审批借阅时扣减一次,在这里恰好归还一次
type ApproveReturnUseCase struct {
	loanRepo   loan.Repository
	bookRepo   book.Repository
	returnRepo bookreturn.Repository
	txManager  *mysql.TxManager
}

// NewApproveReturnUseCase 创建审批归还用例
func NewApproveReturnUseCase(
	loanRepo loan.Repository,
	bookRepo book.Repository,
	returnRepo bookreturn.Repository,
	txManager *mysql.TxManager,
) *ApproveReturnUseCase {
	return &ApproveReturnUseCase{
		loanRepo:   loanRepo,
		bookRepo:   bookRepo,
		returnRepo: returnRepo,
		txManager:  txManager,
	}
}

// ApproveReturnRequest 审批归还请求DTO
type ApproveReturnRequest struct {
	LoanID  uint // 借阅单ID
	AdminID uint // 审批管理员ID(从JWT中提取)
}

// ApproveReturnResponse 审批归还响应DTO
type ApproveReturnResponse struct {
	LoanID      uint   `json:"loan_id"`
	Label       string `json:"label"`
	DaysOverdue int    `json:"days_overdue"`
	Fine        int64  `json:"fine"`
}

// Execute 执行审批归还
// 前置条件:借阅单必须处于ReturnRequested状态且存在归还记录
func (uc *ApproveReturnUseCase) Execute(ctx context.Context, req ApproveReturnRequest) (*ApproveReturnResponse, error) {
	ctx, span := tracing.Tracer().Start(ctx, "ApproveReturn")
	defer span.End()

	start := time.Now()
	var ret *bookreturn.Return
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 1. 锁定借阅单
		l, err := uc.loanRepo.LockByID(txCtx, req.LoanID)
		if err != nil {
			return err
		}

		// 2. 状态前置校验
		if !l.CanTransitionTo(loan.StatusCompleted) {
			return loan.ErrInvalidTransition
		}

		// 3. 归还记录必须存在(ReturnRequested状态下必然存在,查不到属于数据异常)
		ret, err = uc.returnRepo.FindByLoanID(txCtx, l.ID)
		if err != nil {
			return err
		}

		// 4. 写入审批结果
		if err := uc.returnRepo.SetApproval(txCtx, l.ID, bookreturn.Approved(req.AdminID)); err != nil {
			return err
		}

		// 5. 逐本归还库存
		for _, line := range l.Lines {
			if err := uc.bookRepo.ReleaseStock(txCtx, line.BookID); err != nil {
				return err
			}
		}

		// 6. 状态流转(CAS,期望原状态ReturnRequested)
		return uc.loanRepo.UpdateStatus(txCtx, l.ID, loan.StatusReturnRequested, loan.StatusCompleted)
	})

	metrics.ObserveTransition("approve_return", err, time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	return &ApproveReturnResponse{
		LoanID:      req.LoanID,
		Label:       loan.LabelCompleted,
		DaysOverdue: ret.DaysOverdue,
		Fine:        ret.Fine,
	}, nil
}
