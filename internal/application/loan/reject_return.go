package loan

import (
	"context"
	"time"

	"github.com/xiebiao/library/internal/domain/bookreturn"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/tracing"
)

// RejectReturnUseCase 驳回归还用例(ReturnRequested → Active)
// 设计说明:
// 1. 驳回后借阅单回到Active,副本仍在读者手上,库存不动
// 2. 归还记录不删除,只把审批标记置为Rejected并记录原因,
//    读者可再次发起归还(罚金届时重算)
type RejectReturnUseCase struct {
	loanRepo   loan.Repository
	returnRepo bookreturn.Repository
	txManager  *mysql.TxManager
}

// NewRejectReturnUseCase 创建驳回归还用例
func NewRejectReturnUseCase(
	loanRepo loan.Repository,
	returnRepo bookreturn.Repository,
	txManager *mysql.TxManager,
) *RejectReturnUseCase {
	return &RejectReturnUseCase{
		loanRepo:   loanRepo,
		returnRepo: returnRepo,
		txManager:  txManager,
	}
}

// RejectReturnRequest 驳回归还请求DTO
type RejectReturnRequest struct {
	LoanID  uint   // 借阅单ID
	AdminID uint   // 审批管理员ID(从JWT中提取)
	Reason  string // 驳回原因(可选,为空时使用默认文案)
}

// RejectReturnResponse 驳回归还响应DTO
type RejectReturnResponse struct {
	LoanID uint   `json:"loan_id"`
	Label  string `json:"label"`
	Reason string `json:"reason"`
}

// Execute 执行驳回归还
// 前置条件:借阅单必须处于ReturnRequested状态
func (uc *RejectReturnUseCase) Execute(ctx context.Context, req RejectReturnRequest) (*RejectReturnResponse, error) {
	ctx, span := tracing.Tracer().Start(ctx, "RejectReturn")
	defer span.End()

	start := time.Now()
	approval := bookreturn.Rejected(req.AdminID, req.Reason)
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

		// 3. 写入审批结果(记录审批人与驳回原因)
		if err := uc.returnRepo.SetApproval(txCtx, l.ID, approval); err != nil {
			return err
		}

		// 4. 状态流转回Active(CAS,期望原状态ReturnRequested)
		// 库存不动:副本还在读者手上
		return uc.loanRepo.UpdateStatus(txCtx, l.ID, loan.StatusReturnRequested, loan.StatusActive)
	})

	metrics.ObserveTransition("reject_return", err, time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	return &RejectReturnResponse{
		LoanID: req.LoanID,
		Label:  loan.LabelBorrowedReturnRejected,
		Reason: approval.Reason,
	}, nil
}
