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

// RequestReturnUseCase 归还申请用例(Active → ReturnRequested)
// 设计说明:
// 1. 归还申请不动库存——副本还在读者手上,审批通过才归还入库
// 2. 罚金在申请时点按当前时钟计算;被驳回后再次申请会重算,
//    不沿用首次申请时的数值
// 3. 归还记录Upsert:首次申请插入,驳回后重试就地更新并复位审批标记
type RequestReturnUseCase struct {
	loanRepo   loan.Repository
	returnRepo bookreturn.Repository
	txManager  *mysql.TxManager
}

// NewRequestReturnUseCase 创建归还申请用例
func NewRequestReturnUseCase(
	loanRepo loan.Repository,
	returnRepo bookreturn.Repository,
	txManager *mysql.TxManager,
) *RequestReturnUseCase {
	return &RequestReturnUseCase{
		loanRepo:   loanRepo,
		returnRepo: returnRepo,
		txManager:  txManager,
	}
}

// RequestReturnRequest 归还申请请求DTO
type RequestReturnRequest struct {
	LoanID     uint // 借阅单ID
	BorrowerID uint // 读者用户ID(从JWT中提取,校验本人)
}

// RequestReturnResponse 归还申请响应DTO
type RequestReturnResponse struct {
	LoanID      uint   `json:"loan_id"`
	Label       string `json:"label"`
	DaysOverdue int    `json:"days_overdue"`
	Fine        int64  `json:"fine"`
}

// Execute 执行归还申请
// 前置条件:
// 1. 借阅单必须属于当前读者(不能替别人归还)
// 2. 借阅单必须处于Active状态(含归还被驳回后的再次申请)
func (uc *RequestReturnUseCase) Execute(ctx context.Context, req RequestReturnRequest) (*RequestReturnResponse, error) {
	ctx, span := tracing.Tracer().Start(ctx, "RequestReturn")
	defer span.End()

	start := time.Now()
	var daysOverdue int
	var fine int64
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 1. 锁定借阅单
		l, err := uc.loanRepo.LockByID(txCtx, req.LoanID)
		if err != nil {
			return err
		}

		// 2. 本人校验
		if !l.IsOwnedBy(req.BorrowerID) {
			return loan.ErrNotOwner
		}

		// 3. 状态前置校验
		if !l.CanTransitionTo(loan.StatusReturnRequested) {
			return loan.ErrInvalidTransition
		}

		// 4. 计算罚金(申请时点,当前时钟)
		now := time.Now()
		daysOverdue, fine = bookreturn.CalculateFine(l.DueAt, now)

		// 5. 写入归还记录(首次插入/重试就地更新,审批标记复位为Pending)
		ret := bookreturn.NewReturn(l.ID, now, daysOverdue, fine)
		if err := uc.returnRepo.Upsert(txCtx, ret); err != nil {
			return err
		}

		// 6. 状态流转(CAS,期望原状态Active)
		return uc.loanRepo.UpdateStatus(txCtx, l.ID, loan.StatusActive, loan.StatusReturnRequested)
	})

	metrics.ObserveTransition("request_return", err, time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	if fine > 0 {
		metrics.FinesAssessedTotal.Add(float64(fine))
	}

	return &RequestReturnResponse{
		LoanID:      req.LoanID,
		Label:       loan.LabelWaitingReturnApproval,
		DaysOverdue: daysOverdue,
		Fine:        fine,
	}, nil
}
