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

// RequestBorrowUseCase 借阅申请用例
// 教学要点:
// 1. 申请只创建待审批的借阅单,不扣库存(库存在审批通过时才扣减)
// 2. 但申请时做两项校验:每本书当前有货、读者没有对同一本书的未完结借阅
// 3. 校验与创建在同一事务中,防止校验后被并发修改
type RequestBorrowUseCase struct {
	loanRepo  loan.Repository
	bookRepo  book.Repository
	txManager *mysql.TxManager
}

// NewRequestBorrowUseCase 创建借阅申请用例
func NewRequestBorrowUseCase(
	loanRepo loan.Repository,
	bookRepo book.Repository,
	txManager *mysql.TxManager,
) *RequestBorrowUseCase {
	return &RequestBorrowUseCase{
		loanRepo:  loanRepo,
		bookRepo:  bookRepo,
		txManager: txManager,
	}
}

// RequestBorrowRequest 借阅申请请求DTO
type RequestBorrowRequest struct {
	BorrowerID uint   // 读者用户ID(从JWT中提取)
	BookIDs    []uint // 要借的图书ID列表
}

// RequestBorrowResponse 借阅申请响应DTO
type RequestBorrowResponse struct {
	LoanID     uint   `json:"loan_id"`
	Label      string `json:"label"`
	DueAt      string `json:"due_at"`
	BorrowedAt string `json:"borrowed_at"`
}

// Execute 执行借阅申请
// 业务规则:
// 1. 图书ID列表非空且不重复(同一次申请借两本同样的书按参数错误拒绝)
// 2. 每本书都必须存在且当前有可借副本
//    (无货时在申请阶段就返回OutOfStock,不创建注定无法审批的借阅单)
// 3. 读者对其中任何一本书都不能有未完结的借阅(防重复借阅)
func (uc *RequestBorrowUseCase) Execute(ctx context.Context, req RequestBorrowRequest) (*RequestBorrowResponse, error) {
	ctx, span := tracing.Tracer().Start(ctx, "RequestBorrow")
	defer span.End()

	// 1. 参数校验(不依赖数据库的先行校验)
	if len(req.BookIDs) == 0 {
		return nil, loan.ErrEmptyLines
	}
	seen := make(map[uint]struct{}, len(req.BookIDs))
	for _, id := range req.BookIDs {
		if _, ok := seen[id]; ok {
			return nil, loan.ErrDuplicateBookInRequest
		}
		seen[id] = struct{}{}
	}

	var result *loan.Loan
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 2. 图书存在性与有货校验
		books, err := uc.bookRepo.FindByIDs(txCtx, req.BookIDs)
		if err != nil {
			return err
		}
		for _, b := range books {
			if b.Stock <= 0 {
				return book.ErrOutOfStock
			}
		}

		// 3. 防重复借阅:同一读者对同一本书只允许一条未完结借阅
		count, err := uc.loanRepo.CountActiveByBorrowerAndBooks(txCtx, req.BorrowerID, req.BookIDs)
		if err != nil {
			return err
		}
		if count > 0 {
			return loan.ErrDuplicateActiveLoan
		}

		// 4. 创建借阅单(状态Requested,到期时间=现在+固定借期)
		newLoan := loan.NewLoan(req.BorrowerID, req.BookIDs, time.Now())
		if err := uc.loanRepo.Create(txCtx, newLoan); err != nil {
			return err
		}

		result = newLoan
		return nil
	})

	if err != nil {
		return nil, err
	}

	metrics.LoansRequestedTotal.Inc()

	return &RequestBorrowResponse{
		LoanID:     result.ID,
		Label:      result.Label(),
		DueAt:      result.DueAt.Format("2006-01-02 15:04:05"),
		BorrowedAt: result.BorrowedAt.Format("2006-01-02 15:04:05"),
	}, nil
}
