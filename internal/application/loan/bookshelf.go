package loan

import (
	"context"
	"time"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/loan"
)

// BookshelfUseCase 读者书架用例(只读)
// 展示读者自己的借阅历史:标签、罚金、是否逾期
type BookshelfUseCase struct {
	loanRepo loan.Repository
	bookRepo book.Repository
}

// NewBookshelfUseCase 创建读者书架用例
func NewBookshelfUseCase(loanRepo loan.Repository, bookRepo book.Repository) *BookshelfUseCase {
	return &BookshelfUseCase{loanRepo: loanRepo, bookRepo: bookRepo}
}

// BookshelfRequest 书架请求DTO
type BookshelfRequest struct {
	BorrowerID uint   // 读者用户ID(从JWT中提取)
	Label      string // 标签筛选(可选)
	Page       int
	PageSize   int
}

// BookshelfResponse 书架响应DTO
type BookshelfResponse struct {
	Loans []LoanView `json:"loans"`
	Total int64      `json:"total"`
}

// Execute 执行书架查询
func (uc *BookshelfUseCase) Execute(ctx context.Context, req BookshelfRequest) (*BookshelfResponse, error) {
	filter := loan.ListFilter{
		Page:     req.Page,
		PageSize: req.PageSize,
	}

	if req.Label != "" {
		lf, err := loan.ParseLabelFilter(req.Label)
		if err != nil {
			return nil, err
		}
		filter.Label = &lf
	}

	loans, total, err := uc.loanRepo.ListByBorrower(ctx, req.BorrowerID, filter)
	if err != nil {
		return nil, err
	}

	titles := lookupTitles(ctx, uc.bookRepo, loans)
	now := time.Now()
	views := make([]LoanView, len(loans))
	for i, l := range loans {
		views[i] = toLoanView(l, titles, now)
	}

	return &BookshelfResponse{Loans: views, Total: total}, nil
}
