package loan

import (
	"context"
	"time"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/loan"
)

// ListRequestsUseCase 管理端借阅单列表用例(只读)
// 设计说明:
// 1. 查询门面不做任何写操作,数据修补属于生命周期用例的职责
// 2. 标签筛选键是枚举集合,未知键按参数错误拒绝(不拼原始SQL)
type ListRequestsUseCase struct {
	loanRepo loan.Repository
	bookRepo book.Repository
}

// NewListRequestsUseCase 创建管理端列表用例
func NewListRequestsUseCase(loanRepo loan.Repository, bookRepo book.Repository) *ListRequestsUseCase {
	return &ListRequestsUseCase{loanRepo: loanRepo, bookRepo: bookRepo}
}

// ListRequestsRequest 列表请求DTO
type ListRequestsRequest struct {
	Label    string // 标签筛选(可选,如"waiting for approval")
	Page     int
	PageSize int
}

// ListRequestsResponse 列表响应DTO
type ListRequestsResponse struct {
	Loans []LoanView `json:"loans"`
	Total int64      `json:"total"`
}

// Execute 执行列表查询
func (uc *ListRequestsUseCase) Execute(ctx context.Context, req ListRequestsRequest) (*ListRequestsResponse, error) {
	filter := loan.ListFilter{
		Page:     req.Page,
		PageSize: req.PageSize,
	}

	// 标签筛选键解析(未知键返回参数错误)
	if req.Label != "" {
		lf, err := loan.ParseLabelFilter(req.Label)
		if err != nil {
			return nil, err
		}
		filter.Label = &lf
	}

	loans, total, err := uc.loanRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	titles := lookupTitles(ctx, uc.bookRepo, loans)
	now := time.Now()
	views := make([]LoanView, len(loans))
	for i, l := range loans {
		views[i] = toLoanView(l, titles, now)
	}

	return &ListRequestsResponse{Loans: views, Total: total}, nil
}
