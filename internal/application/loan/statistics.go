package loan

import (
	"context"

	"github.com/xiebiao/library/internal/domain/loan"
)

// StatisticsUseCase 借阅统计用例(只读,管理端看板)
// 按派生标签分桶统计借阅单数量
type StatisticsUseCase struct {
	loanRepo loan.Repository
}

// NewStatisticsUseCase 创建统计用例
func NewStatisticsUseCase(loanRepo loan.Repository) *StatisticsUseCase {
	return &StatisticsUseCase{loanRepo: loanRepo}
}

// StatisticsResponse 统计响应DTO
// Counts的键是派生标签(与列表接口的标签一致)
type StatisticsResponse struct {
	Counts map[string]int64 `json:"counts"`
	Total  int64            `json:"total"`
}

// Execute 执行统计
// 说明:borrowed与borrowed (return rejected)共享Active状态,
// 用单独的计数从Active总数中拆出归还被驳回的部分
func (uc *StatisticsUseCase) Execute(ctx context.Context) (*StatisticsResponse, error) {
	byStatus, err := uc.loanRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	activeRejected, err := uc.loanRepo.CountActiveWithRejectedReturn(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, 6)
	for _, label := range loan.AllLabels() {
		counts[label] = 0
	}

	counts[loan.LabelWaitingApproval] = byStatus[loan.StatusRequested]
	counts[loan.LabelBorrowed] = byStatus[loan.StatusActive] - activeRejected
	counts[loan.LabelBorrowedReturnRejected] = activeRejected
	counts[loan.LabelWaitingReturnApproval] = byStatus[loan.StatusReturnRequested]
	counts[loan.LabelCompleted] = byStatus[loan.StatusCompleted]
	counts[loan.LabelRejected] = byStatus[loan.StatusRejected]

	var total int64
	for _, c := range byStatus {
		total += c
	}

	return &StatisticsResponse{Counts: counts, Total: total}, nil
}
