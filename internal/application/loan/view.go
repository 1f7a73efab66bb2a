package loan

import (
	"context"
	"time"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/loan"
)

// LoanView 借阅单视图DTO(读者书架与管理端列表共用)
// 说明:Label统一调用loan.Label派生,读路径不允许各自推断
type LoanView struct {
	LoanID      uint           `json:"loan_id"`
	BorrowerID  uint           `json:"borrower_id"`
	Label       string         `json:"label"`
	BorrowedAt  string         `json:"borrowed_at"`
	DueAt       string         `json:"due_at"`
	Overdue     bool           `json:"overdue"`
	DaysOverdue int            `json:"days_overdue,omitempty"`
	Fine        int64          `json:"fine,omitempty"`
	Reason      string         `json:"reason,omitempty"`
	Lines       []LoanLineView `json:"lines"`
}

// LoanLineView 借阅明细视图DTO
type LoanLineView struct {
	BookID uint   `json:"book_id"`
	Title  string `json:"title,omitempty"`
}

// toLoanView 借阅单实体 → 视图DTO
// titles为图书ID→书名的映射(批量查询得到,可为nil)
func toLoanView(l *loan.Loan, titles map[uint]string, now time.Time) LoanView {
	lines := make([]LoanLineView, len(l.Lines))
	for i, line := range l.Lines {
		lines[i] = LoanLineView{
			BookID: line.BookID,
			Title:  titles[line.BookID],
		}
	}

	view := LoanView{
		LoanID:     l.ID,
		BorrowerID: l.BorrowerID,
		Label:      l.Label(),
		BorrowedAt: l.BorrowedAt.Format("2006-01-02 15:04:05"),
		DueAt:      l.DueAt.Format("2006-01-02 15:04:05"),
		Overdue:    l.IsOverdue(now),
		Lines:      lines,
	}

	if l.Return != nil {
		view.DaysOverdue = l.Return.DaysOverdue
		view.Fine = l.Return.Fine
		view.Reason = l.Return.Approval.Reason
	}

	return view
}

// lookupTitles 批量查询书名
// 展示用途:任何查询失败都降级为不带书名,不影响列表返回
func lookupTitles(ctx context.Context, bookRepo book.Repository, loans []*loan.Loan) map[uint]string {
	idSet := make(map[uint]struct{})
	for _, l := range loans {
		for _, line := range l.Lines {
			idSet[line.BookID] = struct{}{}
		}
	}
	if len(idSet) == 0 {
		return nil
	}

	ids := make([]uint, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	books, err := bookRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil
	}

	titles := make(map[uint]string, len(books))
	for _, b := range books {
		titles[b.ID] = b.Title
	}
	return titles
}
