package loan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 教学说明:借阅单状态机单元测试
//
// 状态机是整个借阅生命周期的骨架,这里用表驱动测试穷举
// 全部 5x5=25 种流转组合,保证:
// 1. 合法流转恰好5条(批准/驳回/申请归还/批准归还/驳回归还)
// 2. 其余20种组合全部被拒绝
// 3. 终态(已完结/已驳回)没有任何出边

// TestLoanTransitions 穷举状态流转表
func TestLoanTransitions(t *testing.T) {
	allStatuses := []Status{
		StatusRequested,
		StatusActive,
		StatusReturnRequested,
		StatusCompleted,
		StatusRejected,
	}

	// 合法流转白名单
	allowed := map[Status]map[Status]bool{
		StatusRequested:       {StatusActive: true, StatusRejected: true},
		StatusActive:          {StatusReturnRequested: true},
		StatusReturnRequested: {StatusCompleted: true, StatusActive: true},
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			from, to := from, to
			name := from.String() + "→" + to.String()
			t.Run(name, func(t *testing.T) {
				l := &Loan{Status: from}
				want := allowed[from][to]

				assert.Equal(t, want, l.CanTransitionTo(to), "流转判定与白名单不一致")

				err := l.TransitionTo(to)
				if want {
					require.NoError(t, err)
					assert.Equal(t, to, l.Status, "流转后状态应更新")
				} else {
					assert.ErrorIs(t, err, ErrInvalidTransition)
					assert.Equal(t, from, l.Status, "非法流转不应改变状态")
				}
			})
		}
	}

	t.Logf("✓ 状态流转表测试通过(5条合法边,20条非法边)")
}

// TestStatusTerminal 终态判定
func TestStatusTerminal(t *testing.T) {
	t.Run("已完结和已驳回是终态", func(t *testing.T) {
		assert.True(t, StatusCompleted.IsTerminal())
		assert.True(t, StatusRejected.IsTerminal())
	})

	t.Run("其余状态不是终态", func(t *testing.T) {
		assert.False(t, StatusRequested.IsTerminal())
		assert.False(t, StatusActive.IsTerminal())
		assert.False(t, StatusReturnRequested.IsTerminal())
	})
}

// TestStatusStockHolding 占库存状态判定
// 库存守恒检查依赖此判定:借出中/待归还审批的明细各对应一次未配对的扣减
func TestStatusStockHolding(t *testing.T) {
	assert.True(t, StatusActive.IsStockHolding(), "借出中占库存")
	assert.True(t, StatusReturnRequested.IsStockHolding(), "待归还审批仍占库存")

	assert.False(t, StatusRequested.IsStockHolding(), "待审批不占库存(申请阶段不扣减)")
	assert.False(t, StatusCompleted.IsStockHolding(), "已完结副本已归还")
	assert.False(t, StatusRejected.IsStockHolding(), "已驳回从未扣减")
}

// TestNewLoan 借阅单工厂方法
func TestNewLoan(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	l := NewLoan(42, []uint{1, 2, 3}, now)

	assert.Equal(t, uint(42), l.BorrowerID)
	assert.Equal(t, StatusRequested, l.Status, "初始状态应为待审批")
	assert.Equal(t, now, l.BorrowedAt)
	assert.Equal(t, now.Add(LoanPeriod), l.DueAt, "到期时间 = 申请时间 + 固定借期")

	require.Len(t, l.Lines, 3)
	assert.Equal(t, []uint{1, 2, 3}, l.BookIDs(), "明细顺序应与申请顺序一致")

	t.Logf("✓ 借阅单创建成功,借期%v,到期时间%v", LoanPeriod, l.DueAt)
}

// TestLoanOwnership 借阅单归属校验
func TestLoanOwnership(t *testing.T) {
	l := &Loan{BorrowerID: 7}

	assert.True(t, l.IsOwnedBy(7))
	assert.False(t, l.IsOwnedBy(8), "不能操作他人的借阅单")
}

// TestLoanOverdue 逾期判定
func TestLoanOverdue(t *testing.T) {
	due := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

	t.Run("到期前不逾期", func(t *testing.T) {
		l := &Loan{Status: StatusActive, DueAt: due}
		assert.False(t, l.IsOverdue(due.Add(-time.Hour)))
	})

	t.Run("到期瞬间不逾期", func(t *testing.T) {
		l := &Loan{Status: StatusActive, DueAt: due}
		assert.False(t, l.IsOverdue(due))
	})

	t.Run("过期后逾期", func(t *testing.T) {
		l := &Loan{Status: StatusActive, DueAt: due}
		assert.True(t, l.IsOverdue(due.Add(time.Minute)))
	})

	t.Run("非借出中状态不算逾期", func(t *testing.T) {
		l := &Loan{Status: StatusRequested, DueAt: due}
		assert.False(t, l.IsOverdue(due.Add(24*time.Hour)), "待审批的借阅单没有逾期概念")
	})
}
