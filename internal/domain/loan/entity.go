package loan

import (
	"time"

	"github.com/xiebiao/library/internal/domain/bookreturn"
)

// 借阅策略常量
const (
	// LoanPeriod 借阅期限,到期时间 = 申请时间 + LoanPeriod
	LoanPeriod = 14 * 24 * time.Hour
)

// Status 借阅单状态
// 设计说明:
// 1. 使用int类型而非string(节省存储空间,便于索引)
// 2. 定义为类型别名,便于添加方法
// 3. 状态值1-5递增,便于理解流转方向
type Status int

const (
	StatusRequested       Status = 1 // 待审批(读者已申请,等管理员批)
	StatusActive          Status = 2 // 借出中(审批通过,副本在读者手上)
	StatusReturnRequested Status = 3 // 待归还审批(读者申请归还,等管理员批)
	StatusCompleted       Status = 4 // 已完结(归还审批通过,终态)
	StatusRejected        Status = 5 // 已驳回(借阅申请被驳回,终态)
)

// String 实现Stringer接口(方便日志输出)
func (s Status) String() string {
	switch s {
	case StatusRequested:
		return "待审批"
	case StatusActive:
		return "借出中"
	case StatusReturnRequested:
		return "待归还审批"
	case StatusCompleted:
		return "已完结"
	case StatusRejected:
		return "已驳回"
	default:
		return "未知状态"
	}
}

// IsTerminal 是否为终态
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusRejected
}

// IsStockHolding 该状态下读者是否占用着副本(库存已扣减)
// 库存守恒检查依赖此判定:Active/ReturnRequested的每条明细
// 都对应一次已发生、尚未配对归还的扣减
func (s Status) IsStockHolding() bool {
	return s == StatusActive || s == StatusReturnRequested
}

// Loan 借阅单实体(聚合根)
// 设计说明:
// 1. Loan是聚合根,LoanLine是子实体,一张借阅单可借多本书
// 2. Return字段仅由查询路径填充(Preload),写路径经bookreturn.Repository,
//    标签派生(Label)需要它
type Loan struct {
	ID         uint
	BorrowerID uint       // 读者用户ID
	BorrowedAt time.Time  // 申请借阅时间
	DueAt      time.Time  // 应归还时间(= BorrowedAt + LoanPeriod)
	Status     Status     // 借阅单状态
	Lines      []LoanLine // 借阅明细(聚合内的子实体,非空)
	Return     *bookreturn.Return
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// LoanLine 借阅明细项
// 说明:
// 1. 不是独立聚合根,必须通过Loan访问
// 2. 一条明细代表一本被预定/借出的副本
// 3. 不直接关联Book对象,只保存BookID(避免跨聚合引用)
type LoanLine struct {
	ID     uint
	LoanID uint // 所属借阅单ID
	BookID uint // 图书ID
}

// NewLoan 创建新借阅单(工厂方法)
// 初始状态为Requested(待审批),到期时间按固定借期推算
func NewLoan(borrowerID uint, bookIDs []uint, now time.Time) *Loan {
	lines := make([]LoanLine, len(bookIDs))
	for i, id := range bookIDs {
		lines[i] = LoanLine{BookID: id}
	}

	return &Loan{
		BorrowerID: borrowerID,
		BorrowedAt: now,
		DueAt:      now.Add(LoanPeriod),
		Status:     StatusRequested,
		Lines:      lines,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// CanTransitionTo 检查是否可以转换到目标状态
// 状态机(防止非法状态跳转):
//
//	Requested       --管理员批准--> Active
//	Requested       --管理员驳回--> Rejected
//	Active          --读者申请归还--> ReturnRequested
//	ReturnRequested --管理员批准归还--> Completed
//	ReturnRequested --管理员驳回归还--> Active   (可反复重入)
//
// Completed/Rejected为终态,无后续状态
func (l *Loan) CanTransitionTo(target Status) bool {
	transitions := map[Status][]Status{
		StatusRequested:       {StatusActive, StatusRejected},
		StatusActive:          {StatusReturnRequested},
		StatusReturnRequested: {StatusCompleted, StatusActive},
		StatusCompleted:       {},
		StatusRejected:        {},
	}

	allowedTargets, exists := transitions[l.Status]
	if !exists {
		return false
	}

	for _, allowed := range allowedTargets {
		if allowed == target {
			return true
		}
	}
	return false
}

// TransitionTo 状态转换
// 先校验是否允许(业务规则),转换成功更新UpdatedAt(审计追踪)
func (l *Loan) TransitionTo(target Status) error {
	if !l.CanTransitionTo(target) {
		return ErrInvalidTransition
	}
	l.Status = target
	l.UpdatedAt = time.Now()
	return nil
}

// IsOwnedBy 检查借阅单是否属于指定读者
// 权限校验用,防止读者操作他人的借阅单
func (l *Loan) IsOwnedBy(userID uint) bool {
	return l.BorrowerID == userID
}

// IsOverdue 是否逾期(借出中且已过应还时间)
func (l *Loan) IsOverdue(now time.Time) bool {
	return l.Status == StatusActive && now.After(l.DueAt)
}

// BookIDs 返回明细涉及的图书ID(保持明细顺序)
func (l *Loan) BookIDs() []uint {
	ids := make([]uint, len(l.Lines))
	for i, line := range l.Lines {
		ids[i] = line.BookID
	}
	return ids
}
