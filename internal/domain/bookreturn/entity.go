package bookreturn

import (
	"time"
)

// 罚金策略常量
// 说明:逾期罚金按天计收,固定费率,不做配置项(费率调整属于业务决策,改代码发版)
const (
	// FinePerDay 每逾期一天的罚金(单位:分)
	FinePerDay int64 = 1000
)

// ApprovalStatus 归还审批状态
// 设计说明:
// 1. 显式的三态枚举:待审/通过/驳回
// 2. 不用"负数admin_id表示驳回"之类的哨兵值重载,
//    驳回时AdminID照常记录审批人,Reason记录驳回原因
type ApprovalStatus int

const (
	ApprovalPending  ApprovalStatus = 1 // 待管理员审批
	ApprovalApproved ApprovalStatus = 2 // 审批通过
	ApprovalRejected ApprovalStatus = 3 // 审批驳回
)

// String 实现Stringer接口(方便日志输出)
func (s ApprovalStatus) String() string {
	switch s {
	case ApprovalPending:
		return "待审批"
	case ApprovalApproved:
		return "已通过"
	case ApprovalRejected:
		return "已驳回"
	default:
		return "未知状态"
	}
}

// Approval 审批标记(带审批人与驳回原因的标签值)
type Approval struct {
	Status  ApprovalStatus
	AdminID uint   // 审批管理员ID(Pending时为0)
	Reason  string // 驳回原因(仅Rejected时有值)
}

// Approved 构造"通过"标记
func Approved(adminID uint) Approval {
	return Approval{Status: ApprovalApproved, AdminID: adminID}
}

// Rejected 构造"驳回"标记
func Rejected(adminID uint, reason string) Approval {
	if reason == "" {
		reason = "管理员驳回归还申请"
	}
	return Approval{Status: ApprovalRejected, AdminID: adminID, Reason: reason}
}

// Pending 构造"待审批"标记
func Pending() Approval {
	return Approval{Status: ApprovalPending}
}

// Return 归还实体
// 设计说明:
// 1. 每张借阅单至多一条归还记录(loan_id唯一索引)
// 2. 归还被驳回后读者可再次发起归还,此时就地更新本记录
//    (刷新时间与罚金,审批标记复位为Pending),不产生第二条记录
type Return struct {
	ID          uint
	LoanID      uint      // 所属借阅单ID
	ReturnedAt  time.Time // 本次归还申请时间
	DaysOverdue int       // 逾期天数(申请时点计算)
	Fine        int64     // 罚金(分)
	Approval    Approval  // 审批标记
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewReturn 创建归还记录(工厂方法)
// 罚金由调用方按当前时钟计算后传入
func NewReturn(loanID uint, returnedAt time.Time, daysOverdue int, fine int64) *Return {
	now := time.Now()
	return &Return{
		LoanID:      loanID,
		ReturnedAt:  returnedAt,
		DaysOverdue: daysOverdue,
		Fine:        fine,
		Approval:    Pending(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Renew 再次发起归还(驳回后的重试)
// 罚金与逾期天数按当前时钟重算,审批标记复位为待审
func (r *Return) Renew(returnedAt time.Time, daysOverdue int, fine int64) {
	r.ReturnedAt = returnedAt
	r.DaysOverdue = daysOverdue
	r.Fine = fine
	r.Approval = Pending()
	r.UpdatedAt = time.Now()
}

// CalculateFine 计算逾期罚金(纯函数)
//
// daysOverdue = max(0, ceil((now - due) / 1天))
// fine = daysOverdue * FinePerDay
//
// 到期瞬间归还罚金为0;之后每进入新的一天(不足一天按一天计)罚金加一档。
// 每次(重新)申请归还都以当前时刻重算,不沿用首次申请时的数值。
func CalculateFine(dueAt, now time.Time) (daysOverdue int, fine int64) {
	overdue := now.Sub(dueAt)
	if overdue <= 0 {
		return 0, 0
	}

	const day = 24 * time.Hour
	daysOverdue = int(overdue / day)
	if overdue%day != 0 {
		daysOverdue++ // 向上取整
	}

	return daysOverdue, int64(daysOverdue) * FinePerDay
}
