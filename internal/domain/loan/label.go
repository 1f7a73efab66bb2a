package loan

import (
	"github.com/xiebiao/library/internal/domain/bookreturn"
)

// 借阅单对外状态标签
// 说明:API返回给客户端的人类可读标签,读者端与管理端共用同一套派生逻辑。
// 标签由Loan.Status加归还审批标记派生,所有读路径统一调用Label,
// 禁止各自用"是否存在归还记录/某字段是否为空"就地推断(口径会漂移)
const (
	LabelWaitingApproval        = "waiting for approval"
	LabelBorrowed               = "borrowed"
	LabelBorrowedReturnRejected = "borrowed (return rejected)"
	LabelWaitingReturnApproval  = "waiting for return approval"
	LabelCompleted              = "completed"
	LabelRejected               = "rejected"
)

// Label 派生状态标签(纯函数)
//
//	Requested                     -> waiting for approval
//	Active + 无归还记录            -> borrowed
//	Active + 归还记录已驳回        -> borrowed (return rejected)
//	ReturnRequested               -> waiting for return approval
//	Completed                     -> completed
//	Rejected                      -> rejected
func Label(status Status, ret *bookreturn.Return) string {
	switch status {
	case StatusRequested:
		return LabelWaitingApproval
	case StatusActive:
		if ret != nil && ret.Approval.Status == bookreturn.ApprovalRejected {
			return LabelBorrowedReturnRejected
		}
		return LabelBorrowed
	case StatusReturnRequested:
		return LabelWaitingReturnApproval
	case StatusCompleted:
		return LabelCompleted
	case StatusRejected:
		return LabelRejected
	default:
		return ""
	}
}

// Label 借阅单实体的标签(基于查询路径填充的Return字段)
func (l *Loan) Label() string {
	return Label(l.Status, l.Return)
}

// AllLabels 全部合法标签(统计报表按此顺序输出)
func AllLabels() []string {
	return []string{
		LabelWaitingApproval,
		LabelBorrowed,
		LabelBorrowedReturnRejected,
		LabelWaitingReturnApproval,
		LabelCompleted,
		LabelRejected,
	}
}

// LabelFilter 标签筛选条件(类型化的查询谓词)
// 设计说明:
// 1. 筛选键是枚举的标签集合,不接受任意字符串拼进SQL
// 2. ReturnRejected用于区分borrowed与borrowed (return rejected)
//    (两者Loan.Status同为Active),nil表示不限
type LabelFilter struct {
	Status         Status
	ReturnRejected *bool
}

// ParseLabelFilter 解析标签筛选键
// 未知的键返回ErrUnknownLabelFilter(参数错误,不是查无结果)
func ParseLabelFilter(label string) (LabelFilter, error) {
	boolPtr := func(b bool) *bool { return &b }

	switch label {
	case LabelWaitingApproval:
		return LabelFilter{Status: StatusRequested}, nil
	case LabelBorrowed:
		return LabelFilter{Status: StatusActive, ReturnRejected: boolPtr(false)}, nil
	case LabelBorrowedReturnRejected:
		return LabelFilter{Status: StatusActive, ReturnRejected: boolPtr(true)}, nil
	case LabelWaitingReturnApproval:
		return LabelFilter{Status: StatusReturnRequested}, nil
	case LabelCompleted:
		return LabelFilter{Status: StatusCompleted}, nil
	case LabelRejected:
		return LabelFilter{Status: StatusRejected}, nil
	default:
		return LabelFilter{}, ErrUnknownLabelFilter
	}
}
