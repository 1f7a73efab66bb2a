package loan

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// 借阅领域错误定义
// 说明:统一复用pkg/errors的错误码,领域层只做别名,
// 接口层据此映射HTTP状态码
var (
	// ErrLoanNotFound 借阅单不存在
	ErrLoanNotFound = apperrors.ErrLoanNotFound

	// ErrInvalidTransition 非法状态流转(如重复审批、对终态操作)
	ErrInvalidTransition = apperrors.ErrInvalidTransition

	// ErrDuplicateActiveLoan 同一读者对同一本书已有未完结的借阅
	ErrDuplicateActiveLoan = apperrors.ErrDuplicateActiveLoan

	// ErrEmptyLines 借阅明细为空
	ErrEmptyLines = apperrors.New(apperrors.ErrCodeInvalidParams, "借阅明细不能为空")

	// ErrDuplicateBookInRequest 同一次申请中图书重复
	ErrDuplicateBookInRequest = apperrors.New(apperrors.ErrCodeInvalidParams, "同一次申请中图书不能重复")

	// ErrNotOwner 借阅单不属于当前读者
	ErrNotOwner = apperrors.New(apperrors.ErrCodeForbidden, "无权操作他人的借阅单")

	// ErrUnknownLabelFilter 未知的状态标签筛选值
	ErrUnknownLabelFilter = apperrors.New(apperrors.ErrCodeInvalidParams, "未知的状态筛选值")
)
