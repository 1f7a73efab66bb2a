package bookreturn

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// 归还领域错误定义
var (
	// ErrReturnNotFound 归还记录不存在
	ErrReturnNotFound = apperrors.ErrReturnNotFound

	// ErrAlreadyDecided 审批标记已定(重复审批)
	ErrAlreadyDecided = apperrors.New(apperrors.ErrCodeBusinessError, "归还申请已审批过")
)
