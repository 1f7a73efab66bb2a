package handler

import (
	"github.com/gin-gonic/gin"

	apploan "github.com/xiebiao/library/internal/application/loan"
	"github.com/xiebiao/library/internal/interface/http/dto"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/pkg/response"
)

// AdminHandler 管理端HTTP处理器
// 管理员侧操作:审批/驳回借阅、审批/驳回归还、借阅单列表、统计看板
type AdminHandler struct {
	approveBorrowUseCase *apploan.ApproveBorrowUseCase
	rejectBorrowUseCase  *apploan.RejectBorrowUseCase
	approveReturnUseCase *apploan.ApproveReturnUseCase
	rejectReturnUseCase  *apploan.RejectReturnUseCase
	listRequestsUseCase  *apploan.ListRequestsUseCase
	statisticsUseCase    *apploan.StatisticsUseCase
}

// NewAdminHandler 创建管理端处理器
func NewAdminHandler(
	approveBorrowUseCase *apploan.ApproveBorrowUseCase,
	rejectBorrowUseCase *apploan.RejectBorrowUseCase,
	approveReturnUseCase *apploan.ApproveReturnUseCase,
	rejectReturnUseCase *apploan.RejectReturnUseCase,
	listRequestsUseCase *apploan.ListRequestsUseCase,
	statisticsUseCase *apploan.StatisticsUseCase,
) *AdminHandler {
	return &AdminHandler{
		approveBorrowUseCase: approveBorrowUseCase,
		rejectBorrowUseCase:  rejectBorrowUseCase,
		approveReturnUseCase: approveReturnUseCase,
		rejectReturnUseCase:  rejectReturnUseCase,
		listRequestsUseCase:  listRequestsUseCase,
		statisticsUseCase:    statisticsUseCase,
	}
}

// ApproveBorrow 审批借阅
// @Summary      审批借阅
// @Description  管理员批准借阅申请,逐本扣减库存;任何一本无货则整体失败
// @Tags         管理端
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "借阅单ID"
// @Success      200 {object} response.Response{data=dto.TransitionResponse} "审批成功"
// @Failure      400 {object} response.Response "状态不允许/无可借副本"
// @Failure      403 {object} response.Response "无管理员权限"
// @Failure      404 {object} response.Response "借阅单不存在"
// @Router       /admin/loans/{id}/approve [post]
func (h *AdminHandler) ApproveBorrow(c *gin.Context) {
	loanID, err := parseIDParam(c)
	if err != nil {
		response.ErrorWithCode(c, 40900, "无效的借阅单ID")
		return
	}

	result, err := h.approveBorrowUseCase.Execute(c.Request.Context(), apploan.ApproveBorrowRequest{
		LoanID: loanID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.TransitionResponse{
		LoanID: result.LoanID,
		Label:  result.Label,
	})
}

// RejectBorrow 驳回借阅
// @Summary      驳回借阅
// @Description  管理员驳回待审批的借阅申请(申请从未占库存,直接清除)
// @Tags         管理端
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "借阅单ID"
// @Success      200 {object} response.Response{data=dto.TransitionResponse} "驳回成功"
// @Failure      400 {object} response.Response "状态不允许此操作"
// @Failure      403 {object} response.Response "无管理员权限"
// @Failure      404 {object} response.Response "借阅单不存在"
// @Router       /admin/loans/{id}/reject [post]
func (h *AdminHandler) RejectBorrow(c *gin.Context) {
	loanID, err := parseIDParam(c)
	if err != nil {
		response.ErrorWithCode(c, 40900, "无效的借阅单ID")
		return
	}

	result, err := h.rejectBorrowUseCase.Execute(c.Request.Context(), apploan.RejectBorrowRequest{
		LoanID: loanID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.TransitionResponse{
		LoanID: result.LoanID,
		Label:  result.Label,
	})
}

// ApproveReturn 审批归还
// @Summary      审批归还
// @Description  管理员批准归还申请,逐本归还库存,借阅单完结
// @Tags         管理端
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "借阅单ID"
// @Success      200 {object} response.Response{data=dto.ReturnResponse} "审批成功"
// @Failure      400 {object} response.Response "状态不允许此操作"
// @Failure      403 {object} response.Response "无管理员权限"
// @Failure      404 {object} response.Response "借阅单/归还记录不存在"
// @Router       /admin/loans/{id}/return/approve [post]
func (h *AdminHandler) ApproveReturn(c *gin.Context) {
	loanID, err := parseIDParam(c)
	if err != nil {
		response.ErrorWithCode(c, 40900, "无效的借阅单ID")
		return
	}

	adminID := middleware.MustGetUserID(c)

	result, err := h.approveReturnUseCase.Execute(c.Request.Context(), apploan.ApproveReturnRequest{
		LoanID:  loanID,
		AdminID: adminID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.ReturnResponse{
		LoanID:      result.LoanID,
		Label:       result.Label,
		DaysOverdue: result.DaysOverdue,
		Fine:        result.Fine,
	})
}

// RejectReturn 驳回归还
// @Summary      驳回归还
// @Description  管理员驳回归还申请,借阅单回到借出中,库存不动,读者可再次申请
// @Tags         管理端
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "借阅单ID"
// @Param        request body dto.RejectReturnRequest false "驳回原因"
// @Success      200 {object} response.Response{data=dto.RejectReturnResponse} "驳回成功"
// @Failure      400 {object} response.Response "状态不允许此操作"
// @Failure      403 {object} response.Response "无管理员权限"
// @Failure      404 {object} response.Response "借阅单不存在"
// @Router       /admin/loans/{id}/return/reject [post]
func (h *AdminHandler) RejectReturn(c *gin.Context) {
	loanID, err := parseIDParam(c)
	if err != nil {
		response.ErrorWithCode(c, 40900, "无效的借阅单ID")
		return
	}

	// 驳回原因可选,空body也允许
	var req dto.RejectReturnRequest
	_ = c.ShouldBindJSON(&req)

	adminID := middleware.MustGetUserID(c)

	result, err := h.rejectReturnUseCase.Execute(c.Request.Context(), apploan.RejectReturnRequest{
		LoanID:  loanID,
		AdminID: adminID,
		Reason:  req.Reason,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.RejectReturnResponse{
		LoanID: result.LoanID,
		Label:  result.Label,
		Reason: result.Reason,
	})
}

// ListLoans 借阅单列表
// @Summary      借阅单列表
// @Description  管理员查看全部借阅单,可按派生标签筛选
// @Tags         管理端
// @Produce      json
// @Security     BearerAuth
// @Param        label query string false "标签筛选(如waiting for approval)"
// @Param        page query int false "页码" default(1)
// @Param        page_size query int false "每页数量" default(10)
// @Success      200 {object} response.Response "查询成功"
// @Failure      400 {object} response.Response "未知的状态筛选值"
// @Failure      403 {object} response.Response "无管理员权限"
// @Router       /admin/loans [get]
func (h *AdminHandler) ListLoans(c *gin.Context) {
	var req dto.ListLoansRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.listRequestsUseCase.Execute(c.Request.Context(), apploan.ListRequestsRequest{
		Label:    req.Label,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = 10
	}
	response.SuccessWithPage(c, result.Loans, result.Total, page, pageSize)
}

// Statistics 借阅统计
// @Summary      借阅统计
// @Description  按派生标签分桶统计借阅单数量(看板)
// @Tags         管理端
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response "查询成功"
// @Failure      403 {object} response.Response "无管理员权限"
// @Router       /admin/statistics [get]
func (h *AdminHandler) Statistics(c *gin.Context) {
	result, err := h.statisticsUseCase.Execute(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
