package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apploan "github.com/xiebiao/library/internal/application/loan"
	"github.com/xiebiao/library/internal/interface/http/dto"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/pkg/response"
)

// BorrowHandler 读者借阅HTTP处理器
// 读者侧操作:申请借阅、申请归还、查看书架
type BorrowHandler struct {
	requestBorrowUseCase *apploan.RequestBorrowUseCase
	requestReturnUseCase *apploan.RequestReturnUseCase
	bookshelfUseCase     *apploan.BookshelfUseCase
}

// NewBorrowHandler 创建借阅处理器
func NewBorrowHandler(
	requestBorrowUseCase *apploan.RequestBorrowUseCase,
	requestReturnUseCase *apploan.RequestReturnUseCase,
	bookshelfUseCase *apploan.BookshelfUseCase,
) *BorrowHandler {
	return &BorrowHandler{
		requestBorrowUseCase: requestBorrowUseCase,
		requestReturnUseCase: requestReturnUseCase,
		bookshelfUseCase:     bookshelfUseCase,
	}
}

// RequestBorrow 申请借阅
// @Summary      申请借阅
// @Description  读者提交借阅申请,一次可借多本,等待管理员审批(申请阶段不占库存)
// @Tags         借阅模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.RequestBorrowRequest true "图书ID列表"
// @Success      200 {object} response.Response{data=dto.RequestBorrowResponse} "申请成功"
// @Failure      400 {object} response.Response "参数错误/无可借副本/存在未完结借阅"
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /loans [post]
func (h *BorrowHandler) RequestBorrow(c *gin.Context) {
	var req dto.RequestBorrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	borrowerID := middleware.MustGetUserID(c)

	result, err := h.requestBorrowUseCase.Execute(c.Request.Context(), apploan.RequestBorrowRequest{
		BorrowerID: borrowerID,
		BookIDs:    req.BookIDs,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.RequestBorrowResponse{
		LoanID:     result.LoanID,
		Label:      result.Label,
		BorrowedAt: result.BorrowedAt,
		DueAt:      result.DueAt,
	})
}

// RequestReturn 申请归还
// @Summary      申请归还
// @Description  读者对借出中的借阅单发起归还申请,返回按当前时间计算的罚金
// @Tags         借阅模块
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "借阅单ID"
// @Success      200 {object} response.Response{data=dto.ReturnResponse} "申请成功"
// @Failure      400 {object} response.Response "借阅单状态不允许此操作"
// @Failure      401 {object} response.Response "未登录"
// @Failure      403 {object} response.Response "借阅单不属于当前读者"
// @Failure      404 {object} response.Response "借阅单不存在"
// @Router       /loans/{id}/return [post]
func (h *BorrowHandler) RequestReturn(c *gin.Context) {
	loanID, err := parseIDParam(c)
	if err != nil {
		response.ErrorWithCode(c, 40900, "无效的借阅单ID")
		return
	}

	borrowerID := middleware.MustGetUserID(c)

	result, err := h.requestReturnUseCase.Execute(c.Request.Context(), apploan.RequestReturnRequest{
		LoanID:     loanID,
		BorrowerID: borrowerID,
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

// Bookshelf 读者书架
// @Summary      读者书架
// @Description  读者查看自己的借阅历史(标签、罚金、是否逾期)
// @Tags         借阅模块
// @Produce      json
// @Security     BearerAuth
// @Param        label query string false "标签筛选(如waiting for approval)"
// @Param        page query int false "页码" default(1)
// @Param        page_size query int false "每页数量" default(10)
// @Success      200 {object} response.Response "查询成功"
// @Failure      400 {object} response.Response "未知的状态筛选值"
// @Failure      401 {object} response.Response "未登录"
// @Router       /bookshelf [get]
func (h *BorrowHandler) Bookshelf(c *gin.Context) {
	var req dto.ListLoansRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	borrowerID := middleware.MustGetUserID(c)

	result, err := h.bookshelfUseCase.Execute(c.Request.Context(), apploan.BookshelfRequest{
		BorrowerID: borrowerID,
		Label:      req.Label,
		Page:       req.Page,
		PageSize:   req.PageSize,
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

// parseIDParam 解析路径中的:id参数
func parseIDParam(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
