package handler

import (
	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/library/internal/application/book"
	"github.com/xiebiao/library/internal/interface/http/dto"
	"github.com/xiebiao/library/pkg/response"
)

// BookHandler 图书HTTP处理器
type BookHandler struct {
	addBookUseCase   *appbook.AddBookUseCase
	listBooksUseCase *appbook.ListBooksUseCase
}

// NewBookHandler 创建图书处理器
func NewBookHandler(
	addBookUseCase *appbook.AddBookUseCase,
	listBooksUseCase *appbook.ListBooksUseCase,
) *BookHandler {
	return &BookHandler{
		addBookUseCase:   addBookUseCase,
		listBooksUseCase: listBooksUseCase,
	}
}

// AddBook 图书入库
// @Summary      图书入库
// @Description  管理员录入新书(需要管理员权限)
// @Tags         图书模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.AddBookRequest true "图书信息"
// @Success      200 {object} response.Response{data=dto.BookResponse} "入库成功"
// @Failure      400 {object} response.Response "参数错误/ISBN已存在"
// @Failure      401 {object} response.Response "未登录"
// @Failure      403 {object} response.Response "无管理员权限"
// @Router       /admin/books [post]
func (h *BookHandler) AddBook(c *gin.Context) {
	var req dto.AddBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.addBookUseCase.Execute(c.Request.Context(), appbook.AddBookRequest{
		ISBN:        req.ISBN,
		Title:       req.Title,
		Author:      req.Author,
		Publisher:   req.Publisher,
		Stock:       req.Stock,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.BookResponse{
		ID:          result.ID,
		ISBN:        result.ISBN,
		Title:       result.Title,
		Author:      result.Author,
		Publisher:   result.Publisher,
		Stock:       result.Stock,
		Available:   result.Available,
		Description: result.Description,
		CreatedAt:   result.CreatedAt,
	})
}

// ListBooks 图书列表
// @Summary      图书列表
// @Description  分页查询图书目录,支持关键词搜索与只看可借
// @Tags         图书模块
// @Produce      json
// @Param        page query int false "页码" default(1)
// @Param        page_size query int false "每页数量" default(20)
// @Param        keyword query string false "搜索关键词"
// @Param        only_available query bool false "只看可借"
// @Success      200 {object} response.Response{data=dto.ListBooksResponse} "查询成功"
// @Router       /books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	var req dto.ListBooksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.listBooksUseCase.Execute(c.Request.Context(), appbook.ListBooksRequest{
		Page:          req.Page,
		PageSize:      req.PageSize,
		Keyword:       req.Keyword,
		OnlyAvailable: req.OnlyAvailable,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	list := make([]dto.BookListItem, len(result.List))
	for i, b := range result.List {
		list[i] = dto.BookListItem{
			ID:        b.ID,
			ISBN:      b.ISBN,
			Title:     b.Title,
			Author:    b.Author,
			Publisher: b.Publisher,
			Stock:     b.Stock,
			Available: b.Available,
			CreatedAt: b.CreatedAt,
		}
	}

	response.Success(c, &dto.ListBooksResponse{
		List:  list,
		Total: result.Total,
		Page:  result.Page,
		Size:  result.PageSize,
	})
}
