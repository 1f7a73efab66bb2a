package book

import (
	"context"

	"github.com/xiebiao/library/internal/domain/book"
)

// AddBookUseCase 图书入库用例
// 设计说明:
// 1. 应用层负责用例编排,协调领域服务完成业务流程
// 2. 输入输出使用DTO(Data Transfer Object),与HTTP层解耦
// 3. 此用例比较简单,只需调用领域服务即可
type AddBookUseCase struct {
	bookService book.Service
}

// NewAddBookUseCase 创建入库用例
func NewAddBookUseCase(bookService book.Service) *AddBookUseCase {
	return &AddBookUseCase{
		bookService: bookService,
	}
}

// AddBookRequest 入库请求DTO
type AddBookRequest struct {
	ISBN        string // ISBN号
	Title       string // 书名
	Author      string // 作者
	Publisher   string // 出版社
	Stock       int    // 初始副本数
	Description string // 图书描述
}

// AddBookResponse 入库响应DTO
type AddBookResponse struct {
	ID          uint   `json:"id"`
	ISBN        string `json:"isbn"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Publisher   string `json:"publisher"`
	Stock       int    `json:"stock"`
	Available   bool   `json:"available"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
}

// Execute 执行入库用例
// 业务规则校验(ISBN格式、初始库存、ISBN唯一)由领域服务负责
func (uc *AddBookUseCase) Execute(ctx context.Context, req AddBookRequest) (*AddBookResponse, error) {
	b, err := uc.bookService.AddBook(
		ctx,
		req.ISBN,
		req.Title,
		req.Author,
		req.Publisher,
		req.Stock,
		req.Description,
	)
	if err != nil {
		return nil, err
	}

	return &AddBookResponse{
		ID:          b.ID,
		ISBN:        b.ISBN,
		Title:       b.Title,
		Author:      b.Author,
		Publisher:   b.Publisher,
		Stock:       b.Stock,
		Available:   b.Available,
		Description: b.Description,
		CreatedAt:   b.CreatedAt.Format("2006-01-02 15:04:05"),
	}, nil
}
