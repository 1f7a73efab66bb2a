package book

import (
	"context"
	"regexp"
)

// Service 图书领域服务接口
// 设计说明:
// 1. 封装目录(catalog)侧的业务规则校验:ISBN格式、初始库存、唯一性
// 2. 只负责目录维护,库存的借阅扣减/归还由生命周期状态机经Repository完成
type Service interface {
	// AddBook 图书入库(上架)
	// 业务规则:
	// - ISBN格式必须合法(10位或13位数字)
	// - 初始库存必须>=0
	// - ISBN不能重复
	AddBook(ctx context.Context, isbn, title, author, publisher string, stock int, description string) (*Book, error)

	// GetBookByID 根据ID获取图书详情
	GetBookByID(ctx context.Context, id uint) (*Book, error)

	// ListBooks 分页查询图书列表
	ListBooks(ctx context.Context, params ListParams) ([]*Book, int64, error)
}

// service 领域服务实现
type service struct {
	repo Repository
}

// NewService 创建图书领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// AddBook 图书入库
func (s *service) AddBook(ctx context.Context, isbn, title, author, publisher string, stock int, description string) (*Book, error) {
	// 1. ISBN格式校验
	if !isValidISBN(isbn) {
		return nil, ErrInvalidISBN
	}

	// 2. 库存校验
	if stock < 0 {
		return nil, ErrInvalidStock
	}

	// 3. 检查ISBN是否已存在(数据库唯一索引兜底)
	existing, err := s.repo.FindByISBN(ctx, isbn)
	if err == nil && existing != nil {
		return nil, ErrISBNDuplicate
	}
	if err != nil && err != ErrBookNotFound {
		return nil, err
	}

	// 4. 创建并持久化
	b := NewBook(isbn, title, author, publisher, stock, description)
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}

// GetBookByID 根据ID获取图书
func (s *service) GetBookByID(ctx context.Context, id uint) (*Book, error) {
	return s.repo.FindByID(ctx, id)
}

// ListBooks 分页查询图书列表
func (s *service) ListBooks(ctx context.Context, params ListParams) ([]*Book, int64, error) {
	return s.repo.List(ctx, params)
}

// isValidISBN 校验ISBN格式
// 支持ISBN-10与ISBN-13,允许带分隔符(978-7-115-42802-8)
// 简化实现:只检查位数和是否全为数字(生产环境应校验校验位)
func isValidISBN(isbn string) bool {
	re := regexp.MustCompile(`[^0-9]`)
	cleanISBN := re.ReplaceAllString(isbn, "")

	length := len(cleanISBN)
	return length == 10 || length == 13
}
