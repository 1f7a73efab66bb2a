package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/library/internal/domain/book"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// bookRepository 图书仓储实现(MySQL)
// 设计说明:
// 1. 实现domain/book/repository.go定义的接口
// 2. 负责domain实体与GORM模型之间的转换
// 3. 处理数据库特定的错误(如ISBN重复),转换为业务错误
// 4. 库存写入口只有ReserveStock/ReleaseStock两个,
//    都是单条UPDATE原子语句并同步重算available
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

// Create 创建图书
func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	model := &BookModel{
		ISBN:        b.ISBN,
		Title:       b.Title,
		Author:      b.Author,
		Publisher:   b.Publisher,
		Stock:       b.Stock,
		Available:   b.Stock > 0,
		Description: b.Description,
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		// 检查是否为ISBN重复错误
		if isDuplicateError(err) {
			return book.ErrISBNDuplicate
		}
		return apperrors.Wrap(err, "创建图书失败")
	}

	// 回填自增ID
	b.ID = model.ID
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt

	return nil
}

// FindByID 根据ID查找图书
func (r *bookRepository) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	err := r.getDB(ctx).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "查询图书失败")
	}

	return toBookEntity(&model), nil
}

// FindByIDs 批量查找图书
// 借阅申请校验用:有任何一个ID不存在即返回ErrBookNotFound
func (r *bookRepository) FindByIDs(ctx context.Context, ids []uint) ([]*book.Book, error) {
	var models []BookModel
	if err := r.getDB(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询图书失败")
	}

	if len(models) != len(ids) {
		return nil, book.ErrBookNotFound
	}

	books := make([]*book.Book, len(models))
	for i, model := range models {
		books[i] = toBookEntity(&model)
	}
	return books, nil
}

// FindByISBN 根据ISBN查找图书
func (r *bookRepository) FindByISBN(ctx context.Context, isbn string) (*book.Book, error) {
	var model BookModel
	err := r.getDB(ctx).Where("isbn = ?", isbn).First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "查询图书失败")
	}

	return toBookEntity(&model), nil
}

// Update 更新图书基本信息
// 注意:不更新stock/available,库存只走ReserveStock/ReleaseStock
func (r *bookRepository) Update(ctx context.Context, b *book.Book) error {
	result := r.getDB(ctx).Model(&BookModel{}).Where("id = ?", b.ID).Updates(map[string]interface{}{
		"title":       b.Title,
		"author":      b.Author,
		"publisher":   b.Publisher,
		"description": b.Description,
		"updated_at":  b.UpdatedAt,
	})

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新图书失败")
	}

	if result.RowsAffected == 0 {
		return book.ErrBookNotFound
	}

	return nil
}

// List 分页查询图书列表
func (r *bookRepository) List(ctx context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	var models []BookModel
	var total int64

	query := r.getDB(ctx).Model(&BookModel{})

	// 关键词搜索(搜索标题、作者、出版社)
	if params.Keyword != "" {
		keyword := "%" + params.Keyword + "%"
		query = query.Where("title LIKE ? OR author LIKE ? OR publisher LIKE ?", keyword, keyword, keyword)
	}

	// 只看可借
	if params.OnlyAvailable {
		query = query.Where("available = ?", true)
	}

	// 查询总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询图书总数失败")
	}

	// 分页
	offset := (params.Page - 1) * params.PageSize
	err := query.Order("created_at DESC").
		Limit(params.PageSize).
		Offset(offset).
		Find(&models).Error

	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询图书列表失败")
	}

	books := make([]*book.Book, len(models))
	for i, model := range models {
		books[i] = toBookEntity(&model)
	}

	return books, total, nil
}

// LockByID 悲观锁查询图书(SELECT ... FOR UPDATE)
// 教学要点:必须使用getDB(ctx)从context获取事务DB,持锁至事务结束
func (r *bookRepository) LockByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	db := r.getDB(ctx)
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "锁定图书失败")
	}

	return toBookEntity(&model), nil
}

// ReserveStock 预定一本副本(原子操作)
// UPDATE books SET stock = stock - 1, available = (stock - 1 > 0)
// WHERE id = ? AND stock >= 1
// 教学要点:
// 1. 扣减与available重算在同一条UPDATE里,两列永远一致
// 2. WHERE stock >= 1是最后防线:即使并发审批都观察到有货,
//    也只有一个UPDATE能命中行,另一个RowsAffected=0返回ErrOutOfStock
func (r *bookRepository) ReserveStock(ctx context.Context, id uint) error {
	db := r.getDB(ctx)
	result := db.Model(&BookModel{}).
		Where("id = ?", id).
		Where("stock >= 1").
		Updates(map[string]interface{}{
			"stock":     gorm.Expr("stock - 1"),
			"available": gorm.Expr("stock - 1 > 0"),
		})

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "扣减库存失败")
	}

	if result.RowsAffected == 0 {
		// 可能是图书不存在,或者无可借副本
		// 再查一次确定原因
		var model BookModel
		if err := db.First(&model, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return book.ErrBookNotFound
			}
			return apperrors.Wrap(err, "查询图书失败")
		}
		// 图书存在,说明是无可借副本
		return book.ErrOutOfStock
	}

	return nil
}

// ReleaseStock 归还一本副本(原子操作)
// 释放永远成功,归还后图书必然可借
func (r *bookRepository) ReleaseStock(ctx context.Context, id uint) error {
	db := r.getDB(ctx)
	result := db.Model(&BookModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock":     gorm.Expr("stock + 1"),
			"available": true,
		})

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "归还库存失败")
	}

	if result.RowsAffected == 0 {
		return book.ErrBookNotFound
	}

	return nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

// toBookEntity GORM模型 → 领域实体
func toBookEntity(model *BookModel) *book.Book {
	return &book.Book{
		ID:          model.ID,
		ISBN:        model.ISBN,
		Title:       model.Title,
		Author:      model.Author,
		Publisher:   model.Publisher,
		Stock:       model.Stock,
		Available:   model.Available,
		Description: model.Description,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

// getDB 从context获取事务DB,如果没有则使用默认DB
// 教学要点:事务传递机制
func (r *bookRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value("tx").(*gorm.DB); ok {
		return tx
	}
	return r.db
}
