package book

import (
	"context"
)

// Repository 图书仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. ReserveStock/ReleaseStock是库存台账的唯一写入口,
//    必须与借阅单状态变更在同一事务中执行(通过context传递事务)
type Repository interface {
	// Create 创建图书
	Create(ctx context.Context, book *Book) error

	// FindByID 根据ID查找图书
	FindByID(ctx context.Context, id uint) (*Book, error)

	// FindByIDs 批量查找图书(借阅申请校验用)
	FindByIDs(ctx context.Context, ids []uint) ([]*Book, error)

	// FindByISBN 根据ISBN查找图书
	FindByISBN(ctx context.Context, isbn string) (*Book, error)

	// Update 更新图书信息(不含库存)
	Update(ctx context.Context, book *Book) error

	// List 分页查询图书列表
	List(ctx context.Context, params ListParams) ([]*Book, int64, error)

	// LockByID 悲观锁查询图书(SELECT ... FOR UPDATE)
	// 审批借阅/归还时锁定行,防止两次并发审批同时观察到stock>=1而超借
	LockByID(ctx context.Context, id uint) (*Book, error)

	// ReserveStock 预定一本副本(原子操作)
	// UPDATE中同时扣减stock并重算available;stock已为0时返回ErrOutOfStock
	ReserveStock(ctx context.Context, id uint) error

	// ReleaseStock 归还一本副本(原子操作)
	// 增加stock并无条件置available=true
	ReleaseStock(ctx context.Context, id uint) error
}

// ListParams 列表查询参数
type ListParams struct {
	Page          int    // 页码(从1开始)
	PageSize      int    // 每页数量
	Keyword       string // 搜索关键词(搜索标题、作者、出版社)
	OnlyAvailable bool   // 只看可借图书
}
