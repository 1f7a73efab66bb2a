package book

import (
	"time"
)

// Book 图书实体(聚合根)
// DDD设计说明:
// 1. Book是图书聚合的根实体,Stock是当前可借副本数
// 2. Available是派生字段,恒等于Stock > 0,
//    每次库存变化后必须重新计算(数据库层与实体层都遵守此约定)
// 3. ISBN作为业务唯一标识(数据库层保证唯一性)
// 4. 借阅生命周期之外的任何代码不得直接修改Stock/Available
type Book struct {
	ID          uint
	ISBN        string // ISBN号(国际标准书号)
	Title       string // 书名
	Author      string // 作者
	Publisher   string // 出版社
	Stock       int    // 可借副本数
	Available   bool   // 是否可借(== Stock > 0)
	Description string // 图书描述
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewBook 创建新图书(工厂方法)
func NewBook(isbn, title, author, publisher string, stock int, description string) *Book {
	now := time.Now()
	return &Book{
		ISBN:        isbn,
		Title:       title,
		Author:      author,
		Publisher:   publisher,
		Stock:       stock,
		Available:   stock > 0,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Reserve 预定一本副本(领域行为)
// 业务规则:库存为0时不可预定;预定后重算Available
func (b *Book) Reserve() error {
	if b.Stock <= 0 {
		return ErrOutOfStock
	}
	b.Stock--
	b.Available = b.Stock > 0
	b.UpdatedAt = time.Now()
	return nil
}

// Release 归还一本副本(领域行为)
// 说明:释放永远成功,归还后图书必然可借。
// 台账不持有预定归属,多放(over-release)属于调用方缺陷,
// 生命周期状态机保证每条借阅明细恰好配对一次Reserve/Release。
func (b *Book) Release() {
	b.Stock++
	b.Available = true
	b.UpdatedAt = time.Now()
}

// UpdateInfo 更新图书基本信息
// 注意:此方法不触碰Stock/Available(只有生命周期状态机能动库存)
func (b *Book) UpdateInfo(title, author, publisher, description string) {
	if title != "" {
		b.Title = title
	}
	if author != "" {
		b.Author = author
	}
	if publisher != "" {
		b.Publisher = publisher
	}
	if description != "" {
		b.Description = description
	}
	b.UpdatedAt = time.Now()
}
