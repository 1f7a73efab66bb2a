package mysql

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/library/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明:
// 1. 使用GORM v2作为ORM框架
// 2. 配置连接池参数(MaxOpenConns、MaxIdleConns、ConnMaxLifetime)
// 3. 开发环境开启SQL日志,生产环境关闭
// 4. 自动迁移表结构(AutoMigrate)
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	// 1. 构建DSN连接字符串
	dsn := cfg.Database.DSN()

	// 2. 配置GORM日志
	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info // 开发环境打印SQL
	}

	// 3. 连接数据库
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	// 4. 配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	// 5. 测试连接
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	log.Println("✓ 数据库连接成功")

	// 6. 自动迁移表结构(开发环境)
	// 注意:生产环境应使用专门的迁移工具(如golang-migrate)
	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

// autoMigrate 自动迁移表结构
// 学习要点:
// 1. AutoMigrate只会创建表、添加字段,不会删除或修改现有字段
// 2. 生产环境应使用版本化的迁移脚本,不要依赖AutoMigrate
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&BookModel{},
		&LoanModel{},
		&LoanLineModel{},
		&ReturnModel{},
	)
}

// UserModel GORM用户模型
// 设计说明:
// 1. 这是infrastructure层的数据模型,包含GORM tag
// 2. domain/user/entity.go是领域实体,不依赖GORM
// 3. Repository负责两者之间的转换
type UserModel struct {
	ID        uint           `gorm:"primaryKey"`
	Email     string         `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Password  string         `gorm:"size:255;not null;comment:密码(bcrypt加密)"`
	Name      string         `gorm:"size:50;not null;comment:姓名"`
	Role      string         `gorm:"size:20;not null;default:member;comment:角色(member/admin)"`
	CreatedAt time.Time      `gorm:"comment:创建时间"`
	UpdatedAt time.Time      `gorm:"comment:更新时间"`
	DeletedAt gorm.DeletedAt `gorm:"index;comment:删除时间(软删除)"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// BookModel GORM图书模型
// 设计说明:
// 1. Stock是当前可借副本数,Available为派生列(stock > 0)
//    每次库存UPDATE同时重算available,两列永远一致
// 2. ISBN有唯一索引,防止重复
// 3. 库存列只允许借阅生命周期的Reserve/Release语句修改
type BookModel struct {
	ID          uint           `gorm:"primaryKey"`
	ISBN        string         `gorm:"uniqueIndex;size:20;not null;comment:ISBN号"`
	Title       string         `gorm:"index:idx_search;size:200;not null;comment:书名"`
	Author      string         `gorm:"index:idx_search;size:100;not null;comment:作者"`
	Publisher   string         `gorm:"size:100;not null;comment:出版社"`
	Stock       int            `gorm:"not null;default:0;comment:可借副本数"`
	Available   bool           `gorm:"index;not null;default:false;comment:是否可借(stock>0)"`
	Description string         `gorm:"type:text;comment:图书描述"`
	CreatedAt   time.Time      `gorm:"index;comment:创建时间"`
	UpdatedAt   time.Time      `gorm:"comment:更新时间"`
	DeletedAt   gorm.DeletedAt `gorm:"index;comment:删除时间(软删除)"`
}

// TableName 指定表名
func (BookModel) TableName() string {
	return "books"
}

// LoanModel GORM借阅单模型
// 教学要点:
// 1. 与LoanLineModel是一对多关系,与ReturnModel是一对一关系
// 2. Status使用tinyint存储(节省空间,便于索引)
// 3. 借阅驳回时物理删除(连同明细),故不加软删除列
type LoanModel struct {
	ID         uint            `gorm:"primaryKey"`
	BorrowerID uint            `gorm:"index;not null;comment:读者用户ID"`
	BorrowedAt time.Time       `gorm:"not null;comment:申请借阅时间"`
	DueAt      time.Time       `gorm:"index;not null;comment:应归还时间"`
	Status     int             `gorm:"index;type:tinyint;default:1;comment:状态(1待审批2借出中3待归还审批4已完结5已驳回)"`
	Lines      []LoanLineModel `gorm:"foreignKey:LoanID"` // 一对多关联
	Return     *ReturnModel    `gorm:"foreignKey:LoanID"` // 一对一关联
	CreatedAt  time.Time       `gorm:"index;comment:创建时间"`
	UpdatedAt  time.Time       `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (LoanModel) TableName() string {
	return "loans"
}

// LoanLineModel GORM借阅明细模型
// 教学要点:
// 1. 一条明细代表一本被预定/借出的副本
// 2. LoanID外键关联loans表
type LoanLineModel struct {
	ID     uint `gorm:"primaryKey"`
	LoanID uint `gorm:"index;not null;comment:借阅单ID"`
	BookID uint `gorm:"index;not null;comment:图书ID"`
}

// TableName 指定表名
func (LoanLineModel) TableName() string {
	return "loan_lines"
}

// ReturnModel GORM归还记录模型
// 设计说明:
// 1. LoanID唯一索引:每张借阅单至多一条归还记录,
//    驳回后再次归还是就地UPDATE,不插第二条
// 2. 审批标记展开为三列(status/admin_id/reason),
//    不用负数admin_id之类的哨兵值
type ReturnModel struct {
	ID             uint      `gorm:"primaryKey"`
	LoanID         uint      `gorm:"uniqueIndex;not null;comment:借阅单ID"`
	ReturnedAt     time.Time `gorm:"not null;comment:归还申请时间"`
	DaysOverdue    int       `gorm:"not null;default:0;comment:逾期天数"`
	Fine           int64     `gorm:"not null;default:0;comment:罚金(分)"`
	ApprovalStatus int       `gorm:"index;type:tinyint;default:1;comment:审批状态(1待审批2已通过3已驳回)"`
	AdminID        uint      `gorm:"default:0;comment:审批管理员ID"`
	Reason         string    `gorm:"size:255;comment:驳回原因"`
	CreatedAt      time.Time `gorm:"comment:创建时间"`
	UpdatedAt      time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (ReturnModel) TableName() string {
	return "returns"
}
