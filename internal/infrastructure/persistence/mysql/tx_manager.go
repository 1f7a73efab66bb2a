package mysql

import (
	"context"

	"gorm.io/gorm"
)

// TxManager 事务管理器
// 教学要点:
// 1. 封装GORM的Transaction方法
// 2. 通过context传递事务DB(避免全局变量)
// 3. 支持嵌套事务(GORM自动使用Savepoint)
// 4. 借阅生命周期的每次状态流转都在一个Transaction里完成:
//    锁借阅单、锁图书、改状态、动库存要么全部生效要么全部回滚
type TxManager struct {
	db *gorm.DB
}

// NewTxManager 创建事务管理器
func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// Transaction 执行事务
// 教学要点:
// 1. fn函数内的所有Repository操作都会在同一事务中执行
// 2. fn返回error时自动ROLLBACK,返回nil时自动COMMIT
// 3. 通过context.WithValue传递事务DB
//
// 使用示例(审批借阅):
//
//	err := txManager.Transaction(ctx, func(ctx context.Context) error {
//	    // 1. 锁定借阅单
//	    l, err := loanRepo.LockByID(ctx, loanID)
//	    if err != nil {
//	        return err
//	    }
//	    // 2. 逐本锁定并扣减库存
//	    for _, line := range l.Lines {
//	        if err := bookRepo.ReserveStock(ctx, line.BookID); err != nil {
//	            return err // 自动回滚,已扣减的库存一并撤销
//	        }
//	    }
//	    // 3. 状态流转
//	    return loanRepo.UpdateStatus(ctx, loanID, loan.StatusRequested, loan.StatusActive)
//	})
func (m *TxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 将事务DB注入到Context中
		// Repository的getDB方法会从context提取事务DB
		txCtx := context.WithValue(ctx, "tx", tx)
		return fn(txCtx)
	})
}
