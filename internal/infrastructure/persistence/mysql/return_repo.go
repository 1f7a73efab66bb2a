package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/library/internal/domain/bookreturn"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// returnRepository 归还记录仓储实现(MySQL)
// 设计说明:
// 1. loan_id有唯一索引:每张借阅单至多一条归还记录
// 2. Upsert实现"驳回后重试"的就地更新语义
// 3. 所有写操作都在生命周期事务内调用(getDB从context取事务DB)
type returnRepository struct {
	db *gorm.DB
}

// NewReturnRepository 创建归还记录仓储
func NewReturnRepository(db *gorm.DB) bookreturn.Repository {
	return &returnRepository{db: db}
}

// Upsert 创建或更新归还记录
// 已存在同loan_id的记录时更新归还时间/罚金并把审批标记复位为Pending
func (r *returnRepository) Upsert(ctx context.Context, ret *bookreturn.Return) error {
	db := r.getDB(ctx)

	var existing ReturnModel
	err := db.Where("loan_id = ?", ret.LoanID).First(&existing).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		// 首次归还申请,插入新记录
		model := toReturnModel(ret)
		if err := db.Create(model).Error; err != nil {
			return apperrors.Wrap(err, "创建归还记录失败")
		}
		ret.ID = model.ID
		return nil
	}
	if err != nil {
		return apperrors.Wrap(err, "查询归还记录失败")
	}

	// 驳回后的再次申请,就地更新(不插第二条)
	result := db.Model(&ReturnModel{}).Where("loan_id = ?", ret.LoanID).Updates(map[string]interface{}{
		"returned_at":     ret.ReturnedAt,
		"days_overdue":    ret.DaysOverdue,
		"fine":            ret.Fine,
		"approval_status": int(bookreturn.ApprovalPending),
		"admin_id":        0,
		"reason":          "",
	})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新归还记录失败")
	}

	ret.ID = existing.ID
	return nil
}

// SetApproval 写入审批结果
func (r *returnRepository) SetApproval(ctx context.Context, loanID uint, approval bookreturn.Approval) error {
	db := r.getDB(ctx)

	result := db.Model(&ReturnModel{}).Where("loan_id = ?", loanID).Updates(map[string]interface{}{
		"approval_status": int(approval.Status),
		"admin_id":        approval.AdminID,
		"reason":          approval.Reason,
	})

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新审批结果失败")
	}

	if result.RowsAffected == 0 {
		return bookreturn.ErrReturnNotFound
	}

	return nil
}

// FindByLoanID 查询借阅单的归还记录
func (r *returnRepository) FindByLoanID(ctx context.Context, loanID uint) (*bookreturn.Return, error) {
	var model ReturnModel
	db := r.getDB(ctx)

	err := db.Where("loan_id = ?", loanID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bookreturn.ErrReturnNotFound
		}
		return nil, apperrors.Wrap(err, "查询归还记录失败")
	}

	return toReturnEntity(&model), nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

// toReturnModel 领域实体 → GORM模型
func toReturnModel(ret *bookreturn.Return) *ReturnModel {
	return &ReturnModel{
		ID:             ret.ID,
		LoanID:         ret.LoanID,
		ReturnedAt:     ret.ReturnedAt,
		DaysOverdue:    ret.DaysOverdue,
		Fine:           ret.Fine,
		ApprovalStatus: int(ret.Approval.Status),
		AdminID:        ret.Approval.AdminID,
		Reason:         ret.Approval.Reason,
		CreatedAt:      ret.CreatedAt,
		UpdatedAt:      ret.UpdatedAt,
	}
}

// toReturnEntity GORM模型 → 领域实体
func toReturnEntity(model *ReturnModel) *bookreturn.Return {
	return &bookreturn.Return{
		ID:          model.ID,
		LoanID:      model.LoanID,
		ReturnedAt:  model.ReturnedAt,
		DaysOverdue: model.DaysOverdue,
		Fine:        model.Fine,
		Approval: bookreturn.Approval{
			Status:  bookreturn.ApprovalStatus(model.ApprovalStatus),
			AdminID: model.AdminID,
			Reason:  model.Reason,
		},
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// getDB 从context获取事务DB,如果没有则使用默认DB
func (r *returnRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value("tx").(*gorm.DB); ok {
		return tx
	}
	return r.db
}
