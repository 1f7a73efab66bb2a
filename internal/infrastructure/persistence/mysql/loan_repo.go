package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/library/internal/domain/bookreturn"
	"github.com/xiebiao/library/internal/domain/loan"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// loanRepository 借阅单仓储实现(MySQL)
// 教学要点:
// 1. Loan和LoanLine是聚合关系,必须一起保存
// 2. 查询时使用Preload预加载明细与归还记录,避免N+1问题
// 3. 事务通过context传递
// 4. UpdateStatus是CAS语义:WHERE带上期望原状态,
//    并发流转时后到者RowsAffected=0,返回ErrInvalidTransition
type loanRepository struct {
	db *gorm.DB
}

// NewLoanRepository 创建借阅单仓储
func NewLoanRepository(db *gorm.DB) loan.Repository {
	return &loanRepository{db: db}
}

// Create 创建借阅单
// 教学要点:GORM会自动保存关联的Lines(通过foreignKey)
func (r *loanRepository) Create(ctx context.Context, l *loan.Loan) error {
	model := toLoanModel(l)

	db := r.getDB(ctx)
	if err := db.Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建借阅单失败")
	}

	// 回填自增ID
	l.ID = model.ID
	for i := range l.Lines {
		l.Lines[i].ID = model.Lines[i].ID
		l.Lines[i].LoanID = model.ID
	}

	return nil
}

// FindByID 根据ID查找借阅单
// 教学要点:Preload("Lines")和Preload("Return")避免N+1查询
func (r *loanRepository) FindByID(ctx context.Context, id uint) (*loan.Loan, error) {
	var model LoanModel
	db := r.getDB(ctx)

	err := db.Preload("Lines").Preload("Return").First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, loan.ErrLoanNotFound
		}
		return nil, apperrors.Wrap(err, "查询借阅单失败")
	}

	return toLoanEntity(&model), nil
}

// LockByID 悲观锁查询借阅单(SELECT ... FOR UPDATE)
// 说明:
// 1. 只对loans行加锁,明细/归还记录随后普通查询加载
//    (它们只通过借阅单流转修改,锁住聚合根即串行化了整个聚合)
// 2. 必须在事务内调用
func (r *loanRepository) LockByID(ctx context.Context, id uint) (*loan.Loan, error) {
	var model LoanModel
	db := r.getDB(ctx)

	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, loan.ErrLoanNotFound
		}
		return nil, apperrors.Wrap(err, "锁定借阅单失败")
	}

	// 加载明细与归还记录(同事务内)
	if err := db.Where("loan_id = ?", id).Find(&model.Lines).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询借阅明细失败")
	}
	var ret ReturnModel
	err = db.Where("loan_id = ?", id).First(&ret).Error
	if err == nil {
		model.Return = &ret
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(err, "查询归还记录失败")
	}

	return toLoanEntity(&model), nil
}

// UpdateStatus 状态CAS更新
// UPDATE loans SET status = to WHERE id = ? AND status = from
// 教学要点:WHERE带期望原状态,并发流转时只有一个请求能命中行,
// 另一个RowsAffected=0——被拒绝而不是被静默覆盖
func (r *loanRepository) UpdateStatus(ctx context.Context, id uint, from, to loan.Status) error {
	db := r.getDB(ctx)
	result := db.Model(&LoanModel{}).
		Where("id = ?", id).
		Where("status = ?", int(from)).
		Update("status", int(to))

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新借阅单状态失败")
	}

	if result.RowsAffected == 0 {
		// 可能是借阅单不存在,或者状态已被并发流转
		var model LoanModel
		if err := db.First(&model, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return loan.ErrLoanNotFound
			}
			return apperrors.Wrap(err, "查询借阅单失败")
		}
		return loan.ErrInvalidTransition
	}

	return nil
}

// Delete 物理删除借阅单及其明细
// 仅用于驳回从未生效(Requested)的申请,此时不存在归还记录
func (r *loanRepository) Delete(ctx context.Context, id uint) error {
	db := r.getDB(ctx)

	if err := db.Where("loan_id = ?", id).Delete(&LoanLineModel{}).Error; err != nil {
		return apperrors.Wrap(err, "删除借阅明细失败")
	}

	result := db.Delete(&LoanModel{}, id)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除借阅单失败")
	}
	if result.RowsAffected == 0 {
		return loan.ErrLoanNotFound
	}

	return nil
}

// ListByBorrower 查询读者的借阅历史
func (r *loanRepository) ListByBorrower(ctx context.Context, borrowerID uint, filter loan.ListFilter) ([]*loan.Loan, int64, error) {
	filter.BorrowerID = borrowerID
	return r.List(ctx, filter)
}

// List 列表查询(管理端全量/读者书架共用)
// 教学要点:筛选条件全部来自类型化的ListFilter,
// 标签筛选由applyLabelFilter翻译为状态列+EXISTS子查询,不拼原始SQL片段
func (r *loanRepository) List(ctx context.Context, filter loan.ListFilter) ([]*loan.Loan, int64, error) {
	var models []LoanModel
	var total int64

	db := r.getDB(ctx)
	query := db.Model(&LoanModel{})

	if filter.BorrowerID != 0 {
		query = query.Where("borrower_id = ?", filter.BorrowerID)
	}
	query = applyLabelFilter(query, filter.Label)

	// 查询总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询借阅单总数失败")
	}

	// 分页查询(包含明细与归还记录)
	page, pageSize := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	offset := (page - 1) * pageSize

	err := query.Preload("Lines").Preload("Return").
		Order("created_at DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&models).Error

	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询借阅单列表失败")
	}

	loans := make([]*loan.Loan, len(models))
	for i, model := range models {
		loans[i] = toLoanEntity(&model)
	}

	return loans, total, nil
}

// CountActiveByBorrowerAndBooks 统计读者对指定图书的未完结借阅明细数
// 未完结 = 待审批/借出中/待归还审批,用于防止同一读者重复借阅同一本书
func (r *loanRepository) CountActiveByBorrowerAndBooks(ctx context.Context, borrowerID uint, bookIDs []uint) (int64, error) {
	var count int64
	db := r.getDB(ctx)

	err := db.Model(&LoanLineModel{}).
		Joins("JOIN loans ON loans.id = loan_lines.loan_id").
		Where("loans.borrower_id = ?", borrowerID).
		Where("loans.status IN ?", []int{
			int(loan.StatusRequested),
			int(loan.StatusActive),
			int(loan.StatusReturnRequested),
		}).
		Where("loan_lines.book_id IN ?", bookIDs).
		Count(&count).Error

	if err != nil {
		return 0, apperrors.Wrap(err, "查询未完结借阅失败")
	}

	return count, nil
}

// CountByStatus 按状态统计借阅单数量
func (r *loanRepository) CountByStatus(ctx context.Context) (map[loan.Status]int64, error) {
	type row struct {
		Status int
		Count  int64
	}
	var rows []row

	db := r.getDB(ctx)
	err := db.Model(&LoanModel{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error

	if err != nil {
		return nil, apperrors.Wrap(err, "统计借阅单失败")
	}

	counts := make(map[loan.Status]int64, len(rows))
	for _, r := range rows {
		counts[loan.Status(r.Status)] = r.Count
	}
	return counts, nil
}

// CountActiveWithRejectedReturn 统计"借出中且归还被驳回"的借阅单数
func (r *loanRepository) CountActiveWithRejectedReturn(ctx context.Context) (int64, error) {
	var count int64
	db := r.getDB(ctx)

	err := db.Model(&LoanModel{}).
		Where("status = ?", int(loan.StatusActive)).
		Where("EXISTS (SELECT 1 FROM returns WHERE returns.loan_id = loans.id AND returns.approval_status = ?)",
			int(bookreturn.ApprovalRejected)).
		Count(&count).Error

	if err != nil {
		return 0, apperrors.Wrap(err, "统计归还被驳回借阅单失败")
	}

	return count, nil
}

// applyLabelFilter 把标签筛选翻译为查询条件
// borrowed与borrowed (return rejected)共享Active状态,
// 用EXISTS子查询区分是否存在被驳回的归还记录
func applyLabelFilter(query *gorm.DB, f *loan.LabelFilter) *gorm.DB {
	if f == nil {
		return query
	}

	query = query.Where("status = ?", int(f.Status))

	if f.ReturnRejected != nil {
		cond := "EXISTS (SELECT 1 FROM returns WHERE returns.loan_id = loans.id AND returns.approval_status = ?)"
		if !*f.ReturnRejected {
			cond = "NOT " + cond
		}
		query = query.Where(cond, int(bookreturn.ApprovalRejected))
	}

	return query
}

// =========================================
// 辅助函数:模型转换
// =========================================

// toLoanModel 领域实体 → GORM模型
func toLoanModel(l *loan.Loan) *LoanModel {
	lines := make([]LoanLineModel, len(l.Lines))
	for i, line := range l.Lines {
		lines[i] = LoanLineModel{
			ID:     line.ID,
			LoanID: line.LoanID,
			BookID: line.BookID,
		}
	}

	return &LoanModel{
		ID:         l.ID,
		BorrowerID: l.BorrowerID,
		BorrowedAt: l.BorrowedAt,
		DueAt:      l.DueAt,
		Status:     int(l.Status),
		Lines:      lines,
		CreatedAt:  l.CreatedAt,
		UpdatedAt:  l.UpdatedAt,
	}
}

// toLoanEntity GORM模型 → 领域实体
func toLoanEntity(model *LoanModel) *loan.Loan {
	lines := make([]loan.LoanLine, len(model.Lines))
	for i, line := range model.Lines {
		lines[i] = loan.LoanLine{
			ID:     line.ID,
			LoanID: line.LoanID,
			BookID: line.BookID,
		}
	}

	l := &loan.Loan{
		ID:         model.ID,
		BorrowerID: model.BorrowerID,
		BorrowedAt: model.BorrowedAt,
		DueAt:      model.DueAt,
		Status:     loan.Status(model.Status),
		Lines:      lines,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}

	if model.Return != nil {
		l.Return = toReturnEntity(model.Return)
	}

	return l
}

// getDB 从context获取事务DB,如果没有则使用默认DB
// 教学要点:事务传递机制
func (r *loanRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value("tx").(*gorm.DB); ok {
		return tx
	}
	return r.db
}
