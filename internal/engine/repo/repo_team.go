package repo

import (
	"context"

	"github.com/go-arcade/qaboard/internal/engine/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ITeamRepository interface {
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context) ([]model.TeamRow, error)
	ListIds(ctx context.Context) ([]int64, error)
	BatchUpsert(ctx context.Context, rows []model.TeamRow) error
	DeleteByIds(ctx context.Context, ids []int64) error
}

type TeamRepo struct {
	db *gorm.DB
}

func NewTeamRepo(db *gorm.DB) *TeamRepo {
	return &TeamRepo{db: db}
}

// Count 统计团队数量，兼作健康探测
func (r *TeamRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.TeamRow{}).Count(&n).Error; err != nil {
		return 0, errors.Wrap(err, "count teams")
	}
	return n, nil
}

// List 按 order 升序返回全部团队
func (r *TeamRepo) List(ctx context.Context) ([]model.TeamRow, error) {
	var rows []model.TeamRow
	err := r.db.WithContext(ctx).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "order"}}).
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "list teams")
	}
	return rows, nil
}

// ListIds 返回远端全部团队 id
func (r *TeamRepo) ListIds(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).Model(&model.TeamRow{}).Pluck("id", &ids).Error; err != nil {
		return nil, errors.Wrap(err, "list team ids")
	}
	return ids, nil
}

// BatchUpsert 以 id 为键批量写入，已存在的行整体覆盖
func (r *TeamRepo) BatchUpsert(ctx context.Context, rows []model.TeamRow) error {
	if len(rows) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "order", "is_pinned", "features", "updated_at"}),
		}).
		Create(&rows).Error
	return errors.Wrapf(err, "upsert %d teams", len(rows))
}

// DeleteByIds 删除指定团队
func (r *TeamRepo) DeleteByIds(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&model.TeamRow{}).Error
	return errors.Wrapf(err, "delete teams %v", ids)
}
