package repo

import (
	"context"

	"github.com/go-arcade/qaboard/internal/engine/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type IVerificationRepository interface {
	Insert(ctx context.Context, row model.VerificationRow) error
	InsertMissing(ctx context.Context, rows []model.VerificationRow) (int, error)
	List(ctx context.Context) ([]model.VerificationRow, error)
}

// VerificationRepo 全局验证日志，只追加
type VerificationRepo struct {
	db *gorm.DB
	// ignoreDup 为 true 时用 INSERT IGNORE 吸收重试造成的重复写入；
	// ClickHouse 由 ReplacingMergeTree 去重
	ignoreDup bool
}

func NewVerificationRepo(db *gorm.DB, ignoreDup bool) *VerificationRepo {
	return &VerificationRepo{db: db, ignoreDup: ignoreDup}
}

func (r *VerificationRepo) session(ctx context.Context) *gorm.DB {
	db := r.db.WithContext(ctx)
	if r.ignoreDup {
		db = db.Clauses(clause.OnConflict{DoNothing: true})
	}
	return db
}

// Insert 写入一条日志
func (r *VerificationRepo) Insert(ctx context.Context, row model.VerificationRow) error {
	err := r.session(ctx).Create(&row).Error
	return errors.Wrapf(err, "insert verification %s", row.Id)
}

// InsertMissing 只写入远端尚不存在的条目，返回写入条数
func (r *VerificationRepo) InsertMissing(ctx context.Context, rows []model.VerificationRow) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.Id
	}

	var existing []string
	err := r.db.WithContext(ctx).Model(&model.VerificationRow{}).Where("id IN ?", ids).Pluck("id", &existing).Error
	if err != nil {
		return 0, errors.Wrap(err, "query existing verifications")
	}
	seen := make(map[string]struct{}, len(existing))
	for _, id := range existing {
		seen[id] = struct{}{}
	}

	missing := make([]model.VerificationRow, 0, len(rows))
	for _, row := range rows {
		if _, ok := seen[row.Id]; ok {
			continue
		}
		seen[row.Id] = struct{}{}
		missing = append(missing, row)
	}
	if len(missing) == 0 {
		return 0, nil
	}
	if err := r.session(ctx).Create(&missing).Error; err != nil {
		return 0, errors.Wrapf(err, "replay %d verifications", len(missing))
	}
	return len(missing), nil
}

// List 按时间倒序返回全部日志
func (r *VerificationRepo) List(ctx context.Context) ([]model.VerificationRow, error) {
	var rows []model.VerificationRow
	err := r.db.WithContext(ctx).Order("timestamp DESC").Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "list verifications")
	}
	return rows, nil
}
