package repo

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/go-arcade/qaboard/internal/engine/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// dryRunDB builds statements without a server and records every generated SQL.
func dryRunDB(t *testing.T) (*gorm.DB, *[]string) {
	t.Helper()
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "u:p@tcp(127.0.0.1:1)/qa?parseTime=True",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	var statements []string
	capture := func(tx *gorm.DB) {
		statements = append(statements, tx.Statement.SQL.String())
	}
	require.NoError(t, db.Callback().Create().After("gorm:create").Register("test:capture_create", capture))
	require.NoError(t, db.Callback().Delete().After("gorm:delete").Register("test:capture_delete", capture))
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:capture_query", capture))
	return db, &statements
}

func TestTeamRepo_UpsertSQL(t *testing.T) {
	db, stmts := dryRunDB(t)
	r := NewTeamRepo(db)

	row, err := model.Team{Id: 7, Name: "Alpha"}.ToRow(time.Now())
	require.NoError(t, err)
	require.NoError(t, r.BatchUpsert(context.Background(), []model.TeamRow{row}))

	require.Len(t, *stmts, 1)
	sql := (*stmts)[0]
	assert.True(t, strings.HasPrefix(sql, "INSERT INTO `teams`"), sql)
	assert.Contains(t, sql, "ON DUPLICATE KEY UPDATE")
	assert.Contains(t, sql, "`order`=VALUES(`order`)")
	assert.Contains(t, sql, "`updated_at`=VALUES(`updated_at`)")
}

func TestTeamRepo_DeleteSQL(t *testing.T) {
	db, stmts := dryRunDB(t)
	r := NewTeamRepo(db)

	require.NoError(t, r.DeleteByIds(context.Background(), nil))
	assert.Empty(t, *stmts)

	require.NoError(t, r.DeleteByIds(context.Background(), []int64{1, 2}))
	require.Len(t, *stmts, 1)
	assert.Contains(t, (*stmts)[0], "DELETE FROM `teams` WHERE id IN (?,?)")
}

func TestVerificationRepo_InsertIgnoresDuplicates(t *testing.T) {
	db, stmts := dryRunDB(t)
	r := NewVerificationRepo(db, true)

	row, err := model.GlobalVerification{Id: "x", Timestamp: 1}.ToRow()
	require.NoError(t, err)
	require.NoError(t, r.Insert(context.Background(), row))

	require.Len(t, *stmts, 1)
	assert.Contains(t, (*stmts)[0], "INSERT IGNORE INTO `global_verifications`")
}

func TestVerificationRepo_ListOrder(t *testing.T) {
	db, stmts := dryRunDB(t)
	_, err := NewVerificationRepo(db, true).List(context.Background())
	require.NoError(t, err)
	require.Len(t, *stmts, 1)
	assert.Contains(t, (*stmts)[0], "ORDER BY timestamp DESC")
}
