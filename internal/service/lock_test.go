package service

import (
	"testing"

	"fasalbajar-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestLockForUpdate_EmitsRowLockOnPostgres(t *testing.T) {
	// DryRun builds SQL without touching a server
	pg, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  "host=localhost user=test dbname=test",
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	stmt := lockForUpdate(pg).Where("id = ?", "x").Find(&model.Product{}).Statement
	assert.Contains(t, stmt.SQL.String(), "FOR UPDATE")
}

func TestLockForUpdate_SkipsSQLite(t *testing.T) {
	db := newTestDB(t)

	stmt := lockForUpdate(db.Session(&gorm.Session{DryRun: true})).
		Where("id = ?", "x").Find(&model.Product{}).Statement
	assert.NotContains(t, stmt.SQL.String(), "FOR UPDATE")
}
