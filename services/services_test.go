package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/torikura/rosterbackend/database"
	"github.com/torikura/rosterbackend/notifications"
	"github.com/torikura/rosterbackend/replication"
)

func testLocation(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	return loc
}

func testClock(t *testing.T) TriggerClock {
	return TriggerClock{Location: testLocation(t), TriggerHour: 10}
}

// newTestDB opens a per-test in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrateModels(db))
	return db
}

func testDispatcher() *EffectDispatcher {
	return NewEffectDispatcher(replication.NoopSink{}, notifications.LogDispatcher{}, nil)
}

func strPtr(s string) *string {
	return &s
}

// failCreatesInto makes every insert into the given table error, simulating
// a storage failure partway through a multi-table transaction.
func failCreatesInto(t *testing.T, db *gorm.DB, table string) {
	t.Helper()
	err := db.Callback().Create().Before("gorm:create").Register("fail_"+table, func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			_ = tx.AddError(fmt.Errorf("simulated storage failure on %s", table))
		}
	})
	require.NoError(t, err)
}
