package database

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/torikura/rosterbackend/models"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// ApprovedMinutesSince returns, per employee, the total approved schedule
// minutes between the two calendar dates inclusive. The upper bound keeps
// already-planned future slots out of the fairness history for shift
// assignment.
func ApprovedMinutesSince(db *sql.DB, sinceDate, untilDate string) (map[uint]int, error) {
	queryBuilder := psql.Select("employee_id", "COALESCE(SUM(duration_minutes), 0)").
		From(models.ScheduleSlot{}.TableName()).
		Where(sq.Eq{"status": models.SlotStatusApproved}).
		Where(sq.GtOrEq{"date": sinceDate}).
		Where(sq.LtOrEq{"date": untilDate}).
		GroupBy("employee_id")

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for ApprovedMinutesSince: %w", err)
	}

	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query approved minutes since %s: %w", sinceDate, err)
	}
	defer rows.Close()

	minutes := make(map[uint]int)
	for rows.Next() {
		var employeeID uint
		var total int
		if err := rows.Scan(&employeeID, &total); err != nil {
			return nil, fmt.Errorf("failed to scan approved minutes row: %w", err)
		}
		minutes[employeeID] = total
	}
	return minutes, rows.Err()
}

// PurgeStaleRequests deletes requested slots that are still pending or were
// rejected and are older than the cutoff. Returns the number of rows removed.
func PurgeStaleRequests(db *sql.DB, cutoff time.Time) (int64, error) {
	queryBuilder := psql.Delete(models.ScheduleSlot{}.TableName()).
		Where(sq.Eq{"kind": models.SlotKindRequested}).
		Where(sq.Eq{"status": []string{models.SlotStatusPending, models.SlotStatusRejected}}).
		Where(sq.Lt{"created_at": cutoff})

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build SQL query for PurgeStaleRequests: %w", err)
	}

	res, err := db.Exec(sqlStr, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to purge stale requests: %w", err)
	}
	return res.RowsAffected()
}

// CountRowsForEmployee counts rows in the given table belonging to one
// employee. Used by the migration status read path to report how much of a
// record graph lives on each side of the active/archive split.
func CountRowsForEmployee(db *sql.DB, table string, employeeID uint) (int64, error) {
	queryBuilder := psql.Select("COUNT(*)").
		From(table).
		Where(sq.Eq{"employee_id": employeeID})

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build SQL query for CountRowsForEmployee: %w", err)
	}

	var count int64
	if err := db.QueryRow(sqlStr, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s rows for employee %d: %w", table, employeeID, err)
	}
	return count, nil
}
