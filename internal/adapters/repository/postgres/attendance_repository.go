package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/face-attendance/internal/core/attendance"
	"github.com/ogurasousui/face-attendance/internal/core/employee"
	pgdb "github.com/ogurasousui/face-attendance/internal/platform/db/postgres"
)

const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
)

const attendanceColumns = `id, employee_id, work_date, check_in_am, check_out_am, check_in_pm, check_out_pm, status, created_at, updated_at`

const findAttendanceByEmployeeAndDateQuery = `
        SELECT ` + attendanceColumns + `
          FROM attendance_records
         WHERE employee_id = $1 AND work_date = $2
         LIMIT 1
    `

const insertAttendanceQuery = `
        INSERT INTO attendance_records (employee_id, work_date, check_in_am, check_out_am, check_in_pm, check_out_pm, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        ON CONFLICT (employee_id, work_date) DO NOTHING
        RETURNING ` + attendanceColumns + `
    `

// AttendanceRepository は PostgreSQL を利用した勤怠記録リポジトリです。
type AttendanceRepository struct {
	pool pgdb.Queryer
}

// NewAttendanceRepository は AttendanceRepository を生成します。
func NewAttendanceRepository(pool pgdb.Queryer) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

// FindByEmployeeAndDate は社員と暦日で勤怠記録を取得します。
func (r *AttendanceRepository) FindByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Record, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, findAttendanceByEmployeeAndDateQuery, employeeID, civilDate(date))

	record, err := scanAttendance(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, attendance.ErrRecordNotFound
		}
		return nil, translateAttendancePgError(err)
	}
	return record, nil
}

// Create は勤怠記録を作成します。同日の記録が既にある場合は ErrRecordAlreadyExists を返します。
func (r *AttendanceRepository) Create(ctx context.Context, record *attendance.Record) (*attendance.Record, error) {
	if record == nil {
		return nil, fmt.Errorf("postgres: attendance record is nil")
	}

	status := record.Status
	if status == "" {
		status = attendance.StatusPresent
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, insertAttendanceQuery,
		record.EmployeeID,
		civilDate(record.Date),
		nullableTime(record.CheckInAM),
		nullableTime(record.CheckOutAM),
		nullableTime(record.CheckInPM),
		nullableTime(record.CheckOutPM),
		string(status),
		record.CreatedAt,
		record.UpdatedAt,
	)

	created, err := scanAttendance(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// ON CONFLICT DO NOTHING で挿入されなかった。
			return nil, attendance.ErrRecordAlreadyExists
		}
		return nil, translateAttendancePgError(err)
	}
	return created, nil
}

// UpdateSlot は 1 枠分の打刻を書き込みます。
func (r *AttendanceRepository) UpdateSlot(ctx context.Context, in attendance.SlotUpdate) (*attendance.Record, error) {
	query, err := buildUpdateSlotQuery(in.Slot, in.OnlyIfEmpty)
	if err != nil {
		return nil, err
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, query, in.Value, in.UpdatedAt, in.RecordID)

	updated, err := scanAttendance(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if in.OnlyIfEmpty {
				return nil, attendance.ErrSlotConflict
			}
			return nil, attendance.ErrRecordNotFound
		}
		return nil, translateAttendancePgError(err)
	}
	return updated, nil
}

// ListRecent は勤怠記録を日付の新しい順に社員名付きで返します。
func (r *AttendanceRepository) ListRecent(ctx context.Context, filter attendance.ListRecentFilter) ([]*attendance.Record, error) {
	if filter.Limit <= 0 {
		return nil, attendance.ErrInvalidLimit
	}

	query, args := buildListRecentQuery(filter)

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, translateAttendancePgError(err)
	}
	defer rows.Close()

	records := make([]*attendance.Record, 0, filter.Limit)
	for rows.Next() {
		var first, middle, last string
		record, err := scanAttendance(rows, &first, &middle, &last)
		if err != nil {
			return nil, translateAttendancePgError(err)
		}
		named := employee.Employee{FirstName: first, MiddleName: middle, LastName: last}
		record.EmployeeName = named.FullName()
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, translateAttendancePgError(err)
	}

	return records, nil
}

func buildUpdateSlotQuery(slot attendance.Slot, onlyIfEmpty bool) (string, error) {
	column, err := slotColumn(slot)
	if err != nil {
		return "", err
	}

	condition := ""
	if onlyIfEmpty {
		condition = " AND " + column + " IS NULL"
	}

	return `
        UPDATE attendance_records
           SET ` + column + ` = $1,
               updated_at = $2
         WHERE id = $3` + condition + `
        RETURNING ` + attendanceColumns + `
    `, nil
}

func buildListRecentQuery(filter attendance.ListRecentFilter) (string, []any) {
	args := make([]any, 0, 2)

	whereClause := ""
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		whereClause = "\n         WHERE a.employee_id = $" + strconv.Itoa(len(args))
	}

	args = append(args, filter.Limit)
	limitPlaceholder := "$" + strconv.Itoa(len(args))

	query := `
        SELECT a.id, a.employee_id, a.work_date, a.check_in_am, a.check_out_am, a.check_in_pm, a.check_out_pm, a.status, a.created_at, a.updated_at,
               COALESCE(e.first_name, ''), COALESCE(e.middle_name, ''), COALESCE(e.last_name, '')
          FROM attendance_records a
          LEFT JOIN employees e ON e.id = a.employee_id` + whereClause + `
         ORDER BY a.work_date DESC, a.updated_at DESC, a.id DESC
         LIMIT ` + limitPlaceholder + `
    `
	return query, args
}

func slotColumn(slot attendance.Slot) (string, error) {
	switch slot {
	case attendance.SlotCheckInAM:
		return "check_in_am", nil
	case attendance.SlotCheckOutAM:
		return "check_out_am", nil
	case attendance.SlotCheckInPM:
		return "check_in_pm", nil
	case attendance.SlotCheckOutPM:
		return "check_out_pm", nil
	default:
		return "", fmt.Errorf("postgres: unknown attendance slot %d", int(slot))
	}
}

func scanAttendance(row pgx.Row, extra ...any) (*attendance.Record, error) {
	var (
		id         string
		employeeID string
		workDate   time.Time
		checkInAM  sql.NullTime
		checkOutAM sql.NullTime
		checkInPM  sql.NullTime
		checkOutPM sql.NullTime
		status     string
		createdAt  time.Time
		updatedAt  time.Time
	)

	dest := []any{
		&id,
		&employeeID,
		&workDate,
		&checkInAM,
		&checkOutAM,
		&checkInPM,
		&checkOutPM,
		&status,
		&createdAt,
		&updatedAt,
	}
	dest = append(dest, extra...)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	return &attendance.Record{
		ID:         id,
		EmployeeID: employeeID,
		Date:       civilDate(workDate),
		CheckInAM:  timePtr(checkInAM),
		CheckOutAM: timePtr(checkOutAM),
		CheckInPM:  timePtr(checkInPM),
		CheckOutPM: timePtr(checkOutPM),
		Status:     attendance.Status(status),
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}, nil
}

// civilDate は暦日部分のみを UTC の 0 時として返します。
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func timePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

func translateAttendancePgError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return attendance.ErrRecordAlreadyExists
		case foreignKeyViolationCode:
			return attendance.ErrEmployeeNotFound
		}
	}

	return err
}
