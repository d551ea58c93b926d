package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/xingye-dev/store-roster/backend/internal/domain"
)

// LoadShifts 读取和 [from, to) 相交的所有班次及其附属记录
// 服务启动时用它预热内存中的班次存储
func (r *Repository) LoadShifts(from, to time.Time) ([]*domain.Shift, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			s.id,
			s.start_time,
			s.end_time,
			s.shift_type,
			s.required_staff,
			s.min_staff,
			s.max_staff,
			s.substitute_requested,
			s.substitute_high_priority,
			s.recurrence_end_date,
			s.created_at,
			s.version,
			sa.employee_id
		FROM shifts s
		LEFT JOIN shift_assignments sa ON s.id = sa.shift_id
		WHERE s.end_time > $1 AND s.start_time < $2
		ORDER BY s.start_time, s.id, sa.position
	`

	rows, err := r.dbpool.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shiftsMap := make(map[string]*domain.Shift)
	order := make([]string, 0)

	for rows.Next() {
		var row struct {
			ID                     string
			StartTime              time.Time
			EndTime                time.Time
			ShiftType              string
			RequiredStaff          int
			MinStaff               sql.NullInt32
			MaxStaff               sql.NullInt32
			SubstituteRequested    bool
			SubstituteHighPriority bool
			RecurrenceEndDate      sql.NullTime
			CreatedAt              time.Time
			Version                int32

			EmployeeID sql.NullInt64
		}

		dst := []any{
			&row.ID,
			&row.StartTime,
			&row.EndTime,
			&row.ShiftType,
			&row.RequiredStaff,
			&row.MinStaff,
			&row.MaxStaff,
			&row.SubstituteRequested,
			&row.SubstituteHighPriority,
			&row.RecurrenceEndDate,
			&row.CreatedAt,
			&row.Version,
			&row.EmployeeID,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		shift, exists := shiftsMap[row.ID]
		if !exists {
			// 说明此时是第一次查到这个班次，需要在 map 中初始化
			shift = &domain.Shift{
				ID:                     row.ID,
				Start:                  row.StartTime,
				End:                    row.EndTime,
				ShiftType:              domain.ShiftType(row.ShiftType),
				AssignedEmployeeIDs:    make([]int64, 0),
				RequiredStaff:          row.RequiredStaff,
				SubstituteRequested:    row.SubstituteRequested,
				SubstituteHighPriority: row.SubstituteHighPriority,
				CreatedAt:              row.CreatedAt,
				Version:                row.Version,
			}
			if row.MinStaff.Valid {
				minStaff := int(row.MinStaff.Int32)
				shift.MinStaff = &minStaff
			}
			if row.MaxStaff.Valid {
				maxStaff := int(row.MaxStaff.Int32)
				shift.MaxStaff = &maxStaff
			}
			if row.RecurrenceEndDate.Valid {
				shift.Recurrence = &domain.Recurrence{
					Frequency:  "weekly",
					DaysOfWeek: make([]int, 0),
					EndDate:    row.RecurrenceEndDate.Time,
				}
			}
			shiftsMap[row.ID] = shift
			order = append(order, row.ID)
		}

		// 如果 employee_id 为空，说明这个班次没有任何分配记录
		if !row.EmployeeID.Valid {
			continue
		}

		shift.AssignedEmployeeIDs = append(shift.AssignedEmployeeIDs, row.EmployeeID.Int64)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadShiftRecurrenceDays(ctx, shiftsMap); err != nil {
		return nil, err
	}
	if err := r.loadShiftEmployeeTimes(ctx, shiftsMap); err != nil {
		return nil, err
	}

	shifts := make([]*domain.Shift, 0, len(order))
	for _, id := range order {
		shifts = append(shifts, shiftsMap[id])
	}

	return shifts, nil
}

func (r *Repository) loadShiftRecurrenceDays(ctx context.Context, shiftsMap map[string]*domain.Shift) error {
	query := `
		SELECT shift_id, day FROM shift_recurrence_days ORDER BY shift_id, day
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var shiftID string
		var day int
		if err := rows.Scan(&shiftID, &day); err != nil {
			return err
		}

		shift, exists := shiftsMap[shiftID]
		if !exists || shift.Recurrence == nil {
			continue
		}
		shift.Recurrence.DaysOfWeek = append(shift.Recurrence.DaysOfWeek, day)
	}

	return rows.Err()
}

func (r *Repository) loadShiftEmployeeTimes(ctx context.Context, shiftsMap map[string]*domain.Shift) error {
	query := `
		SELECT shift_id, employee_id, start_time, end_time FROM shift_employee_times
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var shiftID string
		var employeeID int64
		var tr domain.TimeRange
		if err := rows.Scan(&shiftID, &employeeID, &tr.Start, &tr.End); err != nil {
			return err
		}

		shift, exists := shiftsMap[shiftID]
		if !exists {
			continue
		}
		if shift.PerEmployeeTimes == nil {
			shift.PerEmployeeTimes = make(map[int64]domain.TimeRange)
		}
		shift.PerEmployeeTimes[employeeID] = tr
	}

	return rows.Err()
}

// SaveShift 按 id 整条落库（upsert），附属记录删除后重建
// 内存中的状态才是当前会话的数据源，落库失败由调用方记录日志，不回滚内存
func (r *Repository) SaveShift(shift *domain.Shift) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var minStaff, maxStaff sql.NullInt32
	if shift.MinStaff != nil {
		minStaff = sql.NullInt32{Int32: int32(*shift.MinStaff), Valid: true}
	}
	if shift.MaxStaff != nil {
		maxStaff = sql.NullInt32{Int32: int32(*shift.MaxStaff), Valid: true}
	}
	var recurrenceEndDate sql.NullTime
	if shift.Recurrence != nil {
		recurrenceEndDate = sql.NullTime{Time: shift.Recurrence.EndDate, Valid: true}
	}

	query := `
		INSERT INTO shifts (id, start_time, end_time, shift_type, required_staff, min_staff, max_staff, substitute_requested, substitute_high_priority, recurrence_end_date, created_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			shift_type = EXCLUDED.shift_type,
			required_staff = EXCLUDED.required_staff,
			min_staff = EXCLUDED.min_staff,
			max_staff = EXCLUDED.max_staff,
			substitute_requested = EXCLUDED.substitute_requested,
			substitute_high_priority = EXCLUDED.substitute_high_priority,
			recurrence_end_date = EXCLUDED.recurrence_end_date,
			version = EXCLUDED.version
	`

	args := []any{
		shift.ID,
		shift.Start,
		shift.End,
		string(shift.ShiftType),
		shift.RequiredStaff,
		minStaff,
		maxStaff,
		shift.SubstituteRequested,
		shift.SubstituteHighPriority,
		recurrenceEndDate,
		shift.CreatedAt,
		shift.Version,
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return err
	}

	for _, table := range []string{"shift_assignments", "shift_recurrence_days", "shift_employee_times"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE shift_id = $1`, shift.ID); err != nil {
			return err
		}
	}

	for i, employeeID := range shift.AssignedEmployeeIDs {
		query = `
			INSERT INTO shift_assignments (shift_id, employee_id, position)
			VALUES ($1, $2, $3)
		`
		if _, err := tx.ExecContext(ctx, query, shift.ID, employeeID, i); err != nil {
			return err
		}
	}

	if shift.Recurrence != nil {
		for _, day := range shift.Recurrence.DaysOfWeek {
			query = `
				INSERT INTO shift_recurrence_days (shift_id, day)
				VALUES ($1, $2)
			`
			if _, err := tx.ExecContext(ctx, query, shift.ID, day); err != nil {
				return err
			}
		}
	}

	for employeeID, tr := range shift.PerEmployeeTimes {
		query = `
			INSERT INTO shift_employee_times (shift_id, employee_id, start_time, end_time)
			VALUES ($1, $2, $3, $4)
		`
		if _, err := tx.ExecContext(ctx, query, shift.ID, employeeID, tr.Start, tr.End); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteShift(id string) error {
	query := `
		DELETE FROM shifts WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}
