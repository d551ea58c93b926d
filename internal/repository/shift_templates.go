package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/xingye-dev/store-roster/backend/internal/domain"
)

func (r *Repository) GetAllShiftTemplates() ([]*domain.ShiftTemplate, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			t.id,
			t.name,
			t.shift_type,
			t.start_time,
			t.end_time,
			t.required_staff,
			t.color,
			t.created_at,
			t.version,
			tp.position,
			tp.required,
			tdo.day,
			tdo.required_staff
		FROM shift_templates t
		LEFT JOIN shift_template_positions tp ON t.id = tp.template_id
		LEFT JOIN shift_template_day_overrides tdo ON t.id = tdo.template_id
		ORDER BY t.id
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templatesMap := make(map[int64]*domain.ShiftTemplate)
	order := make([]int64, 0)

	for rows.Next() {
		var row struct {
			ID            int64
			Name          string
			ShiftType     string
			StartTime     string
			EndTime       string
			RequiredStaff int
			Color         string
			CreatedAt     time.Time
			Version       int32

			Position         sql.NullString
			PositionRequired sql.NullInt32
			OverrideDay      sql.NullInt32
			OverrideRequired sql.NullInt32
		}

		dst := []any{
			&row.ID,
			&row.Name,
			&row.ShiftType,
			&row.StartTime,
			&row.EndTime,
			&row.RequiredStaff,
			&row.Color,
			&row.CreatedAt,
			&row.Version,
			&row.Position,
			&row.PositionRequired,
			&row.OverrideDay,
			&row.OverrideRequired,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		template, exists := templatesMap[row.ID]
		if !exists {
			// 说明此时是第一次查到这个模板，需要在 map 中初始化
			template = &domain.ShiftTemplate{
				ID:            row.ID,
				Name:          row.Name,
				ShiftType:     domain.ShiftType(row.ShiftType),
				StartTime:     row.StartTime,
				EndTime:       row.EndTime,
				RequiredStaff: row.RequiredStaff,
				Color:         row.Color,
				CreatedAt:     row.CreatedAt,
				Version:       row.Version,
			}
			templatesMap[row.ID] = template
			order = append(order, row.ID)
		}

		if row.Position.Valid {
			if template.Positions == nil {
				template.Positions = make(map[string]int)
			}
			template.Positions[row.Position.String] = int(row.PositionRequired.Int32)
		}

		if row.OverrideDay.Valid {
			if template.DayOverrides == nil {
				template.DayOverrides = make(map[int]int)
			}
			template.DayOverrides[int(row.OverrideDay.Int32)] = int(row.OverrideRequired.Int32)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	templates := make([]*domain.ShiftTemplate, 0, len(order))
	for _, id := range order {
		templates = append(templates, templatesMap[id])
	}

	return templates, nil
}

func (r *Repository) GetShiftTemplate(id int64) (*domain.ShiftTemplate, error) {
	templates, err := r.GetAllShiftTemplates()
	if err != nil {
		return nil, err
	}

	for _, template := range templates {
		if template.ID == id {
			return template, nil
		}
	}

	return nil, sql.ErrNoRows
}

func (r *Repository) CreateShiftTemplate(template *domain.ShiftTemplate) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO shift_templates (name, shift_type, start_time, end_time, required_staff, color)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, version
	`
	args := []any{template.Name, string(template.ShiftType), template.StartTime, template.EndTime, template.RequiredStaff, template.Color}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&template.ID, &template.CreatedAt, &template.Version); err != nil {
		return err
	}

	for position, required := range template.Positions {
		query = `
			INSERT INTO shift_template_positions (template_id, position, required)
			VALUES ($1, $2, $3)
		`
		if _, err := tx.ExecContext(ctx, query, template.ID, position, required); err != nil {
			return err
		}
	}

	for day, required := range template.DayOverrides {
		query = `
			INSERT INTO shift_template_day_overrides (template_id, day, required_staff)
			VALUES ($1, $2, $3)
		`
		if _, err := tx.ExecContext(ctx, query, template.ID, day, required); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateShiftTemplate(template *domain.ShiftTemplate) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		UPDATE shift_templates
		SET
			name = $1,
			shift_type = $2,
			start_time = $3,
			end_time = $4,
			required_staff = $5,
			color = $6,
			version = version + 1
		WHERE id = $7 AND version = $8
		RETURNING version
	`

	args := []any{template.Name, string(template.ShiftType), template.StartTime, template.EndTime, template.RequiredStaff, template.Color, template.ID, template.Version}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&template.Version); err != nil {
		return err
	}

	for _, table := range []string{"shift_template_positions", "shift_template_day_overrides"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE template_id = $1`, template.ID); err != nil {
			return err
		}
	}

	for position, required := range template.Positions {
		query = `
			INSERT INTO shift_template_positions (template_id, position, required)
			VALUES ($1, $2, $3)
		`
		if _, err := tx.ExecContext(ctx, query, template.ID, position, required); err != nil {
			return err
		}
	}

	for day, required := range template.DayOverrides {
		query = `
			INSERT INTO shift_template_day_overrides (template_id, day, required_staff)
			VALUES ($1, $2, $3)
		`
		if _, err := tx.ExecContext(ctx, query, template.ID, day, required); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteShiftTemplate(id int64) error {
	query := `
		DELETE FROM shift_templates WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}
