package seed

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/xingye-dev/store-roster/backend/internal/domain"
	"github.com/xingye-dev/store-roster/backend/internal/repository"
	"github.com/xingye-dev/store-roster/backend/internal/schedule"
	"github.com/xingye-dev/store-roster/backend/internal/utils"
)

// SeedShiftTemplates 插入门店默认的早中晚三个班次模板
// 模板已存在时跳过，不会重复插入
func SeedShiftTemplates(r *repository.Repository) {
	existing, err := r.GetAllShiftTemplates()
	if err != nil {
		slog.Error("获取班次模板失败", "error", err)
		return
	}
	if len(existing) > 0 {
		slog.Info("班次模板已存在，跳过", "count", len(existing))
		return
	}

	cnt := 0
	for _, t := range utils.DefaultShiftTemplates() {
		if err := r.CreateShiftTemplate(t); err != nil {
			slog.Error("插入班次模板失败", "name", t.Name, "error", err)
			continue
		}
		cnt++
	}

	slog.Info("插入班次模板完成", "count", cnt)
}

// SeedDemoWeek 按模板铺满一周的班次并把在职店员轮流排进去
// weekStart 会被归一化到所在周的周日
func SeedDemoWeek(r *repository.Repository, weekStart time.Time) {
	templates, err := r.GetAllShiftTemplates()
	if err != nil {
		slog.Error("获取班次模板失败", "error", err)
		return
	}
	if len(templates) == 0 {
		slog.Error("没有可用的班次模板，请先插入模板")
		return
	}

	employees, err := r.GetAllEmployees()
	if err != nil {
		slog.Error("获取员工列表失败", "error", err)
		return
	}

	staff := make([]*domain.Employee, 0, len(employees))
	for _, e := range employees {
		if e.Status != domain.EmployeeInactive {
			staff = append(staff, e)
		}
	}
	if len(staff) == 0 {
		slog.Error("没有在职员工可供排班")
		return
	}

	// 归一化到周日零点
	weekStart = weekStart.AddDate(0, 0, -schedule.WeekdayOf(weekStart))
	weekStart = time.Date(weekStart.Year(), weekStart.Month(), weekStart.Day(), 0, 0, 0, 0, weekStart.Location())

	next := 0
	cnt := 0
	for day := 0; day < 7; day++ {
		date := weekStart.AddDate(0, 0, day)
		for _, tmpl := range templates {
			startClock, err := time.Parse("15:04", tmpl.StartTime)
			if err != nil {
				slog.Error("模板开始时间非法", "name", tmpl.Name, "error", err)
				continue
			}
			endClock, err := time.Parse("15:04", tmpl.EndTime)
			if err != nil {
				slog.Error("模板结束时间非法", "name", tmpl.Name, "error", err)
				continue
			}

			required := tmpl.RequiredStaffOn(day)
			assigned := make([]int64, 0, required)
			for i := 0; i < required && i < len(staff); i++ {
				assigned = append(assigned, staff[next%len(staff)].ID)
				next++
			}

			shift := &domain.Shift{
				ID:                  uuid.NewString(),
				Start:               date.Add(time.Duration(startClock.Hour())*time.Hour + time.Duration(startClock.Minute())*time.Minute),
				End:                 date.Add(time.Duration(endClock.Hour())*time.Hour + time.Duration(endClock.Minute())*time.Minute),
				ShiftType:           tmpl.ShiftType,
				AssignedEmployeeIDs: assigned,
				RequiredStaff:       required,
				CreatedAt:           time.Now(),
			}

			if err := r.SaveShift(shift); err != nil {
				slog.Error("插入班次失败", "shiftID", shift.ID, "error", err)
				continue
			}
			cnt++
		}
	}

	slog.Info("插入演示周班表完成", "weekStart", weekStart.Format("2006-01-02"), "count", cnt)
}
