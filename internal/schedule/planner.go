package schedule

import (
	"log/slog"
	"slices"
	"time"

	"github.com/xingye-dev/store-roster/backend/internal/domain"
)

// Planner 把班次记录投影成 日 x 时段 的周计划矩阵
// 矩阵只是视图，可以随时从 Store 重建，绝不作为数据源
type Planner struct {
	engine    *Engine
	templates []*domain.ShiftTemplate
}

func NewPlanner(engine *Engine, templates []*domain.ShiftTemplate) *Planner {
	return &Planner{
		engine:    engine,
		templates: templates,
	}
}

// startOfWeek 归一化到所在周的周日零点，保证格子的 DayOfWeek 同时是相对周起点的偏移
func startOfWeek(t time.Time) time.Time {
	t = startOfDay(t)
	return t.AddDate(0, 0, -WeekdayOf(t))
}

// BuildWeek 构建从 weekStart 起一周的计划矩阵
// employees 是员工名录，已删除员工留下的悬空 id 在这里被过滤掉，
// 班次记录本身不动
func (p *Planner) BuildWeek(weekStart time.Time, employees []*domain.Employee) *domain.WeeklyPlan {
	weekStart = startOfWeek(weekStart)
	weekEnd := weekStart.AddDate(0, 0, 7)

	directory := make(map[int64]*domain.Employee, len(employees))
	for _, e := range employees {
		directory[e.ID] = e
	}

	// 每个 (星期, 模板) 组合一个格子
	cells := make(map[int]map[domain.ShiftType]*domain.WeeklyPlanCell)
	for day := 0; day < 7; day++ {
		cells[day] = make(map[domain.ShiftType]*domain.WeeklyPlanCell)
		for _, tmpl := range p.templates {
			cells[day][tmpl.ShiftType] = &domain.WeeklyPlanCell{
				DayOfWeek:    day,
				TimeSlotID:   tmpl.ShiftType,
				Employees:    make([]domain.PlanCellEmployee, 0),
				MaxEmployees: tmpl.RequiredStaffOn(day),
				ShiftIDs:     make([]string, 0),
			}
		}
	}

	// 把已存储的班次合并进矩阵
	maxStaffByCell := make(map[*domain.WeeklyPlanCell]*int)
	for _, shift := range p.engine.store.List(&weekStart, &weekEnd) {
		day := WeekdayOf(shift.Start)

		slot, ok := p.matchTimeSlot(shift)
		if !ok {
			// 匹配不上任何时段的班次不进入矩阵，但它仍然在 Store 中
			slog.Warn("班次无法匹配任何计划时段", "shift_id", shift.ID, "shift_type", string(shift.ShiftType), "start", shift.Start)
			continue
		}

		cell := cells[day][slot]
		cell.ShiftIDs = append(cell.ShiftIDs, shift.ID)

		if shift.RequiredStaff > 0 {
			cell.MaxEmployees = shift.RequiredStaff
		}
		if shift.MaxStaff != nil {
			maxStaffByCell[cell] = shift.MaxStaff
		}

		for _, id := range shift.AssignedEmployeeIDs {
			employee, exists := directory[id]
			if !exists {
				// 悬空引用，员工已被删除
				continue
			}

			alreadyInCell := slices.ContainsFunc(cell.Employees, func(e domain.PlanCellEmployee) bool {
				return e.ID == id
			})
			if alreadyInCell {
				continue
			}

			cell.Employees = append(cell.Employees, domain.PlanCellEmployee{
				ID:       id,
				Name:     employee.FullName,
				Position: employee.Position,
			})
		}
	}

	// 按 星期、模板顺序 展平
	plan := &domain.WeeklyPlan{
		WeekStart: weekStart.Format("2006-01-02"),
		Cells:     make([]*domain.WeeklyPlanCell, 0, 7*len(p.templates)),
	}
	for day := 0; day < 7; day++ {
		for _, tmpl := range p.templates {
			cell := cells[day][tmpl.ShiftType]
			cell.Sufficiency = domain.EvaluateSufficiency(len(cell.Employees), cell.MaxEmployees, maxStaffByCell[cell])
			plan.Cells = append(plan.Cells, cell)
		}
	}

	return plan
}

// matchTimeSlot 确定班次属于哪个时段
// 优先按 shiftType 匹配模板，匹配不上再按开始时间的墙钟精确匹配
func (p *Planner) matchTimeSlot(shift *domain.Shift) (domain.ShiftType, bool) {
	for _, tmpl := range p.templates {
		if tmpl.ShiftType == shift.ShiftType {
			return tmpl.ShiftType, true
		}
	}

	wallClock := WallClockOf(shift.Start)
	for _, tmpl := range p.templates {
		if tmpl.StartTime == wallClock {
			return tmpl.ShiftType, true
		}
	}

	return "", false
}

// ApplyMove 按拖拽请求执行对应的引擎操作
//   - 员工池 -> 格子：等价于 Assign，重复和容量校验完全一致
//   - 格子 -> 格子：等价于 Move，两边都校验通过才提交
//   - 同格子内：只调整顺序
func (p *Planner) ApplyMove(req domain.DragMoveRequest) error {
	switch {
	case req.SourceShiftID == "":
		_, err := p.engine.Assign(req.DestShiftID, req.EmployeeID)
		return err
	case req.SourceShiftID == req.DestShiftID:
		_, err := p.engine.Reorder(req.DestShiftID, req.EmployeeID, req.NewIndex)
		return err
	default:
		_, _, err := p.engine.Move(req.SourceShiftID, req.DestShiftID, req.EmployeeID)
		return err
	}
}

// SaveWeek 把编辑后的矩阵翻译回班次变更
// 有后备班次的格子覆盖第一个班次的分配名单；
// 没有后备班次但排了人的格子会按模板新建班次
func (p *Planner) SaveWeek(weekStart time.Time, cells []*domain.WeeklyPlanCell) error {
	weekStart = startOfWeek(weekStart)

	for _, cell := range cells {
		if len(cell.ShiftIDs) > 0 {
			shift, err := p.engine.store.Get(cell.ShiftIDs[0])
			if err != nil {
				return err
			}

			shift.AssignedEmployeeIDs = make([]int64, 0, len(cell.Employees))
			for _, e := range cell.Employees {
				if !slices.Contains(shift.AssignedEmployeeIDs, e.ID) {
					shift.AssignedEmployeeIDs = append(shift.AssignedEmployeeIDs, e.ID)
				}
			}
			// 不再被排班的员工的自定义时段一并清理
			for id := range shift.PerEmployeeTimes {
				if !slices.Contains(shift.AssignedEmployeeIDs, id) {
					delete(shift.PerEmployeeTimes, id)
				}
			}

			if _, err := p.engine.store.Update(shift); err != nil {
				return err
			}
			continue
		}

		if len(cell.Employees) == 0 {
			continue
		}

		tmpl := p.templateFor(cell.TimeSlotID)
		if tmpl == nil {
			slog.Warn("格子没有对应的班次模板，跳过", "time_slot", string(cell.TimeSlotID), "day", cell.DayOfWeek)
			continue
		}

		shift, err := p.instantiate(tmpl, weekStart, cell)
		if err != nil {
			return err
		}
		if _, err := p.engine.store.Create(shift); err != nil {
			return err
		}
	}

	return nil
}

func (p *Planner) templateFor(slot domain.ShiftType) *domain.ShiftTemplate {
	for _, tmpl := range p.templates {
		if tmpl.ShiftType == slot {
			return tmpl
		}
	}
	return nil
}

// instantiate 按模板在某一天生成一条新班次
// 和手动创建走同一道营业时间收缩，模板时段超出营业时间时只保留交集
func (p *Planner) instantiate(tmpl *domain.ShiftTemplate, weekStart time.Time, cell *domain.WeeklyPlanCell) (*domain.Shift, error) {
	startClock, err := parseWallClock(tmpl.StartTime)
	if err != nil {
		return nil, err
	}
	endClock, err := parseWallClock(tmpl.EndTime)
	if err != nil {
		return nil, err
	}

	day := weekStart.AddDate(0, 0, cell.DayOfWeek)

	start, end, err := p.engine.ClampToBusinessHours(day.Add(startClock), day.Add(endClock))
	if err != nil {
		return nil, err
	}

	shift := &domain.Shift{
		Start:         start,
		End:           end,
		ShiftType:     tmpl.ShiftType,
		RequiredStaff: tmpl.RequiredStaffOn(cell.DayOfWeek),
	}

	shift.AssignedEmployeeIDs = make([]int64, 0, len(cell.Employees))
	for _, e := range cell.Employees {
		if !slices.Contains(shift.AssignedEmployeeIDs, e.ID) {
			shift.AssignedEmployeeIDs = append(shift.AssignedEmployeeIDs, e.ID)
		}
	}

	return shift, nil
}
