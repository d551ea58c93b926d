package schedule

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xingye-dev/store-roster/backend/internal/domain"
)

func testTemplates() []*domain.ShiftTemplate {
	return []*domain.ShiftTemplate{
		{
			ID:            1,
			Name:          "早班",
			ShiftType:     domain.ShiftTypeOpen,
			StartTime:     "09:00",
			EndTime:       "15:00",
			RequiredStaff: 2,
			Color:         "#fde047",
		},
		{
			ID:            2,
			Name:          "晚班",
			ShiftType:     domain.ShiftTypeClose,
			StartTime:     "15:00",
			EndTime:       "22:00",
			RequiredStaff: 3,
			Color:         "#93c5fd",
			DayOverrides:  map[int]int{6: 4}, // 周六晚班多排一人
		},
	}
}

func testEmployees() []*domain.Employee {
	return []*domain.Employee{
		{ID: 1, FullName: "王磊", Position: "咖啡师", HourlyRate: decimal.NewFromInt(30), Status: domain.EmployeeActive},
		{ID: 2, FullName: "李欣", Position: "收银员", HourlyRate: decimal.NewFromInt(25), Status: domain.EmployeeActive},
	}
}

// 2025-03-09 是周日，作为周起点
const testWeekStart = "2025-03-09T00:00"

func TestPlannerBuildWeek(t *testing.T) {
	engine := newTestEngine(t)
	planner := NewPlanner(engine, testTemplates())

	t.Run("空矩阵覆盖所有格子", func(t *testing.T) {
		plan := planner.BuildWeek(mustTime(t, testWeekStart), testEmployees())
		assert.Equal(t, "2025-03-09", plan.WeekStart)
		assert.Len(t, plan.Cells, 7*2)

		// 模板默认人数和按星期的覆盖值
		for _, cell := range plan.Cells {
			if cell.TimeSlotID == domain.ShiftTypeClose && cell.DayOfWeek == 6 {
				assert.Equal(t, 4, cell.MaxEmployees)
			}
			// 空格子相对需求缺口都超过 1 人
			assert.Equal(t, domain.SeverelyUnderstaffed, cell.Sufficiency)
		}
	})

	t.Run("按 shiftType 归入格子", func(t *testing.T) {
		shift := newTestShift(t, "2025-03-10T09:00", "2025-03-10T15:00") // 周一早班
		shift.RequiredStaff = 2
		created, err := engine.Store().Create(shift)
		require.NoError(t, err)
		_, err = engine.Assign(created.ID, 1)
		require.NoError(t, err)

		plan := planner.BuildWeek(mustTime(t, testWeekStart), testEmployees())
		cell := findCell(t, plan, 1, domain.ShiftTypeOpen)
		require.Len(t, cell.Employees, 1)
		assert.Equal(t, "王磊", cell.Employees[0].Name)
		assert.Contains(t, cell.ShiftIDs, created.ID)
		assert.Equal(t, domain.Understaffed, cell.Sufficiency)
	})

	t.Run("未知类型按开始时间匹配", func(t *testing.T) {
		shift := newTestShift(t, "2025-03-11T15:00", "2025-03-11T22:00") // 周二
		shift.ShiftType = domain.ShiftType("特卖班")
		created, err := engine.Store().Create(shift)
		require.NoError(t, err)

		plan := planner.BuildWeek(mustTime(t, testWeekStart), testEmployees())
		cell := findCell(t, plan, 2, domain.ShiftTypeClose)
		assert.Contains(t, cell.ShiftIDs, created.ID)
	})

	t.Run("完全匹配不上的班次不进入矩阵", func(t *testing.T) {
		shift := newTestShift(t, "2025-03-11T11:30", "2025-03-11T14:00")
		shift.ShiftType = domain.ShiftType("夜间盘点")
		created, err := engine.Store().Create(shift)
		require.NoError(t, err)

		plan := planner.BuildWeek(mustTime(t, testWeekStart), testEmployees())
		for _, cell := range plan.Cells {
			assert.NotContains(t, cell.ShiftIDs, created.ID)
		}

		// 班次本身仍然在 Store 中
		_, err = engine.Store().Get(created.ID)
		assert.NoError(t, err)
	})

	t.Run("悬空的员工引用被过滤", func(t *testing.T) {
		shift := newTestShift(t, "2025-03-12T09:00", "2025-03-12T15:00") // 周三早班
		shift.AssignedEmployeeIDs = []int64{1, 999}                     // 999 已被删除
		created, err := engine.Store().Create(shift)
		require.NoError(t, err)

		plan := planner.BuildWeek(mustTime(t, testWeekStart), testEmployees())
		cell := findCell(t, plan, 3, domain.ShiftTypeOpen)
		require.Len(t, cell.Employees, 1)
		assert.Equal(t, int64(1), cell.Employees[0].ID)
		assert.Contains(t, cell.ShiftIDs, created.ID)
	})
}

func findCell(t *testing.T, plan *domain.WeeklyPlan, day int, slot domain.ShiftType) *domain.WeeklyPlanCell {
	t.Helper()
	for _, cell := range plan.Cells {
		if cell.DayOfWeek == day && cell.TimeSlotID == slot {
			return cell
		}
	}
	t.Fatalf("没有找到格子 (day=%d, slot=%s)", day, slot)
	return nil
}

func TestPlannerApplyMove(t *testing.T) {
	engine := newTestEngine(t)
	planner := NewPlanner(engine, testTemplates())

	source, err := engine.Store().Create(newTestShift(t, "2025-03-10T09:00", "2025-03-10T15:00"))
	require.NoError(t, err)

	full := newTestShift(t, "2025-03-10T15:00", "2025-03-10T22:00")
	full.MaxStaff = intPtr(1)
	dest, err := engine.Store().Create(full)
	require.NoError(t, err)

	t.Run("员工池拖入等价于 Assign", func(t *testing.T) {
		err := planner.ApplyMove(domain.DragMoveRequest{DestShiftID: source.ID, EmployeeID: 1})
		require.NoError(t, err)

		// 重复拖入同一个格子被拒绝
		err = planner.ApplyMove(domain.DragMoveRequest{DestShiftID: source.ID, EmployeeID: 1})
		assert.ErrorIs(t, err, ErrDuplicateAssignment)
	})

	t.Run("跨格子拖动等价于 Move", func(t *testing.T) {
		err := planner.ApplyMove(domain.DragMoveRequest{SourceShiftID: source.ID, DestShiftID: dest.ID, EmployeeID: 1})
		require.NoError(t, err)

		got, err := engine.Store().Get(dest.ID)
		require.NoError(t, err)
		assert.Equal(t, []int64{1}, got.AssignedEmployeeIDs)
	})

	t.Run("目标满员时拖动被拒绝且不丢员工", func(t *testing.T) {
		err := planner.ApplyMove(domain.DragMoveRequest{DestShiftID: source.ID, EmployeeID: 2})
		require.NoError(t, err)

		err = planner.ApplyMove(domain.DragMoveRequest{SourceShiftID: source.ID, DestShiftID: dest.ID, EmployeeID: 2})
		assert.ErrorIs(t, err, ErrCapacityExceeded)

		got, err := engine.Store().Get(source.ID)
		require.NoError(t, err)
		assert.Contains(t, got.AssignedEmployeeIDs, int64(2))
	})

	t.Run("同格子内拖动只调整顺序", func(t *testing.T) {
		err := planner.ApplyMove(domain.DragMoveRequest{DestShiftID: source.ID, EmployeeID: 3})
		require.NoError(t, err)

		err = planner.ApplyMove(domain.DragMoveRequest{SourceShiftID: source.ID, DestShiftID: source.ID, EmployeeID: 3, NewIndex: 0})
		require.NoError(t, err)

		got, err := engine.Store().Get(source.ID)
		require.NoError(t, err)
		assert.Equal(t, []int64{3, 2}, got.AssignedEmployeeIDs)
	})
}

func TestPlannerSaveWeek(t *testing.T) {
	engine := newTestEngine(t)
	planner := NewPlanner(engine, testTemplates())

	existing, err := engine.Store().Create(newTestShift(t, "2025-03-10T09:00", "2025-03-10T15:00"))
	require.NoError(t, err)
	_, err = engine.Assign(existing.ID, 1)
	require.NoError(t, err)

	cells := []*domain.WeeklyPlanCell{
		{
			// 已有后备班次的格子：覆盖分配名单
			DayOfWeek:  1,
			TimeSlotID: domain.ShiftTypeOpen,
			ShiftIDs:   []string{existing.ID},
			Employees: []domain.PlanCellEmployee{
				{ID: 2, Name: "李欣"},
			},
		},
		{
			// 没有后备班次的格子：按模板新建
			DayOfWeek:  5,
			TimeSlotID: domain.ShiftTypeClose,
			Employees: []domain.PlanCellEmployee{
				{ID: 1, Name: "王磊"},
			},
		},
	}

	require.NoError(t, planner.SaveWeek(mustTime(t, testWeekStart), cells))

	got, err := engine.Store().Get(existing.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, got.AssignedEmployeeIDs)

	from := mustTime(t, "2025-03-14T00:00")
	to := mustTime(t, "2025-03-15T00:00")
	created := engine.Store().List(&from, &to)
	require.Len(t, created, 1)
	assert.Equal(t, domain.ShiftTypeClose, created[0].ShiftType)
	assert.Equal(t, mustTime(t, "2025-03-14T15:00"), created[0].Start)
	assert.Equal(t, mustTime(t, "2025-03-14T22:00"), created[0].End)
	assert.Equal(t, []int64{1}, created[0].AssignedEmployeeIDs)
	assert.Equal(t, 3, created[0].RequiredStaff)
}

func TestPlannerSaveWeekClampsToBusinessHours(t *testing.T) {
	engine := newTestEngine(t) // 营业时间 09:00 - 22:00
	lateTemplate := &domain.ShiftTemplate{
		ID:            3,
		Name:          "夜班",
		ShiftType:     domain.ShiftType("night"),
		StartTime:     "20:00",
		EndTime:       "23:30",
		RequiredStaff: 1,
	}
	planner := NewPlanner(engine, []*domain.ShiftTemplate{lateTemplate})

	t.Run("超出营业时间的部分被收缩", func(t *testing.T) {
		cells := []*domain.WeeklyPlanCell{
			{
				DayOfWeek:  1,
				TimeSlotID: lateTemplate.ShiftType,
				Employees:  []domain.PlanCellEmployee{{ID: 1, Name: "王磊"}},
			},
		}
		require.NoError(t, planner.SaveWeek(mustTime(t, testWeekStart), cells))

		from := mustTime(t, "2025-03-10T00:00")
		to := mustTime(t, "2025-03-11T00:00")
		created := engine.Store().List(&from, &to)
		require.Len(t, created, 1)
		assert.Equal(t, mustTime(t, "2025-03-10T20:00"), created[0].Start)
		assert.Equal(t, mustTime(t, "2025-03-10T22:00"), created[0].End)
	})

	t.Run("完全在营业时间外的模板被拒绝", func(t *testing.T) {
		closed, err := NewEngine(NewStore(), "09:00", "18:00")
		require.NoError(t, err)
		p := NewPlanner(closed, []*domain.ShiftTemplate{lateTemplate})

		cells := []*domain.WeeklyPlanCell{
			{
				DayOfWeek:  1,
				TimeSlotID: lateTemplate.ShiftType,
				Employees:  []domain.PlanCellEmployee{{ID: 1, Name: "王磊"}},
			},
		}
		assert.ErrorIs(t, p.SaveWeek(mustTime(t, testWeekStart), cells), ErrOutsideBusinessHours)
	})
}
