package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xingye-dev/store-roster/backend/internal/domain"
)

func testEmployee(id int64, status domain.EmployeeStatus) *domain.Employee {
	return &domain.Employee{
		ID:       id,
		FullName: "测试员工",
		Role:     domain.RoleStaff,
		Status:   status,
	}
}

func testShift(id string, day int, startHour, endHour, required int) *domain.Shift {
	base := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC).AddDate(0, 0, day)
	return &domain.Shift{
		ID:            id,
		Start:         base.Add(time.Duration(startHour) * time.Hour),
		End:           base.Add(time.Duration(endHour) * time.Hour),
		ShiftType:     domain.ShiftTypeOpen,
		RequiredStaff: required,
	}
}

func testParameters() *Parameters {
	p := DefaultParameters()
	// 测试时适当缩小规模
	p.PopulationSize = 20
	p.MaxGenerations = 30
	return p
}

func TestNew(t *testing.T) {
	t.Run("没有在职员工时报错", func(t *testing.T) {
		_, err := New(testParameters(), []*domain.Employee{
			testEmployee(1, domain.EmployeeInactive),
		}, []*domain.Shift{testShift("s1", 0, 9, 15, 1)})
		assert.Error(t, err)
	})

	t.Run("没有班次时报错", func(t *testing.T) {
		_, err := New(testParameters(), []*domain.Employee{
			testEmployee(1, domain.EmployeeActive),
		}, nil)
		assert.Error(t, err)
	})

	t.Run("离职员工被排除在候选之外", func(t *testing.T) {
		s, err := New(testParameters(), []*domain.Employee{
			testEmployee(1, domain.EmployeeActive),
			testEmployee(2, domain.EmployeeInactive),
			testEmployee(3, domain.EmployeePending),
		}, []*domain.Shift{testShift("s1", 0, 9, 15, 1)})
		require.NoError(t, err)
		assert.Len(t, s.employees, 2)
	})
}

func TestSchedule(t *testing.T) {
	employees := []*domain.Employee{
		testEmployee(1, domain.EmployeeActive),
		testEmployee(2, domain.EmployeeActive),
		testEmployee(3, domain.EmployeeActive),
		testEmployee(4, domain.EmployeeInactive),
	}
	shifts := []*domain.Shift{
		testShift("s1", 0, 9, 15, 2),
		testShift("s2", 0, 15, 22, 2),
		testShift("s3", 1, 9, 15, 2),
		testShift("s4", 1, 15, 22, 1),
	}

	s, err := New(testParameters(), employees, shifts)
	require.NoError(t, err)

	assignments, err := s.Schedule()
	require.NoError(t, err)

	t.Run("每个班次都有一条结果", func(t *testing.T) {
		require.Len(t, assignments, len(shifts))

		seen := make(map[string]bool)
		for _, a := range assignments {
			seen[a.ShiftID] = true
		}
		for _, shift := range shifts {
			assert.True(t, seen[shift.ID], "班次 %s 没有排班结果", shift.ID)
		}
	})

	t.Run("人数不超过需求且没有重复", func(t *testing.T) {
		requiredByID := make(map[string]int)
		for _, shift := range shifts {
			requiredByID[shift.ID] = shift.RequiredStaff
		}

		for _, a := range assignments {
			assert.LessOrEqual(t, len(a.EmployeeIDs), requiredByID[a.ShiftID])

			seen := make(map[int64]bool)
			for _, id := range a.EmployeeIDs {
				assert.False(t, seen[id], "员工 %d 在班次 %s 中出现了两次", id, a.ShiftID)
				seen[id] = true
			}
		}
	})

	t.Run("离职员工不会被排进来", func(t *testing.T) {
		for _, a := range assignments {
			assert.NotContains(t, a.EmployeeIDs, int64(4))
		}
	})
}

func TestCalcFitnessOverlapPenalty(t *testing.T) {
	employees := []*domain.Employee{
		testEmployee(1, domain.EmployeeActive),
		testEmployee(2, domain.EmployeeActive),
	}
	// 两个时间重叠的班次
	shifts := []*domain.Shift{
		testShift("s1", 0, 9, 15, 1),
		testShift("s2", 0, 12, 18, 1),
	}

	s, err := New(testParameters(), employees, shifts)
	require.NoError(t, err)

	conflicted := &Chromosome{genes: []*Gene{
		{shiftID: "s1", start: shifts[0].Start, end: shifts[0].End, employeeIDs: []int64{1}, requiredNum: 1, workDuration: 6},
		{shiftID: "s2", start: shifts[1].Start, end: shifts[1].End, employeeIDs: []int64{1}, requiredNum: 1, workDuration: 6},
	}}
	clean := &Chromosome{genes: []*Gene{
		{shiftID: "s1", start: shifts[0].Start, end: shifts[0].End, employeeIDs: []int64{1}, requiredNum: 1, workDuration: 6},
		{shiftID: "s2", start: shifts[1].Start, end: shifts[1].End, employeeIDs: []int64{2}, requiredNum: 1, workDuration: 6},
	}}

	s.calcFitness(conflicted)
	s.calcFitness(clean)

	// 同一个员工被排进两个重叠班次的方案应当明显更差
	assert.Less(t, conflicted.fitness, clean.fitness)
}
