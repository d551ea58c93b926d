package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xingye-dev/store-roster/backend/internal/domain"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(NewStore(), "09:00", "22:00")
	require.NoError(t, err)
	return engine
}

func TestEngineAssign(t *testing.T) {
	engine := newTestEngine(t)

	shift := newTestShift(t, "2025-03-10T09:00", "2025-03-10T15:00")
	shift.RequiredStaff = 2
	shift.MaxStaff = intPtr(2)
	created, err := engine.Store().Create(shift)
	require.NoError(t, err)

	// 分配第一个员工：状态变为 assigned，但仍然缺人
	got, err := engine.Assign(created.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.ShiftAssigned, got.Status())
	assert.Equal(t, domain.Understaffed, got.Sufficiency())

	// 分配第二个员工：人数充足
	got, err = engine.Assign(created.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, got.AssignedEmployeeIDs)
	assert.Equal(t, domain.Sufficient, got.Sufficiency())

	// 第三个员工超出上限，名单保持 {1, 2} 不变
	_, err = engine.Assign(created.ID, 3)
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	current, err := engine.Store().Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, current.AssignedEmployeeIDs)

	// 重复分配
	_, err = engine.Assign(created.ID, 1)
	assert.ErrorIs(t, err, ErrDuplicateAssignment)

	// 不存在的班次
	_, err = engine.Assign("missing", 1)
	assert.ErrorIs(t, err, ErrShiftNotFound)
}

func TestEngineUnassign(t *testing.T) {
	engine := newTestEngine(t)

	created, err := engine.Store().Create(newTestShift(t, "2025-03-10T09:00", "2025-03-10T15:00"))
	require.NoError(t, err)

	_, err = engine.Assign(created.ID, 1)
	require.NoError(t, err)
	_, err = engine.SetPerEmployeeTime(created.ID, 1, mustTime(t, "2025-03-10T10:00"), mustTime(t, "2025-03-10T14:00"))
	require.NoError(t, err)

	t.Run("移除员工并清理自定义时段", func(t *testing.T) {
		got, err := engine.Unassign(created.ID, 1)
		require.NoError(t, err)
		assert.Empty(t, got.AssignedEmployeeIDs)
		assert.NotContains(t, got.PerEmployeeTimes, int64(1))
		assert.Equal(t, domain.ShiftUnassigned, got.Status())
	})

	t.Run("重复移除返回 NotAssigned 且状态不变", func(t *testing.T) {
		before, err := engine.Store().Get(created.ID)
		require.NoError(t, err)

		_, err = engine.Unassign(created.ID, 1)
		assert.ErrorIs(t, err, ErrNotAssigned)

		after, err := engine.Store().Get(created.ID)
		require.NoError(t, err)
		assert.Equal(t, before.AssignedEmployeeIDs, after.AssignedEmployeeIDs)
	})
}

func TestEngineMove(t *testing.T) {
	engine := newTestEngine(t)

	shiftA, err := engine.Store().Create(newTestShift(t, "2025-03-10T09:00", "2025-03-10T15:00"))
	require.NoError(t, err)

	full := newTestShift(t, "2025-03-10T15:00", "2025-03-10T22:00")
	full.RequiredStaff = 1
	full.MaxStaff = intPtr(1)
	shiftB, err := engine.Store().Create(full)
	require.NoError(t, err)

	_, err = engine.Assign(shiftA.ID, 1)
	require.NoError(t, err)
	_, err = engine.Assign(shiftB.ID, 9)
	require.NoError(t, err)

	t.Run("目标满员时拒绝且员工留在源班次", func(t *testing.T) {
		_, _, err := engine.Move(shiftA.ID, shiftB.ID, 1)
		assert.ErrorIs(t, err, ErrCapacityExceeded)

		source, err := engine.Store().Get(shiftA.ID)
		require.NoError(t, err)
		assert.Equal(t, []int64{1}, source.AssignedEmployeeIDs)

		dest, err := engine.Store().Get(shiftB.ID)
		require.NoError(t, err)
		assert.Equal(t, []int64{9}, dest.AssignedEmployeeIDs)
	})

	t.Run("合法移动两边同时提交", func(t *testing.T) {
		shiftC, err := engine.Store().Create(newTestShift(t, "2025-03-11T09:00", "2025-03-11T15:00"))
		require.NoError(t, err)

		source, dest, err := engine.Move(shiftA.ID, shiftC.ID, 1)
		require.NoError(t, err)
		assert.Empty(t, source.AssignedEmployeeIDs)
		assert.Equal(t, []int64{1}, dest.AssignedEmployeeIDs)
	})

	t.Run("移动未分配的员工被拒绝", func(t *testing.T) {
		_, _, err := engine.Move(shiftA.ID, shiftB.ID, 42)
		assert.ErrorIs(t, err, ErrNotAssigned)
	})
}

func TestEngineReorder(t *testing.T) {
	engine := newTestEngine(t)

	created, err := engine.Store().Create(newTestShift(t, "2025-03-10T09:00", "2025-03-10T15:00"))
	require.NoError(t, err)

	for _, id := range []int64{1, 2, 3} {
		_, err = engine.Assign(created.ID, id)
		require.NoError(t, err)
	}

	got, err := engine.Reorder(created.ID, 3, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1, 2}, got.AssignedEmployeeIDs)

	// 越界的下标收缩到合法范围
	got, err = engine.Reorder(created.ID, 3, 99)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, got.AssignedEmployeeIDs)

	_, err = engine.Reorder(created.ID, 42, 0)
	assert.ErrorIs(t, err, ErrNotAssigned)
}

func TestEngineRequestSubstitute(t *testing.T) {
	engine := newTestEngine(t)

	created, err := engine.Store().Create(newTestShift(t, "2025-03-10T09:00", "2025-03-10T15:00"))
	require.NoError(t, err)
	_, err = engine.Assign(created.ID, 1)
	require.NoError(t, err)

	// 打开替班请求
	got, err := engine.RequestSubstitute(created.ID, true)
	require.NoError(t, err)
	assert.Equal(t, domain.ShiftSubstituteRequested, got.Status())
	assert.True(t, got.SubstituteHighPriority)

	// 再次调用关闭请求，状态回到 assigned
	got, err = engine.RequestSubstitute(created.ID, false)
	require.NoError(t, err)
	assert.Equal(t, domain.ShiftAssigned, got.Status())
	assert.False(t, got.SubstituteHighPriority)
}

func TestEngineSetPerEmployeeTime(t *testing.T) {
	engine := newTestEngine(t)

	created, err := engine.Store().Create(newTestShift(t, "2025-03-10T09:00", "2025-03-10T15:00"))
	require.NoError(t, err)
	_, err = engine.Assign(created.ID, 1)
	require.NoError(t, err)

	t.Run("合法时段", func(t *testing.T) {
		got, err := engine.SetPerEmployeeTime(created.ID, 1, mustTime(t, "2025-03-10T10:00"), mustTime(t, "2025-03-10T13:00"))
		require.NoError(t, err)
		tr := got.EmployeeTime(1)
		assert.Equal(t, mustTime(t, "2025-03-10T10:00"), tr.Start)
		// 班次自身的区间不受影响
		assert.Equal(t, mustTime(t, "2025-03-10T09:00"), got.Start)
	})

	t.Run("开始不早于结束被拒绝", func(t *testing.T) {
		_, err := engine.SetPerEmployeeTime(created.ID, 1, mustTime(t, "2025-03-10T13:00"), mustTime(t, "2025-03-10T10:00"))
		assert.ErrorIs(t, err, ErrInvalidInterval)
	})

	t.Run("未分配的员工不能设置时段", func(t *testing.T) {
		_, err := engine.SetPerEmployeeTime(created.ID, 42, mustTime(t, "2025-03-10T10:00"), mustTime(t, "2025-03-10T13:00"))
		assert.ErrorIs(t, err, ErrNotAssigned)
	})
}

func TestEngineClampToBusinessHours(t *testing.T) {
	engine := newTestEngine(t) // 营业时间 09:00 - 22:00

	t.Run("两端都收缩", func(t *testing.T) {
		start, end, err := engine.ClampToBusinessHours(mustTime(t, "2025-03-10T07:30"), mustTime(t, "2025-03-10T23:00"))
		require.NoError(t, err)
		assert.Equal(t, mustTime(t, "2025-03-10T09:00"), start)
		assert.Equal(t, mustTime(t, "2025-03-10T22:00"), end)
	})

	t.Run("完全在营业时间内不变", func(t *testing.T) {
		start, end, err := engine.ClampToBusinessHours(mustTime(t, "2025-03-10T10:00"), mustTime(t, "2025-03-10T18:00"))
		require.NoError(t, err)
		assert.Equal(t, mustTime(t, "2025-03-10T10:00"), start)
		assert.Equal(t, mustTime(t, "2025-03-10T18:00"), end)
	})

	t.Run("收缩后时段为空被拒绝", func(t *testing.T) {
		_, _, err := engine.ClampToBusinessHours(mustTime(t, "2025-03-10T06:00"), mustTime(t, "2025-03-10T08:00"))
		assert.ErrorIs(t, err, ErrOutsideBusinessHours)
	})
}

func TestEngineOverlappingAssignments(t *testing.T) {
	engine := newTestEngine(t)

	first, err := engine.Store().Create(newTestShift(t, "2025-03-10T09:00", "2025-03-10T15:00"))
	require.NoError(t, err)
	second, err := engine.Store().Create(newTestShift(t, "2025-03-10T14:00", "2025-03-10T22:00"))
	require.NoError(t, err)
	third, err := engine.Store().Create(newTestShift(t, "2025-03-10T15:00", "2025-03-10T22:00"))
	require.NoError(t, err)

	// 员工 1 在两个相交的班次中，员工 2 的两个班次只是首尾相接
	_, err = engine.Assign(first.ID, 1)
	require.NoError(t, err)
	_, err = engine.Assign(second.ID, 1)
	require.NoError(t, err)
	_, err = engine.Assign(first.ID, 2)
	require.NoError(t, err)
	_, err = engine.Assign(third.ID, 2)
	require.NoError(t, err)

	bookings := engine.OverlappingAssignments()
	require.Len(t, bookings, 1)
	assert.Equal(t, int64(1), bookings[0].EmployeeID)
}
