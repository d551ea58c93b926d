package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xingye-dev/store-roster/backend/internal/domain"
)

func newTestShift(t *testing.T, start, end string) *domain.Shift {
	t.Helper()
	return &domain.Shift{
		Start:     mustTime(t, start),
		End:       mustTime(t, end),
		ShiftType: domain.ShiftTypeOpen,
	}
}

func TestStoreCreate(t *testing.T) {
	store := NewStore()

	t.Run("分配 id 并填充默认值", func(t *testing.T) {
		created, err := store.Create(newTestShift(t, "2025-03-10T09:00", "2025-03-10T15:00"))
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, 1, created.RequiredStaff)
		assert.Empty(t, created.AssignedEmployeeIDs)
		assert.Equal(t, domain.ShiftUnassigned, created.Status())
	})

	t.Run("开始时间晚于结束时间被拒绝", func(t *testing.T) {
		_, err := store.Create(newTestShift(t, "2025-03-10T15:00", "2025-03-10T09:00"))
		assert.ErrorIs(t, err, ErrInvalidInterval)
	})

	t.Run("人数上下界不合法被拒绝", func(t *testing.T) {
		shift := newTestShift(t, "2025-03-10T09:00", "2025-03-10T15:00")
		shift.RequiredStaff = 3
		shift.MaxStaff = intPtr(2)
		_, err := store.Create(shift)
		assert.ErrorIs(t, err, ErrInvalidStaffBounds)
	})
}

func TestStoreUpdate(t *testing.T) {
	store := NewStore()
	created, err := store.Create(newTestShift(t, "2025-03-10T09:00", "2025-03-10T15:00"))
	require.NoError(t, err)

	t.Run("合法更新整条替换", func(t *testing.T) {
		created.RequiredStaff = 2
		updated, err := store.Update(created)
		require.NoError(t, err)
		assert.Equal(t, 2, updated.RequiredStaff)
	})

	t.Run("非法更新原子拒绝，原记录保持不变", func(t *testing.T) {
		bad := created.Clone()
		bad.AssignedEmployeeIDs = []int64{7, 7} // 违反唯一性
		_, err := store.Update(bad)
		assert.ErrorIs(t, err, ErrDuplicateAssignment)

		current, err := store.Get(created.ID)
		require.NoError(t, err)
		assert.Empty(t, current.AssignedEmployeeIDs)
	})

	t.Run("更新不存在的班次", func(t *testing.T) {
		missing := newTestShift(t, "2025-03-10T09:00", "2025-03-10T15:00")
		missing.ID = "missing"
		_, err := store.Update(missing)
		assert.ErrorIs(t, err, ErrShiftNotFound)
	})
}

func TestStoreGetReturnsCopy(t *testing.T) {
	store := NewStore()
	created, err := store.Create(newTestShift(t, "2025-03-10T09:00", "2025-03-10T15:00"))
	require.NoError(t, err)

	// 修改副本不应影响存储中的记录
	got, err := store.Get(created.ID)
	require.NoError(t, err)
	got.AssignedEmployeeIDs = append(got.AssignedEmployeeIDs, 42)

	again, err := store.Get(created.ID)
	require.NoError(t, err)
	assert.Empty(t, again.AssignedEmployeeIDs)
}

func TestStoreList(t *testing.T) {
	store := NewStore()

	_, err := store.Create(newTestShift(t, "2025-03-10T09:00", "2025-03-10T15:00"))
	require.NoError(t, err)
	_, err = store.Create(newTestShift(t, "2025-03-12T09:00", "2025-03-12T15:00"))
	require.NoError(t, err)
	_, err = store.Create(newTestShift(t, "2025-03-20T09:00", "2025-03-20T15:00"))
	require.NoError(t, err)

	t.Run("按日期范围过滤并按开始时间排序", func(t *testing.T) {
		from := mustTime(t, "2025-03-09T00:00")
		to := mustTime(t, "2025-03-16T00:00")
		shifts := store.List(&from, &to)
		require.Len(t, shifts, 2)
		assert.True(t, shifts[0].Start.Before(shifts[1].Start))
	})

	t.Run("不限范围返回全部", func(t *testing.T) {
		assert.Len(t, store.List(nil, nil), 3)
	})
}

func TestStoreRemoveAndReset(t *testing.T) {
	store := NewStore()
	created, err := store.Create(newTestShift(t, "2025-03-10T09:00", "2025-03-10T15:00"))
	require.NoError(t, err)

	assert.True(t, store.Remove(created.ID))
	assert.False(t, store.Remove(created.ID))

	_, err = store.Create(newTestShift(t, "2025-03-11T09:00", "2025-03-11T15:00"))
	require.NoError(t, err)
	store.Reset()
	assert.Empty(t, store.List(nil, nil))
}

func TestShiftStatusDerivation(t *testing.T) {
	shift := &domain.Shift{Start: time.Now(), End: time.Now().Add(6 * time.Hour)}

	assert.Equal(t, domain.ShiftUnassigned, shift.Status())

	shift.AssignedEmployeeIDs = []int64{1}
	assert.Equal(t, domain.ShiftAssigned, shift.Status())

	shift.SubstituteRequested = true
	assert.Equal(t, domain.ShiftSubstituteRequested, shift.Status())

	// 没有人值班时即使请求了替班，状态也是 unassigned
	shift.AssignedEmployeeIDs = nil
	assert.Equal(t, domain.ShiftUnassigned, shift.Status())

	shift.AssignedEmployeeIDs = []int64{1}
	shift.SubstituteRequested = false
	assert.Equal(t, domain.ShiftAssigned, shift.Status())
}
