package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02T15:04", value)
	require.NoError(t, err)
	return parsed
}

func TestOverlaps(t *testing.T) {
	day := func(clock string) time.Time {
		return mustTime(t, "2025-03-10T"+clock)
	}

	t.Run("相交的区间", func(t *testing.T) {
		assert.True(t, Overlaps(day("09:00"), day("12:00"), day("11:00"), day("14:00")))
		assert.True(t, Overlaps(day("11:00"), day("14:00"), day("09:00"), day("12:00")))
		assert.True(t, Overlaps(day("09:00"), day("18:00"), day("10:00"), day("11:00")))
	})

	t.Run("端点相接不算相交", func(t *testing.T) {
		// 区间是左闭右开的
		assert.False(t, Overlaps(day("09:00"), day("10:00"), day("10:00"), day("11:00")))
		assert.False(t, Overlaps(day("10:00"), day("11:00"), day("09:00"), day("10:00")))
	})

	t.Run("完全分离", func(t *testing.T) {
		assert.False(t, Overlaps(day("09:00"), day("10:00"), day("12:00"), day("13:00")))
	})
}

func TestDurationHours(t *testing.T) {
	t.Run("整数小时", func(t *testing.T) {
		hours, err := DurationHours(mustTime(t, "2025-03-10T09:00"), mustTime(t, "2025-03-10T15:00"))
		require.NoError(t, err)
		assert.Equal(t, 6.0, hours)
	})

	t.Run("小数小时", func(t *testing.T) {
		hours, err := DurationHours(mustTime(t, "2025-03-10T09:00"), mustTime(t, "2025-03-10T10:30"))
		require.NoError(t, err)
		assert.Equal(t, 1.5, hours)
	})

	t.Run("负时长是错误", func(t *testing.T) {
		_, err := DurationHours(mustTime(t, "2025-03-10T15:00"), mustTime(t, "2025-03-10T09:00"))
		assert.ErrorIs(t, err, ErrInvalidInterval)
	})
}

func TestWeekdayOf(t *testing.T) {
	// 2025-03-09 是周日
	assert.Equal(t, 0, WeekdayOf(mustTime(t, "2025-03-09T12:00")))
	assert.Equal(t, 1, WeekdayOf(mustTime(t, "2025-03-10T12:00")))
	assert.Equal(t, 6, WeekdayOf(mustTime(t, "2025-03-15T12:00")))
}

func TestExpandWeeklyRecurrence(t *testing.T) {
	baseStart := mustTime(t, "2025-03-10T09:00") // 周一
	baseEnd := mustTime(t, "2025-03-10T15:00")

	t.Run("按周一三五展开", func(t *testing.T) {
		endDate := mustTime(t, "2025-03-21T00:00")
		occurrences := ExpandWeeklyRecurrence(baseStart, baseEnd, []int{1, 3, 5}, endDate)

		wantStarts := []string{
			"2025-03-10T09:00", // 周一
			"2025-03-12T09:00", // 周三
			"2025-03-14T09:00", // 周五
			"2025-03-17T09:00",
			"2025-03-19T09:00",
			"2025-03-21T09:00", // endDate 当天也包含
		}

		require.Len(t, occurrences, len(wantStarts))
		for i, want := range wantStarts {
			assert.Equal(t, mustTime(t, want), occurrences[i].Start)
			// 保留基准班次的时长
			assert.Equal(t, 6*time.Hour, occurrences[i].End.Sub(occurrences[i].Start))
		}
	})

	t.Run("展开结果只含指定的星期", func(t *testing.T) {
		occurrences := ExpandWeeklyRecurrence(baseStart, baseEnd, []int{1, 3, 5}, mustTime(t, "2025-03-21T00:00"))
		for _, occ := range occurrences {
			assert.Contains(t, []int{1, 3, 5}, WeekdayOf(occ.Start))
		}
	})

	t.Run("空的星期集合", func(t *testing.T) {
		occurrences := ExpandWeeklyRecurrence(baseStart, baseEnd, []int{}, mustTime(t, "2025-03-21T00:00"))
		assert.Empty(t, occurrences)
	})

	t.Run("endDate 早于基准日期", func(t *testing.T) {
		occurrences := ExpandWeeklyRecurrence(baseStart, baseEnd, []int{1, 3, 5}, mustTime(t, "2025-03-01T00:00"))
		assert.Empty(t, occurrences)
	})

	t.Run("纯函数，重复调用结果一致", func(t *testing.T) {
		first := ExpandWeeklyRecurrence(baseStart, baseEnd, []int{2, 4}, mustTime(t, "2025-03-31T00:00"))
		second := ExpandWeeklyRecurrence(baseStart, baseEnd, []int{2, 4}, mustTime(t, "2025-03-31T00:00"))
		assert.Equal(t, first, second)
	})
}
