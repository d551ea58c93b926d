package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/xingye-dev/store-roster/backend/internal/domain"
)

func TestValidateShiftTemplateTime(t *testing.T) {
	t.Run("合法模板", func(t *testing.T) {
		template := &domain.ShiftTemplate{Name: "早班", StartTime: "09:00", EndTime: "14:00"}
		assert.NoError(t, ValidateShiftTemplateTime(template))
	})

	t.Run("时间格式错误", func(t *testing.T) {
		template := &domain.ShiftTemplate{Name: "早班", StartTime: "9 点", EndTime: "14:00"}
		assert.Error(t, ValidateShiftTemplateTime(template))
	})

	t.Run("结束时间不晚于开始时间", func(t *testing.T) {
		template := &domain.ShiftTemplate{Name: "早班", StartTime: "14:00", EndTime: "09:00"}
		assert.Error(t, ValidateShiftTemplateTime(template))
	})
}

func TestValidateTemplateSlots(t *testing.T) {
	t.Run("首尾相接不算冲突", func(t *testing.T) {
		templates := []*domain.ShiftTemplate{
			{Name: "早班", StartTime: "09:00", EndTime: "14:00"},
			{Name: "中班", StartTime: "14:00", EndTime: "18:00"},
		}
		assert.NoError(t, ValidateTemplateSlots(templates))
	})

	t.Run("时段重叠", func(t *testing.T) {
		templates := []*domain.ShiftTemplate{
			{Name: "早班", StartTime: "09:00", EndTime: "14:00"},
			{Name: "加强班", StartTime: "12:00", EndTime: "16:00"},
		}
		assert.Error(t, ValidateTemplateSlots(templates))
	})
}

func TestValidateRecurrence(t *testing.T) {
	baseStart := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("nil 重复规则合法", func(t *testing.T) {
		assert.NoError(t, ValidateRecurrence(nil, baseStart))
	})

	t.Run("合法的每周规则", func(t *testing.T) {
		recurrence := &domain.Recurrence{
			Frequency:  "weekly",
			DaysOfWeek: []int{1, 3, 5},
			EndDate:    baseStart.AddDate(0, 1, 0),
		}
		assert.NoError(t, ValidateRecurrence(recurrence, baseStart))
	})

	t.Run("不支持的频率", func(t *testing.T) {
		recurrence := &domain.Recurrence{Frequency: "daily", DaysOfWeek: []int{1}, EndDate: baseStart.AddDate(0, 1, 0)}
		assert.Error(t, ValidateRecurrence(recurrence, baseStart))
	})

	t.Run("非法的星期", func(t *testing.T) {
		recurrence := &domain.Recurrence{Frequency: "weekly", DaysOfWeek: []int{7}, EndDate: baseStart.AddDate(0, 1, 0)}
		assert.Error(t, ValidateRecurrence(recurrence, baseStart))
	})

	t.Run("结束日期早于开始日期", func(t *testing.T) {
		recurrence := &domain.Recurrence{Frequency: "weekly", DaysOfWeek: []int{1}, EndDate: baseStart.AddDate(0, 0, -1)}
		assert.Error(t, ValidateRecurrence(recurrence, baseStart))
	})

	t.Run("结束日期与开始时间同一天", func(t *testing.T) {
		// endDate 的墙钟时间早于班次开始也应合法，只比较日历日期
		recurrence := &domain.Recurrence{
			Frequency:  "weekly",
			DaysOfWeek: []int{1},
			EndDate:    time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		}
		assert.NoError(t, ValidateRecurrence(recurrence, baseStart))
	})
}
