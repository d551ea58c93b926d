package utils

import (
	"fmt"
	"time"

	"github.com/xingye-dev/store-roster/backend/internal/domain"
)

// ValidateShiftTemplateTime 检查模板的起止时间格式和先后关系
func ValidateShiftTemplateTime(template *domain.ShiftTemplate) error {
	startTime, err := time.Parse("15:04", template.StartTime)
	if err != nil {
		return fmt.Errorf("模板 %s 的开始时间格式错误", template.Name)
	}
	endTime, err := time.Parse("15:04", template.EndTime)
	if err != nil {
		return fmt.Errorf("模板 %s 的结束时间格式错误", template.Name)
	}
	if !endTime.After(startTime) {
		return fmt.Errorf("模板 %s 的结束时间必须晚于开始时间", template.Name)
	}
	return nil
}

// ValidateTemplateSlots 检查各个模板的时段之间是否冲突
// 计划表的每个时段格子来自一个模板，时段重叠会导致班次归属不唯一
func ValidateTemplateSlots(templates []*domain.ShiftTemplate) error {
	for i := 0; i < len(templates); i++ {
		iStart, _ := time.Parse("15:04", templates[i].StartTime)
		iEnd, _ := time.Parse("15:04", templates[i].EndTime)

		for j := i + 1; j < len(templates); j++ {
			jStart, _ := time.Parse("15:04", templates[j].StartTime)
			jEnd, _ := time.Parse("15:04", templates[j].EndTime)

			if !(jStart.After(iEnd) || jStart.Equal(iEnd) || iStart.After(jEnd) || iStart.Equal(jEnd)) {
				return fmt.Errorf("模板 %s 和模板 %s 的时段冲突", templates[i].Name, templates[j].Name)
			}
		}
	}
	return nil
}

// ValidateRecurrence 检查重复规则是否合法
func ValidateRecurrence(recurrence *domain.Recurrence, baseStart time.Time) error {
	if recurrence == nil {
		return nil
	}

	if recurrence.Frequency != "weekly" {
		return fmt.Errorf("不支持的重复频率 %s", recurrence.Frequency)
	}

	for _, day := range recurrence.DaysOfWeek {
		if day < 0 || day > 6 {
			return fmt.Errorf("非法的星期 %d", day)
		}
	}

	// 按日历日期比较，endDate 与开始时间同一天也合法
	startDay := time.Date(baseStart.Year(), baseStart.Month(), baseStart.Day(), 0, 0, 0, 0, baseStart.Location())
	if recurrence.EndDate.Before(startDay) {
		return fmt.Errorf("重复规则的结束日期不能早于班次的开始日期")
	}

	return nil
}
