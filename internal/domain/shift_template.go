package domain

import (
	"time"
)

// ShiftTemplate 描述某一类班次的默认时段和人数
// 只存墙钟时间，不含日期，周计划表按模板实例化空白格子
type ShiftTemplate struct {
	ID            int64          `json:"id"`
	Name          string         `json:"name"`
	ShiftType     ShiftType      `json:"shiftType"`
	StartTime     string         `json:"startTime"` // 格式 15:04
	EndTime       string         `json:"endTime"`
	RequiredStaff int            `json:"requiredStaff"`
	Color         string         `json:"color"`
	Positions     map[string]int `json:"positions,omitempty"`    // 岗位 -> 需求人数
	DayOverrides  map[int]int    `json:"dayOverrides,omitempty"` // 星期 -> 覆盖后的需求人数
	CreatedAt     time.Time      `json:"createdAt"`
	Version       int32          `json:"-"`
}

// RequiredStaffOn 返回模板在某个星期几的需求人数
func (t *ShiftTemplate) RequiredStaffOn(dayOfWeek int) int {
	if n, ok := t.DayOverrides[dayOfWeek]; ok {
		return n
	}
	return t.RequiredStaff
}
