package schedule

import (
	"slices"
	"time"

	"github.com/xingye-dev/store-roster/backend/internal/domain"
)

// Overlaps 判断两个左闭右开区间 [start, end) 是否相交
// 端点相接（前一个的结束等于后一个的开始）不算相交
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// DurationHours 计算时段长度（小时），允许小数
func DurationHours(start, end time.Time) (float64, error) {
	if end.Before(start) {
		return 0, ErrInvalidInterval
	}
	return end.Sub(start).Hours(), nil
}

// WeekdayOf 返回时间对应的星期，0 = 周日
func WeekdayOf(t time.Time) int {
	return int(t.Weekday())
}

// ExpandWeeklyRecurrence 把每周重复规则展开为具体的班次时段
// 从基准日期（含）到 endDate（含）之间，每个匹配的星期产生一个时段，
// 保留基准班次的墙钟时间和时长
// 纯函数，相同输入永远得到相同的展开结果，避免各处各自存储衍生记录导致漂移
func ExpandWeeklyRecurrence(baseStart, baseEnd time.Time, daysOfWeek []int, endDate time.Time) []domain.TimeRange {
	occurrences := make([]domain.TimeRange, 0)

	if len(daysOfWeek) == 0 {
		return occurrences
	}

	duration := baseEnd.Sub(baseStart)
	loc := baseStart.Location()

	// 只按日期判断是否超过 endDate，endDate 当天的班次也要包含
	lastDay := time.Date(endDate.Year(), endDate.Month(), endDate.Day(), 0, 0, 0, 0, loc)

	for day := time.Date(baseStart.Year(), baseStart.Month(), baseStart.Day(), 0, 0, 0, 0, loc); !day.After(lastDay); day = day.AddDate(0, 0, 1) {
		if !slices.Contains(daysOfWeek, int(day.Weekday())) {
			continue
		}

		start := time.Date(day.Year(), day.Month(), day.Day(), baseStart.Hour(), baseStart.Minute(), baseStart.Second(), 0, loc)
		occurrences = append(occurrences, domain.TimeRange{
			Start: start,
			End:   start.Add(duration),
		})
	}

	return occurrences
}

// parseWallClock 解析 15:04 格式的墙钟时间，返回当天零点起经过的时长
func parseWallClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// WallClockOf 返回时间的 15:04 格式墙钟表示，计划表按它匹配模板时段
func WallClockOf(t time.Time) string {
	return t.Format("15:04")
}
