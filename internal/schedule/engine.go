package schedule

import (
	"fmt"
	"slices"
	"time"

	"github.com/xingye-dev/store-roster/backend/internal/domain"
)

// Engine 负责校验并应用所有 员工 <-> 班次 的关联操作
// 所有操作要么完整生效，要么返回拒绝原因且不改动任何状态
type Engine struct {
	store   *Store
	opening time.Duration // 从当天零点起算的开店时间
	closing time.Duration
}

func NewEngine(store *Store, openingHour, closingHour string) (*Engine, error) {
	opening, err := parseWallClock(openingHour)
	if err != nil {
		return nil, fmt.Errorf("开店时间格式错误: %w", err)
	}
	closing, err := parseWallClock(closingHour)
	if err != nil {
		return nil, fmt.Errorf("打烊时间格式错误: %w", err)
	}
	if closing <= opening {
		return nil, fmt.Errorf("打烊时间必须晚于开店时间")
	}

	return &Engine{
		store:   store,
		opening: opening,
		closing: closing,
	}, nil
}

func (e *Engine) Store() *Store {
	return e.store
}

// Assign 把员工追加到班次的已分配列表末尾，保持加入顺序
func (e *Engine) Assign(shiftID string, employeeID int64) (*domain.Shift, error) {
	e.store.mu.Lock()
	defer e.store.mu.Unlock()

	shift, exists := e.store.shifts[shiftID]
	if !exists {
		return nil, ErrShiftNotFound
	}

	if err := CanAdd(shift, employeeID); err != nil {
		return nil, err
	}

	shift.AssignedEmployeeIDs = append(shift.AssignedEmployeeIDs, employeeID)
	shift.Version++

	return shift.Clone(), nil
}

// Unassign 把员工从班次中移除，同时清掉对应的自定义时段
func (e *Engine) Unassign(shiftID string, employeeID int64) (*domain.Shift, error) {
	e.store.mu.Lock()
	defer e.store.mu.Unlock()

	shift, exists := e.store.shifts[shiftID]
	if !exists {
		return nil, ErrShiftNotFound
	}

	if err := CanRemove(shift, employeeID); err != nil {
		return nil, err
	}

	idx := slices.Index(shift.AssignedEmployeeIDs, employeeID)
	shift.AssignedEmployeeIDs = append(shift.AssignedEmployeeIDs[:idx], shift.AssignedEmployeeIDs[idx+1:]...)
	delete(shift.PerEmployeeTimes, employeeID)
	shift.Version++

	return shift.Clone(), nil
}

// Move 把员工从一个班次移到另一个班次
// 先对源班次和目标班次都做完校验，再一起提交，
// 保证目标满员时员工仍然留在源班次中，不会出现移除了却没加上的中间态
func (e *Engine) Move(sourceShiftID, destShiftID string, employeeID int64) (*domain.Shift, *domain.Shift, error) {
	e.store.mu.Lock()
	defer e.store.mu.Unlock()

	source, exists := e.store.shifts[sourceShiftID]
	if !exists {
		return nil, nil, ErrShiftNotFound
	}
	dest, exists := e.store.shifts[destShiftID]
	if !exists {
		return nil, nil, ErrShiftNotFound
	}

	if err := CanRemove(source, employeeID); err != nil {
		return nil, nil, err
	}

	if sourceShiftID == destShiftID {
		// 源和目标相同时移动没有意义，原样返回
		return source.Clone(), dest.Clone(), nil
	}

	if err := CanAdd(dest, employeeID); err != nil {
		return nil, nil, err
	}

	idx := slices.Index(source.AssignedEmployeeIDs, employeeID)
	source.AssignedEmployeeIDs = append(source.AssignedEmployeeIDs[:idx], source.AssignedEmployeeIDs[idx+1:]...)
	delete(source.PerEmployeeTimes, employeeID)
	source.Version++

	dest.AssignedEmployeeIDs = append(dest.AssignedEmployeeIDs, employeeID)
	dest.Version++

	return source.Clone(), dest.Clone(), nil
}

// Reorder 调整员工在同一班次内的顺序
// 人数不变，所以不需要做容量校验
func (e *Engine) Reorder(shiftID string, employeeID int64, newIndex int) (*domain.Shift, error) {
	e.store.mu.Lock()
	defer e.store.mu.Unlock()

	shift, exists := e.store.shifts[shiftID]
	if !exists {
		return nil, ErrShiftNotFound
	}

	idx := slices.Index(shift.AssignedEmployeeIDs, employeeID)
	if idx < 0 {
		return nil, ErrNotAssigned
	}

	if newIndex < 0 {
		newIndex = 0
	}
	if newIndex >= len(shift.AssignedEmployeeIDs) {
		newIndex = len(shift.AssignedEmployeeIDs) - 1
	}

	ids := shift.AssignedEmployeeIDs
	ids = append(ids[:idx], ids[idx+1:]...)
	ids = append(ids[:newIndex], append([]int64{employeeID}, ids[newIndex:]...)...)
	shift.AssignedEmployeeIDs = ids
	shift.Version++

	return shift.Clone(), nil
}

// RequestSubstitute 切换班次的替班请求标记
// 有人值班且标记打开时，派生状态变为 substitute-requested
func (e *Engine) RequestSubstitute(shiftID string, highPriority bool) (*domain.Shift, error) {
	e.store.mu.Lock()
	defer e.store.mu.Unlock()

	shift, exists := e.store.shifts[shiftID]
	if !exists {
		return nil, ErrShiftNotFound
	}

	shift.SubstituteRequested = !shift.SubstituteRequested
	if shift.SubstituteRequested {
		shift.SubstituteHighPriority = highPriority
	} else {
		shift.SubstituteHighPriority = false
	}
	shift.Version++

	return shift.Clone(), nil
}

// SetPerEmployeeTime 为员工设置班次内的自定义工作时段
// 只校验时段本身合法，不强制要求落在班次区间内（和现有业务行为保持一致）
func (e *Engine) SetPerEmployeeTime(shiftID string, employeeID int64, start, end time.Time) (*domain.Shift, error) {
	if !start.Before(end) {
		return nil, ErrInvalidInterval
	}

	e.store.mu.Lock()
	defer e.store.mu.Unlock()

	shift, exists := e.store.shifts[shiftID]
	if !exists {
		return nil, ErrShiftNotFound
	}

	if err := CanRemove(shift, employeeID); err != nil {
		// 员工必须已在班次中才能设置自定义时段
		return nil, err
	}

	if shift.PerEmployeeTimes == nil {
		shift.PerEmployeeTimes = make(map[int64]domain.TimeRange)
	}
	shift.PerEmployeeTimes[employeeID] = domain.TimeRange{Start: start, End: end}
	shift.Version++

	return shift.Clone(), nil
}

// ClampToBusinessHours 把候选时段收缩到营业时间内
// 收缩后时段为空时返回 ErrOutsideBusinessHours
func (e *Engine) ClampToBusinessHours(start, end time.Time) (time.Time, time.Time, error) {
	openAt := startOfDay(start).Add(e.opening)
	closeAt := startOfDay(end).Add(e.closing)

	if start.Before(openAt) {
		start = openAt
	}
	if end.After(closeAt) {
		end = closeAt
	}

	if !start.Before(end) {
		return time.Time{}, time.Time{}, ErrOutsideBusinessHours
	}

	return start, end, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DoubleBooking 描述一名员工被排到了两个时间上冲突的班次
type DoubleBooking struct {
	EmployeeID   int64  `json:"employeeID"`
	FirstShiftID string `json:"firstShiftID"`
	OtherShiftID string `json:"otherShiftID"`
}

// OverlappingAssignments 找出所有跨班次的时间冲突
// 冲突不会阻止排班，这里只提供一份只读的告警清单
func (e *Engine) OverlappingAssignments() []DoubleBooking {
	shifts := e.store.List(nil, nil)

	bookings := make([]DoubleBooking, 0)
	for i := 0; i < len(shifts); i++ {
		for j := i + 1; j < len(shifts); j++ {
			for _, id := range shifts[i].AssignedEmployeeIDs {
				if !slices.Contains(shifts[j].AssignedEmployeeIDs, id) {
					continue
				}

				a := shifts[i].EmployeeTime(id)
				b := shifts[j].EmployeeTime(id)
				if Overlaps(a.Start, a.End, b.Start, b.End) {
					bookings = append(bookings, DoubleBooking{
						EmployeeID:   id,
						FirstShiftID: shifts[i].ID,
						OtherShiftID: shifts[j].ID,
					})
				}
			}
		}
	}

	return bookings
}
