package domain

import (
	"encoding/json"
	"time"
)

type ShiftStatus string

const (
	ShiftUnassigned          ShiftStatus = "unassigned"
	ShiftAssigned            ShiftStatus = "assigned"
	ShiftSubstituteRequested ShiftStatus = "substitute-requested"
)

// Sufficiency 是班次人员配备的充足程度
// 缺人只用于界面提示，永远不会阻止操作；超出上限才是硬性限制
type Sufficiency string

const (
	SeverelyUnderstaffed Sufficiency = "severely-understaffed" // 缺口超过 1 人
	Understaffed         Sufficiency = "understaffed"
	Sufficient           Sufficiency = "sufficient"
	Overstaffed          Sufficiency = "overstaffed"
)

// EvaluateSufficiency 根据已分配人数和需求计算充足程度
func EvaluateSufficiency(assignedCount, required int, maxStaff *int) Sufficiency {
	if assignedCount < required {
		if required-assignedCount > 1 {
			return SeverelyUnderstaffed
		}
		return Understaffed
	}
	if maxStaff != nil && assignedCount > *maxStaff {
		return Overstaffed
	}
	return Sufficient
}

// ShiftType 除了内置的早中晚班外也允许自定义标签
type ShiftType string

const (
	ShiftTypeOpen   ShiftType = "open"
	ShiftTypeMiddle ShiftType = "middle"
	ShiftTypeClose  ShiftType = "close"
)

type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type Recurrence struct {
	Frequency  string    `json:"frequency"`  // 目前只支持 weekly
	DaysOfWeek []int     `json:"daysOfWeek"` // 0 = 周日
	EndDate    time.Time `json:"endDate"`    // 含 endDate 当天
}

type Shift struct {
	ID                      string              `json:"id"`
	Start                   time.Time           `json:"start"`
	End                     time.Time           `json:"end"`
	ShiftType               ShiftType           `json:"shiftType"`
	AssignedEmployeeIDs     []int64             `json:"assignedEmployeeIDs"` // 有序，且每个 id 至多出现一次
	RequiredStaff           int                 `json:"requiredStaff"`
	MinStaff                *int                `json:"minStaff,omitempty"`
	MaxStaff                *int                `json:"maxStaff,omitempty"`
	Recurrence              *Recurrence         `json:"recurrence,omitempty"`
	PerEmployeeTimes        map[int64]TimeRange `json:"perEmployeeTimes,omitempty"` // 员工在班次内的自定义时段
	SubstituteRequested     bool                `json:"substituteRequested"`
	SubstituteHighPriority  bool                `json:"substituteHighPriority"`
	CreatedAt               time.Time           `json:"createdAt"`
	Version                 int32               `json:"-"`
}

// Status 是派生状态，只由已分配员工和替班标记计算得出，不单独存储
// 避免出现存储值和实际值不一致的问题
func (s *Shift) Status() ShiftStatus {
	if len(s.AssignedEmployeeIDs) == 0 {
		return ShiftUnassigned
	}
	if s.SubstituteRequested {
		return ShiftSubstituteRequested
	}
	return ShiftAssigned
}

// Sufficiency 和 Status 一样是派生属性，随分配名单实时计算
func (s *Shift) Sufficiency() Sufficiency {
	return EvaluateSufficiency(len(s.AssignedEmployeeIDs), s.RequiredStaff, s.MaxStaff)
}

// MarshalJSON 在序列化时附带派生的 status 和 sufficiency 字段
// 派生值不落库，但每次对外输出都要带上
func (s *Shift) MarshalJSON() ([]byte, error) {
	type shiftAlias Shift
	return json.Marshal(struct {
		*shiftAlias
		Status      ShiftStatus `json:"status"`
		Sufficiency Sufficiency `json:"sufficiency"`
	}{(*shiftAlias)(s), s.Status(), s.Sufficiency()})
}

// Clone 返回班次的深拷贝，调用方拿到的永远是副本，不允许直接修改存储中的记录
func (s *Shift) Clone() *Shift {
	c := *s

	c.AssignedEmployeeIDs = make([]int64, len(s.AssignedEmployeeIDs))
	copy(c.AssignedEmployeeIDs, s.AssignedEmployeeIDs)

	if s.MinStaff != nil {
		minStaff := *s.MinStaff
		c.MinStaff = &minStaff
	}
	if s.MaxStaff != nil {
		maxStaff := *s.MaxStaff
		c.MaxStaff = &maxStaff
	}

	if s.Recurrence != nil {
		r := *s.Recurrence
		r.DaysOfWeek = make([]int, len(s.Recurrence.DaysOfWeek))
		copy(r.DaysOfWeek, s.Recurrence.DaysOfWeek)
		c.Recurrence = &r
	}

	if s.PerEmployeeTimes != nil {
		c.PerEmployeeTimes = make(map[int64]TimeRange, len(s.PerEmployeeTimes))
		for id, tr := range s.PerEmployeeTimes {
			c.PerEmployeeTimes[id] = tr
		}
	}

	return &c
}

// EmployeeTime 返回员工在该班次中的实际工作时段
// 如果没有自定义时段则使用班次自身的起止时间
func (s *Shift) EmployeeTime(employeeID int64) TimeRange {
	if tr, ok := s.PerEmployeeTimes[employeeID]; ok {
		return tr
	}
	return TimeRange{Start: s.Start, End: s.End}
}
