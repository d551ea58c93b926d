package schedule

import (
	"slices"

	"github.com/xingye-dev/store-roster/backend/internal/domain"
)

// CanAdd 判断能否把员工加入班次
// 重复分配和超出人数上限都会被拒绝
func CanAdd(shift *domain.Shift, employeeID int64) error {
	if slices.Contains(shift.AssignedEmployeeIDs, employeeID) {
		return ErrDuplicateAssignment
	}
	if shift.MaxStaff != nil && len(shift.AssignedEmployeeIDs) >= *shift.MaxStaff {
		return ErrCapacityExceeded
	}
	return nil
}

// CanRemove 判断能否把员工从班次中移除
// 注意：移除后低于最低人数是允许的，缺人是软约束，只在界面上提示
func CanRemove(shift *domain.Shift, employeeID int64) error {
	if !slices.Contains(shift.AssignedEmployeeIDs, employeeID) {
		return ErrNotAssigned
	}
	return nil
}
