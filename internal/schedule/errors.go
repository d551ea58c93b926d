package schedule

import "errors"

// 所有拒绝原因都以错误值返回给调用方，handler 通过 errors.Is 映射为提示信息
var (
	ErrShiftNotFound        = errors.New("班次不存在")
	ErrDuplicateAssignment  = errors.New("该员工已被分配到此班次")
	ErrCapacityExceeded     = errors.New("班次人数已达上限")
	ErrNotAssigned          = errors.New("该员工未被分配到此班次")
	ErrInvalidInterval      = errors.New("开始时间必须早于结束时间")
	ErrOutsideBusinessHours = errors.New("时段超出营业时间")
	ErrInvalidStaffBounds   = errors.New("最少/最多人数设置不合法")
)
