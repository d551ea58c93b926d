package domain

// PlanCellEmployee 是周计划表格子中展示的员工信息
type PlanCellEmployee struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Position string `json:"position"`
}

// WeeklyPlanCell 由 (星期, 时段) 唯一确定
// 它是排班视图的工作表示，不是持久化的班次记录，保存时需要翻译回班次变更
type WeeklyPlanCell struct {
	DayOfWeek    int                `json:"dayOfWeek"` // 0 = 周日
	TimeSlotID   ShiftType          `json:"timeSlotID"`
	Employees    []PlanCellEmployee `json:"employees"`
	MaxEmployees int                `json:"maxEmployees"`
	Sufficiency  Sufficiency        `json:"sufficiency"` // 派生的人员充足程度提示，保存时会被忽略
	ShiftIDs     []string           `json:"shiftIDs"`    // 该格子对应的已存储班次
}

// WeeklyPlan 是一周的 日 x 时段 矩阵
type WeeklyPlan struct {
	WeekStart string            `json:"weekStart"` // 格式 2006-01-02
	Cells     []*WeeklyPlanCell `json:"cells"`
}

// DragMoveRequest 是拖拽操作到达引擎前的显式边界类型
// SourceShiftID 为空表示从员工池拖入
type DragMoveRequest struct {
	SourceShiftID string `json:"sourceShiftID"`
	DestShiftID   string `json:"destShiftID"`
	EmployeeID    int64  `json:"employeeID"`
	NewIndex      int    `json:"newIndex"` // 仅同格子内调整顺序时使用
}
