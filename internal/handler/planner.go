package handler

import (
	"net/http"
	"time"

	"github.com/xingye-dev/store-roster/backend/internal/domain"
	"github.com/xingye-dev/store-roster/backend/internal/schedule"
	"github.com/xingye-dev/store-roster/backend/internal/scheduler"
)

// weekPlanner 每次请求都按当前模板重新组装，保证模板改动后视图立即生效
func (h *Handler) weekPlanner() (*schedule.Planner, error) {
	templates, err := h.repository.GetAllShiftTemplates()
	if err != nil {
		return nil, err
	}
	return schedule.NewPlanner(h.engine, templates), nil
}

func (h *Handler) GetWeeklyPlan(w http.ResponseWriter, r *http.Request) {
	weekStartParam := r.URL.Query().Get("weekStart")
	weekStart, err := time.Parse("2006-01-02", weekStartParam)
	if err != nil {
		h.errorResponse(w, r, "weekStart 格式不正确，应为 2006-01-02")
		return
	}

	planner, err := h.weekPlanner()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	employees, err := h.repository.GetAllEmployees()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	plan := planner.BuildWeek(weekStart, employees)
	h.successResponse(w, r, "获取周排班表成功", plan)
}

func (h *Handler) SaveWeeklyPlan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WeekStart string                   `json:"weekStart" validate:"required"`
		Cells     []*domain.WeeklyPlanCell `json:"cells" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	weekStart, err := time.Parse("2006-01-02", req.WeekStart)
	if err != nil {
		h.errorResponse(w, r, "weekStart 格式不正确，应为 2006-01-02")
		return
	}

	planner, err := h.weekPlanner()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := planner.SaveWeek(weekStart, req.Cells); err != nil {
		h.scheduleError(w, r, err)
		return
	}

	// 整周落库，格子翻译回的班次变更都在内存中已生效
	h.persistWeek(weekStart)

	h.successResponse(w, r, "保存周排班表成功", nil)
}

func (h *Handler) persistWeek(weekStart time.Time) {
	from := weekStart
	to := weekStart.AddDate(0, 0, 7)
	for _, shift := range h.engine.Store().List(&from, &to) {
		h.persistShift(shift)
	}
}

func (h *Handler) ApplyPlannerMove(w http.ResponseWriter, r *http.Request) {
	var req domain.DragMoveRequest

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.DestShiftID == "" || req.EmployeeID == 0 {
		h.errorResponse(w, r, "目标班次和员工不能为空")
		return
	}

	planner, err := h.weekPlanner()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := planner.ApplyMove(req); err != nil {
		h.scheduleError(w, r, err)
		return
	}

	// 池子拖入时 SourceShiftID 为空，只有目标班次有变更
	if req.SourceShiftID != "" {
		if source, err := h.engine.Store().Get(req.SourceShiftID); err == nil {
			h.persistShift(source)
		}
	}

	dest, err := h.engine.Store().Get(req.DestShiftID)
	if err != nil {
		h.scheduleError(w, r, err)
		return
	}
	h.persistShift(dest)

	h.successResponse(w, r, "拖拽操作成功", dest)
}

// AutoFillWeek 用遗传算法给一周的班次自动排人
// 只生成推荐并直接应用到内存班表，店长可以在周计划表上继续手工调整
func (h *Handler) AutoFillWeek(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WeekStart      string   `json:"weekStart" validate:"required"`
		FairnessWeight *float64 `json:"fairnessWeight"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	weekStart, err := time.Parse("2006-01-02", req.WeekStart)
	if err != nil {
		h.errorResponse(w, r, "weekStart 格式不正确，应为 2006-01-02")
		return
	}

	from := weekStart
	to := weekStart.AddDate(0, 0, 7)
	shifts := h.engine.Store().List(&from, &to)
	if len(shifts) == 0 {
		h.errorResponse(w, r, "本周还没有班次，请先保存周排班表")
		return
	}

	employees, err := h.repository.GetAllEmployees()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	params := scheduler.DefaultParameters()
	if req.FairnessWeight != nil {
		params.FairnessWeight = *req.FairnessWeight
	}

	sched, err := scheduler.New(params, employees, shifts)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	assignments, err := sched.Schedule()
	if err != nil {
		h.scheduleError(w, r, err)
		return
	}

	shiftsByID := make(map[string]*domain.Shift, len(shifts))
	for _, shift := range shifts {
		shiftsByID[shift.ID] = shift
	}

	for _, assignment := range assignments {
		shift, ok := shiftsByID[assignment.ShiftID]
		if !ok {
			continue
		}

		shift.AssignedEmployeeIDs = assignment.EmployeeIDs

		// 被换掉的员工的自定义时段一并清理
		for employeeID := range shift.PerEmployeeTimes {
			keep := false
			for _, id := range assignment.EmployeeIDs {
				if id == employeeID {
					keep = true
					break
				}
			}
			if !keep {
				delete(shift.PerEmployeeTimes, employeeID)
			}
		}

		updated, err := h.engine.Store().Update(shift)
		if err != nil {
			h.scheduleError(w, r, err)
			return
		}
		h.persistShift(updated)
	}

	h.successResponse(w, r, "自动排班完成", assignments)
}

func (h *Handler) GetDoubleBookings(w http.ResponseWriter, r *http.Request) {
	bookings := h.engine.OverlappingAssignments()
	h.successResponse(w, r, "获取时间冲突列表成功", bookings)
}
