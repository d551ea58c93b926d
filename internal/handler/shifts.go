package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/xingye-dev/store-roster/backend/internal/domain"
	"github.com/xingye-dev/store-roster/backend/internal/schedule"
	"github.com/xingye-dev/store-roster/backend/internal/utils"
)

// persistShift 把内存中的班次异步落库
// 内存班次表是运行期间的唯一事实来源，持久化失败只记录日志，不影响本次操作的结果
func (h *Handler) persistShift(shift *domain.Shift) {
	go func() {
		if err := h.repository.SaveShift(shift); err != nil {
			slog.Error("班次持久化失败", "shiftID", shift.ID, "error", err)
		}
	}()
}

func (h *Handler) removeShiftRecord(id string) {
	go func() {
		if err := h.repository.DeleteShift(id); err != nil {
			slog.Error("班次删除落库失败", "shiftID", id, "error", err)
		}
	}()
}

// notifyByMail 投递通知类邮件
// 和注册、重置密码不同，排班操作在内存中已经生效，投递失败只记录日志
func (h *Handler) notifyByMail(msg domain.MailMessage) {
	body, err := json.Marshal(msg)
	if err != nil {
		slog.Error("通知邮件序列化失败", "type", msg.Type, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	if err := h.mailChannel.PublishWithContext(
		ctx,
		"",
		"email_queue",
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	); err != nil {
		slog.Error("通知邮件投递失败", "type", msg.Type, "to", msg.To, "error", err)
	}
}

func (h *Handler) CreateShift(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Start         time.Time          `json:"start" validate:"required"`
		End           time.Time          `json:"end" validate:"required"`
		ShiftType     string             `json:"shiftType" validate:"required"`
		RequiredStaff int                `json:"requiredStaff"`
		MinStaff      *int               `json:"minStaff"`
		MaxStaff      *int               `json:"maxStaff"`
		Recurrence    *domain.Recurrence `json:"recurrence"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 新建的班次收缩到营业时间内
	start, end, err := h.engine.ClampToBusinessHours(req.Start, req.End)
	if err != nil {
		h.scheduleError(w, r, err)
		return
	}

	if req.Recurrence != nil {
		if err := utils.ValidateRecurrence(req.Recurrence, start); err != nil {
			h.errorResponse(w, r, err.Error())
			return
		}
	}

	shift, err := h.engine.Store().Create(&domain.Shift{
		Start:         start,
		End:           end,
		ShiftType:     domain.ShiftType(req.ShiftType),
		RequiredStaff: req.RequiredStaff,
		MinStaff:      req.MinStaff,
		MaxStaff:      req.MaxStaff,
		Recurrence:    req.Recurrence,
	})
	if err != nil {
		h.scheduleError(w, r, err)
		return
	}

	h.persistShift(shift)
	h.successResponse(w, r, "班次创建成功", shift)
}

func (h *Handler) GetAllShifts(w http.ResponseWriter, r *http.Request) {
	var from, to *time.Time

	if v := r.URL.Query().Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			h.errorResponse(w, r, "from 时间格式不正确")
			return
		}
		from = &t
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			h.errorResponse(w, r, "to 时间格式不正确")
			return
		}
		to = &t
	}

	shifts := h.engine.Store().List(from, to)
	h.successResponse(w, r, "获取班次列表成功", shifts)
}

func (h *Handler) GetShift(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)
	h.successResponse(w, r, "获取班次成功", shift)
}

func (h *Handler) UpdateShift(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Start         *time.Time         `json:"start"`
		End           *time.Time         `json:"end"`
		ShiftType     *string            `json:"shiftType"`
		RequiredStaff *int               `json:"requiredStaff"`
		MinStaff      *int               `json:"minStaff"`
		MaxStaff      *int               `json:"maxStaff"`
		Recurrence    *domain.Recurrence `json:"recurrence"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	if req.Start != nil || req.End != nil {
		start, end := shift.Start, shift.End
		if req.Start != nil {
			start = *req.Start
		}
		if req.End != nil {
			end = *req.End
		}
		// 改动时间后重新收缩到营业时间内
		start, end, err := h.engine.ClampToBusinessHours(start, end)
		if err != nil {
			h.scheduleError(w, r, err)
			return
		}
		shift.Start, shift.End = start, end
	}
	if req.ShiftType != nil {
		shift.ShiftType = domain.ShiftType(*req.ShiftType)
	}
	if req.RequiredStaff != nil {
		shift.RequiredStaff = *req.RequiredStaff
	}
	if req.MinStaff != nil {
		shift.MinStaff = req.MinStaff
	}
	if req.MaxStaff != nil {
		shift.MaxStaff = req.MaxStaff
	}
	if req.Recurrence != nil {
		if err := utils.ValidateRecurrence(req.Recurrence, shift.Start); err != nil {
			h.errorResponse(w, r, err.Error())
			return
		}
		shift.Recurrence = req.Recurrence
	}

	// 整体校验通过才会被接受，任何一条不变式不满足都会原样拒绝
	updated, err := h.engine.Store().Update(shift)
	if err != nil {
		h.scheduleError(w, r, err)
		return
	}

	h.persistShift(updated)
	h.successResponse(w, r, "更新班次成功", updated)
}

func (h *Handler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	if ok := h.engine.Store().Remove(shift.ID); !ok {
		h.errorResponse(w, r, "班次不存在")
		return
	}

	h.removeShiftRecord(shift.ID)
	h.successResponse(w, r, "删除班次成功", nil)
}

func (h *Handler) AssignEmployee(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	var req struct {
		EmployeeID int64 `json:"employeeID" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	employee, err := h.repository.GetEmployeeByID(req.EmployeeID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "员工不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if employee.Status == domain.EmployeeInactive {
		h.errorResponse(w, r, "该员工已离职，不能排班")
		return
	}

	updated, err := h.engine.Assign(shift.ID, employee.ID)
	if err != nil {
		h.scheduleError(w, r, err)
		return
	}

	h.persistShift(updated)

	h.notifyByMail(domain.MailMessage{
		Type: "shift_assigned",
		To:   employee.Email,
		Data: domain.ShiftAssignedMailData{
			FullName:  employee.FullName,
			ShiftType: string(updated.ShiftType),
			Start:     updated.Start.Format("2006-01-02 15:04"),
			End:       updated.End.Format("2006-01-02 15:04"),
		},
	})

	h.successResponse(w, r, "排班成功", updated)
}

func (h *Handler) UnassignEmployee(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	employeeIDParam := chi.URLParam(r, "employeeID")
	employeeID, err := strconv.ParseInt(employeeIDParam, 10, 64)
	if err != nil {
		h.errorResponse(w, r, "员工ID无效")
		return
	}

	updated, err := h.engine.Unassign(shift.ID, employeeID)
	if err != nil {
		h.scheduleError(w, r, err)
		return
	}

	h.persistShift(updated)
	h.successResponse(w, r, "取消排班成功", updated)
}

func (h *Handler) MoveAssignment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SourceShiftID string `json:"sourceShiftID" validate:"required"`
		DestShiftID   string `json:"destShiftID" validate:"required"`
		EmployeeID    int64  `json:"employeeID" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 两边的校验都通过才会提交，失败时两个班次都保持原样
	source, dest, err := h.engine.Move(req.SourceShiftID, req.DestShiftID, req.EmployeeID)
	if err != nil {
		h.scheduleError(w, r, err)
		return
	}

	h.persistShift(source)
	h.persistShift(dest)

	h.successResponse(w, r, "换班成功", map[string]*domain.Shift{
		"source": source,
		"dest":   dest,
	})
}

func (h *Handler) ReorderAssignment(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	var req struct {
		EmployeeID int64 `json:"employeeID" validate:"required"`
		NewIndex   int   `json:"newIndex"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	updated, err := h.engine.Reorder(shift.ID, req.EmployeeID, req.NewIndex)
	if err != nil {
		h.scheduleError(w, r, err)
		return
	}

	h.persistShift(updated)
	h.successResponse(w, r, "调整顺序成功", updated)
}

func (h *Handler) RequestSubstitute(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	var req struct {
		HighPriority bool `json:"highPriority"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 店员只能为自己的班次申请替班，店长可以为任意班次申请
	role := domain.Role(r.Context().Value(RoleCtxKey).(string))
	if role != domain.RoleManager {
		sub, err := strconv.ParseInt(r.Context().Value(SubCtxKey).(string), 10, 64)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}

		assigned := false
		for _, id := range shift.AssignedEmployeeIDs {
			if id == sub {
				assigned = true
				break
			}
		}
		if !assigned {
			h.errorResponse(w, r, "只能为自己的班次申请替班")
			return
		}
	}

	updated, err := h.engine.RequestSubstitute(shift.ID, req.HighPriority)
	if err != nil {
		h.scheduleError(w, r, err)
		return
	}

	h.persistShift(updated)

	// 替班申请生效时通知所有店长
	if updated.SubstituteRequested {
		employees, err := h.repository.GetAllEmployees()
		if err != nil {
			slog.Error("获取店长列表失败，替班通知未发送", "shiftID", updated.ID, "error", err)
		} else {
			for _, e := range employees {
				if e.Role != domain.RoleManager {
					continue
				}
				h.notifyByMail(domain.MailMessage{
					Type: "substitute_request",
					To:   e.Email,
					Data: domain.SubstituteRequestMailData{
						ShiftType:    string(updated.ShiftType),
						Start:        updated.Start.Format("2006-01-02 15:04"),
						End:          updated.End.Format("2006-01-02 15:04"),
						HighPriority: updated.SubstituteHighPriority,
					},
				})
			}
		}
	}

	h.successResponse(w, r, "替班状态已更新", updated)
}

func (h *Handler) SetPerEmployeeTime(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	var req struct {
		EmployeeID int64     `json:"employeeID" validate:"required"`
		Start      time.Time `json:"start" validate:"required"`
		End        time.Time `json:"end" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	updated, err := h.engine.SetPerEmployeeTime(shift.ID, req.EmployeeID, req.Start, req.End)
	if err != nil {
		h.scheduleError(w, r, err)
		return
	}

	h.persistShift(updated)
	h.successResponse(w, r, "员工自定义时段已更新", updated)
}

func (h *Handler) GetShiftOccurrences(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	if shift.Recurrence == nil {
		h.successResponse(w, r, "获取班次时段成功", []domain.TimeRange{{Start: shift.Start, End: shift.End}})
		return
	}

	occurrences := schedule.ExpandWeeklyRecurrence(shift.Start, shift.End, shift.Recurrence.DaysOfWeek, shift.Recurrence.EndDate)
	h.successResponse(w, r, "获取班次时段成功", occurrences)
}
