package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/xingye-dev/store-roster/backend/internal/domain"
	"github.com/xingye-dev/store-roster/backend/internal/utils"
)

func (h *Handler) GetAllShiftTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.repository.GetAllShiftTemplates()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取班次模板列表成功", templates)
}

func (h *Handler) CreateShiftTemplate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name          string         `json:"name" validate:"required"`
		ShiftType     string         `json:"shiftType" validate:"required"`
		StartTime     string         `json:"startTime" validate:"required"`
		EndTime       string         `json:"endTime" validate:"required"`
		RequiredStaff int            `json:"requiredStaff" validate:"required,min=1"`
		Color         string         `json:"color"`
		Positions     map[string]int `json:"positions"`
		DayOverrides  map[int]int    `json:"dayOverrides"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	template := &domain.ShiftTemplate{
		Name:          req.Name,
		ShiftType:     domain.ShiftType(req.ShiftType),
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		RequiredStaff: req.RequiredStaff,
		Color:         req.Color,
		Positions:     req.Positions,
		DayOverrides:  req.DayOverrides,
	}

	if err := utils.ValidateShiftTemplateTime(template); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	// 同一家店的时段之间不允许重叠，先取出现有模板一起校验
	existing, err := h.repository.GetAllShiftTemplates()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if err := utils.ValidateTemplateSlots(append(existing, template)); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	if err := h.repository.CreateShiftTemplate(template); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "shift_templates_name_key":
			h.badRequest(w, r, errors.New("模板名称已存在"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "班次模板创建成功", template)
}

func (h *Handler) GetShiftTemplate(w http.ResponseWriter, r *http.Request) {
	template := r.Context().Value(ShiftTemplateCtx).(*domain.ShiftTemplate)
	h.successResponse(w, r, "获取班次模板成功", template)
}

func (h *Handler) UpdateShiftTemplate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name          *string        `json:"name"`
		ShiftType     *string        `json:"shiftType"`
		StartTime     *string        `json:"startTime"`
		EndTime       *string        `json:"endTime"`
		RequiredStaff *int           `json:"requiredStaff" validate:"omitempty,min=1"`
		Color         *string        `json:"color"`
		Positions     map[string]int `json:"positions"`
		DayOverrides  map[int]int    `json:"dayOverrides"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	template := r.Context().Value(ShiftTemplateCtx).(*domain.ShiftTemplate)

	if req.Name != nil {
		template.Name = *req.Name
	}
	if req.ShiftType != nil {
		template.ShiftType = domain.ShiftType(*req.ShiftType)
	}
	if req.StartTime != nil {
		template.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		template.EndTime = *req.EndTime
	}
	if req.RequiredStaff != nil {
		template.RequiredStaff = *req.RequiredStaff
	}
	if req.Color != nil {
		template.Color = *req.Color
	}
	if req.Positions != nil {
		template.Positions = req.Positions
	}
	if req.DayOverrides != nil {
		template.DayOverrides = req.DayOverrides
	}

	if err := utils.ValidateShiftTemplateTime(template); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	existing, err := h.repository.GetAllShiftTemplates()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	// 校验时用改动后的版本替换掉列表里的旧版本
	slots := make([]*domain.ShiftTemplate, 0, len(existing))
	for _, t := range existing {
		if t.ID == template.ID {
			continue
		}
		slots = append(slots, t)
	}
	if err := utils.ValidateTemplateSlots(append(slots, template)); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	if err := h.repository.UpdateShiftTemplate(template); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "shift_templates_name_key":
			h.badRequest(w, r, errors.New("模板名称已存在"))
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "更新班次模板失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新班次模板成功", template)
}

func (h *Handler) DeleteShiftTemplate(w http.ResponseWriter, r *http.Request) {
	template := r.Context().Value(ShiftTemplateCtx).(*domain.ShiftTemplate)

	if err := h.repository.DeleteShiftTemplate(template.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除班次模板成功", nil)
}
