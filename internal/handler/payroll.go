package handler

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xingye-dev/store-roster/backend/internal/domain"
	"github.com/xingye-dev/store-roster/backend/internal/schedule"
)

type PayrollEntry struct {
	EmployeeID int64           `json:"employeeID"`
	FullName   string          `json:"fullName"`
	Position   string          `json:"position"`
	HourlyRate decimal.Decimal `json:"hourlyRate"`
	TotalHours float64         `json:"totalHours"`
	TotalPay   decimal.Decimal `json:"totalPay"`
}

// GetPayrollSummary 按时间范围汇总每个员工的排班工时和应发工资
// 工时以员工在班次内的实际时段计算，自定义时段优先于班次本身的起止时间
func (h *Handler) GetPayrollSummary(w http.ResponseWriter, r *http.Request) {
	from, err := time.Parse("2006-01-02", r.URL.Query().Get("from"))
	if err != nil {
		h.errorResponse(w, r, "from 格式不正确，应为 2006-01-02")
		return
	}
	to, err := time.Parse("2006-01-02", r.URL.Query().Get("to"))
	if err != nil {
		h.errorResponse(w, r, "to 格式不正确，应为 2006-01-02")
		return
	}
	if !to.After(from) {
		h.errorResponse(w, r, "to 必须晚于 from")
		return
	}
	// to 当天也算在内
	to = to.AddDate(0, 0, 1)

	employees, err := h.repository.GetAllEmployees()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	employeesByID := make(map[int64]*domain.Employee, len(employees))
	for _, e := range employees {
		employeesByID[e.ID] = e
	}

	hoursByEmployee := make(map[int64]float64)
	for _, shift := range h.engine.Store().List(&from, &to) {
		for _, employeeID := range shift.AssignedEmployeeIDs {
			// 已删除员工的悬空引用不计入工资
			if _, ok := employeesByID[employeeID]; !ok {
				continue
			}
			tr := shift.EmployeeTime(employeeID)
			hours, err := schedule.DurationHours(tr.Start, tr.End)
			if err != nil {
				continue
			}
			hoursByEmployee[employeeID] += hours
		}
	}

	entries := make([]PayrollEntry, 0, len(hoursByEmployee))
	for _, e := range employees {
		hours, ok := hoursByEmployee[e.ID]
		if !ok {
			continue
		}
		entries = append(entries, PayrollEntry{
			EmployeeID: e.ID,
			FullName:   e.FullName,
			Position:   e.Position,
			HourlyRate: e.HourlyRate,
			TotalHours: hours,
			TotalPay:   e.HourlyRate.Mul(decimal.NewFromFloat(hours)).Round(2),
		})
	}

	h.successResponse(w, r, "获取工资汇总成功", entries)
}
