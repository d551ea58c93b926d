package scheduler

import "github.com/xingye-dev/store-roster/backend/internal/domain"

func isSchedulable(employee *domain.Employee) bool {
	return employee.Status != domain.EmployeeInactive
}
