package schedule

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xingye-dev/store-roster/backend/internal/domain"
)

// Store 持有一个门店的所有班次记录，是排班数据的唯一拥有者
// 消费方（计划表、各个 handler）拿到的都是副本，只能通过 Engine 的操作回写
//
// 逻辑上同一时刻只有一个店长在操作，但 HTTP 层本身是并发的，
// 因此这里仍然用互斥锁串行化所有访问
type Store struct {
	mu     sync.Mutex
	shifts map[string]*domain.Shift
}

func NewStore() *Store {
	return &Store{
		shifts: make(map[string]*domain.Shift),
	}
}

// validateShift 检查班次的不变量，所有写入前都必须通过
//  1. 开始时间早于结束时间（班次本身及每个自定义时段）
//  2. 已分配员工没有重复
//  3. 设置了人数上限时不超过上限
func validateShift(shift *domain.Shift) error {
	if !shift.Start.Before(shift.End) {
		return ErrInvalidInterval
	}

	for _, tr := range shift.PerEmployeeTimes {
		if !tr.Start.Before(tr.End) {
			return ErrInvalidInterval
		}
	}

	seen := make(map[int64]bool, len(shift.AssignedEmployeeIDs))
	for _, id := range shift.AssignedEmployeeIDs {
		if seen[id] {
			return ErrDuplicateAssignment
		}
		seen[id] = true
	}

	if shift.MaxStaff != nil && len(shift.AssignedEmployeeIDs) > *shift.MaxStaff {
		return ErrCapacityExceeded
	}

	if shift.RequiredStaff < 1 {
		return ErrInvalidStaffBounds
	}
	if shift.MinStaff != nil && *shift.MinStaff > shift.RequiredStaff {
		return ErrInvalidStaffBounds
	}
	if shift.MaxStaff != nil && *shift.MaxStaff < shift.RequiredStaff {
		return ErrInvalidStaffBounds
	}

	return nil
}

// Create 新建班次并分配 id
func (s *Store) Create(shift *domain.Shift) (*domain.Shift, error) {
	c := shift.Clone()

	if c.RequiredStaff == 0 {
		c.RequiredStaff = 1
	}
	if c.AssignedEmployeeIDs == nil {
		c.AssignedEmployeeIDs = make([]int64, 0)
	}

	if err := validateShift(c); err != nil {
		return nil, err
	}

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.shifts[c.ID] = c

	return c.Clone(), nil
}

// Update 整条替换班次记录，写入前重新校验不变量
// 校验失败时不做任何修改，原记录保持不变
func (s *Store) Update(shift *domain.Shift) (*domain.Shift, error) {
	c := shift.Clone()

	if err := validateShift(c); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, exists := s.shifts[c.ID]
	if !exists {
		return nil, ErrShiftNotFound
	}

	c.CreatedAt = prev.CreatedAt
	c.Version = prev.Version + 1
	s.shifts[c.ID] = c

	return c.Clone(), nil
}

// Get 按 id 查找班次
func (s *Store) Get(id string) (*domain.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	shift, exists := s.shifts[id]
	if !exists {
		return nil, ErrShiftNotFound
	}

	return shift.Clone(), nil
}

// Remove 删除班次，返回是否存在
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.shifts[id]; !exists {
		return false
	}

	delete(s.shifts, id)
	return true
}

// List 返回和 [from, to) 相交的所有班次，按开始时间排序
// from、to 为 nil 时表示不限制对应方向
func (s *Store) List(from, to *time.Time) []*domain.Shift {
	s.mu.Lock()
	defer s.mu.Unlock()

	shifts := make([]*domain.Shift, 0, len(s.shifts))
	for _, shift := range s.shifts {
		if from != nil && !shift.End.After(*from) {
			continue
		}
		if to != nil && !shift.Start.Before(*to) {
			continue
		}
		shifts = append(shifts, shift.Clone())
	}

	sort.Slice(shifts, func(i, j int) bool {
		if shifts[i].Start.Equal(shifts[j].Start) {
			return shifts[i].ID < shifts[j].ID
		}
		return shifts[i].Start.Before(shifts[j].Start)
	})

	return shifts
}

// Reset 清空所有班次，测试和重新预热时使用
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.shifts = make(map[string]*domain.Shift)
}
