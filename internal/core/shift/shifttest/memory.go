// Package shifttest はテスト用のインメモリ shift.Repository を提供します。
package shifttest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ogurasousui/shiftboard/internal/core/shift"
)

// Memory は shift.Repository のインメモリ実装です。
type Memory struct {
	mu       sync.Mutex
	shifts   map[string]*shift.Shift
	sequence int
}

// NewMemory は空の Memory を生成します。
func NewMemory() *Memory {
	return &Memory{shifts: make(map[string]*shift.Shift)}
}

// Seed は ID を採番してシフトを登録し、登録後の値を返します。
func (m *Memory) Seed(shifts ...*shift.Shift) []*shift.Shift {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]*shift.Shift, 0, len(shifts))
	for _, s := range shifts {
		result = append(result, m.insert(s))
	}
	return result
}

// All は登録済みの全シフトを開始時刻順に返します。
func (m *Memory) All() []*shift.Shift {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]*shift.Shift, 0, len(m.shifts))
	for _, s := range m.shifts {
		result = append(result, Clone(s))
	}
	sortShifts(result)
	return result
}

func (m *Memory) Create(_ context.Context, s *shift.Shift) (*shift.Shift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insert(s), nil
}

func (m *Memory) CreateBatch(_ context.Context, shifts []*shift.Shift) ([]*shift.Shift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]*shift.Shift, 0, len(shifts))
	for _, s := range shifts {
		result = append(result, m.insert(s))
	}
	return result, nil
}

func (m *Memory) FindByID(_ context.Context, id string) (*shift.Shift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.shifts[id]
	if !ok {
		return nil, shift.ErrShiftNotFound
	}
	return Clone(s), nil
}

func (m *Memory) FindByIDForUpdate(ctx context.Context, id string) (*shift.Shift, error) {
	return m.FindByID(ctx, id)
}

func (m *Memory) UpdateStatus(_ context.Context, id string, status shift.Status, updatedAt time.Time) (*shift.Shift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.shifts[id]
	if !ok {
		return nil, shift.ErrShiftNotFound
	}
	s.Status = status
	s.UpdatedAt = updatedAt
	return Clone(s), nil
}

func (m *Memory) Reassign(_ context.Context, id, employeeID string, updatedAt time.Time) (*shift.Shift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.shifts[id]
	if !ok {
		return nil, shift.ErrShiftNotFound
	}
	s.EmployeeID = employeeID
	s.UpdatedAt = updatedAt
	return Clone(s), nil
}

func (m *Memory) ListRange(_ context.Context, filter shift.RangeFilter) ([]*shift.Shift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []*shift.Shift
	for _, s := range m.shifts {
		if s.CompanyID != filter.CompanyID || s.ID == filter.ExcludeID {
			continue
		}
		if !s.Overlaps(filter.From, filter.To) {
			continue
		}
		if len(filter.EmployeeIDs) > 0 && !containsString(filter.EmployeeIDs, s.EmployeeID) {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, s.Status) {
			continue
		}
		if filter.Source != nil && s.Source != *filter.Source {
			continue
		}
		result = append(result, Clone(s))
	}
	sortShifts(result)
	return result, nil
}

func (m *Memory) DeleteBySource(_ context.Context, companyID string, source shift.Source, from, to time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	deleted := 0
	for id, s := range m.shifts {
		if s.CompanyID != companyID || s.Source != source {
			continue
		}
		if s.StartAt.Before(from) || !s.StartAt.Before(to) {
			continue
		}
		delete(m.shifts, id)
		deleted++
	}
	return deleted, nil
}

func (m *Memory) DeleteByVacation(_ context.Context, vacationRequestID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	deleted := 0
	for id, s := range m.shifts {
		if s.VacationRequestID != nil && *s.VacationRequestID == vacationRequestID {
			delete(m.shifts, id)
			deleted++
		}
	}
	return deleted, nil
}

func (m *Memory) insert(s *shift.Shift) *shift.Shift {
	clone := Clone(s)
	m.sequence++
	clone.ID = fmt.Sprintf("shift-%d", m.sequence)
	if clone.Status == "" {
		clone.Status = shift.StatusPlanned
	}
	if clone.Source == "" {
		clone.Source = shift.SourceManual
	}
	m.shifts[clone.ID] = clone
	return Clone(clone)
}

// Clone はシフトのディープコピーを返します。
func Clone(s *shift.Shift) *shift.Shift {
	if s == nil {
		return nil
	}
	copied := *s
	copied.Note = cloneString(s.Note)
	copied.RecurringRuleID = cloneString(s.RecurringRuleID)
	copied.VacationRequestID = cloneString(s.VacationRequestID)
	return &copied
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	copied := *v
	return &copied
}

func sortShifts(shifts []*shift.Shift) {
	sort.Slice(shifts, func(i, j int) bool {
		if !shifts[i].StartAt.Equal(shifts[j].StartAt) {
			return shifts[i].StartAt.Before(shifts[j].StartAt)
		}
		return shifts[i].ID < shifts[j].ID
	})
}

func containsString(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func containsStatus(values []shift.Status, v shift.Status) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
