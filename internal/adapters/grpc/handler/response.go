package handler

import (
	"time"

	"github.com/ogurasousui/shiftboard/internal/core/attendance"
	"github.com/ogurasousui/shiftboard/internal/core/availability"
	"github.com/ogurasousui/shiftboard/internal/core/calendar"
	"github.com/ogurasousui/shiftboard/internal/core/employee"
	"github.com/ogurasousui/shiftboard/internal/core/matching"
	"github.com/ogurasousui/shiftboard/internal/core/recurring"
	"github.com/ogurasousui/shiftboard/internal/core/shift"
	"github.com/ogurasousui/shiftboard/internal/core/swap"
	"github.com/ogurasousui/shiftboard/internal/core/vacation"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func newResponse(fields map[string]any) (*structpb.Struct, error) {
	resp, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return resp, nil
}

func listOf[T any](items []T, encode func(T) map[string]any) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, encode(item))
	}
	return out
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func optTimestamp(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTimestamp(*t)
}

func formatDate(t time.Time) string {
	return t.Format(calendar.DateLayout)
}

func optDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatDate(*t)
}

func optString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func optTimeOfDay(minute *int) any {
	if minute == nil {
		return nil
	}
	return calendar.FormatTimeOfDay(*minute)
}

func shiftFields(s *shift.Shift) map[string]any {
	return map[string]any{
		"id":                  s.ID,
		"employee_id":         s.EmployeeID,
		"start_at":            formatTimestamp(s.StartAt),
		"end_at":              formatTimestamp(s.EndAt),
		"status":              string(s.Status),
		"note":                optString(s.Note),
		"source":              string(s.Source),
		"recurring_rule_id":   optString(s.RecurringRuleID),
		"vacation_request_id": optString(s.VacationRequestID),
		"created_at":          formatTimestamp(s.CreatedAt),
		"updated_at":          formatTimestamp(s.UpdatedAt),
	}
}

func candidateFields(c *matching.Candidate) map[string]any {
	return map[string]any{
		"employee_id":       c.EmployeeID,
		"display_name":      c.DisplayName,
		"department":        c.Department,
		"role":              string(c.Role),
		"availability_note": optString(c.AvailabilityNote),
		"available_from":    calendar.FormatTimeOfDay(c.AvailableFrom),
		"available_to":      calendar.FormatTimeOfDay(c.AvailableTo),
	}
}

func availabilityFields(r *availability.Rule) map[string]any {
	return map[string]any{
		"id":          r.ID,
		"employee_id": r.EmployeeID,
		"day_of_week": int(r.DayOfWeek),
		"start_time":  calendar.FormatTimeOfDay(r.StartMinute),
		"end_time":    calendar.FormatTimeOfDay(r.EndMinute),
		"note":        optString(r.Note),
		"is_active":   r.IsActive,
		"updated_at":  formatTimestamp(r.UpdatedAt),
	}
}

func vacationFields(r *vacation.Request) map[string]any {
	return map[string]any{
		"id":                 r.ID,
		"employee_id":        r.EmployeeID,
		"start_date":         formatDate(r.StartDate),
		"end_date":           formatDate(r.EndDate),
		"partial_start_time": optTimeOfDay(r.PartialStartMinute),
		"partial_end_time":   optTimeOfDay(r.PartialEndMinute),
		"reason":             optString(r.Reason),
		"status":             string(r.Status),
		"decided_at":         optTimestamp(r.DecidedAt),
		"decided_by":         optString(r.DecidedBy),
		"created_at":         formatTimestamp(r.CreatedAt),
	}
}

func recurringFields(r *recurring.Rule) map[string]any {
	return map[string]any{
		"id":          r.ID,
		"employee_id": r.EmployeeID,
		"day_of_week": int(r.DayOfWeek),
		"start_time":  calendar.FormatTimeOfDay(r.StartMinute),
		"end_time":    calendar.FormatTimeOfDay(r.EndMinute),
		"note":        optString(r.Note),
		"is_active":   r.IsActive,
		"valid_from":  formatDate(r.ValidFrom),
		"valid_until": optDate(r.ValidUntil),
	}
}

func swapFields(r *swap.Request) map[string]any {
	return map[string]any{
		"id":           r.ID,
		"shift_id":     r.ShiftID,
		"requester_id": r.RequesterID,
		"candidate_id": r.CandidateID,
		"message":      optString(r.Message),
		"status":       string(r.Status),
		"decided_at":   optTimestamp(r.DecidedAt),
		"created_at":   formatTimestamp(r.CreatedAt),
	}
}

func entryFields(e *attendance.Entry) map[string]any {
	return map[string]any{
		"id":           e.ID,
		"employee_id":  e.EmployeeID,
		"shift_id":     optString(e.ShiftID),
		"clock_in_at":  formatTimestamp(e.ClockInAt),
		"clock_out_at": optTimestamp(e.ClockOutAt),
	}
}

func employeeFields(e *employee.Employee) map[string]any {
	return map[string]any{
		"id":            e.ID,
		"display_name":  e.DisplayName,
		"employee_code": e.EmployeeCode,
		"role":          string(e.Role),
		"department":    e.Department,
		"is_active":     e.IsActive,
		"has_pin":       e.HasPIN(),
		"created_at":    formatTimestamp(e.CreatedAt),
		"updated_at":    formatTimestamp(e.UpdatedAt),
	}
}
