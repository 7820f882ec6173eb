package handler

import (
	"context"

	"github.com/ogurasousui/shiftboard/internal/core/recurring"
	"github.com/ogurasousui/shiftboard/internal/platform/metrics"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// RecurringGrpcHandler は繰り返しシフトの RPC を実装します。
type RecurringGrpcHandler struct {
	svc recurring.UseCase
}

// NewRecurringGrpcHandler は RecurringGrpcHandler を生成します。
func NewRecurringGrpcHandler(svc recurring.UseCase) *RecurringGrpcHandler {
	return &RecurringGrpcHandler{svc: svc}
}

// CreateRecurringRule は繰り返しルールを作成します。
func (h *RecurringGrpcHandler) CreateRecurringRule(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	d := newDecoder(req)
	in := recurring.CreateRuleInput{
		Caller:      callerFrom(ctx),
		EmployeeID:  d.required("employee_id"),
		DayOfWeek:   d.requiredInt("day_of_week"),
		StartMinute: d.timeOfDay("start_time"),
		EndMinute:   d.timeOfDay("end_time"),
		Note:        d.optString("note"),
		ValidFrom:   d.date("valid_from"),
		ValidUntil:  d.optDate("valid_until"),
	}
	if err := d.Err(); err != nil {
		return nil, err
	}

	rule, err := h.svc.CreateRule(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}

	return newResponse(map[string]any{"rule": recurringFields(rule)})
}

// ListRecurringRules は繰り返しルールを返します。
func (h *RecurringGrpcHandler) ListRecurringRules(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	d := newDecoder(req)
	in := recurring.ListRulesInput{
		Caller:     callerFrom(ctx),
		EmployeeID: d.optString("employee_id"),
		ActiveOnly: d.boolean("active_only"),
	}
	if err := d.Err(); err != nil {
		return nil, err
	}

	rules, err := h.svc.ListRules(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}

	return newResponse(map[string]any{"rules": listOf(rules, recurringFields)})
}

// DeactivateRecurringRule は繰り返しルールを無効化します。
func (h *RecurringGrpcHandler) DeactivateRecurringRule(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	d := newDecoder(req)
	id := d.required("id")
	if err := d.Err(); err != nil {
		return nil, err
	}

	rule, err := h.svc.DeactivateRule(ctx, recurring.DeactivateRuleInput{Caller: callerFrom(ctx), ID: id})
	if err != nil {
		return nil, toStatusError(err)
	}

	return newResponse(map[string]any{"rule": recurringFields(rule)})
}

// ApplyRecurringWeek は繰り返しルールを 1 週間分のシフトに展開します。
// mode を省略した場合は FILL_MISSING です。
func (h *RecurringGrpcHandler) ApplyRecurringWeek(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	d := newDecoder(req)
	in := recurring.ApplyWeekInput{
		Caller:    callerFrom(ctx),
		WeekStart: d.date("week_start"),
		Mode:      recurring.ModeFillMissing,
	}
	if raw := d.optString("mode"); raw != nil {
		in.Mode = recurring.Mode(*raw)
	}
	if err := d.Err(); err != nil {
		return nil, err
	}

	result, err := h.svc.ApplyWeek(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}
	metrics.ObserveRecurringApply(string(result.Mode), len(result.Created), result.Deleted)

	return newResponse(map[string]any{
		"week_start": formatDate(result.WeekStart),
		"mode":       string(result.Mode),
		"created":    len(result.Created),
		"deleted":    result.Deleted,
		"shifts":     listOf(result.Shifts, shiftFields),
	})
}
