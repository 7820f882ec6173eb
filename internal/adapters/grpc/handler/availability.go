package handler

import (
	"context"

	"github.com/ogurasousui/shiftboard/internal/core/availability"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// AvailabilityGrpcHandler は勤務可能時間の RPC を実装します。
type AvailabilityGrpcHandler struct {
	svc availability.UseCase
}

// NewAvailabilityGrpcHandler は AvailabilityGrpcHandler を生成します。
func NewAvailabilityGrpcHandler(svc availability.UseCase) *AvailabilityGrpcHandler {
	return &AvailabilityGrpcHandler{svc: svc}
}

// SetAvailability は曜日ごとの勤務可能時間を登録します。
func (h *AvailabilityGrpcHandler) SetAvailability(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	d := newDecoder(req)
	in := availability.SetRuleInput{
		Caller:      callerFrom(ctx),
		EmployeeID:  d.str("employee_id"),
		DayOfWeek:   d.requiredInt("day_of_week"),
		StartMinute: d.timeOfDay("start_time"),
		EndMinute:   d.timeOfDay("end_time"),
		Note:        d.optString("note"),
		IsActive:    d.optBool("is_active"),
	}
	if err := d.Err(); err != nil {
		return nil, err
	}

	rule, err := h.svc.SetRule(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}

	return newResponse(map[string]any{"rule": availabilityFields(rule)})
}

// ListAvailability は社員の勤務可能時間を返します。
func (h *AvailabilityGrpcHandler) ListAvailability(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	d := newDecoder(req)
	employeeID := d.str("employee_id")
	if err := d.Err(); err != nil {
		return nil, err
	}

	rules, err := h.svc.ListRules(ctx, availability.ListRulesInput{
		Caller:     callerFrom(ctx),
		EmployeeID: employeeID,
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	return newResponse(map[string]any{"rules": listOf(rules, availabilityFields)})
}

// DeleteAvailability は勤務可能時間を削除します。
func (h *AvailabilityGrpcHandler) DeleteAvailability(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	d := newDecoder(req)
	id := d.required("id")
	if err := d.Err(); err != nil {
		return nil, err
	}

	if err := h.svc.DeleteRule(ctx, availability.DeleteRuleInput{Caller: callerFrom(ctx), ID: id}); err != nil {
		return nil, toStatusError(err)
	}

	return newResponse(map[string]any{})
}
