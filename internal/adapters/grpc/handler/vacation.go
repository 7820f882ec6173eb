package handler

import (
	"context"

	"github.com/ogurasousui/shiftboard/internal/core/vacation"
	"github.com/ogurasousui/shiftboard/internal/platform/metrics"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// VacationGrpcHandler は休暇申請の RPC を実装します。
type VacationGrpcHandler struct {
	svc vacation.UseCase
}

// NewVacationGrpcHandler は VacationGrpcHandler を生成します。
func NewVacationGrpcHandler(svc vacation.UseCase) *VacationGrpcHandler {
	return &VacationGrpcHandler{svc: svc}
}

// RequestVacation は休暇を申請します。
func (h *VacationGrpcHandler) RequestVacation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	d := newDecoder(req)
	in := vacation.RequestVacationInput{
		Caller:             callerFrom(ctx),
		EmployeeID:         d.str("employee_id"),
		StartDate:          d.date("start_date"),
		EndDate:            d.date("end_date"),
		PartialStartMinute: d.optTimeOfDay("partial_start_time"),
		PartialEndMinute:   d.optTimeOfDay("partial_end_time"),
		Reason:             d.optString("reason"),
	}
	if err := d.Err(); err != nil {
		return nil, err
	}

	created, err := h.svc.RequestVacation(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}

	return newResponse(map[string]any{"request": vacationFields(created)})
}

// ApproveVacation は休暇申請を承認し、休暇プレースホルダを返します。
func (h *VacationGrpcHandler) ApproveVacation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requestID(req)
	if err != nil {
		return nil, err
	}
	in := vacation.DecideInput{Caller: callerFrom(ctx), ID: id}

	result, err := h.svc.ApproveVacation(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}
	metrics.ObserveVacationDecision(string(result.Request.Status))

	return newResponse(map[string]any{
		"request": vacationFields(result.Request),
		"shifts":  listOf(result.Shifts, shiftFields),
	})
}

// RejectVacation は休暇申請を却下します。
func (h *VacationGrpcHandler) RejectVacation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.decide(ctx, req, h.svc.RejectVacation)
}

// CancelVacation は承認済みの休暇を取り消します。
func (h *VacationGrpcHandler) CancelVacation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.decide(ctx, req, h.svc.CancelVacation)
}

func (h *VacationGrpcHandler) decide(ctx context.Context, req *structpb.Struct, fn func(context.Context, vacation.DecideInput) (*vacation.Request, error)) (*structpb.Struct, error) {
	id, err := requestID(req)
	if err != nil {
		return nil, err
	}
	in := vacation.DecideInput{Caller: callerFrom(ctx), ID: id}

	decided, err := fn(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}
	metrics.ObserveVacationDecision(string(decided.Status))

	return newResponse(map[string]any{"request": vacationFields(decided)})
}

// ListVacations は休暇申請を開始日の新しい順に返します。
func (h *VacationGrpcHandler) ListVacations(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	d := newDecoder(req)
	in := vacation.ListVacationsInput{
		Caller:     callerFrom(ctx),
		EmployeeID: d.optString("employee_id"),
		PageSize:   d.integer("page_size"),
		PageToken:  d.str("page_token"),
	}
	if raw := d.optString("status"); raw != nil {
		st := vacation.Status(*raw)
		in.Status = &st
	}
	if err := d.Err(); err != nil {
		return nil, err
	}

	result, err := h.svc.ListVacations(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}

	return newResponse(map[string]any{
		"requests":        listOf(result.Requests, vacationFields),
		"next_page_token": result.NextPageToken,
	})
}
