package handler

import (
	"context"

	"github.com/ogurasousui/shiftboard/internal/core/identity"
	"github.com/ogurasousui/shiftboard/internal/core/matching"
	"github.com/ogurasousui/shiftboard/internal/core/shift"
	"github.com/ogurasousui/shiftboard/internal/platform/metrics"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// ShiftGrpcHandler はシフトと交代候補の RPC を実装します。
type ShiftGrpcHandler struct {
	shifts   shift.UseCase
	matching matching.UseCase
}

// NewShiftGrpcHandler は ShiftGrpcHandler を生成します。
func NewShiftGrpcHandler(shifts shift.UseCase, matching matching.UseCase) *ShiftGrpcHandler {
	return &ShiftGrpcHandler{shifts: shifts, matching: matching}
}

// ListShiftCandidates はシフトを代われる社員を返します。
func (h *ShiftGrpcHandler) ListShiftCandidates(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	d := newDecoder(req)
	shiftID := d.required("shift_id")
	if err := d.Err(); err != nil {
		return nil, err
	}

	candidates, err := h.matching.ListCandidates(ctx, matching.ListCandidatesInput{
		Caller:  callerFrom(ctx),
		ShiftID: shiftID,
	})
	if err != nil {
		return nil, toStatusError(err)
	}
	metrics.ObserveCandidates(len(candidates))

	return newResponse(map[string]any{"candidates": listOf(candidates, candidateFields)})
}

// CheckShiftConflict は社員の既存シフトと時間帯が重なるかを判定します。
func (h *ShiftGrpcHandler) CheckShiftConflict(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	d := newDecoder(req)
	in := matching.CheckConflictInput{
		Caller:        callerFrom(ctx),
		EmployeeID:    d.required("employee_id"),
		StartAt:       d.timestamp("start_at"),
		EndAt:         d.timestamp("end_at"),
		IgnoreShiftID: d.str("ignore_shift_id"),
	}
	if err := d.Err(); err != nil {
		return nil, err
	}

	verdict, err := h.matching.CheckShiftConflict(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}

	return newResponse(map[string]any{
		"has_conflict": verdict.HasConflict(),
		"conflicting":  listOf(verdict.Conflicting, shiftFields),
	})
}

// CreateShift は手動シフトを作成します。
func (h *ShiftGrpcHandler) CreateShift(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	d := newDecoder(req)
	in := shift.CreateShiftInput{
		Caller:     callerFrom(ctx),
		EmployeeID: d.required("employee_id"),
		StartAt:    d.timestamp("start_at"),
		EndAt:      d.timestamp("end_at"),
		Note:       d.optString("note"),
	}
	if err := d.Err(); err != nil {
		return nil, err
	}

	created, err := h.shifts.CreateShift(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}

	return newResponse(map[string]any{"shift": shiftFields(created)})
}

// CancelShift はシフトを取り消します。
func (h *ShiftGrpcHandler) CancelShift(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.changeStatus(ctx, req, h.shifts.CancelShift)
}

// CompleteShift はシフトを完了にします。
func (h *ShiftGrpcHandler) CompleteShift(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.changeStatus(ctx, req, h.shifts.CompleteShift)
}

func (h *ShiftGrpcHandler) changeStatus(ctx context.Context, req *structpb.Struct, change func(context.Context, shift.ChangeStatusInput) (*shift.Shift, error)) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	d := newDecoder(req)
	id := d.required("id")
	if err := d.Err(); err != nil {
		return nil, err
	}

	updated, err := change(ctx, shift.ChangeStatusInput{Caller: callerFrom(ctx), ID: id})
	if err != nil {
		return nil, toStatusError(err)
	}

	return newResponse(map[string]any{"shift": shiftFields(updated)})
}

// ListWeekShifts は日曜始まりの 1 週間分のシフトを返します。
func (h *ShiftGrpcHandler) ListWeekShifts(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	d := newDecoder(req)
	in := shift.ListWeekInput{
		Caller:           callerFrom(ctx),
		WeekStart:        d.date("week_start"),
		EmployeeID:       d.str("employee_id"),
		IncludeCancelled: d.boolean("include_cancelled"),
	}
	if err := d.Err(); err != nil {
		return nil, err
	}

	view, err := h.shifts.ListWeek(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}

	return newResponse(map[string]any{
		"week_start": formatDate(view.WeekStart),
		"shifts":     listOf(view.Shifts, shiftFields),
	})
}

func callerFrom(ctx context.Context) identity.Caller {
	caller, _ := identity.FromContext(ctx)
	return caller
}
