package handler

import (
	"context"
	"strings"

	"github.com/ogurasousui/shiftboard/internal/core/swap"
	"github.com/ogurasousui/shiftboard/internal/platform/metrics"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// SwapGrpcHandler はシフト交代依頼の RPC を実装します。
type SwapGrpcHandler struct {
	svc swap.UseCase
}

// NewSwapGrpcHandler は SwapGrpcHandler を生成します。
func NewSwapGrpcHandler(svc swap.UseCase) *SwapGrpcHandler {
	return &SwapGrpcHandler{svc: svc}
}

// CreateShiftChange は交代候補へ依頼を送ります。
func (h *SwapGrpcHandler) CreateShiftChange(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	d := newDecoder(req)
	in := swap.CreateRequestInput{
		Caller:      callerFrom(ctx),
		ShiftID:     d.required("shift_id"),
		CandidateID: d.required("candidate_id"),
		Message:     d.optString("message"),
	}
	if err := d.Err(); err != nil {
		return nil, err
	}

	created, err := h.svc.CreateRequest(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}

	return newResponse(map[string]any{"request": swapFields(created)})
}

// AcceptShiftChange は依頼を承諾し、シフトを候補者へ付け替えます。
func (h *SwapGrpcHandler) AcceptShiftChange(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requestID(req)
	if err != nil {
		return nil, err
	}

	result, err := h.svc.AcceptRequest(ctx, swap.DecideInput{Caller: callerFrom(ctx), ID: id})
	if err != nil {
		return nil, toStatusError(err)
	}
	metrics.ObserveShiftChangeDecision(string(result.Request.Status), result.AutoRejected)

	return newResponse(map[string]any{
		"request":       swapFields(result.Request),
		"shift":         shiftFields(result.Shift),
		"auto_rejected": result.AutoRejected,
	})
}

// RejectShiftChange は依頼を辞退します。
func (h *SwapGrpcHandler) RejectShiftChange(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requestID(req)
	if err != nil {
		return nil, err
	}

	rejected, err := h.svc.RejectRequest(ctx, swap.DecideInput{Caller: callerFrom(ctx), ID: id})
	if err != nil {
		return nil, toStatusError(err)
	}
	metrics.ObserveShiftChangeDecision(string(rejected.Status), 0)

	return newResponse(map[string]any{"request": swapFields(rejected)})
}

// ListShiftChanges は社員宛て (incoming) または社員発 (outgoing) の依頼を返します。
func (h *SwapGrpcHandler) ListShiftChanges(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	d := newDecoder(req)
	direction := strings.ToLower(strings.TrimSpace(d.str("direction")))
	in := swap.ListInput{
		Caller:     callerFrom(ctx),
		EmployeeID: d.str("employee_id"),
	}
	if raw := d.optString("status"); raw != nil {
		st := swap.Status(strings.ToUpper(*raw))
		in.Status = &st
	}
	if err := d.Err(); err != nil {
		return nil, err
	}

	var (
		requests []*swap.Request
		err      error
	)
	switch direction {
	case "", "incoming":
		requests, err = h.svc.ListIncoming(ctx, in)
	case "outgoing":
		requests, err = h.svc.ListOutgoing(ctx, in)
	default:
		return nil, status.Error(codes.InvalidArgument, "direction: must be incoming or outgoing")
	}
	if err != nil {
		return nil, toStatusError(err)
	}

	return newResponse(map[string]any{"requests": listOf(requests, swapFields)})
}

func requestID(req *structpb.Struct) (string, error) {
	if req == nil {
		return "", status.Error(codes.InvalidArgument, "request is required")
	}

	d := newDecoder(req)
	id := d.required("id")
	if err := d.Err(); err != nil {
		return "", err
	}
	return id, nil
}
