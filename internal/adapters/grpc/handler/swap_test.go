package handler

import (
	"testing"
	"time"

	"github.com/ogurasousui/shiftboard/internal/core/swap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func sampleSwap(st swap.Status) *swap.Request {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &swap.Request{
		ID:          "req-1",
		CompanyID:   "company-1",
		ShiftID:     "shift-1",
		RequesterID: "emp-1",
		CandidateID: "emp-2",
		Status:      st,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestSwapGrpcHandler_CreateShiftChange_Duplicate(t *testing.T) {
	t.Parallel()

	stub := &stubSwapUseCase{createErr: swap.ErrDuplicateRequest}
	h := NewSwapGrpcHandler(stub)

	_, err := h.CreateShiftChange(withManager(), mustStruct(t, map[string]any{
		"shift_id":     "shift-1",
		"candidate_id": "emp-2",
	}))
	if status.Code(err) != codes.AlreadyExists {
		t.Fatalf("expected AlreadyExists, got %v", err)
	}
	if stub.createInput.CandidateID != "emp-2" {
		t.Fatalf("unexpected input: %+v", stub.createInput)
	}
}

func TestSwapGrpcHandler_AcceptShiftChange(t *testing.T) {
	t.Parallel()

	moved := sampleShift(time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC))
	moved.EmployeeID = "emp-2"
	stub := &stubSwapUseCase{acceptOut: &swap.AcceptResult{
		Request:      sampleSwap(swap.StatusAccepted),
		Shift:        moved,
		AutoRejected: 2,
	}}
	h := NewSwapGrpcHandler(stub)

	resp, err := h.AcceptShiftChange(withManager(), mustStruct(t, map[string]any{"id": "req-1"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fields := resp.GetFields()
	if fields["auto_rejected"].GetNumberValue() != 2 {
		t.Fatalf("unexpected auto_rejected: %v", fields["auto_rejected"])
	}
	if fields["shift"].GetStructValue().GetFields()["employee_id"].GetStringValue() != "emp-2" {
		t.Fatalf("shift should belong to the candidate: %v", fields["shift"])
	}
}

func TestSwapGrpcHandler_ListShiftChanges_Direction(t *testing.T) {
	t.Parallel()

	stub := &stubSwapUseCase{
		incoming: []*swap.Request{sampleSwap(swap.StatusPending)},
		outgoing: []*swap.Request{},
	}
	h := NewSwapGrpcHandler(stub)

	resp, err := h.ListShiftChanges(withManager(), mustStruct(t, map[string]any{"status": "pending"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.GetFields()["requests"].GetListValue().GetValues()) != 1 {
		t.Fatalf("expected one incoming request")
	}
	if stub.listInput.Status == nil || *stub.listInput.Status != swap.StatusPending {
		t.Fatalf("status should be normalized: %+v", stub.listInput)
	}

	if _, err := h.ListShiftChanges(withManager(), mustStruct(t, map[string]any{"direction": "Outgoing"})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stub.listCalls) != 2 || stub.listCalls[0] != "incoming" || stub.listCalls[1] != "outgoing" {
		t.Fatalf("unexpected calls: %v", stub.listCalls)
	}

	_, err = h.ListShiftChanges(withManager(), mustStruct(t, map[string]any{"direction": "sideways"}))
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}
