package handler

import (
	"context"
	"strings"

	"github.com/ogurasousui/shiftboard/internal/core/attendance"
	"github.com/ogurasousui/shiftboard/internal/core/kiosk"
	"github.com/ogurasousui/shiftboard/internal/platform/metrics"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// KioskSessionHeader はキオスクのセッショントークンを運ぶメタデータキーです。
const KioskSessionHeader = "x-kiosk-session"

// KioskGrpcHandler はキオスクのログインと勤怠打刻の RPC を実装します。
type KioskGrpcHandler struct {
	sessions   kiosk.UseCase
	attendance attendance.UseCase
	companyID  string
}

// NewKioskGrpcHandler は KioskGrpcHandler を生成します。companyID は起動時に解決したテナントです。
func NewKioskGrpcHandler(sessions kiosk.UseCase, attendance attendance.UseCase, companyID string) *KioskGrpcHandler {
	return &KioskGrpcHandler{sessions: sessions, attendance: attendance, companyID: companyID}
}

// KioskLogin は社員コードと PIN でセッションを発行します。
func (h *KioskGrpcHandler) KioskLogin(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	d := newDecoder(req)
	in := kiosk.LoginInput{
		CompanyID:    h.companyID,
		EmployeeCode: d.required("employee_code"),
		PIN:          d.required("pin"),
	}
	if err := d.Err(); err != nil {
		return nil, err
	}

	session, err := h.sessions.Login(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}
	metrics.ObserveClockEvent("login")

	return newResponse(map[string]any{
		"token":       session.Token,
		"employee_id": session.EmployeeID,
		"expires_at":  formatTimestamp(session.ExpiresAt),
	})
}

// KioskLogout はメタデータのセッションを破棄します。
func (h *KioskGrpcHandler) KioskLogout(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	if err := h.sessions.Logout(ctx, sessionToken(ctx)); err != nil {
		return nil, toStatusError(err)
	}
	metrics.ObserveClockEvent("logout")

	return newResponse(map[string]any{})
}

// ClockIn は出勤を記録します。
func (h *KioskGrpcHandler) ClockIn(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	entry, err := h.attendance.ClockIn(ctx, attendance.ClockInput{Caller: callerFrom(ctx)})
	if err != nil {
		return nil, toStatusError(err)
	}
	metrics.ObserveClockEvent("clock_in")

	return newResponse(map[string]any{"entry": entryFields(entry)})
}

// ClockOut は退勤を記録します。紐づくシフトがあれば完了にしたシフトも返します。
func (h *KioskGrpcHandler) ClockOut(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	result, err := h.attendance.ClockOut(ctx, attendance.ClockInput{Caller: callerFrom(ctx)})
	if err != nil {
		return nil, toStatusError(err)
	}
	metrics.ObserveClockEvent("clock_out")

	resp := map[string]any{"entry": entryFields(result.Entry), "shift": nil}
	if result.Shift != nil {
		resp["shift"] = shiftFields(result.Shift)
	}
	return newResponse(resp)
}

// ListTimeEntries は期間 [from, to) の勤怠記録を返します。
func (h *KioskGrpcHandler) ListTimeEntries(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	d := newDecoder(req)
	in := attendance.ListEntriesInput{
		Caller:     callerFrom(ctx),
		EmployeeID: d.str("employee_id"),
		From:       d.timestamp("from"),
		To:         d.timestamp("to"),
	}
	if err := d.Err(); err != nil {
		return nil, err
	}

	entries, err := h.attendance.ListEntries(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}

	return newResponse(map[string]any{"entries": listOf(entries, entryFields)})
}

func sessionToken(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(KioskSessionHeader)
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}
