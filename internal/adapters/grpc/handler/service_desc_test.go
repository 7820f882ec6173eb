package handler

import (
	"context"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

func newTestService() *SchedulingService {
	return NewSchedulingService(
		NewShiftGrpcHandler(&stubShiftUseCase{}, &stubMatchingUseCase{}),
		NewAvailabilityGrpcHandler(&stubAvailabilityUseCase{}),
		NewVacationGrpcHandler(&stubVacationUseCase{}),
		NewRecurringGrpcHandler(&stubRecurringUseCase{}),
		NewSwapGrpcHandler(&stubSwapUseCase{}),
		NewKioskGrpcHandler(&stubKioskUseCase{}, &stubAttendanceUseCase{}, "company-1"),
		NewEmployeeGrpcHandler(&stubEmployeeUseCase{}),
	)
}

func TestSchedulingService_ServiceDesc(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	desc := svc.ServiceDesc()

	if desc.ServiceName != ServiceName {
		t.Fatalf("unexpected service name: %s", desc.ServiceName)
	}
	if len(desc.Methods) != len(svc.MethodNames()) {
		t.Fatalf("expected %d methods, got %d", len(svc.MethodNames()), len(desc.Methods))
	}

	seen := make(map[string]bool)
	for _, m := range desc.Methods {
		if seen[m.MethodName] {
			t.Fatalf("duplicate method %s", m.MethodName)
		}
		seen[m.MethodName] = true
	}
	for _, name := range []string{"ListShiftCandidates", "ApproveVacation", "ApplyRecurringWeek", "KioskLogin", "ClockOut"} {
		if !seen[name] {
			t.Fatalf("method %s not registered", name)
		}
	}
}

func TestSchedulingService_RegistersOnServer(t *testing.T) {
	t.Parallel()

	srv := grpc.NewServer()
	newTestService().Register(srv)

	info, ok := srv.GetServiceInfo()[ServiceName]
	if !ok {
		t.Fatalf("service not registered")
	}
	if len(info.Methods) == 0 {
		t.Fatalf("no methods registered")
	}
}

func TestUnaryHandler_RunsInterceptor(t *testing.T) {
	t.Parallel()

	var gotReq *structpb.Struct
	fn := func(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
		gotReq = req
		return structpb.NewStruct(map[string]any{"ok": true})
	}
	handler := unaryHandler(FullMethod("Ping"), fn)

	dec := func(v any) error {
		v.(*structpb.Struct).Fields = map[string]*structpb.Value{"id": structpb.NewStringValue("x")}
		return nil
	}

	var seenMethod string
	interceptor := func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		seenMethod = info.FullMethod
		return next(ctx, req)
	}

	resp, err := handler(nil, context.Background(), dec, interceptor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seenMethod != "/shiftboard.scheduling.v1.SchedulingService/Ping" {
		t.Fatalf("unexpected method: %s", seenMethod)
	}
	if gotReq.GetFields()["id"].GetStringValue() != "x" {
		t.Fatalf("request not decoded: %v", gotReq)
	}
	if !resp.(*structpb.Struct).GetFields()["ok"].GetBoolValue() {
		t.Fatalf("unexpected response: %v", resp)
	}

	if _, err := handler(nil, context.Background(), dec, nil); err != nil {
		t.Fatalf("unexpected error without interceptor: %v", err)
	}
}
