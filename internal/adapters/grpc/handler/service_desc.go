package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName は SchedulingService の完全修飾名です。
const ServiceName = "shiftboard.scheduling.v1.SchedulingService"

// PublicMethods は認証なしで呼び出せるメソッドです。
var PublicMethods = []string{FullMethod("KioskLogin")}

// FullMethod はメソッド名を gRPC のフルメソッド名にします。
func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// UnaryMethod は Struct を受け取り Struct を返す RPC の実装です。
type UnaryMethod func(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

type method struct {
	name string
	fn   UnaryMethod
}

// SchedulingService は各ハンドラを 1 つの gRPC サービスとして束ねます。
type SchedulingService struct {
	methods []method
}

// NewSchedulingService は SchedulingService を生成します。
func NewSchedulingService(
	shifts *ShiftGrpcHandler,
	availability *AvailabilityGrpcHandler,
	vacations *VacationGrpcHandler,
	recurring *RecurringGrpcHandler,
	swaps *SwapGrpcHandler,
	kiosk *KioskGrpcHandler,
	employees *EmployeeGrpcHandler,
) *SchedulingService {
	return &SchedulingService{methods: []method{
		{"ListShiftCandidates", shifts.ListShiftCandidates},
		{"CheckShiftConflict", shifts.CheckShiftConflict},
		{"CreateShift", shifts.CreateShift},
		{"CancelShift", shifts.CancelShift},
		{"CompleteShift", shifts.CompleteShift},
		{"ListWeekShifts", shifts.ListWeekShifts},
		{"SetAvailability", availability.SetAvailability},
		{"ListAvailability", availability.ListAvailability},
		{"DeleteAvailability", availability.DeleteAvailability},
		{"RequestVacation", vacations.RequestVacation},
		{"ApproveVacation", vacations.ApproveVacation},
		{"RejectVacation", vacations.RejectVacation},
		{"CancelVacation", vacations.CancelVacation},
		{"ListVacations", vacations.ListVacations},
		{"CreateRecurringRule", recurring.CreateRecurringRule},
		{"ListRecurringRules", recurring.ListRecurringRules},
		{"DeactivateRecurringRule", recurring.DeactivateRecurringRule},
		{"ApplyRecurringWeek", recurring.ApplyRecurringWeek},
		{"CreateShiftChange", swaps.CreateShiftChange},
		{"AcceptShiftChange", swaps.AcceptShiftChange},
		{"RejectShiftChange", swaps.RejectShiftChange},
		{"ListShiftChanges", swaps.ListShiftChanges},
		{"KioskLogin", kiosk.KioskLogin},
		{"KioskLogout", kiosk.KioskLogout},
		{"ClockIn", kiosk.ClockIn},
		{"ClockOut", kiosk.ClockOut},
		{"ListTimeEntries", kiosk.ListTimeEntries},
		{"CreateEmployee", employees.CreateEmployee},
		{"UpdateEmployee", employees.UpdateEmployee},
		{"GetEmployee", employees.GetEmployee},
		{"ListEmployees", employees.ListEmployees},
		{"SetKioskPIN", employees.SetKioskPIN},
	}}
}

// Register は SchedulingService を登録します。
func (s *SchedulingService) Register(registrar grpc.ServiceRegistrar) {
	registrar.RegisterService(s.ServiceDesc(), s)
}

// ServiceDesc は生成コードの代わりとなるサービス定義を返します。
// リクエストとレスポンスは google.protobuf.Struct で、既定の proto コーデックで送受信します。
func (s *SchedulingService) ServiceDesc() *grpc.ServiceDesc {
	desc := &grpc.ServiceDesc{
		ServiceName: ServiceName,
		HandlerType: (*any)(nil),
		Streams:     []grpc.StreamDesc{},
		Metadata:    "shiftboard/scheduling/v1/scheduling.proto",
	}
	for _, m := range s.methods {
		desc.Methods = append(desc.Methods, grpc.MethodDesc{
			MethodName: m.name,
			Handler:    unaryHandler(FullMethod(m.name), m.fn),
		})
	}
	return desc
}

// MethodNames は登録されるメソッド名を定義順に返します。
func (s *SchedulingService) MethodNames() []string {
	names := make([]string, 0, len(s.methods))
	for _, m := range s.methods {
		names = append(names, m.name)
	}
	return names
}

func unaryHandler(fullMethod string, fn UnaryMethod) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return fn(ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return fn(ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}
