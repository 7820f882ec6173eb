package handler

import (
	"context"

	"github.com/ogurasousui/shiftboard/internal/core/employee"
	"github.com/ogurasousui/shiftboard/internal/core/identity"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// EmployeeGrpcHandler は社員管理の RPC を実装します。
type EmployeeGrpcHandler struct {
	svc employee.UseCase
}

// NewEmployeeGrpcHandler は EmployeeGrpcHandler を生成します。
func NewEmployeeGrpcHandler(svc employee.UseCase) *EmployeeGrpcHandler {
	return &EmployeeGrpcHandler{svc: svc}
}

// CreateEmployee は社員を作成します。
func (h *EmployeeGrpcHandler) CreateEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	d := newDecoder(req)
	in := employee.CreateEmployeeInput{
		Caller:          callerFrom(ctx),
		DisplayName:     d.required("display_name"),
		EmployeeCode:    d.required("employee_code"),
		Role:            identity.Role(d.str("role")),
		Department:      d.str("department"),
		ExternalSubject: d.optString("external_subject"),
	}
	if err := d.Err(); err != nil {
		return nil, err
	}

	created, err := h.svc.CreateEmployee(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}

	return newResponse(map[string]any{"employee": employeeFields(created)})
}

// UpdateEmployee は指定されたフィールドのみ更新します。
func (h *EmployeeGrpcHandler) UpdateEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	d := newDecoder(req)
	in := employee.UpdateEmployeeInput{
		Caller:      callerFrom(ctx),
		ID:          d.required("id"),
		DisplayName: d.optString("display_name"),
		Department:  d.optString("department"),
		IsActive:    d.optBool("is_active"),
	}
	if raw := d.optString("role"); raw != nil {
		role := identity.Role(*raw)
		in.Role = &role
	}
	if err := d.Err(); err != nil {
		return nil, err
	}

	updated, err := h.svc.UpdateEmployee(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}

	return newResponse(map[string]any{"employee": employeeFields(updated)})
}

// GetEmployee は社員を取得します。
func (h *EmployeeGrpcHandler) GetEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requestID(req)
	if err != nil {
		return nil, err
	}

	found, err := h.svc.GetEmployee(ctx, employee.GetEmployeeInput{Caller: callerFrom(ctx), ID: id})
	if err != nil {
		return nil, toStatusError(err)
	}

	return newResponse(map[string]any{"employee": employeeFields(found)})
}

// ListEmployees は社員一覧を返します。
func (h *EmployeeGrpcHandler) ListEmployees(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	d := newDecoder(req)
	in := employee.ListEmployeesInput{
		Caller:     callerFrom(ctx),
		Department: d.optString("department"),
		ActiveOnly: d.boolean("active_only"),
		PageSize:   d.integer("page_size"),
		PageToken:  d.str("page_token"),
	}
	if err := d.Err(); err != nil {
		return nil, err
	}

	result, err := h.svc.ListEmployees(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}

	return newResponse(map[string]any{
		"employees":       listOf(result.Employees, employeeFields),
		"next_page_token": result.NextPageToken,
	})
}

// SetKioskPIN は社員のキオスク PIN を設定します。
func (h *EmployeeGrpcHandler) SetKioskPIN(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	d := newDecoder(req)
	in := employee.SetKioskPINInput{
		Caller: callerFrom(ctx),
		ID:     d.required("id"),
		PIN:    d.required("pin"),
	}
	if err := d.Err(); err != nil {
		return nil, err
	}

	if err := h.svc.SetKioskPIN(ctx, in); err != nil {
		return nil, toStatusError(err)
	}

	return newResponse(map[string]any{})
}
