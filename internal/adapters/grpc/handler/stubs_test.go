package handler

import (
	"context"

	"github.com/ogurasousui/shiftboard/internal/core/attendance"
	"github.com/ogurasousui/shiftboard/internal/core/availability"
	"github.com/ogurasousui/shiftboard/internal/core/employee"
	"github.com/ogurasousui/shiftboard/internal/core/identity"
	"github.com/ogurasousui/shiftboard/internal/core/kiosk"
	"github.com/ogurasousui/shiftboard/internal/core/matching"
	"github.com/ogurasousui/shiftboard/internal/core/recurring"
	"github.com/ogurasousui/shiftboard/internal/core/shift"
	"github.com/ogurasousui/shiftboard/internal/core/swap"
	"github.com/ogurasousui/shiftboard/internal/core/vacation"
)

var managerCaller = identity.Caller{CompanyID: "company-1", EmployeeID: "mgr-1", Role: identity.RoleManager}

func withManager() context.Context {
	return identity.WithCaller(context.Background(), managerCaller)
}

type stubShiftUseCase struct {
	createInput shift.CreateShiftInput
	createOut   *shift.Shift
	createErr   error

	changeInput shift.ChangeStatusInput
	changeOut   *shift.Shift
	changeErr   error

	weekInput shift.ListWeekInput
	weekOut   *shift.WeekView
	weekErr   error
}

func (s *stubShiftUseCase) CreateShift(ctx context.Context, in shift.CreateShiftInput) (*shift.Shift, error) {
	s.createInput = in
	return s.createOut, s.createErr
}

func (s *stubShiftUseCase) CancelShift(ctx context.Context, in shift.ChangeStatusInput) (*shift.Shift, error) {
	s.changeInput = in
	return s.changeOut, s.changeErr
}

func (s *stubShiftUseCase) CompleteShift(ctx context.Context, in shift.ChangeStatusInput) (*shift.Shift, error) {
	s.changeInput = in
	return s.changeOut, s.changeErr
}

func (s *stubShiftUseCase) ListWeek(ctx context.Context, in shift.ListWeekInput) (*shift.WeekView, error) {
	s.weekInput = in
	return s.weekOut, s.weekErr
}

type stubMatchingUseCase struct {
	listInput matching.ListCandidatesInput
	listOut   []*matching.Candidate
	listErr   error

	checkInput matching.CheckConflictInput
	checkOut   *matching.Verdict
	checkErr   error
}

func (s *stubMatchingUseCase) ListCandidates(ctx context.Context, in matching.ListCandidatesInput) ([]*matching.Candidate, error) {
	s.listInput = in
	return s.listOut, s.listErr
}

func (s *stubMatchingUseCase) CheckShiftConflict(ctx context.Context, in matching.CheckConflictInput) (*matching.Verdict, error) {
	s.checkInput = in
	return s.checkOut, s.checkErr
}

type stubAvailabilityUseCase struct {
	setInput availability.SetRuleInput
	setOut   *availability.Rule
	setErr   error

	listInput availability.ListRulesInput
	listOut   []*availability.Rule

	deleteInput availability.DeleteRuleInput
	deleteErr   error
}

func (s *stubAvailabilityUseCase) SetRule(ctx context.Context, in availability.SetRuleInput) (*availability.Rule, error) {
	s.setInput = in
	return s.setOut, s.setErr
}

func (s *stubAvailabilityUseCase) ListRules(ctx context.Context, in availability.ListRulesInput) ([]*availability.Rule, error) {
	s.listInput = in
	return s.listOut, nil
}

func (s *stubAvailabilityUseCase) DeleteRule(ctx context.Context, in availability.DeleteRuleInput) error {
	s.deleteInput = in
	return s.deleteErr
}

type stubVacationUseCase struct {
	requestInput vacation.RequestVacationInput
	requestOut   *vacation.Request
	requestErr   error

	decideInput vacation.DecideInput
	approveOut  *vacation.ApproveResult
	decideOut   *vacation.Request
	decideErr   error

	listInput vacation.ListVacationsInput
	listOut   *vacation.ListVacationsResult
}

func (s *stubVacationUseCase) RequestVacation(ctx context.Context, in vacation.RequestVacationInput) (*vacation.Request, error) {
	s.requestInput = in
	return s.requestOut, s.requestErr
}

func (s *stubVacationUseCase) ApproveVacation(ctx context.Context, in vacation.DecideInput) (*vacation.ApproveResult, error) {
	s.decideInput = in
	return s.approveOut, s.decideErr
}

func (s *stubVacationUseCase) RejectVacation(ctx context.Context, in vacation.DecideInput) (*vacation.Request, error) {
	s.decideInput = in
	return s.decideOut, s.decideErr
}

func (s *stubVacationUseCase) CancelVacation(ctx context.Context, in vacation.DecideInput) (*vacation.Request, error) {
	s.decideInput = in
	return s.decideOut, s.decideErr
}

func (s *stubVacationUseCase) ListVacations(ctx context.Context, in vacation.ListVacationsInput) (*vacation.ListVacationsResult, error) {
	s.listInput = in
	return s.listOut, nil
}

type stubRecurringUseCase struct {
	createInput recurring.CreateRuleInput
	createOut   *recurring.Rule

	listInput recurring.ListRulesInput
	listOut   []*recurring.Rule

	deactivateInput recurring.DeactivateRuleInput
	deactivateOut   *recurring.Rule

	applyInput recurring.ApplyWeekInput
	applyOut   *recurring.ApplyResult
	applyErr   error
}

func (s *stubRecurringUseCase) CreateRule(ctx context.Context, in recurring.CreateRuleInput) (*recurring.Rule, error) {
	s.createInput = in
	return s.createOut, nil
}

func (s *stubRecurringUseCase) ListRules(ctx context.Context, in recurring.ListRulesInput) ([]*recurring.Rule, error) {
	s.listInput = in
	return s.listOut, nil
}

func (s *stubRecurringUseCase) DeactivateRule(ctx context.Context, in recurring.DeactivateRuleInput) (*recurring.Rule, error) {
	s.deactivateInput = in
	return s.deactivateOut, nil
}

func (s *stubRecurringUseCase) ApplyWeek(ctx context.Context, in recurring.ApplyWeekInput) (*recurring.ApplyResult, error) {
	s.applyInput = in
	return s.applyOut, s.applyErr
}

type stubSwapUseCase struct {
	createInput swap.CreateRequestInput
	createOut   *swap.Request
	createErr   error

	decideInput swap.DecideInput
	acceptOut   *swap.AcceptResult
	rejectOut   *swap.Request
	decideErr   error

	listInput swap.ListInput
	incoming  []*swap.Request
	outgoing  []*swap.Request
	listCalls []string
}

func (s *stubSwapUseCase) CreateRequest(ctx context.Context, in swap.CreateRequestInput) (*swap.Request, error) {
	s.createInput = in
	return s.createOut, s.createErr
}

func (s *stubSwapUseCase) AcceptRequest(ctx context.Context, in swap.DecideInput) (*swap.AcceptResult, error) {
	s.decideInput = in
	return s.acceptOut, s.decideErr
}

func (s *stubSwapUseCase) RejectRequest(ctx context.Context, in swap.DecideInput) (*swap.Request, error) {
	s.decideInput = in
	return s.rejectOut, s.decideErr
}

func (s *stubSwapUseCase) ListIncoming(ctx context.Context, in swap.ListInput) ([]*swap.Request, error) {
	s.listInput = in
	s.listCalls = append(s.listCalls, "incoming")
	return s.incoming, nil
}

func (s *stubSwapUseCase) ListOutgoing(ctx context.Context, in swap.ListInput) ([]*swap.Request, error) {
	s.listInput = in
	s.listCalls = append(s.listCalls, "outgoing")
	return s.outgoing, nil
}

type stubKioskUseCase struct {
	loginInput kiosk.LoginInput
	loginOut   *kiosk.Session
	loginErr   error

	resolveToken string
	resolveOut   identity.Caller
	resolveErr   error

	logoutToken string
}

func (s *stubKioskUseCase) Login(ctx context.Context, in kiosk.LoginInput) (*kiosk.Session, error) {
	s.loginInput = in
	return s.loginOut, s.loginErr
}

func (s *stubKioskUseCase) Resolve(ctx context.Context, token string) (identity.Caller, error) {
	s.resolveToken = token
	return s.resolveOut, s.resolveErr
}

func (s *stubKioskUseCase) Logout(ctx context.Context, token string) error {
	s.logoutToken = token
	return nil
}

type stubAttendanceUseCase struct {
	clockInput attendance.ClockInput
	clockInOut *attendance.Entry
	clockOut   *attendance.ClockOutResult
	clockErr   error

	listInput attendance.ListEntriesInput
	listOut   []*attendance.Entry
}

func (s *stubAttendanceUseCase) ClockIn(ctx context.Context, in attendance.ClockInput) (*attendance.Entry, error) {
	s.clockInput = in
	return s.clockInOut, s.clockErr
}

func (s *stubAttendanceUseCase) ClockOut(ctx context.Context, in attendance.ClockInput) (*attendance.ClockOutResult, error) {
	s.clockInput = in
	return s.clockOut, s.clockErr
}

func (s *stubAttendanceUseCase) ListEntries(ctx context.Context, in attendance.ListEntriesInput) ([]*attendance.Entry, error) {
	s.listInput = in
	return s.listOut, nil
}

type stubEmployeeUseCase struct {
	createInput employee.CreateEmployeeInput
	createOut   *employee.Employee
	createErr   error

	updateInput employee.UpdateEmployeeInput
	updateOut   *employee.Employee

	getInput employee.GetEmployeeInput
	getOut   *employee.Employee
	getErr   error

	listInput employee.ListEmployeesInput
	listOut   *employee.ListEmployeesResult

	pinInput employee.SetKioskPINInput
	pinErr   error
}

func (s *stubEmployeeUseCase) CreateEmployee(ctx context.Context, in employee.CreateEmployeeInput) (*employee.Employee, error) {
	s.createInput = in
	return s.createOut, s.createErr
}

func (s *stubEmployeeUseCase) GetEmployee(ctx context.Context, in employee.GetEmployeeInput) (*employee.Employee, error) {
	s.getInput = in
	return s.getOut, s.getErr
}

func (s *stubEmployeeUseCase) ListEmployees(ctx context.Context, in employee.ListEmployeesInput) (*employee.ListEmployeesResult, error) {
	s.listInput = in
	return s.listOut, nil
}

func (s *stubEmployeeUseCase) UpdateEmployee(ctx context.Context, in employee.UpdateEmployeeInput) (*employee.Employee, error) {
	s.updateInput = in
	return s.updateOut, nil
}

func (s *stubEmployeeUseCase) SetKioskPIN(ctx context.Context, in employee.SetKioskPINInput) error {
	s.pinInput = in
	return s.pinErr
}
