package vacation_test

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/ogurasousui/shiftboard/internal/core/apperr"
	"github.com/ogurasousui/shiftboard/internal/core/calendar"
	"github.com/ogurasousui/shiftboard/internal/core/employee"
	"github.com/ogurasousui/shiftboard/internal/core/identity"
	"github.com/ogurasousui/shiftboard/internal/core/shift"
	"github.com/ogurasousui/shiftboard/internal/core/shift/shifttest"
	"github.com/ogurasousui/shiftboard/internal/core/vacation"
)

type stubClock struct {
	now time.Time
}

func (s *stubClock) Now() time.Time {
	return s.now
}

type fakeVacationRepo struct {
	requests map[string]*vacation.Request
	order    []string
	sequence int
}

func newFakeVacationRepo() *fakeVacationRepo {
	return &fakeVacationRepo{requests: make(map[string]*vacation.Request)}
}

func (r *fakeVacationRepo) Create(_ context.Context, req *vacation.Request) (*vacation.Request, error) {
	r.sequence++
	clone := cloneRequest(req)
	clone.ID = fmt.Sprintf("vac-%d", r.sequence)
	r.requests[clone.ID] = clone
	r.order = append(r.order, clone.ID)
	return cloneRequest(clone), nil
}

func (r *fakeVacationRepo) FindByID(_ context.Context, id string) (*vacation.Request, error) {
	req, ok := r.requests[id]
	if !ok {
		return nil, vacation.ErrRequestNotFound
	}
	return cloneRequest(req), nil
}

func (r *fakeVacationRepo) FindByIDForUpdate(ctx context.Context, id string) (*vacation.Request, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeVacationRepo) UpdateDecision(_ context.Context, id string, decision vacation.Decision) (*vacation.Request, error) {
	req, ok := r.requests[id]
	if !ok {
		return nil, vacation.ErrRequestNotFound
	}
	decidedAt := decision.DecidedAt
	req.Status = decision.Status
	req.DecidedAt = &decidedAt
	req.DecidedBy = decision.DecidedBy
	req.UpdatedAt = decidedAt
	return cloneRequest(req), nil
}

func (r *fakeVacationRepo) ListOverlapping(_ context.Context, employeeID string, start, end time.Time, statuses []vacation.Status) ([]*vacation.Request, error) {
	var result []*vacation.Request
	for _, id := range r.order {
		req := r.requests[id]
		if req.EmployeeID != employeeID || !calendar.DateRangesOverlap(req.StartDate, req.EndDate, start, end) {
			continue
		}
		for _, status := range statuses {
			if req.Status == status {
				result = append(result, cloneRequest(req))
				break
			}
		}
	}
	return result, nil
}

func (r *fakeVacationRepo) List(_ context.Context, filter vacation.ListFilter) ([]*vacation.Request, string, error) {
	var filtered []*vacation.Request
	for _, id := range r.order {
		req := r.requests[id]
		if req.CompanyID != filter.CompanyID {
			continue
		}
		if filter.EmployeeID != nil && req.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Status != nil && req.Status != *filter.Status {
			continue
		}
		filtered = append(filtered, cloneRequest(req))
	}

	if filter.Offset > len(filtered) {
		return []*vacation.Request{}, "", nil
	}
	end := filter.Offset + filter.Limit
	if end > len(filtered) {
		end = len(filtered)
	}
	next := ""
	if end < len(filtered) {
		next = strconv.Itoa(end)
	}
	return filtered[filter.Offset:end], next, nil
}

func cloneRequest(req *vacation.Request) *vacation.Request {
	copied := *req
	if req.PartialStartMinute != nil {
		v := *req.PartialStartMinute
		copied.PartialStartMinute = &v
	}
	if req.PartialEndMinute != nil {
		v := *req.PartialEndMinute
		copied.PartialEndMinute = &v
	}
	if req.DecidedAt != nil {
		v := *req.DecidedAt
		copied.DecidedAt = &v
	}
	if req.DecidedBy != nil {
		v := *req.DecidedBy
		copied.DecidedBy = &v
	}
	return &copied
}

type fakeEmployees map[string]*employee.Employee

func (f fakeEmployees) FindByID(_ context.Context, id string) (*employee.Employee, error) {
	emp, ok := f[id]
	if !ok {
		return nil, employee.ErrEmployeeNotFound
	}
	copied := *emp
	return &copied, nil
}

func (f fakeEmployees) FindByExternalSubject(_ context.Context, companyID, subject string) (*employee.Employee, error) {
	for _, emp := range f {
		if emp.CompanyID == companyID && emp.ExternalSubject != nil && *emp.ExternalSubject == subject {
			copied := *emp
			return &copied, nil
		}
	}
	return nil, employee.ErrEmployeeNotFound
}

type fixture struct {
	svc    *vacation.Service
	repo   *fakeVacationRepo
	shifts *shifttest.Memory
	cal    *calendar.Calendar
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cal, err := calendar.Load("America/New_York")
	if err != nil {
		t.Fatalf("load calendar: %v", err)
	}

	subject := "idp|boss"
	employees := fakeEmployees{
		"emp-1": {ID: "emp-1", CompanyID: "company-1", Role: identity.RoleEmployee, IsActive: true},
		"mgr-1": {ID: "mgr-1", CompanyID: "company-1", Role: identity.RoleManager, IsActive: true, ExternalSubject: &subject},
	}

	repo := newFakeVacationRepo()
	shifts := shifttest.NewMemory()
	clock := &stubClock{now: time.Date(2025, 5, 1, 15, 0, 0, 0, time.UTC)}
	svc := vacation.NewService(repo, shifts, employees, cal, clock, nil, nil)
	return &fixture{svc: svc, repo: repo, shifts: shifts, cal: cal}
}

var (
	employeeCaller = identity.Caller{CompanyID: "company-1", EmployeeID: "emp-1", Role: identity.RoleEmployee}
	managerCaller  = identity.Caller{CompanyID: "company-1", EmployeeID: "mgr-1", Role: identity.RoleManager}
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func intPtr(v int) *int {
	return &v
}

func (f *fixture) request(t *testing.T, in vacation.RequestVacationInput) *vacation.Request {
	t.Helper()

	req, err := f.svc.RequestVacation(context.Background(), in)
	if err != nil {
		t.Fatalf("RequestVacation returned error: %v", err)
	}
	return req
}

func TestService_ApproveVacation_ThreeDayRange(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	req := f.request(t, vacation.RequestVacationInput{Caller: employeeCaller, StartDate: date(2025, 6, 2), EndDate: date(2025, 6, 4)})

	result, err := f.svc.ApproveVacation(context.Background(), vacation.DecideInput{Caller: managerCaller, ID: req.ID})
	if err != nil {
		t.Fatalf("ApproveVacation returned error: %v", err)
	}

	if result.Request.Status != vacation.StatusApproved {
		t.Fatalf("expected APPROVED, got %s", result.Request.Status)
	}
	if result.Request.DecidedBy == nil || *result.Request.DecidedBy != "mgr-1" || result.Request.DecidedAt == nil {
		t.Fatalf("expected decision stamp, got %+v", result.Request)
	}

	all := f.shifts.All()
	if len(result.Shifts) != 3 || len(all) != 3 {
		t.Fatalf("expected 3 placeholder shifts, got %d (stored %d)", len(result.Shifts), len(all))
	}
	for i, s := range all {
		day := date(2025, 6, 2+i)
		if !s.IsVacation() || s.Status != shift.StatusPlanned {
			t.Fatalf("shift %d is not a vacation placeholder: %+v", i, s)
		}
		if s.VacationRequestID == nil || *s.VacationRequestID != req.ID {
			t.Fatalf("shift %d not linked to request", i)
		}
		if !s.StartAt.Equal(f.cal.DayStart(day)) || !s.EndAt.Equal(f.cal.DayEnd(day)) {
			t.Fatalf("shift %d expected full day %s, got %s - %s", i, day.Format(calendar.DateLayout), s.StartAt, s.EndAt)
		}
	}
}

func TestService_ApproveVacation_PartialSingleDay(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	req := f.request(t, vacation.RequestVacationInput{
		Caller:             employeeCaller,
		StartDate:          date(2025, 6, 2),
		EndDate:            date(2025, 6, 2),
		PartialStartMinute: intPtr(13 * 60),
		PartialEndMinute:   intPtr(17 * 60),
	})

	result, err := f.svc.ApproveVacation(context.Background(), vacation.DecideInput{Caller: managerCaller, ID: req.ID})
	if err != nil {
		t.Fatalf("ApproveVacation returned error: %v", err)
	}
	if len(result.Shifts) != 1 {
		t.Fatalf("expected 1 shift, got %d", len(result.Shifts))
	}

	got := result.Shifts[0]
	if !got.StartAt.Equal(f.cal.At(date(2025, 6, 2), 13*60)) || !got.EndAt.Equal(f.cal.At(date(2025, 6, 2), 17*60)) {
		t.Fatalf("expected explicit window, got %s - %s", got.StartAt, got.EndAt)
	}
}

func TestService_ApproveVacation_ConflictLeavesStateUnchanged(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	req := f.request(t, vacation.RequestVacationInput{Caller: employeeCaller, StartDate: date(2025, 6, 2), EndDate: date(2025, 6, 4)})

	work := f.shifts.Seed(&shift.Shift{
		CompanyID:  "company-1",
		EmployeeID: "emp-1",
		StartAt:    f.cal.At(date(2025, 6, 3), 9*60),
		EndAt:      f.cal.At(date(2025, 6, 3), 17*60),
		Status:     shift.StatusPlanned,
	})

	_, err := f.svc.ApproveVacation(context.Background(), vacation.DecideInput{Caller: managerCaller, ID: req.ID})
	if !errors.Is(err, vacation.ErrShiftConflict) || !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected shift conflict, got %v", err)
	}

	stored, _ := f.repo.FindByID(context.Background(), req.ID)
	if stored.Status != vacation.StatusPending || stored.DecidedAt != nil {
		t.Fatalf("request must stay pending, got %+v", stored)
	}
	all := f.shifts.All()
	if len(all) != 1 || all[0].ID != work[0].ID {
		t.Fatalf("no shifts must be created, got %d", len(all))
	}
}

func TestService_ApproveVacation_IgnoresCancelledAndOutsideShifts(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	req := f.request(t, vacation.RequestVacationInput{Caller: employeeCaller, StartDate: date(2025, 6, 2), EndDate: date(2025, 6, 2)})

	f.shifts.Seed(
		&shift.Shift{CompanyID: "company-1", EmployeeID: "emp-1", StartAt: f.cal.At(date(2025, 6, 2), 9*60), EndAt: f.cal.At(date(2025, 6, 2), 17*60), Status: shift.StatusCancelled},
		// 日の開始ちょうどに終わるシフト
		&shift.Shift{CompanyID: "company-1", EmployeeID: "emp-1", StartAt: f.cal.At(date(2025, 6, 1), 18*60), EndAt: f.cal.DayStart(date(2025, 6, 2)), Status: shift.StatusPlanned},
	)

	if _, err := f.svc.ApproveVacation(context.Background(), vacation.DecideInput{Caller: managerCaller, ID: req.ID}); err != nil {
		t.Fatalf("ApproveVacation returned error: %v", err)
	}
}

func TestService_ApproveVacation_TransitionGuard(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	req := f.request(t, vacation.RequestVacationInput{Caller: employeeCaller, StartDate: date(2025, 6, 2), EndDate: date(2025, 6, 2)})

	if _, err := f.svc.ApproveVacation(context.Background(), vacation.DecideInput{Caller: managerCaller, ID: req.ID}); err != nil {
		t.Fatalf("first approval failed: %v", err)
	}

	_, err := f.svc.ApproveVacation(context.Background(), vacation.DecideInput{Caller: managerCaller, ID: req.ID})
	var transitionErr *vacation.TransitionError
	if !errors.As(err, &transitionErr) {
		t.Fatalf("expected TransitionError, got %v", err)
	}
	if transitionErr.From != vacation.StatusApproved || transitionErr.To != vacation.StatusApproved {
		t.Fatalf("unexpected transition error: %+v", transitionErr)
	}
	if !errors.Is(err, vacation.ErrInvalidTransition) || !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("transition error must be a conflict, got %v", err)
	}
	if len(f.shifts.All()) != 1 {
		t.Fatalf("second approval must not create shifts")
	}
}

func TestService_ApproveVacation_Authorization(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	req := f.request(t, vacation.RequestVacationInput{Caller: employeeCaller, StartDate: date(2025, 6, 2), EndDate: date(2025, 6, 2)})

	if _, err := f.svc.ApproveVacation(context.Background(), vacation.DecideInput{Caller: employeeCaller, ID: req.ID}); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected forbidden for employee, got %v", err)
	}

	outsider := identity.Caller{CompanyID: "company-2", EmployeeID: "mgr-9", Role: identity.RoleManager}
	if _, err := f.svc.ApproveVacation(context.Background(), vacation.DecideInput{Caller: outsider, ID: req.ID}); !errors.Is(err, identity.ErrOtherCompany) {
		t.Fatalf("expected other company, got %v", err)
	}

	if _, err := f.svc.ApproveVacation(context.Background(), vacation.DecideInput{ID: req.ID}); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	if _, err := f.svc.ApproveVacation(context.Background(), vacation.DecideInput{Caller: managerCaller, ID: "missing"}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestService_ApproveVacation_DeciderFromExternalSubject(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	first := f.request(t, vacation.RequestVacationInput{Caller: employeeCaller, StartDate: date(2025, 6, 2), EndDate: date(2025, 6, 2)})
	second := f.request(t, vacation.RequestVacationInput{Caller: employeeCaller, StartDate: date(2025, 6, 9), EndDate: date(2025, 6, 9)})

	linked := identity.Caller{CompanyID: "company-1", Subject: "idp|boss", Role: identity.RoleAdmin}
	result, err := f.svc.ApproveVacation(context.Background(), vacation.DecideInput{Caller: linked, ID: first.ID})
	if err != nil {
		t.Fatalf("ApproveVacation returned error: %v", err)
	}
	if result.Request.DecidedBy == nil || *result.Request.DecidedBy != "mgr-1" {
		t.Fatalf("expected decider mgr-1, got %v", result.Request.DecidedBy)
	}

	unlinked := identity.Caller{CompanyID: "company-1", Subject: "idp|unknown", Role: identity.RoleAdmin}
	result, err = f.svc.ApproveVacation(context.Background(), vacation.DecideInput{Caller: unlinked, ID: second.ID})
	if err != nil {
		t.Fatalf("ApproveVacation returned error: %v", err)
	}
	if result.Request.DecidedBy != nil {
		t.Fatalf("expected nil decider, got %v", *result.Request.DecidedBy)
	}
}

func TestService_CancelVacation_RemovesPlaceholders(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	req := f.request(t, vacation.RequestVacationInput{Caller: employeeCaller, StartDate: date(2025, 6, 2), EndDate: date(2025, 6, 4)})
	other := f.shifts.Seed(&shift.Shift{
		CompanyID:  "company-1",
		EmployeeID: "emp-1",
		StartAt:    f.cal.At(date(2025, 6, 10), 9*60),
		EndAt:      f.cal.At(date(2025, 6, 10), 17*60),
	})

	if _, err := f.svc.ApproveVacation(context.Background(), vacation.DecideInput{Caller: managerCaller, ID: req.ID}); err != nil {
		t.Fatalf("ApproveVacation returned error: %v", err)
	}

	before := len(f.shifts.All())
	if _, err := f.svc.CancelVacation(context.Background(), vacation.DecideInput{Caller: employeeCaller, ID: req.ID}); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected forbidden for the requesting employee, got %v", err)
	}
	if got := len(f.shifts.All()); got != before {
		t.Fatalf("placeholders must survive a refused cancel, got %d shifts", got)
	}

	cancelled, err := f.svc.CancelVacation(context.Background(), vacation.DecideInput{Caller: managerCaller, ID: req.ID})
	if err != nil {
		t.Fatalf("CancelVacation returned error: %v", err)
	}
	if cancelled.Status != vacation.StatusCancelled {
		t.Fatalf("expected CANCELLED, got %s", cancelled.Status)
	}

	all := f.shifts.All()
	if len(all) != 1 || all[0].ID != other[0].ID {
		t.Fatalf("expected only the unrelated shift to remain, got %d shifts", len(all))
	}

	_, err = f.svc.CancelVacation(context.Background(), vacation.DecideInput{Caller: managerCaller, ID: req.ID})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict on re-cancel, got %v", err)
	}
}

func TestService_RejectVacation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	req := f.request(t, vacation.RequestVacationInput{Caller: employeeCaller, StartDate: date(2025, 6, 2), EndDate: date(2025, 6, 2)})

	if _, err := f.svc.CancelVacation(context.Background(), vacation.DecideInput{Caller: managerCaller, ID: req.ID}); !errors.Is(err, vacation.ErrInvalidTransition) {
		t.Fatalf("pending request cannot be cancelled, got %v", err)
	}

	rejected, err := f.svc.RejectVacation(context.Background(), vacation.DecideInput{Caller: managerCaller, ID: req.ID})
	if err != nil {
		t.Fatalf("RejectVacation returned error: %v", err)
	}
	if rejected.Status != vacation.StatusRejected {
		t.Fatalf("expected REJECTED, got %s", rejected.Status)
	}

	if _, err := f.svc.ApproveVacation(context.Background(), vacation.DecideInput{Caller: managerCaller, ID: req.ID}); !errors.Is(err, vacation.ErrInvalidTransition) {
		t.Fatalf("rejected request cannot be approved, got %v", err)
	}
}

func TestService_RequestVacation_Validation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.request(t, vacation.RequestVacationInput{Caller: employeeCaller, StartDate: date(2025, 6, 2), EndDate: date(2025, 6, 4)})

	cases := []struct {
		name string
		in   vacation.RequestVacationInput
		want error
	}{
		{"inverted range", vacation.RequestVacationInput{Caller: employeeCaller, StartDate: date(2025, 7, 2), EndDate: date(2025, 7, 1)}, vacation.ErrInvalidDateRange},
		{"partial on multi day", vacation.RequestVacationInput{Caller: employeeCaller, StartDate: date(2025, 7, 1), EndDate: date(2025, 7, 2), PartialStartMinute: intPtr(60), PartialEndMinute: intPtr(120)}, vacation.ErrInvalidPartialWindow},
		{"partial inverted", vacation.RequestVacationInput{Caller: employeeCaller, StartDate: date(2025, 7, 1), EndDate: date(2025, 7, 1), PartialStartMinute: intPtr(120), PartialEndMinute: intPtr(60)}, vacation.ErrInvalidPartialWindow},
		{"partial missing end", vacation.RequestVacationInput{Caller: employeeCaller, StartDate: date(2025, 7, 1), EndDate: date(2025, 7, 1), PartialStartMinute: intPtr(120)}, vacation.ErrInvalidPartialWindow},
		{"overlapping pending", vacation.RequestVacationInput{Caller: employeeCaller, StartDate: date(2025, 6, 4), EndDate: date(2025, 6, 6)}, vacation.ErrOverlappingRequest},
		{"for someone else", vacation.RequestVacationInput{Caller: employeeCaller, EmployeeID: "mgr-1", StartDate: date(2025, 7, 1), EndDate: date(2025, 7, 1)}, apperr.ErrForbidden},
	}

	for _, tc := range cases {
		if _, err := f.svc.RequestVacation(context.Background(), tc.in); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestService_ListVacations_ScopesEmployees(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.request(t, vacation.RequestVacationInput{Caller: employeeCaller, StartDate: date(2025, 6, 2), EndDate: date(2025, 6, 2)})
	f.request(t, vacation.RequestVacationInput{Caller: managerCaller, StartDate: date(2025, 6, 2), EndDate: date(2025, 6, 2)})

	own, err := f.svc.ListVacations(context.Background(), vacation.ListVacationsInput{Caller: employeeCaller})
	if err != nil {
		t.Fatalf("ListVacations returned error: %v", err)
	}
	if len(own.Requests) != 1 || own.Requests[0].EmployeeID != "emp-1" {
		t.Fatalf("employee must see only own requests, got %+v", own.Requests)
	}

	other := "mgr-1"
	if _, err := f.svc.ListVacations(context.Background(), vacation.ListVacationsInput{Caller: employeeCaller, EmployeeID: &other}); !errors.Is(err, identity.ErrNotPermitted) {
		t.Fatalf("expected ErrNotPermitted, got %v", err)
	}

	everyone, err := f.svc.ListVacations(context.Background(), vacation.ListVacationsInput{Caller: managerCaller})
	if err != nil {
		t.Fatalf("ListVacations returned error: %v", err)
	}
	if len(everyone.Requests) != 2 {
		t.Fatalf("manager must see all requests, got %d", len(everyone.Requests))
	}

	bogus := vacation.Status("DONE")
	if _, err := f.svc.ListVacations(context.Background(), vacation.ListVacationsInput{Caller: managerCaller, Status: &bogus}); !errors.Is(err, vacation.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}
