package shift_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ogurasousui/shiftboard/internal/core/apperr"
	"github.com/ogurasousui/shiftboard/internal/core/calendar"
	"github.com/ogurasousui/shiftboard/internal/core/employee"
	"github.com/ogurasousui/shiftboard/internal/core/identity"
	"github.com/ogurasousui/shiftboard/internal/core/shift"
	"github.com/ogurasousui/shiftboard/internal/core/shift/shifttest"
)

type stubClock struct {
	now time.Time
}

func (s *stubClock) Now() time.Time {
	return s.now
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

var managerCaller = identity.Caller{CompanyID: "company-1", EmployeeID: "mgr-1", Role: identity.RoleManager}

func newTestService(t *testing.T) (*shift.Service, *shifttest.Memory, *calendar.Calendar) {
	t.Helper()

	cal, err := calendar.Load("America/Chicago")
	if err != nil {
		t.Fatalf("load calendar: %v", err)
	}

	repo := shifttest.NewMemory()
	employees := fakeEmployees{
		"emp-1": {ID: "emp-1", CompanyID: "company-1", IsActive: true},
		"emp-2": {ID: "emp-2", CompanyID: "company-1", IsActive: false},
		"emp-x": {ID: "emp-x", CompanyID: "company-2", IsActive: true},
	}
	clock := &stubClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	return shift.NewService(repo, employees, cal, clock, nil, nil), repo, cal
}

func TestService_CreateShift_DetectsOverlap(t *testing.T) {
	t.Parallel()

	svc, repo, cal := newTestService(t)
	monday := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	first, err := svc.CreateShift(context.Background(), shift.CreateShiftInput{
		Caller:     managerCaller,
		EmployeeID: "emp-1",
		StartAt:    cal.At(monday, 9*60),
		EndAt:      cal.At(monday, 17*60),
	})
	if err != nil {
		t.Fatalf("CreateShift returned error: %v", err)
	}
	if first.Status != shift.StatusPlanned || first.Source != shift.SourceManual {
		t.Fatalf("unexpected shift: %+v", first)
	}

	_, err = svc.CreateShift(context.Background(), shift.CreateShiftInput{
		Caller:     managerCaller,
		EmployeeID: "emp-1",
		StartAt:    cal.At(monday, 16*60),
		EndAt:      cal.At(monday, 20*60),
	})
	if !errors.Is(err, shift.ErrShiftConflict) || !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	touching, err := svc.CreateShift(context.Background(), shift.CreateShiftInput{
		Caller:     managerCaller,
		EmployeeID: "emp-1",
		StartAt:    cal.At(monday, 17*60),
		EndAt:      cal.At(monday, 20*60),
	})
	if err != nil {
		t.Fatalf("touching shift should not conflict: %v", err)
	}
	if touching == nil || len(repo.All()) != 2 {
		t.Fatalf("expected 2 shifts, got %d", len(repo.All()))
	}
}

func TestService_CreateShift_Validation(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	start := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	vac := "vac"

	cases := []struct {
		name string
		in   shift.CreateShiftInput
		want error
	}{
		{"plain employee", shift.CreateShiftInput{Caller: identity.Caller{CompanyID: "company-1", EmployeeID: "emp-1", Role: identity.RoleEmployee}, EmployeeID: "emp-1", StartAt: start, EndAt: start.Add(time.Hour)}, apperr.ErrForbidden},
		{"inverted interval", shift.CreateShiftInput{Caller: managerCaller, EmployeeID: "emp-1", StartAt: start, EndAt: start}, shift.ErrInvalidInterval},
		{"vacation note", shift.CreateShiftInput{Caller: managerCaller, EmployeeID: "emp-1", StartAt: start, EndAt: start.Add(time.Hour), Note: &vac}, shift.ErrVacationShift},
		{"inactive employee", shift.CreateShiftInput{Caller: managerCaller, EmployeeID: "emp-2", StartAt: start, EndAt: start.Add(time.Hour)}, shift.ErrEmployeeInactive},
		{"other company", shift.CreateShiftInput{Caller: managerCaller, EmployeeID: "emp-x", StartAt: start, EndAt: start.Add(time.Hour)}, identity.ErrOtherCompany},
	}

	for _, tc := range cases {
		if _, err := svc.CreateShift(context.Background(), tc.in); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestService_CancelShift(t *testing.T) {
	t.Parallel()

	svc, repo, _ := newTestService(t)
	start := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	vacNote := shift.VacationNote
	seeded := repo.Seed(
		&shift.Shift{CompanyID: "company-1", EmployeeID: "emp-1", StartAt: start, EndAt: start.Add(4 * time.Hour)},
		&shift.Shift{CompanyID: "company-1", EmployeeID: "emp-1", StartAt: start.Add(24 * time.Hour), EndAt: start.Add(48 * time.Hour), Note: &vacNote},
	)

	cancelled, err := svc.CancelShift(context.Background(), shift.ChangeStatusInput{Caller: managerCaller, ID: seeded[0].ID})
	if err != nil {
		t.Fatalf("CancelShift returned error: %v", err)
	}
	if cancelled.Status != shift.StatusCancelled {
		t.Fatalf("expected CANCELLED, got %s", cancelled.Status)
	}

	if _, err := svc.CompleteShift(context.Background(), shift.ChangeStatusInput{Caller: managerCaller, ID: seeded[0].ID}); !errors.Is(err, shift.ErrNotPlanned) {
		t.Fatalf("expected ErrNotPlanned, got %v", err)
	}
	if _, err := svc.CancelShift(context.Background(), shift.ChangeStatusInput{Caller: managerCaller, ID: seeded[1].ID}); !errors.Is(err, shift.ErrVacationShift) {
		t.Fatalf("expected ErrVacationShift, got %v", err)
	}
	if _, err := svc.CancelShift(context.Background(), shift.ChangeStatusInput{Caller: managerCaller, ID: "missing"}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestService_ListWeek_UsesBusinessZone(t *testing.T) {
	t.Parallel()

	svc, repo, cal := newTestService(t)
	sunday := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)
	nextSunday := sunday.AddDate(0, 0, 7)

	repo.Seed(
		// シカゴでは前週の土曜夜、UTC では日曜日。
		&shift.Shift{CompanyID: "company-1", EmployeeID: "emp-1", StartAt: cal.At(sunday.AddDate(0, 0, -1), 20*60), EndAt: cal.At(sunday.AddDate(0, 0, -1), 23*60)},
		&shift.Shift{CompanyID: "company-1", EmployeeID: "emp-1", StartAt: cal.At(sunday, 9*60), EndAt: cal.At(sunday, 12*60)},
		&shift.Shift{CompanyID: "company-1", EmployeeID: "emp-1", StartAt: cal.At(nextSunday.AddDate(0, 0, -1), 9*60), EndAt: cal.At(nextSunday.AddDate(0, 0, -1), 12*60), Status: shift.StatusCancelled},
		&shift.Shift{CompanyID: "company-2", EmployeeID: "emp-x", StartAt: cal.At(sunday, 9*60), EndAt: cal.At(sunday, 12*60)},
	)

	view, err := svc.ListWeek(context.Background(), shift.ListWeekInput{
		Caller:    managerCaller,
		WeekStart: time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("ListWeek returned error: %v", err)
	}
	if !view.WeekStart.Equal(sunday) {
		t.Fatalf("expected week start %s, got %s", sunday, view.WeekStart)
	}
	if len(view.Shifts) != 1 {
		t.Fatalf("expected 1 shift in week, got %d", len(view.Shifts))
	}

	view, err = svc.ListWeek(context.Background(), shift.ListWeekInput{Caller: managerCaller, WeekStart: sunday, IncludeCancelled: true})
	if err != nil {
		t.Fatalf("ListWeek returned error: %v", err)
	}
	if len(view.Shifts) != 2 {
		t.Fatalf("expected 2 shifts including cancelled, got %d", len(view.Shifts))
	}
}

func TestFindConflicts(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	vac := shift.VacationNote
	existing := []*shift.Shift{
		{ID: "a", EmployeeID: "emp-1", StartAt: base, EndAt: base.Add(8 * time.Hour), Status: shift.StatusPlanned},
		{ID: "b", EmployeeID: "emp-1", StartAt: base, EndAt: base.Add(8 * time.Hour), Status: shift.StatusCancelled},
		{ID: "c", EmployeeID: "emp-2", StartAt: base, EndAt: base.Add(8 * time.Hour), Status: shift.StatusPlanned},
		{ID: "d", EmployeeID: "emp-1", StartAt: base.Add(-24 * time.Hour), EndAt: base.Add(-16 * time.Hour), Status: shift.StatusPlanned, Note: &vac},
	}

	got := shift.FindConflicts(existing, "emp-1", base.Add(7*time.Hour), base.Add(10*time.Hour), "")
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("expected conflict with a, got %+v", got)
	}

	if got := shift.FindConflicts(existing, "emp-1", base.Add(8*time.Hour), base.Add(10*time.Hour), ""); len(got) != 0 {
		t.Fatalf("touching intervals must not conflict, got %+v", got)
	}
	if got := shift.FindConflicts(existing, "emp-1", base, base.Add(time.Hour), "a"); len(got) != 0 {
		t.Fatalf("ignored shift must not conflict, got %+v", got)
	}

	busy := shift.BusyEmployees(existing, base.Add(-20*time.Hour), base.Add(time.Hour))
	if len(busy) != 2 {
		t.Fatalf("expected 2 busy employees, got %v", busy)
	}
}

func TestShift_BusyExcludesVacation(t *testing.T) {
	t.Parallel()

	vac := shift.VacationNote
	placeholder := &shift.Shift{Status: shift.StatusPlanned, Note: &vac}
	work := &shift.Shift{Status: shift.StatusPlanned}

	if placeholder.Busy() || !placeholder.IsVacation() {
		t.Fatalf("vacation placeholder must not be busy")
	}
	if !work.Busy() {
		t.Fatalf("planned work shift must be busy")
	}
}
