package vacation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/ogurasousui/shiftboard/internal/core/calendar"
	"github.com/ogurasousui/shiftboard/internal/core/employee"
	"github.com/ogurasousui/shiftboard/internal/core/identity"
	"github.com/ogurasousui/shiftboard/internal/core/shift"
	"github.com/ogurasousui/shiftboard/internal/core/txn"
)

const (
	defaultListPageSize = 50
	maxListPageSize     = 200
)

// Service は休暇申請と承認のユースケースを提供します。
type Service struct {
	repo      Repository
	shifts    shift.Repository
	employees EmployeeFinder
	cal       *calendar.Calendar
	clock     calendar.Clock
	tx        txn.Manager
	logger    *slog.Logger
}

// UseCase は休暇ユースケースの公開インターフェースです。
type UseCase interface {
	RequestVacation(ctx context.Context, in RequestVacationInput) (*Request, error)
	ApproveVacation(ctx context.Context, in DecideInput) (*ApproveResult, error)
	RejectVacation(ctx context.Context, in DecideInput) (*Request, error)
	CancelVacation(ctx context.Context, in DecideInput) (*Request, error)
	ListVacations(ctx context.Context, in ListVacationsInput) (*ListVacationsResult, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, shifts shift.Repository, employees EmployeeFinder, cal *calendar.Calendar, clock calendar.Clock, tx txn.Manager, logger *slog.Logger) *Service {
	if cal == nil {
		cal = calendar.New(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		shifts:    shifts,
		employees: employees,
		cal:       cal,
		clock:     calendar.OrSystem(clock),
		tx:        txn.OrNoop(tx),
		logger:    logger,
	}
}

// RequestVacationInput は休暇申請時の入力です。EmployeeID が空の場合は呼び出し元自身の申請です。
type RequestVacationInput struct {
	Caller             identity.Caller
	EmployeeID         string
	StartDate          time.Time
	EndDate            time.Time
	PartialStartMinute *int
	PartialEndMinute   *int
	Reason             *string
}

// DecideInput は承認・却下・取消時の入力です。
type DecideInput struct {
	Caller identity.Caller
	ID     string
}

// ApproveResult は承認結果です。Shifts は生成された休暇プレースホルダです。
type ApproveResult struct {
	Request *Request
	Shifts  []*shift.Shift
}

// ListVacationsInput は一覧取得時の入力です。
type ListVacationsInput struct {
	Caller     identity.Caller
	EmployeeID *string
	Status     *Status
	PageSize   int
	PageToken  string
}

// ListVacationsResult は一覧取得結果です。
type ListVacationsResult struct {
	Requests      []*Request
	NextPageToken string
}

// RequestVacation は PENDING の休暇申請を作成します。
// 同じ社員の PENDING または APPROVED の申請と日付が重なる場合は失敗します。
func (s *Service) RequestVacation(ctx context.Context, in RequestVacationInput) (*Request, error) {
	if err := in.Caller.Require(); err != nil {
		return nil, err
	}

	employeeID := strings.TrimSpace(in.EmployeeID)
	if employeeID == "" {
		employeeID = in.Caller.EmployeeID
	}
	if employeeID == "" {
		return nil, ErrInvalidEmployeeID
	}
	if !in.Caller.CanActFor(employeeID) {
		return nil, identity.ErrNotPermitted
	}

	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return nil, ErrInvalidDateRange
	}
	startDate := calendar.NormalizeDate(in.StartDate)
	endDate := calendar.NormalizeDate(in.EndDate)
	if endDate.Before(startDate) {
		return nil, ErrInvalidDateRange
	}

	if err := validatePartial(startDate, endDate, in.PartialStartMinute, in.PartialEndMinute); err != nil {
		return nil, err
	}

	var created *Request
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		emp, err := s.employees.FindByID(txCtx, employeeID)
		if err != nil {
			return err
		}
		if err := in.Caller.RequireCompany(emp.CompanyID); err != nil {
			return err
		}

		overlapping, err := s.repo.ListOverlapping(txCtx, emp.ID, startDate, endDate, []Status{StatusPending, StatusApproved})
		if err != nil {
			return err
		}
		if len(overlapping) > 0 {
			return fmt.Errorf("%w (request %s)", ErrOverlappingRequest, overlapping[0].ID)
		}

		now := s.clock.Now()
		result, err := s.repo.Create(txCtx, &Request{
			CompanyID:          emp.CompanyID,
			EmployeeID:         emp.ID,
			StartDate:          startDate,
			EndDate:            endDate,
			PartialStartMinute: in.PartialStartMinute,
			PartialEndMinute:   in.PartialEndMinute,
			Reason:             normalizeOptional(in.Reason),
			Status:             StatusPending,
			CreatedAt:          now,
			UpdatedAt:          now,
		})
		if err != nil {
			return err
		}
		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	s.logger.Info("vacation requested",
		slog.String("request_id", created.ID),
		slog.String("employee_id", created.EmployeeID),
	)
	return created, nil
}

// ApproveVacation は PENDING の申請を APPROVED にし、休暇プレースホルダのシフトを生成します。
// 期間内に休暇以外の PLANNED シフトがある場合は何も変更せずに失敗します。
func (s *Service) ApproveVacation(ctx context.Context, in DecideInput) (*ApproveResult, error) {
	if err := in.Caller.RequireManager(); err != nil {
		return nil, err
	}
	id, err := normalizeID(in.ID)
	if err != nil {
		return nil, err
	}

	result := &ApproveResult{}
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		req, err := s.lockForTransition(txCtx, in.Caller, id, StatusApproved)
		if err != nil {
			return err
		}

		from := s.cal.DayStart(req.StartDate)
		to := s.cal.DayEnd(req.EndDate)

		planned, err := s.shifts.ListRange(txCtx, shift.RangeFilter{
			CompanyID:   req.CompanyID,
			From:        from,
			To:          to,
			EmployeeIDs: []string{req.EmployeeID},
			Statuses:    []shift.Status{shift.StatusPlanned},
		})
		if err != nil {
			return err
		}
		for _, existing := range planned {
			if !existing.IsVacation() {
				return fmt.Errorf("%w (shift %s)", ErrShiftConflict, existing.ID)
			}
		}

		if _, err := s.shifts.DeleteByVacation(txCtx, req.ID); err != nil {
			return err
		}

		now := s.clock.Now()
		created, err := s.shifts.CreateBatch(txCtx, s.placeholders(req, now))
		if err != nil {
			return err
		}

		decider, err := s.resolveDecider(txCtx, in.Caller)
		if err != nil {
			return err
		}

		updated, err := s.repo.UpdateDecision(txCtx, req.ID, Decision{Status: StatusApproved, DecidedAt: now, DecidedBy: decider})
		if err != nil {
			return err
		}

		result.Request = updated
		result.Shifts = created
		return nil
	}); err != nil {
		return nil, err
	}

	s.logger.Info("vacation approved",
		slog.String("request_id", result.Request.ID),
		slog.Int("placeholder_shifts", len(result.Shifts)),
	)
	return result, nil
}

// RejectVacation は PENDING の申請を REJECTED にします。
func (s *Service) RejectVacation(ctx context.Context, in DecideInput) (*Request, error) {
	if err := in.Caller.RequireManager(); err != nil {
		return nil, err
	}
	return s.close(ctx, in, StatusRejected)
}

// CancelVacation は APPROVED の申請を CANCELLED にし、休暇プレースホルダを削除します。
func (s *Service) CancelVacation(ctx context.Context, in DecideInput) (*Request, error) {
	if err := in.Caller.RequireManager(); err != nil {
		return nil, err
	}
	return s.close(ctx, in, StatusCancelled)
}

// close はプレースホルダを削除して申請を終了状態に遷移させます。
func (s *Service) close(ctx context.Context, in DecideInput, to Status) (*Request, error) {
	id, err := normalizeID(in.ID)
	if err != nil {
		return nil, err
	}

	var (
		updated *Request
		removed int
	)
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		req, err := s.lockForTransition(txCtx, in.Caller, id, to)
		if err != nil {
			return err
		}

		removed, err = s.shifts.DeleteByVacation(txCtx, req.ID)
		if err != nil {
			return err
		}

		decider, err := s.resolveDecider(txCtx, in.Caller)
		if err != nil {
			return err
		}

		result, err := s.repo.UpdateDecision(txCtx, req.ID, Decision{Status: to, DecidedAt: s.clock.Now(), DecidedBy: decider})
		if err != nil {
			return err
		}
		updated = result
		return nil
	}); err != nil {
		return nil, err
	}

	s.logger.Info("vacation closed",
		slog.String("request_id", updated.ID),
		slog.String("status", string(updated.Status)),
		slog.Int("removed_shifts", removed),
	)
	return updated, nil
}

// ListVacations は申請一覧を返します。employee 権限では自身の申請のみ参照できます。
func (s *Service) ListVacations(ctx context.Context, in ListVacationsInput) (*ListVacationsResult, error) {
	if err := in.Caller.Require(); err != nil {
		return nil, err
	}

	limit, err := normalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}
	offset, err := parsePageToken(in.PageToken)
	if err != nil {
		return nil, err
	}
	if in.Status != nil && !in.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	employeeID := normalizeOptional(in.EmployeeID)
	if !in.Caller.Role.Manages() {
		if in.Caller.EmployeeID == "" {
			return nil, identity.ErrNotPermitted
		}
		if employeeID != nil && *employeeID != in.Caller.EmployeeID {
			return nil, identity.ErrNotPermitted
		}
		own := in.Caller.EmployeeID
		employeeID = &own
	}

	var (
		requests  []*Request
		nextToken string
	)
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, token, err := s.repo.List(txCtx, ListFilter{
			CompanyID:  in.Caller.CompanyID,
			EmployeeID: employeeID,
			Status:     in.Status,
			Limit:      limit,
			Offset:     offset,
		})
		if err != nil {
			return err
		}
		requests = result
		nextToken = token
		return nil
	}); err != nil {
		return nil, err
	}

	return &ListVacationsResult{Requests: requests, NextPageToken: nextToken}, nil
}

// lockForTransition は申請を行ロック付きで再取得し、会社スコープと状態遷移を検証します。
func (s *Service) lockForTransition(ctx context.Context, caller identity.Caller, id string, to Status) (*Request, error) {
	req, err := s.repo.FindByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := caller.RequireCompany(req.CompanyID); err != nil {
		return nil, err
	}
	if !caller.CanActFor(req.EmployeeID) {
		return nil, identity.ErrNotPermitted
	}
	if !CanTransition(req.Status, to) {
		return nil, &TransitionError{From: req.Status, To: to}
	}
	return req, nil
}

// placeholders は申請期間の各暦日に休暇プレースホルダを作成します。
func (s *Service) placeholders(req *Request, now time.Time) []*shift.Shift {
	days := calendar.EachDay(req.StartDate, req.EndDate)
	result := make([]*shift.Shift, 0, len(days))
	for _, day := range days {
		start, end := s.cal.DayStart(day), s.cal.DayEnd(day)
		if req.HasPartialWindow() {
			start = s.cal.At(day, *req.PartialStartMinute)
			end = s.cal.At(day, *req.PartialEndMinute)
		}

		note := shift.VacationNote
		requestID := req.ID
		result = append(result, &shift.Shift{
			CompanyID:         req.CompanyID,
			EmployeeID:        req.EmployeeID,
			StartAt:           start.UTC(),
			EndAt:             end.UTC(),
			Status:            shift.StatusPlanned,
			Note:              &note,
			Source:            shift.SourceManual,
			VacationRequestID: &requestID,
			CreatedAt:         now,
			UpdatedAt:         now,
		})
	}
	return result
}

// resolveDecider は呼び出し元を社員 ID に解決します。解決できない場合は nil を返します。
func (s *Service) resolveDecider(ctx context.Context, caller identity.Caller) (*string, error) {
	if caller.EmployeeID != "" {
		id := caller.EmployeeID
		return &id, nil
	}
	if caller.Subject == "" {
		return nil, nil
	}

	emp, err := s.employees.FindByExternalSubject(ctx, caller.CompanyID, caller.Subject)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &emp.ID, nil
}

func validatePartial(startDate, endDate time.Time, startMinute, endMinute *int) error {
	if startMinute == nil && endMinute == nil {
		return nil
	}
	if startMinute == nil || endMinute == nil {
		return ErrInvalidPartialWindow
	}
	if !startDate.Equal(endDate) {
		return ErrInvalidPartialWindow
	}
	if !calendar.ValidTimeWindow(*startMinute, *endMinute) {
		return ErrInvalidPartialWindow
	}
	return nil
}

func normalizeID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", fmt.Errorf("id: %w", ErrInvalidID)
	}
	return id, nil
}

func normalizeOptional(raw *string) *string {
	if raw == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func normalizePageSize(pageSize int) (int, error) {
	if pageSize <= 0 {
		return defaultListPageSize, nil
	}
	if pageSize > maxListPageSize {
		return 0, ErrInvalidPageSize
	}
	return pageSize, nil
}

func parsePageToken(token string) (int, error) {
	if strings.TrimSpace(token) == "" {
		return 0, nil
	}

	offset, err := strconv.Atoi(token)
	if err != nil || offset < 0 {
		return 0, ErrInvalidPageToken
	}

	return offset, nil
}
