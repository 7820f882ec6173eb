package swap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ogurasousui/shiftboard/internal/core/calendar"
	"github.com/ogurasousui/shiftboard/internal/core/identity"
	"github.com/ogurasousui/shiftboard/internal/core/shift"
	"github.com/ogurasousui/shiftboard/internal/core/txn"
)

// Service はシフト交代依頼のユースケースを提供します。
type Service struct {
	repo       Repository
	shifts     shift.Repository
	candidates CandidateResolver
	clock      calendar.Clock
	tx         txn.Manager
	logger     *slog.Logger
}

// UseCase はシフト交代依頼ユースケースの公開インターフェースです。
type UseCase interface {
	CreateRequest(ctx context.Context, in CreateRequestInput) (*Request, error)
	AcceptRequest(ctx context.Context, in DecideInput) (*AcceptResult, error)
	RejectRequest(ctx context.Context, in DecideInput) (*Request, error)
	ListIncoming(ctx context.Context, in ListInput) ([]*Request, error)
	ListOutgoing(ctx context.Context, in ListInput) ([]*Request, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, shifts shift.Repository, candidates CandidateResolver, clock calendar.Clock, tx txn.Manager, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:       repo,
		shifts:     shifts,
		candidates: candidates,
		clock:      calendar.OrSystem(clock),
		tx:         txn.OrNoop(tx),
		logger:     logger,
	}
}

// CreateRequestInput は依頼作成時の入力です。
type CreateRequestInput struct {
	Caller      identity.Caller
	ShiftID     string
	CandidateID string
	Message     *string
}

// DecideInput は承諾・辞退時の入力です。
type DecideInput struct {
	Caller identity.Caller
	ID     string
}

// AcceptResult は承諾結果です。AutoRejected は同じシフトへの他の依頼を自動で辞退した件数です。
type AcceptResult struct {
	Request      *Request
	Shift        *shift.Shift
	AutoRejected int
}

// ListInput は一覧取得時の入力です。EmployeeID が空の場合は呼び出し元自身です。
type ListInput struct {
	Caller     identity.Caller
	EmployeeID string
	Status     *Status
}

// CreateRequest はシフト所有者から候補者への交代依頼を作成します。
// 候補者は交代候補の抽出結果に含まれている必要があります。
func (s *Service) CreateRequest(ctx context.Context, in CreateRequestInput) (*Request, error) {
	if err := in.Caller.RequireEmployee(); err != nil {
		return nil, err
	}
	shiftID := strings.TrimSpace(in.ShiftID)
	if shiftID == "" {
		return nil, ErrInvalidShiftID
	}
	candidateID := strings.TrimSpace(in.CandidateID)
	if candidateID == "" || candidateID == in.Caller.EmployeeID {
		return nil, ErrInvalidCandidateID
	}

	var created *Request
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		target, err := s.shifts.FindByIDForUpdate(txCtx, shiftID)
		if err != nil {
			return err
		}
		if err := in.Caller.RequireCompany(target.CompanyID); err != nil {
			return err
		}
		if target.EmployeeID != in.Caller.EmployeeID {
			return ErrNotShiftOwner
		}
		if target.Status != shift.StatusPlanned {
			return ErrShiftNotPlanned
		}
		if target.IsVacation() {
			return ErrVacationShift
		}

		now := s.clock.Now()
		if !target.StartAt.After(now) {
			return ErrShiftStarted
		}

		candidates, err := s.candidates.Resolve(txCtx, target)
		if err != nil {
			return err
		}
		eligible := false
		for _, c := range candidates {
			if c.EmployeeID == candidateID {
				eligible = true
				break
			}
		}
		if !eligible {
			return ErrNotEligible
		}

		result, err := s.repo.Create(txCtx, &Request{
			CompanyID:   target.CompanyID,
			ShiftID:     target.ID,
			RequesterID: target.EmployeeID,
			CandidateID: candidateID,
			Message:     normalizeOptional(in.Message),
			Status:      StatusPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			return err
		}
		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	s.logger.Info("shift change requested",
		slog.String("request_id", created.ID),
		slog.String("shift_id", created.ShiftID),
		slog.String("candidate_id", created.CandidateID),
	)
	return created, nil
}

// AcceptRequest は候補者が依頼を承諾し、シフトを候補者へ付け替えます。
// 同じシフトに対する他の PENDING 依頼は REJECTED になります。
func (s *Service) AcceptRequest(ctx context.Context, in DecideInput) (*AcceptResult, error) {
	if err := in.Caller.RequireEmployee(); err != nil {
		return nil, err
	}
	id, err := normalizeID(in.ID)
	if err != nil {
		return nil, err
	}

	result := &AcceptResult{}
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		req, err := s.lockPending(txCtx, in.Caller, id)
		if err != nil {
			return err
		}

		target, err := s.shifts.FindByIDForUpdate(txCtx, req.ShiftID)
		if err != nil {
			return err
		}
		if target.Status != shift.StatusPlanned {
			return ErrShiftNotPlanned
		}
		if target.EmployeeID != req.RequesterID {
			return ErrShiftReassigned
		}

		existing, err := s.shifts.ListRange(txCtx, shift.RangeFilter{
			CompanyID:   target.CompanyID,
			From:        target.StartAt,
			To:          target.EndAt,
			EmployeeIDs: []string{req.CandidateID},
			Statuses:    []shift.Status{shift.StatusPlanned},
			ExcludeID:   target.ID,
		})
		if err != nil {
			return err
		}
		if conflicts := shift.FindConflicts(existing, req.CandidateID, target.StartAt, target.EndAt, target.ID); len(conflicts) > 0 {
			return fmt.Errorf("%w (shift %s)", ErrCandidateBusy, conflicts[0].ID)
		}

		now := s.clock.Now()
		reassigned, err := s.shifts.Reassign(txCtx, target.ID, req.CandidateID, now)
		if err != nil {
			return err
		}

		accepted, err := s.repo.UpdateStatus(txCtx, req.ID, StatusAccepted, now)
		if err != nil {
			return err
		}

		rejected, err := s.repo.RejectPending(txCtx, target.ID, req.ID, now)
		if err != nil {
			return err
		}

		result.Request = accepted
		result.Shift = reassigned
		result.AutoRejected = rejected
		return nil
	}); err != nil {
		return nil, err
	}

	s.logger.Info("shift change accepted",
		slog.String("request_id", result.Request.ID),
		slog.String("shift_id", result.Shift.ID),
		slog.Int("auto_rejected", result.AutoRejected),
	)
	return result, nil
}

// RejectRequest は候補者が依頼を辞退します。
func (s *Service) RejectRequest(ctx context.Context, in DecideInput) (*Request, error) {
	if err := in.Caller.RequireEmployee(); err != nil {
		return nil, err
	}
	id, err := normalizeID(in.ID)
	if err != nil {
		return nil, err
	}

	var rejected *Request
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		req, err := s.lockPending(txCtx, in.Caller, id)
		if err != nil {
			return err
		}

		result, err := s.repo.UpdateStatus(txCtx, req.ID, StatusRejected, s.clock.Now())
		if err != nil {
			return err
		}
		rejected = result
		return nil
	}); err != nil {
		return nil, err
	}

	return rejected, nil
}

// ListIncoming は社員宛ての依頼を返します。
func (s *Service) ListIncoming(ctx context.Context, in ListInput) ([]*Request, error) {
	return s.list(ctx, in, func(filter *ListFilter, employeeID *string) { filter.CandidateID = employeeID })
}

// ListOutgoing は社員が作成した依頼を返します。
func (s *Service) ListOutgoing(ctx context.Context, in ListInput) ([]*Request, error) {
	return s.list(ctx, in, func(filter *ListFilter, employeeID *string) { filter.RequesterID = employeeID })
}

func (s *Service) list(ctx context.Context, in ListInput, scope func(*ListFilter, *string)) ([]*Request, error) {
	if err := in.Caller.Require(); err != nil {
		return nil, err
	}
	if in.Status != nil && !in.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	employeeID := strings.TrimSpace(in.EmployeeID)
	if employeeID == "" {
		employeeID = in.Caller.EmployeeID
	}
	if employeeID == "" {
		return nil, identity.ErrNotPermitted
	}
	if !in.Caller.CanActFor(employeeID) {
		return nil, identity.ErrNotPermitted
	}

	filter := ListFilter{CompanyID: in.Caller.CompanyID, Status: in.Status}
	scope(&filter, &employeeID)

	var requests []*Request
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.List(txCtx, filter)
		if err != nil {
			return err
		}
		requests = result
		return nil
	}); err != nil {
		return nil, err
	}
	return requests, nil
}

// lockPending は依頼を行ロック付きで取得し、候補者本人かつ PENDING であることを検証します。
func (s *Service) lockPending(ctx context.Context, caller identity.Caller, id string) (*Request, error) {
	req, err := s.repo.FindByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := caller.RequireCompany(req.CompanyID); err != nil {
		return nil, err
	}
	if req.CandidateID != caller.EmployeeID {
		return nil, ErrNotCandidate
	}
	if req.Status != StatusPending {
		return nil, ErrNotPending
	}
	return req, nil
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
