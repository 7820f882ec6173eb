package swap

import "time"

// Status はシフト交代依頼の状態です。
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusAccepted Status = "ACCEPTED"
	StatusRejected Status = "REJECTED"
)

// Valid は既知の状態であるかを返します。
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected:
		return true
	default:
		return false
	}
}

// Request はシフト所有者から候補者へのシフト交代依頼です。
type Request struct {
	ID          string
	CompanyID   string
	ShiftID     string
	RequesterID string
	CandidateID string
	Message     *string
	Status      Status
	DecidedAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
