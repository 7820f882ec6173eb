package vacation

import "time"

// Status は休暇申請の状態です。
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusCancelled Status = "CANCELLED"
)

var transitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusCancelled},
}

// Valid は既知の状態であるかを返します。
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransition は from から to への遷移が許可されているかを返します。
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Request は休暇申請です。StartDate と EndDate は両端を含む暦日です。
// PartialStartMinute と PartialEndMinute は 1 日だけの申請で時間帯を指定する場合にのみ設定されます。
type Request struct {
	ID                 string
	CompanyID          string
	EmployeeID         string
	StartDate          time.Time
	EndDate            time.Time
	PartialStartMinute *int
	PartialEndMinute   *int
	Reason             *string
	Status             Status
	DecidedAt          *time.Time
	DecidedBy          *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// SingleDay は申請が 1 暦日だけかを返します。
func (r *Request) SingleDay() bool {
	return r.StartDate.Equal(r.EndDate)
}

// HasPartialWindow は時間帯指定付きの 1 日申請かを返します。
func (r *Request) HasPartialWindow() bool {
	return r.SingleDay() && r.PartialStartMinute != nil && r.PartialEndMinute != nil
}
