package employee

import (
	"time"

	"github.com/ogurasousui/shiftboard/internal/core/identity"
)

// Employee は社員エンティティです。
type Employee struct {
	ID              string
	CompanyID       string
	DisplayName     string
	EmployeeCode    string
	Role            identity.Role
	Department      string
	IsActive        bool
	ExternalSubject *string
	PINHash         *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasPIN はキオスク用 PIN が設定済みかを返します。
func (e *Employee) HasPIN() bool {
	return e.PINHash != nil && *e.PINHash != ""
}
