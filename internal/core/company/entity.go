package company

import "time"

// Company はテナントとなる会社エンティティです。
type Company struct {
	ID        string
	Name      string
	Code      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
