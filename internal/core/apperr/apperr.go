// Package apperr はドメイン層で共有するエラー分類を定義します。
package apperr

import "errors"

// エラー分類。各パッケージのセンチネルエラーはいずれかをラップします。
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
)

var kinds = []error{ErrNotFound, ErrForbidden, ErrConflict, ErrValidation, ErrUnauthorized}

// Error は分類付きのドメインエラーです。
type Error struct {
	kind error
	msg  string
}

// New は kind に分類されるセンチネルエラーを生成します。
func New(kind error, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func (e *Error) Error() string {
	return e.msg
}

func (e *Error) Unwrap() error {
	return e.kind
}

// KindOf は err の分類を返します。分類されていない場合は nil です。
func KindOf(err error) error {
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
