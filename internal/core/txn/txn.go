// Package txn はユースケースから見たトランザクション境界を定義します。
package txn

import "context"

// Manager はトランザクション制御の抽象化です。
type Manager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

// Noop はトランザクションを張らずに fn を実行する Manager です。
type Noop struct{}

// WithinReadOnly は fn をそのまま実行します。
func (Noop) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// WithinReadWrite は fn をそのまま実行します。
func (Noop) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// OrNoop は m が nil の場合に Noop を返します。
func OrNoop(m Manager) Manager {
	if m == nil {
		return Noop{}
	}
	return m
}
