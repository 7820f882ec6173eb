package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ogurasousui/shiftboard/internal/core/kiosk"
	goredis "github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "shiftboard:kiosk:session:"

type sessionClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd
	Get(ctx context.Context, key string) *goredis.StringCmd
	Del(ctx context.Context, keys ...string) *goredis.IntCmd
}

type sessionRecord struct {
	CompanyID  string    `json:"company_id"`
	EmployeeID string    `json:"employee_id"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// SessionStore はキオスクセッションを Redis に TTL 付きで保存します。
type SessionStore struct {
	client sessionClient
}

// NewSessionStore は SessionStore を生成します。
func NewSessionStore(client sessionClient) *SessionStore {
	return &SessionStore{client: client}
}

// Save はセッションを保存します。
func (s *SessionStore) Save(ctx context.Context, session *kiosk.Session, ttl time.Duration) error {
	payload, err := json.Marshal(sessionRecord{
		CompanyID:  session.CompanyID,
		EmployeeID: session.EmployeeID,
		ExpiresAt:  session.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("redis: encode session: %w", err)
	}

	if err := s.client.Set(ctx, sessionKey(session.Token), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis: save session: %w", err)
	}
	return nil
}

// Load はトークンに対応するセッションを返します。
func (s *SessionStore) Load(ctx context.Context, token string) (*kiosk.Session, error) {
	raw, err := s.client.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, kiosk.ErrSessionNotFound
		}
		return nil, fmt.Errorf("redis: load session: %w", err)
	}

	var record sessionRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("redis: decode session: %w", err)
	}

	return &kiosk.Session{
		Token:      token,
		CompanyID:  record.CompanyID,
		EmployeeID: record.EmployeeID,
		ExpiresAt:  record.ExpiresAt,
	}, nil
}

// Delete はセッションを削除します。存在しない場合も成功します。
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("redis: delete session: %w", err)
	}
	return nil
}

func sessionKey(token string) string {
	return sessionKeyPrefix + token
}
