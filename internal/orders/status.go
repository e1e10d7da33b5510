package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const orderKeyPrefix = "order:"

// StatusStore は注文処理の進行状態を Redis に保存します。
// 確定済みの注文自体はPostgreSQLにあり、ここには処理中の表示用状態だけを置きます。
type StatusStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStatusStore は StatusStore を作成します。
func NewStatusStore(rdb *redis.Client, ttl time.Duration) *StatusStore {
	return &StatusStore{
		rdb: rdb,
		ttl: ttl,
	}
}

// Get は注文処理の状態を取得します。存在しない場合は nil を返します。
func (s *StatusStore) Get(ctx context.Context, orderID string) (*Record, error) {
	if orderID == "" {
		return nil, fmt.Errorf("orderID is required")
	}
	data, err := s.rdb.Get(ctx, orderKey(orderID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Upsert は注文処理の状態を保存します（存在しない場合は作成）。
func (s *StatusStore) Upsert(ctx context.Context, record *Record) error {
	if record == nil {
		return fmt.Errorf("record is nil")
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	if record.ExpiresAt.IsZero() && s.ttl > 0 {
		record.ExpiresAt = record.CreatedAt.Add(s.ttl)
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, orderKey(record.OrderID), payload, s.ttl).Err()
}

// UpdateProgress は進捗を更新します。
func (s *StatusStore) UpdateProgress(ctx context.Context, orderID string, progress ProgressInfo) error {
	return s.updatePartial(ctx, orderID, func(record *Record) {
		record.Progress = progress
	})
}

// MarkConfirmed は注文確定時の状態を保存します。
func (s *StatusStore) MarkConfirmed(ctx context.Context, orderID string) error {
	return s.updatePartial(ctx, orderID, func(record *Record) {
		record.Status = StatusConfirmed
		record.Progress = ProgressInfo{
			Percent: 100,
			Stage:   "confirmed",
		}
		record.Error = nil
	})
}

// MarkFailed は注文処理失敗時の状態を保存します。
func (s *StatusStore) MarkFailed(ctx context.Context, orderID string, errInfo *ErrorInfo) error {
	return s.updatePartial(ctx, orderID, func(record *Record) {
		record.Status = StatusFailed
		if errInfo != nil {
			record.Error = errInfo
		}
	})
}

func (s *StatusStore) updatePartial(ctx context.Context, orderID string, mutate func(*Record)) error {
	key := orderKey(orderID)
	for {
		tx := s.rdb.TxPipeline()
		data, err := s.rdb.Get(ctx, key).Bytes()
		if err != nil {
			if err == redis.Nil {
				return fmt.Errorf("order status not found: %s", orderID)
			}
			return err
		}
		var record Record
		if err := json.Unmarshal(data, &record); err != nil {
			return err
		}
		mutate(&record)
		record.UpdatedAt = time.Now().UTC()
		payload, err := json.Marshal(&record)
		if err != nil {
			return err
		}
		tx.Set(ctx, key, payload, s.ttl)
		_, err = tx.Exec(ctx)
		if err == redis.TxFailedErr {
			continue
		}
		return err
	}
}

func orderKey(id string) string {
	return orderKeyPrefix + id
}
