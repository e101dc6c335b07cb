package repository

import (
	"context"
	"exam_trainer_backend/internal/model"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// SnapshotRepository 每个用户惟一的考试快照槽位。
// 槽位的存在与否就是"可以继续考试"的惟一信号。
type SnapshotRepository struct {
	Redis *redis.Client
	TTL   time.Duration // 0 表示永不过期
}

func NewSnapshotRepository(rdb *redis.Client, ttlDays int) *SnapshotRepository {
	var ttl time.Duration
	if ttlDays > 0 {
		ttl = time.Duration(ttlDays) * 24 * time.Hour
	}
	return &SnapshotRepository{Redis: rdb, TTL: ttl}
}

func snapshotKey(userID uint) string {
	return fmt.Sprintf("exam:snapshot:%d", userID)
}

// Save 覆盖写入，旧快照直接丢弃
func (r *SnapshotRepository) Save(ctx context.Context, userID uint, snapshot *model.SessionSnapshot) error {
	data, err := model.MarshalSnapshot(snapshot)
	if err != nil {
		return err
	}
	return r.Redis.Set(ctx, snapshotKey(userID), data, r.TTL).Err()
}

// Load 返回 (nil, nil) 表示槽位为空；数据损坏返回 model.ErrCorruptSnapshot
func (r *SnapshotRepository) Load(ctx context.Context, userID uint) (*model.SessionSnapshot, error) {
	data, err := r.Redis.Get(ctx, snapshotKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return model.UnmarshalSnapshot(data)
}

func (r *SnapshotRepository) Exists(ctx context.Context, userID uint) (bool, error) {
	n, err := r.Redis.Exists(ctx, snapshotKey(userID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *SnapshotRepository) Delete(ctx context.Context, userID uint) error {
	return r.Redis.Del(ctx, snapshotKey(userID)).Err()
}
