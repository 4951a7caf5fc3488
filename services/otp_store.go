package services

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/solarhub/solarhub-api/models"
)

// OTPStore keeps one live verification code per email. Expiry is enforced by the store.
type OTPStore interface {
	Save(ctx context.Context, email, code string, ttl time.Duration) error
	Verify(ctx context.Context, email, code string) (bool, error)
	Delete(ctx context.Context, email string) error
}

// GormOTPStore keeps codes in the verification_codes table
type GormOTPStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormOTPStore creates a table-backed OTP store
func NewGormOTPStore(db *gorm.DB) *GormOTPStore {
	return &GormOTPStore{db: db, now: time.Now}
}

// Save replaces any existing code for email
func (s *GormOTPStore) Save(ctx context.Context, email, code string, ttl time.Duration) error {
	now := s.now().UTC()
	db := s.db.WithContext(ctx)

	if err := db.Where("expires_at <= ?", now).Delete(&models.VerificationCode{}).Error; err != nil {
		return errors.Wrap(err, "purge expired verification codes")
	}

	record := models.VerificationCode{
		Email:     models.NormalizeEmail(email),
		Code:      code,
		ExpiresAt: now.Add(ttl),
	}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"code", "expires_at"}),
	}).Create(&record).Error
	return errors.Wrap(err, "save verification code")
}

// Verify reports whether code is the live code for email
func (s *GormOTPStore) Verify(ctx context.Context, email, code string) (bool, error) {
	var record models.VerificationCode
	err := s.db.WithContext(ctx).
		Where("email = ? AND expires_at > ?", models.NormalizeEmail(email), s.now().UTC()).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "load verification code")
	}
	return subtle.ConstantTimeCompare([]byte(record.Code), []byte(code)) == 1, nil
}

// Delete removes the code for email
func (s *GormOTPStore) Delete(ctx context.Context, email string) error {
	err := s.db.WithContext(ctx).
		Where("email = ?", models.NormalizeEmail(email)).
		Delete(&models.VerificationCode{}).Error
	return errors.Wrap(err, "delete verification code")
}

// RedisOTPStore keeps codes as keys with a TTL
type RedisOTPStore struct {
	client *redis.Client
	prefix string
}

// NewRedisOTPStore creates a redis-backed OTP store
func NewRedisOTPStore(client *redis.Client) *RedisOTPStore {
	return &RedisOTPStore{client: client, prefix: "otp:"}
}

// NewRedisClient parses a redis:// URL and checks connectivity
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "parse REDIS_URL")
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "ping redis")
	}
	return client, nil
}

func (s *RedisOTPStore) key(email string) string {
	return s.prefix + models.NormalizeEmail(email)
}

// Save replaces any existing code for email
func (s *RedisOTPStore) Save(ctx context.Context, email, code string, ttl time.Duration) error {
	return errors.Wrap(s.client.Set(ctx, s.key(email), code, ttl).Err(), "save verification code")
}

// Verify reports whether code is the live code for email
func (s *RedisOTPStore) Verify(ctx context.Context, email, code string) (bool, error) {
	stored, err := s.client.Get(ctx, s.key(email)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "load verification code")
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(code)) == 1, nil
}

// Delete removes the code for email
func (s *RedisOTPStore) Delete(ctx context.Context, email string) error {
	return errors.Wrap(s.client.Del(ctx, s.key(email)).Err(), "delete verification code")
}
