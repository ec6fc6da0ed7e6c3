package adapters

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"
)

// SessionRecord is the durable copy of a browser session. Sessions survive server
// restarts; expired records are swept periodically.
type SessionRecord struct {
	Token  string    `gorm:"primaryKey;column:token"`
	Data   []byte    `gorm:"column:data"`
	Expiry time.Time `gorm:"column:expiry;index:idx_se_expiry"`
}

// SessionStore persists scs sessions in the SQL database. It implements the
// scs.Store interface.
type SessionStore struct {
	db *gorm.DB
}

func NewSessionStore(db *gorm.DB) *SessionStore {
	return &SessionStore{db: db}
}

// Find returns the data for a given session token. If the session token is not
// found or has expired, the found return value is false.
func (s *SessionStore) Find(token string) ([]byte, bool, error) {
	var record SessionRecord

	err := s.db.First(&record, "token = ?", token).Error
	if err == gorm.ErrRecordNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	if record.Expiry.Before(time.Now()) {
		return nil, false, nil
	}

	return record.Data, true, nil
}

// Commit adds a session token and data to the store, with the given expiry time.
// An existing token is updated in place.
func (s *SessionStore) Commit(token string, b []byte, expiry time.Time) error {
	record := SessionRecord{
		Token:  token,
		Data:   b,
		Expiry: expiry,
	}

	return s.db.Save(&record).Error
}

// Delete removes a session token and corresponding data from the store.
func (s *SessionStore) Delete(token string) error {
	return s.db.Unscoped().Delete(&SessionRecord{Token: token}).Error
}

// All returns all non-expired sessions.
func (s *SessionStore) All() (map[string][]byte, error) {
	var records []SessionRecord

	err := s.db.Where("expiry >= ?", time.Now()).Find(&records).Error
	if err != nil {
		return nil, err
	}

	sessions := make(map[string][]byte, len(records))
	for _, record := range records {
		sessions[record.Token] = record.Data
	}

	return sessions, nil
}

// StartCleanup sweeps expired session records until the context is cancelled.
func (s *SessionStore) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				res := s.db.Where("expiry < ?", time.Now()).Unscoped().Delete(&SessionRecord{})
				if res.Error != nil {
					slog.Error("failed to sweep expired sessions", "error", res.Error)
					continue
				}
				if res.RowsAffected > 0 {
					slog.Debug("swept expired sessions", "count", res.RowsAffected)
				}
			}
		}
	}()
}
