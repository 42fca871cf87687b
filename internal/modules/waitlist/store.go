package waitlist

import (
	"errors"
	"strings"
	"time"

	"github.com/lingoletics/core/internal/models"
	"gorm.io/gorm"
)

// ListFilter selects which subscriptions a List call returns.
type ListFilter int

const (
	FilterAll ListFilter = iota
	FilterConfirmed
	FilterUnconfirmed
)

// StateCounts are the aggregate totals per lifecycle state.
type StateCounts struct {
	Confirmed   int64
	Unconfirmed int64
	Notified    int64
}

// Store persists subscriptions. All operations touch a single row; the only
// cross-row guarantee it relies on is the unique index on email, which makes
// Create safe under concurrent submission of the same address.
type Store struct{ db *gorm.DB }

func NewStore(db *gorm.DB) *Store { return &Store{db: db} }

// FindByEmail returns the subscription for an email, or nil when absent.
func (s *Store) FindByEmail(email string) (*models.SubscriptionModel, error) {
	var sub models.SubscriptionModel
	if err := s.db.Where("email = ?", email).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

// FindByToken returns the subscription holding a confirmation token, or nil.
func (s *Store) FindByToken(token string) (*models.SubscriptionModel, error) {
	var sub models.SubscriptionModel
	if err := s.db.Where("confirmation_token = ?", token).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

// Create inserts a new unconfirmed subscription. A concurrent create for the
// same email loses against the unique index and maps to ErrDuplicateEmail.
func (s *Store) Create(email, name, school, token string) (*models.SubscriptionModel, error) {
	sub := models.SubscriptionModel{
		Email:             email,
		Name:              name,
		School:            school,
		ConfirmationToken: &token,
	}
	if err := s.db.Create(&sub).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return &sub, nil
}

// ReplaceToken swaps the outstanding token on a not-yet-confirmed row,
// invalidating any previously issued confirmation link.
func (s *Store) ReplaceToken(email, token string) error {
	return s.db.Model(&models.SubscriptionModel{}).
		Where("email = ? AND confirmed = ?", email, false).
		Update("confirmation_token", &token).Error
}

// ConfirmByToken applies the Unconfirmed -> Confirmed transition as one
// conditional update. Under concurrent redemption of the same token exactly
// one caller observes RowsAffected == 1; it returns whether this call won.
func (s *Store) ConfirmByToken(token string) (bool, error) {
	now := time.Now()
	result := s.db.Model(&models.SubscriptionModel{}).
		Where("confirmation_token = ? AND confirmed = ?", token, false).
		Updates(map[string]interface{}{
			"confirmed":          true,
			"confirmed_at":       &now,
			"confirmation_token": nil,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// MarkNotified records a successful broadcast send for a subscription.
func (s *Store) MarkNotified(id string) error {
	return s.db.Model(&models.SubscriptionModel{}).
		Where("id = ?", id).
		Update("notified", true).Error
}

// Delete removes a subscription. Used only to roll back a brand-new record
// whose opt-in email could not be sent, freeing the email for a clean retry.
func (s *Store) Delete(id string) error {
	return s.db.Where("id = ?", id).Delete(&models.SubscriptionModel{}).Error
}

// FindPendingNotify returns all confirmed, not-yet-notified subscriptions.
func (s *Store) FindPendingNotify() ([]models.SubscriptionModel, error) {
	var subs []models.SubscriptionModel
	err := s.db.Where("confirmed = ? AND notified = ?", true, false).
		Order("created_at ASC").Find(&subs).Error
	return subs, err
}

// List returns a page of subscriptions ordered by creation time descending,
// plus the total count for the filter.
func (s *Store) List(filter ListFilter, offset, limit int) ([]models.SubscriptionModel, int64, error) {
	query := s.db.Model(&models.SubscriptionModel{})
	switch filter {
	case FilterConfirmed:
		query = query.Where("confirmed = ?", true)
	case FilterUnconfirmed:
		query = query.Where("confirmed = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var subs []models.SubscriptionModel
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&subs).Error; err != nil {
		return nil, 0, err
	}
	return subs, total, nil
}

// CountByState returns the confirmed/unconfirmed/notified totals. Notified
// only counts confirmed rows; the model never marks an unconfirmed one.
func (s *Store) CountByState() (StateCounts, error) {
	var counts StateCounts
	if err := s.db.Model(&models.SubscriptionModel{}).
		Where("confirmed = ?", true).Count(&counts.Confirmed).Error; err != nil {
		return counts, err
	}
	if err := s.db.Model(&models.SubscriptionModel{}).
		Where("confirmed = ?", false).Count(&counts.Unconfirmed).Error; err != nil {
		return counts, err
	}
	if err := s.db.Model(&models.SubscriptionModel{}).
		Where("confirmed = ? AND notified = ?", true, true).Count(&counts.Notified).Error; err != nil {
		return counts, err
	}
	return counts, nil
}

// SignupsByDay groups confirmed subscriptions created since the cutoff by
// calendar day ("2006-01-02"). Grouping happens in Go so the query stays
// portable across MySQL and the sqlite used in tests.
func (s *Store) SignupsByDay(since time.Time) (map[string]int64, error) {
	var rows []models.SubscriptionModel
	err := s.db.Select("created_at").
		Where("confirmed = ? AND created_at >= ?", true, since).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]int64, len(rows))
	for _, r := range rows {
		byDay[r.CreatedAt.Local().Format("2006-01-02")]++
	}
	return byDay, nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint")
}
