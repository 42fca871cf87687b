package admin

import (
	"errors"
	"time"

	"github.com/lingoletics/core/internal/modules/waitlist"
	jwtpkg "github.com/lingoletics/core/internal/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

const (
	sessionTTL = 12 * time.Hour
	chartDays  = 30
)

var (
	errWrongPassword     = errors.New("wrong password")
	errHashNotConfigured = errors.New("admin password hash is not configured")
)

// Service backs the admin dashboard: password login, aggregate stats, the
// subscriber list, and the launch broadcast.
type Service struct {
	store        *waitlist.Store
	lifecycle    *waitlist.Service
	passwordHash string
}

func NewService(store *waitlist.Store, lifecycle *waitlist.Service, passwordHash string) *Service {
	return &Service{store: store, lifecycle: lifecycle, passwordHash: passwordHash}
}

// Login verifies the shared admin secret against its bcrypt hash and issues
// a session token.
func (s *Service) Login(password string) (string, error) {
	if s.passwordHash == "" {
		return "", errHashNotConfigured
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		return "", errWrongPassword
	}
	return jwtpkg.Sign(sessionTTL)
}

// ChartPoint is one day of confirmed signups.
type ChartPoint struct {
	Date    string `json:"date"`
	Signups int64  `json:"signups"`
}

// StatsResult is the dashboard overview payload.
type StatsResult struct {
	Total            int64        `json:"total"`
	TotalUnconfirmed int64        `json:"totalUnconfirmed"`
	Notified         int64        `json:"notified"`
	Pending          int64        `json:"pending"`
	ChartData        []ChartPoint `json:"chartData"`
}

// Stats aggregates lifecycle counts and a trailing 30-day signup chart.
// The chart always holds exactly 30 points ending today, zero-filled.
func (s *Service) Stats() (*StatsResult, error) {
	counts, err := s.store.CountByState()
	if err != nil {
		return nil, err
	}

	today := startOfDay(time.Now())
	since := today.AddDate(0, 0, -(chartDays - 1))
	byDay, err := s.store.SignupsByDay(since)
	if err != nil {
		return nil, err
	}

	chart := make([]ChartPoint, 0, chartDays)
	for i := 0; i < chartDays; i++ {
		day := since.AddDate(0, 0, i).Format("2006-01-02")
		chart = append(chart, ChartPoint{Date: day, Signups: byDay[day]})
	}

	return &StatsResult{
		Total:            counts.Confirmed,
		TotalUnconfirmed: counts.Unconfirmed,
		Notified:         counts.Notified,
		Pending:          counts.Confirmed - counts.Notified,
		ChartData:        chart,
	}, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
