// Package memory provides mutex-guarded in-memory implementations of
// the repository interfaces. They back the service when no Postgres
// DSN is configured and serve as fakes in tests. The single-use
// semantics match the SQL implementations: consume is a conditional
// flip of the used flag, checked and applied under one lock.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/civicflow/civicflow/internal/domain"
	"github.com/civicflow/civicflow/internal/repository"
)

// UserRepository is an in-memory repository.UserRepository.
type UserRepository struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

// NewUserRepository constructs an empty store.
func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*domain.User)}
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return repository.ErrEmailTaken
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *UserRepository) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *UserRepository) UpdateRole(_ context.Context, id string, role domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.Role = role
	return nil
}

func (r *UserRepository) StampLastLogin(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[id]; ok {
		now := time.Now()
		user.LastLoginAt = &now
	}
	return nil
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.users, id)
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *UserRepository) List(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		result = append(result, *user)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

// EmailVerificationRepository is an in-memory implementation.
type EmailVerificationRepository struct {
	mu   sync.Mutex
	rows []*domain.EmailVerification
}

// NewEmailVerificationRepository constructs an empty store.
func NewEmailVerificationRepository() *EmailVerificationRepository {
	return &EmailVerificationRepository{}
}

func (r *EmailVerificationRepository) Issue(_ context.Context, email, code string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.rows[:0]
	for _, row := range r.rows {
		if row.Email == email && !row.Used {
			continue
		}
		kept = append(kept, row)
	}
	r.rows = append(kept, &domain.EmailVerification{
		ID:        uuid.NewString(),
		Email:     email,
		Code:      code,
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
	})
	return nil
}

func (r *EmailVerificationRepository) Consume(_ context.Context, email, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.Email == email && row.Code == code && !row.Used && time.Now().Before(row.ExpiresAt) {
			row.Used = true
			return true, nil
		}
	}
	return false, nil
}

// UnusedCount reports unused rows for an email. Test helper.
func (r *EmailVerificationRepository) UnusedCount(email string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, row := range r.rows {
		if row.Email == email && !row.Used {
			count++
		}
	}
	return count
}

// PasswordResetRepository is an in-memory implementation.
type PasswordResetRepository struct {
	mu   sync.Mutex
	rows []*domain.PasswordResetToken
}

// NewPasswordResetRepository constructs an empty store.
func NewPasswordResetRepository() *PasswordResetRepository {
	return &PasswordResetRepository{}
}

func (r *PasswordResetRepository) Issue(_ context.Context, email, token string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.rows[:0]
	for _, row := range r.rows {
		if row.Email == email && !row.Used {
			continue
		}
		kept = append(kept, row)
	}
	r.rows = append(kept, &domain.PasswordResetToken{
		ID:        uuid.NewString(),
		Email:     email,
		Token:     token,
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
	})
	return nil
}

func (r *PasswordResetRepository) Consume(_ context.Context, token string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.Token == token && !row.Used && time.Now().Before(row.ExpiresAt) {
			row.Used = true
			return row.Email, true, nil
		}
	}
	return "", false, nil
}

// TicketRepository is an in-memory repository.TicketRepository.
type TicketRepository struct {
	mu      sync.Mutex
	tickets map[string]*domain.Ticket
}

// NewTicketRepository constructs an empty store.
func NewTicketRepository() *TicketRepository {
	return &TicketRepository{tickets: make(map[string]*domain.Ticket)}
}

func (r *TicketRepository) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket.ID = uuid.NewString()
	ticket.CreatedAt = time.Now()
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	return nil
}

func (r *TicketRepository) Update(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	now := time.Now()
	ticket.UpdatedAt = &now
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	return nil
}

func (r *TicketRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.tickets, id)
	return nil
}

func (r *TicketRepository) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *ticket
	return &clone, nil
}

func (r *TicketRepository) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []domain.Ticket
	for _, ticket := range r.tickets {
		if filter.CreatedByID != nil && ticket.CreatedByID != *filter.CreatedByID {
			continue
		}
		if filter.InvolvedID != nil {
			involved := ticket.CreatedByID == *filter.InvolvedID ||
				(ticket.AssignedToID != nil && *ticket.AssignedToID == *filter.InvolvedID)
			if !involved {
				continue
			}
		}
		if len(filter.Statuses) > 0 && !statusIn(ticket.Status, filter.Statuses) {
			continue
		}
		result = append(result, *ticket)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return strings.Compare(result[i].ID, result[j].ID) < 0
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(result) {
		return nil, nil
	}
	result = result[offset:]
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func statusIn(status domain.TicketStatus, set []domain.TicketStatus) bool {
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}
