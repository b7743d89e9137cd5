package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicflow/civicflow/internal/domain"
	"github.com/civicflow/civicflow/internal/repository"
)

func TestUserEmailUniqueness(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.User{Email: "alice@example.com", Role: domain.RoleCitizen}))
	err := repo.Create(ctx, &domain.User{Email: "alice@example.com", Role: domain.RoleCitizen})
	assert.ErrorIs(t, err, repository.ErrEmailTaken)
}

func TestVerificationReissueInvalidatesPrior(t *testing.T) {
	repo := NewEmailVerificationRepository()
	ctx := context.Background()
	expiry := time.Now().Add(10 * time.Minute)

	require.NoError(t, repo.Issue(ctx, "alice@example.com", "AAAAAA", expiry))
	require.NoError(t, repo.Issue(ctx, "alice@example.com", "BBBBBB", expiry))
	assert.Equal(t, 1, repo.UnusedCount("alice@example.com"))

	ok, err := repo.Consume(ctx, "alice@example.com", "AAAAAA")
	require.NoError(t, err)
	assert.False(t, ok, "first code must be invalid after reissue")

	ok, err = repo.Consume(ctx, "alice@example.com", "BBBBBB")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerificationSingleUse(t *testing.T) {
	repo := NewEmailVerificationRepository()
	ctx := context.Background()

	require.NoError(t, repo.Issue(ctx, "alice@example.com", "AAAAAA", time.Now().Add(10*time.Minute)))

	ok, err := repo.Consume(ctx, "alice@example.com", "AAAAAA")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.Consume(ctx, "alice@example.com", "AAAAAA")
	require.NoError(t, err)
	assert.False(t, ok, "second consume must fail")
}

func TestVerificationExpiry(t *testing.T) {
	repo := NewEmailVerificationRepository()
	ctx := context.Background()

	require.NoError(t, repo.Issue(ctx, "alice@example.com", "AAAAAA", time.Now().Add(-time.Minute)))

	ok, err := repo.Consume(ctx, "alice@example.com", "AAAAAA")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerificationConcurrentConsumeSingleWinner(t *testing.T) {
	repo := NewEmailVerificationRepository()
	ctx := context.Background()

	require.NoError(t, repo.Issue(ctx, "alice@example.com", "AAAAAA", time.Now().Add(10*time.Minute)))

	const workers = 16
	var wg sync.WaitGroup
	results := make(chan bool, workers)
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.Consume(ctx, "alice@example.com", "AAAAAA")
			errs <- err
			results <- ok
		}()
	}
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	wins := 0
	for ok := range results {
		if ok {
			wins++
		}
	}
	assert.Equal(t, 1, wins, "exactly one consumer may win")
}

func TestResetTokenSingleUse(t *testing.T) {
	repo := NewPasswordResetRepository()
	ctx := context.Background()

	require.NoError(t, repo.Issue(ctx, "alice@example.com", "tok-1", time.Now().Add(30*time.Minute)))

	email, ok, err := repo.Consume(ctx, "tok-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "alice@example.com", email)

	_, ok, err = repo.Consume(ctx, "tok-1")
	require.NoError(t, err)
	assert.False(t, ok, "token already redeemed")
}

func TestResetTokenUnknownAndExpired(t *testing.T) {
	repo := NewPasswordResetRepository()
	ctx := context.Background()

	_, ok, err := repo.Consume(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Issue(ctx, "alice@example.com", "tok-2", time.Now().Add(-time.Minute)))
	_, ok, err = repo.Consume(ctx, "tok-2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTicketListFilters(t *testing.T) {
	repo := NewTicketRepository()
	ctx := context.Background()

	olivia := "olivia"
	mk := func(creator string, assignee *string) {
		require.NoError(t, repo.Create(ctx, &domain.Ticket{
			Title:       "t",
			Priority:    domain.TicketPriorityMedium,
			Status:      domain.TicketStatusNew,
			CreatedByID: creator,
			AssignedToID: func() *string {
				if assignee == nil {
					return nil
				}
				v := *assignee
				return &v
			}(),
		}))
	}
	mk("alice", nil)
	mk("bob", &olivia)
	mk("olivia", nil)

	alice := "alice"
	created, err := repo.List(ctx, repository.TicketFilter{CreatedByID: &alice})
	require.NoError(t, err)
	assert.Len(t, created, 1)

	involved, err := repo.List(ctx, repository.TicketFilter{InvolvedID: &olivia})
	require.NoError(t, err)
	assert.Len(t, involved, 2)

	all, err := repo.List(ctx, repository.TicketFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
