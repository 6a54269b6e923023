package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/template-marketplace/internal/domain/entity"
	"github.com/oksasatya/template-marketplace/internal/domain/repository"
)

func TestCreateAndLookup(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	u := entity.NewUser("Ada", "Lovelace", "ada@example.com", "hash", time.Now())
	require.NoError(t, repo.Create(ctx, u))
	require.NotEmpty(t, u.ID)

	got, err := repo.GetByEmail(ctx, " ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, entity.NewUser("A", "B", "dup@example.com", "h", time.Now())))

	err := repo.Create(ctx, entity.NewUser("C", "D", "DUP@example.com", "h", time.Now()))
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
}

func TestCreate_ConcurrentSameEmailOneWins(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.Create(ctx, entity.NewUser("A", "B", "race@example.com", "h", time.Now()))
		}()
	}
	wg.Wait()
	close(errs)

	ok := 0
	for err := range errs {
		if err == nil {
			ok++
		} else {
			assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
		}
	}
	assert.Equal(t, 1, ok)
}

func TestUpdate_EmailConflictAndSocialMerge(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()
	a := entity.NewUser("A", "A", "a@example.com", "h", time.Now())
	b := entity.NewUser("B", "B", "b@example.com", "h", time.Now())
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	taken := "a@example.com"
	_, err := repo.Update(ctx, b.ID, entity.UserPatch{Email: &taken})
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)

	fresh := "b2@example.com"
	got, err := repo.Update(ctx, b.ID, entity.UserPatch{Email: &fresh, SocialLinks: map[string]string{"github": "https://github.com/b"}})
	require.NoError(t, err)
	assert.Equal(t, "b2@example.com", got.Email)

	got, err = repo.Update(ctx, b.ID, entity.UserPatch{SocialLinks: map[string]string{"twitter": "https://x.com/b"}})
	require.NoError(t, err)
	assert.Len(t, got.SocialLinks, 2)

	_, err = repo.GetByEmail(ctx, "b@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestReturnedUsersDoNotAlias(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()
	u := entity.NewUser("A", "B", "alias@example.com", "h", time.Now())
	require.NoError(t, repo.Create(ctx, u))

	got, _ := repo.GetByID(ctx, u.ID)
	got.SocialLinks["github"] = "https://github.com/mutated"
	got.FirstName = "Mutated"

	again, _ := repo.GetByID(ctx, u.ID)
	assert.Empty(t, again.SocialLinks)
	assert.Equal(t, "A", again.FirstName)
}

func TestList_NewestFirstWithoutPasswords(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()
	base := time.Now()
	require.NoError(t, repo.Create(ctx, entity.NewUser("Old", "One", "old@example.com", "h", base)))
	require.NoError(t, repo.Create(ctx, entity.NewUser("New", "One", "new@example.com", "h", base.Add(time.Minute))))

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "new@example.com", users[0].Email)
	for _, u := range users {
		assert.Empty(t, u.Password)
	}
}

func TestOnboardingPasswordAvatarDelete(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()
	u := entity.NewUser("A", "B", "x@example.com", "h", time.Now())
	require.NoError(t, repo.Create(ctx, u))

	level := "advanced"
	got, err := repo.MergeOnboarding(ctx, u.ID, entity.OnboardingAnswers{SkillLevel: &level})
	require.NoError(t, err)
	assert.True(t, got.OnboardingComplete)

	require.NoError(t, repo.UpdatePassword(ctx, u.ID, "h2"))
	stored, _ := repo.GetByID(ctx, u.ID)
	assert.Equal(t, "h2", stored.Password)

	got, err = repo.SetAvatar(ctx, u.ID, "https://cdn.test/a.png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/a.png", got.AvatarURL)

	require.NoError(t, repo.Delete(ctx, u.ID))
	assert.ErrorIs(t, repo.Delete(ctx, u.ID), repository.ErrNotFound)
	_, err = repo.GetByEmail(ctx, "x@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
