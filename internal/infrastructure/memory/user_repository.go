// Package memory is a process-local UserRepository used by tests and by the
// server when no MongoDB URI is configured.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/template-marketplace/internal/domain/entity"
	"github.com/oksasatya/template-marketplace/internal/domain/repository"
)

type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*entity.User
	byEmail map[string]string
	now     func() time.Time
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    map[string]*entity.User{},
		byEmail: map[string]string{},
		now:     time.Now,
	}
}

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	email := entity.NormalizeEmail(u.Email)
	if _, taken := r.byEmail[email]; taken {
		return repository.ErrDuplicateEmail
	}
	u.ID = uuid.NewString()
	u.Email = email
	r.byID[u.ID] = clone(u)
	r.byEmail[email] = u.ID
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(u), nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[entity.NormalizeEmail(email)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(r.byID[id]), nil
}

func (r *UserRepository) List(_ context.Context) ([]*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.User, 0, len(r.byID))
	for _, u := range r.byID {
		c := clone(u)
		c.Password = ""
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *UserRepository) Update(_ context.Context, id string, patch entity.UserPatch) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if patch.Email != nil {
		email := entity.NormalizeEmail(*patch.Email)
		if owner, taken := r.byEmail[email]; taken && owner != id {
			return nil, repository.ErrDuplicateEmail
		}
		delete(r.byEmail, u.Email)
		r.byEmail[email] = id
	}
	u.Apply(patch, r.now())
	return clone(u), nil
}

func (r *UserRepository) MergeOnboarding(_ context.Context, id string, answers entity.OnboardingAnswers) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.ApplyOnboarding(cloneAnswers(answers), r.now())
	return clone(u), nil
}

func (r *UserRepository) UpdatePassword(_ context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Password = hash
	u.UpdatedAt = r.now()
	return nil
}

func (r *UserRepository) SetAvatar(_ context.Context, id, url string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.AvatarURL = url
	u.UpdatedAt = r.now()
	return clone(u), nil
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	delete(r.byEmail, u.Email)
	delete(r.byID, id)
	return nil
}

// clone deep-copies the mutable parts so callers never alias stored state.
func clone(u *entity.User) *entity.User {
	c := *u
	c.SocialLinks = make(map[string]string, len(u.SocialLinks))
	for k, v := range u.SocialLinks {
		c.SocialLinks[k] = v
	}
	c.Onboarding = cloneAnswers(u.Onboarding)
	return &c
}

func cloneAnswers(a entity.OnboardingAnswers) entity.OnboardingAnswers {
	if a.TargetPlatforms != nil {
		a.TargetPlatforms = append([]string{}, a.TargetPlatforms...)
	}
	if a.TemplateInterests != nil {
		a.TemplateInterests = append([]string{}, a.TemplateInterests...)
	}
	return a
}

var _ repository.UserRepository = (*UserRepository)(nil)
