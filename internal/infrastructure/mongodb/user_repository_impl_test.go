package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/oksasatya/template-marketplace/internal/domain/entity"
	"github.com/oksasatya/template-marketplace/internal/domain/repository"
)

func ns(mt *mtest.T) string {
	return mt.Coll.Database().Name() + "." + mt.Coll.Name()
}

func userDoc(id primitive.ObjectID, email string) bson.D {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "firstName", Value: "Ada"},
		{Key: "lastName", Value: "Lovelace"},
		{Key: "email", Value: email},
		{Key: "password", Value: "$2a$12$hash"},
		{Key: "onboardingComplete", Value: false},
		{Key: "role", Value: "user"},
		{Key: "isActive", Value: true},
		{Key: "socialLinks", Value: bson.D{{Key: "github", Value: "https://github.com/ada"}}},
		{Key: "createdAt", Value: now},
		{Key: "updatedAt", Value: now},
	}
}

func TestUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("create assigns object id", func(mt *mtest.T) {
		repo := NewUserRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		u := entity.NewUser("Ada", "Lovelace", "ada@example.com", "hash", time.Now())
		require.NoError(mt, repo.Create(ctx, u))
		_, err := primitive.ObjectIDFromHex(u.ID)
		assert.NoError(mt, err)
	})

	mt.Run("create duplicate email", func(mt *mtest.T) {
		repo := NewUserRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: "E11000 duplicate key error collection: users index: email_unique",
		}))

		err := repo.Create(ctx, entity.NewUser("Ada", "Lovelace", "ada@example.com", "hash", time.Now()))
		assert.ErrorIs(mt, err, repository.ErrDuplicateEmail)
	})

	mt.Run("get by id maps document", func(mt *mtest.T) {
		repo := NewUserRepository(mt.Coll)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch, userDoc(id, "ada@example.com")))

		u, err := repo.GetByID(ctx, id.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, id.Hex(), u.ID)
		assert.Equal(mt, "Ada Lovelace", u.FullName())
		assert.Equal(mt, entity.RoleUser, u.Role)
		assert.True(mt, u.IsActive)
		assert.Equal(mt, "https://github.com/ada", u.SocialLinks["github"])
	})

	mt.Run("get by id missing", func(mt *mtest.T) {
		repo := NewUserRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch))

		_, err := repo.GetByID(ctx, primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})

	mt.Run("malformed id is not found", func(mt *mtest.T) {
		repo := NewUserRepository(mt.Coll)

		_, err := repo.GetByID(ctx, "not-an-object-id")
		assert.ErrorIs(mt, err, repository.ErrNotFound)
		assert.ErrorIs(mt, repo.Delete(ctx, "xyz"), repository.ErrNotFound)
	})

	mt.Run("list", func(mt *mtest.T) {
		repo := NewUserRepository(mt.Coll)
		a, b := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch,
			userDoc(a, "a@example.com"), userDoc(b, "b@example.com")))

		users, err := repo.List(ctx)
		require.NoError(mt, err)
		require.Len(mt, users, 2)
		assert.Equal(mt, "a@example.com", users[0].Email)
		assert.Equal(mt, b.Hex(), users[1].ID)
	})

	mt.Run("update returns document after", func(mt *mtest.T) {
		repo := NewUserRepository(mt.Coll)
		id := primitive.NewObjectID()
		doc := userDoc(id, "new@example.com")
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: doc}})

		email := "New@Example.com"
		u, err := repo.Update(ctx, id.Hex(), entity.UserPatch{
			Email:       &email,
			SocialLinks: map[string]string{"twitter": ""},
		})
		require.NoError(mt, err)
		assert.Equal(mt, "new@example.com", u.Email)
	})

	mt.Run("update rejects unsafe link key", func(mt *mtest.T) {
		repo := NewUserRepository(mt.Coll)

		_, err := repo.Update(ctx, primitive.NewObjectID().Hex(), entity.UserPatch{
			SocialLinks: map[string]string{"$where": "https://x.test"},
		})
		assert.Error(mt, err)
	})

	mt.Run("update missing user", func(mt *mtest.T) {
		repo := NewUserRepository(mt.Coll)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: nil}})

		name := "Grace"
		_, err := repo.Update(ctx, primitive.NewObjectID().Hex(), entity.UserPatch{FirstName: &name})
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})

	mt.Run("merge onboarding", func(mt *mtest.T) {
		repo := NewUserRepository(mt.Coll)
		id := primitive.NewObjectID()
		doc := append(userDoc(id, "ada@example.com"),
			bson.E{Key: "skillLevel", Value: "expert"},
			bson.E{Key: "targetPlatforms", Value: bson.A{"react"}},
		)
		doc[5] = bson.E{Key: "onboardingComplete", Value: true}
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: doc}})

		level := "expert"
		u, err := repo.MergeOnboarding(ctx, id.Hex(), entity.OnboardingAnswers{SkillLevel: &level, TargetPlatforms: []string{"react"}})
		require.NoError(mt, err)
		assert.True(mt, u.OnboardingComplete)
		require.NotNil(mt, u.Onboarding.SkillLevel)
		assert.Equal(mt, "expert", *u.Onboarding.SkillLevel)
		assert.Equal(mt, []string{"react"}, u.Onboarding.TargetPlatforms)
	})

	mt.Run("update password", func(mt *mtest.T) {
		repo := NewUserRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))
		assert.NoError(mt, repo.UpdatePassword(ctx, primitive.NewObjectID().Hex(), "newhash"))

		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))
		assert.ErrorIs(mt, repo.UpdatePassword(ctx, primitive.NewObjectID().Hex(), "newhash"), repository.ErrNotFound)
	})

	mt.Run("delete", func(mt *mtest.T) {
		repo := NewUserRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))
		assert.NoError(mt, repo.Delete(ctx, primitive.NewObjectID().Hex()))

		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))
		assert.ErrorIs(mt, repo.Delete(ctx, primitive.NewObjectID().Hex()), repository.ErrNotFound)
	})

	mt.Run("ensure indexes", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		assert.NoError(mt, EnsureIndexes(ctx, mt.Coll))
	})
}
