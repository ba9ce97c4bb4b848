package postgres

import (
	"context"
	"testing"

	"github.com/webviva/shop-api/internal/domain"
	"github.com/webviva/shop-api/internal/testutil"
)

func TestUserRepository_GetUser(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := NewUserRepository(pool)
	testutil.ApplyMigrations(t, context.Background(), pool)

	ctx := context.Background()
	testutil.TruncateAll(t, ctx, pool)

	userID := testutil.InsertUser(t, ctx, pool, "Nimali", "Perera", "nimali@example.com")

	user, err := repo.GetUser(ctx, userID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user.FirstName != "Nimali" || user.LastName != "Perera" || user.Email != "nimali@example.com" {
		t.Fatalf("unexpected user %+v", user)
	}

	if _, err := repo.GetUser(ctx, 404); err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
