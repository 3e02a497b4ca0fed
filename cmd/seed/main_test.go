package main

import (
	"context"
	"testing"

	"github.com/cafe-pickup/api/internal/auth"
	"github.com/cafe-pickup/api/internal/database"
	"github.com/cafe-pickup/api/internal/enum"
)

func TestSeedKitchenStaff(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemory()

	if err := seedKitchenStaff(ctx, store, "+10000000000", "password123", "Kitchen"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	user, err := store.GetUserByPhone(ctx, "+10000000000")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user.Role != enum.UserRoleKitchenStaff {
		t.Errorf("role: got %q, want %q", user.Role, enum.UserRoleKitchenStaff)
	}
	if user.HashedPassword == nil || !auth.CheckPassword(*user.HashedPassword, "password123") {
		t.Fatal("stored hash does not match the seeded password")
	}

	// A second run leaves the existing account alone.
	if err := seedKitchenStaff(ctx, store, "+10000000000", "other", "Someone"); err != nil {
		t.Fatalf("reseed: %v", err)
	}
	again, _ := store.GetUserByPhone(ctx, "+10000000000")
	if again.ID != user.ID || !auth.CheckPassword(*again.HashedPassword, "password123") {
		t.Error("existing kitchen staff account was modified")
	}
}
