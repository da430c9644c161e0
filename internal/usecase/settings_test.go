package usecase

import (
	"context"
	"testing"
)

func TestSettingsDefaultWhenAbsent(t *testing.T) {
	uc := NewSettingsUsecase(&fakeSettingsRepo{})

	settings, err := uc.Get(context.Background(), "did:plc:alice")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !settings.EnableFeedPosts {
		t.Fatalf("absent settings must default to enableFeedPosts=true")
	}
	if settings.DID != "did:plc:alice" {
		t.Fatalf("unexpected did: %s", settings.DID)
	}
}

func TestSettingsUpdateIdempotent(t *testing.T) {
	repo := &fakeSettingsRepo{}
	uc := NewSettingsUsecase(repo)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := uc.Update(ctx, "did:plc:alice", false); err != nil {
			t.Fatalf("update failed: %v", err)
		}
	}

	settings, err := uc.Get(ctx, "did:plc:alice")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if settings.EnableFeedPosts {
		t.Fatalf("expected enableFeedPosts=false after update")
	}

	if _, err := uc.Update(ctx, "did:plc:alice", true); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	settings, err = uc.Get(ctx, "did:plc:alice")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !settings.EnableFeedPosts {
		t.Fatalf("expected enableFeedPosts=true after second update")
	}
}
