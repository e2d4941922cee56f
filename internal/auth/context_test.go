package auth

import (
	"context"
	"testing"
)

func TestUserIDFromContext(t *testing.T) {
	t.Parallel()

	if got := UserIDFromContext(context.Background()); got != "" {
		t.Errorf("expected empty user id, got %q", got)
	}

	ctx := ContextWithUserID(context.Background(), "01HUSER")
	if got := UserIDFromContext(ctx); got != "01HUSER" {
		t.Errorf("expected 01HUSER, got %q", got)
	}
}
