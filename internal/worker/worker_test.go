package worker

import (
	"context"
	"testing"

	"taskdeck/internal/cache"
)

func TestHandleMessage(t *testing.T) {
	ctx := context.Background()
	// Cache with no Redis client: invalidations are no-ops, which is all
	// handleMessage needs to exercise its parsing and routing.
	c := &cache.Cache{}

	t.Run("project event", func(t *testing.T) {
		payload := []byte(`{"entity":"project","action":"delete","id":3,"user_id":7}`)
		if err := handleMessage(ctx, c, payload); err != nil {
			t.Errorf("handleMessage: %v", err)
		}
	})

	t.Run("todo event", func(t *testing.T) {
		payload := []byte(`{"entity":"todo","action":"update","id":9,"user_id":7,"project_id":3}`)
		if err := handleMessage(ctx, c, payload); err != nil {
			t.Errorf("handleMessage: %v", err)
		}
	})

	t.Run("unknown entity is ignored", func(t *testing.T) {
		payload := []byte(`{"entity":"widget","action":"create","id":1,"user_id":7}`)
		if err := handleMessage(ctx, c, payload); err != nil {
			t.Errorf("handleMessage: %v", err)
		}
	})

	t.Run("malformed payload errors", func(t *testing.T) {
		if err := handleMessage(ctx, c, []byte("{broken")); err == nil {
			t.Error("expected error for malformed payload")
		}
	})
}
