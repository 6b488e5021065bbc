package integration

import (
	"context"
	"io"
	"testing"

	"genomecmp/internal/app"
)

func TestCancelledContext_Exit130(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	code := app.RunContext(ctx, f.args("-n", "1000000"), io.Discard, io.Discard)
	if code != 130 {
		t.Fatalf("expected exit 130 on cancel, got %d", code)
	}
}
