package signal_test

import (
	"testing"
	"time"

	"pointdeck/internal/adapters/signal"
)

func TestJoinRateLimiter(t *testing.T) {
	rl := signal.NewJoinRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !rl.Allow("sid-1") {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if rl.Allow("sid-1") {
		t.Fatal("fourth attempt inside the window must be blocked")
	}
	if !rl.Allow("sid-2") {
		t.Fatal("other sessions are limited independently")
	}
}
