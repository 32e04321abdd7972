package safety

import (
	"testing"
	"time"
)

const cartTool = "storefront_create_cart"

// fakeClock returns a now func whose value can be advanced by the test.
func fakeClock(start time.Time) (func() time.Time, func(time.Duration)) {
	current := start
	return func() time.Time { return current },
		func(d time.Duration) { current = current.Add(d) }
}

func Test_ConfirmationTracker_NeedsConfirmation_Cases(t *testing.T) {
	ct := NewConfirmationTracker([]string{cartTool}, 0)

	tests := []struct {
		name string
		tool string
		want bool
	}{
		{name: "guarded tool", tool: cartTool, want: true},
		{name: "read-only tool", tool: "storefront_get_product", want: false},
		{name: "empty name", tool: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ct.NeedsConfirmation(tt.tool); got != tt.want {
				t.Errorf("NeedsConfirmation(%q) = %v, want %v", tt.tool, got, tt.want)
			}
		})
	}
}

func Test_ConfirmationTracker_NilTrackerGuardsNothing(t *testing.T) {
	var ct *ConfirmationTracker
	if ct.NeedsConfirmation(cartTool) {
		t.Error("nil tracker should not require confirmation")
	}
}

func Test_ConfirmationTracker_RequestAndConfirm(t *testing.T) {
	ct := NewConfirmationTracker([]string{cartTool}, 0)

	token := ct.RequestConfirmation(cartTool, "cart-a", "Create a cart")
	if token == "" {
		t.Fatal("RequestConfirmation() returned an empty token")
	}
	if !ct.Confirm(token, cartTool, "cart-a") {
		t.Error("Confirm() = false for a fresh token, want true")
	}
}

func Test_ConfirmationTracker_Confirm_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		token    func(ct *ConfirmationTracker) string
		tool     string
		resource string
	}{
		{
			name:     "empty token",
			token:    func(*ConfirmationTracker) string { return "" },
			tool:     cartTool,
			resource: "cart-a",
		},
		{
			name:     "unknown token",
			token:    func(*ConfirmationTracker) string { return "deadbeef" },
			tool:     cartTool,
			resource: "cart-a",
		},
		{
			name: "different resource",
			token: func(ct *ConfirmationTracker) string {
				return ct.RequestConfirmation(cartTool, "cart-a", "")
			},
			tool:     cartTool,
			resource: "cart-b",
		},
		{
			name: "different tool",
			token: func(ct *ConfirmationTracker) string {
				return ct.RequestConfirmation(cartTool, "cart-a", "")
			},
			tool:     "storefront_query",
			resource: "cart-a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ct := NewConfirmationTracker([]string{cartTool}, 0)
			if ct.Confirm(tt.token(ct), tt.tool, tt.resource) {
				t.Error("Confirm() = true, want false")
			}
		})
	}
}

func Test_ConfirmationTracker_TokenSingleUse(t *testing.T) {
	ct := NewConfirmationTracker([]string{cartTool}, 0)
	token := ct.RequestConfirmation(cartTool, "cart-a", "")

	if !ct.Confirm(token, cartTool, "cart-a") {
		t.Fatal("first Confirm() = false, want true")
	}
	if ct.Confirm(token, cartTool, "cart-a") {
		t.Error("second Confirm() = true, want false")
	}
}

func Test_ConfirmationTracker_MismatchConsumesToken(t *testing.T) {
	ct := NewConfirmationTracker([]string{cartTool}, 0)
	token := ct.RequestConfirmation(cartTool, "cart-a", "")

	_ = ct.Confirm(token, cartTool, "cart-b")
	if ct.Confirm(token, cartTool, "cart-a") {
		t.Error("token should be consumed by a failed Confirm()")
	}
}

func Test_ConfirmationTracker_TokenExpiry(t *testing.T) {
	ct := NewConfirmationTracker([]string{cartTool}, time.Minute)
	now, advance := fakeClock(time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC))
	ct.now = now

	fresh := ct.RequestConfirmation(cartTool, "cart-a", "")
	advance(30 * time.Second)
	if !ct.Confirm(fresh, cartTool, "cart-a") {
		t.Error("token within TTL should confirm")
	}

	stale := ct.RequestConfirmation(cartTool, "cart-a", "")
	advance(time.Minute + time.Second)
	if ct.Confirm(stale, cartTool, "cart-a") {
		t.Error("token past TTL should not confirm")
	}
}

func Test_ConfirmationTracker_SweepsExpiredTokens(t *testing.T) {
	ct := NewConfirmationTracker([]string{cartTool}, time.Minute)
	now, advance := fakeClock(time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC))
	ct.now = now

	for i := 0; i < 5; i++ {
		ct.RequestConfirmation(cartTool, "cart", "")
	}
	advance(2 * time.Minute)
	ct.RequestConfirmation(cartTool, "cart", "")

	ct.mu.Lock()
	n := len(ct.tokens)
	ct.mu.Unlock()
	if n != 1 {
		t.Errorf("outstanding tokens = %d, want 1", n)
	}
}

func Test_NewConfirmationTracker_DefaultTTL(t *testing.T) {
	for _, ttl := range []time.Duration{0, -time.Second} {
		ct := NewConfirmationTracker(nil, ttl)
		if ct.ttl != DefaultTokenTTL {
			t.Errorf("ttl for %v = %v, want %v", ttl, ct.ttl, DefaultTokenTTL)
		}
	}
}
