package session

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/erazemk/lostfound/internal/model"
)

func TestActiveSessionsGauge(t *testing.T) {
	m := setupManager(t, setupBackend(t))
	g := RegisterMetrics(prometheus.NewRegistry(), m)

	if v := testutil.ToFloat64(g); v != 0 {
		t.Fatalf("gauge before login = %v, want 0", v)
	}
	s, _, err := m.Login(context.Background(), model.Credentials{Email: "alice@example.com", Password: "password1"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if v := testutil.ToFloat64(g); v != 1 {
		t.Errorf("gauge after login = %v, want 1", v)
	}
	s.Unauthorized()
	if v := testutil.ToFloat64(g); v != 0 {
		t.Errorf("gauge after expiry = %v, want 0", v)
	}
}
