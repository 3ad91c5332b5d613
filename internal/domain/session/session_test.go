package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"flightbook/internal/core/tx"
	"flightbook/internal/domain/itinerary"
)

type stubManager struct {
	open int32
}

func (m *stubManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (m *stubManager) RunWithRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (m *stubManager) OpenTransactions() int32 { return m.open }

func TestRunInjectsSessionManager(t *testing.T) {
	m := &stubManager{}
	s := New(m)

	err := s.Run(context.Background(), func(ctx context.Context) error {
		if tx.MustFromContext(ctx) != tx.Manager(m) {
			t.Error("fn did not receive the session's manager")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunPropagatesError(t *testing.T) {
	s := New(&stubManager{})
	wantErr := errors.New("boom")
	if err := s.Run(context.Background(), func(ctx context.Context) error { return wantErr }); !errors.Is(err, wantErr) {
		t.Fatalf("error = %v, want %v", err, wantErr)
	}
}

func TestRunPanicsOnDanglingTransaction(t *testing.T) {
	m := &stubManager{}
	s := New(m)

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic")
		}
		if _, ok := r.(*tx.InvariantError); !ok {
			t.Fatalf("panic value is %T, want *tx.InvariantError", r)
		}
	}()
	_ = s.Run(context.Background(), func(ctx context.Context) error {
		m.open = 1 // simulate a transaction left open by fn
		return nil
	})
}

func TestSessionState(t *testing.T) {
	s := New(&stubManager{})

	if s.LoggedIn() || s.Username() != "" {
		t.Error("new session should not be logged in")
	}
	s.SetUser("alice")
	if !s.LoggedIn() || s.Username() != "alice" {
		t.Error("SetUser did not take effect")
	}
}

func TestItineraryCache(t *testing.T) {
	s := New(&stubManager{})

	if _, ok := s.Itinerary(0); ok {
		t.Error("empty cache returned a hit")
	}

	s.SetItineraries(map[int]itinerary.Legs{
		0: {First: 10, Second: itinerary.NoSecondLeg},
		1: {First: 20, Second: 21},
	})
	legs, ok := s.Itinerary(1)
	if !ok || legs.First != 20 || legs.Second != 21 {
		t.Errorf("Itinerary(1) = %+v, %v", legs, ok)
	}

	s.ClearItineraries()
	if _, ok := s.Itinerary(0); ok {
		t.Error("cache not cleared")
	}
}

func TestSessionStateReadableDuringRun(t *testing.T) {
	s := New(&stubManager{})

	// Middleware reads identity outside Run while an operation on the same
	// session mutates it inside Run; both must be safe under the race
	// detector.
	var wg sync.WaitGroup
	start := make(chan struct{})
	wg.Add(2)
	go func() {
		defer wg.Done()
		<-start
		_ = s.Run(context.Background(), func(ctx context.Context) error {
			s.SetUser("alice")
			s.SetItineraries(map[int]itinerary.Legs{0: {First: 1, Second: itinerary.NoSecondLeg}})
			return nil
		})
	}()
	go func() {
		defer wg.Done()
		<-start
		for i := 0; i < 100; i++ {
			_ = s.Username()
			_ = s.LoggedIn()
			_, _ = s.Itinerary(0)
		}
	}()
	close(start)
	wg.Wait()

	if !s.LoggedIn() || s.Username() != "alice" {
		t.Error("login state lost")
	}
}

func TestRegistry(t *testing.T) {
	managers := 0
	r := NewRegistry(func() tx.Manager {
		managers++
		return &stubManager{}
	})

	a := r.Create()
	b := r.Create()
	if managers != 2 {
		t.Errorf("managers created = %d, want one per session", managers)
	}
	if a.Manager() == b.Manager() {
		t.Error("sessions share a manager")
	}
	if r.Len() != 2 {
		t.Errorf("Len = %d, want 2", r.Len())
	}

	got, ok := r.Get(a.ID())
	if !ok || got != a {
		t.Error("Get did not return the registered session")
	}

	r.Remove(a.ID())
	if _, ok := r.Get(a.ID()); ok {
		t.Error("session still present after Remove")
	}
	if r.Len() != 1 {
		t.Errorf("Len = %d after Remove, want 1", r.Len())
	}
}

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService(DefaultTokenConfig("secret"))
	id := uuid.New()

	token, expiresAt, err := svc.Issue(id)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !expiresAt.After(time.Now()) {
		t.Error("token already expired at issue time")
	}

	got, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got != id {
		t.Errorf("session id = %s, want %s", got, id)
	}
}

func TestTokenValidationFailures(t *testing.T) {
	svc := NewTokenService(DefaultTokenConfig("secret"))
	token, _, err := svc.Issue(uuid.New())
	if err != nil {
		t.Fatal(err)
	}

	other := NewTokenService(DefaultTokenConfig("different-secret"))
	if _, err := other.Validate(token); err == nil {
		t.Error("token signed with another secret validated")
	}

	if _, err := svc.Validate("not-a-token"); err == nil {
		t.Error("garbage token validated")
	}

	expired := NewTokenService(TokenConfig{Secret: "secret", Issuer: "flightbook", TTL: -time.Hour})
	token, _, err = expired.Issue(uuid.New())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Validate(token); err == nil {
		t.Error("expired token validated")
	}
}
