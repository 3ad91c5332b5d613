package itinerary

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/google/uuid"

	"flightbook/internal/core/apperror"
	"flightbook/internal/core/tx"
)

type stubManager struct{}

func (m *stubManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (m *stubManager) RunWithRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (m *stubManager) OpenTransactions() int32 { return 0 }

type fakeSession struct {
	id      uuid.UUID
	m       tx.Manager
	cache   map[int]Legs
	cleared int
}

func newFakeSession() *fakeSession {
	return &fakeSession{id: uuid.New(), m: &stubManager{}}
}

func (s *fakeSession) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	defer tx.AssertClean(s.m)
	return fn(tx.WithManager(ctx, s.m))
}

func (s *fakeSession) ID() uuid.UUID { return s.id }

func (s *fakeSession) ClearItineraries() {
	s.cleared++
	s.cache = nil
}

func (s *fakeSession) SetItineraries(cache map[int]Legs) { s.cache = cache }

type fakeFlights struct {
	byID      map[int64]Flight
	direct    []DirectCandidate
	twoHop    []TwoHopCandidate
	directErr error
}

func (f *fakeFlights) ByID(ctx context.Context, fid int64) (*Flight, error) {
	fl, ok := f.byID[fid]
	if !ok {
		return nil, errors.New("flight not found")
	}
	return &fl, nil
}

func (f *fakeFlights) Direct(ctx context.Context, origin, dest string, day, limit int) ([]DirectCandidate, error) {
	if f.directErr != nil {
		return nil, f.directErr
	}
	if limit > len(f.direct) {
		limit = len(f.direct)
	}
	return f.direct[:limit], nil
}

func (f *fakeFlights) TwoHop(ctx context.Context, origin, dest string, day, limit int) ([]TwoHopCandidate, error) {
	if limit > len(f.twoHop) {
		limit = len(f.twoHop)
	}
	return f.twoHop[:limit], nil
}

// fakeScratch mimics the scratch table: session-scoped rows pulled back in
// (total time, first leg, second leg) order.
type fakeScratch struct {
	rows map[uuid.UUID][]StagedRow
}

func newFakeScratch() *fakeScratch {
	return &fakeScratch{rows: make(map[uuid.UUID][]StagedRow)}
}

func (s *fakeScratch) Clear(ctx context.Context, sessionID uuid.UUID) error {
	delete(s.rows, sessionID)
	return nil
}

func (s *fakeScratch) Stage(ctx context.Context, sessionID uuid.UUID, rows []StagedRow) error {
	s.rows[sessionID] = append(s.rows[sessionID], rows...)
	return nil
}

func (s *fakeScratch) CountDirect(ctx context.Context, sessionID uuid.UUID) (int, error) {
	n := 0
	for _, r := range s.rows[sessionID] {
		if r.NumFlights == 1 {
			n++
		}
	}
	return n, nil
}

func (s *fakeScratch) Direct(ctx context.Context, sessionID uuid.UUID, limit int) ([]StagedRow, error) {
	return s.pull(sessionID, 1, limit), nil
}

func (s *fakeScratch) Indirect(ctx context.Context, sessionID uuid.UUID, limit int) ([]StagedRow, error) {
	return s.pull(sessionID, 2, limit), nil
}

func (s *fakeScratch) pull(sessionID uuid.UUID, numFlights, limit int) []StagedRow {
	var out []StagedRow
	for _, r := range s.rows[sessionID] {
		if r.NumFlights == numFlights {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalTime != out[j].TotalTime {
			return out[i].TotalTime < out[j].TotalTime
		}
		if out[i].FidOne != out[j].FidOne {
			return out[i].FidOne < out[j].FidOne
		}
		return out[i].FidTwo < out[j].FidTwo
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func testCatalog() *fakeFlights {
	return &fakeFlights{
		byID: map[int64]Flight{
			1: {ID: 1, Duration: 100, Price: 100},
			2: {ID: 2, Duration: 200, Price: 150},
			3: {ID: 3, Duration: 70, Price: 80},
			4: {ID: 4, Duration: 80, Price: 90},
			5: {ID: 5, Duration: 120, Price: 60},
			6: {ID: 6, Duration: 130, Price: 70},
		},
		direct: []DirectCandidate{
			{Fid: 1, Duration: 100},
			{Fid: 2, Duration: 200},
		},
		twoHop: []TwoHopCandidate{
			{FidOne: 3, FidTwo: 4, Duration: 150},
			{FidOne: 5, FidTwo: 6, Duration: 250},
		},
	}
}

func query(limit int, directOnly bool) Query {
	return Query{Origin: "Seattle WA", Dest: "Boston MA", DirectOnly: directOnly, Day: 14, Limit: limit}
}

func TestSearchValidation(t *testing.T) {
	svc := NewService(testCatalog(), newFakeScratch())
	sess := newFakeSession()

	tests := []struct {
		name string
		q    Query
	}{
		{"missing origin", Query{Dest: "Boston MA", Day: 1, Limit: 1}},
		{"missing dest", Query{Origin: "Seattle WA", Day: 1, Limit: 1}},
		{"day too small", Query{Origin: "a", Dest: "b", Day: 0, Limit: 1}},
		{"day too large", Query{Origin: "a", Dest: "b", Day: 32, Limit: 1}},
		{"zero limit", Query{Origin: "a", Dest: "b", Day: 1, Limit: 0}},
	}
	for _, tt := range tests {
		_, err := svc.Search(context.Background(), sess, tt.q)
		if !apperror.IsCode(err, apperror.CodeValidation) {
			t.Errorf("%s: error = %v, want VALIDATION_ERROR", tt.name, err)
		}
	}
}

func TestSearchDirectOnly(t *testing.T) {
	svc := NewService(testCatalog(), newFakeScratch())
	sess := newFakeSession()

	results, err := svc.Search(context.Background(), sess, query(5, true))
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d itineraries, want 2", len(results))
	}
	for i, want := range []int64{1, 2} {
		if results[i].Index != i {
			t.Errorf("results[%d].Index = %d", i, results[i].Index)
		}
		if got := results[i].Flights[0].ID; got != want {
			t.Errorf("results[%d] flight = %d, want %d", i, got, want)
		}
		if len(results[i].Flights) != 1 {
			t.Errorf("results[%d] has %d flights", i, len(results[i].Flights))
		}
	}
}

func TestSearchIndirectFillsRemainderFirst(t *testing.T) {
	svc := NewService(testCatalog(), newFakeScratch())
	sess := newFakeSession()

	// Two direct candidates and limit three: one two-hop slot remains, and
	// the two-hop itinerary leads the output.
	results, err := svc.Search(context.Background(), sess, query(3, false))
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d itineraries, want 3", len(results))
	}

	first := results[0]
	if len(first.Flights) != 2 || first.Flights[0].ID != 3 || first.Flights[1].ID != 4 {
		t.Errorf("results[0] = %+v, want two-hop 3->4", first.Flights)
	}
	if first.TotalTime != 150 {
		t.Errorf("results[0].TotalTime = %d, want 150", first.TotalTime)
	}
	if results[1].Flights[0].ID != 1 || results[2].Flights[0].ID != 2 {
		t.Errorf("direct itineraries out of order: %d, %d",
			results[1].Flights[0].ID, results[2].Flights[0].ID)
	}

	// The cache is keyed by the zero-based display index.
	if legs := sess.cache[0]; legs.First != 3 || legs.Second != 4 {
		t.Errorf("cache[0] = %+v", legs)
	}
	if legs := sess.cache[1]; legs.First != 1 || legs.Second != NoSecondLeg {
		t.Errorf("cache[1] = %+v", legs)
	}
}

func TestSearchDirectFillLeavesNoIndirectRoom(t *testing.T) {
	svc := NewService(testCatalog(), newFakeScratch())
	sess := newFakeSession()

	results, err := svc.Search(context.Background(), sess, query(2, false))
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d itineraries, want 2", len(results))
	}
	for i, it := range results {
		if len(it.Flights) != 1 {
			t.Errorf("results[%d] is not direct: %+v", i, it.Flights)
		}
	}
}

func TestSearchEmptyResultIsNotAnError(t *testing.T) {
	flights := &fakeFlights{byID: map[int64]Flight{}}
	svc := NewService(flights, newFakeScratch())
	sess := newFakeSession()

	results, err := svc.Search(context.Background(), sess, query(5, false))
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d itineraries, want none", len(results))
	}
}

func TestSearchClearsScratchAndPreviousCache(t *testing.T) {
	scratch := newFakeScratch()
	svc := NewService(testCatalog(), scratch)
	sess := newFakeSession()

	if _, err := svc.Search(context.Background(), sess, query(3, false)); err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(scratch.rows[sess.ID()]) != 0 {
		t.Error("scratch rows survived the search")
	}

	// A failing search still drops the previous cache.
	failing := NewService(&fakeFlights{directErr: errors.New("store down")}, scratch)
	cleared := sess.cleared
	_, err := failing.Search(context.Background(), sess, query(3, false))
	if !apperror.IsCode(err, apperror.CodeSearchFailed) {
		t.Fatalf("error = %v, want SEARCH_FAILED", err)
	}
	if sess.cleared != cleared+1 {
		t.Error("failed search did not clear the previous cache")
	}
	if sess.cache != nil {
		t.Error("cache should stay empty after a failed search")
	}
}
