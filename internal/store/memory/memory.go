// Package memory is an in-process store.Store used by service and handler tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gardenhub/backend/internal/lifecycle"
	"github.com/gardenhub/backend/internal/models"
	"github.com/gardenhub/backend/internal/store"
)

type pair struct{ a, b uuid.UUID }

type tables struct {
	users       map[uuid.UUID]models.User
	gardens     map[uuid.UUID]models.Garden
	memberships map[pair]models.Membership // (user, garden)
	discussions map[uuid.UUID]models.Discussion
	replies     map[uuid.UUID]models.DiscussionReply
	events      map[uuid.UUID]models.Event
	attendees   map[pair]models.EventAttendee // (event, user)
	photos      map[uuid.UUID]models.Photo
	resources   map[uuid.UUID]models.Resource
	guides      map[uuid.UUID]models.Guide
	stats       map[uuid.UUID]models.Stat
}

func newTables() *tables {
	return &tables{
		users:       map[uuid.UUID]models.User{},
		gardens:     map[uuid.UUID]models.Garden{},
		memberships: map[pair]models.Membership{},
		discussions: map[uuid.UUID]models.Discussion{},
		replies:     map[uuid.UUID]models.DiscussionReply{},
		events:      map[uuid.UUID]models.Event{},
		attendees:   map[pair]models.EventAttendee{},
		photos:      map[uuid.UUID]models.Photo{},
		resources:   map[uuid.UUID]models.Resource{},
		guides:      map[uuid.UUID]models.Guide{},
		stats:       map[uuid.UUID]models.Stat{},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (t *tables) clone() *tables {
	return &tables{
		users:       cloneMap(t.users),
		gardens:     cloneMap(t.gardens),
		memberships: cloneMap(t.memberships),
		discussions: cloneMap(t.discussions),
		replies:     cloneMap(t.replies),
		events:      cloneMap(t.events),
		attendees:   cloneMap(t.attendees),
		photos:      cloneMap(t.photos),
		resources:   cloneMap(t.resources),
		guides:      cloneMap(t.guides),
		stats:       cloneMap(t.stats),
	}
}

type state struct {
	mu   sync.Mutex
	txMu sync.Mutex
	t    *tables
	last time.Time

	// Fail, when set, is returned by every repository call. Tests use it to simulate an
	// unavailable database.
	fail error
}

// now returns strictly increasing timestamps so ordering by time is deterministic.
func (s *state) now() time.Time {
	n := time.Now().UTC()
	if !n.After(s.last) {
		n = s.last.Add(time.Microsecond)
	}
	s.last = n
	return n
}

// Store is a map-backed store.Store. Transactions are serialized and rolled back by
// restoring a snapshot.
type Store struct {
	st   *state
	inTx bool
}

// New returns an empty Store.
func New() *Store {
	return &Store{st: &state{t: newTables()}}
}

// FailWith makes every subsequent repository call return err; nil clears it.
func (s *Store) FailWith(err error) {
	s.st.mu.Lock()
	s.st.fail = err
	s.st.mu.Unlock()
}

func (s *Store) Users() store.UserRepository             { return users{s.st} }
func (s *Store) Gardens() store.GardenRepository         { return gardens{s.st} }
func (s *Store) Memberships() store.MembershipRepository { return memberships{s.st} }
func (s *Store) Discussions() store.DiscussionRepository { return discussions{s.st} }
func (s *Store) Replies() store.ReplyRepository          { return replies{s.st} }
func (s *Store) Events() store.EventRepository           { return events{s.st} }
func (s *Store) Attendees() store.AttendeeRepository     { return attendees{s.st} }
func (s *Store) Photos() store.PhotoRepository           { return photos{s.st} }
func (s *Store) Resources() store.ResourceRepository     { return resources{s.st} }
func (s *Store) Guides() store.GuideRepository           { return guides{s.st} }
func (s *Store) Stats() store.StatRepository             { return stats{s.st} }

// WithTx runs fn with exclusive access to the transaction slot. If fn fails, every write
// made through tx is undone.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.st.txMu.Lock()
	defer s.st.txMu.Unlock()

	s.st.mu.Lock()
	if s.st.fail != nil {
		err := s.st.fail
		s.st.mu.Unlock()
		return err
	}
	snapshot := s.st.t.clone()
	s.st.mu.Unlock()

	if err := fn(&Store{st: s.st, inTx: true}); err != nil {
		s.st.mu.Lock()
		s.st.t = snapshot
		s.st.mu.Unlock()
		return err
	}
	return ctx.Err()
}

// lock acquires the state and reports the injected failure, if any.
func (s *state) lock() (*tables, error) {
	s.mu.Lock()
	if s.fail != nil {
		err := s.fail
		s.mu.Unlock()
		return nil, err
	}
	return s.t, nil
}

func (s *state) unlock() { s.mu.Unlock() }

// remove deletes or deactivates an entry according to lifecycle.ModeOf(entity).
func remove[V any](m map[uuid.UUID]V, id uuid.UUID, entity models.Entity, deactivate func(*V) bool) (lifecycle.Mode, error) {
	mode := lifecycle.ModeOf(entity)
	v, ok := m[id]
	if !ok {
		return mode, store.ErrNotFound
	}
	if mode == lifecycle.SoftDelete {
		if !deactivate(&v) {
			return mode, store.ErrNotFound
		}
		m[id] = v
		return mode, nil
	}
	delete(m, id)
	return mode, nil
}

// page applies offset and limit to a sorted slice.
func page[V any](list []V, f store.ListFilter) []V {
	off := max(f.Offset, 0)
	if off >= len(list) {
		return nil
	}
	list = list[off:]
	if l := f.PageLimit(); len(list) > l {
		list = list[:l]
	}
	return list
}

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// visibleTo applies store.ListFilter.VisibleTo to a hidden row.
func (t *tables) visibleTo(viewer *uuid.UUID, owner uuid.UUID, gardenID *uuid.UUID) bool {
	if viewer == nil || *viewer == owner {
		return true
	}
	if gardenID == nil {
		return false
	}
	m, ok := t.memberships[pair{*viewer, *gardenID}]
	return ok && m.IsActive
}

func sameGarden(id *uuid.UUID, want *uuid.UUID) bool {
	return want == nil || (id != nil && *id == *want)
}

func sortBy[V any](list []V, less func(a, b V) bool) {
	sort.SliceStable(list, func(i, j int) bool { return less(list[i], list[j]) })
}
