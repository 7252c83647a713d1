package web

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"ci-dashboard/connectors/config"
	"ci-dashboard/domain/action"
	"ci-dashboard/domain/loss"
)

// Store holds one dashboard session's mutable state: the loaded tables plus
// everything the user adds by hand. Nothing here survives the process; that
// is the product's contract, not a shortcut. The mutex exists because echo
// serves handlers on separate goroutines, even though a single browser
// session mutates sequentially in practice.
type Store struct {
	mu  sync.Mutex
	cfg *config.Config
	now func() time.Time

	oae      []loss.OAERecord
	losses   []loss.Record
	actions  []action.Item
	fiveWhys []action.FiveWhy
	seeded   bool
}

// NewStore creates a session store around the given dataset.
func NewStore(cfg *config.Config, oae []loss.OAERecord, losses []loss.Record) *Store {
	return &Store{cfg: cfg, now: time.Now, oae: oae, losses: losses}
}

// ReplaceData swaps in a freshly uploaded dataset. Nil slices keep the
// current table, so a partial upload only replaces what it carried.
func (s *Store) ReplaceData(oae []loss.OAERecord, losses []loss.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if oae != nil {
		s.oae = oae
	}
	if losses != nil {
		s.losses = losses
	}
}

// OAE returns a copy of the trend table.
func (s *Store) OAE() []loss.OAERecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]loss.OAERecord(nil), s.oae...)
}

// Losses returns a copy of the loss table.
func (s *Store) Losses() []loss.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]loss.Record(nil), s.losses...)
}

// AddLoss appends an ad-hoc loss entry for this session.
func (s *Store) AddLoss(r loss.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.losses = append(s.losses, r)
}

// Actions returns the tracker, auto-seeding it from the latest week's top
// level-2 reasons on first touch.
func (s *Store) Actions() []action.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureSeededLocked()
	return append([]action.Item(nil), s.actions...)
}

func (s *Store) ensureSeededLocked() {
	if s.seeded {
		return
	}
	week := loss.FilterWeek(s.losses, loss.LatestWeek(s.losses))
	s.actions = action.Seed(week, s.now())
	s.seeded = true
}

// AddAction appends an action, assigning an ID and defaulting blank fields.
func (s *Store) AddAction(it action.Item) action.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureSeededLocked()
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	if it.Type == "" {
		it.Type = action.TypeTemporary
	}
	if it.Status == "" {
		it.Status = action.StatusNotStarted
	}
	if it.Target == "" {
		it.Target = s.now().AddDate(0, 0, action.DefaultDueOffset).Format("2006-01-02")
	}
	s.actions = append(s.actions, it)
	return it
}

// ImportActions replaces the tracker with an imported list.
func (s *Store) ImportActions(items []action.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = items
	s.seeded = true
}

// UpdateStatus changes one action's status by ID.
func (s *Store) UpdateStatus(id, status string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.actions {
		if s.actions[i].ID == id {
			s.actions[i].Status = status
			return true
		}
	}
	return false
}

// Alerts evaluates the current tracker against today.
func (s *Store) Alerts() []action.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureSeededLocked()
	return action.Evaluate(s.actions, s.now())
}

// AddFiveWhy records a 5-Why note set.
func (s *Store) AddFiveWhy(fw action.FiveWhy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fiveWhys = append(s.fiveWhys, fw)
}

// FiveWhys returns the recorded note sets.
func (s *Store) FiveWhys() []action.FiveWhy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]action.FiveWhy(nil), s.fiveWhys...)
}
