// internal/targeting/session.go
package targeting

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/unclebandit/smsleopard-console/internal/backend"
	appErrors "github.com/unclebandit/smsleopard-console/internal/errors"
	"github.com/unclebandit/smsleopard-console/internal/lifecycle"
	"github.com/unclebandit/smsleopard-console/internal/model"
)

// DirectoryLoader supplies the selectable recipient pool.
type DirectoryLoader interface {
	ListCustomers(ctx context.Context, limit, offset int) ([]model.Customer, error)
}

// Dispatcher commits a (campaign, recipient set) pair for sending.
type Dispatcher interface {
	SendCampaign(ctx context.Context, campaignID int, customerIDs []int) (*backend.SendResult, error)
}

// State is the session view state. Exactly one holds at a time; there is no
// separate loading flag or error flag to fall out of sync.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateError
	StateClosed
)

// WholeSetOp is the operation SelectAll resolved to, computed from the
// current selection cardinality. The operator has a single affordance that
// toggles the entire set; the tag keeps that behavior explicit.
type WholeSetOp int

const (
	OpSelectAll WholeSetOp = iota
	OpClear
	OpNone
)

// Session is the transient selection set an operator builds before a
// dispatch. It references customers by id only and is discarded on cancel
// or successful submission, never persisted.
type Session struct {
	mu sync.Mutex

	campaignID int
	directory  []model.Customer
	selected   map[int]struct{}
	state      State
	lastErr    error
	loadGen    uint64

	dir   DirectoryLoader
	disp  Dispatcher
	limit int
	log   *zap.Logger
}

// NewSession opens a targeting session for a campaign. Campaigns outside
// the dispatch-eligible states (draft, scheduled) are rejected outright;
// the caller must not offer the action for them.
func NewSession(campaign *model.Campaign, dir DirectoryLoader, disp Dispatcher, directoryLimit int, log *zap.Logger) (*Session, error) {
	if !lifecycle.DispatchEligible(campaign.Status) {
		return nil, fmt.Errorf("campaign %d cannot be dispatched in status %q", campaign.ID, campaign.Status)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{
		campaignID: campaign.ID,
		selected:   make(map[int]struct{}),
		dir:        dir,
		disp:       disp,
		limit:      directoryLimit,
		log:        log,
	}, nil
}

// Open loads the directory snapshot. While the load is in flight the
// selection stays empty and mutations are no-ops. A failed load leaves the
// session open in the error state with an empty directory; calling Open
// again retries.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return fmt.Errorf("targeting session for campaign %d is closed", s.campaignID)
	}
	s.state = StateLoading
	s.loadGen++
	gen := s.loadGen
	limit := s.limit
	s.mu.Unlock()

	customers, err := s.dir.ListCustomers(ctx, limit, 0)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.loadGen || s.state == StateClosed {
		return nil
	}
	if err != nil {
		s.state = StateError
		s.lastErr = err
		s.directory = nil
		return fmt.Errorf("failed to load customer directory: %w", err)
	}

	s.directory = customers
	s.pruneSelectionLocked()
	s.state = StateLoaded
	s.lastErr = nil
	return nil
}

// pruneSelectionLocked drops selected ids that are not in the directory
// snapshot. The selection only ever references loaded customers.
func (s *Session) pruneSelectionLocked() {
	present := make(map[int]struct{}, len(s.directory))
	for _, c := range s.directory {
		present[c.ID] = struct{}{}
	}
	for id := range s.selected {
		if _, ok := present[id]; !ok {
			delete(s.selected, id)
		}
	}
}

// Toggle flips membership of one customer. Toggling twice restores the
// prior selection. Ids outside the loaded directory are ignored.
func (s *Session) Toggle(customerID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateLoaded {
		return
	}
	if !s.inDirectoryLocked(customerID) {
		return
	}
	if _, ok := s.selected[customerID]; ok {
		delete(s.selected, customerID)
	} else {
		s.selected[customerID] = struct{}{}
	}
}

func (s *Session) inDirectoryLocked(customerID int) bool {
	for _, c := range s.directory {
		if c.ID == customerID {
			return true
		}
	}
	return false
}

// SelectAll toggles the whole set: a full selection is cleared, anything
// less becomes the full directory. The returned tag says which way it went.
func (s *Session) SelectAll() WholeSetOp {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateLoaded || len(s.directory) == 0 {
		return OpNone
	}
	if len(s.selected) == len(s.directory) {
		s.selected = make(map[int]struct{})
		return OpClear
	}
	for _, c := range s.directory {
		s.selected[c.ID] = struct{}{}
	}
	return OpSelectAll
}

// Selected returns the selected customer ids in ascending order.
func (s *Session) Selected() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedLocked()
}

func (s *Session) selectedLocked() []int {
	ids := make([]int, 0, len(s.selected))
	for id := range s.selected {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (s *Session) IsSelected(customerID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.selected[customerID]
	return ok
}

func (s *Session) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.selected)
}

// Directory returns the loaded snapshot.
func (s *Session) Directory() []model.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Customer, len(s.directory))
	copy(out, s.directory)
	return out
}

func (s *Session) CampaignID() int { return s.campaignID }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Submit dispatches the selection. An empty selection is rejected with
// ErrEmptySelection before any network call. On success the selection is
// cleared and the session closes; on failure selection and state are left
// untouched so the operator can retry without re-selecting.
func (s *Session) Submit(ctx context.Context) (*backend.SendResult, error) {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return nil, fmt.Errorf("targeting session for campaign %d is closed", s.campaignID)
	}
	if len(s.selected) == 0 {
		s.mu.Unlock()
		return nil, appErrors.ErrEmptySelection
	}
	ids := s.selectedLocked()
	s.mu.Unlock()

	result, err := s.disp.SendCampaign(ctx, s.campaignID, ids)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.selected = make(map[int]struct{})
	s.state = StateClosed
	s.mu.Unlock()

	s.log.Info("targeting session submitted",
		zap.Int("campaign_id", s.campaignID),
		zap.Int("recipients", len(ids)),
		zap.Int("messages_queued", result.QueuedCount))
	return result, nil
}

// Cancel discards the selection and closes the session.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = make(map[int]struct{})
	s.state = StateClosed
}
