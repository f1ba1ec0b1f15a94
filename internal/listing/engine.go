// internal/listing/engine.go
package listing

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/unclebandit/smsleopard-console/internal/backend"
	"github.com/unclebandit/smsleopard-console/internal/model"
)

// Lister is the slice of the backend the listing engine needs.
type Lister interface {
	ListCampaigns(ctx context.Context, page, pageSize int, status, channel string) ([]model.Campaign, int, error)
}

// Query is the current listing state: server-side page and filters plus the
// client-side search text.
type Query struct {
	Page     int
	PageSize int
	Status   string
	Channel  string
	Search   string
}

// State is the listing view state. Exactly one holds at a time.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateError
)

// Engine composes pagination, status/channel filters and free-text search
// for the campaign list. Filters and pagination are server-side; search is
// applied to the fetched page only (see Load).
type Engine struct {
	mu     sync.Mutex
	lister Lister
	log    *zap.Logger

	query   Query
	gen     uint64
	state   State
	rows    []model.Campaign
	total   int
	lastErr error
}

func NewEngine(lister Lister, pageSize int, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		lister: lister,
		log:    log,
		query: Query{
			Page:     1,
			PageSize: pageSize,
			Status:   backend.FilterAll,
			Channel:  backend.FilterAll,
		},
	}
}

// SetStatusFilter narrows the list to one status, or backend.FilterAll for
// no constraint. Changing the filter resets the page to 1.
func (e *Engine) SetStatusFilter(status string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.query.Status == status {
		return
	}
	e.query.Status = status
	e.resetPageLocked()
}

func (e *Engine) SetChannelFilter(channel string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.query.Channel == channel {
		return
	}
	e.query.Channel = channel
	e.resetPageLocked()
}

// SetSearch sets the free-text search. Like the filters, any change resets
// the page to 1 so the operator never lands on an out-of-range page.
func (e *Engine) SetSearch(search string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.query.Search == search {
		return
	}
	e.query.Search = search
	e.resetPageLocked()
}

func (e *Engine) resetPageLocked() {
	e.query.Page = 1
	e.gen++
}

// NextPage, PrevPage and SetPage clamp navigation to [1, TotalPages];
// out-of-range attempts are no-ops.
func (e *Engine) NextPage() { e.SetPage(e.Query().Page + 1) }
func (e *Engine) PrevPage() { e.SetPage(e.Query().Page - 1) }

func (e *Engine) SetPage(page int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if page < 1 || page > e.totalPagesLocked() {
		return
	}
	if page == e.query.Page {
		return
	}
	e.query.Page = page
	e.gen++
}

// Load fetches the current page from the backend and applies the search
// text to the returned rows. The search is a client-side substring match
// over name and template of the fetched page only: it can hide rows from
// the current page but cannot pull matching rows from other pages, and
// Total keeps the pre-search server count. That asymmetry is the specified
// behavior of this view, kept as-is.
//
// A response that arrives after the query has moved on is discarded, so the
// latest query always wins over a slower superseded request.
func (e *Engine) Load(ctx context.Context) error {
	e.mu.Lock()
	q := e.query
	gen := e.gen
	e.state = StateLoading
	e.mu.Unlock()

	rows, total, err := e.lister.ListCampaigns(ctx, q.Page, q.PageSize, q.Status, q.Channel)

	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.gen {
		e.log.Debug("discarding stale listing response",
			zap.Int("page", q.Page), zap.String("search", q.Search))
		return nil
	}
	if err != nil {
		// Previous rows stay visible behind the error banner.
		e.state = StateError
		e.lastErr = err
		return err
	}

	e.rows = filterBySearch(rows, q.Search)
	e.total = total
	e.state = StateLoaded
	e.lastErr = nil
	return nil
}

func filterBySearch(rows []model.Campaign, search string) []model.Campaign {
	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return rows
	}
	filtered := make([]model.Campaign, 0, len(rows))
	for _, c := range rows {
		if strings.Contains(strings.ToLower(c.Name), needle) ||
			strings.Contains(strings.ToLower(c.Template), needle) {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

// Rows returns the visible rows of the current page, after search filtering.
func (e *Engine) Rows() []model.Campaign {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]model.Campaign, len(e.rows))
	copy(out, e.rows)
	return out
}

// Total is the server-side total count for the active filters. Search does
// not change it.
func (e *Engine) Total() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.total
}

// TotalPages is ceil(Total/PageSize), never below 1 so page clamping always
// has a valid range.
func (e *Engine) TotalPages() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.totalPagesLocked()
}

func (e *Engine) totalPagesLocked() int {
	pages := (e.total + e.query.PageSize - 1) / e.query.PageSize
	if pages < 1 {
		pages = 1
	}
	return pages
}

func (e *Engine) Query() Query {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.query
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}
