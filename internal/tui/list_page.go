// internal/tui/list_page.go
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/unclebandit/smsleopard-console/internal/backend"
	"github.com/unclebandit/smsleopard-console/internal/lifecycle"
	"github.com/unclebandit/smsleopard-console/internal/listing"
)

var (
	statusCycle  = []string{backend.FilterAll, "draft", "scheduled", "sending", "sent", "failed"}
	channelCycle = []string{backend.FilterAll, "whatsapp", "sms"}
)

type listPage struct {
	engine *listing.Engine
	search textinput.Model
	spin   spinner.Model
	styles Styles

	cursor     int
	searching  bool
	statusIdx  int
	channelIdx int
	loading    bool
}

func newListPage(engine *listing.Engine) listPage {
	search := textinput.New()
	search.Placeholder = "search name or template"
	search.CharLimit = 64

	spin := spinner.New(spinner.WithSpinner(spinner.Dot))

	return listPage{
		engine:  engine,
		search:  search,
		spin:    spin,
		styles:  DefaultStyles(),
		loading: true,
	}
}

// update returns the next page state, a command, and the id of a campaign
// the operator opened (0 when none).
func (p listPage) update(msg tea.Msg) (listPage, tea.Cmd, int) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		p.spin, cmd = p.spin.Update(msg)
		if p.loading {
			return p, cmd, 0
		}
		return p, nil, 0

	case campaignsLoadedMsg:
		p.loading = false
		p.clampCursor()
		return p, nil, 0

	case tea.KeyMsg:
		if p.searching {
			return p.updateSearch(msg)
		}
		return p.updateKeys(msg)
	}
	return p, nil, 0
}

func (p listPage) updateSearch(msg tea.KeyMsg) (listPage, tea.Cmd, int) {
	switch msg.String() {
	case "enter":
		p.searching = false
		p.search.Blur()
		p.engine.SetSearch(p.search.Value())
		return p.reload()
	case "esc":
		p.searching = false
		p.search.Blur()
		p.search.SetValue(p.engine.Query().Search)
		return p, nil, 0
	}
	var cmd tea.Cmd
	p.search, cmd = p.search.Update(msg)
	return p, cmd, 0
}

func (p listPage) updateKeys(msg tea.KeyMsg) (listPage, tea.Cmd, int) {
	switch msg.String() {
	case "q":
		return p, tea.Quit, 0
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		p.cursor++
		p.clampCursor()
	case "enter":
		rows := p.engine.Rows()
		if p.cursor < len(rows) {
			return p, nil, rows[p.cursor].ID
		}
	case "right", "n":
		p.engine.NextPage()
		return p.reload()
	case "left", "p":
		p.engine.PrevPage()
		return p.reload()
	case "s":
		p.statusIdx = (p.statusIdx + 1) % len(statusCycle)
		p.engine.SetStatusFilter(statusCycle[p.statusIdx])
		return p.reload()
	case "c":
		p.channelIdx = (p.channelIdx + 1) % len(channelCycle)
		p.engine.SetChannelFilter(channelCycle[p.channelIdx])
		return p.reload()
	case "/":
		p.searching = true
		p.search.Focus()
		return p, textinput.Blink, 0
	case "r":
		return p.reload()
	}
	return p, nil, 0
}

func (p listPage) reload() (listPage, tea.Cmd, int) {
	p.loading = true
	p.cursor = 0
	return p, tea.Batch(p.spin.Tick, loadCampaignsCmd(p.engine)), 0
}

func (p *listPage) clampCursor() {
	if n := len(p.engine.Rows()); p.cursor >= n {
		p.cursor = n - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
}

func (p listPage) view(width int) string {
	var b strings.Builder
	b.WriteString(p.styles.Title.Render("Campaigns") + "\n\n")

	q := p.engine.Query()
	filters := fmt.Sprintf("status: %s   channel: %s   search: %s",
		q.Status, q.Channel, p.search.View())
	b.WriteString(p.styles.Muted.Render(filters) + "\n\n")

	if p.loading {
		b.WriteString(p.spin.View() + " loading campaigns...\n")
		return b.String()
	}
	if err := p.engine.Err(); err != nil {
		b.WriteString(p.styles.Error.Render("error: "+err.Error()) + "\n")
		b.WriteString(p.styles.Help.Render("press r to try again") + "\n")
		return b.String()
	}

	header := fmt.Sprintf("%-4s %-28s %-9s %-10s %12s %10s",
		"ID", "Name", "Channel", "Status", "Messages", "Delivery")
	b.WriteString(p.styles.Header.Render(header) + "\n")

	rows := p.engine.Rows()
	if len(rows) == 0 {
		b.WriteString(p.styles.Muted.Render("no campaigns match") + "\n")
	}
	for i, c := range rows {
		m := lifecycle.Derive(&c)
		line := fmt.Sprintf("%-4d %-28s %-9s %-10s %6d/%-5d %9d%%",
			c.ID, truncate(c.Name, 28), c.Channel, c.Status,
			c.SentMessages, c.TotalMessages, m.DeliveryRate)
		if i == p.cursor {
			b.WriteString(p.styles.Selected.Render(line) + "\n")
		} else {
			b.WriteString(line + "\n")
		}
	}

	b.WriteString("\n" + p.styles.Muted.Render(fmt.Sprintf("page %d/%d  %d campaigns",
		q.Page, p.engine.TotalPages(), p.engine.Total())) + "\n")
	b.WriteString(p.styles.Help.Render(
		"enter open  /: search  s/c: filters  n/p: page  r: reload  q: quit"))

	out := b.String()
	if width > 0 {
		out = lipgloss.NewStyle().MaxWidth(width).Render(out)
	}
	return out
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
