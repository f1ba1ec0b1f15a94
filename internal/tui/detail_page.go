// internal/tui/detail_page.go
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/unclebandit/smsleopard-console/internal/backend"
	"github.com/unclebandit/smsleopard-console/internal/lifecycle"
	"github.com/unclebandit/smsleopard-console/internal/model"
	"github.com/unclebandit/smsleopard-console/internal/service"
	"github.com/unclebandit/smsleopard-console/internal/targeting"
)

type detailPage struct {
	id             int
	client         *backend.Client
	svc            *service.CampaignService
	directoryLimit int
	log            *zap.Logger
	styles         Styles

	campaign *model.Campaign
	session  *targeting.Session
	cursor   int
	picking  bool
	loading  bool
	err      error
	notice   string
}

func newDetailPage(id int, client *backend.Client, svc *service.CampaignService, directoryLimit int, log *zap.Logger) detailPage {
	return detailPage{
		id:             id,
		client:         client,
		svc:            svc,
		directoryLimit: directoryLimit,
		log:            log,
		styles:         DefaultStyles(),
		loading:        true,
	}
}

// update returns the next page state, a command, and whether the operator
// navigated back to the list.
func (p detailPage) update(msg tea.Msg) (detailPage, tea.Cmd, bool) {
	switch msg := msg.(type) {
	case campaignLoadedMsg:
		p.loading = false
		p.campaign = msg.campaign
		p.err = msg.err
		return p, nil, false

	case directoryLoadedMsg:
		p.err = msg.err
		return p, nil, false

	case dispatchDoneMsg:
		if msg.err != nil {
			// Selection and session survive; the operator can retry.
			p.err = msg.err
			return p, nil, false
		}
		p.err = nil
		p.picking = false
		p.session = nil
		p.notice = fmt.Sprintf("Campaign sent! %d messages queued for delivery.", msg.result.QueuedCount)
		if msg.refreshed != nil {
			p.campaign = msg.refreshed
		}
		return p, nil, false

	case tea.KeyMsg:
		if p.picking {
			return p.updatePicker(msg)
		}
		return p.updateKeys(msg)
	}
	return p, nil, false
}

func (p detailPage) updateKeys(msg tea.KeyMsg) (detailPage, tea.Cmd, bool) {
	switch msg.String() {
	case "esc", "backspace":
		return p, nil, true
	case "q":
		return p, tea.Quit, false
	case "r":
		p.loading = true
		p.err = nil
		return p, loadCampaignCmd(p.svc, p.id), false
	case "t":
		// The action is only offered for dispatch-eligible campaigns.
		if p.campaign == nil || !lifecycle.DispatchEligible(p.campaign.Status) {
			return p, nil, false
		}
		session, err := targeting.NewSession(p.campaign, p.client, p.client, p.directoryLimit, p.log)
		if err != nil {
			p.err = err
			return p, nil, false
		}
		p.session = session
		p.picking = true
		p.cursor = 0
		p.notice = ""
		return p, openDirectoryCmd(session), false
	}
	return p, nil, false
}

func (p detailPage) updatePicker(msg tea.KeyMsg) (detailPage, tea.Cmd, bool) {
	switch msg.String() {
	case "esc":
		p.session.Cancel()
		p.session = nil
		p.picking = false
		p.err = nil
		return p, nil, false
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.session.Directory())-1 {
			p.cursor++
		}
	case " ":
		dir := p.session.Directory()
		if p.cursor < len(dir) {
			p.session.Toggle(dir[p.cursor].ID)
		}
	case "a":
		p.session.SelectAll()
	case "o":
		// Retry a failed directory load.
		if p.session.State() == targeting.StateError {
			return p, openDirectoryCmd(p.session), false
		}
	case "enter":
		return p, dispatchCmd(p.session, p.svc), false
	}
	return p, nil, false
}

func (p detailPage) view(width int) string {
	var b strings.Builder

	if p.loading {
		b.WriteString("loading campaign...\n")
		return b.String()
	}
	if p.campaign == nil {
		b.WriteString(p.styles.Error.Render("Campaign not found") + "\n")
		b.WriteString(p.styles.Help.Render("esc: back to campaigns"))
		return b.String()
	}

	c := p.campaign
	m := lifecycle.Derive(c)

	b.WriteString(p.styles.Title.Render(c.Name) + "  " + p.styles.statusBadge(c.Status) + "\n\n")
	b.WriteString(fmt.Sprintf("channel:  %s\n", c.Channel))
	b.WriteString(fmt.Sprintf("template: %s\n", c.Template))
	if c.ScheduledAt != nil {
		b.WriteString(fmt.Sprintf("scheduled: %s\n", c.ScheduledAt.Local().Format("Jan 2 2006 15:04")))
	}
	b.WriteString(fmt.Sprintf("created:  %s\n\n", c.CreatedAt.Local().Format("Jan 2 2006 15:04")))

	b.WriteString(p.styles.Header.Render("Delivery") + "\n")
	b.WriteString(fmt.Sprintf("progress  %s %3d%%  (%d/%d, %d pending)\n",
		bar(m.Progress, 20), m.Progress, c.SentMessages, c.TotalMessages, m.Pending))
	b.WriteString(fmt.Sprintf("delivered %3d%%   failed %3d%%\n\n", m.DeliveryRate, m.FailureRate))

	if p.notice != "" {
		b.WriteString(p.styles.Success.Render(p.notice) + "\n\n")
	}
	if p.err != nil {
		b.WriteString(p.styles.Error.Render("error: "+p.err.Error()) + "\n\n")
	}

	if p.picking {
		b.WriteString(p.pickerView())
	} else if lifecycle.DispatchEligible(c.Status) {
		b.WriteString(p.styles.Help.Render("t: select recipients  r: reload  esc: back  q: quit"))
	} else {
		b.WriteString(p.styles.Help.Render("r: reload  esc: back  q: quit"))
	}
	return b.String()
}

func (p detailPage) pickerView() string {
	var b strings.Builder
	switch p.session.State() {
	case targeting.StateLoading, targeting.StateIdle:
		b.WriteString("loading customers...\n")
		return b.String()
	case targeting.StateError:
		b.WriteString(p.styles.Help.Render("o: retry loading customers  esc: cancel") + "\n")
		return b.String()
	}

	dir := p.session.Directory()
	b.WriteString(p.styles.Header.Render(
		fmt.Sprintf("Recipients  %d/%d selected", p.session.Count(), len(dir))) + "\n")
	for i, customer := range dir {
		mark := "[ ]"
		if p.session.IsSelected(customer.ID) {
			mark = "[x]"
		}
		line := fmt.Sprintf("%s %-24s %-16s %s",
			mark, truncate(customer.FullName(), 24), customer.Phone, customer.Location)
		if i == p.cursor {
			line = p.styles.Selected.Render(line)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n" + p.styles.Help.Render(
		"space: toggle  a: all/none  enter: send  esc: cancel"))
	return b.String()
}
