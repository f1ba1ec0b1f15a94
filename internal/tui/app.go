// internal/tui/app.go
package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/unclebandit/smsleopard-console/internal/backend"
	"github.com/unclebandit/smsleopard-console/internal/config"
	"github.com/unclebandit/smsleopard-console/internal/listing"
	"github.com/unclebandit/smsleopard-console/internal/model"
	"github.com/unclebandit/smsleopard-console/internal/service"
	"github.com/unclebandit/smsleopard-console/internal/targeting"
)

type page int

const (
	pageList page = iota
	pageDetail
)

// App is the top-level bubbletea model. All campaign rules live in the
// engines; the app only routes key presses and renders their state.
type App struct {
	client *backend.Client
	svc    *service.CampaignService
	log    *zap.Logger
	cfg    *config.Config

	page   page
	list   listPage
	detail detailPage
	width  int
	height int
}

func NewApp(cfg *config.Config, client *backend.Client, svc *service.CampaignService, log *zap.Logger) App {
	if log == nil {
		log = zap.NewNop()
	}
	engine := listing.NewEngine(client, cfg.PageSize, log)
	return App{
		client: client,
		svc:    svc,
		log:    log,
		cfg:    cfg,
		page:   pageList,
		list:   newListPage(engine),
	}
}

// Run starts the console in the alternate screen.
func Run(cfg *config.Config, client *backend.Client, svc *service.CampaignService, log *zap.Logger) error {
	p := tea.NewProgram(NewApp(cfg, client, svc, log), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Messages carrying engine results back onto the UI loop.

type campaignsLoadedMsg struct{ err error }

type campaignLoadedMsg struct {
	campaign *model.Campaign
	err      error
}

type directoryLoadedMsg struct{ err error }

type dispatchDoneMsg struct {
	result    *backend.SendResult
	refreshed *model.Campaign
	err       error
}

func loadCampaignsCmd(engine *listing.Engine) tea.Cmd {
	return func() tea.Msg {
		return campaignsLoadedMsg{err: engine.Load(context.Background())}
	}
}

func loadCampaignCmd(svc *service.CampaignService, id int) tea.Cmd {
	return func() tea.Msg {
		campaign, err := svc.Get(context.Background(), id)
		return campaignLoadedMsg{campaign: campaign, err: err}
	}
}

func openDirectoryCmd(session *targeting.Session) tea.Cmd {
	return func() tea.Msg {
		return directoryLoadedMsg{err: session.Open(context.Background())}
	}
}

// dispatchCmd submits the targeting session and, only after success,
// re-fetches the campaign for authoritative counters.
func dispatchCmd(session *targeting.Session, svc *service.CampaignService) tea.Cmd {
	return func() tea.Msg {
		result, err := session.Submit(context.Background())
		if err != nil {
			return dispatchDoneMsg{err: err}
		}
		refreshed, err := svc.Get(context.Background(), session.CampaignID())
		if err != nil {
			return dispatchDoneMsg{
				result: result,
				err:    fmt.Errorf("dispatched, but refreshing the campaign failed: %w", err),
			}
		}
		return dispatchDoneMsg{result: result, refreshed: refreshed}
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.list.spin.Tick, loadCampaignsCmd(a.list.engine))
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
	}

	switch a.page {
	case pageList:
		return a.updateList(msg)
	default:
		return a.updateDetail(msg)
	}
}

func (a App) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd, openID := a.list.update(msg)
	a.list = next
	if openID != 0 {
		a.detail = newDetailPage(openID, a.client, a.svc, a.cfg.DirectoryLimit, a.log)
		a.page = pageDetail
		return a, tea.Batch(cmd, loadCampaignCmd(a.svc, openID))
	}
	return a, cmd
}

func (a App) updateDetail(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd, back := a.detail.update(msg)
	a.detail = next
	if back {
		a.page = pageList
		return a, tea.Batch(cmd, loadCampaignsCmd(a.list.engine))
	}
	return a, cmd
}

func (a App) View() string {
	switch a.page {
	case pageList:
		return a.list.view(a.width)
	default:
		return a.detail.view(a.width)
	}
}
