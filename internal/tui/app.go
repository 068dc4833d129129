package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/malla/internal/config"
	"github.com/jask/malla/internal/curriculum"
	"github.com/jask/malla/internal/database/repository"
	"github.com/jask/malla/internal/service"
)

// Session is what the loader hands to the view once the catalog is ready.
// Notice is shown in the status line (for example when stored progress
// could not be read and everything started as pending).
type Session struct {
	Progress *service.ProgressService
	Notice   string
}

// Loader fetches the catalog and builds the progress service.
type Loader func(ctx context.Context) (Session, error)

// Option configures an App.
type Option func(*App)

// WithConfigSaver replaces the function used to persist the interaction mode.
func WithConfigSaver(fn func(config.Config) error) Option {
	return func(a *App) { a.saveConfig = fn }
}

// App is the curriculum view.
type App struct {
	ctx        context.Context
	cfg        config.Config
	load       Loader
	saveConfig func(config.Config) error
	keys       keyMap

	progress *service.ProgressService
	reg      *curriculum.Registry
	tree     tree

	cursor   int // index into tree.order
	offset   int // first visible row
	selected curriculum.ID
	width    int
	height   int

	view         viewState
	modal        modalState
	search       textinput.Model
	results      []curriculum.Course
	resultCursor int
	history      []repository.StateChange

	mode    string
	status  string
	loadErr error
}

type viewState string

const (
	viewTree    viewState = "tree"
	viewHistory viewState = "history"
)

type modalState string

const (
	modalNone         modalState = ""
	modalSearch       modalState = "search"
	modalConfirmReset modalState = "confirmReset"
)

type (
	loadedMsg     struct{ session Session }
	loadFailedMsg struct{ error }
	historyMsg    []repository.StateChange
	statusMsg     string
	errMsg        struct{ error }
)

func New(ctx context.Context, cfg config.Config, load Loader, opts ...Option) *App {
	ti := textinput.New()
	ti.Placeholder = "course name or id"
	ti.Prompt = "/ "
	ti.CharLimit = 64

	mode := cfg.UI.InteractionMode
	if mode != config.ModeSelect {
		mode = config.ModeToggle
	}
	a := &App{
		ctx:        ctx,
		cfg:        cfg,
		load:       load,
		saveConfig: config.Save,
		keys:       defaultKeyMap(),
		view:       viewTree,
		search:     ti,
		mode:       mode,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *App) Init() tea.Cmd {
	return a.loadCmd()
}

func (a *App) loadCmd() tea.Cmd {
	ctx, load := a.ctx, a.load
	return func() tea.Msg {
		if load == nil {
			return loadFailedMsg{errors.New("no catalog loader configured")}
		}
		s, err := load(ctx)
		if err != nil {
			return loadFailedMsg{err}
		}
		if s.Progress == nil || s.Progress.Registry == nil {
			return loadFailedMsg{errors.New("catalog loader returned no courses")}
		}
		return loadedMsg{s}
	}
}

func (a *App) loadHistoryCmd() tea.Cmd {
	ctx, svc := a.ctx, a.progress
	limit := a.cfg.UI.HistoryLimit
	if limit <= 0 {
		limit = 50
	}
	return func() tea.Msg {
		list, err := svc.Recent(ctx, limit)
		if err != nil {
			return errMsg{err}
		}
		return historyMsg(list)
	}
}

func (a *App) saveModeCmd() tea.Cmd {
	cfg, save := a.cfg, a.saveConfig
	return func() tea.Msg {
		if save == nil {
			return nil
		}
		if err := save(cfg); err != nil {
			return errMsg{fmt.Errorf("save config: %w", err)}
		}
		return statusMsg("interaction mode saved: " + cfg.UI.InteractionMode)
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		a.ensureVisible()
	case loadedMsg:
		a.attach(m.session)
	case loadFailedMsg:
		a.loadErr = m.error
	case historyMsg:
		a.history = m
	case statusMsg:
		a.status = string(m)
	case errMsg:
		a.status = "error: " + m.Error()
	case tea.KeyMsg:
		return a.handleKey(m)
	case tea.MouseMsg:
		return a.handleMouse(m)
	}
	return a, nil
}

func (a *App) attach(s Session) {
	a.progress = s.Progress
	a.reg = s.Progress.Registry
	a.tree = buildTree(a.reg.Grouped())
	a.cursor = 0
	a.offset = 0
	a.status = s.Notice
	a.ensureVisible()
}

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.Type == tea.KeyCtrlC {
		return a, tea.Quit
	}
	if a.loadErr != nil || a.reg == nil {
		if key.Matches(m, a.keys.Quit) {
			return a, tea.Quit
		}
		return a, nil
	}
	switch a.modal {
	case modalSearch:
		return a.handleSearchKey(m)
	case modalConfirmReset:
		return a.handleResetKey(m)
	}
	if a.view == viewHistory {
		switch {
		case key.Matches(m, a.keys.Quit):
			return a, tea.Quit
		case key.Matches(m, a.keys.Close), key.Matches(m, a.keys.History):
			a.view = viewTree
		}
		return a, nil
	}

	switch {
	case key.Matches(m, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(m, a.keys.Up):
		a.moveCursor(-1)
	case key.Matches(m, a.keys.Down):
		a.moveCursor(1)
	case key.Matches(m, a.keys.PageUp):
		a.moveCursor(-a.pageSize())
	case key.Matches(m, a.keys.PageDown):
		a.moveCursor(a.pageSize())
	case key.Matches(m, a.keys.Top):
		a.moveCursor(-len(a.tree.order))
	case key.Matches(m, a.keys.Bottom):
		a.moveCursor(len(a.tree.order))
	case key.Matches(m, a.keys.Primary):
		return a, a.primary(a.currentID())
	case key.Matches(m, a.keys.Advance):
		return a, a.advance(a.currentID())
	case key.Matches(m, a.keys.Close):
		a.selected = ""
		a.ensureVisible()
	case key.Matches(m, a.keys.Search):
		a.modal = modalSearch
		a.search.Reset()
		a.results = nil
		a.resultCursor = 0
		return a, a.search.Focus()
	case key.Matches(m, a.keys.History):
		a.view = viewHistory
		return a, a.loadHistoryCmd()
	case key.Matches(m, a.keys.Mode):
		return a, a.toggleMode()
	case key.Matches(m, a.keys.Reset):
		a.modal = modalConfirmReset
	}
	return a, nil
}

func (a *App) handleSearchKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.Type {
	case tea.KeyEsc:
		a.closeSearch()
		return a, nil
	case tea.KeyEnter:
		if a.resultCursor < len(a.results) {
			a.jumpTo(a.results[a.resultCursor].ID)
		}
		a.closeSearch()
		return a, nil
	case tea.KeyUp:
		if a.resultCursor > 0 {
			a.resultCursor--
		}
		return a, nil
	case tea.KeyDown:
		if a.resultCursor < len(a.results)-1 {
			a.resultCursor++
		}
		return a, nil
	}
	var cmd tea.Cmd
	a.search, cmd = a.search.Update(m)
	a.results = a.reg.Search(a.search.Value(), 8)
	if a.resultCursor >= len(a.results) {
		a.resultCursor = max(0, len(a.results)-1)
	}
	return a, cmd
}

func (a *App) closeSearch() {
	a.modal = modalNone
	a.search.Blur()
	a.results = nil
}

func (a *App) handleResetKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "y", "Y":
		a.modal = modalNone
		if err := a.progress.Reset(a.ctx); err != nil {
			a.status = "reset failed: " + err.Error()
		} else {
			a.status = "progress reset"
		}
		a.history = nil
	case "n", "N", "esc":
		a.modal = modalNone
	}
	return a, nil
}

func (a *App) handleMouse(m tea.MouseMsg) (tea.Model, tea.Cmd) {
	if a.reg == nil || a.modal != modalNone || a.view != viewTree {
		return a, nil
	}
	switch m.Button {
	case tea.MouseButtonWheelUp:
		a.scroll(-3)
	case tea.MouseButtonWheelDown:
		a.scroll(3)
	case tea.MouseButtonLeft:
		if m.Action != tea.MouseActionPress {
			return a, nil
		}
		id, ok := a.courseAtPoint(m.X, m.Y)
		if !ok {
			return a, nil
		}
		a.cursor = a.tree.position[id]
		return a, a.primary(id)
	}
	return a, nil
}

// primary is the main action on a course. In toggle mode it selects the
// course and advances it at once; in select mode the first activation
// selects and a second one on the same course advances.
func (a *App) primary(id curriculum.ID) tea.Cmd {
	if id == "" {
		return nil
	}
	if a.mode == config.ModeSelect && a.selected != id {
		a.selected = id
		a.ensureVisible()
		return nil
	}
	a.selected = id
	return a.advance(id)
}

func (a *App) advance(id curriculum.ID) tea.Cmd {
	if id == "" {
		return nil
	}
	ch, err := a.progress.Advance(a.ctx, id)
	switch {
	case errors.Is(err, curriculum.ErrUnknownCourse):
		a.status = fmt.Sprintf("unknown course %q", id)
	case err != nil:
		a.status = fmt.Sprintf("%s is now %s, but saving failed: %v", a.reg.Name(id), ch.To.Label(), err)
	default:
		a.status = fmt.Sprintf("%s: %s → %s", a.reg.Name(id), ch.From.Label(), ch.To.Label())
	}
	a.ensureVisible()
	return nil
}

func (a *App) toggleMode() tea.Cmd {
	if a.mode == config.ModeSelect {
		a.mode = config.ModeToggle
		a.status = "mode: toggle (enter advances)"
	} else {
		a.mode = config.ModeSelect
		a.status = "mode: select (enter selects, again to advance)"
	}
	a.cfg.UI.InteractionMode = a.mode
	return a.saveModeCmd()
}

func (a *App) currentID() curriculum.ID {
	if a.cursor < 0 || a.cursor >= len(a.tree.order) {
		return ""
	}
	return a.tree.order[a.cursor]
}

func (a *App) moveCursor(delta int) {
	if len(a.tree.order) == 0 {
		return
	}
	a.cursor = min(max(a.cursor+delta, 0), len(a.tree.order)-1)
	a.ensureVisible()
}

func (a *App) jumpTo(id curriculum.ID) {
	pos, ok := a.tree.position[id]
	if !ok {
		return
	}
	a.cursor = pos
	a.selected = id
	a.ensureVisible()
}

func (a *App) scroll(delta int) {
	a.offset = min(max(a.offset+delta, 0), a.maxOffset())
}

func (a *App) pageSize() int {
	return max(1, a.treeHeight()-1)
}

func (a *App) maxOffset() int {
	return max(0, len(a.tree.rows)-a.treeHeight())
}

// ensureVisible scrolls so the cursor row is on screen. The year and term
// headers above the first course stay visible when the cursor is at the top.
func (a *App) ensureVisible() {
	if len(a.tree.order) == 0 {
		a.offset = 0
		return
	}
	row := a.tree.rowOf(a.currentID())
	h := a.treeHeight()
	if a.cursor == 0 {
		row = 0
	}
	if row < a.offset {
		a.offset = row
	}
	if row >= a.offset+h {
		a.offset = row - h + 1
	}
	a.offset = min(max(a.offset, 0), a.maxOffset())
}
