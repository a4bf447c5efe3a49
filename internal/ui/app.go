package ui

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/gabriel-vasile/mimetype"
	"github.com/lumipallolabs/sizemap/internal/logging"
	"github.com/lumipallolabs/sizemap/internal/model"
	"github.com/lumipallolabs/sizemap/internal/scanner"
	"github.com/lumipallolabs/sizemap/internal/stats"
	"github.com/lumipallolabs/sizemap/internal/watcher"
	"github.com/lumipallolabs/sizemap/internal/worldbank"
)

// loadStartMsg triggers the actual load (after the UI has rendered)
type loadStartMsg struct{}

// loadCompleteMsg is sent when the dataset finishes loading
type loadCompleteMsg struct {
	root  *model.Tree
	index *scanner.Index
	err   error
}

// scanProgressMsg is sent during filesystem scanning
type scanProgressMsg struct {
	progress scanner.Progress
	ok       bool
}

// spinnerTickMsg triggers spinner animation
type spinnerTickMsg struct{}

// watcherEventMsg is sent when the filesystem watcher detects a change
type watcherEventMsg struct {
	event watcher.Event
	ok    bool
}

// startWatcherMsg triggers starting the filesystem watcher
type startWatcherMsg struct {
	root string
}

// Spinner frames
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const (
	spinnerTickInterval = 80 * time.Millisecond

	// Proportional step applied per resize keypress or wheel notch.
	resizeStep = 0.01
)

// Config selects the dataset the app displays.
type Config struct {
	// Dataset is the name shown in the header.
	Dataset string

	// Path is the filesystem root to scan. Empty selects the world
	// population dataset instead.
	Path string

	// Seed seeds block colors; negative means time-seeded.
	Seed int64

	// Squarified starts in the alternate layout mode.
	Squarified bool
}

func (c Config) filesystem() bool {
	return c.Path != ""
}

// App is the main application model
type App struct {
	// Components
	header  Header
	treemap TreemapPanel
	help    HelpOverlay

	// State
	cfg  Config
	keys KeyMap

	// Filesystem watcher and stats
	watcher        *watcher.Watcher
	statsManager   *stats.Manager
	deletedSession int64
	deletedTotal   int64

	// Data
	root         *model.Tree
	index        *scanner.Index
	progressCh   <-chan scanner.Progress
	selectedType string // detected mimetype of the selected file
	formatWeight func(int64) string

	// UI state
	loading      bool
	err          error
	spinnerFrame int

	// Dimensions
	width  int
	height int
}

// NewApp creates a new application instance
func NewApp(cfg Config) App {
	formatWeight := FormatSize
	if !cfg.filesystem() {
		formatWeight = FormatCount
	}

	statsMgr := stats.NewManager()
	if err := statsMgr.Load(); err != nil {
		logging.Log.Debug().Err(err).Msg("failed to load stats")
	}

	app := App{
		header:       NewHeader(cfg.Dataset, formatWeight),
		treemap:      NewTreemapPanel(),
		help:         NewHelpOverlay(),
		cfg:          cfg,
		keys:         DefaultKeyMap(),
		statsManager: statsMgr,
		deletedTotal: statsMgr.DeletedLifetime(),
		formatWeight: formatWeight,
		loading:      true,
	}

	app.treemap.SetFormatWeight(formatWeight)
	app.treemap.SetSquarified(cfg.Squarified)
	app.header.SetScanning(true, "")
	app.header.SetDeletedStats(app.deletedSession, app.deletedTotal)

	if cfg.filesystem() {
		statsMgr.SetLastTarget(cfg.Path)
	}

	return app
}

// rng returns the color source for a load, honoring a fixed seed.
func (a App) rng() *rand.Rand {
	if a.cfg.Seed >= 0 {
		return rand.New(rand.NewSource(a.cfg.Seed))
	}
	return nil
}

// Init implements tea.Model
func (a App) Init() tea.Cmd {
	titleCmd := tea.SetWindowTitle("SIZEMAP")
	return tea.Batch(titleCmd, func() tea.Msg {
		return loadStartMsg{}
	})
}

// startLoad kicks off loading the configured dataset. Filesystem scans
// also wire the walker's progress channel into the update loop.
func (a *App) startLoad() tea.Cmd {
	a.loading = true
	a.err = nil
	a.root = nil
	a.index = nil
	a.selectedType = ""
	a.treemap.SetRoot(nil)
	a.header.SetScanning(true, "")
	a.header.SetTotalWeight(0)

	var loadCmd tea.Cmd
	if a.cfg.filesystem() {
		walker := scanner.NewWalker(a.rng())
		a.progressCh = walker.Progress()
		path := a.cfg.Path
		loadCmd = func() tea.Msg {
			logging.Log.Debug().Str("path", path).Msg("starting scan")
			res, err := walker.Scan(context.Background(), path)
			if err != nil {
				return loadCompleteMsg{err: err}
			}
			return loadCompleteMsg{root: res.Tree, index: res.Index}
		}
	} else {
		client := worldbank.NewClient(a.rng())
		a.progressCh = nil
		loadCmd = func() tea.Msg {
			logging.Log.Debug().Msg("loading population data")
			root, err := client.Load(context.Background())
			return loadCompleteMsg{root: root, err: err}
		}
	}

	spinnerCmd := tea.Tick(spinnerTickInterval, func(t time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
	return tea.Batch(loadCmd, spinnerCmd, a.listenForProgress())
}

// Update implements tea.Model
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.updateLayout()
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.MouseMsg:
		return a.handleMouse(msg)

	case loadStartMsg:
		return a, a.startLoad()

	case loadCompleteMsg:
		a.loading = false
		a.progressCh = nil
		a.header.SetScanning(false, "")
		if msg.err != nil {
			a.err = msg.err
			logging.Log.Debug().Err(msg.err).Msg("load failed")
			return a, nil
		}
		a.root = msg.root
		a.index = msg.index
		a.err = nil
		a.treemap.SetRoot(msg.root)
		a.header.SetTotalWeight(msg.root.Weight())
		a.updateLayout()
		logging.Log.Debug().Int64("weight", msg.root.Weight()).Msg("dataset loaded")

		if a.cfg.filesystem() {
			return a, func() tea.Msg {
				return startWatcherMsg{root: a.cfg.Path}
			}
		}
		return a, nil

	case startWatcherMsg:
		if a.watcher != nil {
			_ = a.watcher.Stop()
		}
		w, err := watcher.New()
		if err != nil {
			logging.Log.Debug().Err(err).Msg("failed to create watcher")
			return a, nil
		}
		a.watcher = w
		if err := w.AddRecursive(msg.root); err != nil {
			logging.Log.Debug().Err(err).Msg("failed to add recursive watch")
		}
		w.Start()
		logging.Log.Debug().Str("root", msg.root).Msg("filesystem watcher started")
		return a, a.listenForWatcherEvents()

	case watcherEventMsg:
		if !msg.ok {
			return a, nil // channel closed
		}
		a.handleExternalDeletion(msg.event.Path)
		return a, a.listenForWatcherEvents()

	case scanProgressMsg:
		if !msg.ok {
			return a, nil
		}
		progress := fmt.Sprintf("%d files, %s",
			msg.progress.FilesScanned, FormatSize(msg.progress.BytesFound))
		a.header.SetScanning(true, progress)
		return a, a.listenForProgress()

	case spinnerTickMsg:
		if a.loading {
			a.spinnerFrame = (a.spinnerFrame + 1) % len(spinnerFrames)
			return a, tea.Tick(spinnerTickInterval, func(t time.Time) tea.Msg {
				return spinnerTickMsg{}
			})
		}
		return a, nil
	}

	return a, nil
}

// handleKey handles keyboard input
func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Help overlay takes precedence
	if a.help.IsVisible() {
		a.help.SetVisible(false)
		return a, nil
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a.quit()

	case key.Matches(msg, a.keys.Help):
		a.help.Toggle()
		return a, nil

	case key.Matches(msg, a.keys.Grow):
		a.resizeNode(a.treemap.Selected(), resizeStep)
		return a, nil

	case key.Matches(msg, a.keys.Shrink):
		a.resizeNode(a.treemap.Selected(), -resizeStep)
		return a, nil

	case key.Matches(msg, a.keys.Delete):
		a.deleteNode(a.treemap.Selected())
		return a, nil

	case key.Matches(msg, a.keys.ToggleLayout):
		a.treemap.ToggleLayout()
		return a, nil

	case key.Matches(msg, a.keys.Rescan):
		if !a.loading {
			return a, a.startLoad()
		}
		return a, nil
	}

	return a, nil
}

// handleMouse maps mouse actions onto the treemap panel
func (a App) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if a.loading || a.root == nil || a.help.IsVisible() {
		return a, nil
	}
	if msg.Action != tea.MouseActionPress {
		return a, nil
	}

	// Treemap content starts below the one-line header
	x := msg.X
	y := msg.Y - 1

	switch msg.Button {
	case tea.MouseButtonLeft:
		node := a.treemap.HitTest(x, y)
		if node != nil {
			a.treemap.Select(node)
			a.refreshSelectedType()
		}

	case tea.MouseButtonRight:
		a.deleteNode(a.treemap.HitTest(x, y))

	case tea.MouseButtonWheelUp:
		a.resizeNode(a.treemap.HitTest(x, y), resizeStep)

	case tea.MouseButtonWheelDown:
		a.resizeNode(a.treemap.HitTest(x, y), -resizeStep)
	}

	return a, nil
}

// quit tears down the watcher and flushes stats
func (a App) quit() (tea.Model, tea.Cmd) {
	if a.watcher != nil {
		_ = a.watcher.Stop()
	}
	if a.statsManager != nil {
		_ = a.statsManager.Close()
	}
	return a, tea.Quit
}

// resizeNode grows or shrinks a leaf by the proportional step and
// propagates the change up the tree. Only leaves are resize targets:
// an internal weight must stay the sum of its children, so hits on
// grouped blocks in the squarified view are ignored.
func (a *App) resizeNode(node *model.Tree, prop float64) {
	if node == nil || !node.IsLeaf() {
		return
	}
	if err := node.ResizeByProportion(prop); err != nil {
		logging.Log.Debug().Err(err).Str("node", node.Label()).Msg("resize rejected")
		return
	}
	a.afterMutation()
}

// deleteNode removes a leaf from the display. Internal nodes and
// already-empty slots are ignored.
func (a *App) deleteNode(node *model.Tree) {
	if node == nil {
		return
	}
	weight := node.Weight()
	if err := node.Delete(); err != nil {
		if !errors.Is(err, model.ErrNotLeaf) && !errors.Is(err, model.ErrEmptyTree) {
			logging.Log.Debug().Err(err).Msg("delete failed")
		}
		return
	}

	a.deletedSession += weight
	a.deletedTotal += weight
	if a.statsManager != nil {
		a.statsManager.AddDeleted(weight)
	}
	a.header.SetDeletedStats(a.deletedSession, a.deletedTotal)

	if node == a.treemap.Selected() {
		a.treemap.ClearSelection()
		a.selectedType = ""
	}
	a.afterMutation()
}

// handleExternalDeletion resolves a watcher event against the scan
// index and mirrors the deletion into the tree.
func (a *App) handleExternalDeletion(path string) {
	if a.root == nil || a.index == nil {
		return
	}
	node := a.index.ByPath(path)
	if node == nil {
		logging.Log.Debug().Str("path", path).Msg("watcher: path not in tree")
		return
	}
	logging.Log.Debug().Str("path", path).Msg("watcher: deleting")
	a.deleteNode(node)
}

// afterMutation recomputes layout and header totals after any change
// to the tree's weights.
func (a *App) afterMutation() {
	a.treemap.Relayout()
	if a.root != nil {
		a.header.SetTotalWeight(a.root.Weight())
	}
}

// refreshSelectedType detects the mimetype of the selected file, when
// the selection maps to a real filesystem path.
func (a *App) refreshSelectedType() {
	a.selectedType = ""
	node := a.treemap.Selected()
	if node == nil || a.index == nil || !node.IsLeaf() {
		return
	}
	path, ok := a.index.PathOf(node)
	if !ok {
		return
	}
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return
	}
	if ext := mtype.Extension(); ext != "" {
		a.selectedType = strings.ToUpper(strings.TrimPrefix(ext, "."))
	}
}

// listenForProgress returns a command that waits for the next scan
// progress update
func (a *App) listenForProgress() tea.Cmd {
	ch := a.progressCh
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		p, ok := <-ch
		return scanProgressMsg{progress: p, ok: ok}
	}
}

// listenForWatcherEvents returns a command that waits for the next
// watcher event
func (a *App) listenForWatcherEvents() tea.Cmd {
	if a.watcher == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-a.watcher.Events()
		return watcherEventMsg{event: event, ok: ok}
	}
}

// updateLayout calculates component sizes based on window dimensions
func (a *App) updateLayout() {
	// header + status bar + help bar
	treemapHeight := a.height - 3
	if treemapHeight < 1 {
		treemapHeight = 1
	}

	a.header.SetWidth(a.width)
	a.treemap.SetSize(a.width, treemapHeight)
	a.help.SetSize(a.width, a.height)
}

// statusBar renders the line mirroring the original visualiser: the
// full path of the selection and its size.
func (a App) statusBar() string {
	if a.err != nil {
		return StatusBarStyle.Width(a.width).Render(
			lipgloss.NewStyle().Foreground(ColorDanger).Render(fmt.Sprintf("Error: %v", a.err)))
	}

	node := a.treemap.Selected()
	if node == nil {
		return StatusBarStyle.Width(a.width).Render(
			lipgloss.NewStyle().Foreground(ColorMuted).Render("click a block to select"))
	}

	line := fmt.Sprintf("%s   Size: %s", node.PathLabel(), a.formatWeight(node.Weight()))
	if a.selectedType != "" {
		line += "   " + a.selectedType
	}
	return StatusBarStyle.Width(a.width).MaxHeight(1).Render(line)
}

// View implements tea.Model
func (a App) View() string {
	if a.width == 0 || a.height == 0 {
		return "Loading..."
	}

	var sections []string
	sections = append(sections, a.header.View())

	if a.loading {
		spinner := spinnerFrames[a.spinnerFrame]
		label := fmt.Sprintf("%s Loading %s...", spinner, a.cfg.Dataset)
		if progress := a.header.ScanProgress(); progress != "" {
			label += "  " + progress
		}
		loadingStyle := lipgloss.NewStyle().Foreground(ColorCyan).Bold(true)
		panelHeight := a.height - 3
		if panelHeight < 1 {
			panelHeight = 1
		}
		sections = append(sections, lipgloss.Place(
			a.width, panelHeight,
			lipgloss.Center, lipgloss.Center,
			loadingStyle.Render(label),
		))
	} else {
		sections = append(sections, a.treemap.View())
	}

	sections = append(sections, a.statusBar())
	sections = append(sections, HelpBar(a.width))

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	if a.help.IsVisible() {
		overlay := a.help.View()
		return lipgloss.Place(
			a.width, a.height,
			lipgloss.Center, lipgloss.Center,
			overlay,
			lipgloss.WithWhitespaceChars(" "),
		)
	}

	return content
}
