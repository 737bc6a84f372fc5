package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/goccy/go-json"

	"github.com/vanderheijden86/suiteview/pkg/api"
	"github.com/vanderheijden86/suiteview/pkg/hierarchy"
	"github.com/vanderheijden86/suiteview/pkg/model"
	"github.com/vanderheijden86/suiteview/pkg/relation"
)

const (
	SplitViewThreshold = 100
	WideViewThreshold  = 140
)

type focus int

const (
	focusTree focus = iota
	focusDetail
)

// Deleter is the optional mutation surface. Snapshot sources do not
// implement it, so delete keys are disabled in snapshot mode.
type Deleter interface {
	Delete(ctx context.Context, t model.EntityType, id string) error
}

// RelationsMsg carries resolved relationship groups for one entity.
// Gen ties the response to the selection that requested it.
type RelationsMsg struct {
	Gen    int
	Ref    model.Ref
	Groups []relation.Group
}

type deleteDoneMsg struct {
	Ref model.Ref
	Err error
}

type Model struct {
	src     api.Source
	store   *api.Store
	deleter Deleter

	collections model.Collections
	tree        TreeModel
	viewport    viewport.Model
	renderer    *glamour.TermRenderer
	search      textinput.Model

	// Relationship state for the selected entity. resolveGen grows on
	// every selection change; stale responses carry an older value.
	relations  []relation.Group
	resolveGen int
	resolving  bool

	focused     focus
	isSplitView bool
	showDetails bool
	searching   bool
	ready       bool
	loading     bool
	width       int
	height      int

	loadErr       error
	statusLine    string
	confirmDelete bool
	pendingDelete model.Ref
}

func NewModel(src api.Source) Model {
	search := textinput.New()
	search.Placeholder = "filter entities"
	search.Prompt = "/ "
	search.CharLimit = 64

	m := Model{
		src:     src,
		store:   api.NewStore(src),
		tree:    NewTreeModel(),
		search:  search,
		loading: true,
	}
	if d, ok := src.(Deleter); ok {
		m.deleter = d
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return fetchCmd(m.src)
}

// fetchCmd pulls all collections concurrently.
func fetchCmd(src api.Source) tea.Cmd {
	return func() tea.Msg {
		collections, err := api.FetchAll(context.Background(), src)
		if err != nil {
			return LoadFailedMsg{Err: err}
		}
		return CollectionsLoadedMsg{Collections: collections}
	}
}

func (m Model) resolveCmd(rec model.Record, ref model.Ref, gen int) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		groups := relation.ResolveFromStore(context.Background(), store, rec, ref.Type)
		return RelationsMsg{Gen: gen, Ref: ref, Groups: groups}
	}
}

func (m Model) deleteCmd(ref model.Ref) tea.Cmd {
	deleter := m.deleter
	return func() tea.Msg {
		err := deleter.Delete(context.Background(), ref.Type, ref.ID)
		return deleteDoneMsg{Ref: ref, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case CollectionsLoadedMsg:
		m.collections = msg.Collections
		m.loading = false
		m.loadErr = nil
		m.tree.SetForest(hierarchy.Build(m.collections))
		cmds = append(cmds, m.refreshSelection())
		m.updateViewportContent()

	case LoadFailedMsg:
		m.loading = false
		if m.collections == nil {
			m.loadErr = msg.Err
		} else {
			// Keep the last good data on a failed reload.
			m.statusLine = fmt.Sprintf("reload failed: %v", msg.Err)
		}

	case RelationsMsg:
		if msg.Gen != m.resolveGen {
			break // stale response for an earlier selection
		}
		m.relations = msg.Groups
		m.resolving = false
		m.updateViewportContent()

	case deleteDoneMsg:
		m.confirmDelete = false
		if msg.Err != nil {
			m.statusLine = fmt.Sprintf("delete failed: %v", msg.Err)
			break
		}
		m.statusLine = fmt.Sprintf("deleted %s %s", msg.Ref.Type.Label(), msg.Ref.ID)
		m.loading = true
		cmds = append(cmds, fetchCmd(m.src))

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.isSplitView = msg.Width >= SplitViewThreshold
		m.layout()
		if !m.ready {
			m.ready = true
		}
		m.updateViewportContent()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if m.confirmDelete {
		switch msg.String() {
		case "y", "Y":
			ref := m.pendingDelete
			return m, m.deleteCmd(ref)
		default:
			m.confirmDelete = false
			m.statusLine = ""
		}
		return m, nil
	}

	if m.searching {
		switch msg.String() {
		case "esc":
			m.searching = false
			m.search.SetValue("")
			m.search.Blur()
			m.tree.SetFilter("")
			cmds = append(cmds, m.refreshSelection())
			m.updateViewportContent()
		case "enter":
			m.searching = false
			m.search.Blur()
		default:
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			cmds = append(cmds, cmd)
			m.tree.SetFilter(m.search.Value())
			cmds = append(cmds, m.refreshSelection())
			m.updateViewportContent()
		}
		return m, tea.Batch(cmds...)
	}

	if m.loadErr != nil {
		switch msg.String() {
		case "r", "R":
			m.loading = true
			m.loadErr = nil
			return m, fetchCmd(m.src)
		case "q", "ctrl+c":
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c", "q":
		if m.showDetails && !m.isSplitView {
			m.showDetails = false
			return m, nil
		}
		return m, tea.Quit

	case "esc":
		if m.showDetails && !m.isSplitView {
			m.showDetails = false
			return m, nil
		}
		if m.tree.Filter() != "" {
			m.search.SetValue("")
			m.tree.SetFilter("")
			cmds = append(cmds, m.refreshSelection())
			m.updateViewportContent()
		}

	case "tab":
		if m.isSplitView {
			if m.focused == focusTree {
				m.focused = focusDetail
			} else {
				m.focused = focusTree
			}
		}

	case "/":
		m.searching = true
		m.search.Focus()
		return m, textinput.Blink

	case "e":
		m.tree.ToggleAll()
		cmds = append(cmds, m.refreshSelection())
		m.updateViewportContent()

	case "R":
		m.loading = true
		cmds = append(cmds, fetchCmd(m.src))

	case "y":
		m.yankSelected()

	case "d":
		if m.deleter == nil {
			m.statusLine = "delete unavailable in snapshot mode"
			break
		}
		ref := m.tree.SelectedRef()
		if ref.IsZero() {
			break
		}
		m.confirmDelete = true
		m.pendingDelete = ref
		m.statusLine = fmt.Sprintf("delete %s %q? y/n", ref.Type.Label(), m.selectedName())

	default:
		cmds = append(cmds, m.handleNavKey(msg))
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleNavKey(msg tea.KeyMsg) tea.Cmd {
	if m.focused == focusDetail && m.isSplitView {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
	if m.showDetails && !m.isSplitView {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}

	before := m.tree.SelectedKey()
	switch msg.String() {
	case "j", "down":
		m.tree.MoveDown()
	case "k", "up":
		m.tree.MoveUp()
	case "h", "left":
		m.tree.CollapseOrJumpToParent()
	case "l", "right":
		m.tree.ExpandOrMoveToChild()
	case "ctrl+d", "pgdown":
		m.tree.PageDown()
	case "ctrl+u", "pgup":
		m.tree.PageUp()
	case "g", "home":
		m.tree.JumpToTop()
	case "G", "end":
		m.tree.JumpToBottom()
	case "enter", " ":
		m.tree.Toggle()
		if !m.isSplitView && !m.tree.SelectedRef().IsZero() {
			m.showDetails = true
		}
	default:
		return nil
	}

	if m.tree.SelectedKey() != before {
		cmd := m.refreshSelection()
		m.updateViewportContent()
		return cmd
	}
	m.updateViewportContent()
	return nil
}

// refreshSelection restarts relationship resolution for the currently
// selected entity. Sections and empty selections clear the panel.
func (m *Model) refreshSelection() tea.Cmd {
	m.resolveGen++
	m.relations = nil

	node := m.tree.Selected()
	if node == nil || node.IsSection() {
		m.resolving = false
		return nil
	}
	m.resolving = true
	return m.resolveCmd(node.Metadata, node.Ref(), m.resolveGen)
}

func (m *Model) yankSelected() {
	node := m.tree.Selected()
	if node == nil || node.IsSection() {
		return
	}
	data, err := json.MarshalIndent(node.Metadata, "", "  ")
	if err != nil {
		m.statusLine = fmt.Sprintf("yank failed: %v", err)
		return
	}
	if err := clipboard.WriteAll(string(data)); err != nil {
		m.statusLine = fmt.Sprintf("clipboard unavailable: %v", err)
		return
	}
	m.statusLine = fmt.Sprintf("copied %s to clipboard", node.Name)
}

func (m *Model) selectedName() string {
	if node := m.tree.Selected(); node != nil {
		return node.Name
	}
	return ""
}

func (m *Model) layout() {
	footerHeight := 1
	searchHeight := 0
	if m.searching {
		searchHeight = 1
	}
	bodyHeight := m.height - footerHeight - searchHeight - 2 // panel border
	if bodyHeight < 3 {
		bodyHeight = 3
	}

	if m.isSplitView {
		treeWidth := m.width * 2 / 5
		if m.width >= WideViewThreshold {
			treeWidth = m.width / 3
		}
		detailWidth := m.width - treeWidth - 4
		m.tree.SetSize(treeWidth-2, bodyHeight)
		m.viewport = viewport.New(detailWidth, bodyHeight)
		m.rebuildRenderer(detailWidth - 2)
	} else {
		m.tree.SetSize(m.width-2, bodyHeight)
		m.viewport = viewport.New(m.width-2, bodyHeight)
		m.rebuildRenderer(m.width - 4)
	}
}

func (m *Model) rebuildRenderer(wrap int) {
	if wrap < 20 {
		wrap = 20
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err == nil {
		m.renderer = renderer
	}
}

func (m *Model) updateViewportContent() {
	if !m.ready {
		return
	}
	node := m.tree.Selected()
	if node == nil || node.IsSection() {
		m.viewport.SetContent(lipgloss.NewStyle().Foreground(ColorSubtext).Render("Select an entity to see its details."))
		return
	}

	md := detailMarkdown(node.Ref(), node.Metadata, m.relations)
	if m.resolving {
		md += "\n_Resolving related entities..._\n"
	}

	content := md
	if m.renderer != nil {
		if rendered, err := m.renderer.Render(md); err == nil {
			content = rendered
		}
	}
	m.viewport.SetContent(content)
	m.viewport.GotoTop()
}

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.loading && m.collections == nil {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			lipgloss.NewStyle().Foreground(ColorPrimary).Render("Loading entities..."))
	}
	if m.loadErr != nil {
		msg := lipgloss.JoinVertical(lipgloss.Center,
			lipgloss.NewStyle().Foreground(ColorDanger).Bold(true).Render("Failed to load entities"),
			"",
			lipgloss.NewStyle().Foreground(ColorText).Render(m.loadErr.Error()),
			"",
			lipgloss.NewStyle().Foreground(ColorSubtext).Render("r: retry • q: quit"),
		)
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, msg)
	}

	var body string
	switch {
	case m.isSplitView:
		treePanel := m.panelStyle(focusTree).Render(m.tree.View())
		detailPanel := m.panelStyle(focusDetail).Render(m.viewport.View())
		body = lipgloss.JoinHorizontal(lipgloss.Top, treePanel, detailPanel)
	case m.showDetails:
		body = FocusedPanelStyle.Render(m.viewport.View())
	default:
		body = FocusedPanelStyle.Render(m.tree.View())
	}

	sections := []string{body}
	if m.searching {
		sections = append(sections, m.search.View())
	}
	sections = append(sections, m.renderFooter())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) panelStyle(f focus) lipgloss.Style {
	if m.focused == f {
		return FocusedPanelStyle
	}
	return PanelStyle
}

func (m *Model) renderFooter() string {
	modeStyle := lipgloss.NewStyle().Background(ColorPrimary).Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#111827"}).Bold(true).Padding(0, 1)
	statsStyle := lipgloss.NewStyle().Background(ColorBgBar).Foreground(ColorText)
	helpStyle := lipgloss.NewStyle().Foreground(ColorSubtext).Padding(0, 1)

	mode := "BROWSE"
	if m.tree.Filter() != "" {
		mode = fmt.Sprintf("FILTER %q", m.tree.Filter())
	}
	if m.loading {
		mode = "RELOADING"
	}

	total := 0
	active := 0
	for _, t := range model.AllTypes() {
		total += m.collections.Count(t)
		active += m.collections.ActiveCount(t)
	}
	stats := fmt.Sprintf(" %d entities • %d active • %d visible ", total, active, m.tree.VisibleCount())

	var keys string
	switch {
	case m.confirmDelete:
		keys = "y: confirm • any other key: cancel"
	case m.searching:
		keys = "enter: keep filter • esc: clear"
	case m.isSplitView:
		keys = "j/k: nav • enter: toggle • e: expand all • /: filter • tab: focus • y: yank • q: quit"
	case m.showDetails:
		keys = "j/k: scroll • esc: back • q: quit"
	default:
		keys = "j/k: nav • enter: details • e: expand all • /: filter • q: quit"
	}
	if m.statusLine != "" {
		keys = m.statusLine
	}

	modeSection := modeStyle.Render(mode)
	statsSection := statsStyle.Render(stats)
	keysSection := helpStyle.Render(keys)

	remaining := m.width - lipgloss.Width(modeSection) - lipgloss.Width(statsSection) - lipgloss.Width(keysSection)
	if remaining < 0 {
		remaining = 0
	}
	filler := lipgloss.NewStyle().Background(ColorBgBar).Width(remaining).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, modeSection, statsSection, filler, keysSection)
}

// StatusSummary returns the footer stats string without styling. Used
// by tests and by the markdown export header.
func (m Model) StatusSummary() string {
	var parts []string
	for _, t := range model.AllTypes() {
		if n := m.collections.Count(t); n > 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", t.Label(), n))
		}
	}
	return strings.Join(parts, " ")
}
