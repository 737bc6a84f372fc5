// tree.go - navigable entity forest with expand/collapse and filtering.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/suiteview/pkg/hierarchy"
	"github.com/vanderheijden86/suiteview/pkg/model"
)

// globalExpand is the tri-state expand-all override. While engaged it
// forces every node's visible state without touching the per-node set,
// so disengaging restores individual states exactly.
type globalExpand int

const (
	globalNone globalExpand = iota
	globalExpandAll
	globalCollapseAll
)

// treeNode wraps a hierarchy node with view bookkeeping. The wrapped
// nodes come from the filtered view, so children here may be a pruned
// subset of the underlying data.
type treeNode struct {
	node     *hierarchy.Node
	parent   *treeNode
	children []*treeNode
	depth    int
}

// TreeModel manages cursor, expansion and filter state over the entity
// forest. Expansion is keyed by "type-id" so records with colliding ids
// across collections never share state.
type TreeModel struct {
	forest   hierarchy.Forest
	roots    []*treeNode
	flat     []*treeNode
	cursor   int
	offset   int
	expanded map[string]bool
	global   globalExpand
	filter   string
	width    int
	height   int
}

func NewTreeModel() TreeModel {
	return TreeModel{expanded: make(map[string]bool)}
}

// SetSize updates the drawing area.
func (t *TreeModel) SetSize(width, height int) {
	t.width = width
	t.height = height
	t.ensureCursorVisible()
}

// SetForest installs a freshly built forest and resets navigation
// state: only the two section roots start expanded. The filter term is
// kept so a reload does not wipe an active search.
func (t *TreeModel) SetForest(forest hierarchy.Forest) {
	selected := t.SelectedKey()

	t.forest = forest
	t.expanded = make(map[string]bool)
	t.global = globalNone
	for _, section := range forest.Sections {
		t.expanded[section.Key()] = true
	}

	t.rebuildView()
	if !t.SelectByKey(selected) {
		t.cursor = 0
		t.offset = 0
	}
}

// SetFilter recomputes the filtered view. An empty term restores the
// full forest.
func (t *TreeModel) SetFilter(term string) {
	t.filter = term
	t.rebuildView()
}

// Filter returns the active filter term.
func (t *TreeModel) Filter() string { return t.filter }

// Toggle flips the expansion of the node under the cursor. Engaged
// expand-all/collapse-all overrides are cleared, per-node states from
// before the override come back as they were.
func (t *TreeModel) Toggle() {
	node := t.selectedNode()
	if node == nil || len(node.children) == 0 {
		return
	}
	t.ToggleKey(node.node.Key())
}

// ToggleKey flips a single key in the expanded set and clears any
// active global override.
func (t *TreeModel) ToggleKey(key string) {
	if t.expanded[key] {
		delete(t.expanded, key)
	} else {
		t.expanded[key] = true
	}
	t.global = globalNone
	t.rebuildFlat()
}

// ToggleAll cycles the global override: first use forces everything
// expanded, the next forces everything collapsed, and so on.
func (t *TreeModel) ToggleAll() {
	if t.global == globalExpandAll {
		t.global = globalCollapseAll
	} else {
		t.global = globalExpandAll
	}
	t.rebuildFlat()
}

// isExpanded resolves the effective state: the override wins while
// engaged, otherwise the per-node set decides.
func (t *TreeModel) isExpanded(key string) bool {
	switch t.global {
	case globalExpandAll:
		return true
	case globalCollapseAll:
		return false
	}
	return t.expanded[key]
}

// Selected returns the hierarchy node under the cursor, nil when the
// tree is empty.
func (t *TreeModel) Selected() *hierarchy.Node {
	if n := t.selectedNode(); n != nil {
		return n.node
	}
	return nil
}

// SelectedRef returns the (type, id) identity of the cursor node.
// Section nodes are not selectable entities, so they yield a zero Ref.
func (t *TreeModel) SelectedRef() model.Ref {
	node := t.Selected()
	if node == nil || node.IsSection() {
		return model.Ref{}
	}
	return node.Ref()
}

// SelectedKey returns the cursor node's key, empty when nothing is
// under the cursor.
func (t *TreeModel) SelectedKey() string {
	if node := t.Selected(); node != nil {
		return node.Key()
	}
	return ""
}

// SelectByKey moves the cursor to the visible node with the given key.
func (t *TreeModel) SelectByKey(key string) bool {
	if key == "" {
		return false
	}
	for i, n := range t.flat {
		if n.node.Key() == key {
			t.cursor = i
			t.ensureCursorVisible()
			return true
		}
	}
	return false
}

func (t *TreeModel) selectedNode() *treeNode {
	if t.cursor >= 0 && t.cursor < len(t.flat) {
		return t.flat[t.cursor]
	}
	return nil
}

// MoveDown moves the cursor down one visible row.
func (t *TreeModel) MoveDown() {
	if t.cursor < len(t.flat)-1 {
		t.cursor++
		t.ensureCursorVisible()
	}
}

// MoveUp moves the cursor up one visible row.
func (t *TreeModel) MoveUp() {
	if t.cursor > 0 {
		t.cursor--
		t.ensureCursorVisible()
	}
}

// PageDown moves down half a screen.
func (t *TreeModel) PageDown() {
	step := t.height / 2
	if step < 1 {
		step = 5
	}
	t.cursor += step
	if t.cursor >= len(t.flat) {
		t.cursor = len(t.flat) - 1
	}
	if t.cursor < 0 {
		t.cursor = 0
	}
	t.ensureCursorVisible()
}

// PageUp moves up half a screen.
func (t *TreeModel) PageUp() {
	step := t.height / 2
	if step < 1 {
		step = 5
	}
	t.cursor -= step
	if t.cursor < 0 {
		t.cursor = 0
	}
	t.ensureCursorVisible()
}

// JumpToTop moves the cursor to the first row.
func (t *TreeModel) JumpToTop() {
	t.cursor = 0
	t.offset = 0
}

// JumpToBottom moves the cursor to the last row.
func (t *TreeModel) JumpToBottom() {
	if len(t.flat) > 0 {
		t.cursor = len(t.flat) - 1
	}
	t.ensureCursorVisible()
}

// ExpandOrMoveToChild handles l/right: expand a collapsed branch,
// otherwise step into the first child.
func (t *TreeModel) ExpandOrMoveToChild() {
	node := t.selectedNode()
	if node == nil || len(node.children) == 0 {
		return
	}
	if !t.isExpanded(node.node.Key()) {
		t.ToggleKey(node.node.Key())
		return
	}
	t.MoveDown()
}

// CollapseOrJumpToParent handles h/left: collapse an expanded branch,
// otherwise jump to the parent row.
func (t *TreeModel) CollapseOrJumpToParent() {
	node := t.selectedNode()
	if node == nil {
		return
	}
	if len(node.children) > 0 && t.isExpanded(node.node.Key()) {
		t.ToggleKey(node.node.Key())
		return
	}
	if node.parent != nil {
		for i, n := range t.flat {
			if n == node.parent {
				t.cursor = i
				t.ensureCursorVisible()
				return
			}
		}
	}
}

// VisibleCount returns the number of rows in the current flat view.
func (t *TreeModel) VisibleCount() int { return len(t.flat) }

// rebuildView recomputes the filtered forest and the view wrappers.
func (t *TreeModel) rebuildView() {
	selected := t.SelectedKey()

	filtered := filterNodes(t.forest.Sections, strings.ToLower(t.filter))
	t.roots = t.roots[:0]
	for _, section := range filtered {
		t.roots = append(t.roots, wrapNode(section, nil, 0))
	}
	t.rebuildFlat()

	if !t.SelectByKey(selected) {
		t.cursor = 0
		t.offset = 0
	}
}

// filterNodes retains a node when its name or type contains the term,
// or when any descendant does. A node kept on its own merit with no
// matching children keeps its full subtree; a node kept only for its
// descendants is pruned down to the matching ones.
func filterNodes(nodes []*hierarchy.Node, term string) []*hierarchy.Node {
	if term == "" {
		return nodes
	}

	var out []*hierarchy.Node
	for _, n := range nodes {
		matches := strings.Contains(strings.ToLower(n.Name), term) ||
			strings.Contains(strings.ToLower(string(n.Type)), term)
		kept := filterNodes(n.Children, term)

		if !matches && len(kept) == 0 {
			continue
		}
		clone := *n
		if len(kept) > 0 {
			clone.Children = kept
		}
		out = append(out, &clone)
	}
	return out
}

func wrapNode(n *hierarchy.Node, parent *treeNode, depth int) *treeNode {
	tn := &treeNode{node: n, parent: parent, depth: depth}
	for _, child := range n.Children {
		tn.children = append(tn.children, wrapNode(child, tn, depth+1))
	}
	return tn
}

func (t *TreeModel) rebuildFlat() {
	t.flat = t.flat[:0]
	for _, root := range t.roots {
		t.appendVisible(root)
	}
	if t.cursor >= len(t.flat) {
		t.cursor = len(t.flat) - 1
	}
	if t.cursor < 0 {
		t.cursor = 0
	}
	t.ensureCursorVisible()
}

func (t *TreeModel) appendVisible(node *treeNode) {
	t.flat = append(t.flat, node)
	if len(node.children) > 0 && t.isExpanded(node.node.Key()) {
		for _, child := range node.children {
			t.appendVisible(child)
		}
	}
}

func (t *TreeModel) ensureCursorVisible() {
	if t.height <= 0 {
		return
	}
	if t.cursor < t.offset {
		t.offset = t.cursor
	}
	if t.cursor >= t.offset+t.height {
		t.offset = t.cursor - t.height + 1
	}
	if t.offset < 0 {
		t.offset = 0
	}
}

// View renders the visible window of the flat list.
func (t *TreeModel) View() string {
	if len(t.flat) == 0 {
		empty := lipgloss.NewStyle().Foreground(ColorSubtext)
		if t.filter != "" {
			return empty.Render(fmt.Sprintf("No entities match %q.", t.filter))
		}
		return empty.Render("No entities loaded.")
	}

	end := len(t.flat)
	if t.height > 0 && t.offset+t.height < end {
		end = t.offset + t.height
	}

	var sb strings.Builder
	for i := t.offset; i < end; i++ {
		line := t.renderRow(t.flat[i])
		if i == t.cursor {
			line = SelectedRowStyle.Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *TreeModel) renderRow(node *treeNode) string {
	n := node.node
	indent := strings.Repeat("  ", node.depth)

	indicator := " "
	if len(node.children) > 0 {
		if t.isExpanded(n.Key()) {
			indicator = "▾"
		} else {
			indicator = "▸"
		}
	}

	var sb strings.Builder
	sb.WriteString(indent)
	sb.WriteString(indicator)
	sb.WriteString(" ")
	sb.WriteString(EntityIcon(n.Type))
	sb.WriteString(" ")

	name := n.Name
	maxName := t.width - runewidth.StringWidth(indent) - 14
	if maxName < 12 {
		maxName = 12
	}
	sb.WriteString(runewidth.Truncate(name, maxName, "…"))

	if len(n.Children) > 0 {
		sb.WriteString(lipgloss.NewStyle().Foreground(ColorSubtext).
			Render(fmt.Sprintf(" (%d)", n.Count)))
	}
	if n.Status != "" {
		sb.WriteString(" ")
		sb.WriteString(lipgloss.NewStyle().Foreground(StatusColor(n.Status)).
			Render("●"))
	}
	return sb.String()
}
