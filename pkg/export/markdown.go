// Package export renders the entity forest as a markdown report for
// sharing outside the dashboard.
package export

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/vanderheijden86/suiteview/pkg/hierarchy"
	"github.com/vanderheijden86/suiteview/pkg/model"
)

// GenerateMarkdown renders both sections of the forest with summary
// counts up front and a mermaid overview of the supply chain.
func GenerateMarkdown(forest hierarchy.Forest, collections model.Collections, title string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", time.Now().Format(time.RFC1123)))

	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Collection | Total | Active |\n")
	sb.WriteString("|---|---|---|\n")
	for _, t := range model.AllTypes() {
		sb.WriteString(fmt.Sprintf("| %s | %d | %d |\n",
			t.Label(), collections.Count(t), collections.ActiveCount(t)))
	}
	sb.WriteString("\n---\n\n")

	sb.WriteString("## Supply Chain Overview\n\n")
	sb.WriteString("```mermaid\ngraph TD\n")
	hasEdges := false
	hierarchy.Walk(forest.SupplyChain(), func(n *hierarchy.Node, _ int) {
		if n.IsSection() {
			return
		}
		sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", mermaidID(n), mermaidLabel(n)))
		for _, child := range n.Children {
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", mermaidID(n), mermaidID(child)))
			hasEdges = true
		}
	})
	if !hasEdges {
		sb.WriteString("    Empty[No supply chain data]\n")
	}
	sb.WriteString("```\n\n---\n\n")

	for _, section := range forest.Sections {
		sb.WriteString(fmt.Sprintf("## %s\n\n", section.Name))
		if len(section.Children) == 0 {
			sb.WriteString("_No records._\n\n")
			continue
		}
		for _, root := range section.Children {
			writeNode(&sb, root, 0)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// SaveMarkdown writes the report to a file.
func SaveMarkdown(forest hierarchy.Forest, collections model.Collections, filename string) error {
	content := GenerateMarkdown(forest, collections, "SuiteView Export")
	return os.WriteFile(filename, []byte(content), 0o644)
}

func writeNode(sb *strings.Builder, n *hierarchy.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	line := fmt.Sprintf("%s- **%s** %s", indent, n.Type.Label(), n.Name)
	if n.Status != "" {
		line += fmt.Sprintf(" (%s)", n.Status)
	}
	if n.Count > 0 {
		line += fmt.Sprintf(" [%d]", n.Count)
	}
	sb.WriteString(line + "\n")
	for _, child := range n.Children {
		writeNode(sb, child, depth+1)
	}
}

func mermaidID(n *hierarchy.Node) string {
	id := strings.NewReplacer("-", "_", " ", "_", ".", "_").Replace(n.ID)
	return fmt.Sprintf("%s_%s", n.Type, id)
}

func mermaidLabel(n *hierarchy.Node) string {
	label := strings.ReplaceAll(n.Name, "\"", "'")
	label = strings.ReplaceAll(label, "(", "")
	label = strings.ReplaceAll(label, ")", "")
	if len(label) > 30 {
		label = label[:27] + "..."
	}
	return fmt.Sprintf("%s <br/> %s", n.Type.Label(), label)
}
