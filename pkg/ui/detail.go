package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vanderheijden86/suiteview/pkg/model"
	"github.com/vanderheijden86/suiteview/pkg/relation"
)

// detailMarkdown builds the markdown body for the detail panel: the
// selected record's fields followed by its related entities, one
// section per non-empty relation group.
func detailMarkdown(ref model.Ref, rec model.Record, groups []relation.Group) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s %s\n\n", EntityIcon(ref.Type), rec.DisplayName(ref.Type)))
	sb.WriteString(fmt.Sprintf("**%s** `%s`", ref.Type.Label(), ref.ID))
	if status := rec.Status(); status != "" {
		sb.WriteString(fmt.Sprintf(" · %s", status))
	}
	sb.WriteString("\n\n")

	if len(rec) > 0 {
		sb.WriteString("| Field | Value |\n|---|---|\n")
		for _, field := range sortedFields(rec) {
			sb.WriteString(fmt.Sprintf("| %s | %v |\n", field, rec[field]))
		}
		sb.WriteString("\n")
	}

	if len(groups) == 0 {
		sb.WriteString("_No related entities._\n")
		return sb.String()
	}

	for _, group := range groups {
		sb.WriteString(fmt.Sprintf("### %s (%d)\n\n", group.Label, len(group.Entities)))
		for _, e := range group.Entities {
			line := fmt.Sprintf("- %s %s", EntityIcon(group.Type), e.DisplayName(group.Type))
			if status := e.Status(); status != "" {
				line += fmt.Sprintf(" · %s", status)
			}
			sb.WriteString(line + "\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func sortedFields(rec model.Record) []string {
	fields := make([]string, 0, len(rec))
	for k := range rec {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields
}
