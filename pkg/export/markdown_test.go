package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/suiteview/pkg/hierarchy"
	"github.com/vanderheijden86/suiteview/pkg/model"
)

func sampleData() (hierarchy.Forest, model.Collections) {
	collections := model.Collections{
		model.TypeClient:   {{"id": "1", "name": "Acme", "status": "active"}},
		model.TypeSite:     {{"id": "s1", "name": "HQ", "ownerId": "1"}},
		model.TypeSupply:   {{"id": "sp1", "name": "Main ICP", "siteId": "s1"}},
		model.TypeRetailer: {{"id": "r1", "name": "Energy Plus"}},
	}
	return hierarchy.Build(collections), collections
}

func TestGenerateMarkdown(t *testing.T) {
	forest, collections := sampleData()
	md := GenerateMarkdown(forest, collections, "Report")

	for _, want := range []string{
		"# Report",
		"## Summary",
		"| Client | 1 | 1 |",
		"## Supply Chain Overview",
		"```mermaid",
		"client_1 --> site_s1",
		"## Supply Chain",
		"- **Client** Acme (active) [1]",
		"  - **Site** HQ [1]",
		"    - **Supply** Main ICP",
		"## Billing & Accounts",
		"- **Retailer** Energy Plus",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestGenerateMarkdownEmpty(t *testing.T) {
	md := GenerateMarkdown(hierarchy.Build(model.Collections{}), model.Collections{}, "Empty")
	if !strings.Contains(md, "No supply chain data") {
		t.Error("empty forest should render the placeholder graph node")
	}
	if !strings.Contains(md, "_No records._") {
		t.Error("empty sections should say so")
	}
}

func TestSaveMarkdown(t *testing.T) {
	forest, collections := sampleData()
	path := filepath.Join(t.TempDir(), "report.md")

	if err := SaveMarkdown(forest, collections, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "# SuiteView Export") {
		t.Error("saved file missing title")
	}
}
