package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/goccy/go-json"
	"golang.org/x/term"

	"github.com/vanderheijden86/suiteview/pkg/analysis"
	"github.com/vanderheijden86/suiteview/pkg/api"
	"github.com/vanderheijden86/suiteview/pkg/config"
	"github.com/vanderheijden86/suiteview/pkg/export"
	"github.com/vanderheijden86/suiteview/pkg/hierarchy"
	"github.com/vanderheijden86/suiteview/pkg/loader"
	"github.com/vanderheijden86/suiteview/pkg/ui"
)

const version = "0.3.0"

func main() {
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	envFlag := flag.String("env", "", "Target environment: PROD or TEST")
	systemFlag := flag.Int("system", 0, "System id (default 100)")
	emailFlag := flag.String("email", "", "Login email (prompts for password)")
	tokenFlag := flag.String("token", "", "API token (skips the login prompt)")
	snapshotFlag := flag.String("snapshot", "", "Browse a local snapshot directory instead of the API")
	exportFile := flag.String("export-md", "", "Export the entity hierarchy to a Markdown file (e.g., report.md)")
	robotHelp := flag.Bool("robot-help", false, "Show AI agent help")
	robotInsights := flag.Bool("robot-insights", false, "Output relationship graph analysis as JSON for AI agents")
	flag.Parse()

	if *help {
		fmt.Println("Usage: sv [options]")
		fmt.Println("\nA TUI dashboard for SuiteSpace energy retail entities.")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *versionFlag {
		fmt.Printf("sv %s\n", version)
		os.Exit(0)
	}

	if *robotHelp {
		fmt.Println("sv (SuiteView) AI Agent Interface")
		fmt.Println("=================================")
		fmt.Println("This tool provides structural analysis of the entity relationship graph.")
		fmt.Println("Use these commands to understand system state without parsing raw JSON.")
		fmt.Println("")
		fmt.Println("Commands:")
		fmt.Println("  --robot-insights")
		fmt.Println("      Outputs a JSON object containing graph analysis.")
		fmt.Println("      Key fields explained:")
		fmt.Println("      - collections: Per-collection record and active counts.")
		fmt.Println("      - relations: Edge and dangling-reference counts per join rule.")
		fmt.Println("      - orphans: Entities with no resolvable relationships at all.")
		fmt.Println("      - components: Connected-component count and largest size.")
		fmt.Println("      - hubs: Betweenness scores. High score = entity many chains route through.")
		fmt.Println("")
		fmt.Println("  --export-md <file>")
		fmt.Println("      Generates a readable status report with Mermaid.js visualizations.")
		fmt.Println("")
		fmt.Println("  --snapshot <dir>")
		fmt.Println("      Reads collections from <dir>/<collection>.json files instead of")
		fmt.Println("      the live API. Combine with the commands above for offline use.")
		os.Exit(0)
	}

	cwd, wdErr := os.Getwd()
	if wdErr != nil {
		fatalf("Error getting current directory: %v", wdErr)
	}
	cfg, err := config.Discover(cwd)
	if err != nil {
		fatalf("Invalid configuration: %v", err)
	}
	applyFlags(&cfg, *envFlag, *systemFlag, *emailFlag, *tokenFlag, *snapshotFlag)
	if err := cfg.Validate(); err != nil {
		fatalf("Invalid configuration: %v", err)
	}

	ctx := context.Background()

	src, refresher, err := buildSource(ctx, cfg)
	if err != nil {
		fatalf("%v", err)
	}
	if refresher != nil {
		defer refresher.Stop()
	}

	if *robotInsights {
		collections, err := api.FetchAll(ctx, src)
		if err != nil {
			fatalf("Error fetching collections: %v", err)
		}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(analysis.Analyze(collections)); err != nil {
			fatalf("Error encoding insights: %v", err)
		}
		os.Exit(0)
	}

	if *exportFile != "" {
		fmt.Printf("Exporting to %s...\n", *exportFile)
		collections, err := api.FetchAll(ctx, src)
		if err != nil {
			fatalf("Error fetching collections: %v", err)
		}
		forest := hierarchy.Build(collections)
		if err := export.SaveMarkdown(forest, collections, *exportFile); err != nil {
			fatalf("Error exporting: %v", err)
		}
		fmt.Println("Done!")
		os.Exit(0)
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fatalf("sv needs a terminal; use --export-md or --robot-insights for non-interactive output")
	}

	m := ui.NewModel(src)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if refresher != nil {
		refresher.SetProgram(p)
		refresher.Start()
	}
	if _, err := p.Run(); err != nil {
		fatalf("Error running suiteview: %v", err)
	}
}

// applyFlags lets command-line flags override discovered configuration.
func applyFlags(cfg *config.Config, env string, system int, email, token, snapshot string) {
	if env != "" {
		cfg.Env = env
	}
	if system != 0 {
		cfg.SystemID = system
	}
	if email != "" {
		cfg.Email = email
	}
	if token != "" {
		cfg.Token = token
	}
	if snapshot != "" {
		cfg.Snapshot = snapshot
	}
}

// buildSource picks between a local snapshot directory and the live
// API, handling login for the latter. The refresher is nil for API
// sources.
func buildSource(ctx context.Context, cfg config.Config) (api.Source, *ui.Refresher, error) {
	if cfg.Snapshot != "" {
		snapshot, err := loader.Open(cfg.Snapshot)
		if err != nil {
			return nil, nil, fmt.Errorf("opening snapshot: %w", err)
		}
		refresher, err := ui.NewRefresher(snapshot)
		if err != nil {
			// Watching is best-effort; the snapshot still browses.
			fmt.Fprintf(os.Stderr, "Warning: live reload disabled: %v\n", err)
			return snapshot, nil, nil
		}
		return snapshot, refresher, nil
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = api.Environment(cfg.Env).BaseURL()
	}
	client := api.New(baseURL, cfg.SystemID)

	if cfg.Token != "" {
		client.SetToken(cfg.Token)
		return client, nil, nil
	}

	creds, err := ui.RunLogin(cfg.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("login aborted: %w", err)
	}
	result, err := client.Login(ctx, creds.Email, creds.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("login failed: %w", err)
	}
	if result.Temporary {
		fmt.Fprintln(os.Stderr, "Note: this token is temporary; you will be asked to log in again next time.")
	}
	return client, nil, nil
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
