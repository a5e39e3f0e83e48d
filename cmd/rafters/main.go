package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"rafters/internal/advisor"
	"rafters/internal/llm"
	"rafters/internal/registry"
	"rafters/internal/tokenfile"
	"rafters/internal/util/jsonutil"
)

const usage = `Usage: rafters <command> [flags]

Commands:
  tokens   list every token in the set
  resolve  show one token with its rule, dependents and derived value
  deps     show all edges, or one token's dependents and cascade (-name)
  impact   predict the cascade effect of changing one token's value
  graph    export the dependency graph as nodes and edges
  advise   ask the configured model for semantic metadata suggestions

Common flags:
  -dir   directory holding *.tokens.json files (default "tokens")
  -json  emit JSON instead of text
`

func main() {
	log.SetFlags(0)
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	cmd, args := os.Args[1], os.Args[2:]

	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	dir := fs.String("dir", "tokens", "directory holding *.tokens.json files")
	asJSON := fs.Bool("json", false, "emit JSON instead of text")
	name := fs.String("name", "", "token name")
	newValue := fs.String("value", "", "proposed new value (impact)")
	model := fs.String("model", "gemini-2.5-flash", "Gemini model id (advise)")
	_ = fs.Parse(args)

	snap, err := loadSnapshot(*dir)
	if err != nil {
		log.Fatal(err)
	}

	switch cmd {
	case "tokens":
		runTokens(snap, *asJSON)
	case "resolve":
		requireName(*name)
		runResolve(snap, *name, *asJSON)
	case "deps":
		runDeps(snap, *name, *asJSON)
	case "impact":
		requireName(*name)
		if *newValue == "" {
			log.Fatal("-value is required")
		}
		runImpact(snap, *name, *newValue, *asJSON)
	case "graph":
		emitJSON(registry.GraphView(snap))
	case "advise":
		requireName(*name)
		runAdvise(snap, *name, *model)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func loadSnapshot(dir string) (*registry.Snapshot, error) {
	return tokenfile.LoadDir(dir)
}

func requireName(name string) {
	if strings.TrimSpace(name) == "" {
		log.Fatal("-name is required")
	}
}

func runTokens(snap *registry.Snapshot, asJSON bool) {
	tokens := snap.Tokens()
	if asJSON {
		emitJSON(tokens)
		return
	}
	fmt.Printf("%d tokens (version %s)\n", len(tokens), snap.Version())
	for _, t := range tokens {
		fmt.Printf("  %-28s %-10s %s\n", t.Name, t.Category, t.Value)
	}
}

func runResolve(snap *registry.Snapshot, name string, asJSON bool) {
	res, err := snap.Resolve(name)
	if err != nil {
		log.Fatal(err)
	}
	if asJSON {
		emitJSON(res)
		return
	}
	fmt.Printf("%s (%s) = %s\n", res.Token.Name, res.Token.Category, res.Token.Value)
	if res.Rule != "" {
		fmt.Printf("  rule:       %s <- %s\n", res.Rule, strings.Join(res.DependsOn, ", "))
	}
	if res.Derived != nil {
		fmt.Printf("  derived:    %s (confidence %.2f)\n", res.Derived.Result, res.Derived.Confidence)
	}
	fmt.Printf("  dependents: %s\n", joinOrNone(res.Dependents))
	fmt.Printf("  cascade:    %s\n", joinOrNone(res.Cascade))
}

// runDeps prints every edge, or the dependents and cascade of one token
// when -name is given.
func runDeps(snap *registry.Snapshot, name string, asJSON bool) {
	if strings.TrimSpace(name) != "" {
		if _, err := snap.Token(name); err != nil {
			log.Fatal(err)
		}
		out := struct {
			Token      string   `json:"token"`
			Dependents []string `json:"dependents"`
			Cascade    []string `json:"cascade"`
		}{
			Token:      name,
			Dependents: snap.Dependents(name),
			Cascade:    snap.Cascade(name),
		}
		if asJSON {
			emitJSON(out)
			return
		}
		fmt.Printf("%s\n", name)
		fmt.Printf("  dependents: %s\n", joinOrNone(out.Dependents))
		fmt.Printf("  cascade:    %s\n", joinOrNone(out.Cascade))
		return
	}

	edges := snap.Edges()
	if asJSON {
		emitJSON(edges)
		return
	}
	for _, e := range edges {
		fmt.Printf("  %-28s %-20s <- %s\n", e.TokenName, e.Rule, strings.Join(e.DependsOn, ", "))
	}
}

func runImpact(snap *registry.Snapshot, name, newValue string, asJSON bool) {
	report, err := snap.PredictImpact(name, newValue)
	if err != nil {
		log.Fatal(err)
	}
	if asJSON {
		emitJSON(report)
		return
	}
	fmt.Printf("%s -> %q: total impact %.2f\n", report.Token, report.ProposedValue, report.TotalImpact)
	fmt.Printf("  risk: breaking %.1f  visual %.1f  accessibility %.1f\n",
		report.RiskAssessment.BreakingChanges,
		report.RiskAssessment.VisualImpact,
		report.RiskAssessment.AccessibilityImpact)
	for _, a := range report.AffectedTokens {
		marker := " "
		if a.Breaking {
			marker = "!"
		}
		fmt.Printf("  %s %-28s %s -> %s (severity %.2f)\n", marker, a.Name, a.OldValue, a.NewValue, a.Severity)
	}
	for _, r := range report.Recommendations {
		fmt.Printf("  * %s\n", r)
	}
}

func runAdvise(snap *registry.Snapshot, name, model string) {
	ctx := context.Background()
	cli, err := llm.NewGeminiClient(ctx, model)
	if err != nil {
		log.Fatal(err)
	}
	s, err := advisor.New(cli).Suggest(ctx, snap, name)
	if err != nil {
		log.Fatal(err)
	}
	emitJSON(s)
}

func joinOrNone(names []string) string {
	if len(names) == 0 {
		return "(none)"
	}
	return strings.Join(names, ", ")
}

func emitJSON(v any) {
	out, err := jsonutil.MarshalNoEscapeIndent(v, "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(out))
}
