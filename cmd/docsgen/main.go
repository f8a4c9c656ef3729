package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/appengine-ltd/wagon-trail/internal/config"
	"github.com/appengine-ltd/wagon-trail/internal/parser"
	"github.com/appengine-ltd/wagon-trail/internal/trail"
	"github.com/appengine-ltd/wagon-trail/internal/travel"
)

type docFile struct {
	Name    string
	Title   string
	Content string
}

func main() {
	root := filepath.Join("docs", "reference", "catalogs")
	if err := os.MkdirAll(root, 0o755); err != nil {
		fatal(err)
	}

	cfg := config.Default()
	files := []docFile{
		generateItemsDoc(travel.NewStore(cfg.Store.MarkupPercent)),
		generateHealthDoc(),
		generateDiseasesDoc(),
		generatePaceDoc(travel.RulesFromConfig(cfg.Travel)),
		generateCommandsDoc(parser.DefaultRegistry().Commands()),
	}
	for _, f := range files {
		path := filepath.Join(root, f.Name)
		if err := os.WriteFile(path, []byte(f.Content), 0o644); err != nil {
			fatal(err)
		}
		fmt.Printf("wrote %s\n", path)
	}

	index := generateCatalogIndex(files)
	indexPath := filepath.Join(root, "README.md")
	if err := os.WriteFile(indexPath, []byte(index), 0o644); err != nil {
		fatal(err)
	}
	fmt.Printf("wrote %s\n", indexPath)
}

func generateCatalogIndex(files []docFile) string {
	var b strings.Builder
	b.WriteString("# Reference Catalogs\n\n")
	b.WriteString("Generated from the current Go source using `go run ./cmd/docsgen`.\n\n")
	for _, f := range files {
		b.WriteString(fmt.Sprintf("- [%s](./%s)\n", f.Title, f.Name))
	}
	return b.String()
}

func generateItemsDoc(store travel.Store) docFile {
	items := trail.ItemCatalog()

	var b strings.Builder
	b.WriteString("# Store Items\n\n")
	b.WriteString("Source: `internal/trail/catalog.go` (`ItemCatalog`).\n\n")
	b.WriteString(fmt.Sprintf("Total items: **%d**. Store markup: **%d%%**.\n\n", len(items), store.MarkupPercent))
	b.WriteString("| Kind | Label | Weight (lb) | Base Cost | Store Price |\n")
	b.WriteString("| --- | --- | --- | --- | --- |\n")
	for _, item := range items {
		price, _ := store.Price(item.Kind)
		b.WriteString("| ")
		b.WriteString(escape(string(item.Kind)))
		b.WriteString(" | ")
		b.WriteString(escape(item.Label))
		b.WriteString(" | ")
		b.WriteString(formatFloat(item.WeightPerUnit))
		b.WriteString(" | ")
		b.WriteString(trail.FormatMoney(item.CostPerUnit))
		b.WriteString(" | ")
		b.WriteString(trail.FormatMoney(price))
		b.WriteString(" |\n")
	}
	return docFile{Name: "items.md", Title: "Store Items", Content: b.String()}
}

func generateHealthDoc() docFile {
	var b strings.Builder
	b.WriteString("# Health Ladder\n\n")
	b.WriteString("Source: `internal/trail/health.go` (`HealthStatus`).\n\n")
	b.WriteString("Degrading moves one rung down, improving one rung up. Deceased is terminal.\n\n")
	b.WriteString("| Rank | Status | Label | Alive |\n")
	b.WriteString("| --- | --- | --- | --- |\n")
	for h := trail.HealthGood; h <= trail.HealthDeceased; h++ {
		b.WriteString(fmt.Sprintf("| %d | %s | %s | %s |\n", int(h), escape(h.String()), escape(h.Label()), yesNo(h != trail.HealthDeceased)))
	}
	return docFile{Name: "health.md", Title: "Health Ladder", Content: b.String()}
}

func generateDiseasesDoc() docFile {
	diseases := trail.AllDiseases()

	var b strings.Builder
	b.WriteString("# Diseases and Injuries\n\n")
	b.WriteString("Source: `internal/trail/health.go` (`AllDiseases`).\n\n")
	b.WriteString(fmt.Sprintf("Total ailments: **%d**. Each new ailment degrades health one rung.\n\n", len(diseases)))
	b.WriteString("| ID | Described As |\n")
	b.WriteString("| --- | --- |\n")
	for _, d := range diseases {
		b.WriteString(fmt.Sprintf("| %s | %s |\n", escape(string(d)), escape(d.Label())))
	}
	return docFile{Name: "diseases.md", Title: "Diseases and Injuries", Content: b.String()}
}

func generatePaceDoc(rules travel.Rules) docFile {
	var b strings.Builder
	b.WriteString("# Pace and Rations\n\n")
	b.WriteString("Source: `internal/travel/rules.go` (`DefaultRules`).\n\n")
	b.WriteString(fmt.Sprintf("Base distance: **%s mi/day**. Base food: **%s lb per person per day**. Trail length: **%s mi**.\n\n",
		formatFloat(rules.MilesPerDay), formatFloat(rules.FoodPerPersonPerDay), formatFloat(rules.TrailLengthMiles)))

	b.WriteString("| Pace | Multiplier | Miles/Day |\n")
	b.WriteString("| --- | --- | --- |\n")
	for _, p := range trail.AllPaces() {
		b.WriteString(fmt.Sprintf("| %s | %s | %s |\n", escape(p.String()), formatFloat(rules.PaceMultipliers[p]), formatFloat(rules.DailyMiles(p))))
	}

	b.WriteString("\n| Rations | Food Factor |\n")
	b.WriteString("| --- | --- |\n")
	for _, r := range trail.AllRations() {
		b.WriteString(fmt.Sprintf("| %s | %s |\n", escape(r.String()), formatFloat(rules.RationFactors[r])))
	}
	return docFile{Name: "pace.md", Title: "Pace and Rations", Content: b.String()}
}

func generateCommandsDoc(commands []parser.CommandDef) docFile {
	var b strings.Builder
	b.WriteString("# Commands\n\n")
	b.WriteString("Source: `internal/parser/registry.go` (`DefaultRegistry`).\n\n")
	b.WriteString(fmt.Sprintf("Total commands: **%d**. Misspellings are matched by edit distance.\n\n", len(commands)))
	b.WriteString("| Command | Usage | Aliases | Summary |\n")
	b.WriteString("| --- | --- | --- | --- |\n")
	for _, c := range commands {
		b.WriteString("| ")
		b.WriteString(escape(c.Canonical))
		b.WriteString(" | `")
		b.WriteString(escape(c.Usage))
		b.WriteString("` | ")
		b.WriteString(escape(strings.Join(c.Aliases, ", ")))
		b.WriteString(" | ")
		b.WriteString(escape(c.Summary))
		b.WriteString(" |\n")
	}
	return docFile{Name: "commands.md", Title: "Commands", Content: b.String()}
}

func formatFloat(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func escape(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	v = strings.ReplaceAll(v, "|", "\\|")
	v = strings.ReplaceAll(v, "\n", "<br>")
	return v
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
