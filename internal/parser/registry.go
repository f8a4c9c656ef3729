package parser

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

type commandPhrase struct {
	canonical string
	alias     string
	tokens    []string
}

type Registry struct {
	commands map[string]CommandDef
	phrases  []commandPhrase
}

func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]CommandDef),
	}
}

// RegisterCommand indexes the canonical name and every alias as phrases.
func (r *Registry) RegisterCommand(c CommandDef) {
	c.Canonical = normaliseInput(c.Canonical)
	if c.Canonical == "" {
		return
	}
	if c.HandlerKey == "" {
		c.HandlerKey = c.Canonical
	}
	r.commands[c.Canonical] = c
	for _, spelling := range append([]string{c.Canonical}, c.Aliases...) {
		r.addPhrase(c.Canonical, spelling)
	}
}

func (r *Registry) addPhrase(canonical, spelling string) {
	alias := normaliseInput(spelling)
	if alias == "" {
		return
	}
	r.phrases = append(r.phrases, commandPhrase{canonical: canonical, alias: alias, tokens: tokenise(alias)})
}

func (r *Registry) command(canonical string) (CommandDef, bool) {
	canonical = normaliseInput(canonical)
	cmd, ok := r.commands[canonical]
	return cmd, ok
}

type matchKind int

const (
	matchFuzzy matchKind = iota
	matchPrefix
	matchAlias
	matchExact
)

type commandCandidate struct {
	Canonical string
	Alias     string
	Consumed  int
	Score     float64
	Kind      matchKind
}

// matchCommand scores every registered phrase against the leading tokens and
// returns the best candidate plus up to four runners-up for other commands.
func (r *Registry) matchCommand(tokens []string) (commandCandidate, []commandCandidate) {
	if len(tokens) == 0 {
		return commandCandidate{}, nil
	}
	joined := strings.Join(tokens, " ")
	var found []commandCandidate
	for _, phrase := range r.phrases {
		if c, ok := phrase.score(tokens, joined); ok {
			found = append(found, c)
		}
	}
	if len(found) == 0 {
		return commandCandidate{}, nil
	}
	rankCandidates(found)
	return found[0], runnersUp(found, 4)
}

func (p commandPhrase) score(tokens []string, joined string) (commandCandidate, bool) {
	if len(p.tokens) == 0 {
		return commandCandidate{}, false
	}
	c := commandCandidate{Canonical: p.canonical, Alias: p.alias}
	isAlias := p.alias != p.canonical

	c.Consumed = min(len(tokens), len(p.tokens))
	lead := strings.Join(tokens[:c.Consumed], " ")

	switch {
	case c.Consumed == len(p.tokens) && lead == p.alias:
		c.Kind, c.Score = matchExact, 1.0
		if isAlias {
			c.Kind, c.Score = matchAlias, 0.97
		}
		return c, true
	case len(p.tokens) == 1 && len(tokens[0]) >= 2 && strings.HasPrefix(p.alias, tokens[0]):
		c.Kind, c.Score, c.Consumed = matchPrefix, 0.9, 1
		return c, true
	}

	// Typos are only forgiven on inputs long enough to carry intent.
	if len(lead) < 3 {
		return commandCandidate{}, false
	}
	dist := levenshtein.ComputeDistance(lead, p.alias)
	if dist > levenshteinLimit(len(p.alias)) {
		return commandCandidate{}, false
	}
	c.Kind = matchFuzzy
	c.Score = 0.72 - 0.08*float64(dist)
	if strings.Contains(joined, p.alias) {
		c.Score += 0.04
	}
	if isAlias {
		c.Score += 0.03
	}
	return c, true
}

// rankCandidates orders by score, then by how many tokens the phrase used,
// then alphabetically so ties resolve the same way every time.
func rankCandidates(cands []commandCandidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Consumed != b.Consumed {
			return a.Consumed > b.Consumed
		}
		return a.Canonical < b.Canonical
	})
}

func runnersUp(ranked []commandCandidate, limit int) []commandCandidate {
	seen := map[string]bool{ranked[0].Canonical: true}
	out := make([]commandCandidate, 0, limit)
	for _, c := range ranked[1:] {
		if len(out) == limit {
			break
		}
		if !seen[c.Canonical] {
			seen[c.Canonical] = true
			out = append(out, c)
		}
	}
	return out
}

func levenshteinLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}

func DefaultRegistry() *Registry {
	r := NewRegistry()
	commands := []CommandDef{
		{Canonical: "help", Aliases: []string{"h", "commands", "?"}, MinArgs: 0, MaxArgs: 0, HandlerKey: "help", Usage: "help", Summary: "List commands."},
		{Canonical: "status", Aliases: []string{"st", "where am i", "date"}, MinArgs: 0, MaxArgs: 0, HandlerKey: "status", Usage: "status", Summary: "Show date, location, miles, money, pace and rations."},
		{Canonical: "inventory", Aliases: []string{"inv", "supplies", "wagon", "check supplies"}, MinArgs: 0, MaxArgs: 0, HandlerKey: "inventory", Usage: "inventory", Summary: "List wagon contents and load."},
		{Canonical: "party", Aliases: []string{"health", "members", "check party"}, MinArgs: 0, MaxArgs: 0, HandlerKey: "party", Usage: "party", Summary: "Show each member's health and ailments."},
		{Canonical: "buy", Aliases: []string{"purchase", "shop"}, MinArgs: 1, MaxArgs: 1, HandlerKey: "buy", Usage: "buy <item> [qty]", Summary: "Buy supplies at the current store price."},
		{Canonical: "pace", Aliases: []string{"speed"}, MinArgs: 1, MaxArgs: 1, HandlerKey: "pace", Usage: "pace <steady|strenuous|grueling|resting>", Summary: "Change travel pace."},
		{Canonical: "rations", Aliases: []string{"ration", "food"}, MinArgs: 1, MaxArgs: 1, HandlerKey: "rations", Usage: "rations <filling|meager|bare_bones>", Summary: "Change food rations."},
		{Canonical: "travel", Aliases: []string{"continue", "go", "move on", "keep going", "next"}, MinArgs: 0, MaxArgs: 0, HandlerKey: "travel", Usage: "travel [days]", Summary: "Travel one or more days at the current pace."},
		{Canonical: "rest", Aliases: []string{"camp", "stop", "wait"}, MinArgs: 0, MaxArgs: 0, HandlerKey: "rest", Usage: "rest [days]", Summary: "Rest in camp one or more days."},
		{Canonical: "treat", Aliases: []string{"heal", "medicine", "doctor"}, MinArgs: 1, MaxArgs: 1, HandlerKey: "treat", Usage: "treat <member>", Summary: "Use a medical supply on a sick member."},
		{Canonical: "save", MinArgs: 0, MaxArgs: 4, HandlerKey: "save", Usage: "save [name]", Summary: "Save the journey."},
		{Canonical: "load", MinArgs: 0, MaxArgs: 4, HandlerKey: "load", Usage: "load [name]", Summary: "Load a saved journey."},
		{Canonical: "menu", Aliases: []string{"back", "quit", "exit"}, MinArgs: 0, MaxArgs: 0, HandlerKey: "menu", Usage: "menu", Summary: "Return to the title screen."},
	}
	for _, cmd := range commands {
		r.RegisterCommand(cmd)
	}
	return r
}

// Commands lists registered commands in canonical order.
func (r *Registry) Commands() []CommandDef {
	out := make([]CommandDef, 0, len(r.commands))
	for _, c := range r.commands {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Canonical < out[j].Canonical })
	return out
}
