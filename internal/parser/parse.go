package parser

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

type Parser struct {
	registry *Registry
}

func New() *Parser {
	return &Parser{registry: DefaultRegistry()}
}

func (p *Parser) RegisterCommand(c CommandDef) {
	p.registry.RegisterCommand(c)
}

func (p *Parser) Commands() []CommandDef {
	return p.registry.Commands()
}

func (p *Parser) Parse(ctx ParseContext, raw string) Intent {
	intent := Intent{
		Raw:        raw,
		Normalised: normaliseInput(raw),
		Kind:       Unknown,
		Confidence: 0,
	}
	if intent.Normalised == "" {
		intent.Clarify = &ClarifyQuestion{Prompt: "Enter a command. Try help."}
		return intent
	}

	tokens := tokenise(intent.Normalised)
	cmdMatch, alternates := p.registry.matchCommand(tokens)
	if cmdMatch.Canonical == "" || cmdMatch.Score < 0.5 {
		if inferred := inferFreeTextIntent(ctx, intent.Raw, intent.Normalised); inferred != nil {
			return *inferred
		}
		intent.Clarify = &ClarifyQuestion{
			Prompt: "I couldn't map that to a command. Try help, status, inventory, party, buy, pace, rations, travel, rest, treat.",
		}
		return intent
	}

	if len(alternates) > 0 && (cmdMatch.Score-alternates[0].Score) < 0.05 && alternates[0].Score > 0.65 {
		intent.Clarify = &ClarifyQuestion{
			Prompt: "Did you mean:",
			Options: []Intent{
				{Raw: raw, Normalised: cmdMatch.Canonical, Kind: commandKind(cmdMatch.Canonical), Verb: cmdMatch.Canonical, Confidence: cmdMatch.Score},
				{Raw: raw, Normalised: alternates[0].Canonical, Kind: commandKind(alternates[0].Canonical), Verb: alternates[0].Canonical, Confidence: alternates[0].Score},
			},
		}
		return intent
	}

	intent.Verb = cmdMatch.Canonical
	intent.Kind = commandKind(intent.Verb)
	intent.Confidence = clampScore(cmdMatch.Score)

	argsTokens := tokens
	if cmdMatch.Consumed > 0 && len(tokens) >= cmdMatch.Consumed {
		argsTokens = tokens[cmdMatch.Consumed:]
	}
	argsTokens, q := splitQuantity(argsTokens)
	intent.Quantity = q

	def, _ := p.registry.command(intent.Verb)
	resolvedArgs, clarify, argScore := resolveArgs(ctx, def, argsTokens)
	if clarify != nil {
		intent.Clarify = clarify
		intent.Confidence = 0.45
		return intent
	}
	intent.Args = resolvedArgs
	intent.Confidence = clampScore((intent.Confidence * 0.75) + (argScore * 0.25))

	if len(intent.Args) < def.MinArgs {
		if options := buildEntityOptions(ctx, def.Canonical, 5); len(options) > 0 {
			intent.Clarify = &ClarifyQuestion{
				Prompt:  fmt.Sprintf("Usage: %s. Did you mean:", def.Usage),
				Options: options,
			}
			intent.Confidence = 0.46
			return intent
		}
		intent.Clarify = &ClarifyQuestion{Prompt: fmt.Sprintf("Usage: %s", def.Usage)}
		intent.Confidence = 0.42
		return intent
	}

	if len(intent.Args) > def.MaxArgs {
		intent.Args = append([]string(nil), intent.Args[:def.MaxArgs]...)
		intent.Confidence = clampScore(intent.Confidence - 0.05)
	}

	if intent.Confidence < 0.52 && intent.Clarify == nil {
		intent.Clarify = &ClarifyQuestion{Prompt: "I have low confidence in that parse. Please rephrase."}
	}
	return intent
}

func commandKind(verb string) IntentKind {
	switch verb {
	case "help":
		return Help
	case "status", "inventory", "party":
		return Query
	default:
		return Command
	}
}

func splitQuantity(tokens []string) ([]string, *Quantity) {
	if len(tokens) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(tokens))
	var q *Quantity
	for _, token := range tokens {
		if q == nil {
			if candidate := parseQuantityToken(token); candidate != nil {
				q = candidate
				continue
			}
		}
		if isFiller(token) {
			continue
		}
		out = append(out, token)
	}
	return out, q
}

func resolveArgs(ctx ParseContext, def CommandDef, args []string) ([]string, *ClarifyQuestion, float64) {
	if len(args) == 0 {
		return nil, nil, 0.9
	}
	pool := entityPool(ctx, def.Canonical)
	if len(pool) == 0 {
		return args, nil, 0.88
	}

	if isPronoun(args[0]) && len(args) == 1 {
		if strings.TrimSpace(ctx.LastEntity) == "" {
			return nil, &ClarifyQuestion{Prompt: "Who or what does that refer to?"}, 0.4
		}
		return []string{normaliseInput(ctx.LastEntity)}, nil, 0.82
	}

	// Entities may span several words ("spare wheel", "bare bones").
	joined := strings.Join(args, " ")
	entity, confidence, tie := bestMatches(joined, pool)
	if len(entity) == 0 && len(args) > 1 {
		entity, confidence, tie = bestMatches(args[0], pool)
	}
	if tie && len(entity) >= 2 {
		options := make([]Intent, 0, 2)
		for idx := 0; idx < 2; idx++ {
			options = append(options, Intent{
				Kind:       commandKind(def.Canonical),
				Verb:       def.Canonical,
				Args:       []string{entity[idx]},
				Confidence: confidence - float64(idx)*0.01,
			})
		}
		return nil, &ClarifyQuestion{Prompt: fmt.Sprintf("Did you mean %s:", def.Canonical), Options: options}, 0.52
	}
	if len(entity) == 1 {
		return []string{entity[0]}, nil, confidence
	}
	return []string{joined}, nil, 0.6
}

func entityPool(ctx ParseContext, verb string) []string {
	switch verb {
	case "buy":
		return mergeUnique(ctx.Store, ctx.Inventory)
	case "treat":
		return mergeUnique(ctx.Party, nil)
	case "pace":
		return []string{"steady", "strenuous", "grueling", "resting"}
	case "rations":
		return []string{"filling", "meager", "bare bones"}
	default:
		return nil
	}
}

// bestMatches returns the closest entity, or the two closest when they score
// within 0.05 of each other and both look plausible.
func bestMatches(token string, all []string) ([]string, float64, bool) {
	token = normaliseInput(token)
	if len(all) == 0 || token == "" {
		return nil, 0, false
	}
	type scored struct {
		val   string
		score float64
	}
	var results []scored
	for _, cand := range all {
		if score, ok := scoreEntity(token, cand); ok {
			results = append(results, scored{val: cand, score: clampScore(score)})
		}
	}
	if len(results) == 0 {
		return nil, 0, false
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		return results[i].val < results[j].val
	})

	best := results[0]
	if len(results) > 1 {
		next := results[1]
		if best.score-next.score < 0.05 && next.score > 0.6 {
			return []string{best.val, next.val}, best.score, true
		}
	}
	return []string{best.val}, best.score, false
}

func scoreEntity(token, cand string) (float64, bool) {
	switch {
	case token == cand:
		return 1.0, true
	case len(token) >= 2 && strings.HasPrefix(cand, token):
		return 0.9, true
	case strings.TrimSuffix(token, "s") == cand:
		return 0.95, true
	}
	dist := levenshtein.ComputeDistance(token, cand)
	if dist > levenshteinLimit(len(cand)) {
		return 0, false
	}
	return 0.72 - 0.08*float64(dist), true
}

func buildEntityOptions(ctx ParseContext, verb string, maxOptions int) []Intent {
	options := make([]Intent, 0, maxOptions)
	for _, entity := range entityPool(ctx, verb) {
		options = append(options, Intent{
			Kind:       commandKind(verb),
			Verb:       verb,
			Args:       []string{entity},
			Confidence: 0.88,
		})
		if len(options) >= maxOptions {
			break
		}
	}
	return options
}

type freeTextRule struct {
	phrases    []string
	kind       IntentKind
	verb       string
	args       []string
	confidence float64
}

// freeTextRules are tried in order against input no command phrase matched.
var freeTextRules = []freeTextRule{
	{phrases: []string{"what do we have", "what have we got", "how much food", "check the wagon", "whats in the wagon"}, kind: Query, verb: "inventory", confidence: 0.9},
	{phrases: []string{"how is everyone", "hows everyone", "is anyone sick", "who is sick", "party health"}, kind: Query, verb: "party", confidence: 0.88},
	{phrases: []string{"slow down", "take it easy", "ease up"}, kind: Command, verb: "pace", args: []string{"steady"}, confidence: 0.82},
	{phrases: []string{"go faster", "hurry", "speed up", "push on"}, kind: Command, verb: "pace", args: []string{"strenuous"}, confidence: 0.8},
	{phrases: []string{"eat less", "cut rations", "save food"}, kind: Command, verb: "rations", args: []string{"meager"}, confidence: 0.8},
	{phrases: []string{"eat more", "full rations"}, kind: Command, verb: "rations", args: []string{"filling"}, confidence: 0.8},
	{phrases: []string{"hit the trail", "head west", "keep moving", "on we go"}, kind: Command, verb: "travel", confidence: 0.84},
	{phrases: []string{"rest", "sleep"}, kind: Command, verb: "rest", confidence: 0.8},
}

func inferFreeTextIntent(ctx ParseContext, raw string, normalised string) *Intent {
	build := func(kind IntentKind, verb string, args []string, confidence float64) *Intent {
		return &Intent{
			Raw:        raw,
			Normalised: normalised,
			Kind:       kind,
			Verb:       verb,
			Args:       args,
			Confidence: clampScore(confidence),
		}
	}

	for _, rule := range freeTextRules {
		if containsAnyPhrase(normalised, rule.phrases...) {
			return build(rule.kind, rule.verb, append([]string(nil), rule.args...), rule.confidence)
		}
	}
	if !containsAnyPhrase(normalised, "sick", "medicine", "heal") {
		return nil
	}
	for _, name := range ctx.Party {
		if member := normaliseInput(name); member != "" && containsWord(normalised, member) {
			return build(Command, "treat", []string{member}, 0.8)
		}
	}
	return nil
}

func containsAnyPhrase(value string, phrases ...string) bool {
	for _, phrase := range phrases {
		if containsPhrase(value, phrase) {
			return true
		}
	}
	return false
}

func containsPhrase(value, phrase string) bool {
	p := normaliseInput(phrase)
	if p == "" {
		return false
	}
	return strings.Contains(" "+value+" ", " "+p+" ")
}

func containsWord(value, word string) bool {
	return containsPhrase(value, word)
}

func mergeUnique(a, b []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(a)+len(b))
	add := func(list []string) {
		for _, v := range list {
			n := normaliseInput(v)
			if n == "" || seen[n] {
				continue
			}
			seen[n] = true
			out = append(out, n)
		}
	}
	add(a)
	add(b)
	return out
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func IntentToCommandString(intent Intent) string {
	verb := normaliseInput(intent.Verb)
	if verb == "" {
		return ""
	}
	args := make([]string, 0, len(intent.Args)+1)
	for _, arg := range intent.Args {
		if n := normaliseInput(arg); n != "" {
			args = append(args, n)
		}
	}
	if intent.Quantity != nil && intent.Quantity.Raw != "" {
		args = append(args, normaliseInput(intent.Quantity.Raw))
	}
	if len(args) == 0 {
		return verb
	}
	return verb + " " + strings.Join(args, " ")
}
