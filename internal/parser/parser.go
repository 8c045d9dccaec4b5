package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/project-samarth/samarth/internal/dataset"
	"github.com/project-samarth/samarth/internal/harmonize"
)

// State and crop names are one to three words
const namePattern = `[A-Za-z]+(?:\s+[A-Za-z]+){0,2}`

var (
	statePairRe    = regexp.MustCompile(`(?i)in\s+(` + namePattern + `?)\s+(?:and|vs\.?|versus|&)\s+(` + namePattern + `?)\b`)
	stateBetweenRe = regexp.MustCompile(`(?i)between\s+(` + namePattern + `?)\s+(?:and|vs\.?|versus|&)\s+(` + namePattern + `?)\b`)
	compareStateRe = regexp.MustCompile(`(?i)compare\s+(?:.*?\s+in\s+)?(` + namePattern + `?)\s+(?:and|vs\.?|versus|&)\s+(` + namePattern + `?)\b`)
	singleStateRe  = regexp.MustCompile(`(?i)\bin\s+([A-Za-z\s]+?)(?:\s+over|\s+during|\s+across|\s+for|\s+between|\s+with|\s+having|\s+showing|\s+that|\s+had|\s+and|,|\.|\?|$)`)

	cropTrendRe      = regexp.MustCompile(`(?i)(?:production|yield)\s+trend\s+of\s+([A-Za-z\s]+?)\s+in\b`)
	cropOfRe         = regexp.MustCompile(`(?i)production\s+of\s+([A-Za-z\s]+?)(?:\s+in|\s+over|\s+during|,|\.|\?|$)`)
	cropsOfRe        = regexp.MustCompile(`(?i)crops\s+of\s+([A-Za-z\s]+?)(?:\(|\s+for|\s+in|,|\.|$)`)
	cropBeforeProdRe = regexp.MustCompile(`(?i)\b([A-Za-z]+)\s+production\b`)

	shiftFromRe = regexp.MustCompile(`(?i)(?:shift|switch|move)\s+from\s+(` + namePattern + `?)\s+to\s+(` + namePattern + `?)\b`)
	promoteRe   = regexp.MustCompile(`(?i)promote\s+(` + namePattern + `?)\s+over\s+(` + namePattern + `?)\b`)

	lastNRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:last|past|previous|recent)\s+(\d+)\s+years?`),
		regexp.MustCompile(`(?i)(?:over|during|for|in)\s+(?:the\s+)?(?:last|past|previous)?\s*(\d+)\s+years?`),
	}
	topKRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:top|first|best|leading|main)\s+(\d+)`),
		regexp.MustCompile(`(?i)(\d+)\s+(?:most|top|best|leading|main)`),
	}
	yearRe = regexp.MustCompile(`\b(1[89]\d{2}|20\d{2})\b`)
)

// Words that regex captures sometimes pick up but can never be part of a
// geographic or crop name
var excludeTokens = map[string]bool{
	"most": true, "recent": true, "year": true, "years": true,
	"available": true, "lowest": true, "highest": true, "district": true,
	"districts": true, "compare": true, "that": true, "with": true,
	"the": true, "last": true, "rainfall": true, "production": true,
	"crop": true, "crops": true, "and": true, "total": true,
}

// template is one recognizable question shape. Templates are tried in a
// fixed priority order; the first one whose required slots all resolve
// wins. A template whose keywords match but whose slots do not resolve is
// rejected, and parsing falls through to the next template.
type template struct {
	intent  Intent
	match   func(lowered string) bool
	resolve func(text, lowered string, snap *dataset.Snapshot, unresolved *[]string) (Params, bool)
}

var templates = []template{
	{
		intent: IntentCompareRainfallCrops,
		match: func(l string) bool {
			return strings.Contains(l, "rainfall") &&
				(strings.Contains(l, "compare") || strings.Contains(l, " and ") ||
					strings.Contains(l, "top") || strings.Contains(l, "list") ||
					strings.Contains(l, "between") || strings.Contains(l, "versus") ||
					strings.Contains(l, " vs"))
		},
		resolve: resolveCompare,
	},
	{
		intent: IntentDistrictExtremes,
		match: func(l string) bool {
			if !strings.Contains(l, "district") {
				return false
			}
			return containsAny(l, "highest", "max", "maximum", "peak", "best", "top") ||
				containsAny(l, "lowest", "min", "minimum", "worst", "bottom")
		},
		resolve: resolveExtremes,
	},
	{
		intent: IntentPolicyArguments,
		match: func(l string) bool {
			return containsAny(l, "policy", "scheme", "promote", "shift from", "switch from")
		},
		resolve: resolvePolicy,
	},
	{
		intent: IntentProductionTrend,
		match: func(l string) bool {
			return containsAny(l, "trend", "show", "correlat")
		},
		resolve: resolveTrend,
	},
}

// Parse converts a raw question into an intent and typed parameters. It
// is a total function: unmatched input yields IntentUnknown with the raw
// tokens that failed to resolve, never an error. For the same question
// and the same snapshot the result is identical on every call.
func Parse(question string, snap *dataset.Snapshot) Result {
	text := strings.TrimSpace(question)
	lowered := strings.ToLower(text)

	var unresolved []string
	for _, tpl := range templates {
		if !tpl.match(lowered) {
			continue
		}
		if params, ok := tpl.resolve(text, lowered, snap, &unresolved); ok {
			return Result{Intent: tpl.intent, Params: params}
		}
	}

	return Result{Intent: IntentUnknown, Params: Params{Unresolved: dedupe(unresolved)}}
}

// resolveCompare requires two resolvable states. A comparison question
// naming only one known state is rejected rather than degraded into a
// single-region answer.
func resolveCompare(text, lowered string, snap *dataset.Snapshot, unresolved *[]string) (Params, bool) {
	rawA, rawB := extractStatePair(text)
	if rawA == "" || rawB == "" {
		return Params{}, false
	}

	stateA, okA := resolveName(snap, harmonize.KindState, rawA, unresolved)
	stateB, okB := resolveName(snap, harmonize.KindState, rawB, unresolved)
	if !okA || !okB {
		return Params{}, false
	}

	params := Params{
		States:   []string{stateA.Canonical, stateB.Canonical},
		StateIDs: []int{stateA.ID, stateB.ID},
		LastN:    extractLastN(lowered),
		TopK:     extractTopK(lowered),
	}

	// The crop filter is optional: the comparison still stands without
	// it, but a filter token that resolves to nothing is carried in
	// Unresolved so the answer can name what it left out.
	if rawCrop := extractCropFilter(text); rawCrop != "" {
		if crop, ok := resolveName(snap, harmonize.KindCrop, rawCrop, unresolved); ok {
			params.Crops = []string{crop.Canonical}
			params.CropIDs = []int{crop.ID}
		} else {
			params.Unresolved = append(params.Unresolved, rawCrop)
		}
	}

	return params, true
}

// resolveExtremes requires at least one resolvable state and a crop
func resolveExtremes(text, lowered string, snap *dataset.Snapshot, unresolved *[]string) (Params, bool) {
	var rawStates []string
	if a, b := extractStatePair(text); a != "" {
		rawStates = append(rawStates, a)
		if b != "" {
			rawStates = append(rawStates, b)
		}
	} else if s := extractSingleState(text); s != "" {
		rawStates = append(rawStates, s)
	}
	if len(rawStates) == 0 {
		return Params{}, false
	}

	params := Params{Year: extractYear(text)}
	for _, raw := range rawStates {
		dim, ok := resolveName(snap, harmonize.KindState, raw, unresolved)
		if !ok {
			return Params{}, false
		}
		params.States = append(params.States, dim.Canonical)
		params.StateIDs = append(params.StateIDs, dim.ID)
	}

	rawCrop := extractCrop(text)
	if rawCrop == "" {
		return Params{}, false
	}
	crop, ok := resolveName(snap, harmonize.KindCrop, rawCrop, unresolved)
	if !ok {
		return Params{}, false
	}
	params.Crops = []string{crop.Canonical}
	params.CropIDs = []int{crop.ID}

	return params, true
}

// resolveTrend requires one state and one crop
func resolveTrend(text, lowered string, snap *dataset.Snapshot, unresolved *[]string) (Params, bool) {
	rawState := extractSingleState(text)
	rawCrop := extractCrop(text)
	if rawState == "" || rawCrop == "" {
		return Params{}, false
	}

	state, okS := resolveName(snap, harmonize.KindState, rawState, unresolved)
	crop, okC := resolveName(snap, harmonize.KindCrop, rawCrop, unresolved)
	if !okS || !okC {
		return Params{}, false
	}

	return Params{
		States:   []string{state.Canonical},
		StateIDs: []int{state.ID},
		Crops:    []string{crop.Canonical},
		CropIDs:  []int{crop.ID},
		LastN:    extractLastN(lowered),
		Year:     extractYear(text),
	}, true
}

// resolvePolicy requires a state plus a from-crop/to-crop pair
func resolvePolicy(text, lowered string, snap *dataset.Snapshot, unresolved *[]string) (Params, bool) {
	rawFrom, rawTo := extractCropPair(text)
	rawState := extractSingleState(text)
	if rawFrom == "" || rawTo == "" || rawState == "" {
		return Params{}, false
	}

	state, okS := resolveName(snap, harmonize.KindState, rawState, unresolved)
	from, okF := resolveName(snap, harmonize.KindCrop, rawFrom, unresolved)
	to, okT := resolveName(snap, harmonize.KindCrop, rawTo, unresolved)
	if !okS || !okF || !okT {
		return Params{}, false
	}

	return Params{
		States:   []string{state.Canonical},
		StateIDs: []int{state.ID},
		Crops:    []string{from.Canonical, to.Canonical},
		CropIDs:  []int{from.ID, to.ID},
		LastN:    extractLastN(lowered),
	}, true
}

func resolveName(snap *dataset.Snapshot, kind harmonize.Kind, raw string, unresolved *[]string) (*harmonize.Dimension, bool) {
	dim, err := snap.Dims.Normalize(kind, raw)
	if err != nil {
		*unresolved = append(*unresolved, raw)
		return nil, false
	}
	return dim, true
}

// Extraction helpers

func extractStatePair(text string) (string, string) {
	for _, re := range []*regexp.Regexp{statePairRe, stateBetweenRe, compareStateRe} {
		if m := re.FindStringSubmatch(text); m != nil {
			a, b := cleanName(m[1]), cleanName(m[2])
			if a != "" && b != "" {
				return a, b
			}
		}
	}
	return "", ""
}

func extractSingleState(text string) string {
	if m := singleStateRe.FindStringSubmatch(text); m != nil {
		return cleanName(m[1])
	}
	return ""
}

func extractCrop(text string) string {
	for _, re := range []*regexp.Regexp{cropTrendRe, cropOfRe, cropBeforeProdRe} {
		if m := re.FindStringSubmatch(text); m != nil {
			if c := cleanName(m[1]); c != "" {
				return c
			}
		}
	}
	return ""
}

func extractCropFilter(text string) string {
	if m := cropsOfRe.FindStringSubmatch(text); m != nil {
		if c := cleanName(m[1]); c != "" {
			return c
		}
	}
	return extractCrop(text)
}

func extractCropPair(text string) (string, string) {
	for _, re := range []*regexp.Regexp{shiftFromRe, promoteRe} {
		if m := re.FindStringSubmatch(text); m != nil {
			a, b := cleanName(m[1]), cleanName(m[2])
			if a != "" && b != "" {
				return a, b
			}
		}
	}
	return "", ""
}

func extractLastN(lowered string) int {
	for _, re := range lastNRes {
		if m := re.FindStringSubmatch(lowered); m != nil {
			n, err := strconv.Atoi(m[1])
			if err == nil && n > 0 {
				return n
			}
		}
	}
	return 0
}

func extractTopK(lowered string) int {
	for _, re := range topKRes {
		if m := re.FindStringSubmatch(lowered); m != nil {
			k, err := strconv.Atoi(m[1])
			if err == nil && k > 0 {
				return k
			}
		}
	}
	return 0
}

func extractYear(text string) int {
	if m := yearRe.FindStringSubmatch(text); m != nil {
		y, _ := strconv.Atoi(m[1])
		return y
	}
	return 0
}

// cleanName collapses whitespace and strips trailing tokens that cannot
// belong to a name
func cleanName(raw string) string {
	words := strings.Fields(raw)
	for len(words) > 0 && excludeTokens[strings.ToLower(words[len(words)-1])] {
		words = words[:len(words)-1]
	}
	for len(words) > 0 && excludeTokens[strings.ToLower(words[0])] {
		words = words[1:]
	}
	return strings.Join(words, " ")
}

func containsAny(l string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(l, sub) {
			return true
		}
	}
	return false
}

func dedupe(tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(tokens))
	out := tokens[:0]
	for _, tok := range tokens {
		key := strings.ToLower(tok)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, tok)
	}
	return out
}
