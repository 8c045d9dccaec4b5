package harmonize

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xrash/smetrics"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind identifies a dimension namespace
type Kind string

const (
	KindState    Kind = "state"
	KindDistrict Kind = "district"
	KindCrop     Kind = "crop"
)

// DefaultThreshold is the minimum Jaro-Winkler similarity accepted for a
// fuzzy match. Below it the caller must report the name as unresolved.
const DefaultThreshold = 0.85

// Dimension is a canonical entity with a surrogate key
type Dimension struct {
	ID        int
	Kind      Kind
	Canonical string
	Aliases   []string
}

// UnresolvedNameError indicates a raw name matched neither an alias nor a
// fuzzy candidate above the similarity threshold
type UnresolvedNameError struct {
	Kind Kind
	Raw  string
}

// Error implements the error interface
func (e UnresolvedNameError) Error() string {
	return fmt.Sprintf("unresolved %s name: %q", e.Kind, e.Raw)
}

var titler = cases.Title(language.English)

// fold reduces a raw name to its lookup key: lowercase with collapsed
// whitespace and underscores treated as spaces
func fold(raw string) string {
	return strings.ToLower(strings.Join(strings.Fields(strings.ReplaceAll(raw, "_", " ")), " "))
}

// Canonicalize title-cases a raw name after whitespace normalization
func Canonicalize(raw string) string {
	return titler.String(strings.Join(strings.Fields(strings.ReplaceAll(raw, "_", " ")), " "))
}

type kindIndex struct {
	dims   []*Dimension
	byKey  map[string]*Dimension // folded canonical and alias -> dimension
	nextID int
}

// Index resolves raw names to canonical dimensions across all kinds.
// It is read-only at request time; alias growth happens only through
// AttachAliases during snapshot construction.
type Index struct {
	kinds     map[Kind]*kindIndex
	threshold float64
}

// NewIndex creates an empty dimension index
func NewIndex(threshold float64) *Index {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Index{
		kinds: map[Kind]*kindIndex{
			KindState:    {byKey: make(map[string]*Dimension), nextID: 1},
			KindDistrict: {byKey: make(map[string]*Dimension), nextID: 1},
			KindCrop:     {byKey: make(map[string]*Dimension), nextID: 1},
		},
		threshold: threshold,
	}
}

// Add registers a canonical name, assigning a surrogate key. Re-adding an
// already-known name (canonical or alias spelling) returns the existing
// dimension unchanged.
func (x *Index) Add(kind Kind, raw string) *Dimension {
	ki := x.kinds[kind]
	key := fold(raw)
	if dim, ok := ki.byKey[key]; ok {
		return dim
	}
	dim := &Dimension{
		ID:        ki.nextID,
		Kind:      kind,
		Canonical: Canonicalize(raw),
	}
	ki.nextID++
	ki.dims = append(ki.dims, dim)
	ki.byKey[key] = dim
	return dim
}

// AttachAliases binds curated alias spellings to an already-registered
// canonical name. Aliases for unknown canonicals are ignored: the alias
// file may cover entities absent from the current snapshot.
func (x *Index) AttachAliases(kind Kind, canonical string, aliases []string) {
	ki := x.kinds[kind]
	dim, ok := ki.byKey[fold(canonical)]
	if !ok {
		return
	}
	for _, alias := range aliases {
		key := fold(alias)
		if _, exists := ki.byKey[key]; exists {
			continue
		}
		dim.Aliases = append(dim.Aliases, Canonicalize(alias))
		ki.byKey[key] = dim
	}
}

// Normalize resolves a raw name to its canonical dimension: exact
// case/whitespace-insensitive match first, then the best Jaro-Winkler
// candidate at or above the threshold. A successful fuzzy hit is not
// recorded as a new alias.
func (x *Index) Normalize(kind Kind, raw string) (*Dimension, error) {
	ki := x.kinds[kind]
	key := fold(raw)
	if key == "" {
		return nil, UnresolvedNameError{Kind: kind, Raw: raw}
	}

	if dim, ok := ki.byKey[key]; ok {
		return dim, nil
	}

	bestScore := 0.0
	var bestKey string
	var bestDim *Dimension
	for candidate, dim := range ki.byKey {
		score := smetrics.JaroWinkler(key, candidate, 0.7, 4)
		// Ties resolve to the lexicographically smaller candidate so
		// that map iteration order cannot change the outcome.
		if score > bestScore || (score == bestScore && bestDim != nil && candidate < bestKey) {
			bestScore = score
			bestKey = candidate
			bestDim = dim
		}
	}

	if bestDim == nil || bestScore < x.threshold {
		return nil, UnresolvedNameError{Kind: kind, Raw: raw}
	}
	return bestDim, nil
}

// Lookup returns the dimension for an exact (folded) name without fuzzy
// matching
func (x *Index) Lookup(kind Kind, raw string) (*Dimension, bool) {
	dim, ok := x.kinds[kind].byKey[fold(raw)]
	return dim, ok
}

// ByID returns the dimension with the given surrogate key
func (x *Index) ByID(kind Kind, id int) (*Dimension, bool) {
	for _, dim := range x.kinds[kind].dims {
		if dim.ID == id {
			return dim, true
		}
	}
	return nil, false
}

// Dimensions returns all dimensions of a kind ordered by surrogate key
func (x *Index) Dimensions(kind Kind) []*Dimension {
	dims := make([]*Dimension, len(x.kinds[kind].dims))
	copy(dims, x.kinds[kind].dims)
	sort.Slice(dims, func(i, j int) bool { return dims[i].ID < dims[j].ID })
	return dims
}
