package parser

// Intent is the recognized category of a question. It is a closed set:
// adding a query type means adding a constant here and wiring a handler
// for it at startup.
type Intent int

const (
	IntentUnknown Intent = iota
	IntentCompareRainfallCrops
	IntentDistrictExtremes
	IntentProductionTrend
	IntentPolicyArguments
)

// String returns the stable tag used in debug output and routing errors
func (i Intent) String() string {
	switch i {
	case IntentCompareRainfallCrops:
		return "compare_rainfall_and_crops"
	case IntentDistrictExtremes:
		return "district_extremes"
	case IntentProductionTrend:
		return "production_trend_with_climate"
	case IntentPolicyArguments:
		return "policy_arguments"
	default:
		return "unknown"
	}
}

// Params is the typed parameter bag extracted from a question. State and
// crop names are canonical (already resolved through the harmonization
// layer); Unresolved keeps the raw tokens that failed to resolve so the
// answer can name them.
type Params struct {
	States     []string `json:"states,omitempty"`
	StateIDs   []int    `json:"-"`
	Crops      []string `json:"crops,omitempty"`
	CropIDs    []int    `json:"-"`
	Year       int      `json:"year,omitempty"`   // explicit year, 0 when absent
	LastN      int      `json:"last_n,omitempty"` // "last N years", 0 when absent
	TopK       int      `json:"top_k,omitempty"`  // 0 means the handler default
	Unresolved []string `json:"unresolved,omitempty"`
}

// Result pairs the recognized intent with its parameters
type Result struct {
	Intent Intent
	Params Params
}
