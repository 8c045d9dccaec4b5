package parser

import (
	"reflect"
	"testing"

	"github.com/project-samarth/samarth/internal/dataset"
	"github.com/project-samarth/samarth/internal/harmonize"
)

func testSnapshot() *dataset.Snapshot {
	dims := harmonize.NewIndex(harmonize.DefaultThreshold)
	for _, s := range []string{"Kerala", "Punjab", "Karnataka", "Maharashtra"} {
		dims.Add(harmonize.KindState, s)
	}
	for _, c := range []string{"Rice", "Wheat", "Sugarcane", "Cotton"} {
		dims.Add(harmonize.KindCrop, c)
	}
	dims.AttachAliases(harmonize.KindCrop, "Rice", []string{"paddy"})
	return &dataset.Snapshot{Dims: dims}
}

func TestParse_CompareRainfallCrops(t *testing.T) {
	snap := testSnapshot()

	result := Parse("Compare rainfall between Kerala and Punjab over the last 3 years and list the top 3 crops", snap)

	if result.Intent != IntentCompareRainfallCrops {
		t.Fatalf("Intent = %v, want %v", result.Intent, IntentCompareRainfallCrops)
	}
	if want := []string{"Kerala", "Punjab"}; !reflect.DeepEqual(result.Params.States, want) {
		t.Errorf("States = %v, want %v", result.Params.States, want)
	}
	if result.Params.LastN != 3 {
		t.Errorf("LastN = %d, want 3", result.Params.LastN)
	}
	if result.Params.TopK != 3 {
		t.Errorf("TopK = %d, want 3", result.Params.TopK)
	}
}

func TestParse_CompareWithUnknownCropFilter(t *testing.T) {
	snap := testSnapshot()

	// A crop filter naming no known crop must not vanish: the
	// comparison still parses on the resolvable states, and the token
	// is carried so the answer can name what it left out.
	result := Parse("Compare rainfall and top crops of Quinzleberry in Kerala and Punjab", snap)

	if result.Intent != IntentCompareRainfallCrops {
		t.Fatalf("Intent = %v, want %v", result.Intent, IntentCompareRainfallCrops)
	}
	if want := []string{"Kerala", "Punjab"}; !reflect.DeepEqual(result.Params.States, want) {
		t.Errorf("States = %v, want %v", result.Params.States, want)
	}
	if len(result.Params.Crops) != 0 {
		t.Errorf("Crops = %v, want none", result.Params.Crops)
	}
	if want := []string{"Quinzleberry"}; !reflect.DeepEqual(result.Params.Unresolved, want) {
		t.Errorf("Unresolved = %v, want %v", result.Params.Unresolved, want)
	}
}

func TestParse_DistrictExtremes(t *testing.T) {
	snap := testSnapshot()

	result := Parse("Which district in Karnataka had the highest production of Sugarcane in 2020?", snap)

	if result.Intent != IntentDistrictExtremes {
		t.Fatalf("Intent = %v, want %v", result.Intent, IntentDistrictExtremes)
	}
	if want := []string{"Karnataka"}; !reflect.DeepEqual(result.Params.States, want) {
		t.Errorf("States = %v, want %v", result.Params.States, want)
	}
	if want := []string{"Sugarcane"}; !reflect.DeepEqual(result.Params.Crops, want) {
		t.Errorf("Crops = %v, want %v", result.Params.Crops, want)
	}
	if result.Params.Year != 2020 {
		t.Errorf("Year = %d, want 2020", result.Params.Year)
	}
}

func TestParse_ProductionTrend(t *testing.T) {
	snap := testSnapshot()

	result := Parse("Show the production trend of Rice in Kerala over the last 5 years and correlate with rainfall", snap)

	if result.Intent != IntentProductionTrend {
		t.Fatalf("Intent = %v, want %v", result.Intent, IntentProductionTrend)
	}
	if want := []string{"Kerala"}; !reflect.DeepEqual(result.Params.States, want) {
		t.Errorf("States = %v, want %v", result.Params.States, want)
	}
	if want := []string{"Rice"}; !reflect.DeepEqual(result.Params.Crops, want) {
		t.Errorf("Crops = %v, want %v", result.Params.Crops, want)
	}
	if result.Params.LastN != 5 {
		t.Errorf("LastN = %d, want 5", result.Params.LastN)
	}
}

func TestParse_PolicyArguments(t *testing.T) {
	snap := testSnapshot()

	result := Parse("What arguments support a policy to shift from Rice to Wheat in Punjab?", snap)

	if result.Intent != IntentPolicyArguments {
		t.Fatalf("Intent = %v, want %v", result.Intent, IntentPolicyArguments)
	}
	if want := []string{"Punjab"}; !reflect.DeepEqual(result.Params.States, want) {
		t.Errorf("States = %v, want %v", result.Params.States, want)
	}
	if want := []string{"Rice", "Wheat"}; !reflect.DeepEqual(result.Params.Crops, want) {
		t.Errorf("Crops = %v, want %v (from-crop first)", result.Params.Crops, want)
	}
}

func TestParse_CropAlias(t *testing.T) {
	snap := testSnapshot()

	result := Parse("Show the production trend of paddy in Kerala", snap)

	if result.Intent != IntentProductionTrend {
		t.Fatalf("Intent = %v, want %v", result.Intent, IntentProductionTrend)
	}
	if want := []string{"Rice"}; !reflect.DeepEqual(result.Params.Crops, want) {
		t.Errorf("Crops = %v, want %v (alias must resolve to the canonical name)", result.Params.Crops, want)
	}
}

func TestParse_ComparisonWithOneUnknownState(t *testing.T) {
	snap := testSnapshot()

	// A two-state comparison naming one unknown state must not degrade
	// into a single-region answer.
	result := Parse("Compare rainfall in Kerala and Atlantis", snap)

	if result.Intent != IntentUnknown {
		t.Fatalf("Intent = %v, want %v", result.Intent, IntentUnknown)
	}
	found := false
	for _, tok := range result.Params.Unresolved {
		if tok == "Atlantis" {
			found = true
		}
	}
	if !found {
		t.Errorf("Unresolved = %v, want it to name Atlantis", result.Params.Unresolved)
	}
}

func TestParse_UnrecognizedQuestion(t *testing.T) {
	snap := testSnapshot()

	result := Parse("What is the meaning of life?", snap)

	if result.Intent != IntentUnknown {
		t.Fatalf("Intent = %v, want %v", result.Intent, IntentUnknown)
	}
	if len(result.Params.Unresolved) != 0 {
		t.Errorf("Unresolved = %v, want none", result.Params.Unresolved)
	}
}

func TestParse_Deterministic(t *testing.T) {
	snap := testSnapshot()
	questions := []string{
		"Compare rainfall between Kerala and Punjab over the last 3 years",
		"Which district in Karnataka had the highest production of Sugarcane in 2020?",
		"Show the production trend of Rice in Kerala",
		"Compare rainfall in Kerala and Atlantis",
	}

	for _, q := range questions {
		first := Parse(q, snap)
		for i := 0; i < 10; i++ {
			if got := Parse(q, snap); !reflect.DeepEqual(got, first) {
				t.Fatalf("Parse(%q) is not deterministic: %+v vs %+v", q, got, first)
			}
		}
	}
}

func TestIntentString(t *testing.T) {
	tests := []struct {
		intent Intent
		want   string
	}{
		{IntentUnknown, "unknown"},
		{IntentCompareRainfallCrops, "compare_rainfall_and_crops"},
		{IntentDistrictExtremes, "district_extremes"},
		{IntentProductionTrend, "production_trend_with_climate"},
		{IntentPolicyArguments, "policy_arguments"},
	}
	for _, tt := range tests {
		if got := tt.intent.String(); got != tt.want {
			t.Errorf("Intent(%d).String() = %q, want %q", tt.intent, got, tt.want)
		}
	}
}
