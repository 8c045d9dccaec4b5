package analytics

import (
	"github.com/project-samarth/samarth/internal/engine"
	"github.com/project-samarth/samarth/internal/parser"
)

// NewRegistry builds the intent-to-handler mapping. The mapping is plain
// data constructed once at process start; a duplicate binding is a fatal
// configuration fault surfaced here.
func NewRegistry() (*engine.Registry, error) {
	registry := engine.NewRegistry()

	bindings := []struct {
		intent  parser.Intent
		handler engine.Handler
	}{
		{parser.IntentCompareRainfallCrops, NewCompareRainfallCrops()},
		{parser.IntentDistrictExtremes, NewDistrictExtremes()},
		{parser.IntentProductionTrend, NewProductionTrend()},
		{parser.IntentPolicyArguments, NewPolicyArguments()},
	}

	for _, b := range bindings {
		if err := registry.Register(b.intent, b.handler); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
