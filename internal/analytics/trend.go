package analytics

import (
	"fmt"

	"github.com/project-samarth/samarth/internal/dataset"
	"github.com/project-samarth/samarth/internal/engine"
	"github.com/project-samarth/samarth/internal/parser"
)

const (
	defaultTrendWindow = 10

	// Rainfall gaps longer than this are left unfilled; interpolating
	// across them would invent a climate signal.
	maxInterpolatedGap = 2
)

// ProductionTrend answers "production trend with climate correlation"
// questions: the year-ordered production series for one state and crop
// against the co-indexed rainfall series, with growth rates and a Pearson
// correlation. Correlation over fewer than 3 overlapping points is
// reported as undefined.
type ProductionTrend struct{}

// NewProductionTrend creates the handler
func NewProductionTrend() *ProductionTrend {
	return &ProductionTrend{}
}

// Name implements engine.Handler
func (h *ProductionTrend) Name() string {
	return "production trend with climate correlation"
}

// Execute implements engine.Handler
func (h *ProductionTrend) Execute(params parser.Params, snap *dataset.Snapshot) (*engine.Envelope, error) {
	if len(params.StateIDs) == 0 {
		return nil, engine.InvalidParamsError{Handler: h.Name(), Slot: "state"}
	}
	if len(params.CropIDs) == 0 {
		return nil, engine.InvalidParamsError{Handler: h.Name(), Slot: "crop"}
	}

	stateID, state := params.StateIDs[0], params.States[0]
	cropID, crop := params.CropIDs[0], params.Crops[0]

	// An explicit year in the question caps the window at that year.
	years := snap.ProductionYears(stateID, cropID)
	if params.Year > 0 {
		kept := make([]int, 0, len(years))
		for _, y := range years {
			if y <= params.Year {
				kept = append(kept, y)
			}
		}
		years = kept
	}
	if len(years) == 0 {
		scope := fmt.Sprintf("%s in %s", crop, state)
		if params.Year > 0 {
			scope = fmt.Sprintf("%s up to %d", scope, params.Year)
		}
		env := engine.NewEnvelope(fmt.Sprintf("No production data found for %s.", scope))
		env.Citations = append(env.Citations,
			engine.Cite(snap.Source(dataset.DatasetAgriculture),
				fmt.Sprintf("production checked for %s in %s: no rows", crop, state)))
		return env, nil
	}

	window := yearsWindow(years, params.LastN)
	if params.LastN == 0 && len(window) > defaultTrendWindow {
		window = window[len(window)-defaultTrendWindow:]
	}
	windowLabel := fmt.Sprintf("%d-%d", window[0], window[len(window)-1])

	// Year-ordered production totals; years whose every record is
	// missing simply have no entry.
	production := make(map[int]float64)
	for _, r := range snap.Production {
		if r.Missing || r.StateID != stateID || r.CropID != cropID || !containsYear(window, r.Year) {
			continue
		}
		production[r.Year] += r.Production
	}

	// Interpolated rainfall is used for the computation only; the raw
	// series is what the citation refers to.
	rawRain := snap.RainfallSeries(stateID)
	rain := InterpolateGaps(rawRain, maxInterpolatedGap)

	table := engine.Table{
		Title:   fmt.Sprintf("%s %s production vs rainfall", state, crop),
		Headers: []string{"Year", "Production (tonnes)", "Rainfall (mm)", "YoY change (%)"},
	}

	var prodSeries, rainSeries []float64
	prevProd := 0.0
	havePrev := false
	for _, year := range window {
		prod, hasProd := production[year]
		rainVal, hasRain := rain[year]

		row := []any{year, nil, nil, nil}
		if hasProd {
			row[1] = Round2(prod)
			if havePrev && prevProd != 0 {
				row[3] = Round1((prod - prevProd) / prevProd * 100)
			}
			prevProd = prod
			havePrev = true
		}
		if hasRain {
			row[2] = Round1(rainVal)
		}
		table.Rows = append(table.Rows, row)

		if hasProd && hasRain {
			prodSeries = append(prodSeries, prod)
			rainSeries = append(rainSeries, rainVal)
		}
	}

	var prodOnly []float64
	for _, year := range window {
		if v, ok := production[year]; ok {
			prodOnly = append(prodOnly, v)
		}
	}
	growth := Growth(prodOnly)

	answer := fmt.Sprintf("%s recorded a %.1f%% change in %s production over %d year(s).",
		state, growth, crop, len(window))
	r, ok := Pearson(prodSeries, rainSeries)
	if ok {
		answer += fmt.Sprintf(" Rainfall correlation indicates %s (r=%.2f).", interpretCorrelation(r), r)
	} else {
		answer += fmt.Sprintf(" Rainfall correlation is undefined: only %d overlapping observation(s).", len(prodSeries))
	}

	env := engine.NewEnvelope(answer)
	env.Tables = append(env.Tables, table)
	env.Citations = append(env.Citations,
		engine.Cite(snap.Source(dataset.DatasetAgriculture),
			fmt.Sprintf("production of %s in %s, years %s", crop, state, windowLabel)),
		engine.Cite(snap.Source(dataset.DatasetRainfall),
			fmt.Sprintf("raw annual rainfall for %s, years %s (gaps interpolated for the correlation only)", state, windowLabel)))
	return env, nil
}
