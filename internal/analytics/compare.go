package analytics

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/project-samarth/samarth/internal/dataset"
	"github.com/project-samarth/samarth/internal/engine"
	"github.com/project-samarth/samarth/internal/harmonize"
	"github.com/project-samarth/samarth/internal/parser"
)

const (
	defaultCompareWindow = 5
	defaultTopK          = 3
)

// CompareRainfallCrops answers "compare rainfall and top crops" questions:
// mean annual rainfall per state over the window plus each state's top-K
// crops by total production.
type CompareRainfallCrops struct{}

// NewCompareRainfallCrops creates the handler
func NewCompareRainfallCrops() *CompareRainfallCrops {
	return &CompareRainfallCrops{}
}

// Name implements engine.Handler
func (h *CompareRainfallCrops) Name() string {
	return "rainfall vs crop comparison"
}

// Execute implements engine.Handler
func (h *CompareRainfallCrops) Execute(params parser.Params, snap *dataset.Snapshot) (*engine.Envelope, error) {
	if len(params.StateIDs) < 2 {
		return nil, engine.InvalidParamsError{Handler: h.Name(), Slot: "states"}
	}

	stateList := strings.Join(params.States, ", ")
	years := snap.RainfallYears(params.StateIDs...)
	if len(years) == 0 {
		env := engine.NewEnvelope(fmt.Sprintf("No rainfall observations found for %s.", stateList))
		env.Citations = append(env.Citations,
			engine.Cite(snap.Source(dataset.DatasetRainfall), fmt.Sprintf("annual rainfall checked for %s: no rows", stateList)))
		return env, nil
	}

	window := yearsWindow(years, params.LastN)
	if params.LastN == 0 && len(window) > defaultCompareWindow {
		window = window[len(window)-defaultCompareWindow:]
	}
	windowLabel := fmt.Sprintf("%d-%d", window[0], window[len(window)-1])

	// Rainfall table: one row per year, one column per state
	series := make([]map[int]float64, len(params.StateIDs))
	for i, id := range params.StateIDs {
		series[i] = snap.RainfallSeries(id)
	}

	rainTable := engine.Table{
		Title:   "Average annual rainfall (mm)",
		Headers: append([]string{"Year"}, params.States...),
	}
	for _, year := range window {
		row := []any{year}
		for i := range params.StateIDs {
			if v, ok := series[i][year]; ok {
				row = append(row, Round1(v))
			} else {
				row = append(row, nil)
			}
		}
		rainTable.Rows = append(rainTable.Rows, row)
	}

	// Per-state means over the window
	clauses := make([]string, 0, len(params.States))
	for i, state := range params.States {
		var values []float64
		for _, year := range window {
			if v, ok := series[i][year]; ok {
				values = append(values, v)
			}
		}
		mean := Mean(values)
		if math.IsNaN(mean) {
			clauses = append(clauses, fmt.Sprintf("%s has no rainfall observations in the window", state))
		} else {
			clauses = append(clauses, fmt.Sprintf("%s averaged %.1f mm", state, mean))
		}
	}

	topK := params.TopK
	if topK <= 0 {
		topK = defaultTopK
	}

	env := engine.NewEnvelope(fmt.Sprintf("Compared rainfall for %s over %d year(s). %s.",
		stateList, len(window), strings.Join(clauses, "; ")))
	env.Tables = append(env.Tables, rainTable)

	for i, stateID := range params.StateIDs {
		env.Tables = append(env.Tables, h.topCropsTable(snap, params, stateID, params.States[i], window, topK))
	}

	rainDetail := fmt.Sprintf("annual rainfall for %s, years %s", stateList, windowLabel)
	agriDetail := fmt.Sprintf("production totals for %s, years %s", stateList, windowLabel)
	if len(params.Crops) > 0 {
		agriDetail += fmt.Sprintf(", crop filter %s", params.Crops[0])
	}
	env.Citations = append(env.Citations,
		engine.Cite(snap.Source(dataset.DatasetRainfall), rainDetail),
		engine.Cite(snap.Source(dataset.DatasetAgriculture), agriDetail))

	return env, nil
}

// topCropsTable ranks a state's crops by total non-missing production
// across the window. Ties break by canonical crop name ascending.
func (h *CompareRainfallCrops) topCropsTable(snap *dataset.Snapshot, params parser.Params, stateID int, state string, window []int, topK int) engine.Table {
	totals := make(map[int]float64)
	for _, r := range snap.Production {
		if r.Missing || r.StateID != stateID || !containsYear(window, r.Year) {
			continue
		}
		if len(params.CropIDs) > 0 && r.CropID != params.CropIDs[0] {
			continue
		}
		totals[r.CropID] += r.Production
	}

	type ranked struct {
		name  string
		total float64
	}
	rankings := make([]ranked, 0, len(totals))
	for cropID, total := range totals {
		name := fmt.Sprintf("crop #%d", cropID)
		if dim, ok := snap.Dims.ByID(harmonize.KindCrop, cropID); ok {
			name = dim.Canonical
		}
		rankings = append(rankings, ranked{name: name, total: total})
	}
	sort.Slice(rankings, func(i, j int) bool {
		if rankings[i].total != rankings[j].total {
			return rankings[i].total > rankings[j].total
		}
		return rankings[i].name < rankings[j].name
	})
	if len(rankings) > topK {
		rankings = rankings[:topK]
	}

	table := engine.Table{
		Title:   fmt.Sprintf("Top %d crops by production: %s", topK, state),
		Headers: []string{"Rank", "Crop", "Production (tonnes)"},
	}
	if len(rankings) == 0 {
		table.Rows = append(table.Rows, []any{1, "No data", nil})
		return table
	}
	for i, rk := range rankings {
		table.Rows = append(table.Rows, []any{i + 1, rk.name, Round2(rk.total)})
	}
	return table
}
