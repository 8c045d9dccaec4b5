package analytics

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/project-samarth/samarth/internal/dataset"
	"github.com/project-samarth/samarth/internal/engine"
	"github.com/project-samarth/samarth/internal/parser"
)

const defaultPolicyWindow = 5

// PolicyArguments answers "should we shift from crop A to crop B"
// questions by contrasting historical production growth with each crop's
// water-requirement band and the state's own rainfall trend. Supporting
// and counter considerations are reported separately.
type PolicyArguments struct{}

// NewPolicyArguments creates the handler
func NewPolicyArguments() *PolicyArguments {
	return &PolicyArguments{}
}

// Name implements engine.Handler
func (h *PolicyArguments) Name() string {
	return "policy argument synthesis"
}

type cropSummary struct {
	name    string
	years   []int
	series  []float64
	growth  float64
	average float64
	hasData bool
}

// Execute implements engine.Handler
func (h *PolicyArguments) Execute(params parser.Params, snap *dataset.Snapshot) (*engine.Envelope, error) {
	if len(params.StateIDs) == 0 {
		return nil, engine.InvalidParamsError{Handler: h.Name(), Slot: "state"}
	}
	if len(params.CropIDs) < 2 {
		return nil, engine.InvalidParamsError{Handler: h.Name(), Slot: "crops"}
	}

	stateID, state := params.StateIDs[0], params.States[0]
	fromID, from := params.CropIDs[0], params.Crops[0]
	toID, to := params.CropIDs[1], params.Crops[1]

	years := snap.ProductionYears(stateID, 0)
	if len(years) == 0 {
		env := engine.NewEnvelope(fmt.Sprintf("No production data found for %s.", state))
		env.Citations = append(env.Citations,
			engine.Cite(snap.Source(dataset.DatasetAgriculture),
				fmt.Sprintf("production checked for %s: no rows", state)))
		return env, nil
	}

	window := yearsWindow(years, params.LastN)
	if params.LastN == 0 && len(window) > defaultPolicyWindow {
		window = window[len(window)-defaultPolicyWindow:]
	}
	windowLabel := fmt.Sprintf("%d-%d", window[0], window[len(window)-1])

	fromSum := h.summarize(snap, stateID, fromID, from, window)
	toSum := h.summarize(snap, stateID, toID, to, window)

	rainSeries := snap.RainfallSeries(stateID)
	var rainValues []float64
	for _, year := range window {
		if v, ok := rainSeries[year]; ok {
			rainValues = append(rainValues, v)
		}
	}
	rainMean := Mean(rainValues)
	rainTrend := Growth(rainValues)

	supporting, counter := h.arguments(state, fromSum, toSum, rainMean, rainTrend)

	env := engine.NewEnvelope(fmt.Sprintf(
		"Shifting from %s to %s in %s. Supporting: %s Counter: %s",
		from, to, state, sentenceList(supporting), sentenceList(counter)))

	for _, sum := range []cropSummary{fromSum, toSum} {
		table := engine.Table{
			Title:   fmt.Sprintf("%s production in %s", sum.name, state),
			Headers: []string{"Year", "Production (tonnes)"},
		}
		if !sum.hasData {
			table.Rows = append(table.Rows, []any{nil, "No data"})
		}
		for i, year := range sum.years {
			table.Rows = append(table.Rows, []any{year, Round2(sum.series[i])})
		}
		env.Tables = append(env.Tables, table)
	}

	rainTable := engine.Table{
		Title:   "Rainfall context",
		Headers: []string{"Year", "Rainfall (mm)"},
	}
	for _, year := range window {
		if v, ok := rainSeries[year]; ok {
			rainTable.Rows = append(rainTable.Rows, []any{year, Round1(v)})
		}
	}
	env.Tables = append(env.Tables, rainTable)

	bandTable := engine.Table{
		Title:   "Typical water requirement (reference)",
		Headers: []string{"Crop", "Requirement (mm)", "Band"},
	}
	for _, crop := range []string{from, to} {
		if band, ok := LookupWaterBand(crop); ok {
			bandTable.Rows = append(bandTable.Rows,
				[]any{crop, fmt.Sprintf("%.0f-%.0f", band.MinMM, band.MaxMM), band.Label})
		} else {
			bandTable.Rows = append(bandTable.Rows, []any{crop, nil, "not in reference"})
		}
	}
	env.Tables = append(env.Tables, bandTable)

	refTime, _ := time.Parse("2006-01", WaterReferenceVersion)
	env.Citations = append(env.Citations,
		engine.Cite(snap.Source(dataset.DatasetAgriculture),
			fmt.Sprintf("production of %s and %s in %s, years %s", from, to, state, windowLabel)),
		engine.Cite(snap.Source(dataset.DatasetRainfall),
			fmt.Sprintf("annual rainfall for %s, years %s", state, windowLabel)),
		engine.Citation{
			Dataset:      WaterReferenceDataset,
			SnapshotTime: refTime.UTC().Format(time.RFC3339),
			Detail:       fmt.Sprintf("static water-requirement bands for %s and %s, version %s", from, to, WaterReferenceVersion),
		})
	return env, nil
}

func (h *PolicyArguments) summarize(snap *dataset.Snapshot, stateID, cropID int, name string, window []int) cropSummary {
	totals := make(map[int]float64)
	for _, r := range snap.Production {
		if r.Missing || r.StateID != stateID || r.CropID != cropID || !containsYear(window, r.Year) {
			continue
		}
		totals[r.Year] += r.Production
	}

	sum := cropSummary{name: name}
	for _, year := range window {
		if v, ok := totals[year]; ok {
			sum.years = append(sum.years, year)
			sum.series = append(sum.series, v)
		}
	}
	sum.hasData = len(sum.series) > 0
	sum.growth = Growth(sum.series)
	sum.average = Mean(sum.series)
	return sum
}

// arguments derives the supporting and counter considerations for the
// proposed shift
func (h *PolicyArguments) arguments(state string, from, to cropSummary, rainMean, rainTrend float64) (supporting, counter []string) {
	if to.hasData && from.hasData {
		if to.growth > from.growth {
			supporting = append(supporting, fmt.Sprintf(
				"%s production grew %.1f%% against %.1f%% for %s", to.name, to.growth, from.growth, from.name))
		} else {
			counter = append(counter, fmt.Sprintf(
				"%s production grew only %.1f%% against %.1f%% for %s", to.name, to.growth, from.growth, from.name))
		}
		if from.average > to.average {
			counter = append(counter, fmt.Sprintf(
				"%s still averages more output (%.1f vs %.1f tonnes)", from.name, from.average, to.average))
		} else {
			supporting = append(supporting, fmt.Sprintf(
				"%s already averages more output (%.1f vs %.1f tonnes)", to.name, to.average, from.average))
		}
	}
	if !to.hasData {
		counter = append(counter, fmt.Sprintf("no production records for %s in %s", to.name, state))
	}
	if !from.hasData {
		counter = append(counter, fmt.Sprintf("no production records for %s in %s", from.name, state))
	}

	toBand, toKnown := LookupWaterBand(to.name)
	fromBand, fromKnown := LookupWaterBand(from.name)
	if !math.IsNaN(rainMean) {
		if toKnown {
			if toBand.Fits(rainMean) {
				supporting = append(supporting, fmt.Sprintf(
					"mean rainfall of %.1f mm sits inside the %s requirement band (%.0f-%.0f mm)",
					rainMean, to.name, toBand.MinMM, toBand.MaxMM))
			} else if rainMean < toBand.MinMM {
				counter = append(counter, fmt.Sprintf(
					"mean rainfall of %.1f mm falls short of the %s requirement band (%.0f-%.0f mm)",
					rainMean, to.name, toBand.MinMM, toBand.MaxMM))
			} else {
				counter = append(counter, fmt.Sprintf(
					"mean rainfall of %.1f mm exceeds the %s requirement band (%.0f-%.0f mm)",
					rainMean, to.name, toBand.MinMM, toBand.MaxMM))
			}
		}
		if rainTrend < 0 && toKnown && fromKnown && toBand.MaxMM < fromBand.MaxMM {
			supporting = append(supporting, fmt.Sprintf(
				"rainfall declined %.1f%% over the window and %s needs less water than %s",
				-rainTrend, to.name, from.name))
		}
	} else {
		counter = append(counter, fmt.Sprintf("no rainfall observations for %s in the window", state))
	}

	if len(supporting) == 0 {
		supporting = append(supporting, "no data-backed argument favours the shift")
	}
	if len(counter) == 0 {
		counter = append(counter, "no data-backed argument opposes the shift")
	}
	return supporting, counter
}

func sentenceList(items []string) string {
	return strings.Join(items, "; ") + "."
}
