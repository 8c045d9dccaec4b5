package analytics

import (
	"fmt"
	"strings"

	"github.com/project-samarth/samarth/internal/dataset"
	"github.com/project-samarth/samarth/internal/engine"
	"github.com/project-samarth/samarth/internal/harmonize"
	"github.com/project-samarth/samarth/internal/parser"
)

// DistrictExtremes answers "which districts had the highest and lowest
// production" questions for a crop and year. Records flagged missing
// never appear as a minimum.
type DistrictExtremes struct{}

// NewDistrictExtremes creates the handler
func NewDistrictExtremes() *DistrictExtremes {
	return &DistrictExtremes{}
}

// Name implements engine.Handler
func (h *DistrictExtremes) Name() string {
	return "district production extremes"
}

// Execute implements engine.Handler
func (h *DistrictExtremes) Execute(params parser.Params, snap *dataset.Snapshot) (*engine.Envelope, error) {
	if len(params.StateIDs) == 0 {
		return nil, engine.InvalidParamsError{Handler: h.Name(), Slot: "states"}
	}
	if len(params.CropIDs) == 0 {
		return nil, engine.InvalidParamsError{Handler: h.Name(), Slot: "crop"}
	}

	cropID := params.CropIDs[0]
	crop := params.Crops[0]

	year := params.Year
	if year == 0 {
		if years := snap.ProductionYears(0, cropID); len(years) > 0 {
			year = years[0]
		}
	}

	stateList := strings.Join(params.States, ", ")
	if year == 0 {
		env := engine.NewEnvelope(fmt.Sprintf("No production data found for %s in any year.", crop))
		env.Citations = append(env.Citations,
			engine.Cite(snap.Source(dataset.DatasetAgriculture), fmt.Sprintf("district production checked for %s, states %s: no rows", crop, stateList)))
		return env, nil
	}

	table := engine.Table{
		Title:   fmt.Sprintf("District extremes for %s in %d", crop, year),
		Headers: []string{"State", "Extreme", "District", "Production (tonnes)"},
	}

	var parts []string
	for i, stateID := range params.StateIDs {
		state := params.States[i]
		maxRec, minRec, found := h.extremes(snap, stateID, cropID, year)
		if !found {
			table.Rows = append(table.Rows, []any{state, "no data", nil, nil})
			parts = append(parts, fmt.Sprintf("%s reported no usable %s production in %d.", state, crop, year))
			continue
		}

		maxDistrict := districtName(snap, maxRec.DistrictID)
		minDistrict := districtName(snap, minRec.DistrictID)
		table.Rows = append(table.Rows,
			[]any{state, "highest", maxDistrict, Round2(maxRec.Production)},
			[]any{state, "lowest", minDistrict, Round2(minRec.Production)})
		parts = append(parts, fmt.Sprintf("%s's peak output came from %s with %.1f tonnes; the lowest was %s at %.1f tonnes.",
			state, maxDistrict, maxRec.Production, minDistrict, minRec.Production))
	}

	env := engine.NewEnvelope(strings.Join(parts, " "))
	env.Tables = append(env.Tables, table)
	env.Citations = append(env.Citations,
		engine.Cite(snap.Source(dataset.DatasetAgriculture),
			fmt.Sprintf("district production for %s, year %d, states %s", crop, year, stateList)))
	return env, nil
}

// extremes scans one state's districts for the highest and lowest
// non-missing production. found is false when every record is missing.
func (h *DistrictExtremes) extremes(snap *dataset.Snapshot, stateID, cropID, year int) (maxRec, minRec dataset.ProductionRecord, found bool) {
	for _, r := range snap.Production {
		if r.Missing || r.StateID != stateID || r.CropID != cropID || r.Year != year {
			continue
		}
		if !found {
			maxRec, minRec, found = r, r, true
			continue
		}
		if r.Production > maxRec.Production {
			maxRec = r
		}
		if r.Production < minRec.Production {
			minRec = r
		}
	}
	return maxRec, minRec, found
}

func districtName(snap *dataset.Snapshot, districtID int) string {
	if dim, ok := snap.Dims.ByID(harmonize.KindDistrict, districtID); ok {
		return dim.Canonical
	}
	return fmt.Sprintf("district #%d", districtID)
}
