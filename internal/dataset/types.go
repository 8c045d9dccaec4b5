package dataset

import (
	"sort"
	"time"

	"github.com/project-samarth/samarth/internal/harmonize"
)

// Dataset identifiers used in citations and source bookkeeping
const (
	DatasetAgriculture = "agriculture"
	DatasetRainfall    = "rainfall"
)

// ProductionRecord is one crop/district/year observation
type ProductionRecord struct {
	StateID    int
	DistrictID int
	CropID     int
	Year       int
	Season     string
	Production float64 // tonnes
	Area       float64 // hectares, 0 when unreported
	Missing    bool    // true when the value must not enter aggregates
}

// RainfallRecord is one region/year observation
type RainfallRecord struct {
	RegionID int
	Year     int
	AnnualMM float64
	Monthly  []float64 // optional monthly breakdown, nil when absent
	Missing  bool
}

// SourceInfo describes where a dataset's records came from, anchoring
// citations
type SourceInfo struct {
	Dataset      string
	ResourceID   string
	SnapshotTime time.Time
	Origin       string // "live", "snapshot" or "sample"
}

// Snapshot is an immutable harmonized view of all loaded records. It is
// built once per refresh and never mutated afterwards.
type Snapshot struct {
	Production []ProductionRecord
	Rainfall   []RainfallRecord
	Dims       *harmonize.Index
	Sources    map[string]SourceInfo
}

// Source returns the source descriptor for a dataset identifier
func (s *Snapshot) Source(dataset string) SourceInfo {
	return s.Sources[dataset]
}

// LatestProductionYear returns the most recent year present in the
// production data, or 0 when the dataset is empty
func (s *Snapshot) LatestProductionYear() int {
	latest := 0
	for _, r := range s.Production {
		if r.Year > latest {
			latest = r.Year
		}
	}
	return latest
}

// LatestRainfallYear returns the most recent year present in the rainfall
// data, or 0 when the dataset is empty
func (s *Snapshot) LatestRainfallYear() int {
	latest := 0
	for _, r := range s.Rainfall {
		if r.Year > latest {
			latest = r.Year
		}
	}
	return latest
}

// RainfallSeries returns year -> annual rainfall for one region,
// excluding explicitly missing observations
func (s *Snapshot) RainfallSeries(regionID int) map[int]float64 {
	series := make(map[int]float64)
	for _, r := range s.Rainfall {
		if r.RegionID == regionID && !r.Missing {
			series[r.Year] = r.AnnualMM
		}
	}
	return series
}

// RainfallYears returns the distinct years with a non-missing rainfall
// observation for any of the given regions, most recent first
func (s *Snapshot) RainfallYears(regionIDs ...int) []int {
	seen := make(map[int]bool)
	for _, r := range s.Rainfall {
		if r.Missing {
			continue
		}
		for _, id := range regionIDs {
			if r.RegionID == id {
				seen[r.Year] = true
			}
		}
	}
	return sortedYearsDesc(seen)
}

// ProductionYears returns the distinct years with a non-missing
// production observation matching the given state (0 = any) and crop
// (0 = any), most recent first
func (s *Snapshot) ProductionYears(stateID, cropID int) []int {
	seen := make(map[int]bool)
	for _, r := range s.Production {
		if r.Missing {
			continue
		}
		if stateID != 0 && r.StateID != stateID {
			continue
		}
		if cropID != 0 && r.CropID != cropID {
			continue
		}
		seen[r.Year] = true
	}
	return sortedYearsDesc(seen)
}

func sortedYearsDesc(seen map[int]bool) []int {
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}
