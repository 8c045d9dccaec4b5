package analytics

import (
	"strings"
	"testing"
	"time"

	"github.com/project-samarth/samarth/internal/dataset"
	"github.com/project-samarth/samarth/internal/harmonize"
)

// snapshotBuilder assembles test snapshots without going through the
// ingest pipeline
type snapshotBuilder struct {
	snap *dataset.Snapshot
}

func newSnapshot() *snapshotBuilder {
	return &snapshotBuilder{
		snap: &dataset.Snapshot{
			Dims: harmonize.NewIndex(harmonize.DefaultThreshold),
			Sources: map[string]dataset.SourceInfo{
				dataset.DatasetAgriculture: {
					Dataset:      dataset.DatasetAgriculture,
					ResourceID:   "agri-test",
					SnapshotTime: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
					Origin:       "sample",
				},
				dataset.DatasetRainfall: {
					Dataset:      dataset.DatasetRainfall,
					ResourceID:   "rain-test",
					SnapshotTime: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
					Origin:       "sample",
				},
			},
		},
	}
}

func (b *snapshotBuilder) production(state, district, crop string, year int, tonnes float64) *snapshotBuilder {
	b.snap.Production = append(b.snap.Production, dataset.ProductionRecord{
		StateID:    b.snap.Dims.Add(harmonize.KindState, state).ID,
		DistrictID: b.snap.Dims.Add(harmonize.KindDistrict, district).ID,
		CropID:     b.snap.Dims.Add(harmonize.KindCrop, crop).ID,
		Year:       year,
		Production: tonnes,
	})
	return b
}

func (b *snapshotBuilder) missingProduction(state, district, crop string, year int) *snapshotBuilder {
	b.snap.Production = append(b.snap.Production, dataset.ProductionRecord{
		StateID:    b.snap.Dims.Add(harmonize.KindState, state).ID,
		DistrictID: b.snap.Dims.Add(harmonize.KindDistrict, district).ID,
		CropID:     b.snap.Dims.Add(harmonize.KindCrop, crop).ID,
		Year:       year,
		Area:       100,
		Missing:    true,
	})
	return b
}

func (b *snapshotBuilder) rainfall(state string, year int, mm float64) *snapshotBuilder {
	b.snap.Rainfall = append(b.snap.Rainfall, dataset.RainfallRecord{
		RegionID: b.snap.Dims.Add(harmonize.KindState, state).ID,
		Year:     year,
		AnnualMM: mm,
	})
	return b
}

func (b *snapshotBuilder) build() *dataset.Snapshot {
	return b.snap
}

func (b *snapshotBuilder) stateID(t *testing.T, state string) int {
	t.Helper()
	dim, ok := b.snap.Dims.Lookup(harmonize.KindState, state)
	if !ok {
		t.Fatalf("state %q not in fixture", state)
	}
	return dim.ID
}

func (b *snapshotBuilder) cropID(t *testing.T, crop string) int {
	t.Helper()
	dim, ok := b.snap.Dims.Lookup(harmonize.KindCrop, crop)
	if !ok {
		t.Fatalf("crop %q not in fixture", crop)
	}
	return dim.ID
}

func mustContain(t *testing.T, s, sub string) {
	t.Helper()
	if !strings.Contains(s, sub) {
		t.Errorf("expected %q to contain %q", s, sub)
	}
}
