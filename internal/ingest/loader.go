package ingest

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/project-samarth/samarth/internal/config"
	"github.com/project-samarth/samarth/internal/datagov"
	"github.com/project-samarth/samarth/internal/dataset"
	"github.com/project-samarth/samarth/internal/harmonize"
	"github.com/project-samarth/samarth/internal/storage"
)

// RefreshError indicates that neither a live fetch nor any local
// fallback produced records for a dataset
type RefreshError struct {
	Dataset string
	Err     error
}

// Error implements the error interface
func (e RefreshError) Error() string {
	return fmt.Sprintf("refresh failed for dataset %q: %v", e.Dataset, e.Err)
}

func (e RefreshError) Unwrap() error {
	return e.Err
}

// Loader builds harmonized snapshots: live paginated fetch first, then
// the most recent stored snapshot, then the bundled sample files
type Loader struct {
	datasets  map[string]config.Dataset
	client    *datagov.Client
	store     storage.SnapshotStore
	aliasFile string
	threshold float64
}

// NewLoader creates a loader. client may be nil (no API key) and store
// may be nil (no snapshot database); the sample fallback still works.
func NewLoader(cfg config.Config, client *datagov.Client, store storage.SnapshotStore) *Loader {
	return &Loader{
		datasets:  cfg.Datasets,
		client:    client,
		store:     store,
		aliasFile: cfg.Data.AliasFile,
		threshold: cfg.Data.FuzzyThreshold,
	}
}

type rawResult struct {
	records []datagov.Record
	source  dataset.SourceInfo
}

// Load fetches both datasets and harmonizes them into a fresh snapshot.
// The returned snapshot is complete or nil; it is never partially built.
func (l *Loader) Load(ctx context.Context) (*dataset.Snapshot, error) {
	var agri, rain rawResult

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		agri, err = l.loadRaw(gctx, dataset.DatasetAgriculture)
		return err
	})
	g.Go(func() error {
		var err error
		rain, err = l.loadRaw(gctx, dataset.DatasetRainfall)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap := l.harmonizeSnapshot(agri, rain)

	if l.aliasFile != "" {
		aliases, err := harmonize.LoadAliasFile(l.aliasFile)
		if err != nil {
			log.Printf("Warning: alias file unavailable: %v", err)
		} else {
			aliases.Apply(snap.Dims)
		}
	}

	return snap, nil
}

// loadRaw resolves one dataset's records through the source chain
func (l *Loader) loadRaw(ctx context.Context, name string) (rawResult, error) {
	cfg, ok := l.datasets[name]
	if !ok {
		return rawResult{}, RefreshError{Dataset: name, Err: fmt.Errorf("dataset not configured")}
	}

	var lastErr error

	if l.client != nil && cfg.ResourceID != "" {
		records, err := l.client.FetchAll(ctx, cfg.ResourceID)
		if err == nil {
			fetchedAt := time.Now().UTC()
			if l.store != nil {
				saveErr := l.store.SaveSnapshot(storage.RawSnapshot{
					Dataset:    name,
					ResourceID: cfg.ResourceID,
					FetchedAt:  fetchedAt,
					Records:    records,
				})
				if saveErr != nil {
					log.Printf("Warning: failed to persist %s snapshot: %v", name, saveErr)
				}
			}
			return rawResult{
				records: records,
				source: dataset.SourceInfo{
					Dataset:      name,
					ResourceID:   cfg.ResourceID,
					SnapshotTime: fetchedAt,
					Origin:       "live",
				},
			}, nil
		}
		lastErr = err
		log.Printf("Live fetch failed for %s: %v; trying stored snapshot", name, err)
	}

	if l.store != nil {
		snap, err := l.store.LatestSnapshot(name)
		if err != nil {
			lastErr = err
			log.Printf("Snapshot lookup failed for %s: %v; trying sample", name, err)
		} else if snap != nil {
			return rawResult{
				records: snap.Records,
				source: dataset.SourceInfo{
					Dataset:      name,
					ResourceID:   snap.ResourceID,
					SnapshotTime: snap.FetchedAt,
					Origin:       "snapshot",
				},
			}, nil
		}
	}

	if cfg.Sample != "" {
		records, modTime, err := ReadSampleCSV(cfg.Sample)
		if err == nil {
			return rawResult{
				records: records,
				source: dataset.SourceInfo{
					Dataset:      name,
					ResourceID:   cfg.ResourceID,
					SnapshotTime: modTime,
					Origin:       "sample",
				},
			}, nil
		}
		lastErr = err
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no source configured")
	}
	return rawResult{}, RefreshError{Dataset: name, Err: lastErr}
}

// harmonizeSnapshot maps raw records onto canonical dimensions and
// applies the missing-value policy
func (l *Loader) harmonizeSnapshot(agri, rain rawResult) *dataset.Snapshot {
	dims := harmonize.NewIndex(l.threshold)
	snap := &dataset.Snapshot{
		Dims: dims,
		Sources: map[string]dataset.SourceInfo{
			dataset.DatasetAgriculture: agri.source,
			dataset.DatasetRainfall:    rain.source,
		},
	}

	for _, r := range agri.records {
		state := firstString(r, "state", "state_name")
		district := firstString(r, "district", "district_name")
		crop := firstString(r, "crop")
		year, okYear := firstInt(r, "year", "crop_year")
		if state == "" || district == "" || crop == "" || !okYear {
			continue
		}

		rec := dataset.ProductionRecord{
			StateID:    dims.Add(harmonize.KindState, state).ID,
			DistrictID: dims.Add(harmonize.KindDistrict, district).ID,
			CropID:     dims.Add(harmonize.KindCrop, crop).ID,
			Year:       year,
			Season:     firstString(r, "season"),
		}

		prod, okProd := firstFloat(r, "production_tonnes", "production_", "production")
		area, okArea := firstFloat(r, "area_hectares", "area_", "area")
		if okArea {
			rec.Area = area
		}
		switch {
		case !okProd:
			rec.Missing = true
		case prod == 0 && okArea && area > 0:
			// Zero production against positive cultivated area is an
			// unreported value, not a true zero.
			rec.Missing = true
		case prod < 0:
			rec.Missing = true
		default:
			rec.Production = prod
		}

		snap.Production = append(snap.Production, rec)
	}

	for _, r := range rain.records {
		region := firstString(r, "state", "subdivision", "sub_division")
		year, okYear := firstInt(r, "year")
		if region == "" || !okYear {
			continue
		}

		rec := dataset.RainfallRecord{
			RegionID: dims.Add(harmonize.KindState, region).ID,
			Year:     year,
		}

		annual, okAnnual := firstFloat(r, "annual_rainfall_mm", "annual", "annual_mm")
		if !okAnnual || annual < 0 {
			rec.Missing = true
		} else {
			rec.AnnualMM = annual
		}

		snap.Rainfall = append(snap.Rainfall, rec)
	}

	return snap
}

func firstString(r datagov.Record, fields ...string) string {
	for _, f := range fields {
		if v := r.String(f); v != "" {
			return v
		}
	}
	return ""
}

func firstFloat(r datagov.Record, fields ...string) (float64, bool) {
	for _, f := range fields {
		if v, ok := r.Float(f); ok {
			return v, true
		}
	}
	return 0, false
}

func firstInt(r datagov.Record, fields ...string) (int, bool) {
	for _, f := range fields {
		if v, ok := r.Int(f); ok {
			return v, true
		}
	}
	return 0, false
}
