package analytics

// WaterBand is the typical seasonal water requirement of a crop. The
// table is a static agronomic reference compiled from published crop
// water norms; it is versioned with the source, not derived from the
// fetched datasets.
type WaterBand struct {
	Crop  string
	MinMM float64
	MaxMM float64
	Label string
}

// WaterReferenceVersion anchors citations of the static table
const WaterReferenceVersion = "2024-01"

// WaterReferenceDataset is the citation identifier for the static table
const WaterReferenceDataset = "water-requirement-reference"

var waterBands = map[string]WaterBand{
	"Rice":      {Crop: "Rice", MinMM: 1200, MaxMM: 2500, Label: "high"},
	"Sugarcane": {Crop: "Sugarcane", MinMM: 1500, MaxMM: 2500, Label: "high"},
	"Cotton":    {Crop: "Cotton", MinMM: 700, MaxMM: 1300, Label: "moderate-high"},
	"Maize":     {Crop: "Maize", MinMM: 500, MaxMM: 800, Label: "moderate"},
	"Wheat":     {Crop: "Wheat", MinMM: 450, MaxMM: 650, Label: "moderate"},
	"Groundnut": {Crop: "Groundnut", MinMM: 500, MaxMM: 700, Label: "moderate"},
	"Millet":    {Crop: "Millet", MinMM: 350, MaxMM: 500, Label: "low"},
	"Bajra":     {Crop: "Bajra", MinMM: 350, MaxMM: 500, Label: "low"},
	"Jowar":     {Crop: "Jowar", MinMM: 400, MaxMM: 600, Label: "low"},
	"Pulses":    {Crop: "Pulses", MinMM: 350, MaxMM: 600, Label: "low"},
	"Gram":      {Crop: "Gram", MinMM: 350, MaxMM: 500, Label: "low"},
}

// LookupWaterBand returns the reference band for a canonical crop name
func LookupWaterBand(crop string) (WaterBand, bool) {
	band, ok := waterBands[crop]
	return band, ok
}

// Fits reports whether a mean annual rainfall lies inside the band
func (b WaterBand) Fits(rainfallMM float64) bool {
	return rainfallMM >= b.MinMM && rainfallMM <= b.MaxMM
}
