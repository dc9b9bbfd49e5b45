package models

// ModelEntry is one model's persisted result for one image. Rates are percentages, time is seconds.
// The metric fields are pointers so entries written by older tools without them stay distinguishable.
type ModelEntry struct {
	GroundTruth string     `json:"gt"`
	Response    string     `json:"response"`
	WER         *float64   `json:"wer,omitempty"`
	CER         *float64   `json:"cer,omitempty"`
	Accuracy    *float64   `json:"accuracy,omitempty"`
	Time        *float64   `json:"time,omitempty"`
	Diffs       []DiffSpan `json:"diffs,omitempty"`
	Matches     int        `json:"matches"`
	Deletions   int        `json:"deletions"`
	Insertions  int        `json:"insertions"`
}

// Complete reports whether all four metrics needed for averaging are present.
func (e ModelEntry) Complete() bool {
	return e.WER != nil && e.CER != nil && e.Accuracy != nil && e.Time != nil
}

// PerImageResult maps model display name to its entry for a single image.
type PerImageResult map[string]ModelEntry

// ModelSummary is one model's averages over a folder.
type ModelSummary struct {
	Source      string  `json:"source"`
	Images      int     `json:"images"`
	AvgWER      float64 `json:"avg_wer"`
	AvgCER      float64 `json:"avg_cer"`
	AvgAccuracy float64 `json:"avg_accuracy"`
	AvgTime     float64 `json:"avg_time"`
}

// FolderSummary maps model display name to its folder averages.
type FolderSummary map[string]ModelSummary

// ManifestDescription is the fixed description written into every manifest.
const ManifestDescription = "Auto-generated manifest of all available JSON files based on the available corpus structure"

// ManifestEntry indexes one summarized folder.
type ManifestEntry struct {
	Aggregated      string   `json:"aggregated"`
	IndividualFiles []string `json:"individual_files"`
	ImageCount      int      `json:"image_count"`
}

// Manifest is the corpus-wide index consumed by the dashboard.
type Manifest struct {
	Description string                              `json:"description"`
	Generated   string                              `json:"generated"`
	Structure   map[string]map[string]ManifestEntry `json:"structure"`
	Files       []string                            `json:"files"`
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}
