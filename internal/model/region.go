package model

// Region is one geographic search unit: a ZIP code or a grid cell.
type Region struct {
	ID          string     `json:"id"`
	Center      Coordinate `json:"center"`
	RadiusMiles float64    `json:"radius_miles"`
}

// SourceFailure records a source that could not be searched for a region.
type SourceFailure struct {
	Source SourceID `json:"source"`
	Err    string   `json:"error"`
}

// RegionResult holds everything produced for one region.
type RegionResult struct {
	Region            Region           `json:"region"`
	Listings          []MergedListing  `json:"listings"`
	RawCounts         map[SourceID]int `json:"raw_counts"`
	MergeCount        int              `json:"merge_count"`
	AvgConfidence     float64          `json:"avg_confidence"`
	Failures          []SourceFailure  `json:"failures,omitempty"`
	Failed            bool             `json:"failed"`
	Error             string           `json:"error,omitempty"`
	DuplicatesRemoved int              `json:"duplicates_removed"`
}

// PartialFailure reports whether at least one source failed for the region.
func (r RegionResult) PartialFailure() bool {
	return len(r.Failures) > 0
}

// RawTotal is the number of raw listings the region's sources returned.
func (r RegionResult) RawTotal() int {
	n := 0
	for _, c := range r.RawCounts {
		n += c
	}
	return n
}

// Spread summarises a per-region count.
type Spread struct {
	Avg float64 `json:"avg"`
	Max int     `json:"max"`
	Min int     `json:"min"`
}

// Stats summarises an aggregate run.
type Stats struct {
	RegionsTotal          int              `json:"regions_total"`
	RegionsSucceeded      int              `json:"regions_succeeded"`
	RegionsFailed         int              `json:"regions_failed"`
	RegionsPartial        int              `json:"regions_partial"`
	TotalRaw              int              `json:"total_raw"`
	TotalListings         int              `json:"total_listings"`
	UniqueEntities        int              `json:"unique_entities"`
	CrossRegionDuplicates int              `json:"cross_region_duplicates"`
	DuplicationRate       float64          `json:"duplication_rate"`
	MergeCount            int              `json:"merge_count"`
	MergeRate             float64          `json:"merge_rate"`
	AverageConfidence     float64          `json:"average_confidence"`
	SourceDistribution    map[SourceID]int `json:"source_distribution"`
	ListingsPerRegion     Spread           `json:"listings_per_region"`
}

// AggregateResult is the cross-region view of a run.
type AggregateResult struct {
	Regions  []RegionResult  `json:"regions"`
	Listings []MergedListing `json:"listings"`
	Stats    Stats           `json:"stats"`
}
