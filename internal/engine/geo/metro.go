package geo

import (
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/a-deal/gym-finder/internal/model"
)

// Density buckets a metro area by listing density.
type Density string

const (
	DensityLow      Density = "low"
	DensityMedium   Density = "medium"
	DensityHigh     Density = "high"
	DensityVeryHigh Density = "very_high"
)

// MetroArea is a predefined group of ZIP codes searched together.
type MetroArea struct {
	Code                  string   `json:"code"`
	Name                  string   `json:"name"`
	Description           string   `json:"description"`
	State                 string   `json:"state"`
	Population            int      `json:"population"`
	ZipCodes              []string `json:"zip_codes"`
	DensityCategory       Density  `json:"density_category"`
	MarketCharacteristics []string `json:"market_characteristics"`
}

var metroAreas = map[string]MetroArea{
	"nyc": {
		Code:            "nyc",
		Name:            "New York City",
		Description:     "Manhattan and inner Brooklyn",
		State:           "NY",
		Population:      20140000,
		DensityCategory: DensityVeryHigh,
		ZipCodes: []string{
			"10001", "10002", "10003", "10011", "10014", "10016", "10018",
			"10019", "10022", "10023", "10024", "10025", "11201", "11211",
		},
		MarketCharacteristics: []string{"boutique studios", "24-hour chains", "high competition", "premium pricing"},
	},
	"la": {
		Code:            "la",
		Name:            "Los Angeles",
		Description:     "Central LA, the Westside and Burbank",
		State:           "CA",
		Population:      13200000,
		DensityCategory: DensityHigh,
		ZipCodes: []string{
			"90001", "90012", "90024", "90028", "90036", "90046", "90210",
			"90291", "90401", "91505",
		},
		MarketCharacteristics: []string{"outdoor fitness", "celebrity trainers", "yoga and pilates", "car-oriented"},
	},
	"chicago": {
		Code:            "chicago",
		Name:            "Chicago",
		Description:     "The Loop and North Side neighborhoods",
		State:           "IL",
		Population:      9600000,
		DensityCategory: DensityHigh,
		ZipCodes: []string{
			"60601", "60605", "60607", "60610", "60611", "60614", "60622", "60657",
		},
		MarketCharacteristics: []string{"indoor winter training", "neighborhood gyms", "crossfit boxes"},
	},
	"sf": {
		Code:            "sf",
		Name:            "San Francisco",
		Description:     "San Francisco proper",
		State:           "CA",
		Population:      4700000,
		DensityCategory: DensityVeryHigh,
		ZipCodes: []string{
			"94102", "94103", "94107", "94109", "94110", "94114", "94117", "94122",
		},
		MarketCharacteristics: []string{"tech workforce", "climbing gyms", "boutique studios", "premium pricing"},
	},
	"boston": {
		Code:            "boston",
		Name:            "Boston",
		Description:     "Downtown Boston, Back Bay and Cambridge",
		State:           "MA",
		Population:      4900000,
		DensityCategory: DensityMedium,
		ZipCodes: []string{
			"02108", "02110", "02114", "02115", "02116", "02118", "02134", "02139",
		},
		MarketCharacteristics: []string{"student population", "university facilities", "running culture"},
	},
	"seattle": {
		Code:            "seattle",
		Name:            "Seattle",
		Description:     "Downtown Seattle and surrounding neighborhoods",
		State:           "WA",
		Population:      4000000,
		DensityCategory: DensityMedium,
		ZipCodes: []string{
			"98101", "98102", "98103", "98104", "98109", "98112", "98121", "98122",
		},
		MarketCharacteristics: []string{"outdoor recreation", "tech workforce", "climbing gyms"},
	},
}

// GetMetroArea returns the metro area for a code, case-insensitively.
func GetMetroArea(code string) (MetroArea, error) {
	m, ok := metroAreas[strings.ToLower(strings.TrimSpace(code))]
	if !ok {
		return MetroArea{}, eris.Wrapf(model.ErrUnknownMetro, "metro %q (known: %s)", code, strings.Join(MetroCodes(), ", "))
	}
	m.ZipCodes = append([]string(nil), m.ZipCodes...)
	m.MarketCharacteristics = append([]string(nil), m.MarketCharacteristics...)
	return m, nil
}

// MetroCodes lists the known metro codes in sorted order.
func MetroCodes() []string {
	codes := make([]string, 0, len(metroAreas))
	for c := range metroAreas {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// zipCentroids holds approximate centroids for every metro ZIP code.
var zipCentroids = map[string]model.Coordinate{
	// nyc
	"10001": {Lat: 40.7506, Lng: -73.9972},
	"10002": {Lat: 40.7157, Lng: -73.9863},
	"10003": {Lat: 40.7317, Lng: -73.9892},
	"10011": {Lat: 40.7418, Lng: -74.0002},
	"10014": {Lat: 40.7340, Lng: -74.0054},
	"10016": {Lat: 40.7452, Lng: -73.9783},
	"10018": {Lat: 40.7551, Lng: -73.9932},
	"10019": {Lat: 40.7655, Lng: -73.9858},
	"10022": {Lat: 40.7584, Lng: -73.9680},
	"10023": {Lat: 40.7769, Lng: -73.9826},
	"10024": {Lat: 40.7981, Lng: -73.9722},
	"10025": {Lat: 40.7990, Lng: -73.9683},
	"11201": {Lat: 40.6940, Lng: -73.9900},
	"11211": {Lat: 40.7121, Lng: -73.9533},
	// la
	"90001": {Lat: 33.9731, Lng: -118.2479},
	"90012": {Lat: 34.0614, Lng: -118.2385},
	"90024": {Lat: 34.0633, Lng: -118.4355},
	"90028": {Lat: 34.0998, Lng: -118.3266},
	"90036": {Lat: 34.0699, Lng: -118.3495},
	"90046": {Lat: 34.1076, Lng: -118.3649},
	"90210": {Lat: 34.0901, Lng: -118.4065},
	"90291": {Lat: 33.9925, Lng: -118.4654},
	"90401": {Lat: 34.0163, Lng: -118.4924},
	"91505": {Lat: 34.1737, Lng: -118.3475},
	// chicago
	"60601": {Lat: 41.8858, Lng: -87.6181},
	"60605": {Lat: 41.8676, Lng: -87.6176},
	"60607": {Lat: 41.8721, Lng: -87.6506},
	"60610": {Lat: 41.9037, Lng: -87.6340},
	"60611": {Lat: 41.8940, Lng: -87.6202},
	"60614": {Lat: 41.9227, Lng: -87.6533},
	"60622": {Lat: 41.9022, Lng: -87.6771},
	"60657": {Lat: 41.9400, Lng: -87.6536},
	// sf
	"94102": {Lat: 37.7793, Lng: -122.4193},
	"94103": {Lat: 37.7726, Lng: -122.4110},
	"94107": {Lat: 37.7621, Lng: -122.3971},
	"94109": {Lat: 37.7917, Lng: -122.4186},
	"94110": {Lat: 37.7509, Lng: -122.4153},
	"94114": {Lat: 37.7587, Lng: -122.4330},
	"94117": {Lat: 37.7712, Lng: -122.4413},
	"94122": {Lat: 37.7587, Lng: -122.4846},
	// boston
	"02108": {Lat: 42.3576, Lng: -71.0637},
	"02110": {Lat: 42.3574, Lng: -71.0519},
	"02114": {Lat: 42.3611, Lng: -71.0682},
	"02115": {Lat: 42.3427, Lng: -71.0922},
	"02116": {Lat: 42.3513, Lng: -71.0770},
	"02118": {Lat: 42.3362, Lng: -71.0727},
	"02134": {Lat: 42.3539, Lng: -71.1327},
	"02139": {Lat: 42.3645, Lng: -71.1042},
	// seattle
	"98101": {Lat: 47.6114, Lng: -122.3305},
	"98102": {Lat: 47.6302, Lng: -122.3215},
	"98103": {Lat: 47.6733, Lng: -122.3426},
	"98104": {Lat: 47.6022, Lng: -122.3262},
	"98109": {Lat: 47.6301, Lng: -122.3474},
	"98112": {Lat: 47.6297, Lng: -122.2971},
	"98121": {Lat: 47.6150, Lng: -122.3447},
	"98122": {Lat: 47.6116, Lng: -122.3056},
}
