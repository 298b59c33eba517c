package model

// LocationID identifies one of the monitored installations.
type LocationID string

const (
	// SiteA is the dormitory-roof array with the ultrasonic weather mast.
	SiteA LocationID = "site_a"
	// SiteB is the teaching-building array with the full climate station
	// (particulates, radiation, sunshine).
	SiteB LocationID = "site_b"
)

// Category distinguishes the two per-day file series each site produces.
type Category string

const (
	CategoryMPPT    Category = "mppt"
	CategoryWeather Category = "weather"
)

// Site holds the static configuration of one installation: where its day
// files live and how its weather station labels raw columns.
type Site struct {
	ID      LocationID
	Name    string
	DataDir string
	// WeatherColumns maps canonical feature names to the raw header labels
	// the station firmware writes. Stations differ in both label text and
	// available features.
	WeatherColumns map[string]string
}

// SiteCatalog maps every known LocationID to its configuration. DataDir is
// relative to the data root and may be overridden per deployment.
var SiteCatalog = map[LocationID]Site{
	SiteA: {
		ID:      SiteA,
		Name:    "Dormitory 15",
		DataDir: "十五舍",
		WeatherColumns: map[string]string{
			"wind_speed":     "超声波风速(m/s)",
			"pressure":       "数字气压(hPa)",
			"temperature":    "大气温度(℃)",
			"humidity":       "大气湿度(%RH)",
			"wind_direction": "超声波风向(°)",
		},
	},
	SiteB: {
		ID:      SiteB,
		Name:    "Teaching Building",
		DataDir: "专教",
		WeatherColumns: map[string]string{
			"wind_speed":     "风速(m/s)",
			"pressure":       "数字气压(hPa)",
			"pm100":          "PM100(ug/m3)",
			"temperature":    "大气温度(℃)",
			"humidity":       "大气湿度(%RH)",
			"pm25":           "PM2.5(ug/m3)",
			"pm10":           "PM10(ug/m3)",
			"radiation":      "TBQ总辐射(W/m2)",
			"wind_direction": "风向(°)",
			"sunshine":       "日照时数(h)",
			"radiation_cum":  "辐射累计(MJ/m2)",
		},
	},
}

// RawToCanonical is the reverse of Site.WeatherColumns per location.
var RawToCanonical map[LocationID]map[string]string

func init() {
	RawToCanonical = make(map[LocationID]map[string]string, len(SiteCatalog))
	for id, site := range SiteCatalog {
		rev := make(map[string]string, len(site.WeatherColumns))
		for canonical, raw := range site.WeatherColumns {
			rev[raw] = canonical
		}
		RawToCanonical[id] = rev
	}
}

// TimeColumn returns the header label carrying the row timestamp for a
// category. MPPT exports use eventTime, weather-station exports use Date.
func TimeColumn(cat Category) string {
	if cat == CategoryMPPT {
		return "eventTime"
	}
	return "Date"
}

// Locations returns all catalog entries in stable order.
func Locations() []Site {
	return []Site{SiteCatalog[SiteA], SiteCatalog[SiteB]}
}
