// Package dataset finds and parses the per-day telemetry files both sites
// archive: one MPPT electrical file and one weather-station file per day.
// Absent files become missing-day metadata, unreadable files become
// warnings; neither aborts a load.
package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/config"
	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/model"
	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/quality"
)

// dayFileExts lists recognized day-file extensions in preference order.
var dayFileExts = []string{".xlsx", ".csv"}

// Loader reads day files from the archive tree rooted at a data directory.
type Loader struct {
	root string
	dirs map[model.LocationID]string
}

func NewLoader(root string) *Loader {
	dirs := make(map[model.LocationID]string, len(model.SiteCatalog))
	for id, site := range model.SiteCatalog {
		dirs[id] = site.DataDir
	}
	return &Loader{root: root, dirs: dirs}
}

// SetSiteDir overrides the archive directory for one location.
func (l *Loader) SetSiteDir(loc model.LocationID, dir string) {
	l.dirs[loc] = dir
}

// Bundle carries both categories of one location for one request.
type Bundle struct {
	MPPT    *model.Frame
	Weather *model.Frame
}

// Load reads one (location, category) over the request's inclusive day
// range. The returned report accounts for every requested day: loaded and
// missing always add up to the full range.
func (l *Loader) Load(req config.Request) (*model.Frame, quality.CategoryReport, error) {
	if err := req.Validate(); err != nil {
		return nil, quality.CategoryReport{}, err
	}
	if req.Category == "" {
		return nil, quality.CategoryReport{}, fmt.Errorf("%w: category required", config.ErrUnknownCategory)
	}

	frame := model.NewFrame(req.Location, req.Category)
	report := quality.CategoryReport{Category: req.Category}
	days := req.Range().Days()

	catDir := filepath.Join(l.root, l.dirs[req.Location], categoryPath(req.Category))
	if _, err := os.Stat(catDir); errors.Is(err, os.ErrNotExist) {
		report.DirectoryMissing = true
		report.MissingDays = days
		return frame, report, nil
	}

	parser := parserFor(frame.TimeColumn)

	for _, day := range days {
		path, ok := l.dayFile(catDir, day)
		if !ok {
			report.MissingDays = append(report.MissingDays, day)
			continue
		}

		header, rows, err := l.parseFile(parser, path)
		if err != nil {
			log.Warn().Str("file", path).Err(err).Msg("skipping unreadable day file")
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s: %v", filepath.Base(path), err))
			report.MissingDays = append(report.MissingDays, day)
			continue
		}

		for _, col := range header {
			if col != "" {
				frame.AddColumn(col)
			}
		}
		for _, r := range rows {
			r.FileDate = day
			r.Source = req.Location
			frame.Append(r)
		}
		report.FilesLoaded++
	}

	return frame, report, nil
}

// LoadLocation reads both categories at once, as the dashboard requests.
func (l *Loader) LoadLocation(req config.Request) (Bundle, quality.Report, error) {
	if err := req.Validate(); err != nil {
		return Bundle{}, quality.Report{}, err
	}

	mpptReq := req
	mpptReq.Category = model.CategoryMPPT
	weatherReq := req
	weatherReq.Category = model.CategoryWeather

	mppt, mpptRep, err := l.Load(mpptReq)
	if err != nil {
		return Bundle{}, quality.Report{}, err
	}
	weather, weatherRep, err := l.Load(weatherReq)
	if err != nil {
		return Bundle{}, quality.Report{}, err
	}

	report := quality.Report{
		Location: req.Location,
		Days:     len(req.Range().Days()),
		MPPT:     mpptRep,
		Weather:  weatherRep,
	}
	return Bundle{MPPT: mppt, Weather: weather}, report, nil
}

// dayFile returns the archive path for a day, preferring xlsx over csv.
func (l *Loader) dayFile(catDir string, day time.Time) (string, bool) {
	name := day.Format("2006-01-02")
	for _, ext := range dayFileExts {
		path := filepath.Join(catDir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

func (l *Loader) parseFile(parsers map[string]Parser, path string) ([]string, []model.Reading, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	parser, ok := parsers[filepath.Ext(path)]
	if !ok {
		return nil, nil, fmt.Errorf("no parser for %q", filepath.Ext(path))
	}
	return parser.Parse(f)
}

func parserFor(timeColumn string) map[string]Parser {
	return map[string]Parser{
		".xlsx": NewXLSXParser(timeColumn),
		".csv":  NewCSVParser(timeColumn),
	}
}

func categoryPath(cat model.Category) string {
	if cat == model.CategoryMPPT {
		return "filtered"
	}
	return filepath.Join("Climate_data", "filtered")
}
