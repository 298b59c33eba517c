// quality-report prints how complete the archive actually is for one site
// and date range: files found per category, missing days, and per-column
// fill rates after cleaning.
//
// Usage:
//
//	quality-report -location site_a
//	quality-report -location site_b -start 2024-06-01 -end 2024-06-30
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/clean"
	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/config"
	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/dataset"
	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/model"
	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/quality"
)

const dayFormat = "2006-01-02"

func main() {
	dataRoot := flag.String("data-root", "data", "directory holding per-site day-file trees")
	location := flag.String("location", "site_a", "site to report on (site_a or site_b)")
	startStr := flag.String("start", "", "first day (2006-01-02, default: 6 days before end)")
	endStr := flag.String("end", "", "last day (2006-01-02, default: today)")
	flag.Parse()

	start, end := parseRange(*startStr, *endStr)
	req := config.Request{
		Location: model.LocationID(*location),
		Start:    start,
		End:      end,
	}
	if err := req.Validate(); err != nil {
		log.Fatalf("Invalid request: %v", err)
	}

	loader := dataset.NewLoader(*dataRoot)
	bundle, report, err := loader.LoadLocation(req)
	if err != nil {
		log.Fatalf("Loading data: %v", err)
	}

	mppt, _ := clean.Clean(bundle.MPPT)
	weather, _ := clean.Clean(bundle.Weather)

	site := model.SiteCatalog[req.Location]

	fmt.Println()
	fmt.Println("Data Quality Report")
	fmt.Printf("  Site: %s (%s)\n", site.Name, req.Location)
	fmt.Printf("  Range: %s to %s (%d days)\n", start.Format(dayFormat), end.Format(dayFormat), report.Days)
	fmt.Printf("  Completeness: %.1f%%\n", report.Completeness())
	fmt.Println()

	printCategory("MPPT", mppt, report.MPPT)
	printCategory("Weather", weather, report.Weather)
}

func parseRange(startStr, endStr string) (time.Time, time.Time) {
	end := time.Now().Truncate(24 * time.Hour)
	if endStr != "" {
		var err error
		end, err = time.Parse(dayFormat, endStr)
		if err != nil {
			log.Fatalf("Invalid -end date: %v", err)
		}
	}
	start := end.AddDate(0, 0, -6)
	if startStr != "" {
		var err error
		start, err = time.Parse(dayFormat, startStr)
		if err != nil {
			log.Fatalf("Invalid -start date: %v", err)
		}
	}
	return start, end
}

func printCategory(name string, f *model.Frame, rep quality.CategoryReport) {
	fmt.Printf("  %s: %d files, %d rows\n", name, rep.FilesLoaded, f.Len())

	if rep.DirectoryMissing {
		fmt.Println("    Category directory missing: no station output for this site")
		fmt.Println()
		return
	}

	if len(rep.MissingDays) > 0 {
		fmt.Printf("    Missing days (%d): %s\n", len(rep.MissingDays), joinDays(rep.MissingDays, 8))
	}
	for _, w := range rep.Warnings {
		fmt.Printf("    Warning: %s\n", w)
	}

	if f.Len() == 0 {
		fmt.Println()
		return
	}

	completeness := quality.ColumnCompleteness(f)
	outliers := quality.OutlierCounts(f)

	fmt.Println()
	fmt.Printf("    %-28s │ %7s │ %8s\n", "Column", "Filled", "Outliers")
	fmt.Printf("    ─────────────────────────────┼─────────┼─────────\n")
	for _, col := range f.Columns {
		fmt.Printf("    %-28s │ %6.1f%% │ %8d\n", col, 100*completeness[col], outliers[col])
	}
	fmt.Println()
}

func joinDays(days []time.Time, limit int) string {
	out := ""
	for i, d := range days {
		if i == limit {
			return fmt.Sprintf("%s, +%d more", out, len(days)-limit)
		}
		if i > 0 {
			out += ", "
		}
		out += d.Format(dayFormat)
	}
	return out
}
