// correlate aligns one site's electrical and weather series on an hourly
// grid and prints how they move together: the Pearson matrix, trend fits
// against temperature and radiation, and the joint regression when enough
// hours match.
//
// Usage:
//
//	correlate -location site_b -start 2024-06-01 -end 2024-06-30
//	correlate -location site_a -start 2024-06-01 -end 2024-06-30 -target pv_power
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/analysis"
	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/clean"
	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/config"
	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/dataset"
	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/model"
)

const dayFormat = "2006-01-02"

func main() {
	dataRoot := flag.String("data-root", "data", "directory holding per-site day-file trees")
	location := flag.String("location", "site_a", "site to analyze (site_a or site_b)")
	startStr := flag.String("start", "", "first day (2006-01-02)")
	endStr := flag.String("end", "", "last day (2006-01-02)")
	target := flag.String("target", "", "target column (default: auto-detect power column)")
	flag.Parse()

	if *startStr == "" || *endStr == "" {
		log.Fatal("Both -start and -end are required (2006-01-02)")
	}
	start, err := time.Parse(dayFormat, *startStr)
	if err != nil {
		log.Fatalf("Invalid -start date: %v", err)
	}
	end, err := time.Parse(dayFormat, *endStr)
	if err != nil {
		log.Fatalf("Invalid -end date: %v", err)
	}

	req := config.Request{Location: model.LocationID(*location), Start: start, End: end}
	loader := dataset.NewLoader(*dataRoot)
	bundle, _, err := loader.LoadLocation(req)
	if err != nil {
		log.Fatalf("Loading data: %v", err)
	}
	mppt, _ := clean.Clean(bundle.MPPT)
	weather, _ := clean.Clean(bundle.Weather)

	res, err := analysis.Correlate(mppt, weather, analysis.Options{TargetColumn: *target})
	if err != nil {
		log.Fatalf("Correlation: %v", err)
	}

	site := model.SiteCatalog[req.Location]

	fmt.Println()
	fmt.Println("Power / Weather Correlation")
	fmt.Printf("  Site: %s (%s)\n", site.Name, req.Location)
	fmt.Printf("  Range: %s to %s\n", start.Format(dayFormat), end.Format(dayFormat))
	fmt.Printf("  Target: %s | Matched hours: %d\n", res.TargetColumn, res.MatchedHours)
	fmt.Println()

	printMatrix(res)
	printTrends(res)

	if res.Multivariate != nil {
		m := res.Multivariate
		fmt.Printf("  Joint fit over %v (R²=%.3f):\n", m.EnvColumns, m.R2)
		fmt.Printf("    intercept %+.3f", m.Weights[0])
		for i, col := range m.EnvColumns {
			fmt.Printf(" │ %s %+.3f", col, m.Weights[i+1])
		}
		fmt.Println()
		fmt.Println()
	}
}

func printMatrix(res *analysis.Result) {
	fmt.Printf("  %-14s", "")
	for _, col := range res.Columns {
		fmt.Printf(" │ %12s", shorten(col, 12))
	}
	fmt.Println()

	for i, row := range res.Pearson {
		fmt.Printf("  %-14s", shorten(res.Columns[i], 14))
		for _, r := range row {
			fmt.Printf(" │ %12.3f", r)
		}
		fmt.Println()
	}
	fmt.Println()
}

func printTrends(res *analysis.Result) {
	if len(res.Trends) == 0 {
		return
	}
	fmt.Println("  Linear trends against the target:")
	for _, col := range []string{"temperature", "radiation"} {
		tr, ok := res.Trends[col]
		if !ok {
			continue
		}
		fmt.Printf("    %-12s slope %+.3f │ intercept %+.2f │ n=%d\n", col, tr.Slope, tr.Intercept, tr.N)
	}
	fmt.Println()
}

func shorten(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
