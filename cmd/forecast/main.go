// forecast trains the candidate models on archived history up to 13:00 of
// the last loaded day and prints the afternoon power forecast with
// confidence bands. When the archive already holds the afternoon, it also
// scores each model against what actually happened.
//
// Usage:
//
//	forecast -location site_b -start 2024-06-01 -end 2024-06-05
//	forecast -location site_a -start 2024-06-01 -end 2024-06-05 -no-gbdt
//	forecast -location site_b -start 2024-06-01 -end 2024-06-05 -csv
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/clean"
	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/config"
	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/dataset"
	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/forecast"
	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/model"
)

const dayFormat = "2006-01-02"

func main() {
	dataRoot := flag.String("data-root", "data", "directory holding per-site day-file trees")
	location := flag.String("location", "site_a", "site to forecast (site_a or site_b)")
	startStr := flag.String("start", "", "first day of history (2006-01-02)")
	endStr := flag.String("end", "", "last day; its afternoon is the forecast horizon")
	target := flag.String("target", "", "target column (default: auto-detect power column)")
	seed := flag.Uint64("seed", 0, "random seed for the boosted ensemble (0 = current time)")
	noGBDT := flag.Bool("no-gbdt", false, "train only the linear model")
	csvOut := flag.Bool("csv", false, "output the horizon as CSV")
	flag.Parse()

	if *startStr == "" || *endStr == "" {
		fmt.Fprintln(os.Stderr, "Both -start and -end are required (2006-01-02)")
		os.Exit(1)
	}
	start, err := time.Parse(dayFormat, *startStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid -start date: %v\n", err)
		os.Exit(1)
	}
	end, err := time.Parse(dayFormat, *endStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid -end date: %v\n", err)
		os.Exit(1)
	}

	if *seed == 0 {
		*seed = uint64(time.Now().UnixNano())
	}
	if *noGBDT {
		forecast.SetBoostedTrees(false)
	}

	req := config.Request{Location: model.LocationID(*location), Start: start, End: end}
	loader := dataset.NewLoader(*dataRoot)
	bundle, _, err := loader.LoadLocation(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Loading data: %v\n", err)
		os.Exit(1)
	}
	mppt, _ := clean.Clean(bundle.MPPT)
	weather, _ := clean.Clean(bundle.Weather)

	res, err := forecast.Run(mppt, weather, forecast.Options{TargetColumn: *target, Seed: *seed})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Forecast: %v\n", err)
		os.Exit(1)
	}

	if *csvOut {
		printCSV(res)
		return
	}
	printReport(req, res)
}

func printCSV(res *forecast.Result) {
	lower, upper := band95(res)
	best := res.BestModel()
	fmt.Println("timestamp,forecast_w,lower95,upper95")
	for i, ts := range res.HorizonTimes {
		fmt.Printf("%s,%.1f,%.1f,%.1f\n", ts.Format(time.RFC3339), best.Horizon[i], lower[i], upper[i])
	}
}

func printReport(req config.Request, res *forecast.Result) {
	site := model.SiteCatalog[req.Location]

	fmt.Println()
	fmt.Println("Afternoon Power Forecast")
	fmt.Printf("  Site: %s (%s)\n", site.Name, req.Location)
	fmt.Printf("  History: %s to %s\n", req.Start.Format(dayFormat), req.End.Format(dayFormat))
	fmt.Printf("  Target: %s\n", res.TargetColumn)
	fmt.Printf("  Training rows: %d | Test rows: %d | Features: %d\n",
		res.TrainRows, res.TestRows, len(res.FeatureNames))
	fmt.Println()

	fmt.Printf("  %-18s │ %9s │ %9s │ %7s\n", "Model", "MAE", "MSE", "R²")
	fmt.Printf("  ───────────────────┼───────────┼───────────┼────────\n")
	for i, m := range res.Models {
		marker := " "
		if i == res.Best {
			marker = "*"
		}
		fmt.Printf("  %-17s%s │ %9.2f │ %9.1f │ %7.3f\n", m.Name, marker, m.MAE, m.MSE, m.R2)
	}
	fmt.Println()

	lower, upper := band95(res)
	best := res.BestModel()
	fmt.Printf("  %-6s │ %9s │ %-21s\n", "Time", "Forecast", "95% interval")
	fmt.Printf("  ───────┼───────────┼──────────────────────\n")
	for i, ts := range res.HorizonTimes {
		fmt.Printf("  %-6s │ %9.1f │ %8.1f to %8.1f\n",
			ts.Format("15:04"), best.Horizon[i], lower[i], upper[i])
	}
	fmt.Println()

	if len(res.Realized) > 0 {
		fmt.Println("  Realized accuracy (afternoon actuals were already archived):")
		for _, sc := range res.Realized {
			fmt.Printf("    %-18s MAE %8.2f │ R² %6.3f │ %d matched points\n",
				sc.Model, sc.MAE, sc.R2, sc.Matched)
		}
		fmt.Println()
	}
}

// band95 returns the 95% interval around the best model's horizon, falling
// back to the horizon itself if bands are absent.
func band95(res *forecast.Result) (lower, upper []float64) {
	for _, b := range res.Bands {
		if b.Level == "95" {
			return b.Lower, b.Upper
		}
	}
	h := res.BestModel().Horizon
	return h, h
}
