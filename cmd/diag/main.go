package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/owens3364/coe332midterm/internal/oem"
	"github.com/owens3364/coe332midterm/internal/transform"
)

// Diagnostic tool: fetch and parse the OEM dataset once, print a summary
// and the derived state at the epoch nearest to now.
func main() {
	sourceURL := flag.String("url", "", "OEM source URL (default: NASA public dataset)")
	timeout := flag.Duration("timeout", 30*time.Second, "fetch timeout")
	flag.Parse()

	fetcher := oem.NewFetcher(*sourceURL, *timeout)
	fmt.Printf("Fetching %s\n", fetcher.SourceURL())

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	raw, err := fetcher.Fetch(ctx)
	if err != nil {
		fmt.Println("ERROR fetching OEM data:", err)
		os.Exit(1)
	}
	fmt.Printf("Fetched %d bytes\n", len(raw))

	ds, err := oem.Parse(bytes.NewReader(raw))
	if err != nil {
		fmt.Println("ERROR parsing OEM data:", err)
		os.Exit(1)
	}

	fmt.Printf("Header keys: %d, metadata keys: %d, comments: %d\n",
		len(ds.Header), len(ds.Metadata), len(ds.Comments))
	fmt.Printf("Epochs: %d\n", len(ds.Epochs))
	if len(ds.Epochs) > 0 {
		first := ds.Epochs[0]
		last := ds.Epochs[len(ds.Epochs)-1]
		fmt.Printf("Epoch range: %s .. %s\n",
			first.Timestamp.Format(oem.TimestampLayout),
			last.Timestamp.Format(oem.TimestampLayout))
	}

	now := time.Now().UTC()
	e, ok := ds.Nearest(now)
	if !ok {
		fmt.Println("ERROR: dataset contains no epochs")
		os.Exit(1)
	}

	geo := transform.ECIToGeodetic(transform.StateVector{
		X: e.X, Y: e.Y, Z: e.Z,
		VX: e.DX, VY: e.DY, VZ: e.DZ,
	}, e.Timestamp)

	fmt.Printf("\nNearest epoch to %s:\n", now.Format(time.RFC3339))
	fmt.Printf("  timestamp: %s\n", e.Timestamp.Format(oem.TimestampLayout))
	fmt.Printf("  position:  (%.3f, %.3f, %.3f) km\n", e.X, e.Y, e.Z)
	fmt.Printf("  speed:     %.3f km/s\n", transform.Speed(e.DX, e.DY, e.DZ))
	fmt.Printf("  location:  lat=%.4f° lon=%.4f° alt=%.1f km\n", geo.LatDeg, geo.LonDeg, geo.AltKm)
}
