package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/a-deal/gym-finder/internal/engine/storage"
	"github.com/a-deal/gym-finder/internal/model"
)

func newExportCmd() *cobra.Command {
	var dbPath, outputPath, format string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the latest run of a snapshot to CSV or JSON",
		Example: "  gymtap export --db ./out/gymtap_20260212_101500.db\n" +
			"  gymtap export --db data.db --format json --output gyms.json",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != "csv" && format != "json" {
				return eris.Errorf("unsupported format: %s (csv or json)", format)
			}
			if outputPath == "" {
				dir := filepath.Dir(dbPath)
				base := strings.TrimSuffix(filepath.Base(dbPath), ".db")
				outputPath = filepath.Join(dir, base+"."+format)
			}

			if _, err := os.Stat(dbPath); err != nil {
				return eris.Wrap(err, "opening db")
			}
			info, listings, err := storage.LoadListings(cmd.Context(), dbPath)
			if err != nil {
				return eris.Wrap(err, "loading db")
			}
			if len(listings) == 0 {
				return eris.New("no listings found in database")
			}

			f, err := os.Create(outputPath)
			if err != nil {
				return eris.Wrap(err, "creating output")
			}
			defer f.Close()

			if format == "json" {
				err = writeJSON(f, info, listings)
			} else {
				err = writeCSV(f, listings)
			}
			if err != nil {
				return err
			}
			if err := f.Close(); err != nil {
				return eris.Wrap(err, "closing output")
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d listings to %s\n", len(listings), outputPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "path to the .db snapshot (required)")
	cmd.Flags().StringVar(&outputPath, "output", "", "output file path (default: next to the db)")
	cmd.Flags().StringVar(&format, "format", "csv", "export format: csv or json")
	_ = cmd.MarkFlagRequired("db")
	return cmd
}

var csvHeader = []string{
	"name", "address", "phone", "website", "lat", "lng",
	"rating", "review_count", "price_level", "categories",
	"sources", "match_confidence", "region", "also_found_in", "links",
}

func writeCSV(f *os.File, listings []model.MergedListing) error {
	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return eris.Wrap(err, "writing csv")
	}
	for _, l := range listings {
		if err := w.Write(csvRecord(l)); err != nil {
			return eris.Wrap(err, "writing csv")
		}
	}
	w.Flush()
	return eris.Wrap(w.Error(), "writing csv")
}

func csvRecord(l model.MergedListing) []string {
	var lat, lng, rating, reviews, price, conf string
	if l.Coordinates != nil {
		lat = strconv.FormatFloat(l.Coordinates.Lat, 'f', 6, 64)
		lng = strconv.FormatFloat(l.Coordinates.Lng, 'f', 6, 64)
	}
	if l.Rating != nil {
		rating = strconv.FormatFloat(*l.Rating, 'f', 1, 64)
	}
	if l.ReviewCount != nil {
		reviews = strconv.Itoa(*l.ReviewCount)
	}
	if l.PriceLevel != nil {
		price = strconv.Itoa(*l.PriceLevel)
	}
	if l.MatchConfidence != nil {
		conf = strconv.FormatFloat(*l.MatchConfidence, 'f', 3, 64)
	}
	srcs := make([]string, len(l.Sources))
	for i, s := range l.Sources {
		srcs[i] = string(s)
	}
	links := make([]string, 0, len(l.Links))
	for s, u := range l.Links {
		links = append(links, string(s)+"="+u)
	}
	sort.Strings(links)

	return []string{
		l.Name,
		l.Address,
		l.Phone,
		l.Website,
		lat,
		lng,
		rating,
		reviews,
		price,
		strings.Join(l.Categories, "|"),
		strings.Join(srcs, "|"),
		conf,
		l.Region,
		strings.Join(l.AlsoFoundIn, "|"),
		strings.Join(links, " "),
	}
}

func writeJSON(f *os.File, info storage.RunInfo, listings []model.MergedListing) error {
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	err := enc.Encode(struct {
		Run      storage.RunInfo       `json:"run"`
		Listings []model.MergedListing `json:"listings"`
	}{info, listings})
	return eris.Wrap(err, "writing json")
}
