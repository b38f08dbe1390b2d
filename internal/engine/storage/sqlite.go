// Package storage writes run snapshots to a SQLite file and reads them back
// for export.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/a-deal/gym-finder/internal/model"
)

// RunMeta describes what a run searched.
type RunMeta struct {
	Command   string
	Target    string
	Config    any
	CreatedAt time.Time
}

// RunInfo is a stored run header.
type RunInfo struct {
	ID        uuid.UUID   `json:"id"`
	Command   string      `json:"command"`
	Target    string      `json:"target"`
	CreatedAt time.Time   `json:"created_at"`
	Stats     model.Stats `json:"stats"`
}

type Store struct {
	db *sql.DB
	mu sync.Mutex
}

func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, eris.Wrap(err, "opening db")
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA cache_size=-64000",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "setting pragma %q", p)
		}
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		command TEXT NOT NULL,
		target TEXT,
		config TEXT,
		stats TEXT
	);
	CREATE TABLE IF NOT EXISTS regions (
		run_id TEXT NOT NULL REFERENCES runs(id),
		region_id TEXT NOT NULL,
		lat REAL,
		lng REAL,
		radius_miles REAL,
		raw_counts TEXT,
		merge_count INTEGER,
		avg_confidence REAL,
		failures TEXT,
		failed INTEGER NOT NULL DEFAULT 0,
		error TEXT,
		duplicates_removed INTEGER,
		PRIMARY KEY (run_id, region_id)
	);
	CREATE TABLE IF NOT EXISTS listings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id),
		region TEXT NOT NULL,
		name TEXT,
		address TEXT,
		phone TEXT,
		lat REAL,
		lng REAL,
		website TEXT,
		rating REAL,
		review_count INTEGER,
		price_level INTEGER,
		hours TEXT,
		categories TEXT,
		sources TEXT NOT NULL,
		members TEXT NOT NULL,
		links TEXT,
		match_confidence REAL,
		also_found_in TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_listings_run ON listings(run_id);
	CREATE INDEX IF NOT EXISTS idx_listings_coords ON listings(lat, lng);
	`
	if _, err := db.Exec(schema); err != nil {
		return eris.Wrap(err, "creating schema")
	}
	return nil
}

// SaveRun writes a run, its regions and its unique listings in one
// transaction.
func (s *Store) SaveRun(ctx context.Context, runID uuid.UUID, meta RunMeta, agg model.AggregateResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now()
	}
	cfg, err := json.Marshal(meta.Config)
	if err != nil {
		return eris.Wrap(err, "encoding run config")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "beginning tx")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, command, target, config, stats) VALUES (?,?,?,?,?,?)`,
		runID.String(), meta.CreatedAt.UTC(), meta.Command, meta.Target, string(cfg), jsonText(agg.Stats),
	); err != nil {
		return eris.Wrap(err, "inserting run")
	}

	regionStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO regions
		(run_id, region_id, lat, lng, radius_miles, raw_counts, merge_count, avg_confidence,
		 failures, failed, error, duplicates_removed)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return eris.Wrap(err, "preparing region stmt")
	}
	defer regionStmt.Close()

	for _, r := range agg.Regions {
		if _, err := regionStmt.ExecContext(ctx,
			runID.String(), r.Region.ID, r.Region.Center.Lat, r.Region.Center.Lng, r.Region.RadiusMiles,
			jsonText(r.RawCounts), r.MergeCount, r.AvgConfidence,
			jsonText(r.Failures), r.Failed, r.Error, r.DuplicatesRemoved,
		); err != nil {
			return eris.Wrapf(err, "inserting region %s", r.Region.ID)
		}
	}

	listingStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO listings
		(run_id, region, name, address, phone, lat, lng, website, rating, review_count,
		 price_level, hours, categories, sources, members, links, match_confidence, also_found_in)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return eris.Wrap(err, "preparing listing stmt")
	}
	defer listingStmt.Close()

	for _, l := range agg.Listings {
		var lat, lng *float64
		if l.Coordinates != nil {
			lat, lng = &l.Coordinates.Lat, &l.Coordinates.Lng
		}
		var hours any
		if l.Hours != nil {
			hours = jsonText(l.Hours)
		}
		if _, err := listingStmt.ExecContext(ctx,
			runID.String(), l.Region, l.Name, l.Address, l.Phone, lat, lng, l.Website,
			l.Rating, l.ReviewCount, l.PriceLevel, hours, jsonText(l.Categories),
			jsonText(l.Sources), jsonText(l.Members), jsonText(l.Links), l.MatchConfidence,
			jsonText(l.AlsoFoundIn),
		); err != nil {
			return eris.Wrapf(err, "inserting listing %v", l.Members)
		}
	}

	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "committing tx")
	}
	return nil
}

// LatestRun returns the most recently created run.
func (s *Store) LatestRun(ctx context.Context) (RunInfo, error) {
	var info RunInfo
	var id string
	var stats sql.NullString
	var target sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, command, target, created_at, stats FROM runs ORDER BY created_at DESC LIMIT 1`,
	).Scan(&id, &info.Command, &target, &info.CreatedAt, &stats)
	if err != nil {
		return RunInfo{}, eris.Wrap(err, "reading latest run")
	}
	if info.ID, err = uuid.Parse(id); err != nil {
		return RunInfo{}, eris.Wrapf(err, "parsing run id %q", id)
	}
	info.Target = target.String
	if stats.Valid {
		if err := json.Unmarshal([]byte(stats.String), &info.Stats); err != nil {
			return RunInfo{}, eris.Wrap(err, "decoding run stats")
		}
	}
	return info, nil
}

// Listings reads the listings of one run in insertion order.
func (s *Store) Listings(ctx context.Context, runID uuid.UUID) ([]model.MergedListing, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT region, name, address, phone, lat, lng, website, rating, review_count,
		       price_level, hours, categories, sources, members, links, match_confidence, also_found_in
		FROM listings WHERE run_id = ? ORDER BY id`, runID.String())
	if err != nil {
		return nil, eris.Wrap(err, "querying listings")
	}
	defer rows.Close()

	var out []model.MergedListing
	for rows.Next() {
		var (
			l                                                 model.MergedListing
			lat, lng, rating, conf                            sql.NullFloat64
			reviews, price                                    sql.NullInt64
			name, address, phone, website                     sql.NullString
			hours, categories, sources, members, links, found sql.NullString
		)
		if err := rows.Scan(&l.Region, &name, &address, &phone, &lat, &lng, &website, &rating,
			&reviews, &price, &hours, &categories, &sources, &members, &links, &conf, &found); err != nil {
			return nil, eris.Wrap(err, "scanning listing")
		}
		l.Name, l.Address, l.Phone, l.Website = name.String, address.String, phone.String, website.String
		if lat.Valid && lng.Valid {
			l.Coordinates = &model.Coordinate{Lat: lat.Float64, Lng: lng.Float64}
		}
		if rating.Valid {
			l.Rating = &rating.Float64
		}
		if reviews.Valid {
			n := int(reviews.Int64)
			l.ReviewCount = &n
		}
		if price.Valid {
			p := int(price.Int64)
			l.PriceLevel = &p
		}
		if conf.Valid {
			l.MatchConfidence = &conf.Float64
		}
		for _, f := range []struct {
			col sql.NullString
			dst any
		}{
			{hours, &l.Hours},
			{categories, &l.Categories},
			{sources, &l.Sources},
			{members, &l.Members},
			{links, &l.Links},
			{found, &l.AlsoFoundIn},
		} {
			if !f.col.Valid || f.col.String == "" {
				continue
			}
			if err := json.Unmarshal([]byte(f.col.String), f.dst); err != nil {
				return nil, eris.Wrapf(err, "decoding listing column %q", f.col.String)
			}
		}
		out = append(out, l)
	}
	return out, eris.Wrap(rows.Err(), "iterating listings")
}

// Count returns the number of stored listings across runs.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM listings").Scan(&count)
	return count, eris.Wrap(err, "counting listings")
}

func (s *Store) Close() error {
	return s.db.Close()
}

// LoadListings opens a snapshot file and returns the latest run's listings.
func LoadListings(ctx context.Context, dbPath string) (RunInfo, []model.MergedListing, error) {
	s, err := NewStore(dbPath)
	if err != nil {
		return RunInfo{}, nil, err
	}
	defer s.Close()

	run, err := s.LatestRun(ctx)
	if err != nil {
		return RunInfo{}, nil, err
	}
	listings, err := s.Listings(ctx, run.ID)
	if err != nil {
		return RunInfo{}, nil, err
	}
	return run, listings, nil
}

// jsonText encodes v for a TEXT column. nil slices and maps become NULL.
func jsonText(v any) any {
	b, err := json.Marshal(v)
	if err != nil || string(b) == "null" {
		return nil
	}
	return string(b)
}
