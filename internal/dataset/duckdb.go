// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package dataset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematch/internal/catalog"
	"github.com/tomtom215/cinematch/internal/recommend"
)

// ErrMissingColumn is returned when a CSV file lacks a required column.
var ErrMissingColumn = errors.New("required column missing")

// Platforms maps streaming CSV columns to display names, in display order.
var Platforms = []struct {
	Column string
	Name   string
}{
	{"netflix", "Netflix"},
	{"prime_video", "Amazon Prime"},
	{"disney_plus", "Disney+"},
	{"hulu", "Hulu"},
	{"hbo_max", "HBO Max"},
	{"apple_tv_plus", "Apple TV+"},
}

// Config locates the source CSV files.
type Config struct {
	// CatalogPath is the title metadata CSV (tconst, primaryTitle, ...).
	CatalogPath string

	// StreamingPath is the availability CSV with one 0/1 column per
	// platform. Optional; without it every item is "Not Available".
	StreamingPath string

	// InteractionsPath is the ratings CSV (user_id, movie_id, rating,
	// timestamp).
	InteractionsPath string

	// DuckDBPath is the database file. Empty or ":memory:" runs in memory.
	DuckDBPath string

	// QueryTimeout bounds each load query.
	QueryTimeout time.Duration
}

// DuckDBLoader reads the CSV dataset through DuckDB's read_csv_auto. It
// implements recommend.DataProvider.
type DuckDBLoader struct {
	conn   *sql.DB
	cfg    Config
	logger zerolog.Logger
}

// Open creates a loader backed by a DuckDB connection.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Open(cfg Config, logger zerolog.Logger) (*DuckDBLoader, error) {
	if cfg.DuckDBPath == "" {
		cfg.DuckDBPath = ":memory:"
	}
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = 2 * time.Minute
	}

	conn, err := sql.Open("duckdb", cfg.DuckDBPath)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping duckdb: %w", err)
	}

	return &DuckDBLoader{
		conn:   conn,
		cfg:    cfg,
		logger: logger.With().Str("component", "dataset").Logger(),
	}, nil
}

// Close releases the database connection.
func (l *DuckDBLoader) Close() error {
	return l.conn.Close()
}

// LoadInteractions reads the ratings CSV. The item column may be named
// movie_id or item_id; a missing timestamp column reads as zero.
func (l *DuckDBLoader) LoadInteractions(ctx context.Context) ([]recommend.Interaction, error) {
	if l.cfg.InteractionsPath == "" {
		return nil, fmt.Errorf("interactions path not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, l.cfg.QueryTimeout)
	defer cancel()

	source := csvSource(l.cfg.InteractionsPath)
	cols, err := l.columns(ctx, source)
	if err != nil {
		return nil, err
	}

	itemCol := firstPresent(cols, "movie_id", "item_id")
	if itemCol == "" {
		return nil, fmt.Errorf("%w: movie_id or item_id in %s", ErrMissingColumn, l.cfg.InteractionsPath)
	}
	for _, c := range []string{"user_id", "rating"} {
		if !cols[c] {
			return nil, fmt.Errorf("%w: %s in %s", ErrMissingColumn, c, l.cfg.InteractionsPath)
		}
	}
	tsExpr := "0"
	if cols["timestamp"] {
		tsExpr = `COALESCE(TRY_CAST("timestamp" AS BIGINT), 0)`
	}

	// A plain scan preserves file order; index assignment is first-seen.
	query := fmt.Sprintf(`
		SELECT
			CAST(user_id AS VARCHAR),
			CAST(%s AS VARCHAR),
			CAST(rating AS DOUBLE),
			%s
		FROM %s
		WHERE user_id IS NOT NULL
		  AND %s IS NOT NULL
		  AND rating IS NOT NULL
	`, quoteIdent(itemCol), tsExpr, source, quoteIdent(itemCol))

	start := time.Now()
	rows, err := l.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query interactions: %w", err)
	}
	defer rows.Close()

	var out []recommend.Interaction
	for rows.Next() {
		var r recommend.Interaction
		if err := rows.Scan(&r.UserID, &r.ItemID, &r.Rating, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interactions: %w", err)
	}

	l.logger.Info().
		Str("path", l.cfg.InteractionsPath).
		Int("rows", len(out)).
		Dur("duration", time.Since(start)).
		Msg("loaded interactions")
	return out, nil
}

// LoadCatalog reads the title CSV joined with streaming availability.
// Items with no platform flag set carry the single platform "Not Available".
// Duplicate ids keep their first row.
//
//nolint:gocyclo // column mapping is a flat list of optional fields
func (l *DuckDBLoader) LoadCatalog(ctx context.Context) ([]*catalog.Item, error) {
	if l.cfg.CatalogPath == "" {
		return nil, fmt.Errorf("catalog path not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, l.cfg.QueryTimeout)
	defer cancel()

	source := csvSource(l.cfg.CatalogPath)
	cols, err := l.columns(ctx, source)
	if err != nil {
		return nil, err
	}
	if !cols["tconst"] {
		return nil, fmt.Errorf("%w: tconst in %s", ErrMissingColumn, l.cfg.CatalogPath)
	}

	text := func(col string) string {
		if !cols[col] {
			return "''"
		}
		return fmt.Sprintf("COALESCE(CAST(c.%s AS VARCHAR), '')", quoteIdent(col))
	}
	number := func(col, typ string) string {
		if !cols[col] {
			return "0"
		}
		return fmt.Sprintf("COALESCE(TRY_CAST(c.%s AS %s), 0)", quoteIdent(col), typ)
	}

	platformExprs := make([]string, len(Platforms))
	join := ""
	if l.cfg.StreamingPath != "" {
		streamSource := csvSource(l.cfg.StreamingPath)
		streamCols, err := l.columns(ctx, streamSource)
		if err != nil {
			return nil, err
		}
		if !streamCols["movie_id"] {
			return nil, fmt.Errorf("%w: movie_id in %s", ErrMissingColumn, l.cfg.StreamingPath)
		}
		join = fmt.Sprintf("LEFT JOIN %s s ON CAST(s.movie_id AS VARCHAR) = CAST(c.tconst AS VARCHAR)", streamSource)
		for n, p := range Platforms {
			if streamCols[p.Column] {
				platformExprs[n] = fmt.Sprintf("COALESCE(TRY_CAST(s.%s AS INTEGER), 0)", quoteIdent(p.Column))
			} else {
				platformExprs[n] = "0"
			}
		}
	} else {
		for n := range platformExprs {
			platformExprs[n] = "0"
		}
	}

	query := fmt.Sprintf(`
		SELECT
			CAST(c.tconst AS VARCHAR),
			%s, %s, %s, %s, %s, %s, %s, %s, %s, %s,
			%s
		FROM %s c
		%s
		WHERE c.tconst IS NOT NULL
	`,
		text("primaryTitle"),
		text("titleType"),
		number("startYear", "INTEGER"),
		number("runtimeMinutes", "INTEGER"),
		text("genres"),
		number("averageRating", "DOUBLE"),
		number("numVotes", "BIGINT"),
		text("director"),
		text("language"),
		text("mood"),
		strings.Join(platformExprs, ", "),
		source,
		join,
	)

	start := time.Now()
	rows, err := l.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query catalog: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	var items []*catalog.Item
	for rows.Next() {
		var (
			it        catalog.Item
			titleType string
			genres    string
			votes     int64
			flags     = make([]int, len(Platforms))
		)
		dest := []any{
			&it.ID, &it.Title, &titleType, &it.Year, &it.RuntimeMinutes, &genres,
			&it.QualityRating, &votes, &it.Director, &it.Language, &it.Mood,
		}
		for n := range flags {
			dest = append(dest, &flags[n])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan catalog row: %w", err)
		}
		if _, dup := seen[it.ID]; dup {
			continue
		}
		seen[it.ID] = struct{}{}

		it.Kind = normalizeKind(titleType)
		it.Genres = splitList(genres)
		it.NumVotes = int(votes)
		for n, p := range Platforms {
			if flags[n] == 1 {
				it.Platforms = append(it.Platforms, p.Name)
			}
		}
		if len(it.Platforms) == 0 {
			it.Platforms = []string{catalog.NotAvailable}
		}
		items = append(items, &it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog: %w", err)
	}

	l.logger.Info().
		Str("path", l.cfg.CatalogPath).
		Int("items", len(items)).
		Dur("duration", time.Since(start)).
		Msg("loaded catalog")
	return items, nil
}

// Stats summarizes the interactions file.
type Stats struct {
	Interactions int     `json:"interactions"`
	Users        int     `json:"users"`
	Items        int     `json:"items"`
	MeanRating   float64 `json:"mean_rating"`
	Sparsity     float64 `json:"sparsity"`
}

// InteractionStats computes Stats from rows already loaded.
func InteractionStats(rows []recommend.Interaction) Stats {
	users := make(map[string]struct{})
	items := make(map[string]struct{})
	var sum float64
	for _, r := range rows {
		users[r.UserID] = struct{}{}
		items[r.ItemID] = struct{}{}
		sum += r.Rating
	}
	s := Stats{Interactions: len(rows), Users: len(users), Items: len(items)}
	if len(rows) > 0 {
		s.MeanRating = sum / float64(len(rows))
		s.Sparsity = 1 - float64(len(rows))/(float64(len(users))*float64(len(items)))
	}
	return s
}

// columns returns the header names of a CSV source.
func (l *DuckDBLoader) columns(ctx context.Context, source string) (map[string]bool, error) {
	rows, err := l.conn.QueryContext(ctx, "SELECT * FROM "+source+" LIMIT 0")
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	out := make(map[string]bool, len(names))
	for _, n := range names {
		out[n] = true
	}
	return out, nil
}

func csvSource(path string) string {
	return "read_csv_auto(" + quoteLiteral(path) + ", header = true)"
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func firstPresent(cols map[string]bool, names ...string) string {
	for _, n := range names {
		if cols[n] {
			return n
		}
	}
	return ""
}

func normalizeKind(titleType string) string {
	switch strings.ToLower(titleType) {
	case "tvseries", "tvminiseries", "series":
		return catalog.KindSeries
	case "":
		return ""
	default:
		return catalog.KindMovie
	}
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" && p != `\N` {
			out = append(out, p)
		}
	}
	return out
}

var _ recommend.DataProvider = (*DuckDBLoader)(nil)
