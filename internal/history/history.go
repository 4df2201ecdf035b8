// Package history implements the HistoryStore Adapter (spec.md §3/§6): a
// Postgres-backed append-only log of AnalysisRecords, used both to
// persist each pipeline outcome and to warm the regional calibrator at
// startup. Modelled on services/image-registry/database.go's
// schema-init/upsert/scan pattern, generalized from golden-image rows to
// analysis records (append-only here, so there is no update path).
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/quantumlayer-dev/solar-placement/internal/model"
)

// Store is the Postgres-backed HistoryStore.
type Store struct {
	conn   *sql.DB
	logger *zap.Logger
}

// Open connects, pings, and initializes schema. Schema-init failure is
// logged but does not fail Open, matching the teacher's
// warn-and-continue posture for a non-critical bootstrap step.
func Open(dsn string, maxConns, maxIdle int, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("history: open connection: %w", err)
	}
	conn.SetMaxOpenConns(maxConns)
	conn.SetMaxIdleConns(maxIdle)

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("history: ping: %w", err)
	}

	s := &Store{conn: conn, logger: logger}
	if err := s.initSchema(); err != nil {
		logger.Warn("history: could not initialize schema", zap.Error(err))
	}
	return s, nil
}

func (s *Store) initSchema() error {
	_, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS analysis_records (
			id VARCHAR(36) PRIMARY KEY,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			lat DOUBLE PRECISION NOT NULL,
			lng DOUBLE PRECISION NOT NULL,
			solar_irradiance DOUBLE PRECISION,
			cloud_cover_pct DOUBLE PRECISION,
			slope_degrees DOUBLE PRECISION,
			grid_distance_km DOUBLE PRECISION,
			score INTEGER NOT NULL,
			grade VARCHAR(4),
			sub_scores TEXT,
			annual_energy_kwh DOUBLE PRECISION,
			installation_cost DOUBLE PRECISION,
			payback_years DOUBLE PRECISION,
			lifetime_profit DOUBLE PRECISION,
			ai_summary TEXT,
			ai_provider VARCHAR(32)
		)
	`)
	if err != nil {
		return fmt.Errorf("create analysis_records table: %w", err)
	}

	_, err = s.conn.Exec(`
		CREATE INDEX IF NOT EXISTS idx_analysis_records_created_at ON analysis_records (created_at)
	`)
	return err
}

// Append inserts a new AnalysisRecord (append-only; spec.md §3 "created
// exactly once per successful pipeline invocation; never mutated").
func (s *Store) Append(record model.AnalysisRecord) (string, error) {
	subScoresJSON, err := json.Marshal(record.SubScores)
	if err != nil {
		return "", fmt.Errorf("history: marshal sub_scores: %w", err)
	}

	// Payback is infinite when annual savings are zero; that stores as
	// NULL since the wire protocol has no float infinity.
	payback := sql.NullFloat64{
		Float64: record.PaybackYears,
		Valid:   !math.IsInf(record.PaybackYears, 0) && !math.IsNaN(record.PaybackYears),
	}

	_, err = s.conn.Exec(`
		INSERT INTO analysis_records (
			id, created_at, lat, lng, solar_irradiance, cloud_cover_pct,
			slope_degrees, grid_distance_km, score, grade, sub_scores,
			annual_energy_kwh, installation_cost, payback_years, lifetime_profit,
			ai_summary, ai_provider
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		ON CONFLICT (id) DO NOTHING
	`,
		record.ID, record.CreatedAt, record.Lat, record.Lng,
		record.SolarIrradiance, record.CloudCoverPct, record.SlopeDegrees, record.GridDistanceKM,
		record.Score, string(record.Grade), string(subScoresJSON),
		record.AnnualEnergyKWh, record.InstallationCost, payback, record.LifetimeProfit,
		record.AISummary, record.AIProvider,
	)
	if err != nil {
		return "", fmt.Errorf("history: insert record: %w", err)
	}
	return record.ID, nil
}

// Replay returns every record created at or after since, ascending by
// created_at, used to warm the calibrator (spec.md §4.3). A slice is an
// adequate "iterator" for the bounded warm-up window this system needs.
func (s *Store) Replay(since time.Time) ([]model.AnalysisRecord, error) {
	rows, err := s.conn.Query(`
		SELECT id, created_at, lat, lng, solar_irradiance, cloud_cover_pct,
		       slope_degrees, grid_distance_km, score, grade, sub_scores,
		       annual_energy_kwh, installation_cost, payback_years, lifetime_profit,
		       ai_summary, ai_provider
		FROM analysis_records
		WHERE created_at >= $1
		ORDER BY created_at ASC
	`, since)
	if err != nil {
		return nil, fmt.Errorf("history: replay query: %w", err)
	}
	defer rows.Close()

	var out []model.AnalysisRecord
	for rows.Next() {
		var r model.AnalysisRecord
		var grade string
		var subScoresJSON sql.NullString
		var aiSummary, aiProvider sql.NullString
		var payback sql.NullFloat64

		if err := rows.Scan(
			&r.ID, &r.CreatedAt, &r.Lat, &r.Lng, &r.SolarIrradiance, &r.CloudCoverPct,
			&r.SlopeDegrees, &r.GridDistanceKM, &r.Score, &grade, &subScoresJSON,
			&r.AnnualEnergyKWh, &r.InstallationCost, &payback, &r.LifetimeProfit,
			&aiSummary, &aiProvider,
		); err != nil {
			return nil, fmt.Errorf("history: scan record: %w", err)
		}

		r.PaybackYears = payback.Float64
		if !payback.Valid {
			r.PaybackYears = math.Inf(1)
		}
		r.Grade = model.Grade(grade)
		if subScoresJSON.Valid {
			_ = json.Unmarshal([]byte(subScoresJSON.String), &r.SubScores)
		}
		r.AISummary = aiSummary.String
		r.AIProvider = aiProvider.String

		out = append(out, r)
	}
	return out, rows.Err()
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.conn.Close()
}
