// Package metricsstore implements ports.Metrics against PostgreSQL,
// grounded on the teacher's pkg/database (pgx-backed connection pool,
// golang-migrate-embedded migrations applied on startup).
package metricsstore

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // register the pgx driver for golang-migrate

	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/models"
	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/ports"
)

//go:embed migrations
var migrationsFS embed.FS

// Store implements ports.Metrics against a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to dsn, applies pending migrations, and returns a ready Store.
func New(ctx context.Context, dsn string) (*Store, error) {
	if err := runMigrations(dsn); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() { s.pool.Close() }

func runMigrations(dsn string) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open sql.DB for migrations: %w", err)
	}
	defer db.Close()

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migrate driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

// RecordReview persists one reviewer outcome (spec.md §4.9 per-review log).
func (s *Store) RecordReview(ctx context.Context, r ports.RecordedReview) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO reviews (issue_key, iteration, agent_id, completeness, security, standards, overall, approved, tokens_used)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		r.IssueKey, r.Iteration, r.AgentID,
		r.Review.Completeness.Score, r.Review.Security.Score, r.Review.Standards.Score,
		r.Review.Overall, r.Review.Approved, r.Review.TokensUsed,
	)
	if err != nil {
		return fmt.Errorf("insert review for %s: %w", r.IssueKey, err)
	}
	return nil
}

// UpsertDaily applies delta to date's row, creating it if absent, with the
// same additive/idempotent semantics as models.DailyMetrics.Apply
// (invariant I-7: a zero-value delta is a no-op).
func (s *Store) UpsertDaily(ctx context.Context, date string, delta models.MetricsDelta) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	qualityDelta := 0.0
	scoreDelta := 0
	if delta.QualityScore != nil {
		qualityDelta = *delta.QualityScore
		scoreDelta = 1
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO daily_metrics (date, tasks_completed, pull_requests_created, tokens_consumed, total_quality_score, num_scores, success_count, failure_count, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		ON CONFLICT (date) DO UPDATE SET
			tasks_completed = daily_metrics.tasks_completed + EXCLUDED.tasks_completed,
			pull_requests_created = daily_metrics.pull_requests_created + EXCLUDED.pull_requests_created,
			tokens_consumed = daily_metrics.tokens_consumed + EXCLUDED.tokens_consumed,
			total_quality_score = daily_metrics.total_quality_score + EXCLUDED.total_quality_score,
			num_scores = daily_metrics.num_scores + EXCLUDED.num_scores,
			success_count = daily_metrics.success_count + EXCLUDED.success_count,
			failure_count = daily_metrics.failure_count + EXCLUDED.failure_count,
			last_updated = now()`,
		date, delta.TasksCompletedDelta, delta.PullRequestsCreatedDelta, delta.TokensConsumedDelta,
		qualityDelta, scoreDelta, delta.SuccessDelta, delta.FailureDelta,
	)
	if err != nil {
		return fmt.Errorf("upsert daily_metrics for %s: %w", date, err)
	}

	for agent, ad := range delta.AgentDeltas {
		_, err = tx.Exec(ctx, `
			INSERT INTO daily_agent_activity (date, agent, task_completed, tokens_used, llm_model_used)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (date, agent) DO UPDATE SET
				task_completed = daily_agent_activity.task_completed + EXCLUDED.task_completed,
				tokens_used = daily_agent_activity.tokens_used + EXCLUDED.tokens_used,
				llm_model_used = CASE WHEN EXCLUDED.llm_model_used <> '' THEN EXCLUDED.llm_model_used ELSE daily_agent_activity.llm_model_used END`,
			date, string(agent), ad.TaskCompletedDelta, ad.TokensUsedDelta, ad.LastModel,
		)
		if err != nil {
			return fmt.Errorf("upsert daily_agent_activity for %s/%s: %w", date, agent, err)
		}
	}

	return tx.Commit(ctx)
}

// GetLast7Days returns the 7 most recent daily_metrics rows, newest first.
func (s *Store) GetLast7Days(ctx context.Context) ([]models.DailyMetrics, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT date, tasks_completed, pull_requests_created, tokens_consumed,
		       total_quality_score, num_scores, success_count, failure_count, last_updated
		FROM daily_metrics
		ORDER BY date DESC
		LIMIT 7`)
	if err != nil {
		return nil, fmt.Errorf("query last 7 days: %w", err)
	}
	defer rows.Close()

	var out []models.DailyMetrics
	for rows.Next() {
		var d models.DailyMetrics
		var date time.Time
		if err := rows.Scan(&date, &d.TasksCompleted, &d.PullRequestsCreated, &d.TokensConsumed,
			&d.TotalQualityScore, &d.NumScores, &d.SuccessCount, &d.FailureCount, &d.LastUpdated); err != nil {
			return nil, fmt.Errorf("scan daily_metrics row: %w", err)
		}
		d.Date = date.Format("2006-01-02")
		if d.NumScores > 0 {
			d.CodeQualityScores = d.TotalQualityScore / float64(d.NumScores)
		}
		agents, err := s.agentActivities(ctx, d.Date)
		if err != nil {
			return nil, err
		}
		d.AgentActivities = agents
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) agentActivities(ctx context.Context, date string) (map[models.AgentName]models.AgentActivity, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT agent, task_completed, tokens_used, llm_model_used
		FROM daily_agent_activity
		WHERE date = $1`, date)
	if err != nil {
		return nil, fmt.Errorf("query agent activity for %s: %w", date, err)
	}
	defer rows.Close()

	out := make(map[models.AgentName]models.AgentActivity)
	for rows.Next() {
		var agent string
		var a models.AgentActivity
		if err := rows.Scan(&agent, &a.TaskCompleted, &a.TokensUsed, &a.LLMModelUsed); err != nil {
			return nil, fmt.Errorf("scan agent activity row: %w", err)
		}
		out[models.AgentName(agent)] = a
	}
	return out, rows.Err()
}

// GetAgentsSummary aggregates per-agent task/token totals across every
// recorded day. SuccessRate is the fleet-wide success ratio from
// daily_metrics applied uniformly per agent row, since per-agent
// success/failure is not tracked separately from per-agent task counts.
func (s *Store) GetAgentsSummary(ctx context.Context) ([]ports.AgentSummary, error) {
	successRatio, err := s.successRatio(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT agent, SUM(task_completed), SUM(tokens_used),
		       (array_agg(llm_model_used ORDER BY date DESC))[1]
		FROM daily_agent_activity
		GROUP BY agent
		ORDER BY agent`)
	if err != nil {
		return nil, fmt.Errorf("query agents summary: %w", err)
	}
	defer rows.Close()

	var out []ports.AgentSummary
	for rows.Next() {
		var agent string
		var summary ports.AgentSummary
		if err := rows.Scan(&agent, &summary.Tasks, &summary.Tokens, &summary.Model); err != nil {
			return nil, fmt.Errorf("scan agents summary row: %w", err)
		}
		summary.Agent = models.AgentName(agent)
		summary.SuccessRate = successRatio
		out = append(out, summary)
	}
	return out, rows.Err()
}

func (s *Store) successRatio(ctx context.Context) (float64, error) {
	var success, failure int
	err := s.pool.QueryRow(ctx, `SELECT COALESCE(SUM(success_count),0), COALESCE(SUM(failure_count),0) FROM daily_metrics`).Scan(&success, &failure)
	if err != nil {
		return 0, fmt.Errorf("query success ratio: %w", err)
	}
	if success+failure == 0 {
		return 0, nil
	}
	return float64(success) / float64(success+failure), nil
}

var _ ports.Metrics = (*Store)(nil)
