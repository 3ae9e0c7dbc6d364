// Package postgres provides Postgres-backed persistence implementations.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JakeFAU/frontier-crawler/internal/crawler"
)

// TaskStoreConfig controls the Postgres connection pool used for task rows.
type TaskStoreConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type dbPool interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	Close()
}

// TaskStore persists tasks and crawl results in Postgres.
type TaskStore struct {
	pool dbPool
}

// NewTaskStore creates a Postgres-backed TaskStore using the provided config.
func NewTaskStore(ctx context.Context, cfg TaskStoreConfig) (*TaskStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &TaskStore{pool: pool}, nil
}

// NewTaskStoreWithPool constructs a store from an existing pool (primarily for testing).
func NewTaskStoreWithPool(pool dbPool) (*TaskStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &TaskStore{pool: pool}, nil
}

// Close closes the underlying connection pool.
func (s *TaskStore) Close() {
	s.pool.Close()
}

// SaveTask upserts the task row. Config and the visited set travel as JSONB.
func (s *TaskStore) SaveTask(ctx context.Context, record crawler.TaskRecord) error {
	configJSON, err := json.Marshal(record.Config)
	if err != nil {
		return fmt.Errorf("marshal task config: %w", err)
	}
	visitedJSON, err := json.Marshal(record.Visited)
	if err != nil {
		return fmt.Errorf("marshal visited set: %w", err)
	}
	query := `
		INSERT INTO crawl_tasks (id, name, status, config, visited, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    status = EXCLUDED.status,
		    config = EXCLUDED.config,
		    visited = EXCLUDED.visited,
		    updated_at = EXCLUDED.updated_at;
	`
	_, err = s.pool.Exec(ctx, query,
		record.ID,
		record.Name,
		string(record.Status),
		configJSON,
		visitedJSON,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert task %s: %w", record.ID, err)
	}
	return nil
}

// SaveResult inserts one crawl result row.
func (s *TaskStore) SaveResult(ctx context.Context, taskID string, result crawler.CrawlResult) error {
	keywordsJSON, err := json.Marshal(result.Keywords)
	if err != nil {
		return fmt.Errorf("marshal keywords: %w", err)
	}
	pdfJSON, err := json.Marshal(result.PDFLinks)
	if err != nil {
		return fmt.Errorf("marshal pdf links: %w", err)
	}
	tagsJSON, err := json.Marshal(result.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	query := `
		INSERT INTO crawl_results
			(task_id, url, title, author, abstract, keywords, publish_date, pdf_links, tags, depth, crawled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err = s.pool.Exec(ctx, query,
		taskID,
		result.URL,
		result.Title,
		result.Author,
		result.Abstract,
		keywordsJSON,
		result.PublishDate,
		pdfJSON,
		tagsJSON,
		result.Depth,
		result.CrawledAt,
	)
	if err != nil {
		return fmt.Errorf("insert result for task %s: %w", taskID, err)
	}
	return nil
}

// GetResults returns all results for a task, ordered by insertion.
func (s *TaskStore) GetResults(ctx context.Context, taskID string) ([]crawler.CrawlResult, error) {
	query := `
		SELECT url, title, author, abstract, keywords, publish_date, pdf_links, tags, depth, crawled_at
		FROM crawl_results
		WHERE task_id = $1
		ORDER BY id;
	`
	rows, err := s.pool.Query(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("query results for task %s: %w", taskID, err)
	}
	defer rows.Close()

	var results []crawler.CrawlResult
	for rows.Next() {
		var (
			r            crawler.CrawlResult
			keywordsJSON []byte
			pdfJSON      []byte
			tagsJSON     []byte
		)
		if err := rows.Scan(&r.URL, &r.Title, &r.Author, &r.Abstract, &keywordsJSON,
			&r.PublishDate, &pdfJSON, &tagsJSON, &r.Depth, &r.CrawledAt); err != nil {
			return nil, fmt.Errorf("scan result row: %w", err)
		}
		if err := json.Unmarshal(keywordsJSON, &r.Keywords); err != nil {
			return nil, fmt.Errorf("decode keywords: %w", err)
		}
		if err := json.Unmarshal(pdfJSON, &r.PDFLinks); err != nil {
			return nil, fmt.Errorf("decode pdf links: %w", err)
		}
		if err := json.Unmarshal(tagsJSON, &r.Tags); err != nil {
			return nil, fmt.Errorf("decode tags: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate result rows: %w", err)
	}
	return results, nil
}

// GetAllTasks returns every stored task record ordered by creation time.
func (s *TaskStore) GetAllTasks(ctx context.Context) ([]crawler.TaskRecord, error) {
	query := `
		SELECT id, name, status, config, visited, created_at, updated_at
		FROM crawl_tasks
		ORDER BY created_at;
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var records []crawler.TaskRecord
	for rows.Next() {
		var (
			rec         crawler.TaskRecord
			status      string
			configJSON  []byte
			visitedJSON []byte
		)
		if err := rows.Scan(&rec.ID, &rec.Name, &status, &configJSON, &visitedJSON,
			&rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan task row: %w", err)
		}
		rec.Status = crawler.TaskStatus(status)
		if err := json.Unmarshal(configJSON, &rec.Config); err != nil {
			return nil, fmt.Errorf("decode task config: %w", err)
		}
		if err := json.Unmarshal(visitedJSON, &rec.Visited); err != nil {
			return nil, fmt.Errorf("decode visited set: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate task rows: %w", err)
	}
	return records, nil
}
