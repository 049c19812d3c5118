// Package partnerdb is the Postgres-backed partner/opportunity collaborator
// the supervisor workflow's partner_matching node queries through
// supervisor.PartnerFinder. Connection pooling follows the teacher's
// config.DBPool convention (open once per DSN, bound pool sizes, a startup
// ping).
package partnerdb

import (
	"context"
	"database/sql"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/climatevia/pathway/config"
	"github.com/climatevia/pathway/errs"
	"github.com/climatevia/pathway/supervisor"
)

const createSchemaSQL = `
CREATE TABLE IF NOT EXISTS partner_profiles (
    id             SERIAL PRIMARY KEY,
    organization   TEXT NOT NULL,
    role           TEXT NOT NULL,
    career_page_url TEXT,
    contact        TEXT,
    location       TEXT,
    salary_range   TEXT,
    sectors        TEXT,
    created_at     TIMESTAMP NOT NULL DEFAULT now()
)`

// Store queries the partner_profiles table for candidate matches. It
// satisfies supervisor.PartnerFinder.
type Store struct {
	db *sql.DB
}

// Open opens the configured database, bounds its pool, pings it, and
// ensures the partner_profiles table exists.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, errs.Wrap(errs.Unavailable, "partnerdb: open", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, errs.Wrap(errs.Unavailable, "partnerdb: ping", err)
	}

	if _, err := db.ExecContext(ctx, createSchemaSQL); err != nil {
		db.Close()
		return nil, errs.Wrap(errs.Unavailable, "partnerdb: ensure schema", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// FindMatches returns candidate partner profiles ranked against query. The
// match score is a deterministic keyword/sector overlap in [0,1] rather than
// a learned ranking: the upstream system this is ported from simulated the
// same query with two hardcoded example matches, so there is no reference
// ranking model to reproduce.
func (s *Store) FindMatches(ctx context.Context, query string) ([]supervisor.PartnerMatch, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT organization, role, career_page_url, contact, location, salary_range, sectors
		   FROM partner_profiles`)
	if err != nil {
		return nil, errs.Wrap(errs.Unavailable, "partnerdb: query partner_profiles", err)
	}
	defer rows.Close()

	terms := queryTerms(query)
	var matches []supervisor.PartnerMatch
	for rows.Next() {
		var (
			organization, role, careerPageURL, contact, location, salaryRange, sectors sql.NullString
		)
		if err := rows.Scan(&organization, &role, &careerPageURL, &contact, &location, &salaryRange, &sectors); err != nil {
			return nil, errs.Wrap(errs.Unavailable, "partnerdb: scan partner_profiles row", err)
		}
		score := overlapScore(terms, role.String, sectors.String)
		if score <= 0 {
			continue
		}
		matches = append(matches, supervisor.PartnerMatch{
			Organization:  organization.String,
			Role:          role.String,
			MatchScore:    score,
			CareerPageURL: careerPageURL.String,
			Contact:       contact.String,
			Location:      location.String,
			SalaryRange:   salaryRange.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.Unavailable, "partnerdb: iterate partner_profiles", err)
	}

	sortByScoreDescending(matches)
	return matches, nil
}

func queryTerms(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) >= 3 {
			terms = append(terms, f)
		}
	}
	return terms
}

// overlapScore counts how many query terms appear in role or sectors and
// normalizes by the term count, with a floor so any stored profile is at
// least a weak candidate rather than invisible.
func overlapScore(terms []string, role, sectors string) float64 {
	if len(terms) == 0 {
		return 0.5
	}
	haystack := strings.ToLower(role + " " + sectors)
	hits := 0
	for _, t := range terms {
		if strings.Contains(haystack, t) {
			hits++
		}
	}
	if hits == 0 {
		return 0.5
	}
	score := float64(hits) / float64(len(terms))
	if score > 1 {
		score = 1
	}
	return score
}

func sortByScoreDescending(matches []supervisor.PartnerMatch) {
	for i := 1; i < len(matches); i++ {
		for j := i; j > 0 && matches[j].MatchScore > matches[j-1].MatchScore; j-- {
			matches[j], matches[j-1] = matches[j-1], matches[j]
		}
	}
}
