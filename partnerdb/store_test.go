package partnerdb

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/climatevia/pathway/supervisor"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "partners.db")
	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE partner_profiles (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			organization TEXT NOT NULL,
			role TEXT NOT NULL,
			career_page_url TEXT,
			contact TEXT,
			location TEXT,
			salary_range TEXT,
			sectors TEXT
		);
		INSERT INTO partner_profiles (organization, role, career_page_url, contact, location, salary_range, sectors) VALUES
		('Massachusetts Clean Energy Center', 'Climate Data Analyst', 'https://masscec.com/careers', 'Sarah Johnson', 'Boston, MA', '$70,000-$85,000', 'climate data analytics'),
		('Eversource Energy', 'Sustainability Program Manager', 'https://eversource.com/careers', 'Mike Chen', 'Westwood, MA', '$75,000-$90,000', 'sustainability energy'),
		('Acme Finance', 'Accountant', 'https://acme.example/careers', 'Pat Lee', 'Remote', '$60,000-$70,000', 'finance accounting');
	`)
	require.NoError(t, err)

	return &Store{db: db}
}

func TestFindMatches_RanksByKeywordOverlapDescending(t *testing.T) {
	store := setupTestStore(t)

	matches, err := store.FindMatches(context.Background(), "climate data analyst role")
	require.NoError(t, err)
	require.NotEmpty(t, matches)

	require.Equal(t, "Massachusetts Clean Energy Center", matches[0].Organization)
	for i := 1; i < len(matches); i++ {
		require.GreaterOrEqual(t, matches[i-1].MatchScore, matches[i].MatchScore)
	}
}

func TestFindMatches_NoQueryTermsReturnsWeakMatchesForAll(t *testing.T) {
	store := setupTestStore(t)

	matches, err := store.FindMatches(context.Background(), "to a")
	require.NoError(t, err)
	require.Len(t, matches, 3)
	for _, m := range matches {
		require.Equal(t, 0.5, m.MatchScore)
	}
}

func TestOverlapScore_CapsAtOne(t *testing.T) {
	score := overlapScore([]string{"climate", "data"}, "Climate Data Analyst", "climate data analytics")
	require.Equal(t, 1.0, score)
}

func TestOverlapScore_NoHitsFallsBackToHalf(t *testing.T) {
	score := overlapScore([]string{"banana"}, "Climate Data Analyst", "climate data analytics")
	require.Equal(t, 0.5, score)
}

func TestSortByScoreDescending(t *testing.T) {
	matches := []supervisor.PartnerMatch{{MatchScore: 0.3}, {MatchScore: 0.9}, {MatchScore: 0.6}}
	sortByScoreDescending(matches)
	require.Equal(t, []float64{0.9, 0.6, 0.3}, []float64{matches[0].MatchScore, matches[1].MatchScore, matches[2].MatchScore})
}
