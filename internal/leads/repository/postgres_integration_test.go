//go:build integration

package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"leadportal_backend/internal/leads/domain"
	"leadportal_backend/migrations"
	"leadportal_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

type PostgresRepositorySuite struct {
	suite.Suite
	container *tcpostgres.PostgresContainer
	pool      *pgxpool.Pool
	repo      *Repository
	vendorID  uuid.UUID
	campaign  uuid.UUID
	emailQ    uuid.UUID
}

func TestPostgresRepositorySuite(t *testing.T) {
	suite.Run(t, new(PostgresRepositorySuite))
}

func (s *PostgresRepositorySuite) SetupSuite() {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("leadportal"),
		tcpostgres.WithUsername("leadportal"),
		tcpostgres.WithPassword("leadportal"),
		tcpostgres.BasicWaitStrategies(),
	)
	s.Require().NoError(err)
	s.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	pool, err := pgxpool.New(ctx, dsn)
	s.Require().NoError(err)
	s.pool = pool
	s.Require().NoError(db.RunMigrations(ctx, pool, migrations.FS))
	s.repo = New(pool)
}

func (s *PostgresRepositorySuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(context.Background())
	}
}

func (s *PostgresRepositorySuite) SetupTest() {
	ctx := context.Background()
	_, err := s.pool.Exec(ctx, `TRUNCATE lead_history, lead_identity_keys, lead_api_logs, leads, lead_counters, questions, campaigns, users CASCADE`)
	s.Require().NoError(err)

	s.vendorID = uuid.New()
	s.campaign = uuid.New()
	s.emailQ = uuid.New()
	_, err = s.pool.Exec(ctx, `INSERT INTO users (id, name, email, role) VALUES ($1, 'Vendor', 'v@example.com', 'vendor')`, s.vendorID)
	s.Require().NoError(err)
	_, err = s.pool.Exec(ctx, `INSERT INTO campaigns (id, title) VALUES ($1, 'Spring')`, s.campaign)
	s.Require().NoError(err)
	_, err = s.pool.Exec(ctx, `INSERT INTO questions (id, title, tag) VALUES ($1, 'Email', 'email')`, s.emailQ)
	s.Require().NoError(err)
}

func (s *PostgresRepositorySuite) params(email string) CreateLeadParams {
	responses := []domain.Response{{QuestionID: s.emailQ, Answer: email}}
	return CreateLeadParams{
		ID:           uuid.New(),
		SubmitterID:  s.vendorID,
		CampaignID:   s.campaign,
		Responses:    responses,
		IdentityKeys: []IdentityKey{{QuestionID: s.emailQ, Answer: email}},
		CreatedAt:    time.Now().UTC(),
	}
}

func (s *PostgresRepositorySuite) TestConcurrentCreatesAreDistinctAndGapFree() {
	ctx := context.Background()
	const n = 20

	var wg sync.WaitGroup
	results := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			lead, err := s.repo.Create(ctx, s.params(uuid.NewString()+"@example.com"))
			if err == nil {
				results <- lead.DisplayID
			}
		}(i)
	}
	wg.Wait()
	close(results)

	seen := make(map[int64]bool)
	for id := range results {
		n, ok := domain.ParseDisplayID(id)
		s.True(ok)
		s.False(seen[n])
		seen[n] = true
	}
	s.Len(seen, n)
	for i := int64(1); i <= n; i++ {
		s.True(seen[i], "missing lead-%d", i)
	}
}

func (s *PostgresRepositorySuite) TestIdentityKeyConflictAndRelease() {
	ctx := context.Background()

	lead, err := s.repo.Create(ctx, s.params("dup@example.com"))
	s.Require().NoError(err)

	_, err = s.repo.Create(ctx, s.params("dup@example.com"))
	s.ErrorIs(err, ErrDuplicateIdentity)

	has, err := s.repo.HasActiveAnswer(ctx, s.emailQ, "dup@example.com")
	s.Require().NoError(err)
	s.True(has)

	s.Require().NoError(s.repo.Deactivate(ctx, lead.DisplayID))
	has, err = s.repo.HasActiveAnswer(ctx, s.emailQ, "dup@example.com")
	s.Require().NoError(err)
	s.False(has)

	again, err := s.repo.Create(ctx, s.params("dup@example.com"))
	s.Require().NoError(err)
	s.Equal("lead-2", again.DisplayID)
}

func (s *PostgresRepositorySuite) TestTakenDisplayIDAdvancesCounter() {
	ctx := context.Background()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO leads (id, display_id, submitter_id, campaign_id) VALUES ($1, 'lead-1', $2, $3)
	`, uuid.New(), s.vendorID, s.campaign)
	s.Require().NoError(err)

	_, err = s.repo.Create(ctx, s.params("a@example.com"))
	s.ErrorIs(err, ErrDisplayIDTaken)

	lead, err := s.repo.Create(ctx, s.params("a@example.com"))
	s.Require().NoError(err)
	s.Equal("lead-2", lead.DisplayID)
}

func (s *PostgresRepositorySuite) TestUpdateAndAggregates() {
	ctx := context.Background()
	lead, err := s.repo.Create(ctx, s.params("agg@example.com"))
	s.Require().NoError(err)

	lead.Status = domain.StatusUnderVerification
	lead.UpdatedAt = time.Now().UTC()
	actor := domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin}
	entry := domain.NewHistoryEntry(lead.DisplayID, actor, domain.StatusNew, lead.Status, true, nil, lead.UpdatedAt)
	_, err = s.repo.Update(ctx, UpdateLeadParams{Lead: lead, History: entry})
	s.Require().NoError(err)

	history, err := s.repo.ListHistory(ctx, lead.DisplayID)
	s.Require().NoError(err)
	s.Require().Len(history, 1)
	s.Equal(domain.UpdateStatusChange, history[0].UpdateType)

	counts, err := s.repo.CountByStatusAndRole(ctx, domain.LeadQuery{OwnerIDs: []uuid.UUID{s.vendorID}})
	s.Require().NoError(err)
	s.Equal([]StatusRoleCount{{Status: domain.StatusUnderVerification, SubmitterRole: domain.RoleVendor, Count: 1}}, counts)

	hours, err := s.repo.CountByHour(ctx, domain.LeadQuery{}, time.UTC)
	s.Require().NoError(err)
	s.Require().Len(hours, 1)
	s.Equal(1, hours[0].Count)

	leads, total, err := s.repo.List(ctx, domain.LeadQuery{Status: &lead.Status}, Page{Limit: 10})
	s.Require().NoError(err)
	s.Equal(1, total)
	s.Equal(lead.DisplayID, leads[0].DisplayID)
}
