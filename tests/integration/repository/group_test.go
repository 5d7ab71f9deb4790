package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arisanku/savings-engine/internal/config"
	"github.com/arisanku/savings-engine/internal/domain"
	"github.com/arisanku/savings-engine/internal/repository"
)

var testDB *sqlx.DB

func TestMain(m *testing.M) {
	if os.Getenv("INTEGRATION_TESTS") == "" {
		os.Exit(0)
	}

	setup()
	code := m.Run()
	teardown()
	os.Exit(code)
}

func setup() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Connect to postgres database to create test database
	cfg.Database.Name = "postgres"
	adminDB, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to postgres database: %v", err))
	}
	defer adminDB.Close()

	testDBName := "savings_engine_test"
	adminDB.Exec(fmt.Sprintf("DROP DATABASE IF EXISTS %s", testDBName))
	if _, err := adminDB.Exec(fmt.Sprintf("CREATE DATABASE %s", testDBName)); err != nil {
		panic(fmt.Sprintf("Failed to create test database: %v", err))
	}

	cfg.Database.Name = testDBName
	testDB, err = sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to test database: %v", err))
	}

	if err := executeInitSQL(testDB); err != nil {
		panic(fmt.Sprintf("Failed to initialize database schema: %v", err))
	}
}

func teardown() {
	if testDB != nil {
		testDB.Close()
	}

	cfg, _ := config.Load()
	cfg.Database.Name = "postgres"

	adminDB, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return
	}
	defer adminDB.Close()

	adminDB.Exec("DROP DATABASE IF EXISTS savings_engine_test")
}

func executeInitSQL(db *sqlx.DB) error {
	sqlBytes, err := os.ReadFile("../../../scripts/init.sql")
	if err != nil {
		return fmt.Errorf("failed to read init.sql: %w", err)
	}

	if _, err := db.Exec(string(sqlBytes)); err != nil {
		return fmt.Errorf("failed to execute init.sql: %w", err)
	}

	return nil
}

func setupTestDB(t *testing.T) *sqlx.DB {
	cleanupTestData(testDB)
	return testDB
}

func cleanupTestData(db *sqlx.DB) {
	db.Exec("DELETE FROM contributions")
	db.Exec("DELETE FROM campaign_participants")
	db.Exec("DELETE FROM group_campaigns")
	db.Exec("DELETE FROM group_memberships")
	db.Exec("DELETE FROM groups")
	db.Exec("DELETE FROM users")
}

func seedUser(t *testing.T, db *sqlx.DB, balance int64) uuid.UUID {
	id := uuid.New()
	_, err := db.Exec(
		`INSERT INTO users (id, email, is_verified, wallet_balance) VALUES ($1, $2, TRUE, $3)`,
		id, id.String()+"@example.com", balance)
	require.NoError(t, err)
	return id
}

func seedGroup(t *testing.T, db *sqlx.DB, adminID uuid.UUID) uuid.UUID {
	id := uuid.New()
	_, err := db.Exec(
		`INSERT INTO groups (id, name, admin_id) VALUES ($1, $2, $3)`,
		id, "group-"+id.String()[:8], adminID)
	require.NoError(t, err)
	return id
}

func seedMembership(t *testing.T, db *sqlx.DB, groupID, userID uuid.UUID, status string, joinedAt time.Time) {
	_, err := db.Exec(
		`INSERT INTO group_memberships (group_id, user_id, status, joined_at) VALUES ($1, $2, $3, $4)`,
		groupID, userID, status, joinedAt)
	require.NoError(t, err)
}

func TestGroupRepository_ListActiveMemberIDs(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewGroupRepository(db)
	ctx := context.Background()

	admin := seedUser(t, db, 0)
	groupID := seedGroup(t, db, admin)

	first := seedUser(t, db, 0)
	second := seedUser(t, db, 0)
	pending := seedUser(t, db, 0)

	base := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	seedMembership(t, db, groupID, second, "active", base.AddDate(0, 0, 2))
	seedMembership(t, db, groupID, first, "active", base)
	seedMembership(t, db, groupID, pending, "pending", base.AddDate(0, 0, 1))

	ids, err := repo.ListActiveMemberIDs(ctx, groupID)

	require.NoError(t, err)
	// pending members are excluded; active members come back in join order
	assert.Equal(t, []uuid.UUID{first, second}, ids)
}

func TestGroupRepository_IsActiveMember(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewGroupRepository(db)
	ctx := context.Background()

	admin := seedUser(t, db, 0)
	groupID := seedGroup(t, db, admin)

	active := seedUser(t, db, 0)
	pending := seedUser(t, db, 0)
	seedMembership(t, db, groupID, active, "active", time.Now().UTC())
	seedMembership(t, db, groupID, pending, "pending", time.Now().UTC())

	isMember, err := repo.IsActiveMember(ctx, groupID, active)
	require.NoError(t, err)
	assert.True(t, isMember)

	isMember, err = repo.IsActiveMember(ctx, groupID, pending)
	require.NoError(t, err)
	assert.False(t, isMember)

	isMember, err = repo.IsActiveMember(ctx, groupID, uuid.New())
	require.NoError(t, err)
	assert.False(t, isMember)
}

func TestCampaignRepository_CreateWithParticipants(t *testing.T) {
	db := setupTestDB(t)
	groups := repository.NewGroupRepository(db)
	campaigns := repository.NewCampaignRepository(db)
	ctx := context.Background()

	admin := seedUser(t, db, 0)
	member := seedUser(t, db, 0)
	groupID := seedGroup(t, db, admin)
	seedMembership(t, db, groupID, admin, "active", time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC))
	seedMembership(t, db, groupID, member, "active", time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC))

	participants, err := groups.ListActiveMemberIDs(ctx, groupID)
	require.NoError(t, err)
	require.Len(t, participants, 2)

	now := time.Now().UTC().Truncate(time.Microsecond)
	campaign := &domain.GroupCampaign{
		ID:             uuid.New(),
		GroupID:        groupID,
		Name:           "arisan-q1",
		StartDate:      time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC),
		SavingsDay:     15,
		DurationMonths: 3,
		AmountPerMonth: decimal.NewFromInt(100),
		PenaltyAmount:  decimal.NewFromInt(30),
		Status:         domain.CampaignStatusScheduled,
		CreatedBy:      admin,
		TotalSaved:     decimal.Zero,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	require.NoError(t, campaigns.Create(ctx, campaign))
	require.NoError(t, campaigns.AddParticipants(ctx, campaign.ID, participants))

	got, err := campaigns.GetByID(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, campaign.Name, got.Name)
	assert.ElementsMatch(t, participants, got.Participants)
}
