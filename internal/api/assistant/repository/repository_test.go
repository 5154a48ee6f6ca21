package assistantRepository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"ShortletAssistant/database/postgres"
	"ShortletAssistant/internal/entity"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := postgres.Open(postgres.DriverSQLite, fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestRepository(t *testing.T) (Repository, *sqlx.DB) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	db := newTestDB(t)
	return New(db, logger), db
}

func docs(ids ...string) []entity.KnowledgeDocument {
	out := make([]entity.KnowledgeDocument, len(ids))
	for i, id := range ids {
		out[i] = entity.KnowledgeDocument{ID: id, Content: "content " + id, Category: entity.CategoryPolicies}
	}
	return out
}

func replace(t *testing.T, repo Repository, propertyID string, in []entity.KnowledgeDocument) {
	t.Helper()
	client, err := repo.NewClient(true)
	if err != nil {
		t.Fatal(err)
	}
	defer client.Rollback()

	if err := client.Knowledge.ReplaceForProperty(context.Background(), propertyID, in); err != nil {
		t.Fatalf("ReplaceForProperty: %v", err)
	}
	if err := client.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
}

func TestReplaceForPropertyKeepsOrderAndReplaces(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	replace(t, repo, "prop-1", docs("c", "a", "b"))
	replace(t, repo, "prop-2", docs("z"))
	replace(t, repo, "prop-1", docs("b", "d"))

	client, err := repo.NewClient(false)
	if err != nil {
		t.Fatal(err)
	}

	got, err := client.Knowledge.GetByProperty(ctx, "prop-1")
	if err != nil {
		t.Fatalf("GetByProperty: %v", err)
	}
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "d" {
		t.Fatalf("unexpected documents: %+v", got)
	}
	if got[0].PropertyID != "prop-1" || got[0].Category != entity.CategoryPolicies {
		t.Fatalf("columns not mapped: %+v", got[0])
	}

	all, err := client.Knowledge.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 rows in total, got %d", len(all))
	}
}

func TestRollbackLeavesRowsUntouched(t *testing.T) {
	repo, _ := newTestRepository(t)
	replace(t, repo, "prop-1", docs("a"))

	client, err := repo.NewClient(true)
	if err != nil {
		t.Fatal(err)
	}
	if err := client.Knowledge.ReplaceForProperty(context.Background(), "prop-1", docs("x", "y")); err != nil {
		t.Fatal(err)
	}
	if err := client.Rollback(); err != nil {
		t.Fatal(err)
	}

	reader, _ := repo.NewClient(false)
	got, err := reader.Knowledge.GetByProperty(context.Background(), "prop-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("rollback should keep the old rows, got %+v", got)
	}
}

func TestGetPropertyByID(t *testing.T) {
	repo, db := newTestRepository(t)
	db.MustExec(`CREATE TABLE properties (
		id TEXT PRIMARY KEY, title TEXT, address TEXT, city TEXT, state TEXT, category TEXT,
		price_per_night REAL, bedrooms INTEGER, bathrooms INTEGER, max_guests INTEGER, rating REAL,
		amenities TEXT, check_in_time TEXT, check_out_time TEXT, description TEXT,
		cancellation_policy TEXT, house_rules TEXT, host_phone TEXT)`)
	db.MustExec(`INSERT INTO properties (id, title, city, price_per_night, amenities, host_phone)
		VALUES ('prop-1', 'Lekki Waterfront Loft', 'Lagos', 45000, '{WiFi,"Pool", 24/7 Power}', '+2348000000000')`)

	client, _ := repo.NewClient(false)
	property, err := client.Properties.GetPropertyByID(context.Background(), "prop-1")
	if err != nil {
		t.Fatalf("GetPropertyByID: %v", err)
	}
	if property.Title != "Lekki Waterfront Loft" || property.PricePerNight != 45000 || property.HostPhone != "+2348000000000" {
		t.Fatalf("unexpected property: %+v", property)
	}
	if strings.Join(property.Amenities, "|") != "WiFi|Pool|24/7 Power" {
		t.Fatalf("unexpected amenities: %v", property.Amenities)
	}
	if property.CheckInTime != "" {
		t.Fatalf("NULL columns should map to empty strings, got %q", property.CheckInTime)
	}

	if _, err := client.Properties.GetPropertyByID(context.Background(), "missing"); !errors.Is(err, ErrPropertyNotFound) {
		t.Fatalf("expected ErrPropertyNotFound, got %v", err)
	}
}

func TestGetReport(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()
	client, _ := repo.NewClient(false)

	now := time.Now().UTC()
	records := []entity.AssistantQuery{
		{ID: "q1", Channel: entity.ChannelChat, Intent: "pricing_question", DocumentsFound: 1, Confidence: 0.9, Success: true, CreatedAt: now},
		{ID: "q2", Channel: entity.ChannelChat, Intent: "pricing_question", DocumentsFound: 1, Confidence: 0.5, CreatedAt: now},
		{ID: "q3", Channel: entity.ChannelVoice, Intent: "utilities", Confidence: 0.3, Escalate: true, CreatedAt: now},
		{ID: "q4", Channel: entity.ChannelVoice, Intent: "utilities", Confidence: 0.3, Escalate: true, CreatedAt: now.Add(-48 * time.Hour)},
	}
	for _, record := range records {
		if err := client.Queries.CreateQuery(ctx, record); err != nil {
			t.Fatalf("CreateQuery: %v", err)
		}
	}

	report, err := client.Queries.GetReport(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	if report.Total != 3 || report.Escalated != 1 || report.Fallbacks != 1 {
		t.Fatalf("unexpected totals: %+v", report)
	}
	if len(report.ByIntent) != 2 || report.ByIntent[0].Intent != "pricing_question" || report.ByIntent[0].Total != 2 {
		t.Fatalf("unexpected intent breakdown: %+v", report.ByIntent)
	}
	if report.EscalationRate < 0.33 || report.EscalationRate > 0.34 {
		t.Fatalf("unexpected escalation rate: %v", report.EscalationRate)
	}
}
