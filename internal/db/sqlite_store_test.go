package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/soaringjerry/synap-reliability/internal/services"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	sqlDB, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, RunMigrations(sqlDB, "", zap.NewNop()))
	store, err := NewSQLiteStore(sqlDB, zap.NewNop())
	require.NoError(t, err)
	return store
}

var testTime = time.Date(2025, 9, 18, 10, 0, 0, 0, time.UTC)

func seedStore(t *testing.T, s *SQLiteStore) {
	t.Helper()
	require.NoError(t, s.InsertScale(&services.Scale{
		ID: "S1", TenantID: "T1", Points: 5, CreatedAt: testTime,
		NameI18n: map[string]string{"es": "Escala", "en": "Scale"},
	}))
	require.NoError(t, s.InsertItem(&services.Item{ID: "I2", ScaleID: "S1", Position: 1, Type: services.ItemLikert, ReverseScored: true}))
	require.NoError(t, s.InsertItem(&services.Item{ID: "I1", ScaleID: "S1", Position: 0, StemI18n: map[string]string{"es": "Hola"}}))
	require.NoError(t, s.InsertItem(&services.Item{ID: "G", ScaleID: "S1", Position: 2, Type: services.ItemNumeric}))
}

func TestRunMigrationsIsRepeatable(t *testing.T) {
	sqlDB, err := Open(":memory:")
	require.NoError(t, err)
	defer sqlDB.Close()
	require.NoError(t, RunMigrations(sqlDB, "", nil))
	require.NoError(t, RunMigrations(sqlDB, t.TempDir()+"/absent", nil))
}

func TestScalesAndItems(t *testing.T) {
	s := newTestStore(t)
	seedStore(t, s)

	sc, err := s.GetScale("S1")
	require.NoError(t, err)
	require.NotNil(t, sc)
	assert.Equal(t, "T1", sc.TenantID)
	assert.Equal(t, 5, sc.Points)
	assert.Equal(t, "Scale", sc.NameI18n["en"])
	assert.True(t, sc.CreatedAt.Equal(testTime))

	missing, err := s.GetScale("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	items, err := s.ListItems("S1")
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "I1", items[0].ID)
	assert.Equal(t, services.ItemLikert, items[0].Type)
	assert.Equal(t, "Hola", items[0].StemI18n["es"])
	assert.True(t, items[1].ReverseScored)
	assert.Equal(t, services.ItemNumeric, items[2].Type)

	assert.Error(t, s.InsertScale(&services.Scale{ID: "S1", TenantID: "T1", Points: 5, CreatedAt: testTime}))
}

func TestDimensionsReplace(t *testing.T) {
	s := newTestStore(t)
	seedStore(t, s)

	require.NoError(t, s.ReplaceDimensions("S1", []services.Dimension{
		{Name: "Z", ItemIDs: []string{"I1", "I2"}},
		{Name: "A", ItemIDs: []string{"I2"}},
	}))
	dims, err := s.ListDimensions("S1")
	require.NoError(t, err)
	assert.Equal(t, []services.Dimension{
		{Name: "Z", ItemIDs: []string{"I1", "I2"}},
		{Name: "A", ItemIDs: []string{"I2"}},
	}, dims)

	require.NoError(t, s.ReplaceDimensions("S1", []services.Dimension{{Name: "Only", ItemIDs: []string{"I1"}}}))
	dims, err = s.ListDimensions("S1")
	require.NoError(t, err)
	require.Len(t, dims, 1)
	assert.Equal(t, "Only", dims[0].Name)
}

func TestResponsesAndRatings(t *testing.T) {
	s := newTestStore(t)
	seedStore(t, s)

	require.NoError(t, s.AddParticipant(&services.Participant{ID: "P1", ScaleID: "S1", Email: "p@x.io", CreatedAt: testTime}))
	require.NoError(t, s.AddResponses([]*services.Response{
		{ParticipantID: "P1", ItemID: "I1", RawValue: 4, ScoreValue: 4, SubmittedAt: testTime},
		{ParticipantID: "P1", ItemID: "I2", RawValue: 4, ScoreValue: 2, SubmittedAt: testTime},
	}))
	require.NoError(t, s.AddResponses([]*services.Response{
		{ParticipantID: "P1", ItemID: "I1", RawValue: 5, ScoreValue: 5, SubmittedAt: testTime},
	}))
	rs, err := s.ListResponsesByScale("S1")
	require.NoError(t, err)
	require.Len(t, rs, 2)
	assert.Equal(t, 5, rs[0].ScoreValue)
	assert.Equal(t, 2, rs[1].ScoreValue)

	assert.Error(t, s.AddResponses([]*services.Response{{ParticipantID: "P1", ItemID: "ghost", SubmittedAt: testTime}}))

	require.NoError(t, s.UpsertRatings([]*services.Rating{
		{ScaleID: "S1", ItemID: "I1", Judge: "j1", Score: 4, SubmittedAt: testTime},
		{ScaleID: "S1", ItemID: "I2", Judge: "j1", Score: 3, SubmittedAt: testTime},
	}))
	require.NoError(t, s.UpsertRatings([]*services.Rating{
		{ScaleID: "S1", ItemID: "I1", Judge: "j1", Score: 1, SubmittedAt: testTime},
	}))
	ratings, err := s.ListRatings("S1")
	require.NoError(t, err)
	require.Len(t, ratings, 2)
	assert.Equal(t, 1, ratings[0].Score)
}

func TestUsersAndTenants(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.AddTenant(&services.Tenant{ID: "T1", Name: "lab"}))
	require.NoError(t, s.AddUser(&services.User{ID: "U1", Email: "a@b.io", PassHash: []byte("hash"), TenantID: "T1", CreatedAt: testTime}))

	u, err := s.FindUserByEmail("a@b.io")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "T1", u.TenantID)
	assert.Equal(t, []byte("hash"), u.PassHash)

	u, err = s.FindUserByEmail("x@b.io")
	require.NoError(t, err)
	assert.Nil(t, u)

	assert.Error(t, s.AddUser(&services.User{ID: "U2", Email: "a@b.io", PassHash: []byte("h"), TenantID: "T1", CreatedAt: testTime}))
}
