package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mkoshkina/baristabot/pkg/db"
)

type mockPartnerStore struct {
	byCategory map[string]*db.User
	calls      []string
	err        error
}

func (m *mockPartnerStore) FindPartner(_ context.Context, _, _, category, _ string) (*db.User, error) {
	m.calls = append(m.calls, category)
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.byCategory[category]
	if !ok {
		return nil, db.ErrNotFound
	}
	return u, nil
}

func TestFindShiftPartner_ExactCategory(t *testing.T) {
	store := &mockPartnerStore{byCategory: map[string]*db.User{
		db.CategoryMorning: {ID: 1, Name: "Анна", StaffID: "222559"},
	}}

	partner, err := FindShiftPartner(context.Background(), store, zap.NewNop(), "2026-09-10", "ДЕ", db.CategoryMorning, "901953")
	require.NoError(t, err)
	assert.Equal(t, "222559", partner.StaffID)
	assert.Equal(t, []string{db.CategoryMorning}, store.calls)
}

func TestFindShiftPartner_FallsBackToHybrid(t *testing.T) {
	store := &mockPartnerStore{byCategory: map[string]*db.User{
		db.CategoryHybrid: {ID: 2, Name: "Борис", StaffID: "901953"},
	}}

	partner, err := FindShiftPartner(context.Background(), store, zap.NewNop(), "2026-09-10", "ДЕ", db.CategoryEvening, "222559")
	require.NoError(t, err)
	assert.Equal(t, "901953", partner.StaffID)
	assert.Equal(t, []string{db.CategoryEvening, db.CategoryHybrid}, store.calls)
}

func TestFindShiftPartner_HybridDoesNotFallBack(t *testing.T) {
	store := &mockPartnerStore{byCategory: map[string]*db.User{}}

	_, err := FindShiftPartner(context.Background(), store, zap.NewNop(), "2026-09-10", "ДЕ", db.CategoryHybrid, "222559")
	assert.ErrorIs(t, err, db.ErrNotFound)
	assert.Equal(t, []string{db.CategoryHybrid}, store.calls)
}

func TestFindShiftPartner_NobodyWorks(t *testing.T) {
	store := &mockPartnerStore{byCategory: map[string]*db.User{}}

	_, err := FindShiftPartner(context.Background(), store, zap.NewNop(), "2026-09-10", "ДЕ", db.CategoryMorning, "222559")
	assert.ErrorIs(t, err, db.ErrNotFound)
	assert.Equal(t, []string{db.CategoryMorning, db.CategoryHybrid}, store.calls)
}

func TestFindShiftPartner_StoreError(t *testing.T) {
	store := &mockPartnerStore{err: fmt.Errorf("connection reset")}

	_, err := FindShiftPartner(context.Background(), store, zap.NewNop(), "2026-09-10", "ДЕ", db.CategoryMorning, "222559")
	require.Error(t, err)
	assert.NotErrorIs(t, err, db.ErrNotFound)
}
