package usecases_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"greencoin.backend/internal/domain/entities"
	"greencoin.backend/internal/usecases"
)

type fixture struct {
	store    *memStore
	geo      *memGeo
	notifier *recordingNotifier
	coins    *usecases.CoinUsecase
	reports  *usecases.ReportUsecase

	citizen    *entities.User
	collectorA *entities.User
	collectorB *entities.User
}

func newFixture(t *testing.T, cfg usecases.ReportConfig) *fixture {
	t.Helper()
	f := &fixture{
		store:    newMemStore(),
		geo:      newMemGeo(),
		notifier: &recordingNotifier{},
	}
	uow := memUoW{f.store}
	users := memUsers{f.store}
	f.coins = usecases.NewCoinUsecase(uow, users, memLedger{f.store}, f.notifier)
	f.reports = usecases.NewReportUsecase(uow, memReports{f.store}, users, f.coins, f.geo, f.notifier, cfg)

	f.citizen = f.addUser(t, "citizen-uid", "Citizen", entities.UserRoleCitizen)
	f.collectorA = f.addUser(t, "collector-a", "Collector A", entities.UserRoleCollector)
	f.collectorB = f.addUser(t, "collector-b", "Collector B", entities.UserRoleCollector)
	return f
}

func (f *fixture) addUser(t *testing.T, uid, name string, role entities.UserRole) *entities.User {
	t.Helper()
	u := &entities.User{FirebaseUID: uid, Email: uid + "@greencoin.test", DisplayName: name, Role: role}
	require.NoError(t, memUsers{f.store}.Create(context.Background(), u))
	return u
}

func (f *fixture) balance(t *testing.T, u *entities.User) int64 {
	t.Helper()
	got, err := memUsers{f.store}.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	return got.CoinBalance
}

func (f *fixture) ledgerSum(t *testing.T, u *entities.User) int64 {
	t.Helper()
	sum, err := memLedger{f.store}.SumByUserID(context.Background(), u.ID)
	require.NoError(t, err)
	return sum
}

func reportAt(lat, lon string) *entities.CreateReportInput {
	la, lo := decimal.RequireFromString(lat), decimal.RequireFromString(lon)
	return &entities.CreateReportInput{
		Latitude:    &la,
		Longitude:   &lo,
		ImageURL:    "https://img.greencoin.test/pile.jpg",
		Description: "bags by the bus stop",
	}
}
