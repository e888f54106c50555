package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/cardkeeper-server/internal/model"
	"github.com/dtroode/cardkeeper-server/internal/repository/sqlite"
	"github.com/dtroode/cardkeeper-server/internal/testutil"
)

type staticUser struct {
	user model.User
	ok   bool
	err  error
}

func (s staticUser) CurrentUser(context.Context) (model.User, bool, error) {
	return s.user, s.ok, s.err
}

func signedIn(plan model.Plan) staticUser {
	return staticUser{
		user: model.User{ID: uuid.New(), Email: "collector@example.com", Username: "collector", Plan: plan},
		ok:   true,
	}
}

var anonymous = staticUser{}

func newLocalStore(t *testing.T) *sqlite.Connection {
	t.Helper()
	conn, err := sqlite.NewConnection(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

type collectionDeps struct {
	photos model.PhotoStorage
	prices model.PriceLookup
	images model.ImageLookup
}

func newTestCollection(t *testing.T, users UserResolver, deps collectionDeps) *Collection {
	t.Helper()
	return newCollectionWith(newLocalStore(t), users, deps)
}

func newCollectionOn(conn *sqlite.Connection, users UserResolver) *Collection {
	return newCollectionWith(conn, users, collectionDeps{})
}

func newCollectionWith(conn *sqlite.Connection, users UserResolver, deps collectionDeps) *Collection {
	return NewCollection(
		users,
		sqlite.NewItemRepository(conn),
		sqlite.NewSaleRepository(conn),
		sqlite.NewSettingsRepository(conn),
		deps.photos,
		deps.prices,
		deps.images,
		conn,
		0,
		testutil.MakeNoopLogger(),
	)
}

func draft(name string) model.ItemDraft {
	return model.ItemDraft{Name: name, Category: "booster", Language: "fr", PurchasedPrice: 4.5, EstimatedValue: 6}
}
