package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mariadbpaas/models"
	"mariadbpaas/pkg/apperrors"
	"mariadbpaas/pkg/testserver"
	"mariadbpaas/services/tenant"
)

// tableFixture builds a table service over fakes with a nil connector, so
// every test using it must be rejected before a connection is attempted.
// Database 1 has READWRITE member alice and READONLY member bob.
func tableFixture() *tableService {
	return &tableService{
		access: &access{
			userRepo: &fakeUserRepo{users: []models.User{
				{ID: 1, Username: "alice"},
				{ID: 2, Username: "bob"},
			}},
			memberRepo: &fakeMemberRepo{members: []models.DbMember{
				{ID: 10, DbID: 1, UserID: 1, Role: string(models.RoleReadWrite)},
				{ID: 11, DbID: 1, UserID: 2, Role: string(models.RoleReadOnly)},
			}},
		},
		audit: &fakeAudit{},
	}
}

func TestDeleteRows_EmptyIDList(t *testing.T) {
	s := tableFixture()

	err := s.DeleteRows(context.Background(), "alice", 1, "items", models.RowRequest{})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestUpdateRows_PayloadValidation(t *testing.T) {
	s := tableFixture()
	ctx := context.Background()

	err := s.UpdateRows(ctx, "alice", 1, "items", models.RowRequest{
		Data: []map[string]interface{}{{"name": "x"}},
	})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest, "missing ids")

	err = s.UpdateRows(ctx, "alice", 1, "items", models.RowRequest{Ids: []int64{1}})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest, "missing data")

	err = s.UpdateRows(ctx, "alice", 1, "items", models.RowRequest{
		Ids:  []int64{1, 2},
		Data: []map[string]interface{}{{"name": "x"}},
	})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest, "length mismatch")
}

func TestInsertRows_PayloadValidation(t *testing.T) {
	s := tableFixture()
	ctx := context.Background()

	err := s.InsertRows(ctx, "alice", 1, "items", models.RowRequest{})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest, "empty data")

	err = s.InsertRows(ctx, "alice", 1, "items", models.RowRequest{
		Data: []map[string]interface{}{{"name; DROP TABLE items": "x"}},
	})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest, "unsafe column key")

	err = s.InsertRows(ctx, "alice", 1, "ite`ms", models.RowRequest{
		Data: []map[string]interface{}{{"name": "x"}},
	})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest, "unsafe table name")
}

func TestMutation_ReadOnlyMemberForbidden(t *testing.T) {
	s := tableFixture()

	err := s.InsertRows(context.Background(), "bob", 1, "items", models.RowRequest{
		Data: []map[string]interface{}{{"name": "x"}},
	})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestMutation_NonMemberUnauthorized(t *testing.T) {
	s := tableFixture()

	err := s.DeleteRows(context.Background(), "alice", 9, "items", models.RowRequest{Ids: []int64{1}})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

// liveTableService points the fixture at a running in-memory server with the
// given schema, connecting as the member's own credential.
func liveTableService(t *testing.T, schema string) (*tableService, *testserver.Server) {
	t.Helper()

	srv, err := testserver.Start(context.Background(), schema)
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })

	s := tableFixture()
	s.dbRepo = &fakeDbRepo{dbs: []models.Db{
		{ID: 1, Name: schema, Hostname: "localhost", Port: srv.Port},
	}}
	s.dbUserRepo = &fakeDbUserRepo{creds: []models.DbUser{
		{ID: 1, DbID: 1, UserID: 1, Username: "root", Password: ""},
	}}
	s.connector = &tenant.Connector{ConnTimeout: 5 * time.Second}
	return s, srv
}

// TestDeleteRows_NoMatchReportsNotFound tests that a delete matching zero
// rows is an error while an update matching zero rows is accepted silently.
// Deletes are destructive enough that a no-op should be visible.
func TestDeleteRows_NoMatchReportsNotFound(t *testing.T) {
	s, srv := liveTableService(t, "shopdb")
	require.NoError(t, srv.Exec("CREATE TABLE shopdb.items (id BIGINT PRIMARY KEY, name TEXT)"))
	require.NoError(t, srv.Exec("INSERT INTO shopdb.items VALUES (1, 'widget')"))

	err := s.DeleteRows(context.Background(), "alice", 1, "items", models.RowRequest{Ids: []int64{42}})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	err = s.DeleteRows(context.Background(), "alice", 1, "items", models.RowRequest{Ids: []int64{1}})
	assert.NoError(t, err)
}

func TestUpdateRows_NoMatchIsSilent(t *testing.T) {
	s, srv := liveTableService(t, "shopdb")
	require.NoError(t, srv.Exec("CREATE TABLE shopdb.items (id BIGINT PRIMARY KEY, name TEXT)"))

	err := s.UpdateRows(context.Background(), "alice", 1, "items", models.RowRequest{
		Ids:  []int64{42},
		Data: []map[string]interface{}{{"name": "renamed"}},
	})
	assert.NoError(t, err)
}
