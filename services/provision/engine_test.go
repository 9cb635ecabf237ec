package provision

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mariadbpaas/models"
	"mariadbpaas/pkg/apperrors"
	"mariadbpaas/pkg/testserver"
	"mariadbpaas/services/tenant"
	"mariadbpaas/utils"
)

// fakeConn records statements instead of executing them. failPrefix makes
// the matching statement fail so error paths can be driven.
type fakeConn struct {
	statements []string
	failPrefix string
}

func (f *fakeConn) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	if f.failPrefix != "" && strings.HasPrefix(query, f.failPrefix) {
		return nil, errors.New("exec failed")
	}
	f.statements = append(f.statements, query)
	return nil, nil
}

func (f *fakeConn) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return nil, errors.New("unexpected query: " + query)
}

// TestServerUsername tests the deterministic login derivation.
func TestServerUsername(t *testing.T) {
	assert.Equal(t, "shopdb_alice", ServerUsername("shopdb", "alice"))
}

// TestCreateDatabase_Statement tests the charset and collation of new schemas.
func TestCreateDatabase_Statement(t *testing.T) {
	conn := &fakeConn{}
	require.NoError(t, NewEngine().CreateDatabase(context.Background(), conn, "shopdb"))

	require.Len(t, conn.statements, 1)
	assert.Equal(t,
		"CREATE DATABASE IF NOT EXISTS `shopdb` CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci",
		conn.statements[0])
}

// TestDropDatabase_Statement tests the idempotent drop form.
func TestDropDatabase_Statement(t *testing.T) {
	conn := &fakeConn{}
	require.NoError(t, NewEngine().DropDatabase(context.Background(), conn, "shopdb"))

	require.Len(t, conn.statements, 1)
	assert.Equal(t, "DROP DATABASE IF EXISTS `shopdb`", conn.statements[0])
}

// TestCreateServerUser_Sequence tests create, grant, flush ordering and the
// generated password.
func TestCreateServerUser_Sequence(t *testing.T) {
	conn := &fakeConn{}
	password, err := NewEngine().CreateServerUser(context.Background(), conn, "shopdb", "shopdb_alice", models.RoleOwner)
	require.NoError(t, err)

	assert.Len(t, password, utils.PasswordLength)

	require.Len(t, conn.statements, 3)
	assert.Equal(t,
		"CREATE USER IF NOT EXISTS 'shopdb_alice'@'%' IDENTIFIED BY '"+password+"'",
		conn.statements[0])
	assert.Equal(t,
		"GRANT ALL PRIVILEGES ON `shopdb`.* TO 'shopdb_alice'@'%' WITH GRANT OPTION",
		conn.statements[1])
	assert.Equal(t, "FLUSH PRIVILEGES", conn.statements[2])
}

// TestApplyRole_Sequence tests revoke before grant before flush.
func TestApplyRole_Sequence(t *testing.T) {
	conn := &fakeConn{}
	err := NewEngine().ApplyRole(context.Background(), conn, "shopdb", "shopdb_bob", models.RoleReadOnly)
	require.NoError(t, err)

	require.Len(t, conn.statements, 3)
	assert.Equal(t, "REVOKE ALL PRIVILEGES ON `shopdb`.* FROM 'shopdb_bob'@'%'", conn.statements[0])
	assert.Equal(t, "GRANT SELECT ON `shopdb`.* TO 'shopdb_bob'@'%'", conn.statements[1])
	assert.Equal(t, "FLUSH PRIVILEGES", conn.statements[2])
}

// TestApplyRole_GrantFailureStopsSequence tests that a failed grant aborts
// before the flush, so callers never persist a role that was not applied.
func TestApplyRole_GrantFailureStopsSequence(t *testing.T) {
	conn := &fakeConn{failPrefix: "GRANT"}
	err := NewEngine().ApplyRole(context.Background(), conn, "shopdb", "shopdb_bob", models.RoleAdmin)
	require.Error(t, err)

	require.Len(t, conn.statements, 1)
	assert.Equal(t, "REVOKE ALL PRIVILEGES ON `shopdb`.* FROM 'shopdb_bob'@'%'", conn.statements[0])
}

// TestDropServerUser_Sequence tests drop followed by flush.
func TestDropServerUser_Sequence(t *testing.T) {
	conn := &fakeConn{}
	require.NoError(t, NewEngine().DropServerUser(context.Background(), conn, "shopdb_bob"))

	require.Len(t, conn.statements, 2)
	assert.Equal(t, "DROP USER IF EXISTS 'shopdb_bob'@'%'", conn.statements[0])
	assert.Equal(t, "FLUSH PRIVILEGES", conn.statements[1])
}

// TestCreateServerUser_RejectsUnsafeNames tests that a login name carrying
// quote characters or SQL fragments is refused before any statement is
// issued. An unvalidated name would be spliced into CREATE USER and GRANT
// text on the privileged connection.
func TestCreateServerUser_RejectsUnsafeNames(t *testing.T) {
	conn := &fakeConn{}
	e := NewEngine()

	_, err := e.CreateServerUser(context.Background(), conn,
		"shopdb", "shopdb_bob'@'%' WITH GRANT OPTION -- ", models.RoleReadOnly)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = e.CreateServerUser(context.Background(), conn, "shop`db", "shopdb_bob", models.RoleOwner)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	assert.Empty(t, conn.statements)
}

// TestApplyRole_RejectsUnsafeNames tests the same gate on the regrant path.
func TestApplyRole_RejectsUnsafeNames(t *testing.T) {
	conn := &fakeConn{}

	err := NewEngine().ApplyRole(context.Background(), conn,
		"shopdb", "shopdb_bob'@'%' WITH GRANT OPTION -- ", models.RoleAdmin)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	assert.Empty(t, conn.statements)
}

// TestDropServerUser_RejectsUnsafeNames tests the gate on login cleanup.
func TestDropServerUser_RejectsUnsafeNames(t *testing.T) {
	conn := &fakeConn{}

	err := NewEngine().DropServerUser(context.Background(), conn, "shopdb_bob'; DROP USER 'x")
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	assert.Empty(t, conn.statements)
}

// TestGrantedUsers_ReadsServerGrantTable tests grant listing against a live
// wire connection, including the empty result case.
func TestGrantedUsers_ReadsServerGrantTable(t *testing.T) {
	srv, err := testserver.Start(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })

	require.NoError(t, srv.SeedGrant("shopdb", "shopdb_alice"))
	require.NoError(t, srv.SeedGrant("shopdb", "shopdb_bob"))
	require.NoError(t, srv.SeedGrant("otherdb", "otherdb_carol"))

	conn, err := sql.Open("mysql", tenant.DSN("root", "", "localhost", srv.Port, ""))
	require.NoError(t, err)
	defer conn.Close()

	users, err := NewEngine().GrantedUsers(context.Background(), conn, "shopdb")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"shopdb_alice", "shopdb_bob"}, users)

	none, err := NewEngine().GrantedUsers(context.Background(), conn, "missingdb")
	require.NoError(t, err)
	assert.Empty(t, none)
}
