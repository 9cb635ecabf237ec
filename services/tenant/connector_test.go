package tenant

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mariadbpaas/models"
	"mariadbpaas/pkg/apperrors"
	"mariadbpaas/pkg/testserver"
)

func startServer(t *testing.T, schemas ...string) *testserver.Server {
	t.Helper()
	srv, err := testserver.Start(context.Background(), schemas...)
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })
	return srv
}

func testConnector(port int) *Connector {
	return &Connector{
		Host:        "localhost",
		Port:        port,
		AdminUser:   "root",
		AdminPass:   "",
		ConnTimeout: 5 * time.Second,
	}
}

// TestOpenAdmin_ReachableServer tests the schemaless admin connection.
func TestOpenAdmin_ReachableServer(t *testing.T) {
	srv := startServer(t)

	db, err := testConnector(srv.Port).OpenAdmin(context.Background())
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, db.PingContext(context.Background()))
}

// TestOpenAs_UsesDatabaseRecordCoordinates tests that tenant connections
// dial the host and port stored on the database record.
func TestOpenAs_UsesDatabaseRecordCoordinates(t *testing.T) {
	srv := startServer(t, "tenant_two")

	dbRec := &models.Db{Name: "tenant_two", Hostname: "localhost", Port: srv.Port}
	cred := &models.DbUser{Username: "tenant_two_alice", Password: ""}

	conn, err := testConnector(0).OpenAs(context.Background(), dbRec, cred)
	require.NoError(t, err)
	defer conn.Close()

	assert.NoError(t, conn.PingContext(context.Background()))
}

// TestOpen_UnreachableServer tests that a dead port surfaces as a
// connectivity error.
func TestOpen_UnreachableServer(t *testing.T) {
	port, err := testserver.FreePort()
	require.NoError(t, err)

	c := testConnector(port)
	c.ConnTimeout = time.Second

	_, err = c.OpenAdmin(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConnectivity)
}
