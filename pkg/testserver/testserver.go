// Package testserver runs a throwaway in-memory MySQL-protocol server for
// tests that need a real wire connection. It carries a minimal mysql.db
// grant table so grant-listing queries can be exercised without a live
// MariaDB instance.
package testserver

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	sqle "github.com/dolthub/go-mysql-server"
	"github.com/dolthub/go-mysql-server/memory"
	"github.com/dolthub/go-mysql-server/server"
	"github.com/dolthub/go-mysql-server/sql"
	"github.com/dolthub/go-mysql-server/sql/types"
)

// Server is a running in-memory MySQL-protocol server.
type Server struct {
	Port     int
	Engine   *sqle.Engine
	Provider *memory.DbProvider

	srv    *server.Server
	cancel context.CancelFunc
}

// FreePort finds an available TCP port.
func FreePort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}
	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// Start launches the server with the given tenant schemas pre-created plus
// a mysql schema holding an empty grant table. The server accepts any
// username with an empty password.
func Start(ctx context.Context, schemas ...string) (*Server, error) {
	port, err := FreePort()
	if err != nil {
		return nil, fmt.Errorf("failed to get free port: %w", err)
	}

	mysqlDB := memory.NewDatabase("mysql")
	addGrantTable(mysqlDB)

	dbs := []sql.Database{mysqlDB, memory.NewDatabase("information_schema")}
	for _, name := range schemas {
		dbs = append(dbs, memory.NewDatabase(name))
	}

	provider := memory.NewDBProvider(dbs...)
	engine := sqle.NewDefault(provider)

	config := server.Config{
		Protocol: "tcp",
		Address:  fmt.Sprintf("localhost:%d", port),
	}
	s, err := server.NewServer(config, engine, sql.NewContext, memory.NewSessionBuilder(provider), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create server: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)

	go func() {
		// Returns when the server is closed.
		_ = s.Start()
	}()
	go func() {
		<-serverCtx.Done()
		_ = s.Close()
	}()

	readyCtx, readyCancel := context.WithTimeout(ctx, 5*time.Second)
	defer readyCancel()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-readyCtx.Done():
			cancel()
			return nil, fmt.Errorf("server failed to start within timeout: %w", readyCtx.Err())
		case <-ticker.C:
			conn, err := net.DialTimeout("tcp", fmt.Sprintf("localhost:%d", port), 100*time.Millisecond)
			if err == nil {
				conn.Close()
				return &Server{
					Port:     port,
					Engine:   engine,
					Provider: provider,
					srv:      s,
					cancel:   cancel,
				}, nil
			}
		}
	}
}

// Close shuts the server down and releases its port.
func (s *Server) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	return s.srv.Close()
}

// Exec runs one statement directly through the embedded engine, bypassing
// the wire protocol. Used for seeding fixtures.
func (s *Server) Exec(query string) error {
	session := memory.NewSession(sql.NewBaseSession(), s.Provider)
	ctx := sql.NewContext(context.Background(), sql.WithSession(session))
	ctx.SetCurrentDatabase("mysql")

	_, iter, _, err := s.Engine.Query(ctx, query)
	if err != nil {
		return err
	}
	defer iter.Close(ctx)

	for {
		if _, err := iter.Next(ctx); err == io.EOF {
			break
		} else if err != nil {
			return err
		}
	}
	return nil
}

// SeedGrant records one (database, user) grant row so grant-listing queries
// return the user.
func (s *Server) SeedGrant(dbName, username string) error {
	return s.Exec(fmt.Sprintf(
		"INSERT INTO db (Host, Db, User) VALUES ('%%', '%s', '%s')", dbName, username))
}

// addGrantTable creates a reduced mysql.db table. Only the columns the
// grant-listing query reads are present.
func addGrantTable(mysqlDB *memory.Database) {
	dbSchema := sql.NewPrimaryKeySchema(sql.Schema{
		{Name: "Host", Type: types.Text, Source: "db", Nullable: false, PrimaryKey: true},
		{Name: "Db", Type: types.Text, Source: "db", Nullable: false, PrimaryKey: true},
		{Name: "User", Type: types.Text, Source: "db", Nullable: false, PrimaryKey: true},
	})
	dbTable := memory.NewTable(mysqlDB, "db", dbSchema, mysqlDB.GetForeignKeyCollection())
	mysqlDB.AddTable("db", dbTable)
}
