// Package provision creates and destroys physical tenant databases and
// their server logins. All statements here run over the privileged control
// connection; nothing in this package touches the control-plane store.
package provision

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"mariadbpaas/models"
	"mariadbpaas/pkg/apperrors"
	"mariadbpaas/pkg/logger"
	"mariadbpaas/utils"
)

// Execer is the subset of *sql.DB the engine needs.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// Engine issues provisioning DDL over an admin connection supplied per call.
// It is stateless; callers own the connection lifecycle.
type Engine struct{}

// NewEngine creates a provisioning engine.
func NewEngine() *Engine {
	return &Engine{}
}

// ServerUsername derives the server login for one member of one database.
// The derivation is deterministic so the login can be re-derived for cleanup.
func ServerUsername(dbName, platformUsername string) string {
	return dbName + "_" + platformUsername
}

// checkNames gates every name interpolated into statements on the admin
// connection. Valid identifiers cannot carry quotes or backticks, so the
// statement shape cannot be rewritten by a crafted name.
func checkNames(dbName, username string) error {
	if err := utils.CheckIdentifier("database", dbName); err != nil {
		return err
	}
	return utils.CheckIdentifier("server login", username)
}

func (e *Engine) exec(ctx context.Context, conn Execer, query string) error {
	if _, err := conn.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("%w: %s: %v", apperrors.ErrConnectivity, firstWords(query, 3), err)
	}
	return nil
}

func firstWords(s string, n int) string {
	fields := strings.Fields(s)
	if len(fields) > n {
		fields = fields[:n]
	}
	return strings.Join(fields, " ")
}

// CreateDatabase creates the physical schema with the fleet-wide charset
// and collation.
func (e *Engine) CreateDatabase(ctx context.Context, conn Execer, dbName string) error {
	logger.Infof("provisioning database %s", dbName)
	return e.exec(ctx, conn, fmt.Sprintf(
		"CREATE DATABASE IF NOT EXISTS `%s` CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci", dbName))
}

// DropDatabase drops the physical schema.
func (e *Engine) DropDatabase(ctx context.Context, conn Execer, dbName string) error {
	logger.Infof("dropping database %s", dbName)
	return e.exec(ctx, conn, fmt.Sprintf("DROP DATABASE IF EXISTS `%s`", dbName))
}

// CreateServerUser creates a server login, applies the role's canonical
// grant scoped to dbName, and flushes privileges. Returns the generated
// password. The password comes from a cryptographically secure source and
// is never derived from the username.
func (e *Engine) CreateServerUser(ctx context.Context, conn Execer, dbName, username string, role models.DbRole) (string, error) {
	if err := checkNames(dbName, username); err != nil {
		return "", err
	}

	password, err := utils.GeneratePassword()
	if err != nil {
		return "", err
	}

	if err := e.exec(ctx, conn, fmt.Sprintf(
		"CREATE USER IF NOT EXISTS '%s'@'%%' IDENTIFIED BY '%s'", username, password)); err != nil {
		return "", err
	}
	if err := e.exec(ctx, conn, role.GrantStatement(dbName, username)); err != nil {
		return "", err
	}
	if err := e.FlushPrivileges(ctx, conn); err != nil {
		return "", err
	}

	logger.Infof("created server user %s on %s with role %s", username, dbName, role)
	return password, nil
}

// ApplyRole revokes everything the login holds on dbName and issues the new
// role's canonical grant. The caller persists the control-plane role only
// after this succeeds.
func (e *Engine) ApplyRole(ctx context.Context, conn Execer, dbName, username string, role models.DbRole) error {
	if err := e.RevokeAll(ctx, conn, dbName, username); err != nil {
		return err
	}
	if err := e.exec(ctx, conn, role.GrantStatement(dbName, username)); err != nil {
		return err
	}
	return e.FlushPrivileges(ctx, conn)
}

// RevokeAll removes every privilege the login holds on dbName.
func (e *Engine) RevokeAll(ctx context.Context, conn Execer, dbName, username string) error {
	if err := checkNames(dbName, username); err != nil {
		return err
	}
	return e.exec(ctx, conn, fmt.Sprintf(
		"REVOKE ALL PRIVILEGES ON `%s`.* FROM '%s'@'%%'", dbName, username))
}

// DropServerUser removes a server login entirely and flushes privileges.
func (e *Engine) DropServerUser(ctx context.Context, conn Execer, username string) error {
	if err := utils.CheckIdentifier("server login", username); err != nil {
		return err
	}
	if err := e.exec(ctx, conn, fmt.Sprintf("DROP USER IF EXISTS '%s'@'%%'", username)); err != nil {
		return err
	}
	return e.FlushPrivileges(ctx, conn)
}

// FlushPrivileges reloads the server's grant tables.
func (e *Engine) FlushPrivileges(ctx context.Context, conn Execer) error {
	return e.exec(ctx, conn, "FLUSH PRIVILEGES")
}

// GrantedUsers lists every distinct server login that holds a grant on
// dbName, read from the server's own grant table. Zero rows is a valid
// result, not an error.
func (e *Engine) GrantedUsers(ctx context.Context, conn Execer, dbName string) ([]string, error) {
	query := fmt.Sprintf("SELECT DISTINCT User FROM mysql.db WHERE Db = '%s'",
		strings.ReplaceAll(dbName, "'", "''"))
	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: listing grants for %s: %v", apperrors.ErrConnectivity, dbName, err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var user string
		if err := rows.Scan(&user); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// DropAllUsers drops every server login granted on dbName and flushes
// privileges once at the end. Used when a database is destroyed.
func (e *Engine) DropAllUsers(ctx context.Context, conn Execer, dbName string) error {
	users, err := e.GrantedUsers(ctx, conn, dbName)
	if err != nil {
		return err
	}
	for _, user := range users {
		if err := e.exec(ctx, conn, fmt.Sprintf("DROP USER IF EXISTS '%s'@'%%'", user)); err != nil {
			return err
		}
	}
	if len(users) > 0 {
		logger.Infof("dropped %d server users for database %s", len(users), dbName)
	}
	return e.FlushPrivileges(ctx, conn)
}
