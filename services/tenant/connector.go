// Package tenant opens connections to the managed MariaDB server. Every
// operation gets a fresh connection that the caller must close; tenant
// databases come and go, so nothing is pooled across requests.
package tenant

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"mariadbpaas/config"
	"mariadbpaas/models"
	"mariadbpaas/pkg/apperrors"
)

// Connector dials the managed MariaDB server. AdminUser is the privileged
// control credential; tenant operations use per-user credentials instead.
type Connector struct {
	Host        string
	Port        int
	AdminUser   string
	AdminPass   string
	ConnTimeout time.Duration
}

// NewConnector builds a connector from the global application config.
func NewConnector() *Connector {
	return &Connector{
		Host:        config.Cfg.TenantHost,
		Port:        config.Cfg.TenantPort,
		AdminUser:   config.Cfg.TenantAdminUser,
		AdminPass:   config.Cfg.TenantAdminPass,
		ConnTimeout: config.Cfg.TenantConnTimeout,
	}
}

// DSN renders a go-sql-driver DSN. Schema may be empty for server-level
// statements such as CREATE DATABASE and user management.
func DSN(user, password, host string, port int, schema string) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=true",
		user, password, host, port, schema)
}

func (c *Connector) open(ctx context.Context, user, password, host string, port int, schema string) (*sql.DB, error) {
	db, err := sql.Open("mysql", DSN(user, password, host, port, schema))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid connection parameters for %s:%d: %v",
			apperrors.ErrConnectivity, host, port, err)
	}

	pingCtx := ctx
	if c.ConnTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, c.ConnTimeout)
		defer cancel()
	}
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: cannot reach %s:%d: %v", apperrors.ErrConnectivity, host, port, err)
	}
	return db, nil
}

// OpenAdmin connects with the control credential and no default schema.
// Used for provisioning, grants and user management.
func (c *Connector) OpenAdmin(ctx context.Context) (*sql.DB, error) {
	return c.open(ctx, c.AdminUser, c.AdminPass, c.Host, c.Port, "")
}

// OpenAs connects into a managed database with a tenant credential. The
// host and port come from the database record, not the connector.
func (c *Connector) OpenAs(ctx context.Context, db *models.Db, dbUser *models.DbUser) (*sql.DB, error) {
	return c.open(ctx, dbUser.Username, dbUser.Password, db.Hostname, db.Port, db.Name)
}
