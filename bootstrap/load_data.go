package bootstrap

import (
	"context"
	"fmt"

	"mariadbpaas/config"
	"mariadbpaas/models"
	"mariadbpaas/pkg/logger"
	"mariadbpaas/services/tenant"
)

// LoadData migrates the control-plane schema and verifies the tenant
// MariaDB server is reachable with the configured admin credential.
func LoadData() error {
	logger.Infof("Starting bootstrap...")

	if err := migrateSchema(); err != nil {
		return err
	}
	if err := checkTenantServer(); err != nil {
		return err
	}

	logger.Infof("Bootstrap completed successfully")
	return nil
}

func migrateSchema() error {
	err := config.DB.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Db{},
		&models.DbMember{},
		&models.DbUser{},
		&models.AuditLog{},
		&models.Backup{},
	)
	if err != nil {
		logger.Errorf("Failed to migrate control-plane schema: %v", err)
		return fmt.Errorf("failed to migrate control-plane schema: %v", err)
	}
	logger.Infof("Control-plane schema migrated")
	return nil
}

// checkTenantServer fails startup early when the tenant server or its admin
// credential is misconfigured, instead of on the first provisioning call.
func checkTenantServer() error {
	connector := tenant.NewConnector()

	ctx, cancel := context.WithTimeout(context.Background(), connector.ConnTimeout)
	defer cancel()

	conn, err := connector.OpenAdmin(ctx)
	if err != nil {
		logger.Errorf("Tenant MariaDB server check failed: %v", err)
		return fmt.Errorf("tenant MariaDB server check failed: %v", err)
	}
	defer conn.Close()

	logger.Infof("Tenant MariaDB server reachable at %s:%d", connector.Host, connector.Port)
	return nil
}
