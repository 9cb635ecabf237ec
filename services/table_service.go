package services

import (
	"context"
	"database/sql"
	"fmt"

	"mariadbpaas/models"
	"mariadbpaas/pkg/apperrors"
	"mariadbpaas/pkg/logger"
	"mariadbpaas/repository"
	"mariadbpaas/services/sqlgen"
	"mariadbpaas/services/tenant"
	"mariadbpaas/utils"
)

// TableService executes schema and row operations inside tenant databases.
// Every call follows one pipeline: resolve the caller, enforce the minimum
// role (READONLY for reads, READWRITE for mutation), look up the caller's
// own credential, open a fresh tenant connection, run the generated SQL.
type TableService interface {
	CreateTable(ctx context.Context, username string, dbID uint, req models.TableCreateRequest) error
	AlterTable(ctx context.Context, username string, dbID uint, tableName string, req models.TableAlterRequest) error
	RenameTable(ctx context.Context, username string, dbID uint, tableName, newName string) error
	DropTable(ctx context.Context, username string, dbID uint, tableName string) error

	GetTables(ctx context.Context, username string, dbID uint) ([]models.TableInfo, error)
	GetTableStructure(ctx context.Context, username string, dbID uint, tableName string) (*models.TableStructure, error)
	GetTableData(ctx context.Context, username string, dbID uint, tableName string, page, pageSize int) (*models.TableData, error)

	InsertRows(ctx context.Context, username string, dbID uint, tableName string, req models.RowRequest) error
	UpdateRows(ctx context.Context, username string, dbID uint, tableName string, req models.RowRequest) error
	DeleteRows(ctx context.Context, username string, dbID uint, tableName string, req models.RowRequest) error
}

type tableService struct {
	access     *access
	dbRepo     repository.DbRepository
	dbUserRepo repository.DbUserRepository
	connector  *tenant.Connector
	audit      AuditLogService
}

// NewTableService creates a new table service instance.
func NewTableService(audit AuditLogService) TableService {
	return &tableService{
		access:     newAccess(),
		dbRepo:     repository.NewDbRepository(),
		dbUserRepo: repository.NewDbUserRepository(),
		connector:  tenant.NewConnector(),
		audit:      audit,
	}
}

// open runs the shared head of the pipeline and returns the caller, the
// database record and a live tenant connection owned by the caller.
func (s *tableService) open(ctx context.Context, username string, dbID uint, min models.DbRole) (*models.User, *models.Db, *sql.DB, error) {
	user, err := s.access.currentUser(nil, username)
	if err != nil {
		return nil, nil, nil, err
	}
	if _, err := s.access.requireRole(nil, dbID, user.ID, min); err != nil {
		return nil, nil, nil, err
	}

	db, err := s.dbRepo.GetByID(nil, dbID)
	if err != nil {
		return nil, nil, nil, orNotFound(err, fmt.Sprintf("database %d", dbID))
	}
	cred, err := s.dbUserRepo.GetByDbAndUser(nil, dbID, user.ID)
	if err != nil {
		return nil, nil, nil, orNotFound(err, "database credential")
	}

	conn, err := s.connector.OpenAs(ctx, db, cred)
	if err != nil {
		return nil, nil, nil, err
	}
	return user, db, conn, nil
}

// checkColumns validates every identifier a column descriptor introduces.
func checkColumns(cols []models.ColumnCreate) error {
	for _, col := range cols {
		if err := utils.CheckIdentifier("column name", col.Name); err != nil {
			return err
		}
		if col.ForeignKeyTable != "" {
			if err := utils.CheckIdentifier("referenced table", col.ForeignKeyTable); err != nil {
				return err
			}
		}
		if col.ForeignKeyColumn != "" {
			if err := utils.CheckIdentifier("referenced column", col.ForeignKeyColumn); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkRowKeys validates the column names embedded in row payloads, which
// end up quoted into generated statements.
func checkRowKeys(rows []map[string]interface{}) error {
	for _, row := range rows {
		for key := range row {
			if err := utils.CheckIdentifier("column name", key); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *tableService) CreateTable(ctx context.Context, username string, dbID uint, req models.TableCreateRequest) error {
	if err := utils.CheckIdentifier("table name", req.TableName); err != nil {
		return err
	}
	if err := checkColumns(req.Columns); err != nil {
		return err
	}

	user, db, conn, err := s.open(ctx, username, dbID, models.RoleReadWrite)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, sqlgen.CreateTable(req)); err != nil {
		return err
	}

	s.audit.Record(user.ID, &dbID, "CREATE_TABLE",
		fmt.Sprintf("created table %s in %s", req.TableName, db.Name))
	return nil
}

func (s *tableService) AlterTable(ctx context.Context, username string, dbID uint, tableName string, req models.TableAlterRequest) error {
	if err := utils.CheckIdentifier("table name", tableName); err != nil {
		return err
	}
	if err := checkColumns(req.AddColumns); err != nil {
		return err
	}
	for _, name := range req.DropColumns {
		if err := utils.CheckIdentifier("column name", name); err != nil {
			return err
		}
	}
	for _, col := range req.ModifyColumns {
		if err := utils.CheckIdentifier("column name", col.OldName); err != nil {
			return err
		}
		if err := utils.CheckIdentifier("column name", col.NewName); err != nil {
			return err
		}
	}

	user, db, conn, err := s.open(ctx, username, dbID, models.RoleReadWrite)
	if err != nil {
		return err
	}
	defer conn.Close()

	// DDL statements apply one by one; MariaDB cannot roll the earlier
	// ones back if a later one fails.
	for _, stmt := range sqlgen.AlterTable(tableName, req) {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	s.audit.Record(user.ID, &dbID, "ALTER_COLUMN",
		fmt.Sprintf("altered table %s in %s", tableName, db.Name))
	return nil
}

func (s *tableService) RenameTable(ctx context.Context, username string, dbID uint, tableName, newName string) error {
	if err := utils.CheckIdentifier("table name", tableName); err != nil {
		return err
	}
	if err := utils.CheckIdentifier("table name", newName); err != nil {
		return err
	}

	user, db, conn, err := s.open(ctx, username, dbID, models.RoleReadWrite)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, sqlgen.RenameTable(tableName, newName)); err != nil {
		return err
	}

	s.audit.Record(user.ID, &dbID, "RENAME_TABLE",
		fmt.Sprintf("renamed table %s to %s in %s", tableName, newName, db.Name))
	return nil
}

func (s *tableService) DropTable(ctx context.Context, username string, dbID uint, tableName string) error {
	if err := utils.CheckIdentifier("table name", tableName); err != nil {
		return err
	}

	user, db, conn, err := s.open(ctx, username, dbID, models.RoleReadWrite)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, sqlgen.DropTable(tableName)); err != nil {
		return err
	}

	s.audit.Record(user.ID, &dbID, "DELETE_TABLE",
		fmt.Sprintf("dropped table %s in %s", tableName, db.Name))
	return nil
}

func (s *tableService) GetTables(ctx context.Context, username string, dbID uint) ([]models.TableInfo, error) {
	_, db, conn, err := s.open(ctx, username, dbID, models.RoleReadOnly)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, "SHOW TABLES")
	if err != nil {
		return nil, err
	}
	var tableNames []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, err
		}
		tableNames = append(tableNames, name)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	infos := make([]models.TableInfo, 0, len(tableNames))
	for _, name := range tableNames {
		info := models.TableInfo{Name: name}

		err := conn.QueryRowContext(ctx,
			"SELECT COALESCE(TABLE_ROWS, 0) FROM information_schema.TABLES WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?",
			db.Name, name).Scan(&info.TotalRows)
		if err != nil {
			logger.Warnf("table stats unavailable for %s.%s: %v", db.Name, name, err)
		}
		err = conn.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM information_schema.COLUMNS WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?",
			db.Name, name).Scan(&info.TotalColumns)
		if err != nil {
			logger.Warnf("column count unavailable for %s.%s: %v", db.Name, name, err)
		}

		infos = append(infos, info)
	}
	return infos, nil
}

func (s *tableService) GetTableStructure(ctx context.Context, username string, dbID uint, tableName string) (*models.TableStructure, error) {
	if err := utils.CheckIdentifier("table name", tableName); err != nil {
		return nil, err
	}

	_, _, conn, err := s.open(ctx, username, dbID, models.RoleReadOnly)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	structure := &models.TableStructure{}

	structure.Columns, err = queryMaps(ctx, conn, fmt.Sprintf("DESCRIBE `%s`", tableName))
	if err != nil {
		return nil, err
	}
	structure.Indexes, err = queryMaps(ctx, conn, fmt.Sprintf("SHOW INDEX FROM `%s`", tableName))
	if err != nil {
		return nil, err
	}

	var name, createStmt string
	if err := conn.QueryRowContext(ctx,
		fmt.Sprintf("SHOW CREATE TABLE `%s`", tableName)).Scan(&name, &createStmt); err != nil {
		return nil, err
	}
	structure.CreateStatement = createStmt

	return structure, nil
}

func (s *tableService) GetTableData(ctx context.Context, username string, dbID uint, tableName string, page, pageSize int) (*models.TableData, error) {
	if err := utils.CheckIdentifier("table name", tableName); err != nil {
		return nil, err
	}
	if page < 0 {
		page = 0
	}
	if pageSize <= 0 || pageSize > 500 {
		pageSize = 50
	}

	_, _, conn, err := s.open(ctx, username, dbID, models.RoleReadOnly)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	var totalRows int64
	if err := conn.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM `%s`", tableName)).Scan(&totalRows); err != nil {
		return nil, err
	}

	columnInfo, err := queryMaps(ctx, conn, fmt.Sprintf("DESCRIBE `%s`", tableName))
	if err != nil {
		return nil, err
	}
	columns := make([]string, 0, len(columnInfo))
	for _, col := range columnInfo {
		if field, ok := col["Field"].(string); ok {
			columns = append(columns, field)
		}
	}

	dataRows, err := queryMaps(ctx, conn, fmt.Sprintf("SELECT * FROM `%s` LIMIT %d OFFSET %d",
		tableName, pageSize, page*pageSize))
	if err != nil {
		return nil, err
	}

	return &models.TableData{
		Name:      tableName,
		Columns:   columns,
		Rows:      dataRows,
		TotalRows: totalRows,
		Page:      page,
		PageSize:  pageSize,
	}, nil
}

func (s *tableService) InsertRows(ctx context.Context, username string, dbID uint, tableName string, req models.RowRequest) error {
	if err := utils.CheckIdentifier("table name", tableName); err != nil {
		return err
	}
	if len(req.Data) == 0 {
		return fmt.Errorf("%w: data list must not be empty", apperrors.ErrBadRequest)
	}
	if err := checkRowKeys(req.Data); err != nil {
		return err
	}

	user, db, conn, err := s.open(ctx, username, dbID, models.RoleReadWrite)
	if err != nil {
		return err
	}
	defer conn.Close()

	stmt, batches := sqlgen.InsertBatch(tableName, req.Data)
	for _, args := range batches {
		if _, err := conn.ExecContext(ctx, stmt, args...); err != nil {
			return err
		}
	}

	s.audit.Record(user.ID, &dbID, "INSERT_ROW",
		fmt.Sprintf("inserted %d rows into %s.%s", len(req.Data), db.Name, tableName))
	return nil
}

func (s *tableService) UpdateRows(ctx context.Context, username string, dbID uint, tableName string, req models.RowRequest) error {
	if err := utils.CheckIdentifier("table name", tableName); err != nil {
		return err
	}
	if len(req.Ids) == 0 {
		return fmt.Errorf("%w: id list must not be empty", apperrors.ErrBadRequest)
	}
	if len(req.Data) == 0 {
		return fmt.Errorf("%w: data list must not be empty", apperrors.ErrBadRequest)
	}
	if len(req.Ids) != len(req.Data) {
		return fmt.Errorf("%w: id and data lists must have equal length", apperrors.ErrBadRequest)
	}
	if err := checkRowKeys(req.Data); err != nil {
		return err
	}

	user, db, conn, err := s.open(ctx, username, dbID, models.RoleReadWrite)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Rows whose id matches nothing are skipped silently; the pairing is
	// positional and partial application is accepted.
	updated := 0
	for i, id := range req.Ids {
		if len(req.Data[i]) == 0 {
			continue
		}
		stmt, args := sqlgen.UpdateByID(tableName, req.Data[i], id)
		result, err := conn.ExecContext(ctx, stmt, args...)
		if err != nil {
			return err
		}
		if affected, err := result.RowsAffected(); err == nil && affected > 0 {
			updated++
		}
	}

	s.audit.Record(user.ID, &dbID, "UPDATE_ROW",
		fmt.Sprintf("updated %d rows in %s.%s", updated, db.Name, tableName))
	return nil
}

func (s *tableService) DeleteRows(ctx context.Context, username string, dbID uint, tableName string, req models.RowRequest) error {
	if err := utils.CheckIdentifier("table name", tableName); err != nil {
		return err
	}
	if len(req.Ids) == 0 {
		return fmt.Errorf("%w: id list must not be empty", apperrors.ErrBadRequest)
	}

	user, db, conn, err := s.open(ctx, username, dbID, models.RoleReadWrite)
	if err != nil {
		return err
	}
	defer conn.Close()

	stmt, args := sqlgen.DeleteByIDs(tableName, req.Ids)
	result, err := conn.ExecContext(ctx, stmt, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: no rows matched the given ids", apperrors.ErrNotFound)
	}

	s.audit.Record(user.ID, &dbID, "DELETE_ROW",
		fmt.Sprintf("deleted %d rows from %s.%s", affected, db.Name, tableName))
	return nil
}

// queryMaps runs a query and renders every row as a column-keyed map, with
// byte slices decoded to strings for JSON friendliness.
func queryMaps(ctx context.Context, conn *sql.DB, query string) ([]map[string]interface{}, error) {
	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	results := []map[string]interface{}{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		scanTargets := make([]interface{}, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return nil, err
		}

		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		results = append(results, row)
	}
	return results, rows.Err()
}
