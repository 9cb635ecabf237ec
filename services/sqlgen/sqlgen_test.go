package sqlgen

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mariadbpaas/models"
)

func intPtr(v int) *int {
	return &v
}

// TestColumnDefinition_TypeTranslation tests the abstract type vocabulary.
func TestColumnDefinition_TypeTranslation(t *testing.T) {
	cases := []struct {
		name string
		col  models.ColumnCreate
		want string
	}{
		{"serial", models.ColumnCreate{Type: "serial"}, "INT AUTO_INCREMENT"},
		{"int", models.ColumnCreate{Type: "int"}, "INT"},
		{"integer", models.ColumnCreate{Type: "INTEGER"}, "INT"},
		{"bigint", models.ColumnCreate{Type: "bigint"}, "BIGINT"},
		{"varchar default length", models.ColumnCreate{Type: "varchar"}, "VARCHAR(255)"},
		{"varchar explicit length", models.ColumnCreate{Type: "varchar", Length: intPtr(50)}, "VARCHAR(50)"},
		{"string alias", models.ColumnCreate{Type: "string", Length: intPtr(100)}, "VARCHAR(100)"},
		{"text", models.ColumnCreate{Type: "text"}, "TEXT"},
		{"boolean", models.ColumnCreate{Type: "boolean"}, "TINYINT(1)"},
		{"bool alias", models.ColumnCreate{Type: "bool"}, "TINYINT(1)"},
		{"timestamp", models.ColumnCreate{Type: "timestamp"}, "DATETIME"},
		{"datetime", models.ColumnCreate{Type: "datetime"}, "DATETIME"},
		{"date", models.ColumnCreate{Type: "date"}, "DATE"},
		{"time", models.ColumnCreate{Type: "time"}, "TIME"},
		{"float", models.ColumnCreate{Type: "float"}, "FLOAT"},
		{"double", models.ColumnCreate{Type: "double"}, "DOUBLE"},
		{"decimal", models.ColumnCreate{Type: "decimal"}, "DECIMAL(10,2)"},
		{"json", models.ColumnCreate{Type: "json"}, "JSON"},
		{"unknown passes through uppercased", models.ColumnCreate{Type: "mediumblob"}, "MEDIUMBLOB"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ColumnDefinition(tc.col))
		})
	}
}

// TestColumnDefinition_ConstraintsAndDefaults tests the constraint substring
// scan and the default value classification.
func TestColumnDefinition_ConstraintsAndDefaults(t *testing.T) {
	cases := []struct {
		name string
		col  models.ColumnCreate
		want string
	}{
		{
			"not null with numeric default",
			models.ColumnCreate{Type: "int", Constraints: "NOT NULL", DefaultValue: "0"},
			"INT NOT NULL DEFAULT 0",
		},
		{
			"unique",
			models.ColumnCreate{Type: "varchar", Constraints: "unique"},
			"VARCHAR(255) UNIQUE",
		},
		{
			"not null and unique together",
			models.ColumnCreate{Type: "varchar", Constraints: "not null, unique"},
			"VARCHAR(255) NOT NULL UNIQUE",
		},
		{
			"primary key constraint is not inline",
			models.ColumnCreate{Type: "serial", Constraints: "primary key"},
			"INT AUTO_INCREMENT",
		},
		{
			"default null keyword",
			models.ColumnCreate{Type: "text", DefaultValue: "NULL"},
			"TEXT DEFAULT NULL",
		},
		{
			"default current_timestamp keyword",
			models.ColumnCreate{Type: "timestamp", DefaultValue: "current_timestamp"},
			"DATETIME DEFAULT CURRENT_TIMESTAMP",
		},
		{
			"string default is quoted",
			models.ColumnCreate{Type: "varchar", DefaultValue: "pending"},
			"VARCHAR(255) DEFAULT 'pending'",
		},
		{
			"single quotes in default are doubled",
			models.ColumnCreate{Type: "varchar", DefaultValue: "it's"},
			"VARCHAR(255) DEFAULT 'it''s'",
		},
		{
			"no default sentinel is skipped",
			models.ColumnCreate{Type: "int", DefaultValue: "no default"},
			"INT",
		},
		{
			"empty default is skipped",
			models.ColumnCreate{Type: "int"},
			"INT",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ColumnDefinition(tc.col))
		})
	}
}

// TestCreateTable_FullStatement tests a table with a serial primary key, a
// plain column and a foreign key with referential actions.
func TestCreateTable_FullStatement(t *testing.T) {
	req := models.TableCreateRequest{
		TableName: "orders",
		Columns: []models.ColumnCreate{
			{Name: "id", Type: "serial", Constraints: "primary key"},
			{Name: "status", Type: "varchar", Length: intPtr(50), Constraints: "not null"},
			{
				Name: "customer_id", Type: "int",
				ForeignKeyTable: "customers", ForeignKeyColumn: "id",
				OnDelete: "cascade", OnUpdate: "restrict",
			},
		},
	}

	want := "CREATE TABLE `orders` (\n" +
		"  `id` INT AUTO_INCREMENT,\n" +
		"  `status` VARCHAR(50) NOT NULL,\n" +
		"  `customer_id` INT,\n" +
		"  PRIMARY KEY (`id`),\n" +
		"  CONSTRAINT `fk_orders_customer_id` FOREIGN KEY (`customer_id`) REFERENCES `customers` (`id`)" +
		" ON DELETE CASCADE ON UPDATE RESTRICT\n" +
		") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;"

	assert.Equal(t, want, CreateTable(req))
}

// TestCreateTable_NoKeys tests that the key clauses are omitted entirely
// when no column declares them.
func TestCreateTable_NoKeys(t *testing.T) {
	req := models.TableCreateRequest{
		TableName: "notes",
		Columns: []models.ColumnCreate{
			{Name: "body", Type: "text"},
		},
	}

	want := "CREATE TABLE `notes` (\n" +
		"  `body` TEXT\n" +
		") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;"

	assert.Equal(t, want, CreateTable(req))
}

// TestAlterTable_StatementOrder tests that adds come before drops before
// modifies, and that a foreign key on an added column is its own statement.
func TestAlterTable_StatementOrder(t *testing.T) {
	req := models.TableAlterRequest{
		AddColumns: []models.ColumnCreate{
			{
				Name: "owner_id", Type: "int",
				ForeignKeyTable: "users", ForeignKeyColumn: "id",
				OnDelete: "set null",
			},
		},
		DropColumns: []string{"legacy"},
		ModifyColumns: []models.ColumnModify{
			{OldName: "title", NewName: "headline", Type: "varchar", Length: intPtr(100), Constraints: "not null"},
		},
	}

	got := AlterTable("articles", req)

	want := []string{
		"ALTER TABLE `articles` ADD COLUMN `owner_id` INT",
		"ALTER TABLE `articles` ADD CONSTRAINT `fk_articles_owner_id` FOREIGN KEY (`owner_id`) REFERENCES `users` (`id`) ON DELETE SET NULL",
		"ALTER TABLE `articles` DROP COLUMN `legacy`",
		"ALTER TABLE `articles` CHANGE COLUMN `title` `headline` VARCHAR(100) NOT NULL",
	}
	assert.Equal(t, want, got)
}

// TestRenameAndDropTable tests the single-statement table operations.
func TestRenameAndDropTable(t *testing.T) {
	assert.Equal(t, "RENAME TABLE `old_name` TO `new_name`", RenameTable("old_name", "new_name"))
	assert.Equal(t, "DROP TABLE IF EXISTS `scratch`", DropTable("scratch"))
}

// TestInsertBatch tests the shared statement and per-row argument lists.
// Column order follows the sorted keys of the first row; later rows are
// read through the same column set.
func TestInsertBatch(t *testing.T) {
	rows := []map[string]interface{}{
		{"name": "alice", "age": 30},
		{"age": 25, "name": "bob"},
	}

	sql, args := InsertBatch("people", rows)

	assert.Equal(t, "INSERT INTO `people` (`age`, `name`) VALUES (?, ?)", sql)
	assert.Equal(t, [][]interface{}{
		{30, "alice"},
		{25, "bob"},
	}, args)
}

// TestUpdateByID tests the set clause assembly and id argument placement.
func TestUpdateByID(t *testing.T) {
	sql, args := UpdateByID("people", map[string]interface{}{"name": "carol", "age": 41}, 7)

	assert.Equal(t, "UPDATE `people` SET `age` = ?, `name` = ? WHERE `id` = ?", sql)
	assert.Equal(t, []interface{}{41, "carol", int64(7)}, args)
}

// TestDeleteByIDs tests placeholder expansion for the id list.
func TestDeleteByIDs(t *testing.T) {
	sql, args := DeleteByIDs("people", []int64{1, 2, 3})

	assert.Equal(t, "DELETE FROM `people` WHERE `id` IN (?, ?, ?)", sql)
	assert.Equal(t, []interface{}{int64(1), int64(2), int64(3)}, args)
}
