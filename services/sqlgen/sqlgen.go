// Package sqlgen builds MariaDB DDL and DML text from abstract table
// descriptions. Identifier validation happens before these functions are
// called; sqlgen only quotes and assembles.
package sqlgen

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"mariadbpaas/models"
)

var numericDefault = regexp.MustCompile(`^\d+$`)

// ColumnDefinition renders the type, inline constraints and default clause
// for one column. Unknown types pass through uppercased so new MariaDB
// types work without a vocabulary update.
func ColumnDefinition(col models.ColumnCreate) string {
	var sb strings.Builder

	switch strings.ToLower(col.Type) {
	case "serial":
		sb.WriteString("INT AUTO_INCREMENT")
	case "integer", "int":
		sb.WriteString("INT")
	case "bigint":
		sb.WriteString("BIGINT")
	case "varchar", "string":
		length := 255
		if col.Length != nil {
			length = *col.Length
		}
		fmt.Fprintf(&sb, "VARCHAR(%d)", length)
	case "text":
		sb.WriteString("TEXT")
	case "boolean", "bool":
		sb.WriteString("TINYINT(1)")
	case "timestamp", "datetime":
		sb.WriteString("DATETIME")
	case "date":
		sb.WriteString("DATE")
	case "time":
		sb.WriteString("TIME")
	case "float":
		sb.WriteString("FLOAT")
	case "double":
		sb.WriteString("DOUBLE")
	case "decimal":
		sb.WriteString("DECIMAL(10,2)")
	case "json":
		sb.WriteString("JSON")
	default:
		sb.WriteString(strings.ToUpper(col.Type))
	}

	lower := strings.ToLower(col.Constraints)
	if strings.Contains(lower, "not null") {
		sb.WriteString(" NOT NULL")
	}
	if strings.Contains(lower, "unique") {
		sb.WriteString(" UNIQUE")
	}

	def := col.DefaultValue
	if def != "" && !strings.EqualFold(def, "no default") {
		switch {
		case strings.EqualFold(def, "null"):
			sb.WriteString(" DEFAULT NULL")
		case strings.EqualFold(def, "current_timestamp"):
			sb.WriteString(" DEFAULT CURRENT_TIMESTAMP")
		case numericDefault.MatchString(def):
			sb.WriteString(" DEFAULT " + def)
		default:
			sb.WriteString(" DEFAULT '" + strings.ReplaceAll(def, "'", "''") + "'")
		}
	}

	return sb.String()
}

func foreignKeyClause(tableName string, col models.ColumnCreate) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "CONSTRAINT `fk_%s_%s` FOREIGN KEY (`%s`) REFERENCES `%s` (`%s`)",
		tableName, col.Name, col.Name, col.ForeignKeyTable, col.ForeignKeyColumn)
	if col.OnDelete != "" {
		sb.WriteString(" ON DELETE " + strings.ToUpper(col.OnDelete))
	}
	if col.OnUpdate != "" {
		sb.WriteString(" ON UPDATE " + strings.ToUpper(col.OnUpdate))
	}
	return sb.String()
}

// CreateTable renders a full CREATE TABLE statement. Columns marked
// "primary key" in their constraints are collected into a single PRIMARY
// KEY clause; foreign keys become named table-level constraints.
func CreateTable(req models.TableCreateRequest) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "CREATE TABLE `%s` (\n", req.TableName)

	var columnDefs []string
	var primaryKeys []string
	var foreignKeys []string

	for _, col := range req.Columns {
		columnDefs = append(columnDefs, fmt.Sprintf("  `%s` %s", col.Name, ColumnDefinition(col)))

		if strings.Contains(strings.ToLower(col.Constraints), "primary key") {
			primaryKeys = append(primaryKeys, col.Name)
		}
		if col.ForeignKeyTable != "" && col.ForeignKeyColumn != "" {
			foreignKeys = append(foreignKeys, "  "+foreignKeyClause(req.TableName, col))
		}
	}

	sb.WriteString(strings.Join(columnDefs, ",\n"))

	if len(primaryKeys) > 0 {
		quoted := make([]string, len(primaryKeys))
		for i, k := range primaryKeys {
			quoted[i] = "`" + k + "`"
		}
		sb.WriteString(",\n  PRIMARY KEY (" + strings.Join(quoted, ", ") + ")")
	}

	if len(foreignKeys) > 0 {
		sb.WriteString(",\n")
		sb.WriteString(strings.Join(foreignKeys, ",\n"))
	}

	sb.WriteString("\n) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;")
	return sb.String()
}

// AlterTable renders one statement per change. Adds come first, then
// drops, then modifies; a foreign key on an added column is a separate
// ADD CONSTRAINT statement so the column exists before the constraint.
func AlterTable(tableName string, req models.TableAlterRequest) []string {
	var statements []string

	for _, col := range req.AddColumns {
		statements = append(statements, fmt.Sprintf("ALTER TABLE `%s` ADD COLUMN `%s` %s",
			tableName, col.Name, ColumnDefinition(col)))
		if col.ForeignKeyTable != "" && col.ForeignKeyColumn != "" {
			statements = append(statements, fmt.Sprintf("ALTER TABLE `%s` ADD %s",
				tableName, foreignKeyClause(tableName, col)))
		}
	}

	for _, name := range req.DropColumns {
		statements = append(statements, fmt.Sprintf("ALTER TABLE `%s` DROP COLUMN `%s`", tableName, name))
	}

	for _, col := range req.ModifyColumns {
		def := ColumnDefinition(models.ColumnCreate{
			Type:         col.Type,
			Length:       col.Length,
			Constraints:  col.Constraints,
			DefaultValue: col.DefaultValue,
		})
		statements = append(statements, fmt.Sprintf("ALTER TABLE `%s` CHANGE COLUMN `%s` `%s` %s",
			tableName, col.OldName, col.NewName, def))
	}

	return statements
}

// RenameTable renders a RENAME TABLE statement.
func RenameTable(tableName, newName string) string {
	return fmt.Sprintf("RENAME TABLE `%s` TO `%s`", tableName, newName)
}

// DropTable renders a DROP TABLE IF EXISTS statement.
func DropTable(tableName string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS `%s`", tableName)
}

// InsertBatch renders a single parameterized INSERT and the argument list
// for each row. The column set comes from the first row's keys, sorted so
// the statement is deterministic; every row is read through that same set.
func InsertBatch(tableName string, rows []map[string]interface{}) (string, [][]interface{}) {
	columns := make([]string, 0, len(rows[0]))
	for col := range rows[0] {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = "`" + col + "`"
		placeholders[i] = "?"
	}

	sql := fmt.Sprintf("INSERT INTO `%s` (%s) VALUES (%s)",
		tableName, strings.Join(quoted, ", "), strings.Join(placeholders, ", "))

	args := make([][]interface{}, len(rows))
	for i, row := range rows {
		values := make([]interface{}, len(columns))
		for j, col := range columns {
			values[j] = row[col]
		}
		args[i] = values
	}

	return sql, args
}

// UpdateByID renders a parameterized single-row UPDATE keyed on the `id`
// column, with the id appended as the last argument.
func UpdateByID(tableName string, row map[string]interface{}, id int64) (string, []interface{}) {
	columns := make([]string, 0, len(row))
	for col := range row {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	setClauses := make([]string, len(columns))
	args := make([]interface{}, 0, len(columns)+1)
	for i, col := range columns {
		setClauses[i] = "`" + col + "` = ?"
		args = append(args, row[col])
	}
	args = append(args, id)

	sql := fmt.Sprintf("UPDATE `%s` SET %s WHERE `id` = ?", tableName, strings.Join(setClauses, ", "))
	return sql, args
}

// DeleteByIDs renders a parameterized DELETE over the `id` column.
func DeleteByIDs(tableName string, ids []int64) (string, []interface{}) {
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	sql := fmt.Sprintf("DELETE FROM `%s` WHERE `id` IN (%s)", tableName, strings.Join(placeholders, ", "))
	return sql, args
}
