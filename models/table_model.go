package models

// ColumnCreate describes one column of a table to create or add. The Type is
// an abstract vocabulary ("serial", "varchar", ...) translated by the SQL
// generator; unknown types pass through uppercased.
type ColumnCreate struct {
	Name             string `json:"name" validate:"required"`
	Type             string `json:"type" validate:"required"`
	Length           *int   `json:"length,omitempty"`
	Constraints      string `json:"constraints,omitempty"`
	DefaultValue     string `json:"defaultValue,omitempty"`
	ForeignKeyTable  string `json:"foreignKeyTable,omitempty"`
	ForeignKeyColumn string `json:"foreignKeyColumn,omitempty"`
	OnDelete         string `json:"onDelete,omitempty"`
	OnUpdate         string `json:"onUpdate,omitempty"`
}

// ColumnModify renames and retypes a column in one step; MariaDB CHANGE
// COLUMN does not separate the two.
type ColumnModify struct {
	OldName      string `json:"oldName" validate:"required"`
	NewName      string `json:"newName" validate:"required"`
	Type         string `json:"type" validate:"required"`
	Length       *int   `json:"length,omitempty"`
	Constraints  string `json:"constraints,omitempty"`
	DefaultValue string `json:"defaultValue,omitempty"`
}

// TableCreateRequest is the payload for creating a tenant table.
type TableCreateRequest struct {
	TableName string         `json:"tableName" validate:"required"`
	Columns   []ColumnCreate `json:"columns" validate:"required,min=1,dive"`
}

// TableAlterRequest carries three independent change lists. Statements run
// sequentially with no rollback across them.
type TableAlterRequest struct {
	AddColumns    []ColumnCreate `json:"addColumns,omitempty" validate:"dive"`
	DropColumns   []string       `json:"dropColumns,omitempty"`
	ModifyColumns []ColumnModify `json:"modifyColumns,omitempty" validate:"dive"`
}

// TableRenameRequest is the payload for renaming a tenant table.
type TableRenameRequest struct {
	NewName string `json:"newName" validate:"required"`
}

// RowRequest carries row data for insert/update/delete. Insert uses Data
// only; update pairs Ids with Data positionally; delete uses Ids only.
type RowRequest struct {
	Ids  []int64                  `json:"ids,omitempty"`
	Data []map[string]interface{} `json:"data,omitempty"`
}

// TableInfo summarizes one tenant table for listings.
type TableInfo struct {
	Name         string `json:"name"`
	TotalRows    int64  `json:"totalRows"`
	TotalColumns int64  `json:"totalColumns"`
}

// TableData is one page of rows from a tenant table.
type TableData struct {
	Name      string                   `json:"name"`
	Columns   []string                 `json:"columns"`
	Rows      []map[string]interface{} `json:"rows"`
	TotalRows int64                    `json:"totalRows"`
	Page      int                      `json:"page"`
	PageSize  int                      `json:"pageSize"`
}

// TableStructure describes a tenant table as the server reports it.
type TableStructure struct {
	Columns         []map[string]interface{} `json:"columns"`
	Indexes         []map[string]interface{} `json:"indexes"`
	CreateStatement string                   `json:"createStatement"`
}
