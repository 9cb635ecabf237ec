package models

// Dashboard aggregates per-user totals across the control plane.
type Dashboard struct {
	TotalProjects  int64 `json:"totalProjects"`
	TotalDatabases int64 `json:"totalDatabases"`
	TotalBackups   int64 `json:"totalBackups"`
}
