package models

import "time"

// AuditFields mirrors the audit columns shared by mirror tables.
type AuditFields struct {
	CreatedAt     time.Time `db:"created_at"`
	LastUpdatedAt time.Time `db:"last_updated_at"`
}
