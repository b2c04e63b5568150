package repository

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TenantScope returns a GORM scope that filters by tenant.
// It must be applied to every query on a tenant-scoped table.
func TenantScope(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if tenantID == uuid.Nil {
			// No tenant means no rows, never every tenant's rows
			return db.Where("1 = 0")
		}
		return db.Where("tenant_id = ?", tenantID)
	}
}

// ForUpdate returns a GORM scope that takes a row lock on the selected
// rows. SQLite locks the whole database on write and has no FOR UPDATE.
func ForUpdate() func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if db.Dialector.Name() == "sqlite" {
			return db
		}
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsScope matches rows whose column contains term, ignoring case.
// LIKE wildcards in term match literally.
func ContainsScope(column, term string) func(db *gorm.DB) *gorm.DB {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("LOWER("+column+") LIKE ? ESCAPE '\\'", pattern)
	}
}
