// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
//   - base.go: BaseModel and AggregateModel shared by every table
//   - catalog.go: products
//   - inventory.go: batches, inventory items, movements, deductions
//   - trade.go: sales and purchases with their lines
package models
