package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	for in, want := range map[string]string{
		"":                       "DESC",
		"asc":                    "ASC",
		" Asc ":                  "ASC",
		"desc":                   "DESC",
		"sideways":               "DESC",
		"ASC; DELETE FROM items": "DESC",
	} {
		assert.Equal(t, want, ValidateSortOrder(in), "input %q", in)
	}
}

func TestValidateSortField(t *testing.T) {
	t.Run("movement listing", func(t *testing.T) {
		assert.Equal(t, "location", ValidateSortField(" location ", MovementSortFields, "created_at"))
		assert.Equal(t, "created_at", ValidateSortField("", MovementSortFields, "created_at"))
		assert.Equal(t, "created_at", ValidateSortField("balance_after", MovementSortFields, "created_at"))
	})

	t.Run("batch listing", func(t *testing.T) {
		assert.Equal(t, "expiry_date", ValidateSortField("expiry_date", BatchSortFields, "created_at"))
		assert.Equal(t, "created_at", ValidateSortField("quantity_received", BatchSortFields, "created_at"))
	})

	t.Run("column names only", func(t *testing.T) {
		for _, hostile := range []string{
			"created_at; DROP TABLE stock_movements",
			"expiry_date DESC, (SELECT 1)",
			"CREATED_AT",
		} {
			assert.Equal(t, "created_at", ValidateSortField(hostile, BatchSortFields, "created_at"))
			assert.Equal(t, "created_at", ValidateSortField(hostile, MovementSortFields, "created_at"))
		}
	})
}
