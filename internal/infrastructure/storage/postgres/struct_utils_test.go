package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"verduleria/internal/core/entity"
)

type mockCatalog struct {
	entity.Catalog
	Supplier *string `db:"supplier" json:"supplier"`
}

func TestExtractDBColumns_Embedded(t *testing.T) {
	cols := ExtractDBColumns[mockCatalog]()

	expectedCols := []string{
		"id", "version", "created_at", "updated_at", "name", "deletion_mark", "supplier",
	}

	for _, expected := range expectedCols {
		assert.Contains(t, cols, expected)
	}
	assert.Len(t, cols, len(expectedCols))
}

func TestStructToMap_Embedded(t *testing.T) {
	supplier := "Campo Sur"
	now := time.Now().UTC()
	cat := mockCatalog{
		Catalog: entity.Catalog{
			BaseEntity: entity.BaseEntity{
				ID:        42,
				Version:   5,
				CreatedAt: now,
				UpdatedAt: now,
			},
			Name:         "Tomato",
			DeletionMark: true,
		},
		Supplier: &supplier,
	}

	m := StructToMap(cat)

	assert.Equal(t, int64(42), m["id"])
	assert.Equal(t, 5, m["version"])
	assert.Equal(t, true, m["deletion_mark"])
	assert.Equal(t, "Tomato", m["name"])
	assert.Equal(t, &supplier, m["supplier"])
}
