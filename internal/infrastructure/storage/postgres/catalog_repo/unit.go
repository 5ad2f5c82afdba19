package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"verduleria/internal/domain/catalogs/unit"
	"verduleria/internal/infrastructure/storage/postgres"
)

// UnitRepo implements unit.Repository.
type UnitRepo struct {
	*BaseCatalogRepo[*unit.Unit]
}

// NewUnitRepo creates a Unit repository.
func NewUnitRepo(txManager *postgres.TxManager) *UnitRepo {
	return &UnitRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			"units",
			postgres.ExtractDBColumns[unit.Unit](),
			func() *unit.Unit { return &unit.Unit{} },
		),
	}
}

// FindByAbbreviation retrieves a unit by its short form.
func (r *UnitRepo) FindByAbbreviation(ctx context.Context, abbreviation string) (*unit.Unit, error) {
	q := r.Builder().
		Select(postgres.ExtractDBColumns[unit.Unit]()...).
		From("units").
		Where(squirrel.Eq{"abbreviation": abbreviation}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	return r.FindOne(ctx, q)
}
