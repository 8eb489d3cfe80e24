package geography

import (
	"context"

	"github.com/jmoiron/sqlx"

	"business-crm-go/pkg/model"
)

// GeographyService serves the read-only reference data: the
// country/province/city tree and the category list.
type GeographyService struct {
	db *sqlx.DB
}

// NewGeographyService creates a new geography service
func NewGeographyService(db *sqlx.DB) *GeographyService {
	return &GeographyService{db: db}
}

// Countries returns every country with its provinces and cities nested.
// Provinces are ordered by population (largest first), the rest by name.
func (s *GeographyService) Countries(ctx context.Context) ([]model.Country, error) {
	var countries []model.Country
	if err := s.db.SelectContext(ctx, &countries, "SELECT id, name FROM countries ORDER BY name"); err != nil {
		return nil, model.NewStorageError("select countries", err)
	}

	var provinces []model.Province
	err := s.db.SelectContext(ctx, &provinces, `
        SELECT id, name, country_id, population
        FROM provinces
        ORDER BY population DESC NULLS LAST, name
    `)
	if err != nil {
		return nil, model.NewStorageError("select provinces", err)
	}

	var cities []model.City
	if err := s.db.SelectContext(ctx, &cities, "SELECT id, name, province_id FROM cities ORDER BY name"); err != nil {
		return nil, model.NewStorageError("select cities", err)
	}

	return BuildTree(countries, provinces, cities), nil
}

// Categories returns the flat rubro list
func (s *GeographyService) Categories(ctx context.Context) ([]model.Category, error) {
	categories := []model.Category{}
	if err := s.db.SelectContext(ctx, &categories, "SELECT id, name FROM categories ORDER BY name"); err != nil {
		return nil, model.NewStorageError("select categories", err)
	}
	return categories, nil
}

// BuildTree nests provinces under countries and cities under provinces,
// keeping the input order at every level. Orphans are dropped.
func BuildTree(countries []model.Country, provinces []model.Province, cities []model.City) []model.Country {
	citiesByProvince := make(map[string][]model.City)
	for _, c := range cities {
		citiesByProvince[c.ProvinceID] = append(citiesByProvince[c.ProvinceID], c)
	}

	provincesByCountry := make(map[string][]model.Province)
	for _, p := range provinces {
		p.Cities = citiesByProvince[p.ID]
		if p.Cities == nil {
			p.Cities = []model.City{}
		}
		provincesByCountry[p.CountryID] = append(provincesByCountry[p.CountryID], p)
	}

	tree := make([]model.Country, 0, len(countries))
	for _, c := range countries {
		c.Provinces = provincesByCountry[c.ID]
		if c.Provinces == nil {
			c.Provinces = []model.Province{}
		}
		tree = append(tree, c)
	}
	return tree
}
