package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"

	"business-crm-go/pkg/model"
)

// Legacy file names
const (
	CategoriesFile = "rubros.json"
	CountriesFile  = "paises.json"
	BusinessesFile = "negocios.json"
)

type legacyCategory struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
}

type legacyCity struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
}

type legacyProvince struct {
	ID        string       `json:"id"`
	Nombre    string       `json:"nombre"`
	Poblacion *int64       `json:"poblacion"`
	Ciudades  []legacyCity `json:"ciudades"`
}

type legacyCountry struct {
	ID         string           `json:"id"`
	Nombre     string           `json:"nombre"`
	Provincias []legacyProvince `json:"provincias"`
}

type legacyBusiness struct {
	ID        int    `json:"id"`
	Nombre    string `json:"nombre"`
	Telefono  string `json:"telefono"`
	RubroID   string `json:"rubro_id"`
	Enviado   bool   `json:"enviado"`
	Pais      string `json:"pais"`
	Provincia string `json:"provincia"`
	Ciudad    string `json:"ciudad"`
}

// Result counts the rows each import step inserted. Rows that already
// existed are not counted.
type Result struct {
	Categories int `json:"categories"`
	Countries  int `json:"countries"`
	Provinces  int `json:"provinces"`
	Cities     int `json:"cities"`
	Businesses int `json:"businesses"`
}

// Importer loads the legacy JSON exports into an empty or partially filled database
type Importer struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewImporter creates a new importer
func NewImporter(db *sqlx.DB, logger *slog.Logger) *Importer {
	return &Importer{
		db:     db,
		logger: logger,
	}
}

// Run imports categories, then the geography tree, then businesses from dir.
// Each file is committed on its own; a missing file is skipped.
func (i *Importer) Run(ctx context.Context, dir string) (*Result, error) {
	result := &Result{}

	var categories []legacyCategory
	found, err := readJSON(filepath.Join(dir, CategoriesFile), &categories)
	if err != nil {
		return result, err
	}
	if found {
		if err := i.importCategories(ctx, categories, result); err != nil {
			return result, err
		}
	} else {
		i.logger.Warn("import file missing, skipped", "file", CategoriesFile)
	}

	var countries []legacyCountry
	found, err = readJSON(filepath.Join(dir, CountriesFile), &countries)
	if err != nil {
		return result, err
	}
	if found {
		if err := i.importGeography(ctx, countries, result); err != nil {
			return result, err
		}
	} else {
		i.logger.Warn("import file missing, skipped", "file", CountriesFile)
	}

	var businesses []legacyBusiness
	found, err = readJSON(filepath.Join(dir, BusinessesFile), &businesses)
	if err != nil {
		return result, err
	}
	if found {
		if err := i.importBusinesses(ctx, businesses, result); err != nil {
			return result, err
		}
	} else {
		i.logger.Warn("import file missing, skipped", "file", BusinessesFile)
	}

	i.logger.Info("import finished",
		"categories", result.Categories,
		"countries", result.Countries,
		"provinces", result.Provinces,
		"cities", result.Cities,
		"businesses", result.Businesses,
	)
	return result, nil
}

func readJSON(path string, v interface{}) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("parse %s: %w", path, err)
	}
	return true, nil
}

func (i *Importer) importCategories(ctx context.Context, categories []legacyCategory, result *Result) error {
	return i.withTx(ctx, CategoriesFile, func(tx *sqlx.Tx) error {
		for _, c := range categories {
			id := model.NormalizeRef(c.ID)
			if id == nil {
				i.logger.Warn("category without id skipped", "name", c.Nombre)
				continue
			}
			n, err := insert(ctx, tx, `
                INSERT INTO categories (id, name) VALUES ($1, $2)
                ON CONFLICT (id) DO NOTHING
            `, *id, strings.TrimSpace(c.Nombre))
			if err != nil {
				return fmt.Errorf("insert category %s: %w", *id, err)
			}
			result.Categories += n
		}
		return nil
	})
}

func (i *Importer) importGeography(ctx context.Context, countries []legacyCountry, result *Result) error {
	return i.withTx(ctx, CountriesFile, func(tx *sqlx.Tx) error {
		for _, country := range countries {
			countryID := model.NormalizeRef(country.ID)
			if countryID == nil {
				i.logger.Warn("country without id skipped", "name", country.Nombre)
				continue
			}
			n, err := insert(ctx, tx, `
                INSERT INTO countries (id, name) VALUES ($1, $2)
                ON CONFLICT (id) DO NOTHING
            `, *countryID, strings.TrimSpace(country.Nombre))
			if err != nil {
				return fmt.Errorf("insert country %s: %w", *countryID, err)
			}
			result.Countries += n

			for _, province := range country.Provincias {
				provinceID := model.NormalizeRef(province.ID)
				if provinceID == nil {
					continue
				}
				n, err := insert(ctx, tx, `
                    INSERT INTO provinces (id, name, country_id, population) VALUES ($1, $2, $3, $4)
                    ON CONFLICT (id) DO NOTHING
                `, *provinceID, strings.TrimSpace(province.Nombre), *countryID, province.Poblacion)
				if err != nil {
					return fmt.Errorf("insert province %s: %w", *provinceID, err)
				}
				result.Provinces += n

				for _, city := range province.Ciudades {
					cityID := model.NormalizeRef(city.ID)
					if cityID == nil {
						continue
					}
					n, err := insert(ctx, tx, `
                        INSERT INTO cities (id, name, province_id) VALUES ($1, $2, $3)
                        ON CONFLICT (id) DO NOTHING
                    `, *cityID, strings.TrimSpace(city.Nombre), *provinceID)
					if err != nil {
						return fmt.Errorf("insert city %s: %w", *cityID, err)
					}
					result.Cities += n
				}
			}
		}
		return nil
	})
}

func (i *Importer) importBusinesses(ctx context.Context, businesses []legacyBusiness, result *Result) error {
	return i.withTx(ctx, BusinessesFile, func(tx *sqlx.Tx) error {
		for _, b := range businesses {
			n, err := insert(ctx, tx, `
                INSERT INTO businesses (id, name, phone, category_id, sent, country_id, province_id, city_id)
                VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
                ON CONFLICT (id) DO NOTHING
            `, b.ID, strings.TrimSpace(b.Nombre), strings.TrimSpace(b.Telefono), model.NormalizeRef(b.RubroID),
				b.Enviado, model.NormalizeRef(b.Pais), model.NormalizeRef(b.Provincia), model.NormalizeRef(b.Ciudad))
			if err != nil {
				return fmt.Errorf("insert business %d: %w", b.ID, err)
			}
			result.Businesses += n
		}

		// explicit ids bypass the sequence; move it past the imported range
		_, err := tx.ExecContext(ctx, `
            SELECT setval(pg_get_serial_sequence('businesses', 'id'),
                          (SELECT COALESCE(MAX(id), 0) + 1 FROM businesses), false)
        `)
		if err != nil {
			return fmt.Errorf("advance business id sequence: %w", err)
		}
		return nil
	})
}

func (i *Importer) withTx(ctx context.Context, file string, fn func(tx *sqlx.Tx) error) error {
	tx, err := i.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("import %s: begin: %w", file, err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return fmt.Errorf("import %s: %w", file, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("import %s: commit: %w", file, err)
	}
	i.logger.Info("import file committed", "file", file)
	return nil
}

func insert(ctx context.Context, tx *sqlx.Tx, query string, args ...interface{}) (int, error) {
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
