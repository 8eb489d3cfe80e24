package model

// Country is the root of the geographic hierarchy
type Country struct {
	ID        string     `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	Provinces []Province `json:"provinces" db:"-"`
}

// Province belongs to a country
type Province struct {
	ID         string `json:"id" db:"id"`
	Name       string `json:"name" db:"name"`
	CountryID  string `json:"country_id" db:"country_id"`
	Population *int64 `json:"population,omitempty" db:"population"`
	Cities     []City `json:"cities" db:"-"`
}

// City belongs to a province
type City struct {
	ID         string `json:"id" db:"id"`
	Name       string `json:"name" db:"name"`
	ProvinceID string `json:"province_id" db:"province_id"`
}

// Category represents a rubro
type Category struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// DataResponse is the full payload the front-end loads on start-up
type DataResponse struct {
	Businesses []Business `json:"businesses"`
	Countries  []Country  `json:"countries"`
	Categories []Category `json:"categories"`
}
