package config

type Catalog struct{}

var _ CatalogConfig = Catalog{}

// GetAPIBase returns the base URL of the catalog API, e.g.
// "https://api.example.org/api".
func (Catalog) GetAPIBase() string {
	return GetEnv("API_BASE", "http://localhost:8000/api")
}
