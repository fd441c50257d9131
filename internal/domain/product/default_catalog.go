package product

import (
	"bytes"
	_ "embed"
)

//go:embed default_catalog.json
var defaultCatalog []byte

// Default returns the catalog bundled with the binary.
func Default() (*Catalog, error) {
	return Decode(bytes.NewReader(defaultCatalog))
}
