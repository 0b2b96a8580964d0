package catalog

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/talkincode/storefront/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// snapshotDoc is the persisted form of the catalog.
type snapshotDoc struct {
	Products []domain.Product `json:"products"`
}

// EncodeSnapshot serializes the full catalog.
func EncodeSnapshot(products []domain.Product) ([]byte, error) {
	if products == nil {
		products = []domain.Product{}
	}
	return json.Marshal(snapshotDoc{Products: products})
}

// DecodeSnapshot parses and validates a persisted catalog.
func DecodeSnapshot(data []byte) ([]domain.Product, error) {
	var doc snapshotDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "decode catalog snapshot")
	}
	if err := domain.ValidateCatalog(doc.Products); err != nil {
		return nil, errors.Wrap(err, "persisted catalog is inconsistent")
	}
	return doc.Products, nil
}
