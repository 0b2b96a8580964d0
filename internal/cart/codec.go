package cart

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/talkincode/storefront/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type snapshotDoc struct {
	Quantities domain.Quantities `json:"quantities"`
}

// EncodeSnapshot serializes the cart. Map keys are written sorted so equal
// carts encode to equal bytes.
func EncodeSnapshot(q domain.Quantities) ([]byte, error) {
	return json.Marshal(snapshotDoc{Quantities: q.Clone()})
}

// DecodeSnapshot parses a persisted cart, dropping non-positive entries.
func DecodeSnapshot(data []byte) (domain.Quantities, error) {
	var doc snapshotDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "decode cart snapshot")
	}
	return doc.Quantities.Clone(), nil
}
