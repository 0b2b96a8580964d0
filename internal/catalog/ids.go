package catalog

import (
	"github.com/bwmarrin/snowflake"
	"github.com/pkg/errors"
	"github.com/talkincode/storefront/internal/domain"
)

// IDGenerator hands out ids for products and variants created without one.
type IDGenerator struct {
	node *snowflake.Node
}

func NewIDGenerator(nodeID int64) (*IDGenerator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, errors.Wrapf(err, "snowflake node %d", nodeID)
	}
	return &IDGenerator{node: node}, nil
}

// AssignIDs fills a blank product id and blank variant ids. Variant ids are
// prefixed with the product id so they stay unique across the catalog.
func (g *IDGenerator) AssignIDs(p domain.Product) domain.Product {
	p = p.Clone()
	if p.ID == "" {
		p.ID = domain.ProductID(g.node.Generate().String())
	}
	for i := range p.Variants {
		if p.Variants[i].ID == "" {
			p.Variants[i].ID = domain.LineID(string(p.ID) + "-" + g.node.Generate().String())
		}
	}
	return p
}
