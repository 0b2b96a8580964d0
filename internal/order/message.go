package order

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/talkincode/storefront/internal/domain"
)

// ErrEmptyOrder is returned when checking out a cart without lines.
var ErrEmptyOrder = errors.New("order is empty")

// Message builds the customer-facing order text sent to the shop.
func (f Formatter) Message(shopName string, lines []domain.CartLine) (string, error) {
	if len(lines) == 0 {
		return "", ErrEmptyOrder
	}
	sum := f.Format(lines)

	var b strings.Builder
	fmt.Fprintf(&b, "Olá! Gostaria de fazer um pedido no *%s*:\n\n", shopName)
	for _, l := range lines {
		fmt.Fprintf(&b, "• *%dx* %s - %s\n", l.Quantity, l.DisplayName, f.Money(l.LineTotal))
	}
	fmt.Fprintf(&b, "\n💰 *Total: %s*\n\n", f.Money(sum.Total))
	b.WriteString("_Aguardo seu retorno para combinarmos a entrega e o pagamento!_")
	return b.String(), nil
}
