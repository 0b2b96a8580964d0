package order

import (
	"context"
	"net/url"
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Sink delivers a finished order message to the shop.
type Sink interface {
	// Send returns a reference to the delivery, such as a link the
	// customer opens to confirm.
	Send(ctx context.Context, message string) (string, error)
}

// WhatsAppLinkSink turns messages into wa.me deep links.
type WhatsAppLinkSink struct {
	number string
}

func NewWhatsAppLinkSink(number string) (*WhatsAppLinkSink, error) {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, number)
	if digits == "" {
		return nil, errors.Errorf("whatsapp number %q has no digits", number)
	}
	return &WhatsAppLinkSink{number: digits}, nil
}

func (s *WhatsAppLinkSink) Send(ctx context.Context, message string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	link := "https://wa.me/" + s.number + "?text=" + strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	zap.L().Info("order link created", zap.String("number", s.number), zap.Int("length", len(message)))
	return link, nil
}
