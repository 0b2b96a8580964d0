package app

import (
	"context"

	"github.com/talkincode/storefront/internal/domain"
	"go.uber.org/zap"
)

// checkCatalog restores the persisted catalog. Read failures leave the seed
// catalog in place so the shop still starts.
func (a *Application) checkCatalog(ctx context.Context) {
	if err := a.catalog.Load(ctx); err != nil {
		zap.L().Warn("catalog not restored, using seed catalog",
			zap.Bool("persistence", domain.IsPersistence(err)),
			zap.Error(err))
		return
	}
	zap.L().Info("catalog restored", zap.Int("products", len(a.catalog.List())))
}

// checkCart restores the persisted cart and drops entries whose products
// left the catalog while the shop was down.
func (a *Application) checkCart(ctx context.Context) {
	if err := a.cart.Load(ctx); err != nil {
		zap.L().Warn("cart not restored, starting empty", zap.Error(err))
		return
	}
	dropped, err := a.cart.Compact(ctx, a.catalog.Resolves)
	if err != nil {
		zap.L().Error("failed to compact restored cart", zap.Error(err))
		return
	}
	zap.L().Info("cart restored",
		zap.Int("entries", len(a.cart.Snapshot())),
		zap.Int("dropped", dropped))
}
