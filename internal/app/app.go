package app

import (
	"context"
	"os"
	"sync/atomic"
	"time"
	_ "time/tzdata"

	"github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/talkincode/storefront/config"
	"github.com/talkincode/storefront/internal/blobstore"
	"github.com/talkincode/storefront/internal/cart"
	"github.com/talkincode/storefront/internal/catalog"
	"github.com/talkincode/storefront/internal/imageedit"
	"github.com/talkincode/storefront/internal/order"
	"github.com/talkincode/storefront/internal/storefront"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	catalogKey = "catalog"
	cartKey    = "cart"

	idNode int64 = 1
)

type Application struct {
	appConfig *config.AppConfig
	blob      blobstore.Store
	bus       EventBus.Bus
	catalog   *catalog.Store
	cart      *cart.State
	session   *storefront.Session
	ids       *catalog.IDGenerator
	editor    imageedit.Editor
	sched     *cron.Cron
	storeUp   atomic.Bool
}

// Ensure Application implements all interfaces
var (
	_ ConfigProvider      = (*Application)(nil)
	_ StoreProvider       = (*Application)(nil)
	_ SessionProvider     = (*Application)(nil)
	_ SchedulerProvider   = (*Application)(nil)
	_ ImageEditorProvider = (*Application)(nil)
	_ AppContext          = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) Blob() blobstore.Store {
	return a.blob
}

func (a *Application) Session() *storefront.Session {
	return a.session
}

func (a *Application) IDs() *catalog.IDGenerator {
	return a.ids
}

// ImageEditor returns nil when no api key is configured.
func (a *Application) ImageEditor() imageedit.Editor {
	return a.editor
}

// OverrideImageEditor replaces the image editor (used in tests).
func (a *Application) OverrideImageEditor(e imageedit.Editor) {
	a.editor = e
}

// Scheduler returns the cron scheduler
func (a *Application) Scheduler() *cron.Cron {
	return a.sched
}

func (a *Application) Init(ctx context.Context) error {
	cfg := a.appConfig
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	initLogger(cfg.Logger)

	blob, err := blobstore.Open(ctx, cfg)
	if err != nil {
		return errors.Wrapf(err, "open %s store", cfg.Store.Type)
	}
	zap.S().Infof("Blob store ready, type: %s", cfg.Store.Type)

	if err := a.Wire(ctx, blob); err != nil {
		_ = blob.Close()
		return err
	}

	if cfg.ImageEdit.APIKey != "" {
		editor, err := imageedit.NewGeminiEditor(ctx, cfg.ImageEdit.APIKey, cfg.ImageEdit.Model)
		if err != nil {
			zap.L().Warn("image editing disabled", zap.Error(err))
		} else {
			a.editor = editor
		}
	}

	a.initJob()
	return nil
}

// Wire builds the catalog, the cart and the storefront session on top of
// an opened blob store and restores their persisted state.
func (a *Application) Wire(ctx context.Context, blob blobstore.Store) error {
	cfg := a.appConfig
	ids, err := catalog.NewIDGenerator(idNode)
	if err != nil {
		return err
	}
	sink, err := order.NewWhatsAppLinkSink(cfg.Shop.WhatsAppNumber)
	if err != nil {
		return err
	}

	a.blob = blob
	a.storeUp.Store(true)
	a.ids = ids
	a.bus = EventBus.New()
	a.catalog = catalog.NewStore(blob, cfg.Store.KeyPrefix+catalogKey, a.bus)
	a.cart = cart.NewState(blob, cfg.Store.KeyPrefix+cartKey, a.bus)
	a.catalog.SetPurger(a.cart)

	a.checkCatalog(ctx)
	a.checkCart(ctx)

	a.session, err = storefront.NewSession(storefront.Options{
		Catalog: a.catalog,
		Cart:    a.cart,
		Bus:     a.bus,
		Formatter: order.Formatter{
			CurrencySymbol:   cfg.Shop.CurrencySymbol,
			DecimalSeparator: cfg.Shop.DecimalSeparator,
		},
		Sink:     sink,
		ShopName: cfg.Shop.Name,
		Priority: cfg.Shop.Categories,
	})
	return err
}

func initLogger(cfg config.LogConfig) {
	var zapConfig zap.Config
	if cfg.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.OutputPaths = []string{"stdout"}

	var logger *zap.Logger
	if cfg.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller())
	} else {
		var err error
		logger, err = zapConfig.Build(zap.AddCaller())
		if err != nil {
			panic(err)
		}
	}

	zap.ReplaceGlobals(logger)
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		<-a.sched.Stop().Done()
	}
	if a.session != nil {
		a.session.Close()
	}
	if a.blob != nil {
		if err := a.blob.Close(); err != nil {
			zap.L().Warn("close blob store", zap.Error(err))
		}
	}
	_ = zap.L().Sync()
}
