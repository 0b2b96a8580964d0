package app

import (
	"github.com/robfig/cron/v3"
	"github.com/talkincode/storefront/config"
	"github.com/talkincode/storefront/internal/blobstore"
	"github.com/talkincode/storefront/internal/catalog"
	"github.com/talkincode/storefront/internal/imageedit"
	"github.com/talkincode/storefront/internal/storefront"
)

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// StoreProvider provides the blob store backing catalog and cart
type StoreProvider interface {
	Blob() blobstore.Store
}

// SessionProvider provides the storefront session and id generation
type SessionProvider interface {
	Session() *storefront.Session
	IDs() *catalog.IDGenerator
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// ImageEditorProvider provides the generative image editor, nil when disabled
type ImageEditorProvider interface {
	ImageEditor() imageedit.Editor
}

// AppContext combines all provider interfaces for full application context
type AppContext interface {
	ConfigProvider
	StoreProvider
	SessionProvider
	SchedulerProvider
	ImageEditorProvider

	// RunJobNow runs a background job immediately by name
	RunJobNow(name string) error
	// JobNames lists the jobs RunJobNow accepts
	JobNames() []string
}
