// Package storage wires the four record collections to the configured
// driver.
//
// With the file driver each collection is <data_dir>/<name>.json. With the
// postgres driver each collection is one row of the collections table.
package storage

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/ezra-in-go/pkg/config"
	"github.com/doodlesbykumbi/ezra-in-go/pkg/db"
	"github.com/doodlesbykumbi/ezra-in-go/pkg/logging"
	"github.com/doodlesbykumbi/ezra-in-go/pkg/metrics"
	"github.com/doodlesbykumbi/ezra-in-go/pkg/model"
	"github.com/doodlesbykumbi/ezra-in-go/pkg/server/store"
	"github.com/doodlesbykumbi/ezra-in-go/pkg/server/store/file"
	gormstore "github.com/doodlesbykumbi/ezra-in-go/pkg/server/store/gorm"
)

// Collections groups the store for every record kind
type Collections struct {
	Organizations store.Collection[model.Organization]
	Locations     store.Collection[model.Location]
	Groups        store.Collection[model.Group]
	Members       store.Collection[model.Member]
	Health        store.HealthStore

	initializers []store.Initializer
	raw          map[string]store.RawCollection
	db           *gorm.DB
}

// Open builds the collections for cfg.StorageDriver. The caller must Close
// the result.
func Open(cfg *config.EzraConfig) (*Collections, error) {
	switch cfg.StorageDriver {
	case config.DriverFile:
		return NewFileCollections(cfg.DataDir), nil
	case config.DriverPostgres:
		database, err := db.Connect(db.Config{URL: cfg.DatabaseURL, Debug: cfg.LogLevel == "debug"})
		if err != nil {
			return nil, err
		}
		return NewGormCollections(database), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// NewFileCollections stores each collection as a JSON file in dir
func NewFileCollections(dir string) *Collections {
	orgs := file.NewCollection[model.Organization](dir, model.KindOrganization.Collection())
	locs := file.NewCollection[model.Location](dir, model.KindLocation.Collection())
	groups := file.NewCollection[model.Group](dir, model.KindGroup.Collection())
	members := file.NewCollection[model.Member](dir, model.KindMember.Collection())

	return &Collections{
		Organizations: metrics.InstrumentCollection[model.Organization](orgs),
		Locations:     metrics.InstrumentCollection[model.Location](locs),
		Groups:        metrics.InstrumentCollection[model.Group](groups),
		Members:       metrics.InstrumentCollection[model.Member](members),
		Health:        file.NewHealthStore(dir),
		initializers:  []store.Initializer{orgs, locs, groups, members},
		raw:           rawByName(orgs, locs, groups, members),
	}
}

// NewGormCollections stores each collection as a row in the collections table
func NewGormCollections(database *gorm.DB) *Collections {
	orgs := gormstore.NewCollection[model.Organization](database, model.KindOrganization.Collection())
	locs := gormstore.NewCollection[model.Location](database, model.KindLocation.Collection())
	groups := gormstore.NewCollection[model.Group](database, model.KindGroup.Collection())
	members := gormstore.NewCollection[model.Member](database, model.KindMember.Collection())

	return &Collections{
		Organizations: metrics.InstrumentCollection[model.Organization](orgs),
		Locations:     metrics.InstrumentCollection[model.Location](locs),
		Groups:        metrics.InstrumentCollection[model.Group](groups),
		Members:       metrics.InstrumentCollection[model.Member](members),
		Health:        gormstore.NewHealthStore(database),
		initializers:  []store.Initializer{orgs, locs, groups, members},
		raw:           rawByName(orgs, locs, groups, members),
		db:            database,
	}
}

type namedRawCollection interface {
	Name() string
	store.RawCollection
}

func rawByName(collections ...namedRawCollection) map[string]store.RawCollection {
	raw := make(map[string]store.RawCollection, len(collections))
	for _, c := range collections {
		raw[c.Name()] = c
	}
	return raw
}

// Ensure creates any collection that does not exist yet. Existing data is
// left alone.
func (c *Collections) Ensure(ctx context.Context) error {
	for _, initializer := range c.initializers {
		if err := initializer.Ensure(ctx); err != nil {
			return err
		}
	}
	logging.Ctx(ctx).Debug().Int("collections", len(c.initializers)).Msg("collections ensured")
	return nil
}

// Close releases the database connection, if any
func (c *Collections) Close() error {
	if c.db == nil {
		return nil
	}
	return db.Close(c.db)
}
