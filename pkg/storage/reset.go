package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/doodlesbykumbi/ezra-in-go/pkg/logging"
	"github.com/doodlesbykumbi/ezra-in-go/pkg/metrics"
	"github.com/doodlesbykumbi/ezra-in-go/pkg/model"
	"github.com/doodlesbykumbi/ezra-in-go/pkg/server/store"
	"github.com/doodlesbykumbi/ezra-in-go/pkg/server/store/file"
)

// Reset replaces every collection with the contents of
// <backupDir>/<name>.json. Each backup is checked to decode as a collection
// of its kind and is then copied byte for byte, so keys the records do not
// model are kept. A collection whose backup is missing or malformed aborts
// the reset before it is written; collections already reset stay reset.
func (c *Collections) Reset(ctx context.Context, backupDir string) error {
	steps := []func(context.Context) error{
		func(ctx context.Context) error {
			return restore(ctx, file.NewCollection[model.Organization](backupDir, c.Organizations.Name()), c.Organizations, c.raw)
		},
		func(ctx context.Context) error {
			return restore(ctx, file.NewCollection[model.Location](backupDir, c.Locations.Name()), c.Locations, c.raw)
		},
		func(ctx context.Context) error {
			return restore(ctx, file.NewCollection[model.Group](backupDir, c.Groups.Name()), c.Groups, c.raw)
		},
		func(ctx context.Context) error {
			return restore(ctx, file.NewCollection[model.Member](backupDir, c.Members.Name()), c.Members, c.raw)
		},
	}

	for _, step := range steps {
		if err := step(ctx); err != nil {
			return fmt.Errorf("reset from %s: %w", backupDir, err)
		}
	}
	return nil
}

func restore[T any](ctx context.Context, src *file.Collection[T], dst store.Collection[T], raw map[string]store.RawCollection) error {
	data, err := src.LoadRaw(ctx)
	if err != nil {
		return err
	}
	records, err := store.DecodeRecords[T](data)
	if err != nil {
		return &store.ReadError{Collection: src.Name(), Err: fmt.Errorf("%s: %w", src.Path(), err)}
	}

	if target, ok := raw[dst.Name()]; ok {
		start := time.Now()
		err = target.SaveRaw(ctx, data)
		metrics.RecordStoreOperation(dst.Name(), "save", time.Since(start), err)
	} else {
		err = dst.SaveAll(ctx, records)
	}
	if err != nil {
		return err
	}

	logging.Ctx(ctx).Info().Str("collection", dst.Name()).Int("records", len(records)).Msg("collection restored")
	return nil
}
