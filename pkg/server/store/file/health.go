package file

import (
	"context"
	"fmt"
	"os"
)

// HealthStore checks that the data directory is usable
type HealthStore struct {
	dir string
}

// NewHealthStore creates a new HealthStore
func NewHealthStore(dir string) *HealthStore {
	return &HealthStore{dir: dir}
}

// CheckConnectivity verifies the data directory exists
func (s *HealthStore) CheckConnectivity(ctx context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.dir)
	}
	return nil
}
