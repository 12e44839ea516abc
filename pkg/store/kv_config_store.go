package store

import (
	"context"

	"github.com/aivox/dialoguecore/pkg/config"
)

// StaticConfigStore serves ConfigStore lookups directly out of a loaded
// config.Config, the common case where provider rows live in the same YAML
// document as the rest of the daemon configuration (spec.md §6.4).
type StaticConfigStore struct {
	cfg *config.Config
}

// NewStaticConfigStore wraps cfg as a ConfigStore.
func NewStaticConfigStore(cfg *config.Config) *StaticConfigStore {
	return &StaticConfigStore{cfg: cfg}
}

func (s *StaticConfigStore) ByID(_ context.Context, id string) (config.ProviderConfig, bool, error) {
	p, ok := s.cfg.ProviderByID(id)
	return p, ok, nil
}

func (s *StaticConfigStore) ByModelType(_ context.Context, modelType string) (config.ProviderConfig, bool, error) {
	p, ok := s.cfg.ProviderByModelType(modelType)
	return p, ok, nil
}
