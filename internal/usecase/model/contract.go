package model

import (
	"context"

	"github.com/kailas-cloud/searchsync/internal/domain/mapping"
)

// MappingInstaller installs a generated mapping into the index backend.
type MappingInstaller interface {
	CreateMapping(ctx context.Context, index, typeName string, m mapping.Mapping) error
}
