//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/physync/internal/config"
)

func InitializeRuntime(cfg config.Config) (*Runtime, error) {
	wire.Build(ProviderSet, wire.Struct(new(Runtime), "*"))
	return nil, nil
}
