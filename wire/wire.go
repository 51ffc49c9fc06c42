//go:build wireinject
// +build wireinject

package wire

import (
	"github.com/google/wire"

	"github.com/Digital-Creators-Team/lotto-ledger/config"
)

// InitializeRuntime builds the serve runtime from a loaded config.
func InitializeRuntime(cfg *config.Config) (*Runtime, func(), error) {
	wire.Build(FullSet)
	return nil, nil, nil
}
