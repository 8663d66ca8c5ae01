//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"pokedex-backend/internal/config"

	"github.com/google/wire"
)

func initializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil
}
