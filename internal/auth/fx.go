package auth

import (
	"github.com/praxislabs/praxis/internal/auth/service"
	"go.uber.org/fx"
)

var Module = fx.Module("auth",
	fx.Provide(service.NewResolver),
)
