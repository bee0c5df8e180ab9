package service

import (
	"edulift/internal/database/mongodb/repository"

	"github.com/google/wire"
)

var ProviderSet = wire.NewSet(
	NewUserService,
	NewHealthService,
	wire.Bind(new(UserStore), new(*repository.UserRepository)),
)
