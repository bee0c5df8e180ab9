package database

import (
	client "edulift/internal/database/client"
	fluentdRepo "edulift/internal/database/fluentd/repository"
	mongoRepo "edulift/internal/database/mongodb/repository"
	redisRepo "edulift/internal/database/redis/repository"

	"github.com/google/wire"
)

// ProviderSet 定義所有 DB Client 的依賴
var ProviderSet = wire.NewSet(
	client.NewMongoClient,
	client.NewRedisClient,
	client.NewFluentdClient,
	mongoRepo.ProviderSet,
	redisRepo.ProviderSet,
	fluentdRepo.ProviderSet,
)
