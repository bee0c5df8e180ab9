package repository

import (
	"github.com/google/wire"
)

// 統一管理所有 MongoDB repository
type MongoDBRepository struct {
	userRepo *UserRepository
}

// 建立 MongoDB repository 物件
func NewMongoDBRepository(userRepo *UserRepository) *MongoDBRepository {
	return &MongoDBRepository{userRepo: userRepo}
}

func (r *MongoDBRepository) User() *UserRepository {
	return r.userRepo
}

// Wire 依賴提供
var ProviderSet = wire.NewSet(
	NewUserRepository,
	NewMongoDBRepository)
