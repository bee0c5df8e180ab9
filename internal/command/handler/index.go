package handler

import (
	"context"
	"fmt"

	"edulift/internal/database/mongodb/repository"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type IndexHandler struct {
	logger   *zap.Logger
	userRepo *repository.UserRepository
}

func NewIndexHandler(logger *zap.Logger, userRepo *repository.UserRepository) *IndexHandler {
	return &IndexHandler{logger: logger, userRepo: userRepo}
}

// EnsureIndexes 建立 users 索引；有任何失敗就回傳錯誤讓指令以非 0 結束
func (handler *IndexHandler) EnsureIndexes(ctx context.Context, cmd *cobra.Command) error {
	requested := handler.userRepo.IndexModels()
	failures := handler.userRepo.EnsureIndexes(ctx)
	cmd.Printf("indexes requested: %d, failed: %d\n", len(requested), len(failures))
	for _, failure := range failures {
		cmd.PrintErrln(" -", failure)
	}
	if len(failures) > 0 {
		return fmt.Errorf("%d index(es) could not be created", len(failures))
	}
	return nil
}
