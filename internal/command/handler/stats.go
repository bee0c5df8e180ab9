package handler

import (
	"context"
	"encoding/json"

	"edulift/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type StatsHandler struct {
	logger      *zap.Logger
	userService *service.UserService
}

func NewStatsHandler(logger *zap.Logger, userService *service.UserService) *StatsHandler {
	return &StatsHandler{logger: logger, userService: userService}
}

// Print 以 JSON 輸出使用者統計
func (handler *StatsHandler) Print(ctx context.Context, cmd *cobra.Command, groupHomeID string) error {
	stats, err := handler.userService.GetStats(ctx, groupHomeID)
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(stats)
}
