package repository

import (
	"context"
	"fmt"

	"edulift/internal/core"
	"edulift/internal/database/mongodb/model"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// IndexModels 回傳要套用在 users 的索引（含選用的 username 唯一索引）
func (repository *UserRepository) IndexModels() []mongo.IndexModel {
	indexes := make([]mongo.IndexModel, 0, len(model.UserIndexes)+1)
	indexes = append(indexes, model.UserIndexes...)
	if repository.uniqueUsername {
		indexes = append(indexes, model.UsernameUniqueIndex)
	}
	return indexes
}

// EnsureIndexes 逐一建立索引；單一失敗只記 warning 並繼續，回傳所有失敗
func (repository *UserRepository) EnsureIndexes(contextValue context.Context) (failures []error) {
	indexes := repository.IndexModels()
	contextValue, span, endSpan := repository.trace.WithSpan(contextValue, string(core.SpanEnsureIndexes))
	defer func() {
		repository.trace.ApplyTraceAttributes(span, core.TraceIndexMeta{
			Collection: repository.collection.Name(),
			Requested:  len(indexes),
			Failed:     len(failures),
		})
		var spanError error
		if len(failures) > 0 {
			spanError = fmt.Errorf("%d of %d indexes failed", len(failures), len(indexes))
		}
		endSpan(spanError)
	}()

	indexView := repository.collection.Indexes()
	for _, index := range indexes {
		name := indexName(index)
		if _, err := indexView.CreateOne(contextValue, index); err != nil {
			repository.logger.Warn("create index failed",
				zap.String("collection", repository.collection.Name()),
				zap.String("index", name),
				zap.Error(err),
			)
			failures = append(failures, fmt.Errorf("index %s: %w", name, err))
			continue
		}
		repository.logger.Debug("index ensured",
			zap.String("collection", repository.collection.Name()),
			zap.String("index", name),
		)
	}
	return failures
}

func indexName(index mongo.IndexModel) string {
	if index.Options != nil && index.Options.Name != nil {
		return *index.Options.Name
	}
	return fmt.Sprintf("%v", index.Keys)
}
