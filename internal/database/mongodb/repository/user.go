package repository

import (
	"context"
	"errors"
	"fmt"

	"edulift/internal/core"
	client "edulift/internal/database/client"
	"edulift/internal/database/mongodb/model"
	"edulift/internal/telemetry"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

type UserRepository struct {
	collection     *mongo.Collection
	logger         *zap.Logger
	trace          *telemetry.Trace
	uniqueUsername bool
}

// NewUserRepository 索引由啟動流程呼叫 EnsureIndexes 建立，不在這裡做
func NewUserRepository(logger *zap.Logger, trace *telemetry.Trace, mongoClient *client.MongoClient) *UserRepository {
	return NewUserRepositoryWithCollection(
		logger,
		trace,
		mongoClient.Database().Collection(string(core.MongoCollectionUsers)),
		mongoClient.UniqueUsername(),
	)
}

// NewUserRepositoryWithCollection 直接指定 collection（測試用）
func NewUserRepositoryWithCollection(
	logger *zap.Logger,
	trace *telemetry.Trace,
	collection *mongo.Collection,
	uniqueUsername bool,
) *UserRepository {
	return &UserRepository{
		collection:     collection,
		logger:         logger,
		trace:          trace,
		uniqueUsername: uniqueUsername,
	}
}

// Save：沒有 _id 時新增（產生 ObjectID），否則依 _id 整份覆寫（不存在則 upsert）
func (repository *UserRepository) Save(
	contextValue context.Context,
	user *model.User,
) (_ *model.User, returnedError error) {

	if user == nil {
		return nil, errors.New("save: nil user")
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
		insertResult, insertError := repository.collection.InsertOne(contextValue, user)
		if insertError != nil {
			user.ID = primitive.NilObjectID
			return nil, insertError
		}
		objectID, ok := insertResult.InsertedID.(primitive.ObjectID)
		if !ok {
			return nil, fmt.Errorf("unexpected InsertedID type: %T", insertResult.InsertedID)
		}
		user.ID = objectID
		return user, nil
	}

	_, replaceError := repository.collection.ReplaceOne(
		contextValue,
		bson.M{"_id": user.ID},
		user,
		options.Replace().SetUpsert(true),
	)
	if replaceError != nil {
		return nil, replaceError
	}
	return user, nil
}

// FindAll：全量列舉
func (repository *UserRepository) FindAll(contextValue context.Context) ([]*model.User, error) {
	return repository.findMany(contextValue, bson.M{})
}

// FindByID：找不到時 found=false、error=nil
func (repository *UserRepository) FindByID(
	contextValue context.Context,
	userIdentifier primitive.ObjectID,
) (*model.User, bool, error) {
	return repository.findOne(contextValue, bson.M{"_id": userIdentifier})
}

func (repository *UserRepository) DeleteByID(
	contextValue context.Context,
	userIdentifier primitive.ObjectID,
) (returnedError error) {
	_, returnedError = repository.collection.DeleteOne(contextValue, bson.M{"_id": userIdentifier})
	return returnedError
}

func (repository *UserRepository) ExistsByID(contextValue context.Context, userIdentifier primitive.ObjectID) (bool, error) {
	return repository.exists(contextValue, bson.M{"_id": userIdentifier})
}

func (repository *UserRepository) Count(contextValue context.Context) (int64, error) {
	return repository.collection.CountDocuments(contextValue, bson.M{})
}

func (repository *UserRepository) FindByUsername(contextValue context.Context, username string) (*model.User, bool, error) {
	return repository.findOne(contextValue, bson.M{"username": username})
}

func (repository *UserRepository) FindByEmail(contextValue context.Context, email string) (*model.User, bool, error) {
	return repository.findOne(contextValue, bson.M{"email": email})
}

func (repository *UserRepository) ExistsByUsername(contextValue context.Context, username string) (bool, error) {
	return repository.exists(contextValue, bson.M{"username": username})
}

func (repository *UserRepository) ExistsByEmail(contextValue context.Context, email string) (bool, error) {
	return repository.exists(contextValue, bson.M{"email": email})
}

// FindByRolesContaining：roles 陣列包含該角色（Mongo 對陣列做等值比對即為 contains）
func (repository *UserRepository) FindByRolesContaining(contextValue context.Context, role core.Role) ([]*model.User, error) {
	return repository.findMany(contextValue, bson.M{"roles": role})
}

func (repository *UserRepository) FindByGroupHomeID(contextValue context.Context, groupHomeID string) ([]*model.User, error) {
	return repository.findMany(contextValue, bson.M{"groupHomeId": groupHomeID})
}

func (repository *UserRepository) FindByGroupHomeIDAndRolesContaining(
	contextValue context.Context,
	groupHomeID string,
	role core.Role,
) ([]*model.User, error) {
	return repository.findMany(contextValue, bson.M{"groupHomeId": groupHomeID, "roles": role})
}

// FindByRiskFlagsIn：riskFlags 與給定集合有交集
func (repository *UserRepository) FindByRiskFlagsIn(contextValue context.Context, riskFlags []string) ([]*model.User, error) {
	if riskFlags == nil {
		riskFlags = []string{}
	}
	return repository.findMany(contextValue, bson.M{"riskFlags": bson.M{"$in": riskFlags}})
}

// FindByRolesIn：roles 與給定集合有交集
func (repository *UserRepository) FindByRolesIn(contextValue context.Context, roles []core.Role) ([]*model.User, error) {
	if roles == nil {
		roles = []core.Role{}
	}
	return repository.findMany(contextValue, bson.M{"roles": bson.M{"$in": roles}})
}

func (repository *UserRepository) ExistsByGroupHomeID(contextValue context.Context, groupHomeID string) (bool, error) {
	return repository.exists(contextValue, bson.M{"groupHomeId": groupHomeID})
}

func (repository *UserRepository) CountByRolesContaining(contextValue context.Context, role core.Role) (int64, error) {
	return repository.collection.CountDocuments(contextValue, bson.M{"roles": role})
}

func (repository *UserRepository) CountByGroupHomeID(contextValue context.Context, groupHomeID string) (int64, error) {
	return repository.collection.CountDocuments(contextValue, bson.M{"groupHomeId": groupHomeID})
}

func (repository *UserRepository) FindByDataProcessingConsent(contextValue context.Context, consent bool) ([]*model.User, error) {
	return repository.findMany(contextValue, bson.M{"consentFlags.dataProcessingConsent": consent})
}

func (repository *UserRepository) FindByCommunicationConsent(contextValue context.Context, consent bool) ([]*model.User, error) {
	return repository.findMany(contextValue, bson.M{"consentFlags.communicationConsent": consent})
}

func (repository *UserRepository) FindByPreferenceLanguage(contextValue context.Context, language string) ([]*model.User, error) {
	return repository.findMany(contextValue, bson.M{"preferences.language": language})
}

func (repository *UserRepository) FindUsersWithEmailNotificationsEnabled(contextValue context.Context) ([]*model.User, error) {
	return repository.findMany(contextValue, bson.M{"preferences.emailNotifications": true})
}

// Ping 用於 readiness 檢查
func (repository *UserRepository) Ping(contextValue context.Context) error {
	return repository.collection.Database().Client().Ping(contextValue, readpref.Primary())
}

func (repository *UserRepository) findOne(contextValue context.Context, filter bson.M) (*model.User, bool, error) {
	var user model.User
	if err := repository.collection.FindOne(contextValue, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return &user, true, nil
}

// findMany 沒有結果時回傳空 slice（不會是 nil）
func (repository *UserRepository) findMany(contextValue context.Context, filter bson.M) (_ []*model.User, returnedError error) {
	cursor, findError := repository.collection.Find(contextValue, filter)
	if findError != nil {
		return nil, findError
	}
	defer cursor.Close(contextValue)

	users := make([]*model.User, 0)
	for cursor.Next(contextValue) {
		var user model.User
		if decodeError := cursor.Decode(&user); decodeError != nil {
			return nil, decodeError
		}
		users = append(users, &user)
	}
	if cursorError := cursor.Err(); cursorError != nil {
		return nil, cursorError
	}
	return users, nil
}

func (repository *UserRepository) exists(contextValue context.Context, filter bson.M) (bool, error) {
	count, err := repository.collection.CountDocuments(contextValue, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
