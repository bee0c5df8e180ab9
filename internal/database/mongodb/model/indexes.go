package model

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserIndexes 啟動時建立，已存在則略過
var UserIndexes = []mongo.IndexModel{
	{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetName("uniq_email").SetUnique(true),
	},
	{
		Keys:    bson.D{{Key: "groupHomeId", Value: 1}},
		Options: options.Index().SetName("idx_groupHomeId"),
	},
	{
		Keys:    bson.D{{Key: "roles", Value: 1}},
		Options: options.Index().SetName("idx_roles"),
	},
	{
		Keys:    bson.D{{Key: "roles", Value: 1}, {Key: "groupHomeId", Value: 1}},
		Options: options.Index().SetName("idx_roles_groupHomeId"),
	},
	{ // 依建立時間倒序查列表
		Keys:    bson.D{{Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("idx_createdAt_desc"),
	},
	{
		Keys:    bson.D{{Key: "riskFlags", Value: 1}},
		Options: options.Index().SetName("idx_riskFlags"),
	},
}

// UsernameUniqueIndex 只約束有字串值的 username，未填的文件不受影響
var UsernameUniqueIndex = mongo.IndexModel{
	Keys: bson.D{{Key: "username", Value: 1}},
	Options: options.Index().
		SetName("uniq_username").
		SetUnique(true).
		SetPartialFilterExpression(bson.M{"username": bson.M{"$type": "string"}}),
}
