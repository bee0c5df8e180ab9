package core

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Role 使用者角色，對外一律以小寫字串表示
type Role string

const (
	RoleStudent   Role = "student"   // 學生
	RoleMentor    Role = "mentor"    // 導師
	RoleCounselor Role = "counselor" // 輔導員
	RoleAdmin     Role = "admin"     // 管理員
)

var validRoles = []Role{RoleStudent, RoleMentor, RoleCounselor, RoleAdmin}

// Roles 回傳所有合法角色（固定順序）
func Roles() []Role {
	out := make([]Role, len(validRoles))
	copy(out, validRoles)
	return out
}

func (r Role) IsValid() bool {
	for _, v := range validRoles {
		if r == v {
			return true
		}
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// ParseRole 只接受四個小寫 token 原字串，不做大小寫或空白正規化
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// UnmarshalText 讓 JSON / query 解碼時拒絕未知角色
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// UnmarshalBSONValue 讓 Mongo 解碼時拒絕未知角色
func (r *Role) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	value, ok := bson.RawValue{Type: t, Value: data}.StringValueOK()
	if !ok {
		return fmt.Errorf("role: unexpected bson type %s", t)
	}
	return r.UnmarshalText([]byte(value))
}
