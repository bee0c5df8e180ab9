package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestParseRole(t *testing.T) {
	cases := map[string]Role{
		"student":   RoleStudent,
		"mentor":    RoleMentor,
		"counselor": RoleCounselor,
		"admin":     RoleAdmin,
	}
	for in, want := range cases {
		got, err := ParseRole(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	for _, in := range []string{"guardian", "", "ADMIN", "Mentor", " student ", "STUDENT"} {
		_, err := ParseRole(in)
		assert.Error(t, err, "%q", in)
	}
}

func TestRoleJSONRejectsNonCanonicalCase(t *testing.T) {
	var roles []Role
	assert.Error(t, json.Unmarshal([]byte(`[" STUDENT ","student"]`), &roles))

	var doc struct {
		Roles []Role `bson:"roles"`
	}
	raw, err := bson.Marshal(bson.M{"roles": bson.A{"Admin"}})
	require.NoError(t, err)
	assert.Error(t, bson.Unmarshal(raw, &doc))
}

func TestRolesReturnsCopy(t *testing.T) {
	roles := Roles()
	require.Len(t, roles, 4)
	roles[0] = "mutated"
	assert.Equal(t, RoleStudent, Roles()[0])
}

func TestRoleJSON(t *testing.T) {
	var roles []Role
	require.NoError(t, json.Unmarshal([]byte(`["student","admin","student"]`), &roles))
	assert.Equal(t, []Role{RoleStudent, RoleAdmin, RoleStudent}, roles)

	b, err := json.Marshal(roles)
	require.NoError(t, err)
	assert.JSONEq(t, `["student","admin","student"]`, string(b))

	assert.Error(t, json.Unmarshal([]byte(`["student","janitor"]`), &roles))
}

func TestRoleBSON(t *testing.T) {
	type doc struct {
		Roles []Role `bson:"roles"`
	}
	raw, err := bson.Marshal(doc{Roles: []Role{RoleMentor, RoleCounselor}})
	require.NoError(t, err)

	var decoded doc
	require.NoError(t, bson.Unmarshal(raw, &decoded))
	assert.Equal(t, []Role{RoleMentor, RoleCounselor}, decoded.Roles)

	bad, err := bson.Marshal(bson.M{"roles": bson.A{"janitor"}})
	require.NoError(t, err)
	assert.Error(t, bson.Unmarshal(bad, &decoded))

	wrongType, err := bson.Marshal(bson.M{"roles": bson.A{42}})
	require.NoError(t, err)
	assert.Error(t, bson.Unmarshal(wrongType, &decoded))
}
