package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"edulift/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNewUserDefaults(t *testing.T) {
	before := time.Now().UTC().Add(-time.Second)
	user := NewUser()

	assert.True(t, user.ID.IsZero())
	assert.Nil(t, user.Roles)
	assert.Nil(t, user.Profile)
	assert.Nil(t, user.ConsentFlags)
	assert.Nil(t, user.RiskFlags)
	require.NotNil(t, user.Preferences)
	assert.Equal(t, "en", user.Preferences.Language)
	assert.Equal(t, "UTC", user.Preferences.Timezone)
	assert.True(t, user.Preferences.EmailNotifications)
	assert.False(t, user.Preferences.SmsNotifications)
	assert.True(t, user.Preferences.PushNotifications)
	assert.Nil(t, user.Preferences.CustomPreferences)

	assert.True(t, user.CreatedAt.After(before))
	assert.Equal(t, user.CreatedAt, user.UpdatedAt)
	assert.Equal(t, user.CreatedAt, user.CreatedAt.Truncate(time.Millisecond))
}

func TestConstructors(t *testing.T) {
	legacy := NewLegacyUser("jdoe", "jdoe@example.com", "John", "Doe")
	assert.Equal(t, "jdoe", legacy.Username)
	assert.Equal(t, "jdoe@example.com", legacy.Email)
	assert.Equal(t, "John", legacy.FirstName)
	assert.Equal(t, "Doe", legacy.LastName)
	assert.NotNil(t, legacy.Preferences)

	roles := []core.Role{core.RoleStudent, core.RoleMentor}
	withRoles := NewUserWithRoles(roles, "s@example.com")
	assert.Equal(t, roles, withRoles.Roles)
	assert.Equal(t, "s@example.com", withRoles.Email)
	assert.Empty(t, withRoles.Username)
}

func TestConsentFlagsZeroValue(t *testing.T) {
	var flags ConsentFlags
	assert.False(t, flags.DataProcessingConsent)
	assert.False(t, flags.CommunicationConsent)
	assert.False(t, flags.EmergencyContactConsent)
	assert.False(t, flags.PhotoVideoConsent)
	assert.Nil(t, flags.ConsentTimestamp)
}

func TestPreferencesPartialJSONKeepsDefaults(t *testing.T) {
	var prefs Preferences
	require.NoError(t, json.Unmarshal([]byte(`{"language":"fr","smsNotifications":true}`), &prefs))

	assert.Equal(t, "fr", prefs.Language)
	assert.Equal(t, "UTC", prefs.Timezone)
	assert.True(t, prefs.EmailNotifications)
	assert.True(t, prefs.SmsNotifications)
	assert.True(t, prefs.PushNotifications)

	var explicit Preferences
	require.NoError(t, json.Unmarshal([]byte(`{"emailNotifications":false}`), &explicit))
	assert.False(t, explicit.EmailNotifications)
	assert.Equal(t, "en", explicit.Language)
}

func TestHasRole(t *testing.T) {
	user := NewUserWithRoles([]core.Role{core.RoleStudent, core.RoleStudent}, "a@b.c")
	assert.True(t, user.HasRole(core.RoleStudent))
	assert.False(t, user.HasRole(core.RoleAdmin))
	assert.False(t, NewUser().HasRole(core.RoleAdmin))
}

func TestUserString(t *testing.T) {
	user := NewUserWithRoles([]core.Role{core.RoleMentor}, "m@example.com")
	user.ID = primitive.NewObjectID()
	user.GroupHomeID = "gh-1"

	s := user.String()
	assert.True(t, strings.HasPrefix(s, "User{"))
	assert.Contains(t, s, user.ID.Hex())
	assert.Contains(t, s, "mentor")
	assert.Contains(t, s, "gh-1")
	assert.Contains(t, s, "m@example.com")

	var nilUser *User
	assert.Equal(t, "User<nil>", nilUser.String())
}

func TestUserBSONRoundTrip(t *testing.T) {
	ts := Now()
	user := NewUserWithRoles([]core.Role{core.RoleCounselor, core.RoleAdmin}, "c@example.com")
	user.ID = primitive.NewObjectID()
	user.Profile = &Profile{FirstName: "Ann", AdditionalInfo: map[string]any{"grade": "10"}}
	user.ConsentFlags = &ConsentFlags{DataProcessingConsent: true, ConsentTimestamp: &ts}
	user.RiskFlags = []string{"academic_risk"}

	raw, err := bson.Marshal(user)
	require.NoError(t, err)

	var decoded User
	require.NoError(t, bson.Unmarshal(raw, &decoded))
	assert.Equal(t, user.ID, decoded.ID)
	assert.Equal(t, user.Roles, decoded.Roles)
	assert.Equal(t, user.Email, decoded.Email)
	assert.Equal(t, "Ann", decoded.Profile.FirstName)
	assert.Equal(t, "10", decoded.Profile.AdditionalInfo["grade"])
	assert.True(t, decoded.ConsentFlags.DataProcessingConsent)
	assert.True(t, ts.Equal(*decoded.ConsentFlags.ConsentTimestamp))
	assert.Equal(t, *user.Preferences, *decoded.Preferences)
	assert.Equal(t, user.RiskFlags, decoded.RiskFlags)
	assert.True(t, user.CreatedAt.Equal(decoded.CreatedAt))
}

func TestNestedMapsDecodeAsPlainMaps(t *testing.T) {
	user := NewUserWithRoles([]core.Role{core.RoleStudent}, "nested@example.com")
	user.ID = primitive.NewObjectID()
	user.Profile = &Profile{AdditionalInfo: map[string]any{"school": map[string]any{"grade": "10"}}}
	user.Preferences.CustomPreferences = map[string]any{"layout": map[string]any{"dense": true}}

	raw, err := bson.Marshal(user)
	require.NoError(t, err)
	var got User
	require.NoError(t, bson.Unmarshal(raw, &got))

	school, ok := got.Profile.AdditionalInfo["school"].(map[string]any)
	require.True(t, ok, "got %T", got.Profile.AdditionalInfo["school"])
	assert.Equal(t, "10", school["grade"])
	layout, ok := got.Preferences.CustomPreferences["layout"].(map[string]any)
	require.True(t, ok, "got %T", got.Preferences.CustomPreferences["layout"])
	assert.Equal(t, true, layout["dense"])
}
