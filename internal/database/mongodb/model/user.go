package model

import (
	"encoding/json"
	"fmt"
	"time"

	"edulift/internal/core"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User 一位使用者一份文件（collection: users）
type User struct {
	ID           primitive.ObjectID `json:"id" bson:"_id"`                                        // 使用者唯一識別碼，首次儲存時產生
	Roles        []core.Role        `json:"roles" bson:"roles"`                                   // 角色，可同時擁有多個
	GroupHomeID  string             `json:"groupHomeId,omitempty" bson:"groupHomeId,omitempty"`   // 所屬 group home（外部實體）
	Profile      *Profile           `json:"profile,omitempty" bson:"profile,omitempty"`           // 個人資料
	ConsentFlags *ConsentFlags      `json:"consentFlags,omitempty" bson:"consentFlags,omitempty"` // 同意事項
	Preferences  *Preferences       `json:"preferences" bson:"preferences"`                       // 偏好設定（一律存在）
	RiskFlags    []string           `json:"riskFlags,omitempty" bson:"riskFlags,omitempty"`       // 風險標記，例如 academic_risk
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`                           // 建立時間，之後不再變動

	// 舊版欄位（相容用）
	Username  string    `json:"username,omitempty" bson:"username,omitempty"`
	Email     string    `json:"email" bson:"email"`
	FirstName string    `json:"firstName,omitempty" bson:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty" bson:"lastName,omitempty"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

type Profile struct {
	FirstName            string         `json:"firstName,omitempty" bson:"firstName,omitempty"`
	LastName             string         `json:"lastName,omitempty" bson:"lastName,omitempty"`
	PhoneNumber          string         `json:"phoneNumber,omitempty" bson:"phoneNumber,omitempty"`
	DateOfBirth          string         `json:"dateOfBirth,omitempty" bson:"dateOfBirth,omitempty"` // 不做日期格式驗證
	Address              string         `json:"address,omitempty" bson:"address,omitempty"`
	EmergencyContact     string         `json:"emergencyContact,omitempty" bson:"emergencyContact,omitempty"`
	EmergencyPhoneNumber string         `json:"emergencyPhoneNumber,omitempty" bson:"emergencyPhoneNumber,omitempty"`
	AdditionalInfo       map[string]any `json:"additionalInfo,omitempty" bson:"additionalInfo,omitempty"`
}

func NewProfile(firstName, lastName string) *Profile {
	return &Profile{FirstName: firstName, LastName: lastName}
}

type ConsentFlags struct {
	DataProcessingConsent   bool       `json:"dataProcessingConsent" bson:"dataProcessingConsent"`
	CommunicationConsent    bool       `json:"communicationConsent" bson:"communicationConsent"`
	EmergencyContactConsent bool       `json:"emergencyContactConsent" bson:"emergencyContactConsent"`
	PhotoVideoConsent       bool       `json:"photoVideoConsent" bson:"photoVideoConsent"`
	ConsentTimestamp        *time.Time `json:"consentTimestamp,omitempty" bson:"consentTimestamp,omitempty"`
}

type Preferences struct {
	Language           string         `json:"language" bson:"language"`
	Timezone           string         `json:"timezone" bson:"timezone"`
	EmailNotifications bool           `json:"emailNotifications" bson:"emailNotifications"`
	SmsNotifications   bool           `json:"smsNotifications" bson:"smsNotifications"`
	PushNotifications  bool           `json:"pushNotifications" bson:"pushNotifications"`
	CustomPreferences  map[string]any `json:"customPreferences,omitempty" bson:"customPreferences,omitempty"`
}

const (
	DefaultLanguage = "en"
	DefaultTimezone = "UTC"
)

// NewPreferences 預設值：en / UTC / email 與 push 開啟、sms 關閉
func NewPreferences() *Preferences {
	return &Preferences{
		Language:           DefaultLanguage,
		Timezone:           DefaultTimezone,
		EmailNotifications: true,
		SmsNotifications:   false,
		PushNotifications:  true,
	}
}

// UnmarshalJSON 未帶的欄位保留預設值
func (p *Preferences) UnmarshalJSON(data []byte) error {
	type plain Preferences
	decoded := plain(*NewPreferences())
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*p = Preferences(decoded)
	return nil
}

// Now BSON date 只到毫秒，統一截斷避免讀回後比對不一致
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// NewUser 空白使用者：時間戳記與預設偏好已設定
func NewUser() *User {
	now := Now()
	return &User{
		CreatedAt:   now,
		UpdatedAt:   now,
		Preferences: NewPreferences(),
	}
}

// NewLegacyUser 舊版建構方式（username / email / 姓名）
func NewLegacyUser(username, email, firstName, lastName string) *User {
	user := NewUser()
	user.Username = username
	user.Email = email
	user.FirstName = firstName
	user.LastName = lastName
	return user
}

func NewUserWithRoles(roles []core.Role, email string) *User {
	user := NewUser()
	user.Roles = roles
	user.Email = email
	return user
}

// HasRole roles 中是否包含指定角色
func (u *User) HasRole(role core.Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (u *User) String() string {
	if u == nil {
		return "User<nil>"
	}
	return fmt.Sprintf(
		"User{id='%s', roles=%v, groupHomeId='%s', profile=%+v, consentFlags=%+v, preferences=%+v, riskFlags=%v, createdAt=%s, email='%s', updatedAt=%s}",
		u.ID.Hex(), u.Roles, u.GroupHomeID, u.Profile, u.ConsentFlags, u.Preferences, u.RiskFlags,
		u.CreatedAt.Format(time.RFC3339Nano), u.Email, u.UpdatedAt.Format(time.RFC3339Nano),
	)
}
