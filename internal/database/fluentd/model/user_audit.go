package model

// UserAuditLog 使用者寫入紀錄（create / update / delete），不含個資內容
type UserAuditLog struct {
	RequestID string `json:"request_id,omitempty"`
	Operation string `json:"operation"`
	UserID    string `json:"user_id,omitempty"`
	Outcome   string `json:"outcome"`
	Version   string `json:"version"`
	LoggedAt  string `json:"logged_at"`
}
