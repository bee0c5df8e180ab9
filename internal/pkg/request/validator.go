package request

import (
	"errors"
	"regexp"

	cErr "edulift/internal/pkg/error"

	"github.com/go-playground/validator/v10"
)

// Validator 請求結構可自訂錯誤訊息，key 為 "欄位.規則"，陣列元素用 "欄位.*.規則"
type Validator interface {
	GetMessages() map[string]string
}

var reg = regexp.MustCompile(`\[\d+\]`)

// GetError 從請求和錯誤中獲取錯誤信息；找不到自訂訊息時回傳 false
func GetError(request interface{}, err error) (*cErr.Error, bool) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil, false
	}
	v, isValidator := request.(Validator)
	if !isValidator {
		return nil, false
	}
	messages := v.GetMessages()
	for _, fieldError := range validationErrors {
		field := reg.ReplaceAllString(fieldError.Field(), ".*")
		if message, exist := messages[field+"."+fieldError.Tag()]; exist {
			return cErr.ValidateErr(message), true // 只回第一個
		}
	}
	return nil, false
}
