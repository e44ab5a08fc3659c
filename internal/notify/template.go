package notify

import (
	"strconv"
	"strings"

	"github.com/unclebandit/mailtrack-backend/internal/model"
)

// DefaultTemplate is used when the mail_notification_template setting is empty.
const DefaultTemplate = "{full_name} 您好，您有一封來自 {sender} 的郵件已送達，請憑客戶編號 {customer_id} 前來領取。"

// RenderTemplate replaces {key} placeholders with values from data.
// Unknown placeholders are left as they are.
func RenderTemplate(template string, data map[string]string) string {
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

func eventFields(ev model.MailRegisteredEvent) map[string]string {
	return map[string]string{
		"full_name":   ev.FullName,
		"customer_id": ev.CustomerCode,
		"phone":       ev.Phone,
		"sender":      ev.Sender,
		"photo_count": strconv.Itoa(ev.PhotoCount),
	}
}
