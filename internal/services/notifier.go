package services

import (
	"log"
	"os"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"gorm.io/gorm"

	"github.com/askstack/backend/internal/metrics"
	"github.com/askstack/backend/internal/models"
)

// Notifier writes notification rows inside the caller's transaction. It never
// addresses the actor of the triggering event; callers enforce that before
// emitting. SMS delivery is optional and happens after commit.
type Notifier struct {
	sms  *twilio.RestClient
	from string
}

func NewNotifier() *Notifier {
	sid := os.Getenv("TWILIO_ACCOUNT_SID")
	token := os.Getenv("TWILIO_AUTH_TOKEN")
	from := os.Getenv("TWILIO_FROM_NUMBER")
	if sid == "" || token == "" || from == "" {
		return &Notifier{}
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: sid,
		Password: token,
	})
	return &Notifier{sms: client, from: from}
}

// NotifyTx creates one notification row using tx, so it commits or rolls back
// together with the mutation that triggered it.
func (n *Notifier) NotifyTx(tx *gorm.DB, recipientID int, notifType, message string, entityID int, entityType string) error {
	notification := models.Notification{
		RecipientID: recipientID,
		Type:        notifType,
		Message:     message,
		EntityID:    entityID,
		EntityType:  entityType,
	}
	if err := tx.Create(&notification).Error; err != nil {
		return err
	}

	metrics.NotificationsEmitted.WithLabelValues(notifType).Inc()
	return nil
}

// SendSMS delivers a message to the recipient's phone when Twilio is
// configured and the user has one. Call only after the owning transaction
// has committed; delivery failures are logged, not propagated.
func (n *Notifier) SendSMS(to, message string) {
	if n.sms == nil || to == "" {
		return
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(n.from)
	params.SetBody(message)

	if _, err := n.sms.Api.CreateMessage(params); err != nil {
		log.Printf("failed to send SMS notification: %v", err)
	}
}
