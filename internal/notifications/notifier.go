package notifications

import "context"

type ContactNotificationInput struct {
	MessageID string
	Name      string
	Email     string
	Subject   string
	Body      string
}

type Notifier interface {
	SendContactNotification(ctx context.Context, input ContactNotificationInput) error
}
