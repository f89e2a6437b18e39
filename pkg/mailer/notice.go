package mailer

import (
	"context"
	"time"

	"github.com/oksasatya/go-user-registration/internal/domain/entity"
	mailtpl "github.com/oksasatya/go-user-registration/pkg/mailer/templates"
)

// Sender delivers one rendered message.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// ActivationNotice emails users once their account is activated.
type ActivationNotice struct {
	Sender  Sender
	AppName string
	Now     func() time.Time
}

func NewActivationNotice(sender Sender, appName string) *ActivationNotice {
	return &ActivationNotice{Sender: sender, AppName: appName, Now: time.Now}
}

func (n *ActivationNotice) NotifyActivated(ctx context.Context, u entity.User) error {
	data := mailtpl.NewActivationData(n.AppName, u.Name, u.Email, mailtpl.WithActivatedAt(n.Now()))
	subject, text, html, err := mailtpl.Render(mailtpl.AccountActivated, data)
	if err != nil {
		return err
	}
	c, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	return n.Sender.Send(c, u.Email, subject, text, html)
}
