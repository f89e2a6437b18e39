package templates

import (
	"time"
)

// Option pattern
type Option func(*EmailData)

func WithActivatedAt(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.ActivatedAt = utc
		d.ActivatedAtText = utc.Format("02 January 2006, 15:04")
	}
}

func NewActivationData(appName, name, email string, opts ...Option) EmailData {
	d := EmailData{Name: name, Email: email, AppName: appName}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}
