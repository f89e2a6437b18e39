package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-registration/internal/domain/apperror"
)

// UserResponse is the envelope returned by the lookup endpoint.
type UserResponse[T any] struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	User       T      `json:"user"`
}

func Success[T any](status int, user T) UserResponse[T] {
	if status == 0 {
		status = http.StatusOK
	}
	return UserResponse[T]{StatusCode: status, Message: "SUCCESS", User: user}
}

type ErrorSource struct {
	Pointer string `json:"pointer"`
}

// ErrorBody is the single error shape clients receive.
type ErrorBody struct {
	Status int          `json:"status"`
	Title  string       `json:"title"`
	Detail any          `json:"detail"`
	Source *ErrorSource `json:"source,omitempty"`
}

// Translator turns workflow failures into ErrorBody values.
// Unclassified errors are logged and replaced with DefaultMessage.
type Translator struct {
	DefaultMessage string
	DefaultStatus  int
	Logger         logrus.FieldLogger
}

func NewTranslator(defaultMessage string, defaultStatus int, logger logrus.FieldLogger) *Translator {
	if defaultMessage == "" {
		defaultMessage = http.StatusText(http.StatusInternalServerError)
	}
	if defaultStatus < 400 || defaultStatus > 599 {
		defaultStatus = http.StatusInternalServerError
	}
	return &Translator{DefaultMessage: defaultMessage, DefaultStatus: defaultStatus, Logger: logger}
}

func (t *Translator) Translate(err error, pointer string) ErrorBody {
	body := ErrorBody{Source: &ErrorSource{Pointer: pointer}}

	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		body.Status = appErr.Status
		body.Title = title(appErr.Status)
		body.Detail = appErr.Message
		if len(appErr.Fields) > 0 {
			body.Detail = appErr.Fields
		}
		return body
	}

	if t.Logger != nil && err != nil {
		t.Logger.WithError(err).WithField("pointer", pointer).Error("unclassified failure")
	}
	body.Status = t.DefaultStatus
	body.Title = title(t.DefaultStatus)
	body.Detail = t.DefaultMessage
	return body
}

// Abort writes the translated error and stops the handler chain.
func (t *Translator) Abort(c *gin.Context, err error) {
	body := t.Translate(err, c.Request.URL.Path)
	c.AbortWithStatusJSON(body.Status, body)
}

func title(status int) string {
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "Error"
}
