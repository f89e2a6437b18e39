package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-user-registration/internal/domain/apperror"
)

func TestTranslate_Classified(t *testing.T) {
	tr := NewTranslator("Internal server error", 500, nil)

	body := tr.Translate(fmt.Errorf("lookup: %w", apperror.ErrUserNotFound), "/api/users/get-user-by-id/x")
	assert.Equal(t, http.StatusBadRequest, body.Status)
	assert.Equal(t, "Bad Request", body.Title)
	assert.Equal(t, "ERR_USER_NOT_FOUND", body.Detail)
	require.NotNil(t, body.Source)
	assert.Equal(t, "/api/users/get-user-by-id/x", body.Source.Pointer)
}

func TestTranslate_ValidationCarriesFields(t *testing.T) {
	tr := NewTranslator("Internal server error", 500, nil)
	fields := []apperror.FieldError{{Field: "email", Message: "is required"}}

	body := tr.Translate(apperror.Validation(fields), "/api/users")
	assert.Equal(t, http.StatusBadRequest, body.Status)
	assert.Equal(t, fields, body.Detail)
}

func TestTranslate_UnclassifiedIsHidden(t *testing.T) {
	logger, hook := test.NewNullLogger()
	tr := NewTranslator("Internal server error", 500, logger)

	body := tr.Translate(errors.New("dial tcp 10.0.0.1:5432: connection refused"), "/api/users")
	assert.Equal(t, 500, body.Status)
	assert.Equal(t, "Internal Server Error", body.Title)
	assert.Equal(t, "Internal server error", body.Detail)

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestNewTranslator_Defaults(t *testing.T) {
	tr := NewTranslator("", 200, nil)
	assert.Equal(t, http.StatusInternalServerError, tr.DefaultStatus)
	assert.Equal(t, "Internal Server Error", tr.DefaultMessage)
}

func TestAbort(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tr := NewTranslator("Internal server error", 500, nil)

	r := gin.New()
	r.GET("/x", func(c *gin.Context) { tr.Abort(c, apperror.ErrInvalidIdentifier) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "invalid identifier", got["detail"])
	assert.Equal(t, map[string]any{"pointer": "/x"}, got["source"])
}
