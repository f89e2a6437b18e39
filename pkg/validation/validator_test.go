package validation

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-user-registration/internal/domain/apperror"
	"github.com/oksasatya/go-user-registration/internal/domain/entity"
)

func TestCreateUser_Normalizes(t *testing.T) {
	out, err := CreateUser(entity.CreateUserInput{
		Name:     "  Jane O'Neil ",
		Email:    " Jane@Example.COM ",
		Password: "Secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, "Jane O'Neil", out.Name)
	assert.Equal(t, "jane@example.com", out.Email)
	assert.Equal(t, "Secret123", out.Password)
}

func TestCreateUser_NameOptional(t *testing.T) {
	_, err := CreateUser(entity.CreateUserInput{Email: "a@b.co", Password: "Secret123"})
	assert.NoError(t, err)
}

func TestCreateUser_Rejects(t *testing.T) {
	cases := []struct {
		name  string
		in    entity.CreateUserInput
		field string
	}{
		{"missing email", entity.CreateUserInput{Password: "Secret123"}, "email"},
		{"bad email", entity.CreateUserInput{Email: "not-an-email", Password: "Secret123"}, "email"},
		{"short password", entity.CreateUserInput{Email: "a@b.co", Password: "Ab1"}, "password"},
		{"simple password", entity.CreateUserInput{Email: "a@b.co", Password: "alllowercase"}, "password"},
		{"short name", entity.CreateUserInput{Name: "Jo", Email: "a@b.co", Password: "Secret123"}, "name"},
		{"name symbols", entity.CreateUserInput{Name: "Robert<script>", Email: "a@b.co", Password: "Secret123"}, "name"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := CreateUser(tc.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperror.ErrValidation)

			appErr, ok := apperror.As(err)
			require.True(t, ok)
			fields := make([]string, 0, len(appErr.Fields))
			for _, f := range appErr.Fields {
				fields = append(fields, f.Field)
			}
			assert.Contains(t, fields, tc.field)
		})
	}
}

func TestCreateUser_PasswordByteLimit(t *testing.T) {
	// 30 runes, 111 bytes: within max=30 but over what bcrypt accepts
	pw := "Aa1" + strings.Repeat("\U0001F600", 27)
	require.Equal(t, 30, utf8.RuneCountInString(pw))

	_, err := CreateUser(entity.CreateUserInput{Email: "a@b.co", Password: pw})
	require.Error(t, err)
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	require.Len(t, appErr.Fields, 1)
	assert.Equal(t, "password", appErr.Fields[0].Field)
	assert.Equal(t, "must be at most 72 bytes long", appErr.Fields[0].Message)

	// multibyte passwords within the limit are fine
	_, err = CreateUser(entity.CreateUserInput{Email: "a@b.co", Password: "Aa1" + strings.Repeat("é", 20)})
	assert.NoError(t, err)
}

func TestPasswordComplex(t *testing.T) {
	assert.True(t, passwordComplex("Secret123"))
	assert.True(t, passwordComplex("Secret!!x"))
	assert.False(t, passwordComplex("secret123"))
	assert.False(t, passwordComplex("SECRET123"))
	assert.False(t, passwordComplex("SecretSecret"))
}
