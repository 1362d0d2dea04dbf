package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sampleRequest struct {
	Email       string `json:"email" validate:"required,email"`
	CookingTime int    `json:"cooking_time" validate:"required"`
	Username    string `json:"username" validate:"omitempty,username"`
	Slug        string `json:"slug" validate:"omitempty,slug"`
}

func TestValidate_KeysAreJSONNames(t *testing.T) {
	fields := Validate(sampleRequest{})

	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "cooking_time")
	assert.NotContains(t, fields, "Email")
	assert.NotContains(t, fields, "CookingTime")
}

func TestValidate_MessagesAreReadable(t *testing.T) {
	fields := Validate(sampleRequest{})
	assert.Equal(t, "This field is required.", fields["cooking_time"])

	fields = Validate(sampleRequest{Email: "not-an-email", CookingTime: 1})
	assert.Equal(t, "Enter a valid email address.", fields["email"])
}

func TestValidate_CustomValidations(t *testing.T) {
	fields := Validate(sampleRequest{
		Email:       "a@example.com",
		CookingTime: 1,
		Username:    "bad name!",
		Slug:        "Bad Slug",
	})

	assert.Equal(t, "Only letters, digits and @/./+/-/_ are allowed.", fields["username"])
	assert.Equal(t, "Only letters, digits, hyphens and underscores are allowed.", fields["slug"])
}

func TestValidate_ValidPayload(t *testing.T) {
	fields := Validate(sampleRequest{
		Email:       "a@example.com",
		CookingTime: 1,
		Username:    "user.name+tag",
		Slug:        "breakfast-2",
	})

	assert.Nil(t, fields)
}
