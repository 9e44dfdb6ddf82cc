package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bookForm struct {
	InstructorID string `json:"instructor_id" validate:"required,uuid"`
	Date         string `json:"date" validate:"required,isodate"`
	Time         string `json:"time" validate:"required,clock"`
	Name         string `json:"name" validate:"notblank"`
}

func TestStruct_Valid(t *testing.T) {
	err := Struct(bookForm{
		InstructorID: "0192f1d2-8e7a-7c3b-9b1a-3c4d5e6f7a8b",
		Date:         "2026-05-01",
		Time:         "09:00",
		Name:         "Sam",
	})
	assert.NoError(t, err)
}

func TestStruct_FieldErrors(t *testing.T) {
	err := Struct(bookForm{InstructorID: "nope", Date: "05/01/2026", Time: "9am", Name: "   "})
	require.Error(t, err)

	fe, ok := err.(FieldErrors)
	require.True(t, ok)
	assert.Contains(t, fe, "instructor_id")
	assert.Equal(t, "date must be a date in YYYY-MM-DD format", fe["date"])
	assert.Equal(t, "time must be a time in HH:MM format", fe["time"])
	assert.Equal(t, "name cannot be blank", fe["name"])
	assert.NotEmpty(t, fe.Error())
}

func TestVar(t *testing.T) {
	assert.NoError(t, Var("a@b.co", "email"))
	assert.Error(t, Var("nope", "email"))
}
