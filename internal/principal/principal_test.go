package principal

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	uid, sid := uuid.New(), uuid.New()

	s := ForStudent(uid, sid)
	assert.True(t, s.IsStudent())
	assert.Equal(t, sid, s.StudentID)
	assert.Equal(t, uuid.Nil, s.InstructorID)

	i := ForInstructor(uid, sid)
	assert.True(t, i.IsInstructor())
	assert.False(t, i.IsAdmin())

	assert.True(t, ForAdmin(uid).IsAdmin())
	assert.True(t, AnonymousPrincipal().IsAnonymous())
	assert.Equal(t, "instructor", i.Kind.String())
}

func TestContext(t *testing.T) {
	assert.True(t, From(context.Background()).IsAnonymous())

	p := ForAdmin(uuid.New())
	assert.Equal(t, p, From(With(context.Background(), p)))
}
