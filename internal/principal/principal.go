// Package principal carries the caller's resolved role through a request.
package principal

import (
	"context"

	"github.com/google/uuid"
)

type Kind int

const (
	Anonymous Kind = iota
	Student
	Instructor
	Admin
)

func (k Kind) String() string {
	switch k {
	case Student:
		return "student"
	case Instructor:
		return "instructor"
	case Admin:
		return "admin"
	default:
		return "anonymous"
	}
}

// Principal is resolved once at authentication time. StudentID is set only
// for students and InstructorID only for instructors.
type Principal struct {
	Kind         Kind
	UserID       uuid.UUID
	StudentID    uuid.UUID
	InstructorID uuid.UUID
}

func AnonymousPrincipal() Principal { return Principal{Kind: Anonymous} }

func ForStudent(userID, studentID uuid.UUID) Principal {
	return Principal{Kind: Student, UserID: userID, StudentID: studentID}
}

func ForInstructor(userID, instructorID uuid.UUID) Principal {
	return Principal{Kind: Instructor, UserID: userID, InstructorID: instructorID}
}

func ForAdmin(userID uuid.UUID) Principal {
	return Principal{Kind: Admin, UserID: userID}
}

func (p Principal) IsAnonymous() bool  { return p.Kind == Anonymous }
func (p Principal) IsStudent() bool    { return p.Kind == Student }
func (p Principal) IsInstructor() bool { return p.Kind == Instructor }
func (p Principal) IsAdmin() bool      { return p.Kind == Admin }

type ctxKey struct{}

func With(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// From returns the principal stored in ctx, or an anonymous one.
func From(ctx context.Context) Principal {
	if p, ok := ctx.Value(ctxKey{}).(Principal); ok {
		return p
	}
	return AnonymousPrincipal()
}
