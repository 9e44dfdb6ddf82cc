package pasetotoken

import (
	"time"

	"github.com/google/uuid"
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims is the app-facing token payload.
type Claims struct {
	Type      TokenType
	UserID    uuid.UUID
	SessionID *uuid.UUID

	Issuer    string
	Audience  string
	TokenID   string
	IssuedAt  time.Time
	NotBefore time.Time
	ExpiresAt time.Time
}

func (c *Claims) GetUserID() uuid.UUID      { return c.UserID }
func (c *Claims) GetSessionID() *uuid.UUID  { return c.SessionID }
func (c *Claims) GetTokenType() string      { return string(c.Type) }
func (c *Claims) IsExpired() bool           { return time.Now().After(c.ExpiresAt) }
func (c *Claims) IsAccess() bool            { return c.Type == TokenTypeAccess }
func (c *Claims) IsRefresh() bool           { return c.Type == TokenTypeRefresh }
