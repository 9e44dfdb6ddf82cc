// Package pasetotoken issues and verifies the PASETO v4 tokens that back
// student, instructor and admin sessions.
package pasetotoken

import (
	"time"

	paseto "aidanwoods.dev/go-paseto"
	"github.com/google/uuid"
)

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 30 * 24 * time.Hour

	claimType    = "typ"
	claimUser    = "uid"
	claimSession = "sid"
)

type Config struct {
	Mode     Mode
	Issuer   string
	Audience string

	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Implicit is bound into every token without being transmitted.
	Implicit []byte
}

func (c *Config) validate() error {
	switch {
	case c.Issuer == "":
		return ErrConfig{Msg: "issuer is required"}
	case c.Audience == "":
		return ErrConfig{Msg: "audience is required"}
	}
	if c.AccessTTL <= 0 {
		c.AccessTTL = defaultAccessTTL
	}
	if c.RefreshTTL <= 0 {
		c.RefreshTTL = defaultRefreshTTL
	}
	return nil
}

type Manager struct {
	cfg    Config
	sealer sealer
	parser paseto.Parser
}

func New(cfg Config, keys Keys) (*Manager, error) {
	if cfg.Mode != keys.Mode {
		return nil, ErrConfig{Msg: "config mode " + string(cfg.Mode) + " does not match key mode " + string(keys.Mode)}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	s, err := keys.sealer()
	if err != nil {
		return nil, err
	}

	p := paseto.NewParser()
	p.AddRule(paseto.IssuedBy(cfg.Issuer))
	p.AddRule(paseto.ForAudience(cfg.Audience))
	p.AddRule(paseto.NotExpired())

	return &Manager{cfg: cfg, sealer: s, parser: p}, nil
}

// IssueAccess mints a short-lived token for API calls. sessionID ties
// it to a server-side session so logout can revoke it early.
func (m *Manager) IssueAccess(userID uuid.UUID, sessionID *uuid.UUID) (string, error) {
	return m.issue(TokenTypeAccess, userID, sessionID, m.cfg.AccessTTL)
}

func (m *Manager) IssueRefresh(userID uuid.UUID, sessionID *uuid.UUID) (string, error) {
	return m.issue(TokenTypeRefresh, userID, sessionID, m.cfg.RefreshTTL)
}

func (m *Manager) issue(tt TokenType, userID uuid.UUID, sessionID *uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()

	tok := paseto.NewToken()
	tok.SetIssuer(m.cfg.Issuer)
	tok.SetAudience(m.cfg.Audience)
	tok.SetJti(uuid.NewString())
	tok.SetIssuedAt(now)
	tok.SetNotBefore(now)
	tok.SetExpiration(now.Add(ttl))
	tok.SetSubject(userID.String())
	tok.SetString(claimType, string(tt))
	tok.SetString(claimUser, userID.String())
	if sessionID != nil {
		tok.SetString(claimSession, sessionID.String())
	}

	return m.sealer.seal(tok, m.cfg.Implicit)
}

// Verify checks signature or encryption, issuer, audience and expiry,
// then decodes the claims.
func (m *Manager) Verify(raw string) (*Claims, error) {
	tok, err := m.sealer.open(m.parser, raw, m.cfg.Implicit)
	if err != nil {
		return nil, ErrInvalidToken{Err: err}
	}
	claims, err := m.decode(tok)
	if err != nil {
		return nil, ErrInvalidToken{Err: err}
	}
	return claims, nil
}

func (m *Manager) decode(tok *paseto.Token) (*Claims, error) {
	c := &Claims{Issuer: m.cfg.Issuer, Audience: m.cfg.Audience}

	var err error
	if c.TokenID, err = tok.GetJti(); err != nil {
		return nil, err
	}
	if c.IssuedAt, err = tok.GetIssuedAt(); err != nil {
		return nil, err
	}
	if c.NotBefore, err = tok.GetNotBefore(); err != nil {
		return nil, err
	}
	if c.ExpiresAt, err = tok.GetExpiration(); err != nil {
		return nil, err
	}

	typ, err := tok.GetString(claimType)
	if err != nil {
		return nil, err
	}
	c.Type = TokenType(typ)
	if !c.IsAccess() && !c.IsRefresh() {
		return nil, errUnknownTokenType
	}

	if c.UserID, err = uuidClaim(tok, claimUser); err != nil {
		return nil, err
	}
	sub, err := tok.GetSubject()
	if err != nil {
		return nil, err
	}
	if sub != c.UserID.String() {
		return nil, errSubjectMismatch
	}

	if _, err := tok.GetString(claimSession); err == nil {
		sid, err := uuidClaim(tok, claimSession)
		if err != nil {
			return nil, err
		}
		c.SessionID = &sid
	}
	return c, nil
}

func uuidClaim(tok *paseto.Token, key string) (uuid.UUID, error) {
	s, err := tok.GetString(key)
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(s)
}
