package pasetotoken

import (
	"strings"

	paseto "aidanwoods.dev/go-paseto"
)

// Mode selects the PASETO v4 purpose used for session tokens.
type Mode string

const (
	ModeLocal  Mode = "local"
	ModePublic Mode = "public"
)

// Keys holds whichever key material the mode needs. A public-mode
// Keys without Secret can verify tokens but not mint them.
type Keys struct {
	Mode Mode

	Symmetric *paseto.V4SymmetricKey
	Secret    *paseto.V4AsymmetricSecretKey
	Public    *paseto.V4AsymmetricPublicKey
}

// KeyStrings is the hex-encoded form read from configuration.
type KeyStrings struct {
	Mode         Mode
	SymmetricHex string
	SecretHex    string
	PublicHex    string
}

func LoadKeys(in KeyStrings) (Keys, error) {
	switch in.Mode {
	case ModeLocal:
		return loadLocal(strings.TrimSpace(in.SymmetricHex))
	case ModePublic:
		return loadPublic(strings.TrimSpace(in.SecretHex), strings.TrimSpace(in.PublicHex))
	}
	return Keys{}, ErrConfig{Msg: "mode must be local or public, got " + string(in.Mode)}
}

func loadLocal(symHex string) (Keys, error) {
	if symHex == "" {
		return Keys{}, ErrConfig{Msg: "local mode needs a symmetric key"}
	}
	k, err := paseto.V4SymmetricKeyFromHex(symHex)
	if err != nil {
		return Keys{}, ErrConfig{Msg: "symmetric key: " + err.Error()}
	}
	return Keys{Mode: ModeLocal, Symmetric: &k}, nil
}

// loadPublic accepts a secret key, a public key, or both. The public
// key is derived from the secret when only the secret is configured.
func loadPublic(secHex, pubHex string) (Keys, error) {
	if secHex == "" && pubHex == "" {
		return Keys{}, ErrConfig{Msg: "public mode needs a secret or public key"}
	}
	out := Keys{Mode: ModePublic}

	if secHex != "" {
		sk, err := paseto.NewV4AsymmetricSecretKeyFromHex(secHex)
		if err != nil {
			return Keys{}, ErrConfig{Msg: "secret key: " + err.Error()}
		}
		pk := sk.Public()
		out.Secret, out.Public = &sk, &pk
	}
	if pubHex != "" {
		pk, err := paseto.NewV4AsymmetricPublicKeyFromHex(pubHex)
		if err != nil {
			return Keys{}, ErrConfig{Msg: "public key: " + err.Error()}
		}
		out.Public = &pk
	}
	return out, nil
}

// NewLocalKeys generates a fresh symmetric key. Used by tests and the
// seed command when no key is configured.
func NewLocalKeys() Keys {
	k := paseto.NewV4SymmetricKey()
	return Keys{Mode: ModeLocal, Symmetric: &k}
}

func NewPublicKeys() Keys {
	sk := paseto.NewV4AsymmetricSecretKey()
	pk := sk.Public()
	return Keys{Mode: ModePublic, Secret: &sk, Public: &pk}
}

// sealer turns tokens into strings and back for one key mode.
type sealer interface {
	seal(tok paseto.Token, implicit []byte) (string, error)
	open(p paseto.Parser, raw string, implicit []byte) (*paseto.Token, error)
}

type localSealer struct{ key paseto.V4SymmetricKey }

func (s localSealer) seal(tok paseto.Token, implicit []byte) (string, error) {
	return tok.V4Encrypt(s.key, implicit), nil
}

func (s localSealer) open(p paseto.Parser, raw string, implicit []byte) (*paseto.Token, error) {
	return p.ParseV4Local(s.key, raw, implicit)
}

type publicSealer struct {
	secret *paseto.V4AsymmetricSecretKey
	public paseto.V4AsymmetricPublicKey
}

func (s publicSealer) seal(tok paseto.Token, implicit []byte) (string, error) {
	if s.secret == nil {
		return "", ErrConfig{Msg: "verify-only keys cannot issue tokens"}
	}
	return tok.V4Sign(*s.secret, implicit), nil
}

func (s publicSealer) open(p paseto.Parser, raw string, implicit []byte) (*paseto.Token, error) {
	return p.ParseV4Public(s.public, raw, implicit)
}

func (k Keys) sealer() (sealer, error) {
	switch k.Mode {
	case ModeLocal:
		if k.Symmetric == nil {
			return nil, ErrConfig{Msg: "local mode without a symmetric key"}
		}
		return localSealer{key: *k.Symmetric}, nil
	case ModePublic:
		if k.Public == nil {
			return nil, ErrConfig{Msg: "public mode without a public key"}
		}
		return publicSealer{secret: k.Secret, public: *k.Public}, nil
	}
	return nil, ErrConfig{Msg: "mode must be local or public, got " + string(k.Mode)}
}
