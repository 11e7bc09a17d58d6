package pasetotoken

import (
	"fmt"
	"strings"

	paseto "aidanwoods.dev/go-paseto"
)

// Mode selects the v4 purpose. Local tokens are encrypted with a shared key;
// public tokens are signed and can be checked by verify-only deployments.
type Mode string

const (
	ModeLocal  Mode = "local"
	ModePublic Mode = "public"
)

type Keys struct {
	Mode Mode

	Symmetric *paseto.V4SymmetricKey
	Secret    *paseto.V4AsymmetricSecretKey
	Public    *paseto.V4AsymmetricPublicKey
}

// KeyStrings is the hex form kept in config.
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
	return Keys{}, fmt.Errorf("%w: unknown mode %q, use local or public", ErrConfig, in.Mode)
}

func loadLocal(symHex string) (Keys, error) {
	if symHex == "" {
		return Keys{}, fmt.Errorf("%w: local mode needs a symmetric key", ErrConfig)
	}
	k, err := paseto.V4SymmetricKeyFromHex(symHex)
	if err != nil {
		return Keys{}, fmt.Errorf("%w: symmetric key: %v", ErrConfig, err)
	}
	return Keys{Mode: ModeLocal, Symmetric: &k}, nil
}

// loadPublic accepts a secret key (public derived), a public key alone for
// verify-only use, or both.
func loadPublic(secHex, pubHex string) (Keys, error) {
	keys := Keys{Mode: ModePublic}
	if secHex != "" {
		sk, err := paseto.NewV4AsymmetricSecretKeyFromHex(secHex)
		if err != nil {
			return Keys{}, fmt.Errorf("%w: secret key: %v", ErrConfig, err)
		}
		pk := sk.Public()
		keys.Secret, keys.Public = &sk, &pk
	}
	if pubHex != "" {
		pk, err := paseto.NewV4AsymmetricPublicKeyFromHex(pubHex)
		if err != nil {
			return Keys{}, fmt.Errorf("%w: public key: %v", ErrConfig, err)
		}
		keys.Public = &pk
	}
	if keys.Public == nil {
		return Keys{}, fmt.Errorf("%w: public mode needs a secret or public key", ErrConfig)
	}
	return keys, nil
}

func NewLocalKeys() Keys {
	k := paseto.NewV4SymmetricKey()
	return Keys{Mode: ModeLocal, Symmetric: &k}
}

func NewPublicKeys() Keys {
	sk := paseto.NewV4AsymmetricSecretKey()
	pk := sk.Public()
	return Keys{Mode: ModePublic, Secret: &sk, Public: &pk}
}

// Hex returns the keys in the form accepted by LoadKeys.
func (k Keys) Hex() KeyStrings {
	out := KeyStrings{Mode: k.Mode}
	if k.Symmetric != nil {
		out.SymmetricHex = k.Symmetric.ExportHex()
	}
	if k.Secret != nil {
		out.SecretHex = k.Secret.ExportHex()
	}
	if k.Public != nil {
		out.PublicHex = k.Public.ExportHex()
	}
	return out
}

func (k Keys) seal(tok paseto.Token, implicit []byte) (string, error) {
	switch {
	case k.Mode == ModeLocal && k.Symmetric != nil:
		return tok.V4Encrypt(*k.Symmetric, implicit), nil
	case k.Mode == ModePublic && k.Secret != nil:
		return tok.V4Sign(*k.Secret, implicit), nil
	}
	return "", fmt.Errorf("%w: no key to issue %s tokens", ErrConfig, k.Mode)
}

func (k Keys) open(p paseto.Parser, raw string, implicit []byte) (*paseto.Token, error) {
	switch {
	case k.Mode == ModeLocal && k.Symmetric != nil:
		return p.ParseV4Local(*k.Symmetric, raw, implicit)
	case k.Mode == ModePublic && k.Public != nil:
		return p.ParseV4Public(*k.Public, raw, implicit)
	}
	return nil, fmt.Errorf("%w: no key to verify %s tokens", ErrConfig, k.Mode)
}
