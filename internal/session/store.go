package session

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alecgard/enclave/internal/crypto"
)

// Store persists the durable session entries. Save replaces every entry in
// one step; Clear removes them all.
type Store interface {
	Load(ctx context.Context) (map[string]string, error)
	Save(ctx context.Context, entries map[string]string) error
	Clear(ctx context.Context) error
}

var (
	ErrLocked     = errors.New("session is encrypted; set session.key to unlock it")
	ErrBadKey     = errors.New("session could not be decrypted; check session.key")
	ErrIncomplete = errors.New("stored session is incomplete")
)

const saltKey = "_salt"

// seal encrypts each value under passphrase with a fresh salt, stored
// alongside as _salt. An empty passphrase stores values as given.
func seal(passphrase string, entries map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(entries)+1)
	if passphrase == "" {
		for k, v := range entries {
			out[k] = v
		}
		return out, nil
	}

	salt, err := crypto.NewSalt()
	if err != nil {
		return nil, err
	}
	c, err := crypto.NewCipher(passphrase, salt)
	if err != nil {
		return nil, err
	}
	for k, v := range entries {
		enc, err := c.Encrypt(v)
		if err != nil {
			return nil, fmt.Errorf("encrypting %s: %w", k, err)
		}
		out[k] = enc
	}
	out[saltKey] = base64.StdEncoding.EncodeToString(salt)
	return out, nil
}

func unseal(passphrase string, stored map[string]string) (map[string]string, error) {
	saltText, encrypted := stored[saltKey]
	out := make(map[string]string, len(stored))
	if !encrypted {
		for k, v := range stored {
			out[k] = v
		}
		return out, nil
	}
	if passphrase == "" {
		return nil, ErrLocked
	}

	salt, err := base64.StdEncoding.DecodeString(saltText)
	if err != nil {
		return nil, fmt.Errorf("decoding salt: %w", err)
	}
	c, err := crypto.NewCipher(passphrase, salt)
	if err != nil {
		return nil, err
	}
	for k, v := range stored {
		if k == saltKey {
			continue
		}
		plain, err := c.Decrypt(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadKey, err)
		}
		out[k] = plain
	}
	return out, nil
}

func encode(s *Session) (map[string]string, error) {
	user, err := json.Marshal(s.Profile)
	if err != nil {
		return nil, fmt.Errorf("encoding profile: %w", err)
	}
	return map[string]string{
		KeyAccessToken:  s.AccessToken,
		KeyRefreshToken: s.RefreshToken,
		KeyUser:         string(user),
	}, nil
}

// decode returns nil when no access token is stored.
func decode(entries map[string]string) (*Session, error) {
	access := entries[KeyAccessToken]
	if access == "" {
		return nil, nil
	}
	raw, ok := entries[KeyUser]
	if !ok || raw == "" {
		return nil, ErrIncomplete
	}
	var p Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("decoding profile: %w", err)
	}
	return &Session{
		Profile:      p,
		AccessToken:  access,
		RefreshToken: entries[KeyRefreshToken],
	}, nil
}
