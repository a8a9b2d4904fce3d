package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/99designs/keyring"
	"github.com/harrisonrobin/todotxt/pkg/config"
	"golang.org/x/oauth2"
)

const (
	keyringService = "todotxt"
	keyringItem    = "google-oauth-token"
)

// ErrNoToken is returned by a TokenStore that holds no token yet.
var ErrNoToken = errors.New("no saved token")

// TokenStore keeps the OAuth token between runs.
type TokenStore interface {
	Load() (*oauth2.Token, error)
	Save(*oauth2.Token) error
	Delete() error
}

// FileStore keeps the token as JSON in a file readable by the owner only.
type FileStore struct {
	Path string
}

func (s FileStore) Load() (*oauth2.Token, error) {
	tok, err := tokenFromFile(s.Path)
	if os.IsNotExist(err) {
		return nil, ErrNoToken
	}
	return tok, err
}

func (s FileStore) Save(tok *oauth2.Token) error {
	return saveToken(s.Path, tok)
}

func (s FileStore) Delete() error {
	if err := os.Remove(s.Path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// KeyringStore keeps the token in the system keyring.
type KeyringStore struct {
	ring keyring.Keyring
}

func NewKeyringStore(ring keyring.Keyring) *KeyringStore {
	return &KeyringStore{ring: ring}
}

// OpenKeyringStore opens the platform keyring, falling back to an encrypted
// file under dir whose passphrase is asked for on the terminal.
func OpenKeyringStore(dir string) (*KeyringStore, error) {
	ring, err := keyring.Open(keyringConfig(dir, keyring.TerminalPrompt))
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return NewKeyringStore(ring), nil
}

func keyringConfig(dir string, prompt keyring.PromptFunc) keyring.Config {
	return keyring.Config{
		ServiceName: keyringService,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  filepath.Join(dir, "keyring"),
		FilePasswordFunc:         prompt,
		KeychainTrustApplication: true,
	}
}

func (s *KeyringStore) Load() (*oauth2.Token, error) {
	item, err := s.ring.Get(keyringItem)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil, ErrNoToken
	}
	if err != nil {
		return nil, fmt.Errorf("getting token from keyring: %w", err)
	}
	tok := &oauth2.Token{}
	if err := json.Unmarshal(item.Data, tok); err != nil {
		return nil, fmt.Errorf("failed to decode token from keyring: %w", err)
	}
	return tok, nil
}

func (s *KeyringStore) Save(tok *oauth2.Token) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	log.Printf("Saving authentication token to the %s keyring", keyringService)
	if err := s.ring.Set(keyring.Item{Key: keyringItem, Data: data, Label: "todotxt Google Calendar token"}); err != nil {
		return fmt.Errorf("setting token in keyring: %w", err)
	}
	return nil
}

func (s *KeyringStore) Delete() error {
	err := s.ring.Remove(keyringItem)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("deleting token from keyring: %w", err)
	}
	return nil
}

// OpenStore returns the token store named by cfg.TokenStore.
func OpenStore(cfg *config.Config) (TokenStore, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	if cfg.TokenStore == config.TokenStoreKeyring {
		return OpenKeyringStore(dir)
	}
	return FileStore{Path: filepath.Join(dir, TokenFile)}, nil
}
