package remote

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/99designs/keyring"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every remote setting read from the environment.
const EnvPrefix = "TASKBOARD_REMOTE"

// PublicKeyItem is the keyring item holding the remote public key.
const PublicKeyItem = "remote-public-key"

// DefaultTimeout bounds each HTTP round trip.
const DefaultTimeout = 15 * time.Second

// Config identifies one remote record service project.
type Config struct {
	Endpoint  string
	ProjectID string
	PublicKey string
	Timeout   time.Duration
}

// Missing lists the settings that still need a value.
func (c Config) Missing() []string {
	var missing []string
	if strings.TrimSpace(c.Endpoint) == "" {
		missing = append(missing, EnvPrefix+"_ENDPOINT")
	}
	if strings.TrimSpace(c.ProjectID) == "" {
		missing = append(missing, EnvPrefix+"_PROJECT_ID")
	}
	if strings.TrimSpace(c.PublicKey) == "" {
		missing = append(missing, EnvPrefix+"_PUBLIC_KEY")
	}
	return missing
}

// SecretSource resolves credentials that are absent from the environment.
type SecretSource interface {
	Get(key string) (string, error)
}

// LoadConfig overlays TASKBOARD_REMOTE_* environment values on base. When no
// public key is set, secrets is consulted; a lookup failure leaves it empty.
func LoadConfig(base Config, secrets SecretSource) Config {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetDefault("endpoint", base.Endpoint)
	v.SetDefault("project_id", base.ProjectID)
	v.SetDefault("public_key", base.PublicKey)
	v.SetDefault("timeout", base.Timeout)

	cfg := Config{
		Endpoint:  strings.TrimRight(strings.TrimSpace(v.GetString("endpoint")), "/"),
		ProjectID: strings.TrimSpace(v.GetString("project_id")),
		PublicKey: strings.TrimSpace(v.GetString("public_key")),
		Timeout:   v.GetDuration("timeout"),
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.PublicKey == "" && secrets != nil {
		if key, err := secrets.Get(PublicKeyItem); err == nil {
			cfg.PublicKey = strings.TrimSpace(key)
		}
	}
	return cfg
}

// Keyring stores remote credentials in the OS keyring.
type Keyring struct {
	// FileDir backs the encrypted file fallback used when no native keyring exists.
	FileDir string
}

func (k Keyring) open() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: "taskboard",
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  k.FileDir,
		FilePasswordFunc:         keyring.FixedStringPrompt("taskboard-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Get returns the stored credential for key.
func (k Keyring) Get(key string) (string, error) {
	ring, err := k.open()
	if err != nil {
		return "", err
	}
	item, err := ring.Get(key)
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}
	return string(item.Data), nil
}

// Set stores value under key.
func (k Keyring) Set(key, value string) error {
	ring, err := k.open()
	if err != nil {
		return err
	}
	if err := ring.Set(keyring.Item{Key: key, Data: []byte(value)}); err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}
	return nil
}

// Delete removes key. A missing item is not an error.
func (k Keyring) Delete(key string) error {
	ring, err := k.open()
	if err != nil {
		return err
	}
	if err := ring.Remove(key); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}
	return nil
}
