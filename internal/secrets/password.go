package secrets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"

	"jobfeed-engine/internal/config"
)

// KeyringService groups the engine's secrets in the OS keychain.
const KeyringService = "jobfeed"

var ErrEmptyAccount = errors.New("keyring account name is empty")

// GetRedisPassword returns the stored password, or "" when none is stored
// (a passwordless local Redis is the common case).
func GetRedisPassword(keyringAccount string) (string, error) {
	if strings.TrimSpace(keyringAccount) == "" {
		return "", nil
	}
	pw, err := keyring.Get(KeyringService, keyringAccount)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read keyring: %w", err)
	}
	return pw, nil
}

func SetRedisPassword(keyringAccount string, password string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return ErrEmptyAccount
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password is empty")
	}
	return keyring.Set(KeyringService, keyringAccount, password)
}

func DeleteRedisPassword(keyringAccount string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return ErrEmptyAccount
	}
	err := keyring.Delete(KeyringService, keyringAccount)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// RedisKeyringAccount is the configured account, or one derived from the
// Redis address.
func RedisKeyringAccount(cfg config.Config) string {
	if a := strings.TrimSpace(cfg.Storage.Redis.KeyringAccount); a != "" {
		return a
	}
	if cfg.Storage.Redis.Address == "" {
		return ""
	}
	return fmt.Sprintf("jobfeed:redis:%s/%d", cfg.Storage.Redis.Address, cfg.Storage.Redis.DB)
}
