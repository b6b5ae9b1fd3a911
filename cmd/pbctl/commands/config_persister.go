package commands

import (
	"fmt"
	"sync"
	"time"

	"github.com/fivetwenty-io/pocketbase-client/internal/constants"
)

// ConfigPersister implements the auth.ConfigPersister interface.
type ConfigPersister struct {
	mutex sync.Mutex
	path  string
}

// NewConfigPersister creates a persister writing to the config file at path.
func NewConfigPersister(path string) *ConfigPersister {
	return &ConfigPersister{path: path}
}

// UpdateTargetToken stores a newly issued token on the named target.
func (p *ConfigPersister) UpdateTargetToken(target, token string, expiresAt time.Time) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	// Load current config
	config, err := readConfigFile(p.path)
	if err != nil {
		return err
	}

	targetConfig, exists := config.Targets[target]
	if !exists || targetConfig == nil {
		return fmt.Errorf("target '%s': %w", target, constants.ErrTargetNotFound)
	}

	targetConfig.Token = token
	if expiresAt.IsZero() {
		targetConfig.TokenExpiresAt = nil
	} else {
		targetConfig.TokenExpiresAt = &expiresAt
	}

	return writeConfigFile(p.path, config)
}
