package config

import (
	"errors"
	"fmt"
)

const minSecretLen = 32

var ErrInvalidConfig = errors.New("invalid config")

// Validate checks the constraints env tags cannot express.
func (c *Config) Validate() error {
	if c.JWT.AccessSecret == c.JWT.RefreshSecret {
		return fmt.Errorf("%w: JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ", ErrInvalidConfig)
	}
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= c.JWT.AccessTTL {
		return fmt.Errorf("%w: refresh ttl must be longer than access ttl", ErrInvalidConfig)
	}

	if !c.IsProduction() {
		return nil
	}
	if len(c.JWT.AccessSecret) < minSecretLen || len(c.JWT.RefreshSecret) < minSecretLen {
		return fmt.Errorf("%w: jwt secrets must be at least %d bytes in production", ErrInvalidConfig, minSecretLen)
	}
	if c.Images.Bucket == "" {
		return fmt.Errorf("%w: IMAGES_BUCKET is required in production", ErrInvalidConfig)
	}
	return nil
}
