// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package config

import "github.com/go-core-stack/tuxedo/values"

// Credentials is a resolved username/password pair for one deployment.
type Credentials struct {
	Username string
	Password string
}

// EnvSourceCredentials resolves source deployment credentials from
// MONGO_SOURCE_USERNAME / MONGO_SOURCE_PASSWORD, falling back to the
// package's documented development defaults when unset. Callers whose
// source URI already embeds credentials should not use this.
func EnvSourceCredentials() Credentials {
	u, p := values.GetSourceCredentials()
	return Credentials{Username: u, Password: p}
}

// EnvTargetCredentials resolves target deployment credentials from
// MONGO_TARGET_USERNAME / MONGO_TARGET_PASSWORD, with the same fallback
// behavior as EnvSourceCredentials.
func EnvTargetCredentials() Credentials {
	u, p := values.GetTargetCredentials()
	return Credentials{Username: u, Password: p}
}
