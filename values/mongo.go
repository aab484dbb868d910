// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package values

import "os"

const (
	// Environment variable name providing the source deployment username
	MongoSourceUserNameEnv = "MONGO_SOURCE_USERNAME"

	// Environment variable name providing the source deployment password
	MongoSourcePasswordEnv = "MONGO_SOURCE_PASSWORD"

	// Environment variable name providing the target deployment username
	MongoTargetUserNameEnv = "MONGO_TARGET_USERNAME"

	// Environment variable name providing the target deployment password
	MongoTargetPasswordEnv = "MONGO_TARGET_PASSWORD"

	// Default value for mongo credentials, used for both username and
	// password when either the username or the password environment
	// variable is unset
	DefaultMongoUserName = "root"
	DefaultMongoPassword = "password"
)

// GetSourceCredentials returns the configured source deployment
// credentials, falling back to the documented defaults when unset. This
// is a development convenience only: a caller that already embeds
// credentials in its connection URI should never invoke it.
func GetSourceCredentials() (string, string) {
	return getCredentials(MongoSourceUserNameEnv, MongoSourcePasswordEnv)
}

// GetTargetCredentials returns the configured target deployment
// credentials, falling back to the documented defaults when unset.
func GetTargetCredentials() (string, string) {
	return getCredentials(MongoTargetUserNameEnv, MongoTargetPasswordEnv)
}

func getCredentials(userEnv, passEnv string) (string, string) {
	user, ok := os.LookupEnv(userEnv)
	if !ok {
		// if user env is not set return default values even for password
		return DefaultMongoUserName, DefaultMongoPassword
	}
	pass, ok := os.LookupEnv(passEnv)
	if !ok {
		// if password env is not set return default values even for user
		return DefaultMongoUserName, DefaultMongoPassword
	}
	return user, pass
}
