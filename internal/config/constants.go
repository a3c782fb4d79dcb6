package config

const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./studio.db"

	// DefaultEncryptionKeyPath holds the key used to encrypt stored API credentials
	DefaultEncryptionKeyPath = "./studio.key"

	// DefaultI18nexusBaseURL is the project resources endpoint of the translation service
	DefaultI18nexusBaseURL = "https://api.i18nexus.com/project_resources"
)
