package dynamodb

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the DynamoDB adapter settings.
type Config struct {
	// Table is the catalog table name.
	Table string `env:"PLACEWALK_DDB_TABLE" envDefault:"placewalk-catalog"`

	// Partition is the fixed partition key value the catalog lives
	// under.
	Partition string `env:"PLACEWALK_DDB_PARTITION" envDefault:"catalog"`

	// IDIndex is the GSI used for point lookups by entry ID.
	IDIndex string `env:"PLACEWALK_DDB_ID_INDEX" envDefault:"id-index"`

	// Region overrides the SDK's region resolution when non-empty.
	Region string `env:"PLACEWALK_DDB_REGION"`

	// Endpoint points the client at a non-default endpoint
	// (DynamoDB Local for development).
	Endpoint string `env:"PLACEWALK_DDB_ENDPOINT"`
}

// ConfigFromEnv reads Config from the process environment.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse dynamodb config: %w", err)
	}
	return cfg, nil
}
