package database

import "time"

const (
	DriverBolt     = "bolt"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	// One of bolt, sqlite, postgres
	Driver string `envconfig:"BINGO_DB_DRIVER" default:"bolt"`

	// File used by the bolt and sqlite drivers
	FilePath string `envconfig:"BINGO_DB_FILE_PATH" default:"bingo.db"`

	// Connection string for the postgres driver
	DSN string `envconfig:"BINGO_DB_DSN"`

	// How long to wait for the file lock or a connection
	Timeout time.Duration `envconfig:"BINGO_DB_TIMEOUT" default:"5s"`

	// Attempts of a transaction that keeps conflicting with concurrent writers
	RetryAttempts uint `envconfig:"BINGO_DB_RETRY_ATTEMPTS" default:"5"`
}
