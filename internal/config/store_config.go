package config

type StoreConfig interface {
	GetDatabaseURL() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetAutoMigrate() bool
}

// Store selects the persistence backends. An empty DatabaseURL or RedisAddr selects the in-memory implementation.
type Store struct {
	DatabaseURL   string `env:"DATABASE_URL"`
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	AutoMigrate   bool   `env:"AUTO_MIGRATE" envDefault:"true"`
}

var _ StoreConfig = Store{}

func (s Store) GetDatabaseURL() string {
	return s.DatabaseURL
}

func (s Store) GetRedisAddr() string {
	return s.RedisAddr
}

func (s Store) GetRedisPassword() string {
	return s.RedisPassword
}

func (s Store) GetRedisDB() int {
	return s.RedisDB
}

func (s Store) GetAutoMigrate() bool {
	return s.AutoMigrate
}
