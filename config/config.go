package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Store  StoreConfig  `mapstructure:"store"`
	Words  WordsConfig  `mapstructure:"words"`
}

type ServerConfig struct {
	HTTPAddress    string `mapstructure:"http_address"`
	RPCAddress     string `mapstructure:"rpc_address"`
	MetricsAddress string `mapstructure:"metrics_address"`
}

type StoreConfig struct {
	// Backend selects the room store implementation: memory, redis or postgres.
	Backend    string         `mapstructure:"backend"`
	TTLSeconds int            `mapstructure:"ttl_seconds"`
	Redis      RedisConfig    `mapstructure:"redis"`
	Postgres   PostgresConfig `mapstructure:"postgres"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

type WordsConfig struct {
	Dir string `mapstructure:"dir"`
}

func LoadConfig(path string) (config *Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("server.http_address", ":8000")
	viper.SetDefault("server.rpc_address", ":8001")
	viper.SetDefault("server.metrics_address", ":9100")
	viper.SetDefault("store.backend", "memory")
	viper.SetDefault("store.ttl_seconds", 3600)
	viper.SetDefault("store.redis.address", "localhost:6379")
	viper.SetDefault("words.dir", "./words")

	viper.AutomaticEnv()

	if err = viper.ReadInConfig(); err != nil {
		// Defaults plus environment are enough to run without a config file.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	err = viper.Unmarshal(&config)
	return
}
