// Package config loads the process configuration the way the teacher
// repo does: viper layered over pflag defaults, with fsnotify watching
// the file for the handful of settings safe to hot-reload.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type DBConfig struct {
	Postgres string `mapstructure:"postgres"`
	MongoDB  string `mapstructure:"mongodb"`
}

type KafkaConfig struct {
	Hosts          []string      `mapstructure:"hosts"`
	Topic          string        `mapstructure:"topic"`
	Group          string        `mapstructure:"group"`
	Producer       string        `mapstructure:"producer"`
	Consumer       string        `mapstructure:"consumer"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type RedisConfig struct {
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	SeqStep int64  `mapstructure:"seq_step"`
}

type RPCEndpoint struct {
	Host            string   `mapstructure:"host"`
	Port            int      `mapstructure:"port"`
	Name            string   `mapstructure:"name"`
	Tags            []string `mapstructure:"tags"`
	Protocol        string   `mapstructure:"protocol"`
	GRPCHealthCheck bool     `mapstructure:"grpc_health_check"`
}

type RPCConfig struct {
	Chat   RPCEndpoint `mapstructure:"chat"`
	Db     RPCEndpoint `mapstructure:"db"`
	Ws     RPCEndpoint `mapstructure:"ws"`
	Pusher RPCEndpoint `mapstructure:"pusher"`
}

type WebsocketConfig struct {
	Host string   `mapstructure:"host"`
	Port int      `mapstructure:"port"`
	Name string   `mapstructure:"name"`
	Tags []string `mapstructure:"tags"`
}

type ServiceCenterConfig struct {
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Protocol string        `mapstructure:"protocol"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type ServerConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Output string `mapstructure:"output"`
}

type MongoDBCleanConfig struct {
	Period      time.Duration `mapstructure:"period"`
	ExceptTypes []string      `mapstructure:"except_types"`
}

type MongoDBConfig struct {
	Clean MongoDBCleanConfig `mapstructure:"clean"`
}

// AMQPConfig is the audit/notification bus's broker connection and
// exchange name (internal/adapter/pubsub), a supplemented feature not
// named by the distilled spec's config surface.
type AMQPConfig struct {
	URI      string `mapstructure:"uri"`
	Exchange string `mapstructure:"exchange"`
}

// Config mirrors the §6 config surface exactly.
type Config struct {
	DB            DBConfig            `mapstructure:"db"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	Redis         RedisConfig         `mapstructure:"redis"`
	RPC           RPCConfig           `mapstructure:"rpc"`
	Websocket     WebsocketConfig     `mapstructure:"websocket"`
	ServiceCenter ServiceCenterConfig `mapstructure:"service_center"`
	Server        ServerConfig        `mapstructure:"server"`
	Log           LogConfig           `mapstructure:"log"`
	MongoDB       MongoDBConfig       `mapstructure:"mongodb"`
	AMQP          AMQPConfig          `mapstructure:"amqp"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("kafka.group", "im-delivery-service")
	v.SetDefault("kafka.connect_timeout", 10*time.Second)
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.seq_step", int64(100))
	v.SetDefault("service_center.protocol", "http")
	v.SetDefault("service_center.timeout", 5*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("mongodb.clean.period", 24*time.Hour)
	v.SetDefault("amqp.exchange", "im_delivery")
}

// Load reads configuration from file, environment (`IM_` prefix,
// nested keys joined with `_`), and flags, in the teacher's layered
// precedence order: flags > env > file > defaults.
func Load(flags *pflag.FlagSet, configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("im")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("config: bind flags: %w", err)
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", configPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return &cfg, nil
}

// WatchReload re-unmarshals cfg in place whenever the underlying file
// changes, and invokes onChange with the freshly loaded value. Only
// the hot-reloadable subset (log level, janitor period) should be
// trusted by callers; connection-level settings require a restart.
func WatchReload(flags *pflag.FlagSet, configPath string, onChange func(*Config)) error {
	if configPath == "" {
		return nil
	}
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("im")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return fmt.Errorf("config: bind flags: %w", err)
		}
	}
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: read %s: %w", configPath, err)
	}

	v.OnConfigChange(func(fsnotify.Event) {
		var cfg Config
		if err := v.Unmarshal(&cfg); err != nil {
			return
		}
		onChange(&cfg)
	})
	v.WatchConfig()
	return nil
}
