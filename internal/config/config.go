package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type AppConf struct {
	Env string `mapstructure:"env"`
}

type AuthConf struct {
	APIKey    string `mapstructure:"api_key"`
	Endpoint  string `mapstructure:"endpoint"`
	StatePath string `mapstructure:"state_path"`

	// Sentinel administrator pair. Checked before any provider call;
	// kept in config rather than source so deployments can rotate it.
	AdminEmail  string `mapstructure:"admin_email"`
	AdminSecret string `mapstructure:"admin_secret"`
}

type MongoConf struct {
	URI             string `mapstructure:"uri"`
	Database        string `mapstructure:"database"`
	RoomsCollection string `mapstructure:"rooms_collection"`
	RolesCollection string `mapstructure:"roles_collection"`
	ConnectSeconds  int    `mapstructure:"connect_timeout_seconds"`
}

type MediaConf struct {
	BaseURL      string `mapstructure:"base_url"`
	CloudName    string `mapstructure:"cloud_name"`
	UploadPreset string `mapstructure:"upload_preset"`
}

type UploadConf struct {
	PersistSeconds int    `mapstructure:"persist_timeout_seconds"`
	PlaceholderURL string `mapstructure:"placeholder_image_url"`
	JPEGQuality    int    `mapstructure:"jpeg_quality"`
}

type Config struct {
	App    AppConf    `mapstructure:"app"`
	Auth   AuthConf   `mapstructure:"auth"`
	Mongo  MongoConf  `mapstructure:"mongodb"`
	Media  MediaConf  `mapstructure:"media"`
	Upload UploadConf `mapstructure:"upload"`
	Log    struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`

	// derived
	ConnectTimeout time.Duration
	PersistTimeout time.Duration
}

func Load(path string) (*Config, error) {
	// .env overrides for local runs, same as the service configs.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("renteasy")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	cfg.ConnectTimeout = time.Duration(cfg.Mongo.ConnectSeconds) * time.Second
	cfg.PersistTimeout = time.Duration(cfg.Upload.PersistSeconds) * time.Second
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Auth.Endpoint == "" {
		cfg.Auth.Endpoint = "https://identitytoolkit.googleapis.com"
	}
	if cfg.Auth.StatePath == "" {
		cfg.Auth.StatePath = ".renteasy-session.json"
	}
	if cfg.Mongo.RoomsCollection == "" {
		cfg.Mongo.RoomsCollection = "rooms"
	}
	if cfg.Mongo.RolesCollection == "" {
		cfg.Mongo.RolesCollection = "room-roles"
	}
	if cfg.Mongo.ConnectSeconds == 0 {
		cfg.Mongo.ConnectSeconds = 30
	}
	if cfg.Media.BaseURL == "" {
		cfg.Media.BaseURL = "https://api.cloudinary.com/v1_1"
	}
	if cfg.Upload.PersistSeconds == 0 {
		cfg.Upload.PersistSeconds = 15
	}
	if cfg.Upload.PlaceholderURL == "" {
		cfg.Upload.PlaceholderURL = "/room-placeholder.jpg"
	}
	if cfg.Upload.JPEGQuality == 0 {
		cfg.Upload.JPEGQuality = 80
	}
}
