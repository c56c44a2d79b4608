// Package config loads the connection settings for the database, the
// app server and the web server from an applus.yaml file, with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/erptools/go-applus/applus"
	"github.com/erptools/go-applus/db"
	"github.com/erptools/go-applus/soap"
)

var AppFs = afero.NewOsFs()

// Config holds the settings of one system: database, app server and
// optionally the web server.
type Config struct {
	AppServer soap.AppServerSettings `mapstructure:"appserver"`
	WebServer soap.WebServerSettings `mapstructure:"webserver"`
	DBServer  DBServer               `mapstructure:"dbserver"`
}

// DBServer mirrors db.Settings with the key names used in the config
// file.
type DBServer struct {
	Server   string `mapstructure:"server"`
	DB       string `mapstructure:"db"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// DBSettings converts the file representation into db.Settings.
func (d DBServer) DBSettings() db.Settings {
	return db.Settings{
		Server:   d.Server,
		Database: d.DB,
		User:     d.User,
		Password: d.Password,
	}
}

func newViper() (*viper.Viper, error) {
	home, err := homedir.Dir()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigName("applus")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath(home)
	v.AddConfigPath(filepath.Join(home, ".config", "applus"))

	v.SetEnvPrefix("APPLUS")
	v.AutomaticEnv()
	return v, nil
}

func loadDotenv() {
	if _, err := AppFs.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}
	if _, err := AppFs.Stat(".env.local"); err == nil {
		_ = godotenv.Overload(".env.local")
	}
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if pw := os.Getenv("APPLUS_DB_PASSWORD"); pw != "" {
		cfg.DBServer.Password = pw
	}
	return cfg, nil
}

// Load reads applus.yaml from the working directory, the home
// directory or ~/.config/applus.
func Load() (*Config, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}
	loadDotenv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return decode(v)
}

// LoadFile reads a specific config file.
func LoadFile(path string) (*Config, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}
	loadDotenv()

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return decode(v)
}

// WithUser overrides user and environment of the app server
// connection, e.g. to act as a specific user. Empty values keep the
// configured ones.
func (c *Config) WithUser(user, env string) *Config {
	out := *c
	if user != "" {
		out.AppServer.User = user
	}
	if env != "" {
		out.AppServer.Env = env
	}
	return &out
}

// Connect opens the server connection described by the config.
func (c *Config) Connect() (*applus.Server, error) {
	return applus.NewServer(c.DBServer.DBSettings(), c.AppServer, c.WebServer)
}
