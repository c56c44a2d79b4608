// Package soap manages the SOAP connections to an app server. Service
// endpoints are addressed by package and name ("p2core", "Table") and
// clients are created lazily and cached per endpoint.
package soap

import (
	"fmt"
	"strings"
)

// AppServerSettings holds the coordinates of the app server.
type AppServerSettings struct {
	Server string `mapstructure:"server"`
	Port   int    `mapstructure:"port"`
	User   string `mapstructure:"user"`

	// Env is the optional environment appended to the user for
	// authentication.
	Env string `mapstructure:"env"`
}

// UserEnv returns the basic-auth user name, "user" or "user|env".
func (s AppServerSettings) UserEnv() string {
	if s.Env == "" {
		return s.User
	}
	return s.User + "|" + s.Env
}

// BaseURL returns the server's base URL including the trailing slash.
func (s AppServerSettings) BaseURL() string {
	return fmt.Sprintf("http://%s:%d/", s.Server, s.Port)
}

// WebServerSettings holds the base URL of the web server, used to build
// links into the web client.
type WebServerSettings struct {
	BaseURL string `mapstructure:"baseurl"`
}

// Normalized returns the base URL with a trailing slash, or empty when
// no web server is configured.
func (s WebServerSettings) Normalized() string {
	if s.BaseURL == "" {
		return ""
	}
	if strings.HasSuffix(s.BaseURL, "/") {
		return s.BaseURL
	}
	return s.BaseURL + "/"
}
