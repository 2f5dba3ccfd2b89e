// Package config holds the settings for one tracker instance: remote
// service credentials, URL templates, polling cadence and the optional
// host sinks. Values are read from viper, which merges flags, env vars
// and an optional config file.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is immutable for the lifetime of a poll cycle.
type Config struct {
	Username string
	Password string
	// Name identifies this tracker instance towards the MQTT and NATS brokers.
	Name string

	LoginURL      string
	DeviceDataURL string
	AlarmDataURL  string
	LogoutURL     string

	VerifySSL      bool
	ForceInterval  bool
	ScanInterval   time.Duration
	MinInterval    time.Duration
	RequestTimeout time.Duration

	// TimeZone names the zone used for presented timestamps. Empty
	// means the process local zone.
	TimeZone string

	LogLevel  string
	LogFormat string

	HomeAssistant HomeAssistantConfig
	MQTT          MQTTConfig
	NATS          NATSConfig
	Web           WebConfig
}

// HomeAssistantConfig enables the REST device_tracker.see sink when URL is set.
type HomeAssistantConfig struct {
	URL   string
	Token string
}

// MQTTConfig enables the MQTT discovery sink when Broker is set.
type MQTTConfig struct {
	Broker          string
	Username        string
	Password        string
	DiscoveryPrefix string
	BaseTopic       string
}

// NATSConfig enables the NATS sink when URL is set.
type NATSConfig struct {
	URL      string
	Username string
	Password string
	Subject  string
}

// WebConfig configures the status/metrics listener of the web command.
type WebConfig struct {
	Listen string
}

// Defaults returns the defaults table. A fresh value is returned on each
// call so callers cannot mutate shared state.
func Defaults() Config {
	return Config{
		Name:           "cmee_tracker",
		LoginURL:       "https://cmee.online/doLogin.action?userinfo.username={0}&userinfo.userpass={1}",
		DeviceDataURL:  "https://cmee.online/getActiveListOfPager.action?usermd5={0}",
		AlarmDataURL:   "https://cmee.online/getAlarmListOfPager.action?usermd5={0}&starttime={1}",
		LogoutURL:      "https://cmee.online/logout.action",
		VerifySSL:      true,
		ForceInterval:  false,
		ScanInterval:   300 * time.Second,
		MinInterval:    180 * time.Second,
		RequestTimeout: 20 * time.Second,
		LogLevel:       "info",
		LogFormat:      "text",
		MQTT: MQTTConfig{
			DiscoveryPrefix: "homeassistant",
			BaseTopic:       "cmee",
		},
		NATS: NATSConfig{
			Subject: "cmee.position",
		},
		Web: WebConfig{
			Listen: ":8080",
		},
	}
}

// SetDefaults registers the defaults table with v so that every key
// resolves even when no flag, env var or file sets it.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("name", d.Name)
	v.SetDefault("login_url", d.LoginURL)
	v.SetDefault("device_data_url", d.DeviceDataURL)
	v.SetDefault("alarm_data_url", d.AlarmDataURL)
	v.SetDefault("logout_url", d.LogoutURL)
	v.SetDefault("verify_ssl", d.VerifySSL)
	v.SetDefault("force_interval", d.ForceInterval)
	v.SetDefault("scan_interval", d.ScanInterval)
	v.SetDefault("min_interval", d.MinInterval)
	v.SetDefault("request_timeout", d.RequestTimeout)
	v.SetDefault("time_zone", d.TimeZone)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("mqtt.discovery_prefix", d.MQTT.DiscoveryPrefix)
	v.SetDefault("mqtt.base_topic", d.MQTT.BaseTopic)
	v.SetDefault("nats.subject", d.NATS.Subject)
	v.SetDefault("web.listen", d.Web.Listen)
}

// Load reads a Config out of v. It does not validate.
func Load(v *viper.Viper) Config {
	return Config{
		Username:       v.GetString("username"),
		Password:       v.GetString("password"),
		Name:           v.GetString("name"),
		LoginURL:       v.GetString("login_url"),
		DeviceDataURL:  v.GetString("device_data_url"),
		AlarmDataURL:   v.GetString("alarm_data_url"),
		LogoutURL:      v.GetString("logout_url"),
		VerifySSL:      v.GetBool("verify_ssl"),
		ForceInterval:  v.GetBool("force_interval"),
		ScanInterval:   v.GetDuration("scan_interval"),
		MinInterval:    v.GetDuration("min_interval"),
		RequestTimeout: v.GetDuration("request_timeout"),
		TimeZone:       v.GetString("time_zone"),
		LogLevel:       v.GetString("log_level"),
		LogFormat:      v.GetString("log_format"),
		HomeAssistant: HomeAssistantConfig{
			URL:   v.GetString("homeassistant.url"),
			Token: v.GetString("homeassistant.token"),
		},
		MQTT: MQTTConfig{
			Broker:          v.GetString("mqtt.broker"),
			Username:        v.GetString("mqtt.username"),
			Password:        v.GetString("mqtt.password"),
			DiscoveryPrefix: v.GetString("mqtt.discovery_prefix"),
			BaseTopic:       v.GetString("mqtt.base_topic"),
		},
		NATS: NATSConfig{
			URL:      v.GetString("nats.url"),
			Username: v.GetString("nats.username"),
			Password: v.GetString("nats.password"),
			Subject:  v.GetString("nats.subject"),
		},
		Web: WebConfig{
			Listen: v.GetString("web.listen"),
		},
	}
}

// Validate reports every problem found, joined into one error.
func (c Config) Validate() error {
	var errs []error
	if c.Username == "" || c.Password == "" {
		errs = append(errs, errors.New("username and password are required (set via --username/--password flags or CMEE_USERNAME/CMEE_PASSWORD env vars)"))
	}
	for _, t := range []struct{ key, tmpl string }{
		{"login_url", c.LoginURL},
		{"device_data_url", c.DeviceDataURL},
		{"alarm_data_url", c.AlarmDataURL},
		{"logout_url", c.LogoutURL},
	} {
		if t.tmpl == "" {
			errs = append(errs, fmt.Errorf("%s must not be empty", t.key))
		}
	}
	if c.ScanInterval <= 0 {
		errs = append(errs, fmt.Errorf("scan_interval must be positive, got %s", c.ScanInterval))
	}
	if c.MQTT.Broker != "" && c.MQTT.DiscoveryPrefix == "" {
		errs = append(errs, errors.New("mqtt.discovery_prefix must not be empty when mqtt.broker is set"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// EffectiveInterval floors the scan interval at MinInterval unless
// ForceInterval is set.
func (c Config) EffectiveInterval() time.Duration {
	if c.ForceInterval {
		return c.ScanInterval
	}
	return max(c.ScanInterval, c.MinInterval)
}

// Location resolves TimeZone. An empty zone yields time.Local.
func (c Config) Location() (*time.Location, error) {
	if c.TimeZone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load time_zone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}
