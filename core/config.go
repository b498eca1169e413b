package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	DatabaseConfig struct {
		Engine        string // postgres | memory
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	ServerConfig struct {
		Host               string
		DebugHost          string
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
		SessionName        string
		SessionMaxAge      time.Duration
	}

	CacheConfig struct {
		Backend   string // memory | redis
		RedisURL  string
		UnreadTTL time.Duration
	}

	MediaConfig struct {
		Backend  string // local | b2
		Dir      string
		BaseURL  string
		B2KeyID  string
		B2AppKey string
		B2Bucket string
	}

	Config struct {
		Env              string
		Debug            bool
		TestMode         bool
		AppName          string
		Build            string
		SecretKey        string
		TimeZone         string
		WorkDir          string
		FrontendBaseURL  string
		DefaultFromEmail mail.Address
		SendgridApiKey   string
		RollbarToken     string
		EmailMirror      bool

		Database DatabaseConfig
		Server   ServerConfig
		Cache    CacheConfig
		Media    MediaConfig
	}
)

func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// Location returns the configured college time zone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func setDefaults(v *viper.Viper) {
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "College")
	v.SetDefault("build", "dev")
	v.SetDefault("secretKey", "r8$w2-kq)x7&dv=c1m!n0(zs5^b#lt3+yh9e@pu6fa_jg4oi")
	v.SetDefault("timeZone", "Asia/Bishkek")
	v.SetDefault("frontendBaseURL", "http://localhost:8000")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("notifications.emailMirror", false)

	v.SetDefault("server.host", ":8000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.sessionName", "college-session")
	v.SetDefault("server.sessionMaxAge", 14*24*time.Hour)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "college")
	v.SetDefault("database.user", "college")
	v.SetDefault("database.password", "college")
	v.SetDefault("database.adminUser", "postgres")
	v.SetDefault("database.adminPassword", "")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.redisURL", "redis://localhost:6379/0")
	v.SetDefault("cache.unreadTTL", 60*time.Second)

	v.SetDefault("media.backend", "local")
	v.SetDefault("media.dir", "media")
	v.SetDefault("media.baseURL", "/media")
	v.SetDefault("media.b2KeyID", "")
	v.SetDefault("media.b2AppKey", "")
	v.SetDefault("media.b2Bucket", "")
}

// NewConfig loads the configuration from defaults, an optional `config/.env.<env>` file and the environment.
// Environment variables are prefixed with the upper-cased ENV, eg: DEV_DATABASE_HOST.
func NewConfig() *Config {
	v := viper.New()
	setDefaults(v)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	from, err := mail.ParseAddress(v.GetString("defaultFromEmail"))
	if err != nil {
		from = &mail.Address{Address: v.GetString("defaultFromEmail")}
	}

	return &Config{
		Env:              env,
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		AppName:          v.GetString("appName"),
		Build:            v.GetString("build"),
		SecretKey:        v.GetString("secretKey"),
		TimeZone:         v.GetString("timeZone"),
		WorkDir:          wd,
		FrontendBaseURL:  v.GetString("frontendBaseURL"),
		DefaultFromEmail: *from,
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		RollbarToken:     v.GetString("rollbarToken"),
		EmailMirror:      v.GetBool("notifications.emailMirror"),
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Host:          v.GetString("database.host"),
			Port:          v.GetString("database.port"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
		Server: ServerConfig{
			Host:               v.GetString("server.host"),
			DebugHost:          v.GetString("server.debugHost"),
			ShutdownTimeout:    v.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta: v.GetDuration("server.jwtExpirationDelta"),
			SessionName:        v.GetString("server.sessionName"),
			SessionMaxAge:      v.GetDuration("server.sessionMaxAge"),
		},
		Cache: CacheConfig{
			Backend:   v.GetString("cache.backend"),
			RedisURL:  v.GetString("cache.redisURL"),
			UnreadTTL: v.GetDuration("cache.unreadTTL"),
		},
		Media: MediaConfig{
			Backend:  v.GetString("media.backend"),
			Dir:      v.GetString("media.dir"),
			BaseURL:  v.GetString("media.baseURL"),
			B2KeyID:  v.GetString("media.b2KeyID"),
			B2AppKey: v.GetString("media.b2AppKey"),
			B2Bucket: v.GetString("media.b2Bucket"),
		},
	}
}

// NewTestConfig returns a Config suitable for tests: in-memory storage & cache, no env files.
func NewTestConfig() *Config {
	v := viper.New()
	setDefaults(v)
	return &Config{
		Env:              "TEST",
		TestMode:         true,
		AppName:          v.GetString("appName"),
		Build:            "test",
		SecretKey:        v.GetString("secretKey"),
		TimeZone:         v.GetString("timeZone"),
		FrontendBaseURL:  v.GetString("frontendBaseURL"),
		DefaultFromEmail: mail.Address{Address: v.GetString("defaultFromEmail")},
		Database:         DatabaseConfig{Engine: "memory"},
		Server: ServerConfig{
			JWTExpirationDelta: v.GetDuration("server.jwtExpirationDelta"),
			SessionName:        v.GetString("server.sessionName"),
			SessionMaxAge:      v.GetDuration("server.sessionMaxAge"),
		},
		Cache: CacheConfig{Backend: "memory", UnreadTTL: v.GetDuration("cache.unreadTTL")},
		Media: MediaConfig{Backend: "local", Dir: os.TempDir(), BaseURL: "/media"},
	}
}
