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
	ServerConfig struct {
		Host               string        `mapstructure:"host"`
		Address            string        `mapstructure:"address"`
		DebugHost          string        `mapstructure:"debugHost"`
		ReadTimeout        time.Duration `mapstructure:"readTimeout"`
		WriteTimeout       time.Duration `mapstructure:"writeTimeout"`
		ShutdownTimeout    time.Duration `mapstructure:"shutdownTimeout"`
		JWTExpirationDelta time.Duration `mapstructure:"jwtExpirationDelta"`
		JWTRefreshDelta    time.Duration `mapstructure:"jwtRefreshDelta"`
		AllowedOrigins     []string      `mapstructure:"allowedOrigins"`
		DisableReqLogs     bool          `mapstructure:"disableReqLogs"`
	}

	DatabaseConfig struct {
		Engine        string        `mapstructure:"engine"`
		Host          string        `mapstructure:"host"`
		Port          string        `mapstructure:"port"`
		User          string        `mapstructure:"user"`
		Password      string        `mapstructure:"password"`
		AdminUser     string        `mapstructure:"adminUser"`
		AdminPassword string        `mapstructure:"adminPassword"`
		Name          string        `mapstructure:"name"`
		DisableTLS    bool          `mapstructure:"disableTLS"`
		MaxOpenConns  int           `mapstructure:"maxOpenConns"`
		SlowThreshold time.Duration `mapstructure:"slowThreshold"`
	}

	RedisConfig struct {
		Address  string        `mapstructure:"address"` // empty disables redis
		Password string        `mapstructure:"password"`
		DB       int           `mapstructure:"db"`
		LockTTL  time.Duration `mapstructure:"lockTTL"`
	}

	TasksConfig struct {
		InitialBatchDays int    `mapstructure:"initialBatchDays"`
		Timezone         string `mapstructure:"timezone"`
	}

	KissConfig struct {
		EndOfDayAutoUnlock bool `mapstructure:"endOfDayAutoUnlock"`
		EndOfDayHour       int  `mapstructure:"endOfDayHour"`
	}

	Config struct {
		AppName         string `mapstructure:"appName"`
		Env             string `mapstructure:"env"`
		Build           string `mapstructure:"build"`
		Debug           bool   `mapstructure:"debug"`
		TestMode        bool   `mapstructure:"testMode"`
		SecretKey       string `mapstructure:"secretKey"`
		FrontendBaseURL string `mapstructure:"frontendBaseURL"`
		DefaultFromName string `mapstructure:"defaultFromName"`
		DefaultFromAddr string `mapstructure:"defaultFromEmail"`
		SendgridApiKey  string `mapstructure:"sendgridApiKey"`
		RollbarToken    string `mapstructure:"rollbarToken"`

		Server   ServerConfig   `mapstructure:"server"`
		Database DatabaseConfig `mapstructure:"database"`
		Redis    RedisConfig    `mapstructure:"redis"`
		Tasks    TasksConfig    `mapstructure:"tasks"`
		Kiss     KissConfig     `mapstructure:"kiss"`
	}
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("appName", "BigPlans")
	v.SetDefault("build", "develop")
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("secretKey", "9kq#xw2)dn$+51=bz&uoyl4(p!t)#*c2(#yg4h^$fegm7xzr")
	v.SetDefault("frontendBaseURL", "http://localhost:5173")
	v.SetDefault("defaultFromName", "BigPlans")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.address", ":3001")
	v.SetDefault("server.debugHost", ":4001")
	v.SetDefault("server.readTimeout", 5*time.Second)
	v.SetDefault("server.writeTimeout", 10*time.Second)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.jwtRefreshDelta", 30*24*time.Hour)
	v.SetDefault("server.allowedOrigins", []string{"http://localhost:5173", "http://localhost:3000"})
	v.SetDefault("server.disableReqLogs", false)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "bigplans")
	v.SetDefault("database.password", "bigplans")
	v.SetDefault("database.adminUser", "postgres")
	v.SetDefault("database.adminPassword", "postgres")
	v.SetDefault("database.name", "bigplans")
	v.SetDefault("database.disableTLS", true)
	v.SetDefault("database.maxOpenConns", 10)
	v.SetDefault("database.slowThreshold", 200*time.Millisecond)

	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.lockTTL", 10*time.Second)

	v.SetDefault("tasks.initialBatchDays", 30)
	v.SetDefault("tasks.timezone", "Local")

	v.SetDefault("kiss.endOfDayAutoUnlock", false)
	v.SetDefault("kiss.endOfDayHour", 23)
}

// NewConfig loads the app configuration from defaults, config/.env.<env> and the environment.
// ENV selects the environment (DEV by default) and is used as the env var prefix:
// DEV_SERVER_ADDRESS overrides server.address.
func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)
	setDefaults(v)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetDefault("env", env)
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	conf := new(Config)
	if err := v.Unmarshal(conf); err != nil {
		log.Fatalf("config.Unmarshal: %v", err)
	}
	return conf
}

func (c *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.DefaultFromName, Address: c.DefaultFromAddr}
}

// Location returns the timezone used to compute "today".
func (c *Config) Location() *time.Location {
	if c.Tasks.Timezone == "" || c.Tasks.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Tasks.Timezone)
	if err != nil {
		log.Printf("config: unknown timezone %q, falling back to Local", c.Tasks.Timezone)
		return time.Local
	}
	return loc
}

func (dc DatabaseConfig) Address() string {
	return net.JoinHostPort(dc.Host, dc.Port)
}
