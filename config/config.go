package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	RedisAddr  string `mapstructure:"REDIS_ADDR"`
	HTTPPort   string `mapstructure:"HTTP_PORT"`

	StripeSecretKey     string `mapstructure:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `mapstructure:"STRIPE_WEBHOOK_SECRET"`
	IdentityJWTSecret   string `mapstructure:"IDENTITY_JWT_SECRET"`

	EmailAPIKey  string `mapstructure:"EMAIL_API_KEY"`
	EmailFrom    string `mapstructure:"EMAIL_FROM"`
	ContactEmail string `mapstructure:"CONTACT_EMAIL"`
	FrontendURL  string `mapstructure:"FRONTEND_URL"`
}

func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("app")
	viper.SetConfigType("env")

	viper.AutomaticEnv()

	// Bind each variable explicitly so viper sees them without a file.
	viper.BindEnv("DB_HOST")
	viper.BindEnv("DB_PORT")
	viper.BindEnv("DB_USER")
	viper.BindEnv("DB_PASSWORD")
	viper.BindEnv("DB_NAME")
	viper.BindEnv("REDIS_ADDR")
	viper.BindEnv("HTTP_PORT")
	viper.BindEnv("STRIPE_SECRET_KEY")
	viper.BindEnv("STRIPE_WEBHOOK_SECRET")
	viper.BindEnv("IDENTITY_JWT_SECRET")
	viper.BindEnv("EMAIL_API_KEY")
	viper.BindEnv("EMAIL_FROM")
	viper.BindEnv("CONTACT_EMAIL")
	viper.BindEnv("FRONTEND_URL")

	// A missing config file is fine, env vars carry the config then.
	err = viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
	}

	err = viper.Unmarshal(&config)
	return
}
