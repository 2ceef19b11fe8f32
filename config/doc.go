// Package config loads service configuration with Viper.
//
// Values come from a YAML file, then from a .env file loaded with godotenv,
// then from the process environment. Environment variables are bound from the
// mapstructure tags of the target struct, so registry.consul.address is read
// from GOVKIT_REGISTRY_CONSUL_ADDRESS when the prefix is "GOVKIT".
//
//	var cfg app.Config
//	err := config.LoadConfig("govkit-sync", &cfg, config.WithEnvPrefix("GOVKIT"))
package config
