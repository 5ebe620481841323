// Package config loads typed configuration structs from the process
// environment. A .env file in the working directory is read once, then each
// struct type is parsed once and served from cache afterwards.
//
//	type Config struct {
//		Addr string `env:"HTTP_ADDR" envDefault:":8080"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
package config
