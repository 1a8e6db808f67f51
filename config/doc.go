// Package config loads convpipe configuration.
//
// Values come from three layers, later layers winning: a YAML file
// (convpipe.yml or config.yml under ./cmd/convpipe, ./config or the working
// directory), a .env file, and CONVPIPE_ prefixed environment variables.
// Underscores in a variable name may stand for either a section separator or
// a literal underscore, so CONVPIPE_SCRIPTS_LUA_MODULES_DIR reaches
// scripts.lua.modules_dir.
//
//	var cfg config.Config
//	if err := config.Load(&cfg, config.WithConfigFile("convpipe.yml")); err != nil {
//		return err
//	}
package config
