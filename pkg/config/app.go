package config

import "time"

var AppVersion = "DEVELOPMENT"

const (
	AppName           = "cyberdeck"
	SessionDBFile     = "sessions.db"
	LogFile           = "core.log"
	PidFile           = "core.pid"
	CfgFile           = "config.toml"
	AuthFile          = "auth.toml"
	UserDir           = "user"
	APIRequestTimeout = 30 * time.Second
)
