package config

const (
	defaultConfigPath         = "~/.config/osassist/config.toml"
	projectConfigFile         = "osassist.toml"
	defaultLogFile            = "os_assistant.log"
	defaultSettingsFile       = "settings.json"
	defaultAuthCacheFile      = ".auth_cache"
	defaultStateDir           = "~/.local/share/osassist"
	defaultAPIBind            = "127.0.0.1:7488"
	defaultHealthAddr         = "127.0.0.1:5002"
	defaultControlAddr        = "127.0.0.1:5001"
	defaultConnectTimeoutMS   = 300
	defaultReadTimeoutMS      = 700
	defaultWriteTimeoutMS     = 300
	defaultShutdownGraceMS    = 300
	defaultProcessName        = "main"
	defaultStartupAppName     = "OSAssistant"
	defaultTailMaxBytes       = 64 * 1024
	defaultTailLastLines      = 200
	defaultTailPollIntervalMS = 1000
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"

	// ResourcesDirEnv overrides paths.resources_dir when set.
	ResourcesDirEnv = "OSASSIST_RESOURCES_DIR"
	// APITokenEnv overrides paths.api_token when set.
	APITokenEnv = "OSASSIST_API_TOKEN"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogFile:       defaultLogFile,
			SettingsFile:  defaultSettingsFile,
			AuthCacheFile: defaultAuthCacheFile,
			StateDir:      defaultStateDir,
			APIBind:       defaultAPIBind,
		},
		Assistant: Assistant{
			HealthAddr:       defaultHealthAddr,
			ControlAddr:      defaultControlAddr,
			ConnectTimeoutMS: defaultConnectTimeoutMS,
			ReadTimeoutMS:    defaultReadTimeoutMS,
			WriteTimeoutMS:   defaultWriteTimeoutMS,
			ShutdownGraceMS:  defaultShutdownGraceMS,
			ProcessName:      defaultProcessName,
		},
		Startup: Startup{
			AppName: defaultStartupAppName,
		},
		Tail: Tail{
			MaxBytes:       defaultTailMaxBytes,
			LastLines:      defaultTailLastLines,
			PollIntervalMS: defaultTailPollIntervalMS,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
