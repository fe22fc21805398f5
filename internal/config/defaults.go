package config

const (
	defaultDataDir            = "~/.local/share/anicat"
	defaultLogDir             = "~/.local/share/anicat/logs"
	defaultListingSort        = "all"
	defaultListingTimeout     = 20
	defaultMetadataURL        = "https://graphql.anilist.co"
	defaultMetadataTimeout    = 20
	defaultSupabaseTimeout    = 20
	defaultStartPage          = 1
	defaultRetryAttempts      = 3
	defaultRetryDelaySeconds  = 5
	defaultRetryJitterSeconds = 2
	defaultItemDelayMinMillis = 500
	defaultItemDelayMaxMillis = 1500
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Listing: Listing{
			Sort:           defaultListingSort,
			TimeoutSeconds: defaultListingTimeout,
		},
		Metadata: Metadata{
			URL:            defaultMetadataURL,
			TimeoutSeconds: defaultMetadataTimeout,
		},
		Supabase: Supabase{
			TimeoutSeconds: defaultSupabaseTimeout,
		},
		Pipeline: Pipeline{
			StartPage:          defaultStartPage,
			RetryAttempts:      defaultRetryAttempts,
			RetryDelaySeconds:  defaultRetryDelaySeconds,
			RetryJitterSeconds: defaultRetryJitterSeconds,
			ItemDelayMinMillis: defaultItemDelayMinMillis,
			ItemDelayMaxMillis: defaultItemDelayMaxMillis,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
