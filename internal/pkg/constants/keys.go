package constants

// viper keys
const (
	ViperDBDSNKey            = "db.dsn"
	ViperDBMaxConnsKey       = "db.max_conns"
	ViperDBAutomigrateKey    = "db.automigrate"
	ViperDBConnectRetriesKey = "db.connect_retries"

	ViperHTTPAddrKey         = "http.addr"
	ViperHTTPAllowOriginsKey = "http.allow_origins"

	ViperIngestChunkSizeKey  = "ingest.chunk_size"
	ViperCatalogChunkSizeKey = "catalog.chunk_size"

	ViperCacheBackendKey = "cache.backend"
	ViperRedisAddrKey    = "redis.addr"
	ViperRedisPassKey    = "redis.password"
	ViperRedisDBKey      = "redis.db"
	ViperRedisPrefixKey  = "redis.prefix"

	ViperLoggerLevelKey = "logger.level"
)

const (
	DefaultChunkSize = 1000
	DateLayout       = "2006-01-02"
	MonthLayout      = "2006-01"
)
