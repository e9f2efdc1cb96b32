package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/joho/godotenv"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

type Server struct {
	Port           int
	AllowedOrigins []string
	RequestTimeout time.Duration
	MaxUploadSize  int64
}

type DB struct {
	Driver string

	MongoURI      string
	MongoDatabase string

	DbHOST     string
	DbPORT     string
	DbUSER     string
	DbPASSWORD string
	DbNAME     string
	DbSSLMODE  string
}

type MinIO struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	BucketName string
	UseSSL     bool
	Region     string
	// PublicURL is the base used to build links to uploaded objects.
	PublicURL string
}

type Auth struct {
	JWTSecretKey string
	AdminRole    string
}

type Log struct {
	Level  string
	Format string
}

type Config struct {
	Server Server
	DB     DB
	MinIO  MinIO
	Auth   Auth
	Log    Log
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvList(key, defaultValue string) []string {
	var out []string
	for _, item := range strings.Split(getEnv(key, defaultValue), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return duration
}

func LoadServer() Server {
	return Server{
		Port:           getEnvAsInt("SERVER_PORT", 8080),
		AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", "*"),
		RequestTimeout: parseDuration(getEnv("REQUEST_TIMEOUT", "15s"), 15*time.Second),
		MaxUploadSize:  getEnvAsInt64("MAX_UPLOAD_SIZE", 5*1024*1024),
	}
}

func LoadDB() DB {
	return DB{
		Driver:        strings.ToLower(getEnv("DB_DRIVER", DriverMongo)),
		MongoURI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGODB_DATABASE", "hr_blog"),
		DbHOST:        getEnv("DB_HOST", "localhost"),
		DbPORT:        getEnv("DB_PORT", "5432"),
		DbUSER:        getEnv("DB_USER", "postgres"),
		DbPASSWORD:    getEnv("DB_PASSWORD", "password"),
		DbNAME:        getEnv("DB_NAME", "hr_blog"),
		DbSSLMODE:     getEnv("DB_SSLMODE", "disable"),
	}
}

func LoadMinIO() MinIO {
	return MinIO{
		Endpoint:   getEnv("MINIO_ENDPOINT", "localhost:9000"),
		AccessKey:  getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		SecretKey:  getEnv("MINIO_SECRET_KEY", "minioadmin"),
		BucketName: getEnv("MINIO_BUCKET_NAME", "blog-images"),
		UseSSL:     getEnvBool("MINIO_USE_SSL", false),
		Region:     getEnv("MINIO_REGION", "us-east-1"),
		PublicURL:  getEnv("MINIO_PUBLIC_URL", ""),
	}
}

// LoadConfig reads the optional .env file (or envFile when set) and then
// builds the configuration from the environment.
func LoadConfig(envFile string) (*Config, error) {
	var err error
	if envFile != "" {
		err = godotenv.Load(envFile)
	} else {
		err = godotenv.Load()
	}
	if err != nil && envFile != "" {
		return nil, errors.Wrapf(err, "load env file %q", envFile)
	}

	cfg := &Config{
		Server: LoadServer(),
		DB:     LoadDB(),
		MinIO:  LoadMinIO(),
		Auth: Auth{
			JWTSecretKey: getEnv("JWT_SECRET_KEY", ""),
			AdminRole:    getEnv("ADMIN_ROLE", "admin"),
		},
		Log: Log{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
	return cfg, nil
}

// Validate reports the first setting that makes the server unable to start.
func (c *Config) Validate() error {
	if c.Auth.JWTSecretKey == "" {
		return errors.New("JWT_SECRET_KEY is not set")
	}
	if c.DB.Driver != DriverMongo && c.DB.Driver != DriverPostgres {
		return errors.Errorf("unknown DB_DRIVER %q", c.DB.Driver)
	}
	if c.Server.MaxUploadSize <= 0 {
		return errors.Errorf("MAX_UPLOAD_SIZE must be positive, got %d", c.Server.MaxUploadSize)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return errors.Errorf("SERVER_PORT out of range: %d", c.Server.Port)
	}
	return nil
}

// PostgresDSN renders the lib/pq connection string.
func (d DB) PostgresDSN() string {
	return "host=" + d.DbHOST +
		" port=" + d.DbPORT +
		" user=" + d.DbUSER +
		" password=" + d.DbPASSWORD +
		" dbname=" + d.DbNAME +
		" sslmode=" + d.DbSSLMODE
}
