package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"strings" // For splitting list values

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort    string // Application port
	IsProd     bool   // Is production environment
	DBDriver   string // Database driver: sqlite or mysql
	DBPath     string // SQLite database file
	DBUser     string // Database user
	DBPassword string // Database password
	DBHost     string // Database host
	DBPort     string // Database port
	DBName     string // Database name
	JWTSecret  string // JWT secret key
	RedisAddr  string // Redis server address, empty disables caching
	RedisPass  string // Redis password
	RedisDB    int    // Redis database number

	StorageDriver  string // Asset storage: local or minio
	UploadDir      string // Root folder of the local asset store
	MinioEndpoint  string // MinIO endpoint host:port
	MinioAccessKey string // MinIO access key
	MinioSecretKey string // MinIO secret key
	MinioBucket    string // MinIO bucket name
	MinioUseSSL    bool   // Use TLS towards MinIO

	TemplateDir   string   // Folder holding index.html
	AdminName     string   // Seed admin display name
	AdminEmail    string   // Seed admin email
	AdminPassword string   // Seed admin password (hashed before storing)
	AllowResale   bool     // Allow buying an artwork that is already sold
	CORSOrigins   []string // Allowed CORS origins
	MaxUploadMB   int64    // Multipart memory limit in megabytes
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	maxUpload, err := strconv.ParseInt(getEnv("MAX_UPLOAD_MB", "10"), 10, 64)
	if err != nil || maxUpload <= 0 {
		maxUpload = 10
	}
	driver := strings.ToLower(getEnv("DB_DRIVER", "sqlite"))
	return &Config{
		AppPort:    getEnv("APP_PORT", "5000"),       // Application port
		IsProd:     os.Getenv("IS_PROD") == "true",   // Is production environment
		DBDriver:   driver,                           // Database driver
		DBPath:     getEnv("DB_PATH", "artspace.db"), // SQLite file
		DBUser:     os.Getenv("DB_USER"),             // Database user
		DBPassword: os.Getenv("DB_PASSWORD"),         // Database password
		DBHost:     os.Getenv("DB_HOST"),             // Database host
		DBPort:     os.Getenv("DB_PORT"),             // Database port
		DBName:     os.Getenv("DB_NAME"),             // Database name
		JWTSecret:  os.Getenv("JWT_SECRET"),          // JWT secret key, required
		RedisAddr:  os.Getenv("REDIS_ADDR"),          // Redis server address
		RedisPass:  os.Getenv("REDIS_PASS"),          // Redis password
		RedisDB:    redisDB,                          // Redis database number

		StorageDriver:  strings.ToLower(getEnv("STORAGE_DRIVER", "local")),
		UploadDir:      getEnv("UPLOAD_DIR", "static/uploads"),
		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    getEnv("MINIO_BUCKET", "artspace"),
		MinioUseSSL:    os.Getenv("MINIO_USE_SSL") == "true",

		TemplateDir:   getEnv("TEMPLATE_DIR", "templates"),
		AdminName:     getEnv("ADMIN_NAME", "Admin"),
		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@artspace.com"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin888"),
		AllowResale:   os.Getenv("ALLOW_RESALE") == "true",
		CORSOrigins:   splitList(getEnv("CORS_ORIGINS", "*")),
		MaxUploadMB:   maxUpload,
	}
}

// MySQLDSN builds the Data Source Name used when DBDriver is mysql
func (c *Config) MySQLDSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true&clientFoundRows=true"
}

// getEnv returns the variable or the fallback when unset
func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
