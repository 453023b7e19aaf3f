package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

const (
	StoreFirestore = "firestore"
	StoreMongo     = "mongo"

	AuthJWT      = "jwt"
	AuthFirebase = "firebase"
)

type Config struct {
	ServerPort  string
	Environment string
	FrontendURL string
	InstanceID  string

	StoreDriver string

	FirebaseProject            string
	FirebaseServiceAccountJSON string
	FirebaseServiceAccountPath string

	MongoURI      string
	MongoDatabase string

	AuthProvider string
	JWTSecret    string
	JWTExpiry    int64
	JWTJWKSURL   string

	KafkaBrokers []string
	KafkaTopic   string

	WSRequireAdminRole bool
	ChatRatePerMinute  int64
	ChatRateBurst      int64

	OTELExporterOTLPEndpoint string
	OTELExporterOTLPInsecure bool
	OTELServiceName          string
	OTELServiceVersion       string
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
		InstanceID:  getEnv("INSTANCE_ID", defaultInstanceID()),

		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", StoreFirestore)),

		FirebaseProject:            getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseServiceAccountJSON: getEnv("FIREBASE_SERVICE_ACCOUNT_JSON", ""),
		FirebaseServiceAccountPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),

		MongoURI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGODB_DATABASE", "storefront"),

		AuthProvider: strings.ToLower(getEnv("AUTH_PROVIDER", AuthJWT)),
		JWTSecret:    getEnv("JWT_SECRET", "your-secret-key"),
		JWTExpiry:    getEnvAsInt64("JWT_EXPIRY", 24*60*60), // 24 hours
		JWTJWKSURL:   getEnv("JWT_JWKS_URL", ""),

		KafkaBrokers: getEnvAsList("KAFKA_BROKERS"),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "storefront-notifications"),

		WSRequireAdminRole: getEnvAsBool("WS_REQUIRE_ADMIN_ROLE", true),
		ChatRatePerMinute:  getEnvAsInt64("CHAT_RATE_PER_MINUTE", 30),
		ChatRateBurst:      getEnvAsInt64("CHAT_RATE_BURST", 10),

		OTELExporterOTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTELExporterOTLPInsecure: getEnvAsBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		OTELServiceName:          getEnv("OTEL_SERVICE_NAME", "storefront-api"),
		OTELServiceVersion:       getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case StoreFirestore:
		if c.FirebaseProject == "" {
			return fmt.Errorf("FIREBASE_PROJECT_ID is required when STORE_DRIVER=%s", StoreFirestore)
		}
	case StoreMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGODB_URI is required when STORE_DRIVER=%s", StoreMongo)
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.AuthProvider {
	case AuthJWT:
		if c.JWTSecret == "" && c.JWTJWKSURL == "" {
			return fmt.Errorf("JWT_SECRET or JWT_JWKS_URL is required when AUTH_PROVIDER=%s", AuthJWT)
		}
	case AuthFirebase:
		if c.FirebaseProject == "" {
			return fmt.Errorf("FIREBASE_PROJECT_ID is required when AUTH_PROVIDER=%s", AuthFirebase)
		}
	default:
		return fmt.Errorf("unsupported AUTH_PROVIDER %q", c.AuthProvider)
	}

	if c.ChatRatePerMinute <= 0 || c.ChatRateBurst <= 0 {
		return fmt.Errorf("CHAT_RATE_PER_MINUTE and CHAT_RATE_BURST must be positive")
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// NeedsFirebase reports whether any component talks to Firebase.
func (c *Config) NeedsFirebase() bool {
	return c.StoreDriver == StoreFirestore || c.AuthProvider == AuthFirebase
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		boolValue, err := strconv.ParseBool(value)
		if err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return nil
	}

	var items []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}

func defaultInstanceID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "storefront"
	}
	return host + "-" + uuid.New().String()[:8]
}
