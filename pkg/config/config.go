package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreFile      = "file"
	StoreFirestore = "firestore"
	StoreMongo     = "mongo"

	ImageStoreLocal = "local"
	ImageStoreGCS   = "gcs"
	ImageStoreS3    = "s3"

	NotifierLog      = "log"
	NotifierSendGrid = "sendgrid"
)

type Config struct {
	ServerPort  string
	Environment string
	ServiceName string
	LogLevel    string
	LogPretty   bool

	StoreDriver     string
	ReportsDir      string
	FirebaseProject string
	MongoURI        string
	MongoDB         string

	ImageStore    string
	UploadsDir    string
	StorageBucket string
	S3Bucket      string
	S3Prefix      string
	AWSRegion     string

	Notifier       string
	SendGridAPIKey string
	MailFrom       string
	MailFromName   string
	MinistryEmail  string
	NotifyTimeout  time.Duration

	MaxUploadBytes  int64
	SubmitRateLimit int
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:  getEnv("PORT", "3000"),
		Environment: getEnv("ENVIRONMENT", "development"),
		ServiceName: getEnv("SERVICE_NAME", "emergency-report"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogPretty:   getEnvAsBool("LOG_PRETTY", true),

		StoreDriver:     getEnv("STORE_DRIVER", StoreFile),
		ReportsDir:      getEnv("REPORTS_DIR", "reports"),
		FirebaseProject: getEnv("FIREBASE_PROJECT_ID", ""),
		MongoURI:        getEnv("MONGO_URI", ""),
		MongoDB:         getEnv("MONGO_DB", "emergency"),

		ImageStore:    getEnv("IMAGE_STORE", ImageStoreLocal),
		UploadsDir:    getEnv("UPLOADS_DIR", "uploads"),
		StorageBucket: getEnv("STORAGE_BUCKET", ""),
		S3Bucket:      getEnv("S3_BUCKET", ""),
		S3Prefix:      getEnv("S3_PREFIX", "uploads/"),
		AWSRegion:     getEnv("AWS_REGION", ""),

		Notifier:       getEnv("NOTIFIER", NotifierLog),
		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
		MailFrom:       getEnv("MAIL_FROM", ""),
		MailFromName:   getEnv("MAIL_FROM_NAME", "Emergency Reporting"),
		MinistryEmail:  getEnv("MINISTRY_EMAIL", ""),
		NotifyTimeout:  getEnvAsDuration("NOTIFY_TIMEOUT", 30*time.Second),

		MaxUploadBytes:  getEnvAsInt64("MAX_UPLOAD_BYTES", 10*1024*1024), // 10MB
		SubmitRateLimit: int(getEnvAsInt64("SUBMIT_RATE_LIMIT", 30)),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate rejects driver selections that are missing the settings they need.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreFile:
		if c.ReportsDir == "" {
			return fmt.Errorf("REPORTS_DIR is required for the file store")
		}
	case StoreFirestore:
		if c.FirebaseProject == "" {
			return fmt.Errorf("FIREBASE_PROJECT_ID is required for the firestore store")
		}
	case StoreMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required for the mongo store")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.ImageStore {
	case ImageStoreLocal:
		if c.UploadsDir == "" {
			return fmt.Errorf("UPLOADS_DIR is required for the local image store")
		}
	case ImageStoreGCS:
		if c.StorageBucket == "" {
			return fmt.Errorf("STORAGE_BUCKET is required for the gcs image store")
		}
	case ImageStoreS3:
		if c.S3Bucket == "" || c.AWSRegion == "" {
			return fmt.Errorf("S3_BUCKET and AWS_REGION are required for the s3 image store")
		}
	default:
		return fmt.Errorf("unknown IMAGE_STORE %q", c.ImageStore)
	}

	switch c.Notifier {
	case NotifierLog:
	case NotifierSendGrid:
		if c.SendGridAPIKey == "" || c.MailFrom == "" {
			return fmt.Errorf("SENDGRID_API_KEY and MAIL_FROM are required for the sendgrid notifier")
		}
	default:
		return fmt.Errorf("unknown NOTIFIER %q", c.Notifier)
	}

	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}

	return nil
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

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return defaultValue
}
