package config

import (
	"fmt"
	"strings"

	"github.com/evalphobia/logrus_sentry"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"fieldsync/filestore"
	"fieldsync/services/disk"
	"fieldsync/services/gcstorage"
)

const DEVELOPMENT = "development"

type DBConf struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type Configuration struct {
	AppName             string `json:"app_name"`
	Env                 string `json:"env"`
	Port                int    `json:"port"`
	DBInfo              DBConf `json:"db"`
	BucketName          string `json:"bucket_name"`
	LocalDiskDir        string `json:"local_disk_dir"`
	APIDomain           string `json:"api_domain"`
	APPDomain           string `json:"app_domain"`
	SalesforceAppID     string `json:"salesforce_app_id"`
	SalesforceAppSecret string `json:"salesforce_app_secret"`
	SentryDSN           string `json:"sentry_dsn"`
}

func (c *Configuration) IsDevelopment() bool {
	return strings.Compare(c.Env, DEVELOPMENT) == 0
}

func (c *Configuration) GetProtocol() string {
	if c.IsDevelopment() {
		return "http://"
	}
	return "https://"
}

// Services holds the per-process service connections, constructed once by
// Init and passed by reference.
type Services struct {
	Db          *gorm.DB
	FileManager filestore.FileManager

	sentryHook *logrus_sentry.SentryHook
}

// Init sets up logging and wires service connections for the given
// configuration.
func Init(config *Configuration) (*Services, error) {
	initLogging(config)

	services := &Services{}

	if config.SentryDSN != "" {
		hook, err := logrus_sentry.NewSentryHook(config.SentryDSN, []log.Level{
			log.PanicLevel, log.FatalLevel, log.ErrorLevel})
		if err != nil {
			log.WithError(err).Error("Failed to initialize sentry hook.")
		} else {
			hook.StacktraceConfiguration.Enable = true
			log.AddHook(hook)
			services.sentryHook = hook
		}
	}

	db, err := gorm.Open("postgres", fmt.Sprintf(
		"host=%s port=%d user=%s dbname=%s password=%s sslmode=disable",
		config.DBInfo.Host,
		config.DBInfo.Port,
		config.DBInfo.User,
		config.DBInfo.Name,
		config.DBInfo.Password))
	if err != nil {
		log.WithFields(log.Fields{"err": err}).Error("Failed Db Initialization")
		return nil, errors.Wrap(err, "failed to open db connection")
	}

	// Connection Pooling and Logging.
	db.DB().SetMaxIdleConns(10)
	db.DB().SetMaxOpenConns(50)
	db.LogMode(config.IsDevelopment())
	services.Db = db
	log.Info("Db Service initialized")

	if config.IsDevelopment() {
		services.FileManager = disk.New(config.LocalDiskDir)
		log.WithField("dir", config.LocalDiskDir).Info("Disk file manager initialized")
	} else {
		fileManager, err := gcstorage.New(config.BucketName)
		if err != nil {
			log.WithError(err).Error("Failed to initialize gcs file manager")
			return nil, errors.Wrap(err, "failed to initialize gcs file manager")
		}
		services.FileManager = fileManager
		log.WithField("bucket", config.BucketName).Info("GCS file manager initialized")
	}

	return services, nil
}

func initLogging(config *Configuration) {
	// Log as JSON instead of the default ASCII formatter.
	log.SetFormatter(&log.JSONFormatter{})

	if config.IsDevelopment() {
		log.SetLevel(log.DebugLevel)
	}
}

// SafeFlushSentryHook flushes buffered sentry events, typically deferred
// from main.
func (services *Services) SafeFlushSentryHook() {
	if services.sentryHook != nil {
		services.sentryHook.Flush()
	}
}

// Close releases service connections.
func (services *Services) Close() {
	if services.Db != nil {
		services.Db.Close()
	}
}
