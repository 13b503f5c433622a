package main

import (
	"flag"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	C "fieldsync/config"
	H "fieldsync/handler"
	SF "fieldsync/integration/salesforce"
	mid "fieldsync/middleware"
	storePostgres "fieldsync/model/store/postgres"
	"fieldsync/services/errorcollector"
)

// ./app --env=development --api_http_port=8080 --db_host=localhost --db_port=5432 --db_user=fieldsync --db_name=fieldsync --db_pass=fieldsync --local_disk_dir=/tmp/fieldsync --salesforce_app_id=dummy --salesforce_app_secret=dummy
func main() {
	env := flag.String("env", "development", "")
	port := flag.Int("api_http_port", 8080, "")

	dbHost := flag.String("db_host", "localhost", "")
	dbPort := flag.Int("db_port", 5432, "")
	dbUser := flag.String("db_user", "fieldsync", "")
	dbName := flag.String("db_name", "fieldsync", "")
	dbPass := flag.String("db_pass", "fieldsync", "")

	bucketName := flag.String("bucket_name", "fieldsync-batches", "")
	localDiskDir := flag.String("local_disk_dir", "/tmp/fieldsync", "")

	apiDomain := flag.String("api_domain", "localhost:8080", "")
	appDomain := flag.String("app_domain", "localhost:3000", "")

	salesforceAppID := flag.String("salesforce_app_id", "", "")
	salesforceAppSecret := flag.String("salesforce_app_secret", "", "")

	sentryDSN := flag.String("sentry_dsn", "", "Sentry DSN")
	flag.Parse()

	config := &C.Configuration{
		AppName:             "fieldsync_server",
		Env:                 *env,
		Port:                *port,
		DBInfo:              C.DBConf{Host: *dbHost, Port: *dbPort, User: *dbUser, Name: *dbName, Password: *dbPass},
		BucketName:          *bucketName,
		LocalDiskDir:        *localDiskDir,
		APIDomain:           *apiDomain,
		APPDomain:           *appDomain,
		SalesforceAppID:     *salesforceAppID,
		SalesforceAppSecret: *salesforceAppSecret,
		SentryDSN:           *sentryDSN,
	}

	services, err := C.Init(config)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize.")
		return
	}
	defer services.Close()
	defer services.SafeFlushSentryHook()

	store := storePostgres.New(services.Db)
	if config.IsDevelopment() {
		if err := store.AutoMigrate(); err != nil {
			log.WithError(err).Fatal("Failed to migrate schema.")
			return
		}
	}

	collector := errorcollector.New(store)
	resolver := SF.NewResolver(store)
	credentials := SF.NewCredentialProvider(store,
		config.SalesforceAppID, config.SalesforceAppSecret)
	syncer := SF.NewSyncer(store, resolver, credentials, services.FileManager, collector)
	api := H.NewAPI(config, store, resolver, syncer, credentials, collector,
		services.FileManager)

	if !config.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(mid.CustomCors(config.IsDevelopment()))
	r.Use(mid.RequestIdGenerator())
	r.Use(mid.Logger())
	r.Use(mid.Recovery())

	api.InitAppRoutes(r)
	r.Run(":" + strconv.Itoa(config.Port))
}
