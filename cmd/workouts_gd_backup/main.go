package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/2beens/liftlog/internal/backup"
	"github.com/2beens/liftlog/internal/workouts"

	"github.com/jackc/pgx/v5/pgxpool"
	"gopkg.in/natefinch/lumberjack.v2"
)

// workouts google drive backup cmd, meant to run periodically (cron)
// next to the main service

func main() {
	credentialsFile := flag.String(
		"gd-creds",
		"./liftlog-drive-credentials.json",
		"google drive service account credentials json",
	)
	shareWithEmail := flag.String(
		"share-with",
		"",
		"email address given read access to the backup files (empty to skip)",
	)
	dbHost := flag.String("db-host", "localhost", "postgres host")
	dbPort := flag.String("db-port", "5432", "postgres port")
	dbName := flag.String("db-name", "liftlog", "postgres database name")
	socketDir := flag.String("socket-dir", "/tmp/liftlog", "dir of the unix socket used to report metrics to the running server")
	socketFileName := flag.String("socket-file", "backups.sock", "file name of the metrics unix socket")
	logsPath := flag.String("logs-path", "/var/log/liftlog-backend/workouts-backup.log", "server logs file path (empty for stdout)")
	reinit := flag.Bool("reinit", false, "reinitialize all again")
	destroy := flag.Bool("destroy", false, "destroy all files (warning!!) (try running more times, if more than 100 files are present)")

	flag.Parse()

	loggingSetup(*logsPath)

	log.Println("starting workouts backup ...")

	if *credentialsFile == "" {
		log.Fatalln("google drive credentials json not specified")
	}
	if *reinit {
		log.Println("!! attention: will reinitialize all again...")
	}

	credentialsFileBytes, err := os.ReadFile(*credentialsFile)
	if err != nil {
		log.Fatalf("unable to read client secret file: %v", err)
	}

	ctx := context.Background()

	if *destroy {
		if err := backup.DestroyAllFiles(ctx, credentialsFileBytes); err != nil {
			log.Fatalf("destroy failed: %s", err)
		}
		log.Println("destroy done!")
		return
	}

	db, err := pgxpool.New(
		ctx,
		fmt.Sprintf("postgres://postgres@%s:%s/%s", *dbHost, *dbPort, *dbName),
	)
	if err != nil {
		log.Fatalf("failed to create db pool: %s", err)
	}
	defer db.Close()

	s, err := backup.NewGoogleDriveBackupService(
		ctx,
		credentialsFileBytes,
		*shareWithEmail,
		workouts.NewRepo(db),
	)
	if err != nil {
		log.Fatalf("failed to create google drive backup service: %s", err)
	}

	baseTime := time.Now()

	if *reinit {
		backedUp, err := s.Reinit(ctx, baseTime)
		if err != nil {
			log.Fatalf("reinit failed: %s", err)
		}
		log.Printf("reinit done, %d workouts backed up", backedUp)
		backup.TrySendMetrics(baseTime, backedUp, *socketDir, *socketFileName)
		return
	}

	backedUp, err := s.DoBackup(ctx, baseTime)
	if err != nil {
		log.Fatalf("%+v", err)
	}

	backup.TrySendMetrics(baseTime, backedUp, *socketDir, *socketFileName)
}

func loggingSetup(logFileName string) {
	if logFileName == "" {
		log.SetOutput(os.Stdout)
		return
	}

	if !strings.HasSuffix(logFileName, ".log") {
		logFileName += ".log"
	}

	log.SetOutput(&lumberjack.Logger{
		Filename:  logFileName,
		MaxSize:   50,    // megabytes
		LocalTime: false, // false -> use UTC
		Compress:  true,  // disabled by default
	})
}
