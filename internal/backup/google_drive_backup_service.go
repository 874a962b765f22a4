package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/2beens/liftlog/internal/workouts"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const (
	rootBackupsFolderName = "liftlog-backup"
	workoutsFileChunkSize = 200 // number of workout trees in one backup file
)

type workoutsSource interface {
	AllWorkouts(ctx context.Context, createdAfter *time.Time) ([]workouts.WorkoutWithExercises, error)
}

type GoogleDriveBackupService struct {
	repo            workoutsSource
	service         *drive.Service
	backupsFolderId string
	shareWithEmail  string
}

func NewGoogleDriveBackupService(
	ctx context.Context,
	credentialsJson []byte,
	shareWithEmail string,
	repo workoutsSource,
) (*GoogleDriveBackupService, error) {
	// https://github.com/googleapis/google-api-go-client/blob/master/drive/v3/drive-gen.go
	driveService, err := drive.NewService(ctx, option.WithCredentialsJSON(credentialsJson))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve drive client: %w", err)
	}

	rootFolderQuery := fmt.Sprintf("mimeType = 'application/vnd.google-apps.folder' and trashed = false and name = '%s'", rootBackupsFolderName)
	foundFolders, err := driveService.
		Files.List().
		Q(rootFolderQuery).
		Fields("files(id, name)").
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve files: %w", err)
	}

	backupsFolderId := ""
	if len(foundFolders.Files) == 1 {
		rbf := foundFolders.Files[0]
		log.Printf("root backups folder found, %s: %s", rbf.Name, rbf.Id)
		backupsFolderId = rbf.Id
	} else if len(foundFolders.Files) == 0 {
		log.Println("root backups folder not found, will recreate")
	} else {
		rbf := foundFolders.Files[0]
		log.Printf("attention: found %d root backups folders, will take the first one: %s", len(foundFolders.Files), rbf.Id)
		backupsFolderId = rbf.Id
	}

	s := &GoogleDriveBackupService{
		repo:           repo,
		service:        driveService,
		shareWithEmail: shareWithEmail,
	}

	if backupsFolderId == "" {
		log.Println("root backups folder not found, recreating ...")
		backupsFolderId, err = s.createRootBackupsFolder()
		if err != nil {
			return nil, fmt.Errorf("failed to create root backups folder: %w", err)
		}
		log.Printf("new root backups folder created: %s", backupsFolderId)
	} else {
		log.Printf("found backups folder ID: %s", backupsFolderId)
	}

	s.backupsFolderId = backupsFolderId

	return s, nil
}

// Reinit drops the whole backups folder and backs up everything from scratch.
func (s *GoogleDriveBackupService) Reinit(ctx context.Context, baseTime time.Time) (int, error) {
	log.Println("workouts backup reinit starting ...")

	err := s.service.Files.
		Delete(s.backupsFolderId).
		Do()
	if err != nil {
		return 0, err
	}

	backupsFolderId, err := s.createRootBackupsFolder()
	if err != nil {
		return 0, fmt.Errorf("failed to create root backups folder: %w", err)
	}

	log.Printf("new root backups folder created: %s", backupsFolderId)

	s.backupsFolderId = backupsFolderId

	return s.DoBackup(ctx, baseTime)
}

// DoBackup saves the workouts created since the previous backup file as
// new JSON chunk files, and returns the number of workouts backed up.
func (s *GoogleDriveBackupService) DoBackup(ctx context.Context, baseTime time.Time) (int, error) {
	currentAllBackupFiles, err := s.getWorkoutsBackupFiles(s.backupsFolderId)
	if err != nil {
		return 0, err
	}

	if len(currentAllBackupFiles) == 0 {
		log.Println("backups empty, creating initial backup file ...")
		backedUp, err := s.createInitialBackupFile(ctx, baseTime)
		if err != nil {
			return 0, err
		}
		log.Println("initial backup files created!")
		return backedUp, nil
	}

	log.Println("current backup files:")
	lastCreatedAt := time.Time{}
	for _, file := range currentAllBackupFiles {
		createdAt, err := time.Parse(time.RFC3339, file.CreatedTime)
		if err != nil {
			log.Printf(" ---> error parsing created at for file %s: %s", file.Name, err)
			continue
		}
		log.Printf(" -- [%v]: %s (%s)\n", createdAt, file.Name, file.Id)

		if createdAt.After(lastCreatedAt) {
			lastCreatedAt = createdAt
		}
	}

	workoutsToBackup, err := s.repo.AllWorkouts(ctx, &lastCreatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to get next backup workouts: %w", err)
	}

	if len(workoutsToBackup) == 0 {
		log.Println("no new workouts to backup, done")
		return 0, nil
	}

	log.Printf(" ---- backing up %d workouts since %v", len(workoutsToBackup), lastCreatedAt)

	nextBackupFileName := fmt.Sprintf("workouts-%d-%d-%d", baseTime.Day(), baseTime.Month(), baseTime.Year())
	fileCounter := 1
	for {
		nameExists := false
		for _, file := range currentAllBackupFiles {
			// chunk files carry the _<chunk> suffix, the first one marks the name as taken
			if file.Name == (nextBackupFileName + "_1.json") {
				nameExists = true
				break
			}
		}
		if nameExists {
			fileCounter++
			nextBackupFileName = fmt.Sprintf("%s_%d", nextBackupFileName, fileCounter)
		} else {
			break
		}
	}

	if err := s.backupWorkouts(workoutsToBackup, nextBackupFileName); err != nil {
		return 0, fmt.Errorf("failed to backup workouts: %w", err)
	}

	log.Printf("next backup since %v successfully saved: %s", lastCreatedAt, nextBackupFileName)

	return len(workoutsToBackup), nil
}

func (s *GoogleDriveBackupService) createRootBackupsFolder() (string, error) {
	backupsFolderMeta := &drive.File{
		Name:     rootBackupsFolderName,
		MimeType: "application/vnd.google-apps.folder",
	}

	bfRes, err := s.service.
		Files.Create(backupsFolderMeta).
		Fields("id").
		Do()
	if err != nil {
		return "", err
	}

	if pId, err := s.updateFilePermission(bfRes.Id); err != nil {
		return bfRes.Id, fmt.Errorf("failed to create additional permission for root backup folder: %s", err)
	} else if pId != "" {
		log.Printf("permission %s created for root backup folder %s", pId, bfRes.Id)
	}

	return bfRes.Id, nil
}

func (s *GoogleDriveBackupService) createInitialBackupFile(ctx context.Context, baseTime time.Time) (int, error) {
	allWorkouts, err := s.repo.AllWorkouts(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get workouts from db: %w", err)
	}

	log.Printf("initial backup of %d workouts starting ...", len(allWorkouts))

	baseFileName := fmt.Sprintf("initial-%d-%d-%d", baseTime.Day(), baseTime.Month(), baseTime.Year())
	if err := s.backupWorkouts(allWorkouts, baseFileName); err != nil {
		return 0, fmt.Errorf("failed to backup workouts: %w", err)
	}

	return len(allWorkouts), nil
}

func (s *GoogleDriveBackupService) backupWorkouts(workoutTrees []workouts.WorkoutWithExercises, baseFileName string) error {
	chunks := len(workoutTrees) / workoutsFileChunkSize
	fromIndex, toIndex := 0, workoutsFileChunkSize
	if len(workoutTrees)%workoutsFileChunkSize > 0 {
		chunks++
	}

	if len(workoutTrees) < workoutsFileChunkSize {
		toIndex = len(workoutTrees)
	}

	for i := 1; i <= chunks; i++ {
		nextFileName := fmt.Sprintf("%s_%d.json", baseFileName, i)
		nextWorkouts := workoutTrees[fromIndex:toIndex]

		log.Printf("%s: create backup file with %d workouts [from %d to %d] ...", nextFileName, len(nextWorkouts), fromIndex, toIndex)

		nextWorkoutsJson, err := json.Marshal(nextWorkouts)
		if err != nil {
			return fmt.Errorf("%s failed to marshal workouts: %w", nextFileName, err)
		}

		log.Printf("%s: creating file on google drive ...", nextFileName)
		fileMeta := &drive.File{
			Name: nextFileName,
			// https://developers.google.com/drive/api/v3/mime-types
			MimeType: "application/vnd.google-apps.file",
			Parents:  []string{s.backupsFolderId},
		}

		nextBackupChunkFile, err := s.service.
			Files.Create(fileMeta).
			Fields("id, parents").
			Media(bytes.NewReader(nextWorkoutsJson)).
			Do()
		if err != nil {
			return fmt.Errorf("%s: failed to create workouts backup file: %w", nextFileName, err)
		}

		permissionId, err := s.updateFilePermission(nextBackupChunkFile.Id)
		if err != nil {
			return fmt.Errorf("%s: failed to create additional permission: %s", nextFileName, err)
		}

		log.Printf("%s: backup file [%s] [permission %s] saved: %s", nextFileName, fileMeta.Name, permissionId, nextBackupChunkFile.Id)

		fromIndex = toIndex
		toIndex = toIndex + workoutsFileChunkSize
		if toIndex >= len(workoutTrees) {
			toIndex = len(workoutTrees)
		}
	}

	return nil
}

func (s *GoogleDriveBackupService) updateFilePermission(fileId string) (string, error) {
	if s.shareWithEmail == "" {
		// nobody to share with, the service account keeps sole access
		return "", nil
	}

	permission := &drive.Permission{
		EmailAddress: s.shareWithEmail,
		Type:         "user",
		Role:         "reader",
	}

	createdPermission, err := s.service.Permissions.
		Create(fileId, permission).
		Do()
	if err != nil {
		return "", err
	}

	return createdPermission.Id, nil
}

func (s *GoogleDriveBackupService) getWorkoutsBackupFiles(backupsFolderId string) ([]*drive.File, error) {
	bQuery := fmt.Sprintf("'%s' in parents and mimeType != 'application/vnd.google-apps.folder' and trashed = false", backupsFolderId)
	backups, err := s.service.
		Files.List().
		Q(bQuery).
		Fields("files(id, name, createdTime)").
		Do()
	if err != nil {
		return nil, err
	}

	return backups.Files, nil
}

// DestroyAllFiles removes every file the backup service account can see.
// The files list is not paged, for over 100 files it needs to run repeatedly.
func DestroyAllFiles(ctx context.Context, credentialsJson []byte) error {
	driveService, err := drive.NewService(ctx, option.WithCredentialsJSON(credentialsJson))
	if err != nil {
		return fmt.Errorf("unable to retrieve drive client: %w", err)
	}

	files, err := driveService.Files.List().Fields("files(id, name)").Do()
	if err != nil {
		return fmt.Errorf("unable to retrieve files: %w", err)
	}

	if len(files.Files) == 0 {
		log.Println("no files to destroy")
		return nil
	}

	for _, f := range files.Files {
		if err := driveService.Files.Delete(f.Id).Do(); err != nil {
			return fmt.Errorf("delete file %s (%s): %w", f.Name, f.Id, err)
		}
		log.Printf("file %s (%s) deleted", f.Name, f.Id)
	}

	return nil
}
