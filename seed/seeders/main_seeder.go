package seeders

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	log "github.com/sirupsen/logrus"
)

type PhotoUploader interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, objectSize int64, contentType string) (*minio.UploadInfo, error)
}

// MainSeeder coordinates all seeding operations
type MainSeeder struct {
	characters *CharacterSeeder
	uploader   PhotoUploader
	photoDir   string
}

func NewMainSeeder(store CharacterStore, overwrite bool) *MainSeeder {
	return &MainSeeder{characters: NewCharacterSeeder(store, overwrite)}
}

// WithPhotos uploads roster photos found under dir, keyed by their
// object name relative to it.
func (s *MainSeeder) WithPhotos(uploader PhotoUploader, dir string) *MainSeeder {
	s.uploader = uploader
	s.photoDir = dir
	return s
}

func (s *MainSeeder) SeedAll(ctx context.Context) error {
	log.Info("Starting database seeding...")

	if _, err := s.characters.SeedCharacters(ctx); err != nil {
		return fmt.Errorf("character seeding failed: %w", err)
	}

	if s.uploader != nil {
		if _, err := s.SeedPhotos(ctx); err != nil {
			return fmt.Errorf("photo upload failed: %w", err)
		}
	}

	log.Info("Database seeding completed successfully!")
	return nil
}

func (s *MainSeeder) SeedCharactersOnly(ctx context.Context) error {
	_, err := s.characters.SeedCharacters(ctx)
	return err
}

// SeedPhotos uploads every roster photo that has a local file. Missing
// files are skipped.
func (s *MainSeeder) SeedPhotos(ctx context.Context) (int, error) {
	if s.uploader == nil {
		return 0, fmt.Errorf("no photo storage configured")
	}

	uploaded := 0
	for _, character := range DefaultCharacters() {
		for _, photo := range character.Photos {
			path := filepath.Join(s.photoDir, filepath.FromSlash(photo.URL))
			ok, err := s.uploadOne(ctx, path, photo.URL)
			if err != nil {
				return uploaded, err
			}
			if ok {
				uploaded++
			}
		}
	}

	log.Infof("Photo upload completed, %d uploaded", uploaded)
	return uploaded, nil
}

func (s *MainSeeder) uploadOne(ctx context.Context, path, objectName string) (bool, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		log.WithField("file", path).Warn("Photo file not found, skipping")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return false, err
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if _, err := s.uploader.UploadFile(ctx, objectName, f, info.Size(), contentType); err != nil {
		return false, fmt.Errorf("uploading %s: %w", objectName, err)
	}
	log.WithField("object", objectName).Info("Uploaded photo")
	return true, nil
}
