package backup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrArtifactNotFound distinguishes a missing backup artifact from other
// read failures.
var ErrArtifactNotFound = errors.New("backup artifact not found")

// ArtifactStore persists backup snapshots as keyed blobs. Artifacts are
// written once and never mutated afterwards.
type ArtifactStore interface {
	Write(backupID string, data []byte) error
	Read(backupID string) ([]byte, error)
	Delete(backupID string) error
	ListIDs() ([]string, error)
	Ping() error
}

// FileArtifactStore keeps one JSON file per backup under a root directory.
// The directory is the durable record of all backups and survives process
// restarts.
type FileArtifactStore struct {
	rootPath string
}

func NewFileArtifactStore(rootPath string) (*FileArtifactStore, error) {
	if rootPath == "" {
		return nil, errors.New("backup root path must not be empty")
	}
	if err := os.MkdirAll(rootPath, os.ModePerm); err != nil {
		return nil, fmt.Errorf("could not create backup directory: %w", err)
	}
	return &FileArtifactStore{rootPath: rootPath}, nil
}

func (fs *FileArtifactStore) filename(backupID string) string {
	return filepath.Join(fs.rootPath, backupID+".json")
}

func (fs *FileArtifactStore) Write(backupID string, data []byte) error {
	return os.WriteFile(fs.filename(backupID), data, 0600)
}

func (fs *FileArtifactStore) Read(backupID string) ([]byte, error) {
	data, err := os.ReadFile(fs.filename(backupID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrArtifactNotFound
		}
		return nil, err
	}
	return data, nil
}

func (fs *FileArtifactStore) Delete(backupID string) error {
	err := os.Remove(fs.filename(backupID))
	if err != nil && os.IsNotExist(err) {
		return ErrArtifactNotFound
	}
	return err
}

func (fs *FileArtifactStore) ListIDs() ([]string, error) {
	entries, err := os.ReadDir(fs.rootPath)
	if err != nil {
		return nil, err
	}
	ids := []string{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(entry.Name(), ".json"))
	}
	return ids, nil
}

func (fs *FileArtifactStore) Ping() error {
	info, err := os.Stat(fs.rootPath)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("backup root %s is not a directory", fs.rootPath)
	}
	return nil
}
