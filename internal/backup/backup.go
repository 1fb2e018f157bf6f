// Package backup manages timestamped backups of the snapshot file.
package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"taskpad/internal/fsutil"
)

// Version constants for the backup format.
const (
	ManifestVersion = "1.0"
	ManifestFile    = "manifest.json"
	BackupsDir      = "backups"
)

// Manager handles backup and restore of the snapshot file.
type Manager struct {
	dataDir    string // path to the data directory (e.g., ~/.taskpad)
	backupDir  string // path to the backups directory (e.g., ~/.taskpad/backups)
	dataFile   string // snapshot file name inside the data directory
	appVersion string // application version for the manifest
}

// Manifest contains metadata about a backup.
type Manifest struct {
	Version    string         `json:"version"`
	CreatedAt  time.Time      `json:"created_at"`
	AppVersion string         `json:"app_version"`
	Files      []string       `json:"files"`
	Stats      map[string]int `json:"stats"`
}

// Info summarizes one backup.
type Info struct {
	Name      string         // directory name (2026-08-30_143022_001)
	Path      string         // full path to the backup directory
	CreatedAt time.Time      // when the backup was created
	Stats     map[string]int // statistics (tasks)
}

// NewManager creates a backup manager for the given data directory and
// snapshot file name.
func NewManager(dataDir, dataFile, appVersion string) *Manager {
	return &Manager{
		dataDir:    dataDir,
		backupDir:  filepath.Join(dataDir, BackupsDir),
		dataFile:   dataFile,
		appVersion: appVersion,
	}
}

// Create copies the snapshot file into a new timestamped backup
// directory and writes a manifest. Returns the backup name.
func (m *Manager) Create() (string, error) {
	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}

	now := time.Now()
	name := fmt.Sprintf("%s_%03d", now.Format("2006-01-02_150405"), now.Nanosecond()/1e6)
	backupPath := filepath.Join(m.backupDir, name)
	if err := os.MkdirAll(backupPath, 0700); err != nil {
		return "", fmt.Errorf("create backup: %w", err)
	}

	var files []string
	stats := map[string]int{}

	srcPath := filepath.Join(m.dataDir, m.dataFile)
	if _, err := os.Stat(srcPath); err == nil {
		if err := copyFileAtomic(srcPath, filepath.Join(backupPath, m.dataFile)); err != nil {
			_ = os.RemoveAll(backupPath)
			return "", fmt.Errorf("copy %s: %w", m.dataFile, err)
		}
		files = append(files, m.dataFile)
		if n, err := countTasks(srcPath); err == nil {
			stats["tasks"] = n
		}
	}

	manifest := Manifest{
		Version:    ManifestVersion,
		CreatedAt:  now,
		AppVersion: m.appVersion,
		Files:      files,
		Stats:      stats,
	}
	if err := writeJSON(filepath.Join(backupPath, ManifestFile), manifest); err != nil {
		_ = os.RemoveAll(backupPath)
		return "", fmt.Errorf("write manifest: %w", err)
	}

	return name, nil
}

// List returns all available backups, newest first.
func (m *Manager) List() ([]Info, error) {
	if _, err := os.Stat(m.backupDir); os.IsNotExist(err) {
		return []Info{}, nil
	}

	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		return nil, fmt.Errorf("read backup directory: %w", err)
	}

	var backups []Info
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		backupPath := filepath.Join(m.backupDir, entry.Name())
		var manifest Manifest
		if err := readJSON(filepath.Join(backupPath, ManifestFile), &manifest); err != nil {
			createdAt, parseErr := parseBackupName(entry.Name())
			if parseErr != nil {
				continue // not a backup directory
			}
			manifest.CreatedAt = createdAt
			manifest.Stats = map[string]int{}
		}

		backups = append(backups, Info{
			Name:      entry.Name(),
			Path:      backupPath,
			CreatedAt: manifest.CreatedAt,
			Stats:     manifest.Stats,
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})
	return backups, nil
}

// Restore copies a backup's snapshot back into the data directory,
// creating a safety backup of current data first.
func (m *Manager) Restore(name string) error {
	if err := validateBackupName(name); err != nil {
		return err
	}

	backupPath := filepath.Join(m.backupDir, name)
	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		return fmt.Errorf("backup not found: %s", name)
	}

	var manifest Manifest
	if err := readJSON(filepath.Join(backupPath, ManifestFile), &manifest); err != nil {
		manifest.Files = []string{m.dataFile}
	}

	safetyName, err := m.Create()
	if err != nil {
		return fmt.Errorf("create safety backup: %w", err)
	}

	for _, filename := range manifest.Files {
		srcPath := filepath.Join(backupPath, filename)
		if _, err := os.Stat(srcPath); os.IsNotExist(err) {
			continue
		}
		dstPath := filepath.Join(m.dataDir, filename)
		if err := copyFileAtomic(srcPath, dstPath); err != nil {
			return fmt.Errorf("restore %s (safety backup: %s): %w", filename, safetyName, err)
		}
		if err := validateJSON(dstPath); err != nil {
			return fmt.Errorf("restored %s is invalid (safety backup: %s): %w", filename, safetyName, err)
		}
	}

	return nil
}

// RestoreLatest restores from the most recent backup.
func (m *Manager) RestoreLatest() error {
	backups, err := m.List()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups available")
	}
	return m.Restore(backups[0].Name)
}

// GetBackup returns info about a specific backup.
func (m *Manager) GetBackup(name string) (*Info, error) {
	if err := validateBackupName(name); err != nil {
		return nil, err
	}

	backupPath := filepath.Join(m.backupDir, name)
	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("backup not found: %s", name)
	}

	var manifest Manifest
	if err := readJSON(filepath.Join(backupPath, ManifestFile), &manifest); err != nil {
		createdAt, parseErr := parseBackupName(name)
		if parseErr != nil {
			return nil, fmt.Errorf("read manifest: %w", err)
		}
		manifest.CreatedAt = createdAt
		manifest.Stats = map[string]int{}
	}

	return &Info{
		Name:      name,
		Path:      backupPath,
		CreatedAt: manifest.CreatedAt,
		Stats:     manifest.Stats,
	}, nil
}

// Delete removes a specific backup.
func (m *Manager) Delete(name string) error {
	if err := validateBackupName(name); err != nil {
		return err
	}
	backupPath := filepath.Join(m.backupDir, name)
	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		return fmt.Errorf("backup not found: %s", name)
	}
	return os.RemoveAll(backupPath)
}

// Prune removes old backups, keeping only the keepCount most recent.
func (m *Manager) Prune(keepCount int) (int, error) {
	if keepCount < 0 {
		return 0, fmt.Errorf("keepCount must be non-negative")
	}

	backups, err := m.List()
	if err != nil {
		return 0, err
	}
	if len(backups) <= keepCount {
		return 0, nil
	}

	deleted := 0
	for _, b := range backups[keepCount:] {
		if err := m.Delete(b.Name); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

var backupNamePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}_\d{6}(_\d{3})?$`)

func validateBackupName(name string) error {
	if !backupNamePattern.MatchString(name) {
		return fmt.Errorf("invalid backup name: %q", name)
	}
	return nil
}

func parseBackupName(name string) (time.Time, error) {
	if len(name) < 17 {
		return time.Time{}, fmt.Errorf("invalid backup name: %q", name)
	}
	return time.ParseInLocation("2006-01-02_150405", name[:17], time.Local)
}

func countTasks(snapshotPath string) (int, error) {
	var snap struct {
		Tasks []json.RawMessage `json:"tasks"`
	}
	if err := readJSON(snapshotPath, &snap); err != nil {
		return 0, err
	}
	return len(snap.Tasks), nil
}

func copyFileAtomic(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(dst, data, 0600)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(path, data, 0600)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func validateJSON(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var v any
	return json.Unmarshal(data, &v)
}
