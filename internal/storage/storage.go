package storage

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pfrederiksen/subwatch/internal/subscription"
	"github.com/pkg/errors"
)

// StateFileName is the default name of the state file inside the data directory
const StateFileName = "subscription_data.json"

// FileStore handles persistence of the subscription state on local disk
type FileStore struct {
	dataDir  string
	fileName string
}

// New creates a FileStore for the default state file in dataDir. The directory is created on
// the first save, not here.
func New(dataDir string) (*FileStore, error) {
	return NewWithFile(dataDir, StateFileName)
}

// NewWithFile creates a FileStore for a custom state file name
func NewWithFile(dataDir, fileName string) (*FileStore, error) {
	dataDir, err := ExpandHome(dataDir)
	if err != nil {
		return nil, err
	}
	if dataDir == "" {
		return nil, errors.New("data directory is required")
	}
	if fileName == "" {
		fileName = StateFileName
	}
	if filepath.Base(fileName) != fileName {
		return nil, errors.Errorf("state file name must not contain a path: %s", fileName)
	}

	return &FileStore{
		dataDir:  dataDir,
		fileName: fileName,
	}, nil
}

// ExpandHome expands a leading ~/ to the user's home directory
func ExpandHome(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(err, "getting home directory")
		}
		path = filepath.Join(home, path[2:])
	}
	return path, nil
}

// Path returns the path of the state file
func (s *FileStore) Path() string {
	return filepath.Join(s.dataDir, s.fileName)
}

// Load reads the state from disk. A missing file is the first-run case and yields an empty state.
func (s *FileStore) Load() (subscription.State, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return subscription.NewState(), nil
		}
		return nil, &subscription.IOError{Op: "reading state", Err: err}
	}

	state, err := Decode(data)
	if err != nil {
		return nil, errors.Wrap(err, s.Path())
	}
	return state, nil
}

// Save writes the full state to a temporary file next to the target and renames it into
// place, so a failed write never leaves a truncated state file behind.
func (s *FileStore) Save(state subscription.State) error {
	data, err := Encode(state)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return &subscription.IOError{Op: "creating data directory", Err: err}
	}

	tmp, err := os.CreateTemp(s.dataDir, s.fileName+".tmp-*")
	if err != nil {
		return &subscription.IOError{Op: "creating temp file", Err: err}
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpPath) // nolint:errcheck
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() // nolint:errcheck
		return &subscription.IOError{Op: "writing state", Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close() // nolint:errcheck
		return &subscription.IOError{Op: "syncing state", Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &subscription.IOError{Op: "closing state", Err: err}
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return &subscription.IOError{Op: "setting state permissions", Err: err}
	}
	if err := os.Rename(tmpPath, s.Path()); err != nil {
		return &subscription.IOError{Op: "replacing state", Err: err}
	}
	committed = true

	return nil
}
