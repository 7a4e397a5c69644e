package extract

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/janpfeifer/mctslog/internal/parameters"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultOutput is the file written if none is given.
const DefaultOutput = "hyperparameters.txt"

// Format of the written hyperparameters.
type Format int

const (
	JSON Format = iota
	YAML
)

func (f Format) String() string {
	switch f {
	case JSON:
		return "json"
	case YAML:
		return "yaml"
	}
	return "unknown"
}

// FormatForPath returns YAML for ".yaml" and ".yml" files, JSON otherwise.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	}
	return JSON
}

// Encode writes the hyperparameters as an array of mappings, in order.
func Encode(w io.Writer, format Format, all []*parameters.Hyperparameters) error {
	if all == nil {
		all = []*parameters.Hyperparameters{}
	}
	switch format {
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(all); err != nil {
			return errors.Wrap(err, "failed to encode hyperparameters as YAML")
		}
		return errors.Wrap(enc.Close(), "failed to encode hyperparameters as YAML")
	default:
		if err := json.NewEncoder(w).Encode(all); err != nil {
			return errors.Wrap(err, "failed to encode hyperparameters as JSON")
		}
	}
	return nil
}

// openWriterAndBackup creates filename, renaming any previous version to filename + "~".
func openWriterAndBackup(filename string) (io.WriteCloser, error) {
	if _, err := os.Stat(filename); err == nil {
		backupName := filename + "~"
		err = os.Rename(filename, backupName)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to rename %q to %q", filename, backupName)
		}
	}
	file, err := os.Create(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create %q", filename)
	}
	return file, nil
}

// Write the hyperparameters to path, in the format given by its extension (see FormatForPath).
// A previous file at path is kept as path + "~".
func Write(path string, all []*parameters.Hyperparameters) error {
	file, err := openWriterAndBackup(path)
	if err != nil {
		return err
	}
	err = Encode(file, FormatForPath(path), all)
	closeErr := file.Close()
	if err != nil {
		return errors.WithMessagef(err, "writing %q", path)
	}
	return errors.Wrapf(closeErr, "failed to close %q", path)
}
