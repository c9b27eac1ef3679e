package store

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/cardninja/cardsync/internal/model"
)

// LoadDataset reads the persisted card dataset. Missing or corrupt files
// yield an empty dataset rather than an error, so a first run (or a mangled
// file) starts clean instead of aborting.
func LoadDataset(path string) *model.Dataset {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			zap.L().Warn("store: dataset unreadable, starting empty",
				zap.String("path", path),
				zap.Error(err),
			)
		}
		return &model.Dataset{}
	}

	var ds model.Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		zap.L().Warn("store: dataset corrupt, starting empty",
			zap.String("path", path),
			zap.Error(err),
		)
		return &model.Dataset{}
	}

	return &ds
}

// SaveDataset rewrites the full dataset. The write goes to a temp file in
// the same directory and is renamed over the target, so an interrupted run
// never leaves a half-written dataset behind. Errors propagate: the caller
// must not continue believing the checkpoint landed.
func SaveDataset(path string, ds *model.Dataset) error {
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return eris.Wrap(err, "store: marshal dataset")
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return eris.Wrapf(err, "store: write dataset %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		return eris.Wrapf(err, "store: rename dataset %s", path)
	}

	return nil
}
