// Package store owns the pipeline's on-disk state: the source catalog it
// reads, the card dataset it checkpoints after every card, and the
// append-only run log.
package store

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"

	"github.com/cardninja/cardsync/internal/model"
)

// catalogFile is the shape of card_sources.json.
type catalogFile struct {
	Cards []model.CardSource `json:"cards"`
}

// LoadCatalog reads the source catalog. A missing or unreadable catalog is
// fatal to the run: there is nothing to process without it.
func LoadCatalog(path string) ([]model.CardSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "store: read catalog %s", path)
	}

	var catalog catalogFile
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, eris.Wrapf(err, "store: parse catalog %s", path)
	}

	return catalog.Cards, nil
}
