package store

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/cardninja/cardsync/internal/model"
)

// RunEntry summarizes one updater invocation for the run log.
type RunEntry struct {
	Timestamp time.Time
	Provider  string
	Model     string
	Updated   []model.CardSource
	Failed    []model.CardSource
}

// AppendRunLog appends a human-readable run summary to the log file.
// Callers skip it for all-skipped runs where nothing was attempted.
func AppendRunLog(path string, entry RunEntry) error {
	var b strings.Builder
	rule := strings.Repeat("=", 60)

	b.WriteString("\n" + rule + "\n")
	fmt.Fprintf(&b, "Update: %s\n", entry.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Provider: %s / Model: %s\n", entry.Provider, entry.Model)
	b.WriteString(rule + "\n")

	if len(entry.Updated) > 0 {
		fmt.Fprintf(&b, "\nSuccessfully Updated (%d):\n", len(entry.Updated))
		for _, c := range entry.Updated {
			fmt.Fprintf(&b, "   - %s %s\n", c.Issuer, c.Name)
		}
	}

	if len(entry.Failed) > 0 {
		fmt.Fprintf(&b, "\nFailed/Defaults (%d):\n", len(entry.Failed))
		for _, c := range entry.Failed {
			fmt.Fprintf(&b, "   - %s %s\n", c.Issuer, c.Name)
		}
	}

	fmt.Fprintf(&b, "\nTotal: %d succeeded, %d failed\n", len(entry.Updated), len(entry.Failed))

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return eris.Wrapf(err, "store: open run log %s", path)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteString(b.String()); err != nil {
		return eris.Wrap(err, "store: append run log")
	}

	return nil
}
