package recipients

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/couchcryptid/openwater-etl/internal/domain"
	"gopkg.in/yaml.v3"
)

type document struct {
	Recipients []domain.Recipient `yaml:"recipients"`
}

// FileSource loads recipients from a YAML file on every call, so edits are
// picked up on the next run without a restart.
type FileSource struct {
	path   string
	logger *slog.Logger
}

// NewFileSource creates a FileSource reading path.
func NewFileSource(path string, logger *slog.Logger) *FileSource {
	return &FileSource{path: path, logger: logger}
}

// Recipients reads and validates the recipients file.
func (s *FileSource) Recipients(_ context.Context) ([]domain.Recipient, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read recipients: %w", err)
	}
	return Decode(bytes.NewReader(data), s.logger)
}

// Decode parses a recipients document. Entries with an invalid email are
// dropped, invalid state codes are removed from their entry, valid ones are
// upper-cased, and an unknown
// unit falls back to Fahrenheit. Each correction is logged at warn level.
func Decode(r io.Reader, logger *slog.Logger) ([]domain.Recipient, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode recipients: %w", err)
	}

	out := make([]domain.Recipient, 0, len(doc.Recipients))
	for i, rc := range doc.Recipients {
		if err := domain.ValidateEmail(rc.Email); err != nil {
			logger.Warn("skipping recipient", "index", i, "error", err)
			continue
		}

		states := make([]string, 0, len(rc.States))
		for _, code := range rc.States {
			norm, err := domain.NormalizeStateCode(code)
			if err != nil {
				logger.Warn("dropping state code", "recipient", rc.Email, "error", err)
				continue
			}
			states = append(states, norm)
		}
		rc.States = states

		unit, err := domain.ParseUnit(string(rc.Unit))
		if err != nil {
			logger.Warn("defaulting to fahrenheit", "recipient", rc.Email, "error", err)
			unit = domain.Fahrenheit
		}
		rc.Unit = unit

		out = append(out, rc)
	}
	return out, nil
}
