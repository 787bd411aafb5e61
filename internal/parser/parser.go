package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/optics-dcs/miz-import/internal/archive"
	"github.com/optics-dcs/miz-import/internal/luatable"
	"github.com/optics-dcs/miz-import/internal/metrics"
	"github.com/optics-dcs/miz-import/pkg/core"
)

var (
	// ErrMissingLocalization is returned when a mission string key has no dictionary entry
	ErrMissingLocalization = errors.New("missing localization")
	// ErrMissingField is returned when a required top-level mission key is absent
	ErrMissingField = errors.New("missing mission field")
)

// Parser builds mission models from archives.
// It has zero external dependencies beyond a logger and an optional metrics recorder.
type Parser struct {
	logger  *slog.Logger
	metrics *metrics.Recorder
}

// NewParser creates a new parser with only a logger dependency
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// WithMetrics sets the recorder used for load timings.
func (p *Parser) WithMetrics(r *metrics.Recorder) *Parser {
	p.metrics = r
	return p
}

// Document is a decoded archive: the mission and dictionary tables.
type Document struct {
	Filename   string
	Mission    *luatable.Table
	Dictionary *luatable.Table
}

// Decode extracts and decodes both tables of the archive at path.
func (p *Parser) Decode(ctx context.Context, path string) (*Document, error) {
	missionText, dictText, err := archive.Extract(path)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	missionTbl, err := luatable.Decode(missionText)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", archive.MissionEntry, err)
	}
	dictTbl, err := luatable.Decode(dictText)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", archive.DictionaryEntry, err)
	}
	return &Document{Filename: path, Mission: missionTbl, Dictionary: dictTbl}, nil
}

// Load extracts, decodes and builds the mission at path. Any error aborts the load and no
// partial model is returned.
func (p *Parser) Load(ctx context.Context, path string) (*core.Mission, error) {
	start := time.Now()
	var terrain string

	m, err := p.load(ctx, path)
	if m != nil {
		terrain = m.Terrain
	}
	p.metrics.RecordParse(ctx, time.Since(start), terrain, err)
	if err != nil {
		p.logger.Error("Failed to load mission", "file", path, "error", err)
		return nil, err
	}

	p.logger.Info("Loaded mission",
		"file", path,
		"sortie", m.Sortie,
		"terrain", m.Terrain,
		"groups", len(m.AircraftGroups),
		"duration", time.Since(start))
	return m, nil
}

func (p *Parser) load(ctx context.Context, path string) (*core.Mission, error) {
	doc, err := p.Decode(ctx, path)
	if err != nil {
		return nil, err
	}
	return p.Build(doc.Mission, doc.Dictionary, doc.Filename)
}
