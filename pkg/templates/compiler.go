package templates

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"

	"github.com/papercomputeco/ndbprep/pkg/logger"
)

// DefaultSymmetric are the relations whose templates read the same with
// subject and object exchanged: P47 (shares border with) and P26 (spouse).
var DefaultSymmetric = []string{"P47", "P26"}

var relationPattern = regexp.MustCompile(`.*(P[0-9]+).*`)

// RelationID extracts the Wikidata property id from a sheet file name, or
// returns "" when the name carries none.
func RelationID(path string) string {
	m := relationPattern.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return ""
	}
	return m[1]
}

// SourceDir is the directory holding the sheets of a template version.
func SourceDir(configsDir, version string) string {
	return filepath.Join(configsDir, "for_"+version)
}

// OutputPath is where the compiled config of a template version is written.
func OutputPath(configsDir, version string) string {
	return filepath.Join(configsDir, "generate_"+version+".json")
}

// Config maps relation id to its compiled templates.
type Config map[string]*Relation

// WriteFile writes the config as indented JSON.
func (c Config) WriteFile(path string) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encoding template config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing template config: %w", err)
	}
	return nil
}

// ReadConfig loads a compiled config written by WriteFile.
func ReadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return cfg, nil
}

// Options configures a Compiler.
type Options struct {
	// Symmetric lists relation ids that get swapped variants. Nil falls back
	// to DefaultSymmetric; an empty non-nil slice disables swapping.
	Symmetric []string

	Logger *slog.Logger
}

// Compiler turns a directory of template sheets into a Config.
type Compiler struct {
	symmetric []string
	logger    *slog.Logger
}

// NewCompiler creates a Compiler.
func NewCompiler(o Options) *Compiler {
	c := &Compiler{
		symmetric: o.Symmetric,
		logger:    o.Logger,
	}
	if c.symmetric == nil {
		c.symmetric = DefaultSymmetric
	}
	if c.logger == nil {
		c.logger = logger.Nop()
	}
	return c
}

// IsSymmetric reports whether id gets swapped variants.
func (c *Compiler) IsSymmetric(id string) bool {
	return slices.Contains(c.symmetric, id)
}

// CompileDir compiles every *.csv sheet in dir. Sheets whose name carries no
// relation id are skipped. When two sheets share an id the later one, in
// lexical order, wins.
func (c *Compiler) CompileDir(dir string) (Config, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("reading template dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("template path %s is not a directory", dir)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, err
	}
	slices.Sort(files)

	cfg := make(Config, len(files))
	for _, file := range files {
		id := RelationID(file)
		if id == "" {
			c.logger.Warn("skipping sheet without relation id", "file", file)
			continue
		}

		rel, err := c.CompileFile(id, file)
		if err != nil {
			return nil, err
		}

		if _, dup := cfg[id]; dup {
			c.logger.Warn("relation compiled twice, keeping later sheet", "relation", id, "file", file)
		}
		cfg[id] = rel
	}

	return cfg, nil
}

// CompileFile compiles a single sheet for relation id.
func (c *Compiler) CompileFile(id, path string) (*Relation, error) {
	rel, err := ReadFile(path)
	if err != nil {
		return nil, err
	}

	if c.IsSymmetric(id) {
		rel = rel.Symmetric()
	}

	c.logger.Debug("compiled sheet",
		"relation", id,
		"file", path,
		"symmetric", c.IsSymmetric(id),
		"categories", len(rel.Rules),
	)

	return rel, nil
}
