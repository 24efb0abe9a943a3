package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/similar/internal/domain"
	"github.com/kailas-cloud/similar/internal/domain/item"
)

// itemFile is the on-disk shape of one item. A file may hold several YAML documents.
type itemFile struct {
	Kind         string                `yaml:"kind"`
	ID           string                `yaml:"id"`
	Parent       string                `yaml:"parent"`
	Translations []string              `yaml:"translations"`
	Fields       map[string]fieldValue `yaml:"fields"`
}

// fieldValue accepts either a delimited string or a YAML list of tokens.
type fieldValue struct {
	scalar string
	list   []string
}

func (v *fieldValue) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		v.scalar = node.Value
		return nil
	case yaml.SequenceNode:
		return node.Decode(&v.list)
	default:
		return fmt.Errorf("line %d: field must be a string or a list", node.Line)
	}
}

func (v *fieldValue) join(delim string) string {
	if v.list != nil {
		return strings.Join(v.list, delim)
	}
	return v.scalar
}

// Importer loads YAML item files into the catalog.
type Importer struct {
	repo      *Repo
	delimiter string
	logger    *zap.Logger
}

// NewImporter creates an importer. List field values are joined with delimiter.
func NewImporter(repo *Repo, delimiter string, logger *zap.Logger) *Importer {
	if delimiter == "" {
		delimiter = domain.DefaultDelimiter
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{repo: repo, delimiter: delimiter, logger: logger}
}

// ImportDir imports every *.yaml / *.yml file under dir. Hidden files and directories are skipped.
// Files that fail to decode are logged and skipped; the valid items are still written and the
// per-file errors are returned joined. Returns the number of items written.
func (im *Importer) ImportDir(ctx context.Context, dir string) (int, error) {
	var (
		recs []*item.Record
		errs []error
	)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !IsItemFile(path) {
			return nil
		}
		fileRecs, err := im.readFile(path)
		if err != nil {
			im.logger.Warn("Skipping item file", zap.String("path", path), zap.Error(err))
			errs = append(errs, err)
			return nil
		}
		recs = append(recs, fileRecs...)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("walk %s: %w", dir, err)
	}

	if _, err := im.repo.PutMulti(ctx, recs); err != nil {
		return 0, err
	}
	im.logger.Info("Items imported",
		zap.String("dir", dir),
		zap.Int("items", len(recs)),
		zap.Int("skipped_files", len(errs)),
	)
	return len(recs), errors.Join(errs...)
}

// ImportFile imports a single item file and returns the items it held.
func (im *Importer) ImportFile(ctx context.Context, path string) ([]*item.Record, error) {
	recs, err := im.readFile(path)
	if err != nil {
		return nil, err
	}
	if _, err := im.repo.PutMulti(ctx, recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (im *Importer) readFile(path string) ([]*item.Record, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the configured content dir
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	recs, err := im.decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recs, nil
}

func (im *Importer) decode(r io.Reader) ([]*item.Record, error) {
	dec := yaml.NewDecoder(r)
	var recs []*item.Record
	for {
		var f itemFile
		if err := dec.Decode(&f); err != nil {
			if errors.Is(err, io.EOF) {
				return recs, nil
			}
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidItem, err)
		}

		kind, err := item.ParseKind(f.Kind)
		if err != nil {
			return nil, err
		}
		fields := make(map[string]string, len(f.Fields))
		for name, v := range f.Fields {
			fields[name] = v.join(im.delimiter)
		}
		rec, err := item.NewRecord(kind, f.ID, f.Parent, fields, f.Translations)
		if err != nil {
			return nil, err
		}
		recs = append(recs, &rec)
	}
}

// IsItemFile reports whether path looks like an importable item file.
func IsItemFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return !strings.HasPrefix(filepath.Base(path), ".")
	default:
		return false
	}
}
