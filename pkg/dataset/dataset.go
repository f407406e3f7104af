// Package dataset loads dialogue datasets from JSON or YAML files.
//
// A dataset file holds a list of sessions, each a list of utterance lines.
// The last file of a run must also hold current_context, the open exchange
// the final response answers:
//
//	{
//	  "sessions": [["User: ...", "Assistant: ..."], ["User: ..."]],
//	  "current_context": ["User: ..."]
//	}
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/papercomputeco/rsum/pkg/dialogue"
)

var (
	// ErrDatasetNotFound is returned for each dataset path that does not exist.
	ErrDatasetNotFound = errors.New("dataset file not found")

	// ErrMissingCurrentContext is returned when the last document has no
	// current_context.
	ErrMissingCurrentContext = errors.New("dataset is missing current_context")

	// ErrNoDataset is returned when no dataset path is given.
	ErrNoDataset = errors.New("no dataset files given")
)

// Document is one dataset file.
type Document struct {
	Sessions       [][]string `json:"sessions" yaml:"sessions"`
	CurrentContext []string   `json:"current_context,omitempty" yaml:"current_context,omitempty"`
}

// Dataset is the assembled input of a run.
type Dataset struct {
	Sessions []dialogue.Session
	Context  dialogue.Context
}

// Load reads every path, concatenates their sessions in order, and takes the
// current context from the last file. All paths are checked before any is
// parsed; every missing one is reported together.
func Load(paths ...string) (*Dataset, error) {
	if len(paths) == 0 {
		return nil, ErrNoDataset
	}

	var missing *multierror.Error
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				missing = multierror.Append(missing, fmt.Errorf("%w: %s", ErrDatasetNotFound, p))
				continue
			}
			missing = multierror.Append(missing, fmt.Errorf("stat %s: %w", p, err))
		}
	}
	if err := missing.ErrorOrNil(); err != nil {
		return nil, err
	}

	docs := make([]Document, 0, len(paths))
	for _, p := range paths {
		doc, err := ReadFile(p)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return Build(docs...)
}

// ReadFile decodes one dataset file, choosing YAML for .yaml and .yml
// extensions and JSON otherwise.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}

	var doc Document
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &doc)
	default:
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("decode dataset %s: %w", path, err)
	}
	return &doc, nil
}

// Build assembles documents into a Dataset, renumbering sessions 1..N.
func Build(docs ...Document) (*Dataset, error) {
	if len(docs) == 0 {
		return nil, ErrNoDataset
	}

	var groups [][]string
	for _, doc := range docs {
		groups = append(groups, doc.Sessions...)
	}

	last := docs[len(docs)-1]
	if last.CurrentContext == nil {
		return nil, ErrMissingCurrentContext
	}

	return &Dataset{
		Sessions: dialogue.NewSessions(groups),
		Context:  dialogue.NewContext(last.CurrentContext),
	}, nil
}
