package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"venue-collections/src/logger"
	"venue-collections/src/models"
)

const (
	DefaultCollectionsFile = "collections.json"
	DefaultSingularFile    = "singularly_available_markets.json"
)

// -----------------------------------------------------------------------------

// DocumentWriter writes the two mappings of a run as JSON documents:
// {symbol: [venue, ...]} and {symbol: venue}.
type DocumentWriter struct {
	Dir             string
	CollectionsFile string
	SingularFile    string
	Logger          *logger.Logger

	wg    sync.WaitGroup
	mu    sync.Mutex
	errs  []error
	seq   uint64
	files map[string]*documentFile
}

// documentFile serializes the writes of one document. written is the
// sequence number of the run currently on disk.
type documentFile struct {
	mu      sync.Mutex
	written uint64
}

// -----------------------------------------------------------------------------

func NewDocumentWriter(dir, collectionsFile, singularFile string, log *logger.Logger) *DocumentWriter {
	if collectionsFile == "" {
		collectionsFile = DefaultCollectionsFile
	}
	if singularFile == "" {
		singularFile = DefaultSingularFile
	}
	return &DocumentWriter{
		Dir:             dir,
		CollectionsFile: collectionsFile,
		SingularFile:    singularFile,
		Logger:          log,
		files:           make(map[string]*documentFile),
	}
}

// -----------------------------------------------------------------------------

// Write starts writing both documents and returns immediately. A write that
// finishes after the one of a later call is dropped, so the newest run wins.
func (w *DocumentWriter) Write(result *models.MCollections) {
	w.mu.Lock()
	w.seq++
	seq := w.seq
	w.mu.Unlock()

	w.wg.Add(2)
	go w.writeDocument(w.CollectionsFile, seq, result.Collections)
	go w.writeDocument(w.SingularFile, seq, result.SinglyAvailable)
}

// -----------------------------------------------------------------------------

// Wait blocks until every pending write has finished and returns the
// accumulated write errors.
func (w *DocumentWriter) Wait() error {
	w.wg.Wait()

	w.mu.Lock()
	defer w.mu.Unlock()
	err := errors.Join(w.errs...)
	w.errs = nil
	return err
}

// -----------------------------------------------------------------------------

func (w *DocumentWriter) file(name string) *documentFile {
	w.mu.Lock()
	defer w.mu.Unlock()
	f, ok := w.files[name]
	if !ok {
		f = &documentFile{}
		w.files[name] = f
	}
	return f
}

// -----------------------------------------------------------------------------

func (w *DocumentWriter) writeDocument(name string, seq uint64, doc interface{}) {
	defer w.wg.Done()

	f := w.file(name)
	f.mu.Lock()
	defer f.mu.Unlock()

	path := filepath.Join(w.Dir, name)
	if seq < f.written {
		w.Logger.Debug("Skipping %s of run %d, run %d already written", path, seq, f.written)
		return
	}

	if err := writeJSONAtomic(path, doc); err != nil {
		w.Logger.Error("Failed to write %s: %v", path, err)
		w.mu.Lock()
		w.errs = append(w.errs, err)
		w.mu.Unlock()
		return
	}
	f.written = seq
	w.Logger.Debug("Wrote %s", path)
}

// -----------------------------------------------------------------------------

// writeJSONAtomic writes doc to a temp file in the target directory and
// renames it into place, so readers never see a partial document.
func writeJSONAtomic(path string, doc interface{}) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory '%s': %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// -----------------------------------------------------------------------------

// LoadDocuments reads back the documents written by a DocumentWriter.
func LoadDocuments(dir, collectionsFile, singularFile string) (*models.MCollections, error) {
	if collectionsFile == "" {
		collectionsFile = DefaultCollectionsFile
	}
	if singularFile == "" {
		singularFile = DefaultSingularFile
	}

	result := models.NewMCollections()
	if err := readJSON(filepath.Join(dir, collectionsFile), &result.Collections); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, singularFile), &result.SinglyAvailable); err != nil {
		return nil, err
	}
	if result.Collections == nil {
		result.Collections = make(map[string][]string)
	}
	if result.SinglyAvailable == nil {
		result.SinglyAvailable = make(map[string]string)
	}
	return result, nil
}

func readJSON(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read '%s': %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse '%s': %w", path, err)
	}
	return nil
}
