// Package metadata reads and writes the .meta.cfg file that records which
// template a repository uses and its template-specific flags.
package metadata

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/conn-castle/config-package/internal/messages"
)

const (
	// FileName is the metadata file inside the target repository.
	FileName = ".meta.cfg"
	// Section is the section holding every recognized key.
	Section = "meta"

	KeyTemplate            = "template"
	KeyCommitID            = "commit-id"
	KeyWithPyPy            = "with-pypy"
	KeySupportLegacyPython = "support-legacy-python"
	KeyFailUnder           = "fail-under"

	// legacyKeySupportLegacyPython is the spelling used by older metadata files.
	legacyKeySupportLegacyPython = "support_legacy_python"

	// DefaultFailUnder seeds the coverage threshold on first configuration.
	DefaultFailUnder = "0"
)

func init() {
	// Match the "key = value" layout of existing files without aligning keys.
	ini.PrettyFormat = false
	ini.PrettyEqual = true
}

// loadOptions folds key names to lower case, matching how the files are
// read by Python's configparser.
var loadOptions = ini.LoadOptions{InsensitiveKeys: true}

// System is the filesystem surface the store needs.
type System interface {
	ReadFile(name string) ([]byte, error)
	WriteFileAtomic(filename string, data []byte, perm os.FileMode) error
}

// Record is the typed view of the meta section.
type Record struct {
	Template            string
	CommitID            string
	WithPyPy            bool
	SupportLegacyPython bool
	FailUnder           string
	// FailUnderSet is true when the threshold was present in the file.
	FailUnderSet bool
}

// Overrides holds the values a run contributes to the record.
type Overrides struct {
	Template            string
	CommitID            string
	WithPyPy            bool
	SupportLegacyPython bool
}

// Merge returns a new record combining r with o. Flags are sticky: a flag
// stays true once set. The coverage threshold is seeded only when absent.
func (r Record) Merge(o Overrides) Record {
	merged := r
	merged.Template = o.Template
	merged.CommitID = o.CommitID
	merged.WithPyPy = r.WithPyPy || o.WithPyPy
	merged.SupportLegacyPython = r.SupportLegacyPython || o.SupportLegacyPython
	if !merged.FailUnderSet {
		merged.FailUnder = DefaultFailUnder
		merged.FailUnderSet = true
	}
	return merged
}

// Store wraps the parsed metadata file. Unrecognized keys and sections are kept.
type Store struct {
	file   *ini.File
	record Record
	exists bool
}

// New returns an empty store with a single meta section.
func New() *Store {
	file := ini.Empty(loadOptions)
	_, _ = file.NewSection(Section)
	return &Store{file: file}
}

// Load parses the metadata file at path, or returns an empty store when it is missing.
func Load(sys System, path string) (*Store, error) {
	data, err := sys.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return New(), nil
		}
		return nil, fmt.Errorf(messages.MetadataReadFailedFmt, path, err)
	}
	file, err := ini.LoadSources(loadOptions, data)
	if err != nil {
		return nil, fmt.Errorf(messages.MetadataParseFailedFmt, path, err)
	}
	sec := file.Section(Section)
	record, err := readRecord(sec)
	if err != nil {
		return nil, fmt.Errorf(messages.MetadataParseFailedFmt, path, err)
	}
	return &Store{file: file, record: record, exists: true}, nil
}

func readRecord(sec *ini.Section) (Record, error) {
	var rec Record
	if key, err := sec.GetKey(KeyTemplate); err == nil {
		rec.Template = key.String()
	}
	if key, err := sec.GetKey(KeyCommitID); err == nil {
		rec.CommitID = key.String()
	}
	withPyPy, err := readBool(sec, KeyWithPyPy)
	if err != nil {
		return Record{}, err
	}
	rec.WithPyPy = withPyPy
	legacy, err := readBool(sec, KeySupportLegacyPython)
	if err != nil {
		return Record{}, err
	}
	oldLegacy, err := readBool(sec, legacyKeySupportLegacyPython)
	if err != nil {
		return Record{}, err
	}
	rec.SupportLegacyPython = legacy || oldLegacy
	if key, err := sec.GetKey(KeyFailUnder); err == nil {
		rec.FailUnder = key.String()
		rec.FailUnderSet = true
	}
	return rec, nil
}

func readBool(sec *ini.Section, name string) (bool, error) {
	key, err := sec.GetKey(name)
	if err != nil {
		return false, nil
	}
	if strings.TrimSpace(key.String()) == "" {
		return false, nil
	}
	value, err := key.Bool()
	if err != nil {
		return false, fmt.Errorf(messages.MetadataInvalidBoolFmt, name, key.String())
	}
	return value, nil
}

// Record returns the values read from disk.
func (s *Store) Record() Record {
	return s.record
}

// Exists reports whether the store was read from an existing file.
func (s *Store) Exists() bool {
	return s.exists
}

// Render serializes rec into the store and returns the file content prefixed with header.
func (s *Store) Render(rec Record, header string) ([]byte, error) {
	sec := s.file.Section(Section)
	type keyValue struct {
		key   string
		value string
	}
	values := []keyValue{
		{KeyTemplate, rec.Template},
		{KeyCommitID, rec.CommitID},
		{KeyWithPyPy, formatBool(rec.WithPyPy)},
		{KeySupportLegacyPython, formatBool(rec.SupportLegacyPython)},
	}
	if rec.FailUnderSet {
		values = append(values, keyValue{KeyFailUnder, rec.FailUnder})
	}
	for _, kv := range values {
		if _, err := sec.NewKey(kv.key, kv.value); err != nil {
			return nil, fmt.Errorf(messages.MetadataSetKeyFailedFmt, kv.key, err)
		}
	}
	sec.DeleteKey(legacyKeySupportLegacyPython)

	// The header is regenerated on every write; drop the copy parsed from disk.
	s.file.Section(ini.DefaultSection).Comment = ""
	sec.Comment = ""

	var buf bytes.Buffer
	buf.WriteString(header)
	if _, err := s.file.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write persists rec to path with header prepended.
func (s *Store) Write(sys System, path string, rec Record, header string) error {
	data, err := s.Render(rec, header)
	if err != nil {
		return fmt.Errorf(messages.MetadataWriteFailedFmt, path, err)
	}
	if err := sys.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf(messages.MetadataWriteFailedFmt, path, err)
	}
	s.record = rec
	s.exists = true
	return nil
}

// formatBool matches the True/False spelling of existing metadata files.
func formatBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}
