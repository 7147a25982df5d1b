package queue

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// state is the persisted queue record. Order is a permutation of the
// catalog's relative filenames, Position indexes the next entry to show
// (Position == len(Order) means the pass is exhausted), Signature is the
// catalog fingerprint the permutation was built from.
//
// Unknown fields in the file are ignored and missing fields yield zero
// values that fail validation, so a format change regenerates the queue
// instead of crashing.
type state struct {
	Order     []string `json:"order"`
	Position  int      `json:"position"`
	Signature string   `json:"signature"`
}

func (s *state) valid() bool {
	return s.Signature != "" && s.Position >= 0 && s.Position <= len(s.Order)
}

// loadState reads the persisted record. A missing, unreadable or malformed
// file is reported as absent; durability never blocks a cycle.
func loadState(path string) (state, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return state{}, false, nil
		}
		return state{}, false, err
	}
	var s state
	if err := json.Unmarshal(data, &s); err != nil {
		return state{}, false, fmt.Errorf("parsing %s: %w", path, err)
	}
	if !s.valid() {
		return state{}, false, fmt.Errorf("state file %s failed validation", path)
	}
	return s, true, nil
}

// saveState writes the record with atomic replace semantics: the bytes land
// in a temp file in the same directory, which is then renamed over the
// target. A crash mid-write leaves the previous record intact.
func saveState(path string, s state) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()
	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// removeState deletes the persisted record. An already-absent file is not
// an error.
func removeState(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
