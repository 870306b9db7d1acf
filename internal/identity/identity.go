// Package identity manages the persistent machine identity tt uses to
// tag locally-produced events before they are merged with events
// synced in from other machines.
package identity

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/kandev/tt/internal/errs"
)

// Identity is the persistent per-machine identifier. The tmux focus
// hook folds MachineID into the ids of the events it produces; events
// carry no machine field of their own.
type Identity struct {
	MachineID string `json:"machine_id"`
	Label     string `json:"label"`
}

// Load reads the identity file at path, creating one with a fresh UUID
// and the given default label if it does not already exist.
func Load(path string, defaultLabel string) (*Identity, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		var id Identity
		if err := json.Unmarshal(data, &id); err != nil {
			return nil, errs.New(errs.StoreIO, "identity.Load", err)
		}
		return &id, nil
	}
	if !os.IsNotExist(err) {
		return nil, errs.New(errs.StoreIO, "identity.Load", err)
	}

	id := &Identity{
		MachineID: uuid.New().String(),
		Label:     defaultLabel,
	}
	if err := create(path, id); err != nil {
		return nil, err
	}
	return id, nil
}

func create(path string, id *Identity) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errs.New(errs.StoreIO, "identity.create", err)
	}
	data, err := json.MarshalIndent(id, "", "  ")
	if err != nil {
		return errs.New(errs.StoreIO, "identity.create", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			// Another process created it concurrently; treat as success.
			return nil
		}
		return errs.New(errs.StoreIO, "identity.create", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return errs.New(errs.StoreIO, "identity.create", err)
	}
	return nil
}

// DefaultLabel derives a reasonable default label from the machine's
// hostname, falling back to "unknown" if it cannot be determined.
func DefaultLabel() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "unknown"
	}
	return host
}
