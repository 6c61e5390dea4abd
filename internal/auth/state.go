package auth

import (
	"encoding/json"
	"errors"
	"os"
)

// persistedState is the prior-session signal checked at startup. The
// sentinel admin flag short-circuits everything; otherwise the saved token
// is inspected for a still-valid identity.
type persistedState struct {
	IsAdmin bool   `json:"isAdmin,omitempty"`
	IDToken string `json:"idToken,omitempty"`
}

type stateFile struct {
	path string
}

func newStateFile(path string) *stateFile { return &stateFile{path: path} }

func (s *stateFile) Load() (*persistedState, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var st persistedState
	if err := json.Unmarshal(b, &st); err != nil {
		// a corrupt state file is the same as no state
		return nil, nil
	}
	return &st, nil
}

func (s *stateFile) Save(st persistedState) error {
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, b, 0o600)
}

func (s *stateFile) Clear() error {
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
