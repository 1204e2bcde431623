package storage

import (
	"browser_library/domain/entities"
	"browser_library/domain/interfaces"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	StateFile   = "browser_state.json"
	HistoryFile = "keyword_history.json"
)

type browserState struct {
	statePath   string
	historyPath string
}

// NewBrowserState - creates browser state storage in dir
func NewBrowserState(dir string) (interfaces.Storage, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	return &browserState{
		statePath:   filepath.Join(dir, StateFile),
		historyPath: filepath.Join(dir, HistoryFile),
	}, nil
}

// SaveState - saves browser cookies to file
func (s *browserState) SaveState(cookies []entities.Cookie) error {
	return writeJSON(s.statePath, cookies)
}

// LoadState - loads browser cookies from file
func (s *browserState) LoadState() ([]entities.Cookie, error) {
	cookies := []entities.Cookie{}
	if err := readJSON(s.statePath, &cookies); err != nil {
		return nil, err
	}
	return cookies, nil
}

// SaveHistory - saves keyword history
func (s *browserState) SaveHistory(history []entities.KeywordRecord) error {
	return writeJSON(s.historyPath, history)
}

// LoadHistory - loads keyword history
func (s *browserState) LoadHistory() ([]entities.KeywordRecord, error) {
	history := []entities.KeywordRecord{}
	if err := readJSON(s.historyPath, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// readJSON - decodes path into v, leaving v untouched if the file does not exist
func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}
	return nil
}
