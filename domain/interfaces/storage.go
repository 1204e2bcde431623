package interfaces

import "browser_library/domain/entities"

// Storage persists browser state and keyword history
type Storage interface {
	// SaveState saves browser cookies
	SaveState(cookies []entities.Cookie) error

	// LoadState loads browser cookies, empty when nothing was saved
	LoadState() ([]entities.Cookie, error)

	// SaveHistory saves the keyword history journal
	SaveHistory(history []entities.KeywordRecord) error

	// LoadHistory loads the keyword history journal
	LoadHistory() ([]entities.KeywordRecord, error)
}

// StorageFactory creates the storage of an output directory
type StorageFactory func(outputDir string) (Storage, error)
