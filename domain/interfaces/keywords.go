package interfaces

import "browser_library/domain/entities"

// KeywordGroup is a cohesive collection of keywords
type KeywordGroup interface {
	// Name identifies the group in keyword documentation
	Name() string

	// Keywords returns the group's keywords in documentation order
	Keywords() []entities.Keyword
}
