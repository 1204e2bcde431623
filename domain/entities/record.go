package entities

import "time"

// KeywordStatus is the outcome of one dispatched keyword
type KeywordStatus string

const (
	StatusPass KeywordStatus = "PASS"
	StatusFail KeywordStatus = "FAIL"
)

// KeywordRecord is one entry of the keyword history journal
type KeywordRecord struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Status     KeywordStatus `json:"status"`
	ErrorKind  string        `json:"error_kind,omitempty"`
	Message    string        `json:"message,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
	Screenshot string        `json:"screenshot,omitempty"`
}

// HookResult describes one failure hook run. Err holds the secondary
// failure, if any; it is reported here and never returned to the caller.
type HookResult struct {
	Keyword string
	Path    string
	Skipped bool
	Err     error
}

// Succeeded reports whether the screenshot keyword ran without error.
func (r HookResult) Succeeded() bool {
	return !r.Skipped && r.Err == nil
}
