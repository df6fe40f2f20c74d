// Package ledger accumulates per-call collection failures for one inventory
// run. Collectors record into it instead of returning errors up the stack so
// that one failed call never aborts the rest of the run.
package ledger

import (
	"errors"
	"sort"
	"sync"

	"github.com/aws/smithy-go"
	"github.com/rs/zerolog/log"

	"github.com/pankaj-dahiya-devops/awsinv/internal/models"
)

// Recorder is the write side of a Ledger. Collectors depend on this
// interface only.
type Recorder interface {
	// Total records that kind could not be collected at all in scope.
	Total(scope string, kind models.ResourceKind, err error)

	// Partial records that item's enrichment failed; the item itself was kept.
	Partial(scope string, kind models.ResourceKind, item string, err error)
}

// Ledger is a concurrency-safe list of CollectionErrors.
// The zero value is ready to use.
type Ledger struct {
	mu      sync.Mutex
	entries []models.CollectionError
}

// New returns an empty Ledger.
func New() *Ledger {
	return &Ledger{}
}

// Total implements Recorder.
func (l *Ledger) Total(scope string, kind models.ResourceKind, err error) {
	l.record(models.CollectionError{Scope: scope, Kind: kind}, err)
}

// Partial implements Recorder.
func (l *Ledger) Partial(scope string, kind models.ResourceKind, item string, err error) {
	l.record(models.CollectionError{Scope: scope, Kind: kind, Item: item, Partial: true}, err)
}

func (l *Ledger) record(entry models.CollectionError, err error) {
	if err == nil {
		return
	}
	entry.Cause = err.Error()
	entry.Code = ErrorCode(err)

	log.Warn().
		Str("scope", entry.Scope).
		Str("kind", string(entry.Kind)).
		Str("item", entry.Item).
		Str("code", entry.Code).
		Bool("partial", entry.Partial).
		Err(err).
		Msg("collection failed")

	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()
}

// Len returns the number of recorded entries.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Entries returns a sorted copy of the recorded entries. Workers record in a
// nondeterministic order; sorting by scope, kind, item, partial and cause
// makes two runs against the same account produce the same list.
func (l *Ledger) Entries() []models.CollectionError {
	l.mu.Lock()
	out := make([]models.CollectionError, len(l.entries))
	copy(out, l.entries)
	l.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Scope != b.Scope {
			return a.Scope < b.Scope
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Item != b.Item {
			return a.Item < b.Item
		}
		if a.Partial != b.Partial {
			return !a.Partial
		}
		return a.Cause < b.Cause
	})
	return out
}

// ErrorCode returns the AWS API error code carried by err, or "" when err
// did not come from an AWS API response.
func ErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}
