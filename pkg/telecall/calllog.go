package telecall

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// CallRecord is one historical call as reported by the backend. Records
// are immutable on the client; the backend may append feedback later, which
// shows up in the next snapshot.
type CallRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
	AIModel     string `json:"aiModel"`
	Feedback    string `json:"feedback"`
	FlaggedDate string `json:"flaggedDate"`
}

// RecordingDetail is the recording/transcription pair for one call. Either
// field may be absent in the backend response; absence is logged, never
// fatal.
type RecordingDetail struct {
	RecordingLink string `json:"recordingLink"`
	Transcription string `json:"transcription"`
}

// SortColumn names a sortable call log column.
type SortColumn string

const (
	SortByName        SortColumn = "name"
	SortByPhoneNumber SortColumn = "phoneNumber"
	SortByAIModel     SortColumn = "aiModel"
	SortByFeedback    SortColumn = "feedback"
	SortByFlaggedDate SortColumn = "flaggedDate"
)

const logFetchMaxElapsed = 10 * time.Second

// CallLogStore holds the current call log snapshot and the operator's sort
// selection. Fetches always replace the whole snapshot; when fetches race,
// the most recently issued one wins. Sorting is a pure view transform and
// never triggers a refetch.
type CallLogStore struct {
	client *Client
	logger *slog.Logger

	mu         sync.Mutex
	records    []CallRecord
	appliedGen uint64
	nextGen    uint64
	sortBy     SortColumn
	sortDesc   bool
	collator   *collate.Collator

	fetchMaxElapsed time.Duration
}

func newCallLogStore(c *Client) *CallLogStore {
	return &CallLogStore{
		client:          c,
		logger:          c.logger.With("component", "calllog"),
		sortBy:          SortByFlaggedDate,
		sortDesc:        true,
		collator:        collate.New(language.English),
		fetchMaxElapsed: logFetchMaxElapsed,
	}
}

// Refresh fetches the full call log and replaces the snapshot. Transient
// failures are retried briefly; a fetch that still fails leaves the
// previous snapshot in place and is logged rather than surfaced as fatal.
func (s *CallLogStore) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.nextGen++
	gen := s.nextGen
	s.mu.Unlock()

	var records []CallRecord
	op := func() error {
		records = nil
		if err := s.client.postJSON(ctx, "/get_call_logs", struct{}{}, &records); err != nil {
			var apiErr *Error
			if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
				return backoff.Permanent(err)
			}
			return err
		}
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = s.fetchMaxElapsed
	if err := backoff.Retry(op, backoff.WithContext(policy, ctx)); err != nil {
		s.logger.Error("call log fetch failed", "error", err)
		return fmt.Errorf("fetch call logs: %w", err)
	}

	if !s.apply(gen, records) {
		s.logger.Debug("discarding stale call log snapshot", "generation", gen)
		return nil
	}
	s.logger.Info("call log refreshed", "records", len(records))
	return nil
}

// apply installs a snapshot unless a more recently issued fetch already
// resolved. Returns false when the snapshot was stale and discarded.
func (s *CallLogStore) apply(gen uint64, records []CallRecord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen <= s.appliedGen {
		return false
	}
	s.appliedGen = gen
	s.records = records
	return true
}

// SortBy selects the sort column. Selecting the active column toggles the
// order; selecting a different column resets to ascending.
func (s *CallLogStore) SortBy(column SortColumn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sortBy == column {
		s.sortDesc = !s.sortDesc
		return
	}
	s.sortBy = column
	s.sortDesc = false
}

// Sort returns the current sort selection.
func (s *CallLogStore) Sort() (SortColumn, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortBy, s.sortDesc
}

// Records returns the snapshot sorted by the current selection. The
// underlying snapshot is never mutated; a stable sort keeps equal keys in
// fetch order.
func (s *CallLogStore) Records() []CallRecord {
	// The collator keeps internal buffers, so sorting stays under the lock.
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]CallRecord, len(s.records))
	copy(records, s.records)

	sort.SliceStable(records, func(i, j int) bool {
		if s.sortDesc {
			return recordLess(s.collator, records[j], records[i], s.sortBy)
		}
		return recordLess(s.collator, records[i], records[j], s.sortBy)
	})
	return records
}

func recordLess(coll *collate.Collator, a, b CallRecord, column SortColumn) bool {
	switch column {
	case SortByFlaggedDate:
		ta, okA := parseFlaggedDate(a.FlaggedDate)
		tb, okB := parseFlaggedDate(b.FlaggedDate)
		if okA && okB {
			return ta.Before(tb)
		}
		// Unparseable dates compare as strings so ordering stays total.
		return coll.CompareString(a.FlaggedDate, b.FlaggedDate) < 0
	case SortByPhoneNumber:
		return coll.CompareString(a.PhoneNumber, b.PhoneNumber) < 0
	case SortByAIModel:
		return coll.CompareString(a.AIModel, b.AIModel) < 0
	case SortByFeedback:
		return coll.CompareString(a.Feedback, b.Feedback) < 0
	default:
		return coll.CompareString(a.Name, b.Name) < 0
	}
}

func parseFlaggedDate(value string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

type recordingRequest struct {
	SID string `json:"sid"`
}

// FetchRecording resolves the recording/transcription pair for one call.
// The two fields are independently optional: a response missing either one
// still succeeds, with the absence logged.
func (s *CallLogStore) FetchRecording(ctx context.Context, id string) (RecordingDetail, error) {
	var detail RecordingDetail
	if err := s.client.postJSON(ctx, "/get_recording", recordingRequest{SID: id}, &detail); err != nil {
		s.logger.Error("recording fetch failed", "sid", id, "error", err)
		return RecordingDetail{}, fmt.Errorf("fetch recording %s: %w", id, err)
	}
	if detail.RecordingLink == "" {
		s.logger.Warn("recording link missing in response", "sid", id)
	}
	if detail.Transcription == "" {
		s.logger.Warn("transcription missing in response", "sid", id)
	}
	return detail, nil
}
