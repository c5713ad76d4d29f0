package telecall

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"
)

var testRecords = []CallRecord{
	{ID: "CA1", Name: "John Doe", PhoneNumber: "123-456-7890", AIModel: "Zach", Feedback: "Good", FlaggedDate: "2025-02-01"},
	{ID: "CA2", Name: "Jane Smith", PhoneNumber: "987-654-3210", AIModel: "Sophia", Feedback: "Excellent", FlaggedDate: "2025-02-02"},
	{ID: "CA3", Name: "Alex Roe", PhoneNumber: "555-000-1111", AIModel: "Zach", Feedback: "", FlaggedDate: "2025-01-15"},
}

func callLogsHandler(records []CallRecord) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeTestJSON(w, records)
	}
}

func names(records []CallRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Name
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRefresh_ReplacesSnapshotAndDefaultSort(t *testing.T) {
	t.Parallel()

	srv := newTestBackend(t, func(mux *http.ServeMux) {
		mux.HandleFunc("/get_call_logs", callLogsHandler(testRecords))
	})

	store := NewClient(WithBaseURL(srv.URL)).Logs()
	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh error = %v", err)
	}

	// Default: flagged date descending, most recent first.
	got := names(store.Records())
	want := []string{"Jane Smith", "John Doe", "Alex Roe"}
	if !equalStrings(got, want) {
		t.Fatalf("Records() order = %v, want %v", got, want)
	}
}

func TestRefresh_FailureKeepsPreviousSnapshot(t *testing.T) {
	t.Parallel()

	var fail atomic.Bool
	srv := newTestBackend(t, func(mux *http.ServeMux) {
		mux.HandleFunc("/get_call_logs", func(w http.ResponseWriter, r *http.Request) {
			if fail.Load() {
				http.Error(w, "boom", http.StatusInternalServerError)
				return
			}
			writeTestJSON(w, testRecords)
		})
	})

	store := NewClient(WithBaseURL(srv.URL)).Logs()
	store.fetchMaxElapsed = 50 * time.Millisecond

	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh error = %v", err)
	}

	fail.Store(true)
	if err := store.Refresh(context.Background()); err == nil {
		t.Fatal("Refresh succeeded against a failing backend")
	}
	if got := len(store.Records()); got != len(testRecords) {
		t.Fatalf("records = %d after failed refresh, want previous snapshot of %d", got, len(testRecords))
	}
}

func TestApply_StaleSnapshotDiscarded(t *testing.T) {
	t.Parallel()

	store := NewClient().Logs()

	if !store.apply(2, testRecords[:2]) {
		t.Fatal("apply(2) rejected a fresh snapshot")
	}
	if store.apply(1, testRecords[2:]) {
		t.Fatal("apply(1) installed a stale snapshot")
	}
	if got := len(store.Records()); got != 2 {
		t.Fatalf("records = %d, want the generation-2 snapshot", got)
	}
}

func TestSortBy_ToggleAndReset(t *testing.T) {
	t.Parallel()

	store := NewClient().Logs()
	store.apply(1, testRecords)

	// New column resets to ascending.
	store.SortBy(SortByName)
	asc := names(store.Records())
	want := []string{"Alex Roe", "Jane Smith", "John Doe"}
	if !equalStrings(asc, want) {
		t.Fatalf("ascending by name = %v, want %v", asc, want)
	}

	// Same column toggles to descending.
	store.SortBy(SortByName)
	desc := names(store.Records())
	wantDesc := []string{"John Doe", "Jane Smith", "Alex Roe"}
	if !equalStrings(desc, wantDesc) {
		t.Fatalf("descending by name = %v, want %v", desc, wantDesc)
	}

	// Double toggle returns to the original ascending order.
	store.SortBy(SortByName)
	if again := names(store.Records()); !equalStrings(again, asc) {
		t.Fatalf("round-trip order = %v, want %v", again, asc)
	}

	// Selecting a different column resets ascending.
	store.SortBy(SortByName)
	store.SortBy(SortByFlaggedDate)
	if column, desc := store.Sort(); column != SortByFlaggedDate || desc {
		t.Fatalf("Sort() = %v/%v, want flaggedDate ascending", column, desc)
	}
}

func TestRecords_DoesNotMutateSnapshot(t *testing.T) {
	t.Parallel()

	store := NewClient().Logs()
	store.apply(1, testRecords)

	store.SortBy(SortByName)
	_ = store.Records()

	store.mu.Lock()
	first := store.records[0].ID
	store.mu.Unlock()
	if first != "CA1" {
		t.Fatalf("underlying snapshot reordered, first = %s", first)
	}
}

func TestFetchRecording_PartialFieldsSucceed(t *testing.T) {
	t.Parallel()

	srv := newTestBackend(t, func(mux *http.ServeMux) {
		mux.HandleFunc("/get_recording", func(w http.ResponseWriter, _ *http.Request) {
			writeTestJSON(w, map[string]string{"transcription": "hello"})
		})
	})

	store := NewClient(WithBaseURL(srv.URL)).Logs()

	detail, err := store.FetchRecording(context.Background(), "CA1")
	if err != nil {
		t.Fatalf("FetchRecording error = %v", err)
	}
	if detail.RecordingLink != "" || detail.Transcription != "hello" {
		t.Fatalf("detail = %+v", detail)
	}
}

func TestFetchRecording_SendsSID(t *testing.T) {
	t.Parallel()

	var gotSID atomic.Value
	srv := newTestBackend(t, func(mux *http.ServeMux) {
		mux.HandleFunc("/get_recording", func(w http.ResponseWriter, r *http.Request) {
			var body recordingRequest
			_ = decodeTestJSON(r, &body)
			gotSID.Store(body.SID)
			writeTestJSON(w, map[string]string{"recordingLink": "https://cdn.example/r.mp3", "transcription": "hi"})
		})
	})

	store := NewClient(WithBaseURL(srv.URL)).Logs()

	if _, err := store.FetchRecording(context.Background(), "CA42"); err != nil {
		t.Fatalf("FetchRecording error = %v", err)
	}
	if got, _ := gotSID.Load().(string); got != "CA42" {
		t.Fatalf("sid = %q, want CA42", got)
	}
}
