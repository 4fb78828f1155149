package transcript

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/calebhart/stepline/pkg/models"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "transcripts.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_BeginAndFinishRun(t *testing.T) {
	store := testStore(t)

	runID, err := store.BeginRun("test-plan", true)
	if err != nil {
		t.Fatalf("BeginRun returned error: %v", err)
	}
	if len(runID) != 8 {
		t.Errorf("run ID = %q, want 8-char id", runID)
	}

	runs, err := store.RecentRuns(10)
	if err != nil {
		t.Fatalf("RecentRuns returned error: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	if runs[0].ID != runID || runs[0].PlanName != "test-plan" || !runs[0].HaltOnError {
		t.Errorf("run = %+v", runs[0])
	}
	if runs[0].Status != "running" {
		t.Errorf("run status = %q, want running", runs[0].Status)
	}
	if runs[0].EndedAt != nil {
		t.Error("unfinished run should have no end time")
	}

	if err := store.FinishRun(runID, "done"); err != nil {
		t.Fatalf("FinishRun returned error: %v", err)
	}
	runs, _ = store.RecentRuns(10)
	if runs[0].Status != "done" {
		t.Errorf("finished run status = %q, want done", runs[0].Status)
	}
	if runs[0].EndedAt == nil {
		t.Error("finished run should have an end time")
	}
}

func TestStore_RecordTaskUpsert(t *testing.T) {
	store := testStore(t)
	runID, err := store.BeginRun("plan", true)
	if err != nil {
		t.Fatalf("BeginRun returned error: %v", err)
	}

	task := models.NewTask(models.TaskTypeText, "write")
	task.Start(time.Now())
	if err := store.RecordTask(runID, 0, task); err != nil {
		t.Fatalf("RecordTask (running) returned error: %v", err)
	}

	task.Complete([]string{"line one", "line two"}, time.Now())
	if err := store.RecordTask(runID, 0, task); err != nil {
		t.Fatalf("RecordTask (done) returned error: %v", err)
	}

	records, err := store.RunTasks(runID)
	if err != nil {
		t.Fatalf("RunTasks returned error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1 (upsert, not insert)", len(records))
	}
	rec := records[0]
	if rec.Status != "done" {
		t.Errorf("record status = %q, want done", rec.Status)
	}
	if len(rec.Results) != 2 || rec.Results[0] != "line one" || rec.Results[1] != "line two" {
		t.Errorf("record results = %v", rec.Results)
	}
}

func TestStore_RunTasksOrderedByIndex(t *testing.T) {
	store := testStore(t)
	runID, _ := store.BeginRun("plan", false)

	for i := 2; i >= 0; i-- {
		task := models.NewTask(models.TaskTypeText, "p")
		task.Start(time.Now())
		task.Complete([]string{"r"}, time.Now())
		if err := store.RecordTask(runID, i, task); err != nil {
			t.Fatalf("RecordTask returned error: %v", err)
		}
	}

	records, err := store.RunTasks(runID)
	if err != nil {
		t.Fatalf("RunTasks returned error: %v", err)
	}
	for i, rec := range records {
		if rec.Index != i {
			t.Errorf("record %d has index %d, want plan order", i, rec.Index)
		}
	}
}

func TestRecorder_ObserverRoundTrip(t *testing.T) {
	store := testStore(t)

	recorder, err := NewRecorder(store, "observed-plan", true)
	if err != nil {
		t.Fatalf("NewRecorder returned error: %v", err)
	}

	task := models.NewTask(models.TaskTypeSummarize, "summarize it")
	task.Start(time.Now())
	recorder.OnTaskStart(0, task)
	task.Fail("Task error: boom", time.Now())
	recorder.OnTaskDone(0, task)
	recorder.Finish("error")

	runs, _ := store.RecentRuns(1)
	if len(runs) != 1 || runs[0].Status != "error" {
		t.Fatalf("runs = %+v, want one errored run", runs)
	}
	records, _ := store.RunTasks(recorder.RunID())
	if len(records) != 1 || records[0].Status != "error" {
		t.Fatalf("records = %+v", records)
	}
	if records[0].Results[0] != "Task error: boom" {
		t.Errorf("recorded results = %v", records[0].Results)
	}
}

func TestStore_RecentRunsLimit(t *testing.T) {
	store := testStore(t)
	for i := 0; i < 5; i++ {
		if _, err := store.BeginRun("plan", true); err != nil {
			t.Fatalf("BeginRun returned error: %v", err)
		}
	}
	runs, err := store.RecentRuns(3)
	if err != nil {
		t.Fatalf("RecentRuns returned error: %v", err)
	}
	if len(runs) != 3 {
		t.Errorf("got %d runs, want 3", len(runs))
	}
}
