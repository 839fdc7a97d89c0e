package api

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"

	"tutor-dashboard/board"
	"tutor-dashboard/domain"
)

func decodeMutation(t *testing.T, rec *httptest.ResponseRecorder) mutationResponse {
	t.Helper()
	var resp mutationResponse
	if err := sonic.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return resp
}

func column(snap board.Snapshot, c domain.Category) []domain.Task {
	for _, col := range snap.Columns {
		if col.Category == c {
			return col.Tasks
		}
	}
	return nil
}

func TestPostTaskAppends(t *testing.T) {
	e, b := newTestServer(t, &mockPanels{})

	rec := serve(e, http.MethodPost, "/api/board/tasks", `{"category":"TotallyNeeded","text":"Algebra review"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeMutation(t, rec)
	if !resp.Applied {
		t.Fatalf("expected applied")
	}
	tasks := column(resp.Board, domain.TotallyNeeded)
	if len(tasks) != 1 || tasks[0].Text != "Algebra review" {
		t.Fatalf("unexpected column: %+v", tasks)
	}
	if got := column(b.Snapshot(), domain.TotallyNeeded); len(got) != 1 {
		t.Fatalf("store not updated: %+v", got)
	}
}

func TestPostTaskBlankIsNoop(t *testing.T) {
	e, _ := newTestServer(t, &mockPanels{})

	rec := serve(e, http.MethodPost, "/api/board/tasks", `{"category":"Needed","text":"   "}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeMutation(t, rec)
	if resp.Applied {
		t.Fatalf("blank text must not apply")
	}
	if resp.Warnings["text"] == "" {
		t.Fatalf("expected a text warning, got %+v", resp.Warnings)
	}
}

func TestPostTaskBadRequests(t *testing.T) {
	e, _ := newTestServer(t, &mockPanels{})

	tests := []struct {
		name string
		body string
		want int
	}{
		{"unknown category", `{"category":"Someday","text":"x"}`, http.StatusBadRequest},
		{"unknown field", `{"category":"Needed","text":"x","extra":1}`, http.StatusBadRequest},
		{"malformed", `{"category":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(e, http.MethodPost, "/api/board/tasks", tt.body)
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
			var resp errorResponse
			if err := sonic.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.Error == "" {
				t.Fatalf("expected error body, got %q", rec.Body.String())
			}
		})
	}
}

func TestTaskEditFlow(t *testing.T) {
	e, b := newTestServer(t, &mockPanels{})
	ctx := context.Background()
	for _, text := range []string{"a", "b", "c"} {
		if _, err := b.AddOrUpdateTask(ctx, domain.Needed, text); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	target := column(b.Snapshot(), domain.Needed)[1]

	rec := serve(e, http.MethodPost, "/api/board/tasks/"+target.ID+"/edit", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var edit taskEditResponse
	if err := sonic.Unmarshal(rec.Body.Bytes(), &edit); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if edit.Task.Text != "b" || edit.Ref.Index != 1 || edit.Ref.Category != domain.Needed {
		t.Fatalf("unexpected edit response: %+v", edit)
	}

	rec = serve(e, http.MethodPost, "/api/board/tasks", `{"category":"Needed","text":"B"}`)
	resp := decodeMutation(t, rec)
	got := column(resp.Board, domain.Needed)
	if len(got) != 3 || got[1].Text != "B" || got[1].ID != target.ID {
		t.Fatalf("expected in-place edit, got %+v", got)
	}
	if resp.Board.EditingTask != nil {
		t.Fatalf("edit should be cleared after submit")
	}
}

func TestCancelEdits(t *testing.T) {
	e, b := newTestServer(t, &mockPanels{})
	ctx := context.Background()
	if _, err := b.AddOrUpdateTask(ctx, domain.NotYet, "a"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := b.AddOrUpdateSchedule(ctx, domain.Schedule{TaskName: "a", AssignedTo: "Ada", Date: "2024-01-01", Time: "10:00"}); err != nil {
		t.Fatalf("add schedule: %v", err)
	}
	if _, err := b.BeginEditTask(domain.NotYet, 0); err != nil {
		t.Fatalf("begin task edit: %v", err)
	}
	if _, err := b.BeginEditSchedule(0); err != nil {
		t.Fatalf("begin schedule edit: %v", err)
	}

	rec := serve(e, http.MethodDelete, "/api/board/edits", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	snap := b.Snapshot()
	if snap.EditingTask != nil || snap.EditingSchedule != nil {
		t.Fatalf("expected no pending edits, got %+v", snap)
	}
}

func TestDeleteTaskHandler(t *testing.T) {
	e, b := newTestServer(t, &mockPanels{})
	if _, err := b.AddOrUpdateTask(context.Background(), domain.Needed, "a"); err != nil {
		t.Fatalf("add: %v", err)
	}
	id := column(b.Snapshot(), domain.Needed)[0].ID

	rec := serve(e, http.MethodDelete, "/api/board/tasks/"+id, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := column(b.Snapshot(), domain.Needed); len(got) != 0 {
		t.Fatalf("expected empty column, got %+v", got)
	}

	rec = serve(e, http.MethodDelete, "/api/board/tasks/"+id, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for a missing task, got %d", rec.Code)
	}
}

func TestPostSchedule(t *testing.T) {
	e, b := newTestServer(t, &mockPanels{})

	rec := serve(e, http.MethodPost, "/api/board/schedules",
		`{"taskName":"Algebra","assignedTo":"Ada","date":"2024-05-01","time":"09:00"}`)
	resp := decodeMutation(t, rec)
	if !resp.Applied || len(resp.Board.Schedules) != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Board.Schedules[0].Status != domain.StatusPending {
		t.Fatalf("expected default status, got %q", resp.Board.Schedules[0].Status)
	}

	rec = serve(e, http.MethodPost, "/api/board/schedules", `{"taskName":"Algebra","date":"2024-05-01","time":"09:00"}`)
	resp = decodeMutation(t, rec)
	if resp.Applied {
		t.Fatalf("incomplete schedule must not apply")
	}
	if resp.Warnings["assignedTo"] != "assignedTo is required" {
		t.Fatalf("unexpected warnings: %+v", resp.Warnings)
	}
	if got := len(b.Schedules()); got != 1 {
		t.Fatalf("expected 1 schedule, got %d", got)
	}
}

func TestScheduleEditAndDelete(t *testing.T) {
	e, b := newTestServer(t, &mockPanels{})
	ctx := context.Background()
	for _, who := range []string{"Ada", "Grace"} {
		if _, err := b.AddOrUpdateSchedule(ctx, domain.Schedule{TaskName: "t", AssignedTo: who, Date: "d", Time: "t"}); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	id := b.Schedules()[1].ID

	rec := serve(e, http.MethodPost, "/api/board/schedules/"+id+"/edit", "")
	var edit scheduleEditResponse
	if err := sonic.Unmarshal(rec.Body.Bytes(), &edit); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if edit.Index != 1 || edit.Schedule.AssignedTo != "Grace" {
		t.Fatalf("unexpected edit response: %+v", edit)
	}

	rec = serve(e, http.MethodPost, "/api/board/schedules",
		`{"taskName":"t","assignedTo":"Grace Hopper","date":"d","time":"t","status":"Completed"}`)
	resp := decodeMutation(t, rec)
	if len(resp.Board.Schedules) != 2 || resp.Board.Schedules[1].AssignedTo != "Grace Hopper" {
		t.Fatalf("expected in-place edit, got %+v", resp.Board.Schedules)
	}

	rec = serve(e, http.MethodDelete, "/api/board/schedules/"+id, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := b.Schedules(); len(got) != 1 || got[0].AssignedTo != "Ada" {
		t.Fatalf("unexpected schedules: %+v", got)
	}

	rec = serve(e, http.MethodPost, "/api/board/schedules/"+id+"/edit", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestExportCSV(t *testing.T) {
	e, b := newTestServer(t, &mockPanels{})
	ctx := context.Background()
	if _, err := b.AddOrUpdateTask(ctx, domain.NotYet, "read"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := b.AddOrUpdateSchedule(ctx, domain.Schedule{TaskName: "read", AssignedTo: "Ada", Date: "d", Time: "t"}); err != nil {
		t.Fatalf("add: %v", err)
	}

	rec := serve(e, http.MethodGet, "/api/board/tasks.csv", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := rec.Header().Get(echo.HeaderContentDisposition); !strings.Contains(cd, "tasks.csv") {
		t.Fatalf("unexpected content disposition %q", cd)
	}
	if want := "Category,Task\nNot Yet,\"read\""; rec.Body.String() != want {
		t.Fatalf("unexpected tasks csv %q", rec.Body.String())
	}

	rec = serve(e, http.MethodGet, "/api/board/schedules.csv", "")
	if want := "Task Name,Assigned To,Date,Time,Status\nread,Ada,d,t,Pending"; rec.Body.String() != want {
		t.Fatalf("unexpected schedules csv %q", rec.Body.String())
	}
}

func TestImportSchedulesRawBody(t *testing.T) {
	e, b := newTestServer(t, &mockPanels{})

	body := "Task Name,Assigned To,Date,Time,Status\nread,Ada,d,t,Pending\n,Ada,d,t,Pending"
	req := httptest.NewRequest(http.MethodPost, "/api/board/schedules/import", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, "text/csv")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp importResponse
	if err := sonic.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Imported != 1 || resp.Dropped != 1 {
		t.Fatalf("unexpected counts: %+v", resp)
	}
	if got := b.Schedules(); len(got) != 1 || got[0].TaskName != "read" {
		t.Fatalf("unexpected schedules: %+v", got)
	}
}

func TestImportSchedulesMultipart(t *testing.T) {
	e, b := newTestServer(t, &mockPanels{})

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "schedules.csv")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte("header\na,b,c,d,e\nf,g,h,i,j")); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/board/schedules/import", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := len(b.Schedules()); got != 2 {
		t.Fatalf("expected 2 schedules, got %d", got)
	}
}

func TestImportSchedulesTooLarge(t *testing.T) {
	e, _ := newTestServer(t, &mockPanels{})

	body := strings.Repeat("x", importBodyMaxSize+1)
	req := httptest.NewRequest(http.MethodPost, "/api/board/schedules/import", strings.NewReader(body))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rec.Code)
	}
}

func TestFormOptionsHandler(t *testing.T) {
	tutors := []domain.Tutor{{ID: 1, User: &domain.User{FirstName: "Ada", LastName: "Lovelace"}}}
	e, b := newTestServer(t, &mockPanels{tutors: tutors})
	if _, err := b.AddOrUpdateTask(context.Background(), domain.Needed, "Algebra"); err != nil {
		t.Fatalf("add: %v", err)
	}

	rec := serve(e, http.MethodGet, "/api/board/options", "")
	var opts board.FormOptions
	if err := sonic.Unmarshal(rec.Body.Bytes(), &opts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(opts.TaskNames) != 1 || opts.TaskNames[0] != "Algebra" {
		t.Fatalf("unexpected task names: %+v", opts.TaskNames)
	}
	if len(opts.Assignees) != 1 || opts.Assignees[0] != "Ada Lovelace" {
		t.Fatalf("unexpected assignees: %+v", opts.Assignees)
	}
	if len(opts.Statuses) != 3 {
		t.Fatalf("unexpected statuses: %+v", opts.Statuses)
	}
}

func TestFormOptionsFallsBackWhenTutorsFail(t *testing.T) {
	e, _ := newTestServer(t, &mockPanels{err: context.DeadlineExceeded})

	rec := serve(e, http.MethodGet, "/api/board/options", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var opts board.FormOptions
	if err := sonic.Unmarshal(rec.Body.Bytes(), &opts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if strings.Join(opts.Assignees, ",") != "User 1,User 2,User 3" {
		t.Fatalf("unexpected assignees: %+v", opts.Assignees)
	}
}
