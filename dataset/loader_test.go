package dataset

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFetchFromFiles(t *testing.T) {
	dir := t.TempDir()
	activityPath := filepath.Join(dir, "activity.json")
	membersPath := filepath.Join(dir, "members.json")
	writeFile(t, activityPath, `{"snapshots":[{"timestamp":"2026-08-30T12:00:00","members":{"100":{"last_action_timestamp":1767000000,"last_action_relative":"5 minutes ago","status":"Online"}}}]}`)
	writeFile(t, membersPath, `{"100":{"name":"Vex","level":42,"days_in_faction":310}}`)

	bundle, err := Fetch(context.Background(), activityPath, membersPath)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(bundle.Activity.Snapshots) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(bundle.Activity.Snapshots))
	}
	record, ok := bundle.Activity.Snapshots[0].Members["100"]
	if !ok || record.LastActionTimestamp != 1767000000 || record.Status != "Online" {
		t.Fatalf("unexpected record: %+v", record)
	}
	member, ok := bundle.Roster["100"]
	if !ok || member.Name != "Vex" || member.Level != 42 || member.DaysInFaction != 310 {
		t.Fatalf("unexpected member: %+v", member)
	}
}

func TestFetchMissingActivityDegradesToEmpty(t *testing.T) {
	dir := t.TempDir()
	membersPath := filepath.Join(dir, "members.json")
	writeFile(t, membersPath, `{"100":{"name":"Vex","level":42,"days_in_faction":310}}`)

	bundle, err := Fetch(context.Background(), filepath.Join(dir, "missing.json"), membersPath)
	if err != nil {
		t.Fatalf("expected degraded load, got error: %v", err)
	}
	if len(bundle.Activity.Snapshots) != 0 {
		t.Fatalf("expected empty activity, got %d snapshots", len(bundle.Activity.Snapshots))
	}
	if len(bundle.Roster) != 1 {
		t.Fatalf("expected roster to load, got %d members", len(bundle.Roster))
	}
}

func TestFetchNonOKResponseDegradesToEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/activity.json" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"100":{"name":"Vex","level":42,"days_in_faction":310}}`))
	}))
	t.Cleanup(server.Close)

	bundle, err := Fetch(context.Background(), server.URL+"/activity.json", server.URL+"/members.json")
	if err != nil {
		t.Fatalf("expected degraded load, got error: %v", err)
	}
	if len(bundle.Activity.Snapshots) != 0 {
		t.Fatalf("expected empty activity, got %d snapshots", len(bundle.Activity.Snapshots))
	}
	if len(bundle.Roster) != 1 {
		t.Fatalf("expected roster to load, got %d members", len(bundle.Roster))
	}
}

func TestFetchDecodeFailureIsHard(t *testing.T) {
	dir := t.TempDir()
	activityPath := filepath.Join(dir, "activity.json")
	membersPath := filepath.Join(dir, "members.json")
	writeFile(t, activityPath, `{"snapshots": [`)
	writeFile(t, membersPath, `{}`)

	if _, err := Fetch(context.Background(), activityPath, membersPath); err == nil {
		t.Fatalf("expected decode error for truncated activity dataset")
	}
}

func TestFetchUnreachableHostIsHard(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	if _, err := Fetch(context.Background(), server.URL+"/activity.json", server.URL+"/members.json"); err == nil {
		t.Fatalf("expected transport error for closed server")
	}
}

func TestFetchTrimsToRetentionCap(t *testing.T) {
	snapshots := make([]Snapshot, maxSnapshots+5)
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := range snapshots {
		snapshots[i] = Snapshot{
			Timestamp: base.Add(time.Duration(i) * time.Minute).Format("2006-01-02T15:04:05"),
			Members:   map[string]ActivityRecord{"100": {LastActionTimestamp: int64(i)}},
		}
	}
	data, err := json.Marshal(ActivityLog{Snapshots: snapshots})
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	dir := t.TempDir()
	activityPath := filepath.Join(dir, "activity.json")
	writeFile(t, activityPath, string(data))

	bundle, err := Fetch(context.Background(), activityPath, filepath.Join(dir, "missing.json"))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(bundle.Activity.Snapshots) != maxSnapshots {
		t.Fatalf("expected %d snapshots after trim, got %d", maxSnapshots, len(bundle.Activity.Snapshots))
	}
	newest := bundle.Activity.Snapshots[len(bundle.Activity.Snapshots)-1]
	if newest.Members["100"].LastActionTimestamp != int64(maxSnapshots+4) {
		t.Fatalf("trim dropped the wrong end: %+v", newest.Members["100"])
	}
}

func TestSnapshotTimeFormats(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want bool
	}{
		{"collector-naive", "2026-08-30T12:34:56.789012", true},
		{"naive-seconds", "2026-08-30T12:34:56", true},
		{"rfc3339", "2026-08-30T12:34:56Z", true},
		{"empty", "", false},
		{"garbage", "yesterday-ish", false},
	}
	for _, tc := range cases {
		_, ok := Snapshot{Timestamp: tc.raw}.Time()
		if ok != tc.want {
			t.Fatalf("%s: expected ok=%v for %q", tc.name, tc.want, tc.raw)
		}
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
