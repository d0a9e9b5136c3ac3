package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

// maxSnapshots matches the collector's retention cap. Anything beyond it is
// stale producer output and is trimmed from the front on load.
const maxSnapshots = 2880

// Fetch retrieves both datasets concurrently and waits for both before
// returning. An absent source (missing file, non-2xx response) degrades to
// an empty default with a warning. A source that cannot be retrieved or
// decoded fails the whole load cycle; there is no retry.
func Fetch(ctx context.Context, activitySrc, membersSrc string) (Bundle, error) {
	type sourceResult struct {
		data []byte
		ok   bool
		err  error
	}
	activityCh := make(chan sourceResult, 1)
	membersCh := make(chan sourceResult, 1)
	go func() {
		data, ok, err := fetchSource(ctx, activitySrc)
		activityCh <- sourceResult{data, ok, err}
	}()
	go func() {
		data, ok, err := fetchSource(ctx, membersSrc)
		membersCh <- sourceResult{data, ok, err}
	}()
	activityRes := <-activityCh
	membersRes := <-membersCh

	bundle := Bundle{Roster: Roster{}, LoadedAt: time.Now()}
	if activityRes.err != nil {
		return bundle, fmt.Errorf("load activity: %w", activityRes.err)
	}
	if membersRes.err != nil {
		return bundle, fmt.Errorf("load members: %w", membersRes.err)
	}

	if !activityRes.ok {
		log.Printf("Warning: activity dataset unavailable at %s, starting empty", activitySrc)
	} else {
		var activity ActivityLog
		if err := json.Unmarshal(activityRes.data, &activity); err != nil {
			return bundle, fmt.Errorf("load activity: decode: %w", err)
		}
		if len(activity.Snapshots) > maxSnapshots {
			activity.Snapshots = activity.Snapshots[len(activity.Snapshots)-maxSnapshots:]
		}
		bundle.Activity = activity
	}

	if !membersRes.ok {
		log.Printf("Warning: members dataset unavailable at %s, starting empty", membersSrc)
	} else {
		var roster Roster
		if err := json.Unmarshal(membersRes.data, &roster); err != nil {
			return bundle, fmt.Errorf("load members: decode: %w", err)
		}
		if roster != nil {
			bundle.Roster = roster
		}
	}
	return bundle, nil
}

// fetchSource reads one dataset from a filesystem path or an http(s) URL.
// ok=false reports a tolerated absence; err reports a hard failure.
func fetchSource(ctx context.Context, src string) ([]byte, bool, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, false, nil
	}
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
		if err != nil {
			return nil, false, fmt.Errorf("build request: %w", err)
		}
		client := &http.Client{}
		resp, err := client.Do(req)
		if err != nil {
			return nil, false, fmt.Errorf("fetch %s: %w", src, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
			return nil, false, nil
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, false, fmt.Errorf("read %s: %w", src, err)
		}
		return data, true, nil
	}
	data, err := os.ReadFile(src)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}
