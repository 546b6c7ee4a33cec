// Package loki provides a client to push log entries to Grafana Loki.
package loki

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"biometric-attendance/backend/internal/telemetry/domain"
)

// PushRequest is the Loki push API request body (v1).
type PushRequest struct {
	Streams []Stream `json:"streams"`
}

// Stream is a single stream with labels and log entries.
type Stream struct {
	Stream map[string]string `json:"stream"`
	Values [][]string        `json:"values"` // each entry is [timestamp_ns, log_line]
}

// labelSanitize replaces characters that are invalid in Loki label names/values.
// Loki labels: name must match [a-zA-Z_:][a-zA-Z0-9_:]*, value can be any string but we avoid problematic chars.
var labelSanitize = regexp.MustCompile(`[^a-zA-Z0-9_\-:]`)

// eventFields is used to parse only the fields we need from an attendance event JSON for labels and timestamp.
type eventFields struct {
	CourseID   string `json:"courseId"`
	EventType  string `json:"eventType"`
	Method     string `json:"method"`
	Outcome    string `json:"outcome"`
	OccurredAt string `json:"occurredAt"`
}

// Level is the level label for an attendance event: failed check-ins are warnings.
func Level(eventType string) string {
	if eventType == domain.EventCheckinFailed {
		return "warn"
	}
	return "info"
}

// PushEventJSON parses the attendance event JSON (Kafka message value), extracts timestamp and labels, and pushes to Loki.
// Session and student ids stay in the log line; labels are kept low-cardinality
// (course, event type, method, outcome, level).
// If parsing fails, the raw line is pushed with current time and no extra labels.
func PushEventJSON(ctx context.Context, client *http.Client, baseURL string, rawJSON []byte) error {
	line := string(rawJSON)
	labels := map[string]string{}
	ts := time.Now().UTC()
	var fields eventFields
	if err := json.Unmarshal(rawJSON, &fields); err == nil {
		if fields.CourseID != "" {
			labels["course_id"] = fields.CourseID
		}
		if fields.EventType != "" {
			labels["event_type"] = fields.EventType
			labels["level"] = Level(fields.EventType)
		}
		if fields.Outcome != "" {
			labels["outcome"] = fields.Outcome
		}
		if fields.Method != "" {
			labels["method"] = fields.Method
		}
		if fields.OccurredAt != "" {
			if t, err := time.Parse(time.RFC3339Nano, fields.OccurredAt); err == nil {
				ts = t
			}
		}
	}
	return PushEvent(ctx, client, baseURL, ts, line, labels)
}

// PushEvent sends a single log line to Loki at the given base URL (e.g. http://localhost:3100).
// timestamp is the event time; line is the log line (e.g. JSON). labels are added to the stream (job=attendance plus labels).
// A nil client uses http.DefaultClient. Returns an error if the HTTP request fails or Loki returns non-2xx.
func PushEvent(ctx context.Context, client *http.Client, baseURL string, timestamp time.Time, line string, labels map[string]string) error {
	if baseURL == "" {
		return fmt.Errorf("loki: base URL is empty")
	}
	ns := timestamp.UnixNano()
	streamLabels := make(map[string]string, len(labels)+1)
	streamLabels["job"] = "attendance"
	for k, v := range labels {
		sanitized := labelSanitize.ReplaceAllString(strings.TrimSpace(v), "_")
		if sanitized != "" {
			streamLabels[k] = sanitized
		}
	}
	body := PushRequest{
		Streams: []Stream{{
			Stream: streamLabels,
			Values: [][]string{{fmt.Sprintf("%d", ns), line}},
		}},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	url := strings.TrimSuffix(baseURL, "/") + "/loki/api/v1/push"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("loki: push returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return nil
}
