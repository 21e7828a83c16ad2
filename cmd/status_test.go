package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/homereels/agent-enrich/internal/enrich"
	"github.com/homereels/agent-enrich/internal/store"
)

func TestFormatRuns(t *testing.T) {
	now := time.Date(2026, 8, 15, 10, 30, 0, 0, time.UTC)
	done := now.Add(3 * time.Minute)
	runs := []store.Run{
		{
			ID:         "abc12345-6789-0000-0000-000000000000",
			ZipCode:    "85308",
			Pages:      2,
			Status:     store.RunStatusComplete,
			StartedAt:  now,
			FinishedAt: &done,
		},
		{
			ID:        "def12345-6789-0000-0000-000000000000",
			ZipCode:   "90210",
			Pages:     1,
			Status:    store.RunStatusRunning,
			StartedAt: now.Add(time.Hour),
		},
	}

	var buf bytes.Buffer
	formatRuns(&buf, runs)

	output := buf.String()
	assert.Contains(t, output, "ID")
	assert.Contains(t, output, "ZIP")
	assert.Contains(t, output, "abc12345")
	assert.Contains(t, output, "85308")
	assert.Contains(t, output, "complete")
	assert.Contains(t, output, "3m0s")
	assert.Contains(t, output, "90210")
	assert.Contains(t, output, "running")
	assert.Contains(t, output, "2026-08-15 10:30")
}

func TestFormatRuns_FailedRun(t *testing.T) {
	now := time.Date(2026, 8, 15, 10, 30, 0, 0, time.UTC)
	done := now.Add(30 * time.Second)
	runs := []store.Run{
		{
			ID:         "abc12345-6789-0000-0000-000000000000",
			ZipCode:    "85308",
			Pages:      1,
			Status:     store.RunStatusFailed,
			Error:      "pipeline: stage acquire: no agents found",
			StartedAt:  now,
			FinishedAt: &done,
		},
	}

	var buf bytes.Buffer
	formatRuns(&buf, runs)

	output := buf.String()
	assert.Contains(t, output, "failed")
	assert.Contains(t, output, "no agents found")
}

func TestFormatStages(t *testing.T) {
	stages := []store.StageRun{
		{Stage: "acquire", Skipped: true},
		{
			Stage:      "linkedin",
			Stats:      enrich.Stats{Attempted: 10, Enriched: 7, Dropped: 3},
			DurationMS: 1500,
		},
		{Stage: "contacts", Error: "wiza: credits check failed"},
	}

	var buf bytes.Buffer
	formatStages(&buf, stages)

	output := buf.String()
	assert.Contains(t, output, "acquire")
	assert.Contains(t, output, "skipped")
	assert.Contains(t, output, "linkedin")
	assert.Contains(t, output, "ran")
	assert.Contains(t, output, "1.5s")
	assert.Contains(t, output, "contacts")
	assert.Contains(t, output, "failed")
	assert.Contains(t, output, "credits check failed")
}

func TestParseForce(t *testing.T) {
	force, err := parseForce([]string{"linkedin", "contacts"})
	assert.NoError(t, err)
	assert.True(t, force["linkedin"])
	assert.True(t, force["contacts"])
	assert.False(t, force["acquire"])

	force, err = parseForce(nil)
	assert.NoError(t, err)
	assert.Nil(t, force)

	_, err = parseForce([]string{"linkdin"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "linkdin")
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "abc12345", truncateID("abc12345-6789-0000-0000-000000000000"))
	assert.Equal(t, "short", truncateID("short"))
}
