package handlers

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/beatwatch/complaint-server/internal/models"
)

func TestFlattenSlots(t *testing.T) {
	payload := `{
		"sessionId": "abc",
		"sessionState": {"intent": {"name": "Query_Complaint_Info", "slots": {
			"beatNums": {"values": [
				{"value": {"interpretedValue": "5"}},
				{"value": {"interpretedValue": "12"}}
			]},
			"category": {"values": [{"value": {"interpretedValue": "speeding"}}]},
			"status": {"values": [{"value": {"interpretedValue": "open"}}]},
			"daysOfWeek": {"values": []},
			"relativeTimes": {"values": [{"value": {"interpretedValue": "last week"}}]}
		}}}
	}`

	var event models.IntentEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		t.Fatalf("unmarshal event: %v", err)
	}

	got := flattenSlots(event.SessionState.Intent.Slots)
	want := models.RawFilterInput{
		BeatNums:      []string{"5", "12"},
		Categories:    []string{"speeding"},
		Statuses:      []string{"open"},
		RelativeTimes: []string{"last week"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("flattenSlots = %+v; want %+v", got, want)
	}
}

func TestFlattenSlotsMissingSlots(t *testing.T) {
	got := flattenSlots(nil)
	if len(got.BeatNums)+len(got.Categories)+len(got.Statuses)+len(got.DaysOfWeek)+len(got.RelativeTimes) != 0 {
		t.Errorf("flattenSlots(nil) = %+v; want empty", got)
	}
}

func TestFormatSearchMessageEmptyResult(t *testing.T) {
	msg := formatSearchMessage(&models.SearchResult{StatusCounts: map[string]int{}})

	if !strings.Contains(msg, "**Beat Numbers**: All") {
		t.Errorf("message missing beat criteria line:\n%s", msg)
	}
	if !strings.Contains(msg, "couldn't find any complaints") {
		t.Errorf("message missing empty-result text:\n%s", msg)
	}
}

func TestFormatSearchMessageCapsDetails(t *testing.T) {
	result := &models.SearchResult{
		StatusCounts: map[string]int{"Open": 7},
		Total:        7,
	}
	for i := 0; i < 7; i++ {
		result.Complaints = append(result.Complaints, models.Complaint{
			ComplaintID:     strings.Repeat("a", i+1),
			ComplaintStatus: "Open",
		})
	}

	msg := formatSearchMessage(result)
	if strings.Count(msg, "#### Complaint #") != maxComplaintsShown {
		t.Errorf("detail count = %d; want %d", strings.Count(msg, "#### Complaint #"), maxComplaintsShown)
	}
	if !strings.Contains(msg, "2 more complaints not shown") {
		t.Errorf("message missing overflow note:\n%s", msg)
	}
	if !strings.Contains(msg, "I found **7** complaints") {
		t.Errorf("message missing summary:\n%s", msg)
	}
}

func TestCloseIntentEnvelope(t *testing.T) {
	resp := closeIntent("sendEmail", "Failed", "PlainText", "nope")
	if resp.SessionState.DialogAction.Type != "Close" {
		t.Errorf("dialog action = %q; want Close", resp.SessionState.DialogAction.Type)
	}
	if resp.SessionState.Intent.State != "Failed" || resp.SessionState.Intent.Name != "sendEmail" {
		t.Errorf("intent = %+v", resp.SessionState.Intent)
	}
	if len(resp.Messages) != 1 || resp.Messages[0].Content != "nope" {
		t.Errorf("messages = %+v", resp.Messages)
	}
}
