package gmail_tools

import (
	"context"
	"strings"
	"testing"

	"github.com/opennotif/inboxiq/internal/gmail"
)

func TestDateRange(t *testing.T) {
	tests := []struct {
		name      string
		startDate string
		endDate   string
		wantDays  int
		wantErr   bool
	}{
		{
			name:      "single day",
			startDate: "2025-03-10",
			endDate:   "2025-03-10",
			wantDays:  1,
		},
		{
			name:      "one week",
			startDate: "2025-03-10",
			endDate:   "2025-03-16",
			wantDays:  7,
		},
		{
			name:      "spans month boundary",
			startDate: "2025-01-30",
			endDate:   "2025-02-02",
			wantDays:  4,
		},
		{
			name:      "end before start",
			startDate: "2025-03-16",
			endDate:   "2025-03-10",
			wantErr:   true,
		},
		{
			name:      "malformed start date",
			startDate: "03/10/2025",
			endDate:   "2025-03-16",
			wantErr:   true,
		},
		{
			name:      "malformed end date",
			startDate: "2025-03-10",
			endDate:   "not-a-date",
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days, err := dateRange(tt.startDate, tt.endDate)
			if (err != nil) != tt.wantErr {
				t.Fatalf("dateRange() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(days) != tt.wantDays {
				t.Errorf("dateRange() returned %d days, want %d", len(days), tt.wantDays)
			}
			if days[0].Format("2006-01-02") != tt.startDate {
				t.Errorf("dateRange() first day = %s, want %s", days[0].Format("2006-01-02"), tt.startDate)
			}
			if days[len(days)-1].Format("2006-01-02") != tt.endDate {
				t.Errorf("dateRange() last day = %s, want %s", days[len(days)-1].Format("2006-01-02"), tt.endDate)
			}
		})
	}
}

func TestFormatSummaries(t *testing.T) {
	summaries := []*gmail.MessageSummary{
		{
			ID:      "msg-1",
			From:    "alice@example.com",
			Subject: "Quarterly report",
			Date:    "Mon, 10 Mar 2025 09:00:00 +0000",
			Snippet: "Please find attached",
		},
		{
			ID:      "msg-2",
			From:    "bob@example.com",
			Subject: "Re: Quarterly report",
			Date:    "Mon, 10 Mar 2025 10:30:00 +0000",
			Snippet: "Thanks, looks good",
		},
	}

	out := formatSummaries(summaries)

	for _, want := range []string{
		"Email ID: msg-1",
		"From: alice@example.com",
		"Subject: Quarterly report",
		"Email ID: msg-2",
		"Snippet: Thanks, looks good",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("formatSummaries() output missing %q", want)
		}
	}

	if got := strings.Count(out, resultSeparator); got != 2 {
		t.Errorf("formatSummaries() has %d separators, want 2", got)
	}
}

func TestHandleSearchEmailsValidation(t *testing.T) {
	sc := testServerContext(t, false)

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{
			name: "missing query",
			args: map[string]interface{}{},
		},
		{
			name: "empty query",
			args: map[string]interface{}{"query": ""},
		},
		{
			name: "non-string query",
			args: map[string]interface{}{"query": 42},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := handleSearchEmails(context.Background(), toolRequest(tt.args), sc)
			if err != nil {
				t.Fatalf("handleSearchEmails() error = %v", err)
			}
			if result == nil || !result.IsError {
				t.Error("handleSearchEmails() should return an error result")
			}
		})
	}
}

func TestHandleGetEmailContentValidation(t *testing.T) {
	sc := testServerContext(t, false)

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{
			name: "missing email_id",
			args: map[string]interface{}{},
		},
		{
			name: "invalid format",
			args: map[string]interface{}{"email_id": "msg-1", "format": "markdown"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := handleGetEmailContent(context.Background(), toolRequest(tt.args), sc)
			if err != nil {
				t.Fatalf("handleGetEmailContent() error = %v", err)
			}
			if result == nil || !result.IsError {
				t.Error("handleGetEmailContent() should return an error result")
			}
		})
	}
}

func TestHandleCountDailyEmailsValidation(t *testing.T) {
	sc := testServerContext(t, false)

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{
			name: "missing start_date",
			args: map[string]interface{}{"end_date": "2025-03-16"},
		},
		{
			name: "missing end_date",
			args: map[string]interface{}{"start_date": "2025-03-10"},
		},
		{
			name: "reversed range",
			args: map[string]interface{}{"start_date": "2025-03-16", "end_date": "2025-03-10"},
		},
		{
			name: "malformed date",
			args: map[string]interface{}{"start_date": "yesterday", "end_date": "2025-03-16"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := handleCountDailyEmails(context.Background(), toolRequest(tt.args), sc)
			if err != nil {
				t.Fatalf("handleCountDailyEmails() error = %v", err)
			}
			if result == nil || !result.IsError {
				t.Error("handleCountDailyEmails() should return an error result")
			}
		})
	}
}

func TestHandleFindEmailThreadsValidation(t *testing.T) {
	sc := testServerContext(t, false)

	result, err := handleFindEmailThreads(context.Background(), toolRequest(map[string]interface{}{}), sc)
	if err != nil {
		t.Fatalf("handleFindEmailThreads() error = %v", err)
	}
	if result == nil || !result.IsError {
		t.Error("handleFindEmailThreads() should return an error result when email_id is missing")
	}
}
