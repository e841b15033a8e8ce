// Package models defines the data structures used across the application.
// Field names and JSON tags follow the complaint record wire format used by
// the intake form, the record-store query contract, and the chat frontend.
package models

// Complaint is a single traffic complaint record. The search layer treats it
// as an opaque payload: it filters and aggregates complaints but never
// mutates them. Only the store writes these.
type Complaint struct {
	ComplaintID            string    `json:"complaintId"`
	FirstName              string    `json:"firstName,omitempty"`
	LastName               string    `json:"lastName,omitempty"`
	Description            string    `json:"description,omitempty"`
	ComplaintStatus        string    `json:"complaintStatus"`
	DateOfComplaint        string    `json:"dateOfComplaint,omitempty"`
	BeatNumber             string    `json:"beatNumber,omitempty"`
	ProblemCategory        string    `json:"problemCategory,omitempty"`
	DaysOfWeek             []string  `json:"daysOfWeek,omitempty"`
	StartDate              string    `json:"startDate,omitempty"`
	EndDate                string    `json:"endDate,omitempty"`
	StartTime              string    `json:"startTime,omitempty"`
	EndTime                string    `json:"endTime,omitempty"`
	Location               string    `json:"location,omitempty"` // "address" | "intersection"
	AddressDirection       string    `json:"addressDirection,omitempty"`
	AddressStreet          string    `json:"addressStreet,omitempty"`
	AddressZipcode         string    `json:"addressZipcode,omitempty"`
	Intersection1Direction string    `json:"intersection1Direction,omitempty"`
	Intersection1Street    string    `json:"intersection1Street,omitempty"`
	Intersection2Direction string    `json:"intersection2Direction,omitempty"`
	Intersection2Street    string    `json:"intersection2Street,omitempty"`
	IntersectionZipcode    string    `json:"intersectionZipcode,omitempty"`
	Coordinates            []float64 `json:"coordinates,omitempty"` // [longitude, latitude]
	IsUrgentChecked        bool      `json:"isUrgentChecked,omitempty"`
	OfficersNotes          string    `json:"officersNotes,omitempty"`
	SubscribeToAlerts      string    `json:"subscribeToAlerts,omitempty"`
}

// RawFilterInput carries filter values exactly as extracted from user input:
// may contain duplicates, casing variants, and unmatched noise. Built fresh
// per request.
type RawFilterInput struct {
	BeatNums      []string `json:"beatNums"`
	Categories    []string `json:"categories"`
	Statuses      []string `json:"statuses"`
	DaysOfWeek    []string `json:"daysOfWeek"`
	RelativeTimes []string `json:"relativeTimes"`
}

// NormalizedFilterSet holds canonical filter values. Every value is a member
// of the corresponding valid-option set; an empty category means "no
// constraint". Values keep first-seen order and appear at most once.
type NormalizedFilterSet struct {
	BeatNums      []string `json:"beatNums"`
	Categories    []string `json:"categories"`
	Statuses      []string `json:"statuses"`
	DaysOfWeek    []string `json:"daysOfWeek"`
	RelativeTimes []string `json:"relativeTimes"`
}

// DateRange is a pair of calendar dates in YYYY-MM-DD form, both in the
// department's civil timezone. The zero value ("", "") means no temporal
// constraint was requested.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// IsZero reports whether no temporal constraint is set.
func (r DateRange) IsZero() bool { return r.Start == "" && r.End == "" }

// SearchResult is the aggregated output of a complaint search: complaints
// concatenated across statuses in iteration order then page order, per-status
// counts, and the filters and date range that were actually applied.
type SearchResult struct {
	Complaints   []Complaint         `json:"complaints"`
	StatusCounts map[string]int      `json:"statusCounts"`
	Total        int                 `json:"total"`
	Filters      NormalizedFilterSet `json:"filters"`
	Range        DateRange           `json:"dateRange"`
}

// QueryRequest is the record-store query service request. One call targets a
// single status and a single page; beats and categories are OR-ed lists.
// StartDate/EndDate are set only when a relative-time filter was supplied.
type QueryRequest struct {
	TableName       string   `json:"tableName"`
	BeatNumber      []string `json:"beatNumber"`
	ProblemCategory []string `json:"problemCategory"`
	ComplaintStatus string   `json:"complaintStatus"`
	Page            int      `json:"page"`
	Timezone        string   `json:"timezone"`
	StartDate       string   `json:"startDate,omitempty"`
	EndDate         string   `json:"endDate,omitempty"`
}

// QueryResponse is one page of record-store results. Page size is fixed at 10
// server-side; Page is -1 when the requested page is out of range.
type QueryResponse struct {
	ComplaintsData    []Complaint    `json:"complaintsData"`
	Page              int            `json:"page"`
	Status            int            `json:"status"`
	TotalComplaint    int            `json:"totalComplaint"`
	TotalStatusCounts map[string]int `json:"totalStatusCounts"`
	TotalPages        int            `json:"totalPages"`
	Message           string         `json:"message"`
}

// SlotValue mirrors the conversational platform's interpreted slot value.
type SlotValue struct {
	Value struct {
		InterpretedValue string `json:"interpretedValue"`
	} `json:"value"`
}

// Slot is one multi-valued slot from the conversational platform.
type Slot struct {
	Values []SlotValue `json:"values"`
}

// IntentEvent is the conversational platform request: an intent name plus the
// slot values the platform extracted from the utterance.
type IntentEvent struct {
	SessionID    string `json:"sessionId"`
	SessionState struct {
		Intent struct {
			Name  string          `json:"name"`
			Slots map[string]Slot `json:"slots"`
		} `json:"intent"`
	} `json:"sessionState"`
}

// IntentResponse is the conversational platform reply envelope.
type IntentResponse struct {
	SessionState struct {
		DialogAction struct {
			Type string `json:"type"`
		} `json:"dialogAction"`
		Intent struct {
			Name  string `json:"name"`
			State string `json:"state"` // "Fulfilled" | "Failed"
		} `json:"intent"`
	} `json:"sessionState"`
	Messages []IntentMessage `json:"messages"`
}

// IntentMessage is a single message in an intent response.
type IntentMessage struct {
	ContentType string `json:"contentType"` // "PlainText" | "Markdown"
	Content     string `json:"content"`
}

// EmailDispatch is the payload handed to the email relay. Fields come
// straight from a SearchResult, untransformed.
type EmailDispatch struct {
	SelectedComplaints []Complaint         `json:"selectedComplaints"`
	SendTo             string              `json:"sendTo"`
	Filters            NormalizedFilterSet `json:"filters"`
	DateRange          DateRange           `json:"dateRange"`
}

// HealthStatus represents the server health check response
type HealthStatus struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Uptime   string `json:"uptime"`
	Database string `json:"database"`
}
