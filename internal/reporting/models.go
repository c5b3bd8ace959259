package reporting

import "time"

type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// CallsReportRequest asks for aggregated call outcomes. Zero bounds are
// open-ended.

type CallsReportRequest struct {
	Range TimeRange `json:"range"`
}

type CallsReport struct {
	TotalCalls      int `json:"total_calls"`
	CompletedCalls  int `json:"completed_calls"`
	FailedCalls     int `json:"failed_calls"`
	NoAnswerCalls   int `json:"no_answer_calls"`
	TimedOutCalls   int `json:"timed_out_calls"`
	InitiatingCalls int `json:"initiating_calls"`

	TranscribedCalls int `json:"transcribed_calls"`
	RecordedCalls    int `json:"recorded_calls"`

	CompletionRate float64 `json:"completion_rate"`
}
