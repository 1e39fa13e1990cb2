// Package queue defines message payloads exchanged over the message broker.
package queue

// AttendanceRecordedEvent is published when a coordinator records or
// reverts a student's attendance on a class. It contains enough
// information for downstream consumers to log, notify, or trigger
// analytics without querying the primary database.
type AttendanceRecordedEvent struct {
	ClassID      string   `json:"class_id"`
	ClassTime    string   `json:"class_time"`
	StudentLogin string   `json:"student_login"`
	StudentName  string   `json:"student_name"`
	Attended     bool     `json:"attended"`
	OrderID      string   `json:"order_id,omitempty"`
	Touched      []string `json:"touched_orders,omitempty"`
	RecordedBy   uint64   `json:"recorded_by"`
	RecordedAt   string   `json:"recorded_at"`
}
