package model

import "time"

// Class is one scheduled class occurrence.  The ref doubles as the
// primary key and encodes the start time; ValidTickets lists the
// catalog pairs accepted for this class and Participants is the roster
// owned by the class.
type Class struct {
	ID           ClassRef
	Time         time.Time
	Notes        string
	ValidTickets []TicketType
	Participants []Participant
}

// Participant joins a student to one class occurrence.
// MissingClassPass is only meaningful while Attended is true and the
// charged ticket is a ten-class pass: it records that the student
// could not present their physical or app pass for ticking.
type Participant struct {
	Login            string
	Student          *Student
	Attended         bool
	MissingClassPass bool
}
