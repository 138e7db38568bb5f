package database

import "time"

// CycleRecord - запись об одном цикле принятия решений
type CycleRecord struct {
	RunID     string
	Cycle     int
	State     string
	Enemies   int
	Ropes     int
	Platforms int
	OnRope    bool
	TargetX   int
	TargetY   int
	Action    string
	CreatedAt time.Time
}

// VerificationRecord - запись о проверке действия
type VerificationRecord struct {
	RunID     string
	Label     string
	Ratio     float64
	Verdict   string
	Effect    bool
	CreatedAt time.Time
}
