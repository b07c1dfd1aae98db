package model

import "context"

// Decision is the outcome of abuse screening.
type Decision struct {
	Allowed bool
	Reason  string
}

// ScreenRequest describes a registration attempt.
type ScreenRequest struct {
	Email string
	IP    string
}

// Screener decides whether a registration attempt may proceed.
type Screener interface {
	Evaluate(ctx context.Context, req ScreenRequest) Decision
}
