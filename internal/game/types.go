// apps/go-server/internal/game/types.go
//
// Core type definitions for the number-guessing engine.
// Defines:
//   - Result: feedback for a single guess (low/high/correct).
//   - Outcome: the record returned to callers after a guess.
//   - State: coarse lifecycle of a session (active/won).
//   - Session: state for a single game.

package game

// Result is the evaluation of a guess against the secret.
// Possible values:
//   - "low":     the guess is below the secret.
//   - "high":    the guess is above the secret.
//   - "correct": the guess matches the secret (or the game is already won).
type Result string

const (
	ResultLow     Result = "low"
	ResultHigh    Result = "high"
	ResultCorrect Result = "correct"
)

// Outcome is the only value ever handed to callers about a guess.
// The secret itself never leaves the Session.
type Outcome struct {
	Result   Result `json:"result"`
	Attempts int    `json:"attempts"`
}

// State is the lifecycle state of a Session.
type State string

const (
	StateActive State = "active"
	StateWon    State = "won"
)

// DefaultMax is the upper bound used when none is supplied.
const DefaultMax = 100

// Session holds the state of a single number-guessing game.
// A Session is not safe for concurrent use; callers that share one
// must serialize access (see store.Store.Update).
type Session struct {
	secret   int    // hidden target, 1 <= secret <= max
	max      int    // inclusive upper bound, >= 1
	attempts int    // in-range guesses since the last reset
	finished bool   // true once a correct guess was made
	src      Source // draws secrets on construction and reset
}
