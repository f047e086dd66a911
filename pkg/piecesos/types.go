package piecesos

// Answer is one answer fragment returned by the copilot.
type Answer struct {
	Text  string  `json:"text"`
	Score float64 `json:"score,omitempty"`
}

// Response is a copilot reply. A REST answer carries the full answer text in
// its first fragment; a streamed reply carries the fragments produced since
// the previous message.
type Response struct {
	Answers []Answer
}

// Model describes an entry of the Pieces OS model catalogue.
type Model struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Foundation string `json:"foundation,omitempty"`
	Cloud      bool   `json:"cloud"`
	Downloaded bool   `json:"downloaded"`
}

// Stream statuses reported on /qgpt/stream.
const (
	StatusInProgress = "IN-PROGRESS"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
	StatusCanceled   = "CANCELED"
	StatusStopped    = "STOPPED"
	StatusReset      = "RESET"
	StatusUnknown    = "UNKNOWN"
)

// --- wire types ---

type modelsOutput struct {
	Iterable []Model `json:"iterable"`
}

type relevantSeeds struct {
	Iterable []any `json:"iterable"`
}

type questionInput struct {
	Query       string        `json:"query"`
	Relevant    relevantSeeds `json:"relevant"`
	Model       string        `json:"model,omitempty"`
	Application string        `json:"application,omitempty"`
}

type answersOutput struct {
	Iterable []Answer `json:"iterable"`
}

type questionOutput struct {
	Answers answersOutput `json:"answers"`
}

func (o questionOutput) response() Response {
	return Response{Answers: o.Answers.Iterable}
}

type streamInput struct {
	Question     questionInput `json:"question"`
	Conversation string        `json:"conversation,omitempty"`
}

type streamOutput struct {
	Question     *questionOutput `json:"question,omitempty"`
	Conversation string          `json:"conversation,omitempty"`
	Status       string          `json:"status"`
	ErrorMessage string          `json:"errorMessage,omitempty"`
}
