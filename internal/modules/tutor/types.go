package tutor

import (
	"encoding/json"
	"errors"

	"github.com/gyansetu/core/internal/pkg/llm"
)

// Complexity labels a question for response-mode selection.
type Complexity string

const (
	ComplexityEasy Complexity = "EASY"
	ComplexityHard Complexity = "HARD"
)

// ErrInvalidAction marks an unrecognized dispatch discriminator.
var ErrInvalidAction = errors.New("invalid action")

// ConversationTurn is one entry of the caller-held conversation history.
type ConversationTurn struct {
	Role       string       `json:"role"` // "user" | "assistant"
	Text       string       `json:"text"`
	Sources    []llm.Source `json:"sources,omitempty"`
	TokensUsed int          `json:"tokensUsed,omitempty"`
}

// ImagePayload is an inline attachment. Data is base64 on the wire.
type ImagePayload struct {
	Data     []byte `json:"data"`
	MimeType string `json:"mimeType"`
}

// SolveRequest is the orchestrator input for one user message.
type SolveRequest struct {
	StudentID string
	Prompt    string
	History   []ConversationTurn
	Image     *ImagePayload
	DocText   string
	Grade     string
	// HasProfile routes to the personalized path when the student has an
	// active profile. Shared marks a group context where personalization
	// is disabled even if a profile exists.
	HasProfile bool
	Shared     bool
}

// Metadata describes which path produced a response.
type Metadata struct {
	ModelUsed       string     `json:"modelUsed"`
	Complexity      Complexity `json:"complexity,omitempty"`
	RouterTriggered bool       `json:"routerTriggered"`
	CacheHit        bool       `json:"cacheHit"`
	Path            string     `json:"path"` // "personalized" | "generic"
}

// SolveResult is the orchestrator output.
type SolveResult struct {
	Text       string       `json:"text"`
	Sources    []llm.Source `json:"sources"`
	TokensUsed int          `json:"tokensUsed"`
	Metadata   Metadata     `json:"metadata"`
}

// Dispatch actions. The single RPC entry point discriminates on these.
type Action string

const (
	ActionSolveProblem        Action = "solveProblem"
	ActionCompleteOnboarding  Action = "completeOnboarding"
	ActionGetTutoringResponse Action = "getTutoringResponse"
	ActionUpdateProfile       Action = "updateProfile"
)

// DispatchRequest is the wire form of the action RPC.
type DispatchRequest struct {
	Action  Action          `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

// SolveProblemPayload asks for a generic (non-personalized) solution.
type SolveProblemPayload struct {
	Prompt  string             `json:"prompt"`
	History []ConversationTurn `json:"history"`
	Image   *ImagePayload      `json:"image,omitempty"`
	Grade   string             `json:"grade,omitempty"`
}

// CompleteOnboardingPayload runs the onboarding analyzer template and
// returns its raw JSON-bearing text.
type CompleteOnboardingPayload struct {
	Answers        []string `json:"answers"`
	PromptTemplate string   `json:"promptTemplate"`
}

// TutoringPayload asks for a personalized reply with a caller-assembled
// system instruction.
type TutoringPayload struct {
	SystemInstruction string             `json:"systemInstruction"`
	History           []ConversationTurn `json:"history"`
	Message           string             `json:"message"`
	DocText           string             `json:"docText,omitempty"`
}

// UpdateProfilePayload runs the profile updater template and returns the
// patch as raw text.
type UpdateProfilePayload struct {
	PromptTemplate string `json:"promptTemplate"`
}

// DispatchPayload is the decoded, typed form of a dispatch request.
type DispatchPayload interface{ isDispatchPayload() }

func (SolveProblemPayload) isDispatchPayload()       {}
func (CompleteOnboardingPayload) isDispatchPayload() {}
func (TutoringPayload) isDispatchPayload()           {}
func (UpdateProfilePayload) isDispatchPayload()      {}

// DecodeDispatch turns the wire request into its typed payload. Unknown
// actions are ErrInvalidAction so the handler can answer with an
// invalid-argument kind.
func DecodeDispatch(req DispatchRequest) (DispatchPayload, error) {
	payload := req.Payload
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}

	switch req.Action {
	case ActionSolveProblem:
		var p SolveProblemPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, err
		}
		return p, nil
	case ActionCompleteOnboarding:
		var p CompleteOnboardingPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, err
		}
		return p, nil
	case ActionGetTutoringResponse:
		var p TutoringPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, err
		}
		return p, nil
	case ActionUpdateProfile:
		var p UpdateProfilePayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, ErrInvalidAction
	}
}
