package tutor

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDecodeDispatch(t *testing.T) {
	tests := []struct {
		name    string
		req     DispatchRequest
		want    any
		wantErr error
	}{
		{
			name: "solveProblem",
			req: DispatchRequest{
				Action:  ActionSolveProblem,
				Payload: json.RawMessage(`{"prompt":"what is 2+2","grade":"5"}`),
			},
			want: SolveProblemPayload{Prompt: "what is 2+2", Grade: "5"},
		},
		{
			name: "completeOnboarding",
			req: DispatchRequest{
				Action:  ActionCompleteOnboarding,
				Payload: json.RawMessage(`{"answers":["I like examples"]}`),
			},
			want: CompleteOnboardingPayload{Answers: []string{"I like examples"}},
		},
		{
			name: "getTutoringResponse",
			req: DispatchRequest{
				Action:  ActionGetTutoringResponse,
				Payload: json.RawMessage(`{"systemInstruction":"be kind","message":"help"}`),
			},
			want: TutoringPayload{SystemInstruction: "be kind", Message: "help"},
		},
		{
			name: "updateProfile",
			req: DispatchRequest{
				Action:  ActionUpdateProfile,
				Payload: json.RawMessage(`{"promptTemplate":"tpl"}`),
			},
			want: UpdateProfilePayload{PromptTemplate: "tpl"},
		},
		{
			name:    "unknown action",
			req:     DispatchRequest{Action: "deleteEverything"},
			wantErr: ErrInvalidAction,
		},
		{
			name:    "empty action",
			req:     DispatchRequest{},
			wantErr: ErrInvalidAction,
		},
		{
			name: "missing payload decodes zero value",
			req:  DispatchRequest{Action: ActionUpdateProfile},
			want: UpdateProfilePayload{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeDispatch(tt.req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("got error %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			switch want := tt.want.(type) {
			case SolveProblemPayload:
				p, ok := got.(SolveProblemPayload)
				if !ok || p.Prompt != want.Prompt || p.Grade != want.Grade {
					t.Errorf("got %#v, want %#v", got, want)
				}
			case CompleteOnboardingPayload:
				p, ok := got.(CompleteOnboardingPayload)
				if !ok || len(p.Answers) != len(want.Answers) {
					t.Errorf("got %#v, want %#v", got, want)
				}
			case TutoringPayload:
				p, ok := got.(TutoringPayload)
				if !ok || p.Message != want.Message || p.SystemInstruction != want.SystemInstruction {
					t.Errorf("got %#v, want %#v", got, want)
				}
			case UpdateProfilePayload:
				p, ok := got.(UpdateProfilePayload)
				if !ok || p.PromptTemplate != want.PromptTemplate {
					t.Errorf("got %#v, want %#v", got, want)
				}
			}
		})
	}
}

func TestDecodeDispatchMalformedPayload(t *testing.T) {
	_, err := DecodeDispatch(DispatchRequest{
		Action:  ActionSolveProblem,
		Payload: json.RawMessage(`{"prompt":`),
	})
	if err == nil {
		t.Fatal("expected decode error for malformed payload")
	}
	if errors.Is(err, ErrInvalidAction) {
		t.Error("malformed payload must not be reported as an invalid action")
	}
}
