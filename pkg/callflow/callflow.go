package callflow

import (
	"errors"
	"fmt"
)

type State string

const (
	Greeting          State = "greeting"
	AwaitingSpeech    State = "awaiting_speech"
	Processing        State = "processing"
	RespondOrEscalate State = "respond_or_escalate"
	AwaitingFollowUp  State = "awaiting_follow_up"
	Ended             State = "ended"
)

type Event string

const (
	EventStart     Event = "start"
	EventSpeech    Event = "speech"
	EventSilence   Event = "silence"
	EventAnswered  Event = "answered"
	EventEscalated Event = "escalated"
	EventContinue  Event = "continue"
	EventHangup    Event = "hangup"
)

const DefaultMaxRetries = 2

var ErrInvalidTransition = errors.New("invalid call transition")

// Call is the per-call position in the voice flow.
type Call struct {
	State      State
	Retries    int
	MaxRetries int
}

func New(maxRetries int) *Call {
	if maxRetries < 0 {
		maxRetries = DefaultMaxRetries
	}
	return &Call{State: Greeting, MaxRetries: maxRetries}
}

func Restore(state State, retries, maxRetries int) *Call {
	if state == "" {
		state = Greeting
	}
	if maxRetries < 0 {
		maxRetries = DefaultMaxRetries
	}
	return &Call{State: state, Retries: retries, MaxRetries: maxRetries}
}

// Fire applies event and returns the new state. Silence while awaiting speech
// re-prompts until MaxRetries re-prompts have been used, then ends the call.
func (c *Call) Fire(event Event) (State, error) {
	if event == EventHangup {
		c.State = Ended
		return c.State, nil
	}

	next, err := c.next(event)
	if err != nil {
		return c.State, err
	}
	if next == Processing {
		c.Retries = 0
	}
	c.State = next
	return c.State, nil
}

func (c *Call) next(event Event) (State, error) {
	switch c.State {
	case Greeting:
		if event == EventStart {
			return AwaitingSpeech, nil
		}
	case AwaitingSpeech:
		switch event {
		case EventSpeech:
			return Processing, nil
		case EventSilence:
			if c.Retries >= c.MaxRetries {
				return Ended, nil
			}
			c.Retries++
			return AwaitingSpeech, nil
		}
	case Processing:
		if event == EventAnswered || event == EventEscalated {
			return RespondOrEscalate, nil
		}
	case RespondOrEscalate:
		switch event {
		case EventAnswered:
			return AwaitingFollowUp, nil
		case EventEscalated:
			return Ended, nil
		}
	case AwaitingFollowUp:
		switch event {
		case EventContinue, EventSpeech:
			return AwaitingSpeech, nil
		case EventSilence:
			return Ended, nil
		}
	case Ended:
	}

	return c.State, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, event, c.State)
}

func (c *Call) Done() bool {
	return c.State == Ended
}
