package assistantService

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"ShortletAssistant/internal/api/assistant"
	"ShortletAssistant/internal/entity"
	"ShortletAssistant/pkg/callflow"
	contextPkg "ShortletAssistant/pkg/context"
	"ShortletAssistant/pkg/intent"
	"ShortletAssistant/pkg/rag"
	"ShortletAssistant/pkg/voicexml"

	"github.com/sirupsen/logrus"
)

const (
	repromptText = "Sorry, I didn't catch that. Could you please repeat your question?"
	followUpText = "Is there anything else I can help you with?"
	goodbyeText  = "Thank you for calling. Goodbye!"
	transferText = "Please hold while I connect you."
)

func (s *assistantService) gatherAction(propertyID string) string {
	if propertyID == "" {
		return s.config.GatherPath
	}
	return s.config.GatherPath + "?property_id=" + url.QueryEscape(propertyID)
}

func (s *assistantService) greeting(property *entity.Property) string {
	if property != nil && property.Title != "" {
		return fmt.Sprintf("Hello, thank you for calling %s about %s. How can I help you today?", s.config.PlatformName, property.Title)
	}
	return fmt.Sprintf("Hello, thank you for calling %s. How can I help you today?", s.config.PlatformName)
}

// listen asks for speech and, when the gather times out, redirects back to the
// gather webhook with no speech so silence reaches the state machine.
func (s *assistantService) listen(r *voicexml.Response, propertyID, prompt string) *voicexml.Response {
	action := s.gatherAction(propertyID)
	return r.Gather(action, s.config.GatherTimeout, prompt).Redirect(action)
}

func (s *assistantService) IncomingCall(ctx context.Context, hook assistant.VoiceWebhook) ([]byte, error) {
	property := s.lookupProperty(ctx, hook.PropertyID)

	call := callflow.New(s.config.MaxRetries)
	if _, err := call.Fire(callflow.EventStart); err != nil {
		return nil, err
	}

	session := &entity.CallSession{
		CallID:     hook.CallSid,
		PropertyID: hook.PropertyID,
		State:      string(call.State),
		UpdatedAt:  time.Now().UTC(),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"call_id":    hook.CallSid,
			"error":      err.Error(),
		}).Warn("Failed to save call session")
	}

	return s.listen(voicexml.New(s.config.Voice), hook.PropertyID, s.greeting(property)).Render()
}

func (s *assistantService) loadCall(ctx context.Context, hook assistant.VoiceWebhook) (*entity.CallSession, *callflow.Call) {
	session, err := s.sessions.Get(ctx, hook.CallSid)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			s.log.WithFields(logrus.Fields{
				"request_id": contextPkg.GetRequestID(ctx),
				"call_id":    hook.CallSid,
				"error":      err.Error(),
			}).Warn("Failed to load call session, starting over")
		}
		session = &entity.CallSession{
			CallID:     hook.CallSid,
			PropertyID: hook.PropertyID,
			State:      string(callflow.AwaitingSpeech),
		}
	}
	if session.PropertyID == "" {
		session.PropertyID = hook.PropertyID
	}

	state := callflow.State(session.State)
	switch state {
	case callflow.AwaitingSpeech, callflow.AwaitingFollowUp, callflow.Ended:
	default:
		// a webhook only arrives while the caller is being listened to
		state = callflow.AwaitingSpeech
	}
	return session, callflow.Restore(state, session.Retries, s.config.MaxRetries)
}

func (s *assistantService) saveCall(ctx context.Context, session *entity.CallSession, call *callflow.Call) {
	session.State = string(call.State)
	session.Retries = call.Retries
	session.UpdatedAt = time.Now().UTC()

	var err error
	if call.Done() {
		err = s.sessions.Delete(ctx, session.CallID)
	} else {
		err = s.sessions.Save(ctx, session)
	}
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"call_id":    session.CallID,
			"error":      err.Error(),
		}).Warn("Failed to persist call session")
	}
}

func (s *assistantService) Gather(ctx context.Context, hook assistant.VoiceWebhook) ([]byte, error) {
	session, call := s.loadCall(ctx, hook)
	speech := strings.TrimSpace(hook.SpeechResult)
	out := voicexml.New(s.config.Voice)

	if call.State == callflow.Ended {
		s.saveCall(ctx, session, call)
		return out.Say(goodbyeText).Hangup().Render()
	}

	if speech == "" {
		if _, err := call.Fire(callflow.EventSilence); err != nil {
			return nil, err
		}
		s.saveCall(ctx, session, call)
		if call.Done() {
			return out.Say(goodbyeText).Hangup().Render()
		}
		return s.listen(out, session.PropertyID, repromptText).Render()
	}

	if call.State == callflow.AwaitingFollowUp {
		if _, err := call.Fire(callflow.EventSpeech); err != nil {
			return nil, err
		}
	}
	if _, err := call.Fire(callflow.EventSpeech); err != nil {
		return nil, err
	}

	answer, err := s.Query(ctx, entity.ChannelVoice, assistant.QueryRequest{
		PropertyID: session.PropertyID,
		Utterance:  speech,
		History:    session.History,
	})
	if err != nil {
		return nil, err
	}

	event := callflow.EventAnswered
	if answer.Escalate {
		event = callflow.EventEscalated
	}
	for i := 0; i < 2; i++ {
		if _, err := call.Fire(event); err != nil {
			return nil, err
		}
	}

	if answer.Escalate {
		s.saveCall(ctx, session, call)
		return s.transfer(ctx, out, session.PropertyID, answer.Response).Render()
	}

	session.History = intent.LastTurns(append(session.History,
		entity.ConversationTurn{Role: entity.RoleUser, Content: speech},
		entity.ConversationTurn{Role: entity.RoleAssistant, Content: answer.Response},
	), rag.HistoryTurns)
	s.saveCall(ctx, session, call)

	out.Say(answer.Response)
	return s.listen(out, session.PropertyID, followUpText).Render()
}

// transfer speaks the apology and dials the host, or the platform fallback
// line. With neither configured the call ends.
func (s *assistantService) transfer(ctx context.Context, out *voicexml.Response, propertyID, apology string) *voicexml.Response {
	number := s.config.FallbackPhone
	if property := s.lookupProperty(ctx, propertyID); property != nil && property.HostPhone != "" {
		number = property.HostPhone
	}

	out.Say(apology)
	if number == "" {
		return out.Say(goodbyeText).Hangup()
	}
	return out.Say(transferText).Dial(number)
}

// CallStatus ends the session when the provider reports the call finished.
func (s *assistantService) CallStatus(ctx context.Context, hook assistant.VoiceWebhook) error {
	switch hook.CallStatus {
	case "completed", "busy", "failed", "no-answer", "canceled":
	default:
		return nil
	}

	session, call := s.loadCall(ctx, hook)
	if _, err := call.Fire(callflow.EventHangup); err != nil {
		return err
	}
	s.saveCall(ctx, session, call)
	return nil
}
