package conversation

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/clinicdesk/medibot/internal/booking"
	"github.com/clinicdesk/medibot/internal/bookings"
	"github.com/clinicdesk/medibot/internal/knowledge"
	"github.com/clinicdesk/medibot/internal/observability/metrics"
	"github.com/clinicdesk/medibot/internal/session"
	"github.com/clinicdesk/medibot/pkg/logging"
)

// SystemPrompt steers the LLM fallback for turns that are neither
// answerable from documents nor part of a booking.
const SystemPrompt = "You are a professional, friendly medical appointment assistant. " +
	"Help users book appointments, answer questions about healthcare, and provide guidance. " +
	"Be empathetic and clear."

// Confirmer persists a completed draft and reports whether the
// confirmation email went out.
type Confirmer interface {
	Confirm(ctx context.Context, d booking.Draft) (*bookings.ConfirmResult, error)
}

// Orchestrator routes each chat turn to retrieval, the booking dialogue
// engine, the confirmation step, or the LLM fallback. Routing precedence on
// an ordinary turn is fixed: retrieval is tried first for question-looking
// text, booking intent only gets a chance when retrieval had no answer, and
// everything else goes to the LLM. Once a booking is active, intent
// classification is bypassed entirely.
type Orchestrator struct {
	engine    *booking.Engine
	sessions  session.Store
	history   HistoryStore
	retriever knowledge.Retriever
	llm       LLMClient
	confirmer Confirmer
	metrics   *metrics.ChatMetrics
	logger    *logging.Logger
	topK      int

	// one in-flight turn per session; independent sessions proceed in
	// parallel
	locks sync.Map
}

// Options carries the orchestrator's collaborators. Engine, Sessions and
// History are required; the rest degrade gracefully when nil.
type Options struct {
	Engine    *booking.Engine
	Sessions  session.Store
	History   HistoryStore
	Retriever knowledge.Retriever
	LLM       LLMClient
	Confirmer Confirmer
	Metrics   *metrics.ChatMetrics
	Logger    *logging.Logger
	TopK      int
}

// NewOrchestrator wires the per-turn router.
func NewOrchestrator(opts Options) *Orchestrator {
	if opts.Engine == nil {
		panic("conversation: booking engine required")
	}
	if opts.Sessions == nil {
		panic("conversation: session store required")
	}
	if opts.History == nil {
		panic("conversation: history store required")
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	if opts.TopK <= 0 {
		opts.TopK = 3
	}
	return &Orchestrator{
		engine:    opts.Engine,
		sessions:  opts.Sessions,
		history:   opts.History,
		retriever: opts.Retriever,
		llm:       opts.LLM,
		confirmer: opts.Confirmer,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
		topK:      opts.TopK,
	}
}

// HandleTurn processes one patient utterance and returns the assistant
// reply. Each session's turns are serialized; the transcript gains the
// user/assistant pair on every successful turn.
func (o *Orchestrator) HandleTurn(ctx context.Context, sessionID, text string) (string, error) {
	unlock := o.lockSession(sessionID)
	defer unlock()

	text = strings.TrimSpace(text)
	if text == "" {
		return "Please type a message.", nil
	}

	state, err := o.sessions.Load(ctx, sessionID)
	if err != nil {
		return "", err
	}

	start := time.Now()
	var reply, route string
	switch state.Phase {
	case session.PhaseConfirming:
		route = metrics.RouteConfirmation
		reply, err = o.handleConfirmation(ctx, sessionID, &state, text)
	case session.PhaseBooking:
		route = metrics.RouteBooking
		reply, err = o.handleBookingTurn(ctx, sessionID, &state, text)
	default:
		route, reply, err = o.handleIdleTurn(ctx, sessionID, &state, text)
	}
	if err != nil {
		return "", err
	}

	o.metrics.ObserveTurn(route)
	o.metrics.ObserveTurnLatency(route, time.Since(start).Seconds())

	if err := o.history.Append(ctx, sessionID,
		ChatMessage{Role: ChatRoleUser, Content: text},
		ChatMessage{Role: ChatRoleAssistant, Content: reply},
	); err != nil {
		o.logger.Warn("failed to append transcript", "session_id", sessionID, "error", err)
	}
	return reply, nil
}

// ClearSession drops the dialogue state and the transcript.
func (o *Orchestrator) ClearSession(ctx context.Context, sessionID string) error {
	unlock := o.lockSession(sessionID)
	defer unlock()

	if err := o.sessions.Clear(ctx, sessionID); err != nil {
		return err
	}
	return o.history.Clear(ctx, sessionID)
}

// History returns the session transcript.
func (o *Orchestrator) History(ctx context.Context, sessionID string) ([]ChatMessage, error) {
	return o.history.Load(ctx, sessionID)
}

func (o *Orchestrator) handleConfirmation(ctx context.Context, sessionID string, state *session.State, text string) (string, error) {
	switch strings.ToLower(text) {
	case "yes":
		if o.confirmer == nil {
			return "", fmt.Errorf("conversation: no booking backend configured")
		}
		res, err := o.confirmer.Confirm(ctx, state.Draft)
		if err != nil {
			// The booking was not stored; stay in the confirmation
			// phase so the patient can retry with another "yes".
			return "", fmt.Errorf("conversation: confirm booking: %w", err)
		}

		reply := confirmedReply(res)
		state.ResetBooking()
		if err := o.sessions.Save(ctx, sessionID, *state); err != nil {
			return "", err
		}
		return reply, nil

	case "no":
		state.ResetBooking()
		if err := o.sessions.Save(ctx, sessionID, *state); err != nil {
			return "", err
		}
		o.metrics.ObserveBookingCancelled()
		return "Booking cancelled. No problem! Feel free to book again whenever you're ready.", nil

	default:
		// flags and draft unchanged
		return "Please type yes to confirm or no to cancel your booking.", nil
	}
}

func (o *Orchestrator) handleBookingTurn(ctx context.Context, sessionID string, state *session.State, text string) (string, error) {
	res := o.engine.Advance(&state.Draft, state.Stage, text)
	state.Stage = res.Stage
	if res.Stage == booking.StageConfirm {
		state.Phase = session.PhaseConfirming
	}
	if err := o.sessions.Save(ctx, sessionID, *state); err != nil {
		return "", err
	}
	return res.Reply, nil
}

func (o *Orchestrator) handleIdleTurn(ctx context.Context, sessionID string, state *session.State, text string) (route, reply string, err error) {
	if IsQuestion(text) && o.retriever != nil {
		passages, err := o.retriever.Query(ctx, text, o.topK)
		if err != nil {
			// retrieval is best effort; fall through to the other routes
			o.logger.Warn("retrieval failed", "session_id", sessionID, "error", err)
		} else if len(passages) > 0 {
			return metrics.RouteRetrieval, "Answer from clinic documents:\n\n" + strings.Join(passages, "\n\n"), nil
		}
	}

	if IsBookingIntent(text) {
		state.Phase = session.PhaseBooking
		state.Stage = booking.StageName
		state.Draft.Reset()
		if err := o.sessions.Save(ctx, sessionID, *state); err != nil {
			return "", "", err
		}
		return metrics.RouteBooking, booking.StartPrompt, nil
	}

	if o.llm == nil {
		return metrics.RouteChat, "I can help you book an appointment or answer questions about the clinic. Try asking about our services, or say \"book an appointment\".", nil
	}

	history, err := o.history.Load(ctx, sessionID)
	if err != nil {
		return "", "", err
	}
	resp, err := o.llm.Complete(ctx, LLMRequest{
		System:      []string{SystemPrompt},
		Messages:    append(history, ChatMessage{Role: ChatRoleUser, Content: text}),
		Temperature: 0.7,
	})
	if err != nil {
		return "", "", fmt.Errorf("conversation: chat completion: %w", err)
	}
	return metrics.RouteChat, resp.Text, nil
}

func confirmedReply(res *bookings.ConfirmResult) string {
	rec := res.Booking
	var b strings.Builder
	b.WriteString("Your appointment is confirmed!\n\n")
	fmt.Fprintf(&b, "Booking ID: %d\n", rec.ID)
	fmt.Fprintf(&b, "Name: %s\n", rec.Name)
	fmt.Fprintf(&b, "Date: %s\n", rec.Date)
	fmt.Fprintf(&b, "Time: %s\n", rec.Time)
	fmt.Fprintf(&b, "Email: %s\n", rec.Email)
	fmt.Fprintf(&b, "Phone: %s\n", rec.Phone)
	if res.EmailSent {
		fmt.Fprintf(&b, "\nA confirmation email has been sent to %s.", rec.Email)
	} else {
		b.WriteString("\nWe couldn't send the confirmation email, but your booking is confirmed.")
	}
	b.WriteString("\n\nIs there anything else I can help you with?")
	return b.String()
}

func (o *Orchestrator) lockSession(sessionID string) func() {
	v, _ := o.locks.LoadOrStore(sessionID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
