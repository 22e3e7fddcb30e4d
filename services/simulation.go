package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"pitchhub/config"
	"pitchhub/db"
	"pitchhub/llm"
	"pitchhub/models"

	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/sync/errgroup"
)

var (
	ErrSessionNotFound = errors.New("simulation session not found")
	ErrTurnInProgress  = errors.New("a turn is already in progress for this session")
	ErrSessionEnded    = errors.New("simulation session has ended")
)

// SimulationState is the per-session in-memory objection state. Process-local
// and non-durable: it does not survive a restart and is not shared across
// instances.
type SimulationState struct {
	ScenarioType      string
	Difficulty        string
	Persona           models.ClientPersona
	Phase             string
	TurnCount         int
	StartedAt         time.Time
	Pending           []models.GeneratedObjection
	Raised            []models.RaisedObjection
	Current           *models.GeneratedObjection
	LastObjectionTurn int
	Transcript        []models.ConversationTurn

	rng  *rand.Rand
	busy bool
}

func (st *SimulationState) unresolvedCount() int {
	n := 0
	for _, r := range st.Raised {
		if !r.Resolved {
			n++
		}
	}
	return n
}

// SimulationService owns every live session's state and sequences the
// persona, injection, evaluation and reaction components across
// start/message/end.
type SimulationService struct {
	mu       sync.Mutex
	sessions map[string]*SimulationState
	gateway  *llm.Gateway
	seed     int64
	seedSeq  int64
}

var (
	simulationService *SimulationService
	simulationOnce    sync.Once
)

// GetSimulationService returns the singleton simulation service.
func GetSimulationService() *SimulationService {
	simulationOnce.Do(func() {
		simulationService = &SimulationService{
			sessions: make(map[string]*SimulationState),
		}
	})
	return simulationService
}

// InitSimulationService wires the LLM gateway and policy RNG seed.
func InitSimulationService(cfg *config.Config, gateway *llm.Gateway) {
	svc := GetSimulationService()
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.gateway = gateway
	svc.seed = cfg.Simulation.RandomSeed
}

// Gateway exposes the configured LLM gateway for collaborators that run
// outside a live session, like post-hoc analysis.
func (s *SimulationService) Gateway() *llm.Gateway {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gateway
}

// newSessionRNG returns a per-session random source. Each session gets its
// own stream so policies stay reproducible under a pinned seed.
func (s *SimulationService) newSessionRNG() *rand.Rand {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seedSeq++
	seed := s.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed + s.seedSeq))
}

// StartRequest are the inputs to StartSimulation.
type StartRequest struct {
	ScenarioType    string
	DifficultyLevel string
	TraineeID       string
	CustomPersona   *models.PersonaConfig
}

// StartResult is returned to the API layer when a session begins.
type StartResult struct {
	SessionID        string               `json:"sessionId"`
	Persona          models.ClientPersona `json:"persona"`
	InitialMessage   string               `json:"initialMessage"`
	Tips             []string             `json:"tips"`
	EstimatedMinutes int                  `json:"estimatedMinutes"`
}

// StartSimulation generates the persona, persists a new session, builds the
// objection pool and the opening line in parallel, seeds in-memory state and
// appends turn 0.
func (s *SimulationService) StartSimulation(ctx context.Context, req StartRequest) (*StartResult, error) {
	difficulty := req.DifficultyLevel
	if difficulty == "" {
		difficulty = DifficultyMedium
	}

	rng := s.newSessionRNG()
	persona := GeneratePersona(req.ScenarioType, difficulty, req.CustomPersona, rng)

	session := &models.Session{
		TraineeID:       req.TraineeID,
		ScenarioType:    req.ScenarioType,
		DifficultyLevel: difficulty,
		Status:          models.StatusCreated,
		ClientPersona:   persona,
		StartedAt:       time.Now(),
	}
	sessionID, err := db.CreateSession(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	var pool []models.GeneratedObjection
	var greeting string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		pool = GenerateObjections(gctx, req.ScenarioType, difficulty)
		return nil
	})
	g.Go(func() error {
		greeting = GenerateInitialMessage(persona, req.ScenarioType, rng)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := db.UpdateSession(ctx, sessionID, bson.M{"status": models.StatusReady}); err != nil {
		log.Printf("failed to mark session ready: %v", err)
	}

	state := &SimulationState{
		ScenarioType:      req.ScenarioType,
		Difficulty:        difficulty,
		Persona:           persona,
		Phase:             PhaseOpening,
		StartedAt:         session.StartedAt,
		Pending:           pool,
		LastObjectionTurn: -1,
		rng:               rng,
	}

	openingTurn := models.ConversationTurn{
		Speaker:    models.SpeakerClient,
		Message:    greeting,
		Timestamp:  time.Now(),
		Sentiment:  models.SentimentNeutral,
		TurnNumber: 0,
	}
	if err := db.AddConversationTurn(ctx, sessionID, openingTurn); err != nil {
		log.Printf("failed to persist opening turn: %v", err)
	}
	state.Transcript = append(state.Transcript, openingTurn)
	state.TurnCount = 1

	if err := db.UpdateSession(ctx, sessionID, bson.M{"status": models.StatusInProgress}); err != nil {
		log.Printf("failed to mark session in progress: %v", err)
	}

	s.mu.Lock()
	s.sessions[sessionID] = state
	s.mu.Unlock()

	return &StartResult{
		SessionID:        sessionID,
		Persona:          persona,
		InitialMessage:   greeting,
		Tips:             ScenarioTips(req.ScenarioType),
		EstimatedMinutes: EstimatedDurationMinutes(difficulty),
	}, nil
}

// MessageResult is returned for each processed trainee message.
type MessageResult struct {
	SessionID      string   `json:"sessionId"`
	Reply          string   `json:"reply"`
	Sentiment      string   `json:"sentiment"`
	Phase          string   `json:"phase"`
	Hints          []string `json:"hints"`
	TurnNumber     int      `json:"turnNumber"`
	ElapsedSeconds int      `json:"elapsedSeconds"`
}

// checkoutState claims a session for one turn. Concurrent calls for the same
// session are rejected, not queued: the trainee is expected to await each
// reply before sending the next message.
func (s *SimulationService) checkoutState(sessionID string) (*SimulationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if state.busy {
		return nil, ErrTurnInProgress
	}
	state.busy = true
	return state, nil
}

func (s *SimulationService) releaseState(state *SimulationState) {
	s.mu.Lock()
	state.busy = false
	s.mu.Unlock()
}

// ProcessMessage runs one full turn: evaluate any open objection, maybe
// inject a new one, advance the phase and produce the client's reply.
func (s *SimulationService) ProcessMessage(ctx context.Context, sessionID, message string) (*MessageResult, error) {
	return s.processMessage(ctx, sessionID, message, nil)
}

// ProcessMessageStream is ProcessMessage with the client reply delivered
// incrementally: sink receives each chunk as the backend produces it, and
// the returned result carries the assembled reply.
func (s *SimulationService) ProcessMessageStream(ctx context.Context, sessionID, message string, sink func(chunk string)) (*MessageResult, error) {
	return s.processMessage(ctx, sessionID, message, sink)
}

func (s *SimulationService) processMessage(ctx context.Context, sessionID, message string, sink func(chunk string)) (*MessageResult, error) {
	state, err := s.checkoutState(sessionID)
	if err != nil {
		return nil, err
	}
	defer s.releaseState(state)

	if state.Phase == PhaseEnded {
		return nil, ErrSessionEnded
	}

	turnNumber := state.TurnCount
	sentiment := DetectSentiment(message)

	traineeTurn := models.ConversationTurn{
		Speaker:        models.SpeakerTrainee,
		Message:        message,
		Timestamp:      time.Now(),
		Sentiment:      sentiment,
		DetectedIntent: DetectIntent(message),
		TurnNumber:     turnNumber,
	}
	if err := db.AddConversationTurn(ctx, sessionID, traineeTurn); err != nil {
		log.Printf("failed to persist trainee turn: %v", err)
	}
	state.Transcript = append(state.Transcript, traineeTurn)

	var guidance string
	escalated := false
	if state.Current != nil {
		evaluation := EvaluateObjectionHandling(ctx, s.gateway, *state.Current, message, formatTranscriptTail(state.Transcript, 6))
		reaction := DetermineClientReaction(evaluation, state.Persona, state.rng)

		// Each attempt overwrites the ledger entry; the evaluation kept is
		// the one that produced the final reaction, so the entry always
		// agrees with Current.
		for i := range state.Raised {
			if state.Raised[i].Objection.ID == state.Current.ID && !state.Raised[i].Resolved {
				state.Raised[i].TraineeResponse = message
				evalCopy := evaluation
				state.Raised[i].Evaluation = &evalCopy
				state.Raised[i].Resolved = reaction.ObjectionResolved
				break
			}
		}

		sentiment = reaction.NewSentiment
		guidance = reaction.ResponseGuidance
		escalated = reaction.NextAction == models.ActionEscalate
		if reaction.ObjectionResolved {
			state.Current = nil
		}
	}

	var injectedText string
	if state.Current == nil && !escalated {
		decision := ShouldInjectObjection(InjectionContext{
			Phase:              state.Phase,
			Difficulty:         state.Difficulty,
			CurrentTurn:        turnNumber,
			LastObjectionTurn:  state.LastObjectionTurn,
			UnresolvedCount:    state.unresolvedCount(),
			Pending:            state.Pending,
			LastTraineeMessage: message,
		}, state.rng)

		if decision.ShouldInject {
			objection := *decision.Objection
			state.Current = &objection
			state.Raised = append(state.Raised, models.RaisedObjection{
				Objection:    objection,
				RaisedAtTurn: turnNumber,
			})
			state.LastObjectionTurn = turnNumber
			state.Pending = removeObjection(state.Pending, objection.ID)
			injectedText = objectionPhrasing(objection, state.rng)
		}
	}

	state.Phase = NextPhase(state.Phase, turnNumber, sentiment)

	reply := s.generateClientReply(ctx, state, message, injectedText, guidance, sink)

	clientTurn := models.ConversationTurn{
		Speaker:    models.SpeakerClient,
		Message:    reply,
		Timestamp:  time.Now(),
		Sentiment:  sentiment,
		TurnNumber: turnNumber + 1,
	}
	if err := db.AddConversationTurn(ctx, sessionID, clientTurn); err != nil {
		log.Printf("failed to persist client turn: %v", err)
	}
	state.Transcript = append(state.Transcript, clientTurn)
	state.TurnCount = turnNumber + 2

	return &MessageResult{
		SessionID:      sessionID,
		Reply:          reply,
		Sentiment:      sentiment,
		Phase:          state.Phase,
		Hints:          buildHints(state),
		TurnNumber:     clientTurn.TurnNumber,
		ElapsedSeconds: int(time.Since(state.StartedAt).Seconds()),
	}, nil
}

func removeObjection(pool []models.GeneratedObjection, id string) []models.GeneratedObjection {
	out := pool[:0]
	for _, obj := range pool {
		if obj.ID != id {
			out = append(out, obj)
		}
	}
	return out
}

// objectionPhrasing picks how the client voices an objection: a variation
// when available, the core content otherwise.
func objectionPhrasing(objection models.GeneratedObjection, rng *rand.Rand) string {
	if len(objection.Variations) > 0 {
		return objection.Variations[rng.Intn(len(objection.Variations))]
	}
	return objection.CoreContent
}

func buildHints(state *SimulationState) []string {
	var hints []string
	if state.Current != nil {
		hints = append(hints, fmt.Sprintf("The client has an open %s concern. Acknowledge it before moving on.", state.Current.Category))
	}
	switch state.Phase {
	case PhaseDiscovery:
		hints = append(hints, "Ask open questions about their situation before pitching.")
	case PhaseNegotiating:
		hints = append(hints, "Defend value before conceding on price.")
	case PhaseClosing:
		hints = append(hints, "Summarize agreed value and propose a concrete next step.")
	}
	return hints
}

// formatTranscriptTail renders the last n turns for prompt context.
func formatTranscriptTail(turns []models.ConversationTurn, n int) string {
	start := len(turns) - n
	if start < 0 {
		start = 0
	}
	var sb strings.Builder
	for _, turn := range turns[start:] {
		sb.WriteString(fmt.Sprintf("%s: %s\n", turn.Speaker, turn.Message))
	}
	return sb.String()
}

func buildClientReplyPrompt(state *SimulationState, message, injectedText, guidance string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(
		`You are %s, a potential client in a sales roleplay. Stay fully in character.

Profile:
- Background: %s
- Personality: %s
- Budget: %s
- Motivations: %s
- Hidden concerns (never state these directly): %s

Current conversation phase: %s.
`,
		state.Persona.Name,
		state.Persona.Background,
		state.Persona.Personality,
		state.Persona.Budget,
		strings.Join(state.Persona.Motivations, "; "),
		strings.Join(state.Persona.HiddenConcerns, "; "),
		state.Phase,
	))

	if injectedText != "" {
		sb.WriteString(fmt.Sprintf("\nRaise this concern naturally in your reply: \"%s\"\n", injectedText))
	} else if state.Current != nil {
		sb.WriteString(fmt.Sprintf("\nYour concern \"%s\" has not been addressed yet. Keep it alive.\n", state.Current.CoreContent))
	}
	if guidance != "" {
		sb.WriteString(fmt.Sprintf("\nDisposition for this reply: %s\n", guidance))
	}

	sb.WriteString(fmt.Sprintf(`
Recent conversation:
%s
The salesperson just said: "%s"

Reply as %s in 1-3 sentences. Speak naturally, no stage directions, no quotation marks.`,
		formatTranscriptTail(state.Transcript, 8), message, state.Persona.Name))
	return sb.String()
}

// generateClientReply asks the gateway for the client's next line, degrading
// to a canned in-character reply when every backend fails. A model outage
// costs nuance, never availability. With a sink the reply streams chunk by
// chunk as the backend produces it.
func (s *SimulationService) generateClientReply(ctx context.Context, state *SimulationState, message, injectedText, guidance string, sink func(chunk string)) string {
	if s.gateway != nil {
		req := llm.Request{
			Prompt:      buildClientReplyPrompt(state, message, injectedText, guidance),
			MaxTokens:   256,
			Temperature: 0.8,
		}

		if sink != nil {
			ch, err := s.gateway.StreamComplete(ctx, req)
			if err != nil {
				log.Printf("client reply stream fell back to canned response: %v", err)
			} else {
				var sb strings.Builder
				for chunk := range ch {
					sb.WriteString(chunk)
					sink(chunk)
				}
				if sb.Len() > 0 {
					return sb.String()
				}
			}
		} else {
			reply, err := s.gateway.Complete(ctx, req)
			if err != nil {
				log.Printf("client reply generation fell back to canned response: %v", err)
			} else if reply != "" {
				return reply
			}
		}
	}

	fallback := fallbackClientReply(state, injectedText)
	if sink != nil {
		sink(fallback)
	}
	return fallback
}

func fallbackClientReply(state *SimulationState, injectedText string) string {
	if injectedText != "" {
		return injectedText
	}
	if state.Current != nil && state.Current.CoreContent != "" {
		content := state.Current.CoreContent
		return fmt.Sprintf("I hear you, but I still have to say: %s", strings.ToLower(content[:1])+content[1:])
	}
	switch state.Persona.Personality {
	case models.PersonalityDemanding:
		return "Fine. Get to the point — what exactly are you proposing?"
	case models.PersonalitySkeptical:
		return "Hmm. I'd want to see some proof of that before we go further."
	case models.PersonalityIndecisive:
		return "I see. I'll need to think about that... can you walk me through it once more?"
	case models.PersonalityAnalytical:
		return "Understood. Do you have numbers to back that up?"
	default:
		return "That's interesting, tell me more about how that would work for us."
	}
}

// EndResult summarizes a finished session.
type EndResult struct {
	SessionID          string `json:"sessionId"`
	Outcome            string `json:"outcome"`
	DurationSeconds    int    `json:"durationSeconds"`
	TurnCount          int    `json:"turnCount"`
	TotalObjections    int    `json:"totalObjections"`
	ResolvedObjections int    `json:"resolvedObjections"`
	PreliminaryScore   int    `json:"preliminaryScore"`
}

// classifyOutcome maps resolution rate and turn count to a session outcome.
// Any end reason other than "completed" forces client_declined. A session
// with no objections raised counts as fully resolved.
func classifyOutcome(endReason string, turnCount, resolved, total int) string {
	if endReason != "completed" {
		return models.OutcomeClientDeclined
	}

	rate := 1.0
	if total > 0 {
		rate = float64(resolved) / float64(total)
	}

	switch {
	case rate >= 0.8 && turnCount >= 10:
		return models.OutcomeDealClosed
	case rate >= 0.6:
		return models.OutcomeFollowUpScheduled
	case rate >= 0.4:
		return models.OutcomeClientInterested
	case rate >= 0.2:
		return models.OutcomeClientUndecided
	default:
		return models.OutcomeClientDeclined
	}
}

// preliminaryScore computes the end-of-session score before AI analysis:
// base 60 plus 25x the resolution rate, averaged with the mean per-objection
// evaluation score when one exists, plus turn-count milestones, clamped.
func preliminaryScore(resolved, total, turnCount int, evaluationScores []int) int {
	rate := 1.0
	if total > 0 {
		rate = float64(resolved) / float64(total)
	}

	score := 60.0 + 25.0*rate
	if len(evaluationScores) > 0 {
		sum := 0
		for _, s := range evaluationScores {
			sum += s
		}
		mean := float64(sum) / float64(len(evaluationScores))
		score = (score + mean) / 2
	}

	if turnCount >= 8 {
		score += 5
	}
	if turnCount >= 12 {
		score += 5
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return int(score)
}

// EndSimulation closes a session: classifies the outcome, computes the
// preliminary score, persists the result and drops the in-memory state.
func (s *SimulationService) EndSimulation(ctx context.Context, sessionID, endReason string) (*EndResult, error) {
	state, err := s.checkoutState(sessionID)
	if err != nil {
		return nil, err
	}

	total := len(state.Raised)
	resolved := 0
	var evalScores []int
	for _, r := range state.Raised {
		if r.Resolved {
			resolved++
		}
		if r.Evaluation != nil {
			evalScores = append(evalScores, r.Evaluation.Score)
		}
	}

	turnCount := state.TurnCount
	outcome := classifyOutcome(endReason, turnCount, resolved, total)
	score := preliminaryScore(resolved, total, turnCount, evalScores)
	duration := int(time.Since(state.StartedAt).Seconds())

	status := models.StatusCompleted
	if endReason != "completed" {
		status = models.StatusAbandoned
	}

	update := bson.M{
		"status":          status,
		"completedAt":     time.Now(),
		"durationSeconds": duration,
		"outcome":         outcome,
		"metrics": models.SessionMetrics{
			TurnCount:          turnCount,
			TotalObjections:    total,
			ResolvedObjections: resolved,
			PreliminaryScore:   score,
		},
	}
	if err := db.UpdateSession(ctx, sessionID, update); err != nil {
		log.Printf("failed to persist session end: %v", err)
	}

	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	return &EndResult{
		SessionID:          sessionID,
		Outcome:            outcome,
		DurationSeconds:    duration,
		TurnCount:          turnCount,
		TotalObjections:    total,
		ResolvedObjections: resolved,
		PreliminaryScore:   score,
	}, nil
}

// GetSession loads a session with its turns. Missing sessions are a fatal
// not-found for the call.
func (s *SimulationService) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	session, err := db.FindSessionByID(ctx, sessionID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}
