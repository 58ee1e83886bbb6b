// Package webhook is the service's single entry point: it validates inbound
// ManyChat payloads, routes them through the response pipeline, maintains
// conversation and lead state, and sends the reply back in chunks.
package webhook

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/beforest/forest-guide/internal/common/errors"
	"github.com/beforest/forest-guide/internal/common/logger"
	"github.com/beforest/forest-guide/internal/common/metrics"
	"github.com/beforest/forest-guide/internal/notify"
	"github.com/beforest/forest-guide/internal/pipeline/brandvoice"
	"github.com/beforest/forest-guide/internal/pipeline/chunker"
	"github.com/beforest/forest-guide/internal/pipeline/leadscore"
	"github.com/beforest/forest-guide/internal/pipeline/router"
	"github.com/beforest/forest-guide/internal/store"
)

// Recognized metadata keys on the inbound payload.
const (
	MetaVerified  = "is_ig_verified_user"
	MetaFollowers = "ig_followers_count"
)

const (
	greetingReply    = "Hey. I'm Forest Guide at Beforest. What would you like to know?"
	placeholderReply = "I'm thinking... give me a moment."

	pathGreeting = "greeting"
)

var greetings = map[string]bool{
	"hi": true, "hii": true, "hiii": true, "hello": true, "hey": true,
	"yo": true, "hola": true, "namaste": true, "good morning": true,
	"good afternoon": true, "good evening": true,
}

// IncomingMessage is the typed inbound request. Metadata is an open map;
// recognized keys are documented above.
type IncomingMessage struct {
	Text            string                 `json:"message"`
	ContactID       string                 `json:"contactId"`
	InstagramUserID string                 `json:"instagramUserId,omitempty"`
	DisplayName     string                 `json:"name,omitempty"`
	FlowID          string                 `json:"flowId,omitempty"`
	CampaignID      string                 `json:"campaignId,omitempty"`
	MessageID       string                 `json:"messageId,omitempty"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
}

// Reply is the ordered chunk sequence returned to the caller. Delivery
// through ManyChat happens as a side effect; the chunks are returned even
// when delivery failed.
type Reply struct {
	Status    string   `json:"status"`
	Path      string   `json:"path,omitempty"`
	Duplicate bool     `json:"duplicate,omitempty"`
	Chunks    []string `json:"chunks"`
}

// Collaborator interfaces, satisfied by the store, router, manychat and
// notify packages. The service holds interfaces so tests can substitute
// fakes.
type (
	DedupRegistry interface {
		Register(ctx context.Context, messageID, contactID string) (bool, error)
	}
	UserStore interface {
		GetOrCreate(ctx context.Context, contactID, instagramUserID, displayName string) (*store.User, error)
	}
	MessageStore interface {
		AppendInbound(ctx context.Context, userID int64, text, messageID string) error
		AppendOutbound(ctx context.Context, userID int64, text, path string) error
	}
	LeadStore interface {
		Upsert(ctx context.Context, userID int64, intent string, score int, stage string, lastMessageAt time.Time) error
	}
	FollowUpStore interface {
		Upsert(ctx context.Context, userID int64, scheduledFor time.Time, draft, reason string) error
	}
	EventStore interface {
		Insert(ctx context.Context, userID int64, eventType string, details map[string]interface{}) error
	}
	Responder interface {
		Route(ctx context.Context, req router.Request) (string, router.Path, error)
	}
	Deliverer interface {
		SendChunks(ctx context.Context, subscriberID int64, chunks []string) error
	}
	Alerter interface {
		ShouldAlert(score int) bool
		NotifyHotLead(ctx context.Context, lead notify.HotLead) error
	}
)

// Service composes the pipeline stages behind HandleInbound.
type Service struct {
	dedup     DedupRegistry
	users     UserStore
	messages  MessageStore
	leads     LeadStore
	followUps FollowUpStore
	events    EventStore
	responder Responder
	deliverer Deliverer
	alerter   Alerter
	logger    logger.Logger
	now       func() time.Time
}

func NewService(
	dedup DedupRegistry,
	users UserStore,
	messages MessageStore,
	leads LeadStore,
	followUps FollowUpStore,
	events EventStore,
	responder Responder,
	deliverer Deliverer,
	alerter Alerter,
	log logger.Logger,
) *Service {
	return &Service{
		dedup:     dedup,
		users:     users,
		messages:  messages,
		leads:     leads,
		followUps: followUps,
		events:    events,
		responder: responder,
		deliverer: deliverer,
		alerter:   alerter,
		logger:    log.WithFields(map[string]interface{}{"component": "webhook"}),
		now:       time.Now,
	}
}

// HandleInbound runs the full pipeline for one message. Only validation
// errors are returned; every collaborator failure degrades independently and
// the caller always gets a reply.
func (s *Service) HandleInbound(ctx context.Context, msg IncomingMessage) (Reply, error) {
	started := s.now()

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return Reply{}, apperrors.NewValidationError(apperrors.ErrCodeMissingMessage, "message", "message text is required")
	}
	if strings.TrimSpace(msg.ContactID) == "" {
		return Reply{}, apperrors.NewValidationError(apperrors.ErrCodeMissingContactID, "contactId", "contact id is required")
	}

	log := s.logger.WithFields(map[string]interface{}{"contact_id": msg.ContactID})

	if s.isDuplicate(ctx, log, msg) {
		metrics.MessagesDuplicate.Inc()
		return Reply{Status: "ok", Duplicate: true, Chunks: []string{}}, nil
	}

	userID := s.resolveUser(ctx, log, msg)

	answer, path := s.answer(ctx, log, msg, text)
	answer = brandvoice.Polish(text, answer)

	signal := leadscore.InferSignals(text, s.now())
	score := leadscore.ApplyAudienceBoosts(signal.Score, metaVerified(msg.Metadata), metaFollowers(msg.Metadata))

	s.persist(ctx, log, userID, msg, text, answer, path, signal, score)
	s.scheduleFollowUp(ctx, log, userID, msg.DisplayName, signal, score)
	s.alertIfHot(ctx, log, userID, msg, text, signal, score)

	chunks := chunker.Chunk(answer, chunker.DefaultMaxChars)
	s.deliver(ctx, log, msg.ContactID, chunks)

	metrics.MessagesProcessed.WithLabelValues(string(path)).Inc()
	metrics.HandlerDuration.WithLabelValues(string(path)).Observe(s.now().Sub(started).Seconds())
	metrics.LeadScore.Observe(float64(score))

	return Reply{Status: "ok", Path: string(path), Chunks: chunks}, nil
}

// isDuplicate consults the dedup registry. A registry failure is treated as
// not-duplicate so a Redis outage never drops messages.
func (s *Service) isDuplicate(ctx context.Context, log logger.Logger, msg IncomingMessage) bool {
	if msg.MessageID == "" {
		return false
	}
	dup, err := s.dedup.Register(ctx, msg.MessageID, msg.ContactID)
	if err != nil {
		metrics.StageFailures.WithLabelValues("dedup").Inc()
		log.Warn("dedup check failed, treating as new", map[string]interface{}{
			"message_id": msg.MessageID,
			"error":      apperrors.NewCollaboratorError(apperrors.ErrCodeDedupCheckFailed, "dedup", err).Error(),
		})
		return false
	}
	return dup
}

// resolveUser returns 0 when the lookup fails; persistence is skipped for
// this message and the reply still goes out.
func (s *Service) resolveUser(ctx context.Context, log logger.Logger, msg IncomingMessage) int64 {
	u, err := s.users.GetOrCreate(ctx, msg.ContactID, msg.InstagramUserID, msg.DisplayName)
	if err != nil {
		metrics.StageFailures.WithLabelValues("user_lookup").Inc()
		log.Warn("user lookup failed, skipping persistence", map[string]interface{}{
			"error": apperrors.NewCollaboratorError(apperrors.ErrCodeUserLookupFailed, "user_lookup", err).Error(),
		})
		return 0
	}
	return u.ID
}

func (s *Service) answer(ctx context.Context, log logger.Logger, msg IncomingMessage, text string) (string, router.Path) {
	if isGreeting(text) {
		return greetingReply, router.Path(pathGreeting)
	}

	answer, path, err := s.responder.Route(ctx, router.Request{
		Text:           text,
		ConversationID: msg.ContactID,
		DisplayName:    msg.DisplayName,
	})
	if err != nil {
		metrics.StageFailures.WithLabelValues("pipeline").Inc()
		log.Error("agent pipeline failed, using placeholder", map[string]interface{}{
			"error": apperrors.NewCollaboratorError(apperrors.ErrCodePipelineFailed, "pipeline", err).Error(),
		})
		return placeholderReply, router.PathPipeline
	}
	return answer, path
}

func (s *Service) persist(ctx context.Context, log logger.Logger, userID int64, msg IncomingMessage, text, answer string, path router.Path, signal leadscore.Signal, score int) {
	if userID == 0 {
		return
	}

	if err := s.messages.AppendInbound(ctx, userID, text, msg.MessageID); err != nil {
		s.logStoreFailure(log, "store_inbound", err)
	}
	if err := s.messages.AppendOutbound(ctx, userID, answer, string(path)); err != nil {
		s.logStoreFailure(log, "store_outbound", err)
	}
	if err := s.leads.Upsert(ctx, userID, string(signal.Intent), score, string(signal.Stage), s.now()); err != nil {
		s.logStoreFailure(log, "lead_upsert", err)
	}
	if err := s.events.Insert(ctx, userID, store.EventLeadScored, map[string]interface{}{
		"intent": string(signal.Intent),
		"score":  score,
		"stage":  string(signal.Stage),
		"path":   string(path),
	}); err != nil {
		s.logStoreFailure(log, "lead_event", err)
	}
}

func (s *Service) scheduleFollowUp(ctx context.Context, log logger.Logger, userID int64, displayName string, signal leadscore.Signal, score int) {
	if userID == 0 {
		return
	}

	draft := followUpDraft(displayName, signal.Intent)
	reason := fmt.Sprintf("intent %s, score %d, stage %s", signal.Intent, score, signal.Stage)
	scheduledFor := time.UnixMilli(signal.FollowUpAt).UTC()

	if err := s.followUps.Upsert(ctx, userID, scheduledFor, draft, reason); err != nil {
		s.logStoreFailure(log, "follow_up", err)
		return
	}
	if err := s.events.Insert(ctx, userID, store.EventFollowUpSet, map[string]interface{}{
		"scheduled_for": signal.FollowUpAt,
		"delay_hours":   signal.FollowUpDelayHours,
	}); err != nil {
		s.logStoreFailure(log, "lead_event", err)
	}
}

func (s *Service) alertIfHot(ctx context.Context, log logger.Logger, userID int64, msg IncomingMessage, text string, signal leadscore.Signal, score int) {
	if !s.alerter.ShouldAlert(score) {
		return
	}

	err := s.alerter.NotifyHotLead(ctx, notify.HotLead{
		DisplayName: msg.DisplayName,
		ContactID:   msg.ContactID,
		Intent:      string(signal.Intent),
		Stage:       string(signal.Stage),
		Score:       score,
		Message:     text,
	})
	if err != nil {
		metrics.StageFailures.WithLabelValues("alert").Inc()
		log.Error("hot lead alert failed", map[string]interface{}{
			"error": apperrors.NewCollaboratorError(apperrors.ErrCodeAlertFailed, "alert", err).Error(),
		})
		return
	}
	if userID != 0 {
		if err := s.events.Insert(ctx, userID, store.EventHotLeadAlerted, map[string]interface{}{
			"score": score,
		}); err != nil {
			s.logStoreFailure(log, "lead_event", err)
		}
	}
}

// deliver sends the chunks through ManyChat. A failure is logged and the
// chunks are still returned to the caller.
func (s *Service) deliver(ctx context.Context, log logger.Logger, contactID string, chunks []string) {
	subscriberID, err := strconv.ParseInt(contactID, 10, 64)
	if err != nil {
		metrics.StageFailures.WithLabelValues("delivery").Inc()
		log.Error("contact id is not a subscriber id, skipping delivery", map[string]interface{}{
			"contact_id": contactID,
		})
		return
	}

	if err := s.deliverer.SendChunks(ctx, subscriberID, chunks); err != nil {
		metrics.StageFailures.WithLabelValues("delivery").Inc()
		log.Error("delivery failed, returning chunks anyway", map[string]interface{}{
			"error": apperrors.NewCollaboratorError(apperrors.ErrCodeDeliveryFailed, "delivery", err).Error(),
		})
	}
}

func (s *Service) logStoreFailure(log logger.Logger, stage string, err error) {
	metrics.StageFailures.WithLabelValues(stage).Inc()
	log.Warn("store write failed, continuing", map[string]interface{}{
		"stage": stage,
		"error": apperrors.NewCollaboratorError(apperrors.ErrCodeStoreWriteFailed, stage, err).Error(),
	})
}

func isGreeting(text string) bool {
	normalized := strings.ToLower(strings.TrimSpace(text))
	normalized = strings.TrimRight(normalized, ".!?")
	return greetings[strings.TrimSpace(normalized)]
}

func followUpDraft(displayName string, intent leadscore.Intent) string {
	name := strings.TrimSpace(displayName)
	greeting := "Hey"
	if name != "" {
		greeting = "Hey " + strings.Fields(name)[0]
	}

	switch intent {
	case leadscore.IntentInvestment:
		return greeting + ", circling back on the collective ownership details. Happy to walk you through how the parcels work."
	case leadscore.IntentStay:
		return greeting + ", just checking in about that stay. Want me to look at dates for you?"
	case leadscore.IntentExperience:
		return greeting + ", still keen on joining one of our experiences? I can share what's coming up."
	case leadscore.IntentPartnership:
		return greeting + ", following up on the collaboration idea. Shall I connect you with our team?"
	case leadscore.IntentCommunity:
		return greeting + ", wanted to follow up on your interest in the collectives. Any questions I can answer?"
	default:
		return greeting + ", just following up on your message. Anything I can help you with?"
	}
}

func metaVerified(metadata map[string]interface{}) bool {
	v, ok := metadata[MetaVerified]
	if !ok {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "true" || t == "1"
	default:
		return false
	}
}

func metaFollowers(metadata map[string]interface{}) int {
	v, ok := metadata[MetaFollowers]
	if !ok {
		return 0
	}
	switch t := v.(type) {
	case float64:
		return int(t)
	case int:
		return t
	case string:
		n, err := strconv.Atoi(t)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}
