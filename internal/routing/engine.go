package routing

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/veyra-io/docflowgo/internal/models"
)

// FinalApproverPolicy decides whether a forward target qualifies as a final
// authority even when they are not the planned final recipient. The default
// accepts administrators.
type FinalApproverPolicy func(user *models.UserAuth) bool

// DefaultFinalApproverPolicy accepts users with the admin role
func DefaultFinalApproverPolicy(user *models.UserAuth) bool {
	return user.IsAdmin()
}

// txAttempts bounds retries on transient database conflicts before the
// caller sees ErrConflict.
const txAttempts = 3

// Engine is the document routing state machine. Every mutation locks the
// document row, re-reads the ledger under that lock, applies the pure guard
// and aggregation functions, and writes - all inside one transaction. That
// per-document serialization is what keeps the single-active-holder invariant
// true under concurrent responders.
type Engine struct {
	db            *gorm.DB
	notifier      Notifier
	finalApprover FinalApproverPolicy
	forInfo       ForInfoPolicy
}

// Option configures an Engine
type Option func(*Engine)

// WithNotifier sets the event sink
func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithFinalApproverPolicy overrides the administrative-finality rule
func WithFinalApproverPolicy(p FinalApproverPolicy) Option {
	return func(e *Engine) { e.finalApprover = p }
}

// WithForInfoPolicy overrides the broadcast completion rule
func WithForInfoPolicy(p ForInfoPolicy) Option {
	return func(e *Engine) { e.forInfo = p }
}

// NewEngine creates a routing engine on top of a gorm connection
func NewEngine(db *gorm.DB, opts ...Option) *Engine {
	e := &Engine{
		db:            db,
		notifier:      NopNotifier{},
		finalApprover: DefaultFinalApproverPolicy,
		forInfo:       ForInfoAllAcknowledged,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// withDocument runs fn inside a transaction holding a row lock on the
// document. The ledger snapshot passed to fn is read under that lock, so
// guard checks and the writes they protect are atomic against other callers.
// Transient conflicts (deadlock, serialization) are retried a bounded number
// of times before surfacing as ErrConflict.
func (e *Engine) withDocument(docID string, fn func(tx *gorm.DB, doc *models.Document, ledger []models.DocumentRecipient) error) error {
	var lastErr error
	for attempt := 0; attempt < txAttempts; attempt++ {
		err := e.db.Transaction(func(tx *gorm.DB) error {
			var doc models.Document
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&doc, "document_id = ?", docID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrDocumentNotFound
				}
				return err
			}
			var ledger []models.DocumentRecipient
			if err := tx.Where("document_id = ?", docID).
				Order("sequence ASC").Find(&ledger).Error; err != nil {
				return err
			}
			return fn(tx, &doc, ledger)
		})
		if err == nil || !transientTxError(err) {
			return err
		}
		lastErr = err
		log.Printf("⚠️ Routing: transient conflict on document %s (attempt %d): %v", docID, attempt+1, err)
	}
	return fmt.Errorf("%w: %v", ErrConflict, lastErr)
}

// SQLSTATE codes Postgres raises for conflicts that resolve themselves on
// retry: 40001 serialization_failure, 40P01 deadlock_detected.
func transientTxError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}

// SendRequest carries the routing input supplied by the document owner
type SendRequest struct {
	RecipientIDs       []string `json:"recipient_ids"`
	InitialRecipientID string   `json:"initial_recipient_id"`
	ThroughUserIDs     []string `json:"through_user_ids"`
}

// Send resolves the routing plan for a draft (or returned) document and seeds
// the first ledger entries. Chain types get one active row for the initial
// recipient; for_info broadcasts get a parallel active row per recipient.
func (e *Engine) Send(docID, actorID string, req SendRequest) (*models.Document, error) {
	var result *models.Document
	var events []Event

	err := e.withDocument(docID, func(tx *gorm.DB, doc *models.Document, ledger []models.DocumentRecipient) error {
		events = nil // the transaction may retry
		if doc.OwnerID != actorID {
			return ErrNotOwner
		}
		if doc.Status != models.DocStatusDraft && doc.Status != models.DocStatusReturned {
			return ErrNotRoutable
		}
		if len(activeEntries(ledger)) > 0 {
			return ErrChainAlreadyActive
		}

		plan, err := BuildPlan(doc.Type, req.RecipientIDs, req.InitialRecipientID, req.ThroughUserIDs)
		if err != nil {
			return err
		}
		if err := e.checkUsersExist(tx, plan.UserIDs()); err != nil {
			return err
		}

		entries := plan.SeedEntries(doc.ID, maxSequence(ledger)+1)
		doc.RoutingRound++
		for i := range entries {
			entries[i].Round = doc.RoutingRound
		}
		if err := tx.Create(&entries).Error; err != nil {
			return err
		}

		planJSON, err := json.Marshal(plan.ThroughIDs)
		if err != nil {
			return err
		}
		doc.PlannedRoute = planJSON
		if final := plan.FinalRecipientID(); final != "" {
			doc.FinalRecipientID = &final
		} else {
			doc.FinalRecipientID = nil
		}
		now := time.Now().UTC()
		doc.SentAt = &now
		// pending the moment it leaves the owner's hands; the first response
		// hands status over to the aggregator
		doc.Status = models.DocStatusPending
		if err := tx.Save(doc).Error; err != nil {
			return err
		}

		for i := range entries {
			events = append(events, Event{
				Type:       models.EventHolderChanged,
				DocumentID: doc.ID,
				ActorID:    actorID,
				DocStatus:  doc.Status,
				Recipients: []string{entries[i].UserID},
			})
		}
		result = doc
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.emit(events)
	return result, nil
}

// checkUsersExist fails with ErrInvalidRecipient unless every id resolves to
// an active, non-deleted user.
func (e *Engine) checkUsersExist(tx *gorm.DB, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	var count int64
	if err := tx.Model(&models.UserAuth{}).
		Where("id IN ? AND is_active = true", ids).
		Count(&count).Error; err != nil {
		return err
	}
	if count != int64(len(ids)) {
		return ErrInvalidRecipient
	}
	return nil
}

// CurrentHolder returns the unique active ledger entry for a chain document,
// or nil when the document is terminal, paused, or a broadcast.
func (e *Engine) CurrentHolder(docID string) (*models.DocumentRecipient, error) {
	ledger, err := e.ledger(docID)
	if err != nil {
		return nil, err
	}
	return currentHolder(ledger), nil
}

// AssertCanAct returns the acting user's active ledger entry, or
// ErrNotAuthorizedHolder. This read-only form backs permission checks in the
// HTTP layer; mutations re-run the same scan under the document lock.
func (e *Engine) AssertCanAct(docID, userID string) (*models.DocumentRecipient, error) {
	ledger, err := e.ledger(docID)
	if err != nil {
		return nil, err
	}
	entry := activeEntryFor(ledger, userID)
	if entry == nil {
		return nil, ErrNotAuthorizedHolder
	}
	return entry, nil
}

// Chain loads the document plus its full ordered ledger for display
func (e *Engine) Chain(docID string) (*models.Document, error) {
	var doc models.Document
	err := e.db.
		Preload("Owner").
		Preload("Files").
		Preload("Recipients", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		}).
		Preload("Recipients.User").
		Preload("Recipients.ResponseFile").
		First(&doc, "document_id = ?", docID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// Cancel is the owner-driven terminal transition. It is idempotent: canceling
// a cancelled document succeeds without touching anything. Active ledger rows
// are deactivated (their status stays pending - nobody responded) so holder
// checks fail cleanly afterwards.
func (e *Engine) Cancel(docID, actorID string) (*models.Document, error) {
	var result *models.Document
	err := e.withDocument(docID, func(tx *gorm.DB, doc *models.Document, ledger []models.DocumentRecipient) error {
		if doc.OwnerID != actorID {
			return ErrNotOwner
		}
		if doc.Status == models.DocStatusCancelled {
			result = doc
			return nil
		}
		if doc.Status == models.DocStatusApproved || doc.Status == models.DocStatusRejected {
			return ErrNotRoutable
		}
		for _, i := range activeEntries(ledger) {
			ledger[i].IsActive = false
			if err := tx.Save(&ledger[i]).Error; err != nil {
				return err
			}
		}
		doc.Status = models.DocStatusCancelled
		if err := tx.Save(doc).Error; err != nil {
			return err
		}
		result = doc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SetPublic flips the owner-controlled public-visibility flag
func (e *Engine) SetPublic(docID, actorID string, public bool) (*models.Document, error) {
	var result *models.Document
	err := e.withDocument(docID, func(tx *gorm.DB, doc *models.Document, _ []models.DocumentRecipient) error {
		if doc.OwnerID != actorID {
			return ErrNotOwner
		}
		doc.IsPublic = public
		if err := tx.Save(doc).Error; err != nil {
			return err
		}
		result = doc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (e *Engine) ledger(docID string) ([]models.DocumentRecipient, error) {
	var count int64
	if err := e.db.Model(&models.Document{}).
		Where("document_id = ?", docID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrDocumentNotFound
	}
	var ledger []models.DocumentRecipient
	if err := e.db.Where("document_id = ?", docID).
		Order("sequence ASC").Find(&ledger).Error; err != nil {
		return nil, err
	}
	return ledger, nil
}
