// Package store persists loan decisions to PostgreSQL and mirrors them into
// Elasticsearch for reviewer search.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"time"

	"loan-approval/internal/common/errors"
	"loan-approval/internal/common/logger"
	"loan-approval/internal/models"

	"github.com/google/uuid"
)

const (
	insertDecisionQuery = `INSERT INTO loan_decisions (id, loan_id, applicant, verdict, label, artifact_digest, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	insertAuditQuery = `INSERT INTO audit_log (entity_type, entity_id, action, details) VALUES ($1, $2, $3, $4)`
	findDecisionQuery = `SELECT id, loan_id, applicant, verdict, label, artifact_digest, created_at
		FROM loan_decisions WHERE id = $1`
)

// SearchIndexer is satisfied by database.ElasticsearchClient.
type SearchIndexer interface {
	IndexDocument(ctx context.Context, index, id string, doc interface{}) error
}

// Receipt identifies a stored decision.
type Receipt struct {
	DecisionID string    `json:"decisionId"`
	RecordedAt time.Time `json:"recordedAt"`
}

type DecisionStore struct {
	db     *sql.DB
	search SearchIndexer
	index  string
	logger logger.Logger
	now    func() time.Time
}

// NewDecisionStore returns a store over db. search may be nil.
func NewDecisionStore(db *sql.DB, search SearchIndexer, index string, log logger.Logger) *DecisionStore {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &DecisionStore{
		db:     db,
		search: search,
		index:  index,
		logger: log.With(map[string]interface{}{"component": "decision-store"}),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Save inserts the decision and assigns its ID. The audit row and the search
// document are best effort; only the decision insert can fail the call.
func (s *DecisionStore) Save(ctx context.Context, d *models.Decision) (*Receipt, error) {
	applicant, err := json.Marshal(d.Applicant)
	if err != nil {
		return nil, errors.NewInputParsingFailedError(err)
	}

	id := uuid.New().String()
	recordedAt := s.now()

	if _, err := s.db.ExecContext(ctx, insertDecisionQuery,
		id, d.Applicant.LoanID, applicant, string(d.Verdict), d.Label, d.ArtifactDigest, recordedAt,
	); err != nil {
		return nil, errors.NewDatabaseInsertFailedError(err)
	}
	d.ID = id

	s.audit(ctx, d)
	s.indexDecision(ctx, d, recordedAt)

	s.logger.Info("Loan decision recorded", map[string]interface{}{
		"decisionId": id,
		"loanId":     d.Applicant.LoanID,
		"verdict":    d.Verdict,
	})
	return &Receipt{DecisionID: id, RecordedAt: recordedAt}, nil
}

// Find returns the stored decision or a DECISION_NOT_FOUND error.
func (s *DecisionStore) Find(ctx context.Context, id string) (*models.Decision, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errors.NewDecisionNotFoundError(id)
	}

	var (
		d         models.Decision
		loanID    int64
		applicant []byte
		verdict   string
	)
	err := s.db.QueryRowContext(ctx, findDecisionQuery, id).Scan(
		&d.ID, &loanID, &applicant, &verdict, &d.Label, &d.ArtifactDigest, &d.DecidedAt,
	)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewDecisionNotFoundError(id)
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("find_decision", err)
	}

	if err := json.Unmarshal(applicant, &d.Applicant); err != nil {
		return nil, errors.NewInputParsingFailedError(err)
	}
	d.Applicant.LoanID = loanID
	d.Verdict = models.Verdict(verdict)
	return &d, nil
}

func (s *DecisionStore) audit(ctx context.Context, d *models.Decision) {
	details, _ := json.Marshal(map[string]interface{}{
		"loanId":         d.Applicant.LoanID,
		"verdict":        d.Verdict,
		"artifactDigest": d.ArtifactDigest,
	})
	if _, err := s.db.ExecContext(ctx, insertAuditQuery, "loan_decision", d.ID, "decided", details); err != nil {
		s.logger.Warn("Failed to write audit log", map[string]interface{}{
			"decisionId": d.ID,
			"error":      err.Error(),
		})
	}
}

func (s *DecisionStore) indexDecision(ctx context.Context, d *models.Decision, recordedAt time.Time) {
	if s.search == nil || s.index == "" {
		return
	}
	doc := map[string]interface{}{
		"decisionId":     d.ID,
		"loanId":         d.Applicant.LoanID,
		"verdict":        d.Verdict,
		"label":          d.Label,
		"artifactDigest": d.ArtifactDigest,
		"applicant":      d.Applicant,
		"features":       d.Features,
		"recordedAt":     recordedAt,
	}
	if err := s.search.IndexDocument(ctx, s.index, d.ID, doc); err != nil {
		stdErr := errors.NewSearchIndexFailedError(s.index, err)
		s.logger.Warn("Failed to index loan decision", map[string]interface{}{
			"decisionId": d.ID,
			"errorCode":  stdErr.Code,
			"error":      err.Error(),
		})
	}
}
