// Package decision turns applicant records into verdicts on top of the
// inference pipeline, with a Redis verdict cache, metrics and tracing.
package decision

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"loan-approval/internal/common/errors"
	"loan-approval/internal/common/logger"
	"loan-approval/internal/common/metrics"
	"loan-approval/internal/common/observability"
	"loan-approval/internal/inference"
	"loan-approval/internal/models"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Origin labels where a decision was requested from.
type Origin string

const (
	OriginHTTP   Origin = "http"
	OriginWorker Origin = "worker"
	OriginCLI    Origin = "cli"
)

const (
	DefaultKeyPrefix = "loan:verdict"
	DefaultCacheTTL  = 24 * time.Hour
)

// Config wires the optional collaborators of a Service. Cache and
// Observability may be nil.
type Config struct {
	Cache         redis.Cmdable
	CacheTTL      time.Duration
	KeyPrefix     string
	Observability *observability.Observability
	Logger        logger.Logger
}

type Service struct {
	predictor *inference.Predictor
	cache     redis.Cmdable
	ttl       time.Duration
	prefix    string
	obs       *observability.Observability
	tracer    trace.Tracer
	logger    logger.Logger
}

func NewService(artifacts *inference.Artifacts, cfg Config) *Service {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultKeyPrefix
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNoOpLogger()
	}
	return &Service{
		predictor: inference.NewPredictor(artifacts),
		cache:     cfg.Cache,
		ttl:       cfg.CacheTTL,
		prefix:    cfg.KeyPrefix,
		obs:       cfg.Observability,
		tracer:    observability.Tracer("loan-approval/decision"),
		logger:    cfg.Logger.With(map[string]interface{}{"component": "decision"}),
	}
}

// Decide assembles the record, consults the verdict cache and otherwise
// classifies. Core errors are returned unwrapped so callers can match them
// with errors.As.
func (s *Service) Decide(ctx context.Context, record models.ApplicantRecord, origin Origin) (*models.Decision, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "loan.decide", trace.WithAttributes(
		attribute.Int64("loan.id", record.LoanID),
		attribute.String("loan.origin", string(origin)),
	))
	defer span.End()

	features, err := s.predictor.Assemble(record)
	if err != nil {
		return nil, s.fail(span, record, err)
	}

	key := s.cacheKey(features)
	label, cached := s.lookup(ctx, key)
	if !cached {
		var verdictErr error
		_, label, verdictErr = s.predictor.Classify(features)
		if verdictErr != nil {
			return nil, s.fail(span, record, verdictErr)
		}
		s.store(ctx, key, label)
	}

	verdict := inference.VerdictForLabel(label)
	decision := &models.Decision{
		Applicant:      record,
		Verdict:        verdict,
		Label:          label,
		Features:       features.Named(),
		ArtifactDigest: s.predictor.Artifacts().Digest,
		Cached:         cached,
		DecidedAt:      time.Now().UTC(),
	}

	span.SetAttributes(
		attribute.String("loan.verdict", string(verdict)),
		attribute.Bool("loan.cached", cached),
	)
	metrics.LoanDecisions.WithLabelValues(string(verdict), string(origin)).Inc()
	s.obs.RecordDecision(ctx, string(verdict), string(origin), cached, time.Since(start))

	s.logger.Info("Loan decision produced", map[string]interface{}{
		"loanId":  record.LoanID,
		"verdict": verdict,
		"label":   label,
		"cached":  cached,
		"origin":  origin,
	})
	return decision, nil
}

// Options is the collector contract: only these labels and bounds are accepted.
func (s *Service) Options() models.DecisionOptions {
	return s.predictor.Options()
}

func (s *Service) Artifacts() *inference.Artifacts {
	return s.predictor.Artifacts()
}

func (s *Service) fail(span trace.Span, record models.ApplicantRecord, err error) error {
	stdErr := errors.FromInference(err)
	metrics.LoanDecisionErrors.WithLabelValues(string(stdErr.Code)).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, string(stdErr.Code))

	fields := map[string]interface{}{
		"loanId":    record.LoanID,
		"errorCode": stdErr.Code,
		"error":     err.Error(),
	}
	if errors.IsCallerError(stdErr) {
		s.logger.Warn("Loan decision rejected input", fields)
	} else {
		s.logger.Error("Loan decision failed", fields)
	}
	return err
}

// cacheKey is <prefix>:<artifact digest>:<sha256 of the assembled vector>.
func (s *Service) cacheKey(v inference.FeatureVector) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.FormatFloat(x, 'g', -1, 64)
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, ",")))
	return fmt.Sprintf("%s:%s:%s", s.prefix, s.predictor.Artifacts().Digest, hex.EncodeToString(sum[:]))
}

func (s *Service) lookup(ctx context.Context, key string) (int, bool) {
	if s.cache == nil {
		return 0, false
	}
	raw, err := s.cache.Get(ctx, key).Result()
	switch {
	case stderrors.Is(err, redis.Nil):
		metrics.VerdictCacheLookups.WithLabelValues("miss").Inc()
		return 0, false
	case err != nil:
		metrics.VerdictCacheLookups.WithLabelValues("error").Inc()
		s.logger.Warn("Verdict cache unavailable, predicting", map[string]interface{}{"error": err.Error()})
		return 0, false
	}

	label, err := strconv.Atoi(raw)
	if err != nil {
		metrics.VerdictCacheLookups.WithLabelValues("error").Inc()
		s.logger.Warn("Discarding malformed cached verdict", map[string]interface{}{"key": key, "value": raw})
		return 0, false
	}
	metrics.VerdictCacheLookups.WithLabelValues("hit").Inc()
	return label, true
}

func (s *Service) store(ctx context.Context, key string, label int) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, strconv.Itoa(label), s.ttl).Err(); err != nil {
		s.logger.Warn("Failed to cache verdict", map[string]interface{}{"error": err.Error()})
	}
}
