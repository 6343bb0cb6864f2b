package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/bytedance/sonic"

	"github.com/wielerspel/peloton-api/internal/domain/activity"
	"github.com/wielerspel/peloton-api/internal/domain/calclog"
	"github.com/wielerspel/peloton-api/internal/domain/game"
	"github.com/wielerspel/peloton-api/internal/domain/participant"
	"github.com/wielerspel/peloton-api/internal/domain/result"
	"github.com/wielerspel/peloton-api/internal/domain/roster"
	"github.com/wielerspel/peloton-api/internal/domain/scoring"
	"github.com/wielerspel/peloton-api/internal/observability"
	"github.com/wielerspel/peloton-api/internal/platform/background"
	"github.com/wielerspel/peloton-api/internal/platform/id"
	"github.com/wielerspel/peloton-api/internal/platform/logging"
	"github.com/wielerspel/peloton-api/internal/platform/resilience"
)

const grandTourStages = 21

// RescrapePublisher triggers background rider-detail rescrapes after a
// calculation. Delivery is best effort.
type RescrapePublisher interface {
	PublishRiderRescrape(ctx context.Context, riderIDs []string) error
}

// AdminNotifier delivers failure notifications to operators. Best effort.
type AdminNotifier interface {
	NotifyFailure(ctx context.Context, subject, detail string) error
}

// CalculationRequest identifies one stage result to process.
type CalculationRequest struct {
	RaceSlug string
	Stage    result.Stage
	Year     int
	Actor    string
}

// FanOutResults summarizes one completed fan-out pass.
type FanOutResults struct {
	GamesProcessed      int      `json:"gamesProcessed"`
	ParticipantsUpdated int      `json:"participantsUpdated"`
	PointsAwarded       int      `json:"pointsAwarded"`
	Errors              []string `json:"errors"`
}

// CalculationOutcome is the pipeline's reply. When Skipped is set the
// request short-circuited on an idempotency guard and nothing was written.
type CalculationOutcome struct {
	Skipped    bool
	Idempotent bool
	Message    string
	Results    *FanOutResults
	Validation *ValidationReport
}

// CalculationService runs the points pipeline: validation gate, idempotency
// guards, per-game fan-out, ranking, season aggregation, and the differential
// game update.
type CalculationService struct {
	results      result.Repository
	games        game.Repository
	participants participant.Repository
	rosters      roster.Repository
	logs         calclog.Repository
	activities   activity.Repository
	season       *SeasonService
	marginal     *MarginalGainsService
	rescraper    RescrapePublisher
	notifier     AdminNotifier
	runner       *background.Runner
	idGen        id.Generator
	logger       *logging.Logger

	cooldown time.Duration
	devMode  bool
	now      func() time.Time
	sf       resilience.SingleFlight
}

type CalculationServiceDeps struct {
	Results      result.Repository
	Games        game.Repository
	Participants participant.Repository
	Rosters      roster.Repository
	Logs         calclog.Repository
	Activities   activity.Repository
	Season       *SeasonService
	Marginal     *MarginalGainsService
	Rescraper    RescrapePublisher
	Notifier     AdminNotifier
	Runner       *background.Runner
	IDGenerator  id.Generator
	Logger       *logging.Logger
	Cooldown     time.Duration
	DevMode      bool
	Now          func() time.Time
}

func NewCalculationService(deps CalculationServiceDeps) *CalculationService {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = logging.NewNop()
	}
	if deps.IDGenerator == nil {
		deps.IDGenerator = id.NewRandomGenerator()
	}
	if deps.Cooldown <= 0 {
		deps.Cooldown = 5 * time.Minute
	}
	return &CalculationService{
		results:      deps.Results,
		games:        deps.Games,
		participants: deps.Participants,
		rosters:      deps.Rosters,
		logs:         deps.Logs,
		activities:   deps.Activities,
		season:       deps.Season,
		marginal:     deps.Marginal,
		rescraper:    deps.Rescraper,
		notifier:     deps.Notifier,
		runner:       deps.Runner,
		idGen:        deps.IDGenerator,
		logger:       deps.Logger,
		cooldown:     deps.Cooldown,
		devMode:      deps.DevMode,
		now:          deps.Now,
	}
}

// ProcessStage runs the full pipeline for one (race, stage, year) trigger.
// Concurrent triggers for the same document key collapse onto one execution.
func (s *CalculationService) ProcessStage(ctx context.Context, req CalculationRequest) (*CalculationOutcome, error) {
	ctx, span := startUsecaseSpan(ctx, "CalculationService.ProcessStage")
	defer span.End()

	docKey := result.DocKey(req.RaceSlug, req.Year, req.Stage)
	value, err, shared := s.sf.Do(docKey, func() (any, error) {
		return s.processStage(ctx, req, docKey)
	})
	if shared {
		s.logger.DebugContext(ctx, "calculation request coalesced", "docKey", docKey)
	}
	outcome, _ := value.(*CalculationOutcome)
	if err != nil {
		if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrValidationFailed) {
			s.notifyFailureAsync(docKey, err)
		}
		return outcome, err
	}
	return outcome, nil
}

func (s *CalculationService) processStage(ctx context.Context, req CalculationRequest, docKey string) (*CalculationOutcome, error) {
	start := s.now()
	raceName := result.RaceName(req.RaceSlug)
	stageKey := req.Stage.String()

	doc, found, err := s.results.GetByKey(ctx, docKey)
	if err != nil {
		return nil, fmt.Errorf("load result document %s: %w", docKey, err)
	}
	if !found {
		return nil, fmt.Errorf("%w: no result document for %s", ErrNotFound, docKey)
	}

	report := ValidateResult(doc, req.Stage)
	if len(report.Warnings) > 0 {
		s.logger.WarnContext(ctx, "result validation warnings", "docKey", docKey, "warnings", len(report.Warnings))
	}
	if !report.Valid {
		s.persistFailedValidation(ctx, req, raceName, stageKey, doc, report, start)
		return &CalculationOutcome{Validation: &report}, fmt.Errorf("%w: %v", ErrValidationFailed, report.Errors)
	}

	// Guard order matters: the cooldown window is checked before the hash.
	if !s.devMode && doc.UpdatedWithin(s.cooldown, s.now()) {
		observability.CalculationSkipsTotal.WithLabelValues("cooldown").Inc()
		s.appendActivity(ctx, activity.ActionCalculationSkipped, req, map[string]any{
			"docKey": docKey,
			"reason": "cooldown",
		})
		return &CalculationOutcome{
			Skipped: true,
			Message: fmt.Sprintf("result %s was updated less than %s ago, skipping", docKey, s.cooldown),
		}, nil
	}

	inputHash, err := hashDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("fingerprint result document: %w", err)
	}
	if !s.devMode {
		prev, found, err := s.logs.FindSuccess(ctx, raceName, stageKey, req.Year, inputHash)
		if err != nil {
			return nil, fmt.Errorf("query calculation log: %w", err)
		}
		if found {
			observability.CalculationSkipsTotal.WithLabelValues("hash").Inc()
			s.appendActivity(ctx, activity.ActionCalculationSkipped, req, map[string]any{
				"docKey": docKey,
				"reason": "hash",
				"logID":  prev.ID,
			})
			return &CalculationOutcome{
				Skipped:    true,
				Idempotent: true,
				Message:    "identical input already processed",
				Results: &FanOutResults{
					GamesProcessed:      len(prev.GamesAffected),
					PointsAwarded:       prev.TotalPointsAwarded,
					ParticipantsUpdated: 0,
					Errors:              []string{},
				},
			}, nil
		}
	}

	results, gamesAffected := s.fanOut(ctx, doc, raceName, stageKey, req.Stage)

	// Season aggregation and the differential update are best effort: their
	// failure is logged, never fatal to the batch.
	if s.season != nil {
		if err := s.season.ApplyResult(ctx, doc, raceName, req.Stage, req.Year); err != nil {
			s.logger.WarnContext(ctx, "season aggregation failed", "error", err, "docKey", docKey)
		}
	}
	if s.marginal != nil {
		if err := s.marginal.Recalculate(ctx, req.Year); err != nil {
			s.logger.WarnContext(ctx, "differential game update failed", "error", err, "year", req.Year)
		}
	}

	status := calclog.StatusSuccess
	if len(results.Errors) > 0 {
		status = calclog.StatusPartial
	}
	entry := &calclog.Entry{
		ID:                 s.newID(),
		RaceName:           raceName,
		Stage:              stageKey,
		Year:               req.Year,
		InputHash:          inputHash,
		Status:             status,
		GamesAffected:      gamesAffected,
		TotalPointsAwarded: results.PointsAwarded,
		Validation: calclog.ValidationSummary{
			Valid:    true,
			Warnings: report.Warnings,
		},
		Errors:    results.Errors,
		Duration:  s.now().Sub(start),
		CreatedAt: s.now(),
	}
	if err := s.logs.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("append calculation log: %w", err)
	}

	s.appendActivity(ctx, activity.ActionCalculationTriggered, req, map[string]any{
		"docKey":         docKey,
		"status":         string(status),
		"gamesProcessed": results.GamesProcessed,
		"pointsAwarded":  results.PointsAwarded,
	})

	observability.CalculationsTotal.WithLabelValues(string(status)).Inc()
	observability.PointsAwardedTotal.Add(float64(results.PointsAwarded))
	observability.CalculationDuration.Observe(s.now().Sub(start).Seconds())

	s.publishRescrapeAsync(doc, raceName, req.Stage)

	msg := fmt.Sprintf("processed %s: %d games, %d participants, %d points",
		docKey, results.GamesProcessed, results.ParticipantsUpdated, results.PointsAwarded)
	return &CalculationOutcome{Message: msg, Results: results}, nil
}

// fanOut scores every eligible auction game. One game's failure is recorded
// and the batch moves on.
func (s *CalculationService) fanOut(ctx context.Context, doc *result.Document, raceName, stageKey string, stage result.Stage) (*FanOutResults, []string) {
	out := &FanOutResults{Errors: []string{}}
	var gamesAffected []string

	eligible, err := s.games.ListByTypeAndStatuses(ctx, game.TypeAuction, []game.Status{game.StatusActive, game.StatusBidding})
	if err != nil {
		out.Errors = append(out.Errors, fmt.Sprintf("list games: %v", err))
		return out, gamesAffected
	}

	for i := range eligible {
		g := &eligible[i]
		multipliers, counts := g.CountsRace(raceName)
		if !counts {
			continue
		}

		in := scoring.Input{
			RaceName:     raceName,
			Stage:        stage,
			TotalStages:  totalStages(g, raceName),
			Multipliers:  multipliers,
			DirectPoints: g.UsesDirectPoints(),
		}
		updated, points, err := s.processGame(ctx, g, doc, in, raceName, stageKey)
		if err != nil {
			s.logger.ErrorContext(ctx, "game processing failed", "error", err, "gameID", g.ID)
			out.Errors = append(out.Errors, fmt.Sprintf("game %s: %v", g.ID, err))
			continue
		}
		out.GamesProcessed++
		out.ParticipantsUpdated += updated
		out.PointsAwarded += points
		gamesAffected = append(gamesAffected, g.ID)
		observability.GamesProcessedTotal.Inc()
	}
	return out, gamesAffected
}

// processGame scores one game's participants sequentially and re-ranks them.
// A failing participant does not abort the others, but marks the game as
// errored.
func (s *CalculationService) processGame(ctx context.Context, g *game.Game, doc *result.Document, in scoring.Input, raceName, stageKey string) (int, int, error) {
	participants, err := s.participants.ListActiveByGame(ctx, g.ID)
	if err != nil {
		return 0, 0, fmt.Errorf("list participants: %w", err)
	}

	updated := 0
	pointsAwarded := 0
	var participantErrs []string

	for i := range participants {
		p := &participants[i]
		points, err := s.processParticipant(ctx, g, p, doc, in, raceName, stageKey)
		if err != nil {
			participantErrs = append(participantErrs, fmt.Sprintf("participant %s: %v", p.ID, err))
			continue
		}
		updated++
		pointsAwarded += points
	}

	ranks := competitionRanks(participants)
	for i := range participants {
		p := &participants[i]
		rank, ok := ranks[p.ID]
		if !ok || rank == p.Placing {
			continue
		}
		if err := s.participants.UpdatePlacing(ctx, p.ID, rank); err != nil {
			participantErrs = append(participantErrs, fmt.Sprintf("placing %s: %v", p.ID, err))
			continue
		}
		p.Placing = rank
	}

	if len(participantErrs) > 0 {
		return updated, pointsAwarded, fmt.Errorf("%d participant updates failed: %v", len(participantErrs), participantErrs)
	}
	return updated, pointsAwarded, nil
}

func (s *CalculationService) processParticipant(ctx context.Context, g *game.Game, p *participant.Participant, doc *result.Document, in scoring.Input, raceName, stageKey string) (int, error) {
	entries, err := s.rosters.ListActiveByParticipant(ctx, g.ID, p.UserID)
	if err != nil {
		return 0, fmt.Errorf("list roster: %w", err)
	}

	awarded := 0
	total := 0
	for i := range entries {
		e := &entries[i]
		breakdown := scoring.ScoreRider(doc, e.RiderID, in)
		if breakdown.Total > 0 {
			e.ApplyStage(raceName, raceName, stageKey, breakdown)
			if err := s.rosters.Save(ctx, e); err != nil {
				return 0, fmt.Errorf("save roster entry %s: %w", e.ID, err)
			}
			awarded += breakdown.Total
		}
		total += e.PointsScored
	}

	// Full recompute from the roster snapshot, never an increment.
	if err := s.participants.UpdateTotalPoints(ctx, p.ID, total); err != nil {
		return 0, fmt.Errorf("update participant total: %w", err)
	}
	p.TotalPoints = total
	return awarded, nil
}

func (s *CalculationService) persistFailedValidation(ctx context.Context, req CalculationRequest, raceName, stageKey string, doc *result.Document, report ValidationReport, start time.Time) {
	hash, err := hashDocument(doc)
	if err != nil {
		hash = ""
	}
	entry := &calclog.Entry{
		ID:        s.newID(),
		RaceName:  raceName,
		Stage:     stageKey,
		Year:      req.Year,
		InputHash: hash,
		Status:    calclog.StatusFailed,
		Validation: calclog.ValidationSummary{
			Valid:    false,
			Errors:   report.Errors,
			Warnings: report.Warnings,
		},
		Duration:  s.now().Sub(start),
		CreatedAt: s.now(),
	}
	if err := s.logs.Append(ctx, entry); err != nil {
		s.logger.ErrorContext(ctx, "persist failed-validation log entry", "error", err)
	}
	s.appendActivity(ctx, activity.ActionCalculationFailed, req, map[string]any{
		"raceName": raceName,
		"stage":    stageKey,
		"errors":   report.Errors,
	})
	observability.CalculationsTotal.WithLabelValues(string(calclog.StatusFailed)).Inc()
}

func (s *CalculationService) appendActivity(ctx context.Context, action string, req CalculationRequest, detail map[string]any) {
	if s.activities == nil {
		return
	}
	entry := &activity.Entry{
		ID:        s.newID(),
		Action:    action,
		Actor:     req.Actor,
		Detail:    detail,
		CreatedAt: s.now(),
	}
	if err := s.activities.Append(ctx, entry); err != nil {
		s.logger.WarnContext(ctx, "append activity log", "error", err, "action", action)
	}
}

// publishRescrapeAsync fires a background rider-detail rescrape for every
// rider that appeared in the result. Never awaited, failures only logged.
func (s *CalculationService) publishRescrapeAsync(doc *result.Document, raceName string, stage result.Stage) {
	if s.rescraper == nil || s.runner == nil {
		return
	}
	breakdowns := scoring.ScoreAllRiders(doc, scoring.Input{
		RaceName:     raceName,
		Stage:        stage,
		TotalStages:  grandTourStages,
		Multipliers:  scoring.DefaultMultipliers(),
		DirectPoints: true,
	})
	riderIDs := make([]string, 0, len(breakdowns))
	for riderID := range breakdowns {
		riderIDs = append(riderIDs, riderID)
	}
	if len(riderIDs) == 0 {
		return
	}
	sort.Strings(riderIDs)
	s.runner.Go("rider-rescrape", func(ctx context.Context) error {
		return s.rescraper.PublishRiderRescrape(ctx, riderIDs)
	})
}

func (s *CalculationService) notifyFailureAsync(docKey string, cause error) {
	if s.notifier == nil || s.runner == nil {
		return
	}
	detail := cause.Error()
	s.runner.Go("admin-notify", func(ctx context.Context) error {
		return s.notifier.NotifyFailure(ctx, "points calculation failed for "+docKey, detail)
	})
}

// RecentLogs lists the latest calculation attempts, newest first.
func (s *CalculationService) RecentLogs(ctx context.Context, limit int) ([]calclog.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "CalculationService.RecentLogs")
	defer span.End()

	if limit <= 0 || limit > 200 {
		limit = 50
	}
	entries, err := s.logs.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list calculation logs: %w", err)
	}
	return entries, nil
}

func (s *CalculationService) newID() string {
	generated, err := s.idGen.NewID()
	if err != nil {
		s.logger.Warn("generate id", "error", err)
		return fmt.Sprintf("fallback-%d", s.now().UnixNano())
	}
	return generated
}

func totalStages(g *game.Game, raceName string) int {
	if g.Config.TotalStages > 0 {
		return g.Config.TotalStages
	}
	if scoring.IsGrandTour(raceName) {
		return grandTourStages
	}
	return 0
}

// hashDocument fingerprints the normalized result content. The scrape
// timestamp is excluded so a rewrite with identical rider data hashes the
// same.
func hashDocument(doc *result.Document) (string, error) {
	content := struct {
		StageResults            result.RiderList `json:"stageResults"`
		GeneralClassification   result.RiderList `json:"generalClassification"`
		PointsClassification    result.RiderList `json:"pointsClassification"`
		MountainsClassification result.RiderList `json:"mountainsClassification"`
		YouthClassification     result.RiderList `json:"youthClassification"`
	}{
		StageResults:            doc.StageResults,
		GeneralClassification:   doc.GeneralClassification,
		PointsClassification:    doc.PointsClassification,
		MountainsClassification: doc.MountainsClassification,
		YouthClassification:     doc.YouthClassification,
	}
	raw, err := sonic.Marshal(content)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
