package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Dosada05/silat-bracket/brackets"
	"github.com/Dosada05/silat-bracket/models"
	"github.com/Dosada05/silat-bracket/repositories"
	"golang.org/x/sync/errgroup"
)

// BracketRound groups a bracket's matches by round for the detail view.
type BracketRound struct {
	Round   int             `json:"round"`
	Matches []*models.Match `json:"matches"`
}

type BracketDetail struct {
	Bracket      *models.Bracket `json:"bracket"`
	Rounds       []BracketRound  `json:"rounds"`
	TotalMatches int             `json:"total_matches"`
}

type BracketService interface {
	// Generate builds (or rebuilds) the single bracket of an entry from its
	// current roster in registration order. A non-nil format must match the
	// entry's own format.
	Generate(ctx context.Context, entryID int, format *models.CompetitionFormat) (*BracketDetail, error)
	Detail(ctx context.Context, bracketID int) (*BracketDetail, error)
	GetByEntry(ctx context.Context, entryID int) (*BracketDetail, error)
	UpdateStatus(ctx context.Context, bracketID int, status models.BracketStatus) (*models.Bracket, error)
}

type bracketService struct {
	txRunner       repositories.TxRunner
	entryRepo      repositories.EntryRepository
	bracketRepo    repositories.BracketRepository
	matchRepo      repositories.MatchRepository
	competitorRepo repositories.CompetitorRepository
	officialRepo   repositories.OfficialRepository
	generator      brackets.Generator
	hub            *brackets.Hub
	logger         *slog.Logger
}

func NewBracketService(
	txRunner repositories.TxRunner,
	entryRepo repositories.EntryRepository,
	bracketRepo repositories.BracketRepository,
	matchRepo repositories.MatchRepository,
	competitorRepo repositories.CompetitorRepository,
	officialRepo repositories.OfficialRepository,
	generator brackets.Generator,
	hub *brackets.Hub,
	logger *slog.Logger,
) BracketService {
	if logger == nil {
		logger = slog.Default()
	}
	return &bracketService{
		txRunner:       txRunner,
		entryRepo:      entryRepo,
		bracketRepo:    bracketRepo,
		matchRepo:      matchRepo,
		competitorRepo: competitorRepo,
		officialRepo:   officialRepo,
		generator:      generator,
		hub:            hub,
		logger:         logger,
	}
}

func (s *bracketService) Generate(ctx context.Context, entryID int, format *models.CompetitionFormat) (*BracketDetail, error) {
	entry, err := s.entryRepo.GetByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, repositories.ErrEntryNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	if format != nil {
		if !format.Valid() {
			return nil, fmt.Errorf("%w: unknown format %q", ErrValidationFailed, *format)
		}
		if *format != entry.Format {
			return nil, ErrEntryFormatMismatch
		}
	}

	roster, err := s.entryRepo.ListRoster(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster for entry %d: %w", entryID, err)
	}
	if len(roster) < 2 {
		return nil, ErrRosterTooSmall
	}

	seeds := make([]int, len(roster))
	for i, c := range roster {
		seeds[i] = c.ID
	}

	plan, err := s.generator.Plan(ctx, seeds)
	if err != nil {
		if errors.Is(err, brackets.ErrRosterTooSmall) {
			return nil, ErrRosterTooSmall
		}
		return nil, fmt.Errorf("failed to plan bracket for entry %d: %w", entryID, err)
	}

	var bracketID int
	err = s.txRunner.RunInTx(ctx, nil, func(exec repositories.SQLExecutor) error {
		bracket, getErr := s.bracketRepo.GetByEntry(ctx, exec, entryID)
		switch {
		case getErr == nil:
			// Regeneration replaces the whole tree and puts the bracket back
			// to pending.
			if delErr := s.matchRepo.DeleteByBracket(ctx, exec, bracket.ID); delErr != nil {
				return delErr
			}
			if stErr := s.bracketRepo.UpdateStatus(ctx, exec, bracket.ID, models.BracketStatusPending); stErr != nil {
				return stErr
			}
		case errors.Is(getErr, repositories.ErrBracketNotFound):
			bracket = &models.Bracket{
				EntryID: entryID,
				Format:  entry.Format,
				Name:    entry.Name,
				Status:  models.BracketStatusPending,
			}
			if crErr := s.bracketRepo.Create(ctx, exec, bracket); crErr != nil {
				return crErr
			}
		default:
			return getErr
		}
		bracketID = bracket.ID

		return s.persistPlan(ctx, exec, bracket.ID, plan)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("bracket generated",
		slog.Int("entry_id", entryID),
		slog.Int("bracket_id", bracketID),
		slog.Int("competitors", len(seeds)),
		slog.Int("rounds", plan.Shape.RoundCount),
		slog.String("generator", s.generator.Name()),
	)

	detail, err := s.Detail(ctx, bracketID)
	if err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.BroadcastToRoom(brackets.RoomForBracket(bracketID), brackets.Message{
			Type:    brackets.EventBracketGenerated,
			Payload: detail,
		})
	}
	return detail, nil
}

// persistPlan writes the planned tree in two passes: first every match row,
// then the successor links and the bye pre-propagation. Links cannot be set on
// insert because successors get their ids after their predecessors.
func (s *bracketService) persistPlan(ctx context.Context, exec repositories.SQLExecutor, bracketID int, plan *brackets.Plan) error {
	type coord struct{ round, order int }
	ids := make(map[coord]int, len(plan.Matches))

	for i := range plan.Matches {
		pm := plan.Matches[i]
		match := &models.Match{
			BracketID:        bracketID,
			Round:            pm.Round,
			OrderInRound:     pm.Order,
			RedCompetitorID:  pm.RedCompetitorID,
			BlueCompetitorID: pm.BlueCompetitorID,
			WinnerID:         pm.WinnerID,
			Status:           pm.Status,
			IsApproved:       pm.IsApproved,
		}
		if err := s.matchRepo.Create(ctx, exec, match); err != nil {
			return fmt.Errorf("failed to create match r%d/%d: %w", pm.Round, pm.Order, err)
		}
		ids[coord{pm.Round, pm.Order}] = match.ID
	}

	for _, pm := range plan.Matches {
		if pm.Round >= plan.Shape.RoundCount {
			continue
		}
		matchID, ok := ids[coord{pm.Round, pm.Order}]
		if !ok {
			return fmt.Errorf("%w: planned match r%d/%d was not persisted", ErrBracketCorrupted, pm.Round, pm.Order)
		}
		succID, ok := ids[coord{pm.Round + 1, brackets.SuccessorOrder(pm.Order)}]
		if !ok {
			return fmt.Errorf("%w: successor of r%d/%d is missing", ErrBracketCorrupted, pm.Round, pm.Order)
		}

		var nextRed, nextBlue *int
		slot := pm.SuccessorSlot()
		if slot == models.SlotRed {
			nextRed = &succID
		} else {
			nextBlue = &succID
		}
		if err := s.matchRepo.UpdateSuccessors(ctx, exec, matchID, nextRed, nextBlue); err != nil {
			return err
		}

		if pm.IsBye() && pm.WinnerID != nil {
			if _, err := s.matchRepo.FillSlot(ctx, exec, succID, slot, *pm.WinnerID); err != nil {
				return fmt.Errorf("failed to propagate bye winner from r%d/%d: %w", pm.Round, pm.Order, err)
			}
		}
	}
	return nil
}

func (s *bracketService) Detail(ctx context.Context, bracketID int) (*BracketDetail, error) {
	var (
		bracket *models.Bracket
		matches []*models.Match
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b, err := s.bracketRepo.GetByID(gCtx, bracketID)
		if err != nil {
			if errors.Is(err, repositories.ErrBracketNotFound) {
				return ErrBracketNotFound
			}
			return err
		}
		bracket = b
		return nil
	})
	g.Go(func() error {
		m, err := s.matchRepo.ListByBracket(gCtx, bracketID)
		if err != nil {
			return fmt.Errorf("failed to list matches for bracket %d: %w", bracketID, err)
		}
		matches = m
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := s.attachParticipants(ctx, matches); err != nil {
		return nil, err
	}

	return &BracketDetail{
		Bracket:      bracket,
		Rounds:       groupByRound(matches),
		TotalMatches: len(matches),
	}, nil
}

func (s *bracketService) GetByEntry(ctx context.Context, entryID int) (*BracketDetail, error) {
	var bracketID int
	err := s.txRunner.RunInTx(ctx, nil, func(exec repositories.SQLExecutor) error {
		bracket, err := s.bracketRepo.GetByEntry(ctx, exec, entryID)
		if err != nil {
			if errors.Is(err, repositories.ErrBracketNotFound) {
				return ErrBracketNotFound
			}
			return err
		}
		bracketID = bracket.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Detail(ctx, bracketID)
}

func (s *bracketService) UpdateStatus(ctx context.Context, bracketID int, status models.BracketStatus) (*models.Bracket, error) {
	if !status.Valid() {
		return nil, ErrInvalidBracketStatus
	}

	err := s.txRunner.RunInTx(ctx, nil, func(exec repositories.SQLExecutor) error {
		if err := s.bracketRepo.UpdateStatus(ctx, exec, bracketID, status); err != nil {
			if errors.Is(err, repositories.ErrBracketNotFound) {
				return ErrBracketNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	bracket, err := s.bracketRepo.GetByID(ctx, bracketID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("bracket status changed",
		slog.Int("bracket_id", bracketID),
		slog.String("status", string(status)),
	)
	if s.hub != nil {
		s.hub.BroadcastToRoom(brackets.RoomForBracket(bracketID), brackets.Message{
			Type:    brackets.EventBracketStatus,
			Payload: bracket,
		})
	}
	return bracket, nil
}

// attachParticipants resolves the competitor and official references of the
// given matches into their nested display structs.
func (s *bracketService) attachParticipants(ctx context.Context, matches []*models.Match) error {
	competitorIDs := make(map[int]struct{})
	officialIDs := make(map[int]struct{})
	for _, m := range matches {
		for _, id := range []*int{m.RedCompetitorID, m.BlueCompetitorID, m.WinnerID} {
			if id != nil {
				competitorIDs[*id] = struct{}{}
			}
		}
		if m.OfficialID != nil {
			officialIDs[*m.OfficialID] = struct{}{}
		}
	}

	ids := make([]int, 0, len(competitorIDs))
	for id := range competitorIDs {
		ids = append(ids, id)
	}

	competitorsByID := make(map[int]*models.Competitor, len(ids))
	officialsByID := make(map[int]*models.Official, len(officialIDs))

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		competitors, err := s.competitorRepo.ListByIDs(gCtx, ids)
		if err != nil {
			return fmt.Errorf("failed to load match competitors: %w", err)
		}
		for _, c := range competitors {
			competitorsByID[c.ID] = c
		}
		return nil
	})
	g.Go(func() error {
		for id := range officialIDs {
			official, err := s.officialRepo.GetByID(gCtx, id)
			if err != nil {
				if errors.Is(err, repositories.ErrOfficialNotFound) {
					continue
				}
				return err
			}
			officialsByID[id] = official
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	for _, m := range matches {
		if m.RedCompetitorID != nil {
			m.RedCompetitor = competitorsByID[*m.RedCompetitorID]
		}
		if m.BlueCompetitorID != nil {
			m.BlueCompetitor = competitorsByID[*m.BlueCompetitorID]
		}
		if m.WinnerID != nil {
			m.Winner = competitorsByID[*m.WinnerID]
		}
		if m.OfficialID != nil {
			m.Official = officialsByID[*m.OfficialID]
		}
	}
	return nil
}

func groupByRound(matches []*models.Match) []BracketRound {
	byRound := make(map[int][]*models.Match)
	for _, m := range matches {
		byRound[m.Round] = append(byRound[m.Round], m)
	}

	rounds := make([]BracketRound, 0, len(byRound))
	for r, ms := range byRound {
		sort.Slice(ms, func(i, j int) bool { return ms[i].OrderInRound < ms[j].OrderInRound })
		rounds = append(rounds, BracketRound{Round: r, Matches: ms})
	}
	sort.Slice(rounds, func(i, j int) bool { return rounds[i].Round < rounds[j].Round })
	return rounds
}
