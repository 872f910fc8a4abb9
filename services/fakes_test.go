package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/Dosada05/silat-bracket/models"
	"github.com/Dosada05/silat-bracket/repositories"
)

// fakeStore backs the in-memory repository fakes the service tests run
// against. All fakes share one store so cross-repository flows (generate,
// approve, propagate) behave like a single database.
type fakeStore struct {
	mu sync.Mutex

	entries     map[int]*models.Entry
	rosters     map[int][]int
	brackets    map[int]*models.Bracket
	matches     map[int]*models.Match
	competitors map[int]*models.Competitor
	officials   map[int]*models.Official

	nextEntryID   int
	nextBracketID int
	nextMatchID   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		entries:     make(map[int]*models.Entry),
		rosters:     make(map[int][]int),
		brackets:    make(map[int]*models.Bracket),
		matches:     make(map[int]*models.Match),
		competitors: make(map[int]*models.Competitor),
		officials:   make(map[int]*models.Official),
	}
}

func (s *fakeStore) addEntry(format models.CompetitionFormat, name string) *models.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextEntryID++
	entry := &models.Entry{ID: s.nextEntryID, Format: format, Name: name, Gender: "male", CategoryID: 1}
	s.entries[entry.ID] = entry
	return entry
}

func (s *fakeStore) addCompetitor(name string) *models.Competitor {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := len(s.competitors) + 1
	c := &models.Competitor{ID: id, Name: name, Gender: models.GenderMale, ContingentID: 1, CategoryID: 1}
	s.competitors[id] = c
	return c
}

func (s *fakeStore) addOfficial(name string) *models.Official {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := len(s.officials) + 1
	o := &models.Official{ID: id, Name: name}
	s.officials[id] = o
	return o
}

func (s *fakeStore) register(entryID int, competitorIDs ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rosters[entryID] = append(s.rosters[entryID], competitorIDs...)
}

func copyMatch(m *models.Match) *models.Match {
	cp := *m
	return &cp
}

// fakeTxRunner serializes every transaction behind one mutex, which is what
// the serializable isolation level guarantees for the conflicting approvals.
type fakeTxRunner struct {
	mu sync.Mutex
	// failures are consumed one per RunInTx call before fn executes, for
	// injecting retryable conflicts.
	failures []error
}

func (r *fakeTxRunner) RunInTx(_ context.Context, _ *sql.TxOptions, fn func(exec repositories.SQLExecutor) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.failures) > 0 {
		err := r.failures[0]
		r.failures = r.failures[1:]
		return err
	}
	return fn(nil)
}

type fakeEntryRepo struct{ store *fakeStore }

func (r *fakeEntryRepo) Create(_ context.Context, entry *models.Entry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.nextEntryID++
	entry.ID = r.store.nextEntryID
	r.store.entries[entry.ID] = entry
	return nil
}

func (r *fakeEntryRepo) GetByID(_ context.Context, id int) (*models.Entry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	entry, ok := r.store.entries[id]
	if !ok {
		return nil, repositories.ErrEntryNotFound
	}
	cp := *entry
	return &cp, nil
}

func (r *fakeEntryRepo) List(_ context.Context, format *models.CompetitionFormat) ([]*models.Entry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*models.Entry, 0)
	for _, e := range r.store.entries {
		if format == nil || e.Format == *format {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeEntryRepo) Delete(_ context.Context, id int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.entries[id]; !ok {
		return repositories.ErrEntryNotFound
	}
	delete(r.store.entries, id)
	return nil
}

func (r *fakeEntryRepo) RegisterCompetitor(_ context.Context, entryID, competitorID int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.entries[entryID]; !ok {
		return repositories.ErrEntryNotFound
	}
	for _, id := range r.store.rosters[entryID] {
		if id == competitorID {
			return repositories.ErrRegistrationConflict
		}
	}
	r.store.rosters[entryID] = append(r.store.rosters[entryID], competitorID)
	return nil
}

func (r *fakeEntryRepo) UnregisterCompetitor(_ context.Context, entryID, competitorID int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	roster := r.store.rosters[entryID]
	for i, id := range roster {
		if id == competitorID {
			r.store.rosters[entryID] = append(roster[:i], roster[i+1:]...)
			return nil
		}
	}
	return repositories.ErrRegistrationNotFound
}

func (r *fakeEntryRepo) ListRoster(_ context.Context, entryID int) ([]*models.Competitor, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*models.Competitor, 0)
	for _, id := range r.store.rosters[entryID] {
		if c, ok := r.store.competitors[id]; ok {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeBracketRepo struct{ store *fakeStore }

func (r *fakeBracketRepo) Create(_ context.Context, _ repositories.SQLExecutor, bracket *models.Bracket) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, b := range r.store.brackets {
		if b.EntryID == bracket.EntryID {
			return repositories.ErrBracketEntryConflict
		}
	}
	r.store.nextBracketID++
	bracket.ID = r.store.nextBracketID
	cp := *bracket
	r.store.brackets[bracket.ID] = &cp
	return nil
}

func (r *fakeBracketRepo) GetByID(_ context.Context, id int) (*models.Bracket, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	b, ok := r.store.brackets[id]
	if !ok {
		return nil, repositories.ErrBracketNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBracketRepo) GetByIDTx(ctx context.Context, _ repositories.SQLExecutor, id int) (*models.Bracket, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeBracketRepo) GetByEntry(_ context.Context, _ repositories.SQLExecutor, entryID int) (*models.Bracket, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, b := range r.store.brackets {
		if b.EntryID == entryID {
			cp := *b
			return &cp, nil
		}
	}
	return nil, repositories.ErrBracketNotFound
}

func (r *fakeBracketRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.BracketStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	b, ok := r.store.brackets[id]
	if !ok {
		return repositories.ErrBracketNotFound
	}
	b.Status = status
	return nil
}

type fakeMatchRepo struct{ store *fakeStore }

func (r *fakeMatchRepo) Create(_ context.Context, _ repositories.SQLExecutor, match *models.Match) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.nextMatchID++
	match.ID = r.store.nextMatchID
	r.store.matches[match.ID] = copyMatch(match)
	return nil
}

func (r *fakeMatchRepo) GetByID(_ context.Context, id int) (*models.Match, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	m, ok := r.store.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return copyMatch(m), nil
}

func (r *fakeMatchRepo) GetByIDForUpdate(ctx context.Context, _ repositories.SQLExecutor, id int) (*models.Match, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeMatchRepo) ListByBracket(_ context.Context, bracketID int) ([]*models.Match, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*models.Match, 0)
	for _, m := range r.store.matches {
		if m.BracketID == bracketID {
			out = append(out, copyMatch(m))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Round != out[j].Round {
			return out[i].Round < out[j].Round
		}
		return out[i].OrderInRound < out[j].OrderInRound
	})
	return out, nil
}

func (r *fakeMatchRepo) UpdateSuccessors(_ context.Context, _ repositories.SQLExecutor, id int, nextRedID, nextBlueID *int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	m, ok := r.store.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.NextMatchRedID = nextRedID
	m.NextMatchBlueID = nextBlueID
	return nil
}

func (r *fakeMatchRepo) FillSlot(_ context.Context, _ repositories.SQLExecutor, id int, slot models.MatchSlot, competitorID int) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	m, ok := r.store.matches[id]
	if !ok {
		return false, repositories.ErrMatchNotFound
	}
	switch slot {
	case models.SlotRed:
		if m.RedCompetitorID != nil {
			return false, nil
		}
		m.RedCompetitorID = &competitorID
	case models.SlotBlue:
		if m.BlueCompetitorID != nil {
			return false, nil
		}
		m.BlueCompetitorID = &competitorID
	}
	return true, nil
}

func (r *fakeMatchRepo) UpdateApproval(_ context.Context, _ repositories.SQLExecutor, id int, sequence int, officialID *int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	m, ok := r.store.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	for _, other := range r.store.matches {
		if other.ID != id && other.Sequence != nil && *other.Sequence == sequence {
			return repositories.ErrMatchSequenceConflict
		}
	}
	m.IsApproved = true
	m.Status = models.MatchStatusApproved
	m.Sequence = &sequence
	if officialID != nil {
		m.OfficialID = officialID
	}
	return nil
}

func (r *fakeMatchRepo) UpdateResult(_ context.Context, _ repositories.SQLExecutor, match *models.Match) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	m, ok := r.store.matches[match.ID]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.ScoreRed = match.ScoreRed
	m.ScoreBlue = match.ScoreBlue
	m.WinnerID = match.WinnerID
	m.OfficialID = match.OfficialID
	m.Status = match.Status
	m.Notes = match.Notes
	return nil
}

func (r *fakeMatchRepo) DeleteByBracket(_ context.Context, _ repositories.SQLExecutor, bracketID int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for id, m := range r.store.matches {
		if m.BracketID == bracketID {
			delete(r.store.matches, id)
		}
	}
	return nil
}

func (r *fakeMatchRepo) NextSequence(_ context.Context, _ repositories.SQLExecutor) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	max := 0
	for _, m := range r.store.matches {
		if m.Sequence != nil && *m.Sequence > max {
			max = *m.Sequence
		}
	}
	return max + 1, nil
}

type fakeCompetitorRepo struct{ store *fakeStore }

func (r *fakeCompetitorRepo) Create(_ context.Context, competitor *models.Competitor) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	competitor.ID = len(r.store.competitors) + 1
	r.store.competitors[competitor.ID] = competitor
	return nil
}

func (r *fakeCompetitorRepo) GetByID(_ context.Context, id int) (*models.Competitor, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c, ok := r.store.competitors[id]
	if !ok {
		return nil, repositories.ErrCompetitorNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCompetitorRepo) List(_ context.Context, _ repositories.CompetitorFilter) ([]*models.Competitor, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*models.Competitor, 0, len(r.store.competitors))
	for _, c := range r.store.competitors {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeCompetitorRepo) ListByIDs(_ context.Context, ids []int) ([]*models.Competitor, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*models.Competitor, 0, len(ids))
	for _, id := range ids {
		if c, ok := r.store.competitors[id]; ok {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeCompetitorRepo) Update(_ context.Context, competitor *models.Competitor) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.competitors[competitor.ID]; !ok {
		return repositories.ErrCompetitorNotFound
	}
	r.store.competitors[competitor.ID] = competitor
	return nil
}

func (r *fakeCompetitorRepo) Delete(_ context.Context, id int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.competitors[id]; !ok {
		return repositories.ErrCompetitorNotFound
	}
	delete(r.store.competitors, id)
	return nil
}

type fakeOfficialRepo struct{ store *fakeStore }

func (r *fakeOfficialRepo) Create(_ context.Context, official *models.Official) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	official.ID = len(r.store.officials) + 1
	r.store.officials[official.ID] = official
	return nil
}

func (r *fakeOfficialRepo) GetByID(_ context.Context, id int) (*models.Official, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	o, ok := r.store.officials[id]
	if !ok {
		return nil, repositories.ErrOfficialNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOfficialRepo) List(_ context.Context) ([]*models.Official, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*models.Official, 0, len(r.store.officials))
	for _, o := range r.store.officials {
		cp := *o
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeOfficialRepo) Update(_ context.Context, official *models.Official) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.officials[official.ID]; !ok {
		return repositories.ErrOfficialNotFound
	}
	r.store.officials[official.ID] = official
	return nil
}

func (r *fakeOfficialRepo) Delete(_ context.Context, id int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.officials[id]; !ok {
		return repositories.ErrOfficialNotFound
	}
	delete(r.store.officials, id)
	return nil
}
