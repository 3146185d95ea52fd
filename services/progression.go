package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"reading-progress-service/models"
	"reading-progress-service/utils"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ReadingEvent is one submission of pages read.
type ReadingEvent struct {
	UserID    string
	BookID    uint
	PagesRead int
	LeagueID  *uint
	// OccurredOn is the instant of reading; its calendar day is taken in the
	// reading timezone. Zero means now.
	OccurredOn time.Time
}

type ApplyResult struct {
	Snapshot        models.ProgressionState `json:"snapshot"`
	NewAchievements []models.Achievement   `json:"new_achievements"`
}

type ProgressionOptions struct {
	Location         *time.Location
	MaxPagesPerEvent int // 0 disables the cap
	Now              func() time.Time
	Books            BookTracker
}

// ProgressionService turns reading events into streaks, XP, levels and achievements.
type ProgressionService struct {
	DB       *gorm.DB
	Store    *ProgressionStore
	Ledger   *AchievementLedger
	Registry *AchievementRegistry
	Books    BookTracker
	Leagues  *LeagueView

	location *time.Location
	maxPages int
	now      func() time.Time
	locks    *userLocks
}

func NewProgressionService(db *gorm.DB, registry *AchievementRegistry, opts ProgressionOptions) *ProgressionService {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Books == nil {
		opts.Books = NewBookTracker()
	}
	ledger := NewAchievementLedger(db)
	return &ProgressionService{
		DB:       db,
		Store:    NewProgressionStore(db),
		Ledger:   ledger,
		Registry: registry,
		Books:    opts.Books,
		Leagues:  NewLeagueView(db, ledger),
		location: opts.Location,
		maxPages: opts.MaxPagesPerEvent,
		now:      opts.Now,
		locks:    &userLocks{},
	}
}

// Today is the current calendar day in the reading timezone.
func (s *ProgressionService) Today() time.Time {
	return utils.Day(s.now(), s.location)
}

// Location is the reading timezone.
func (s *ProgressionService) Location() *time.Location {
	return s.location
}

func (s *ProgressionService) validateEvent(ev ReadingEvent) (time.Time, error) {
	if strings.TrimSpace(ev.UserID) == "" {
		return time.Time{}, fmt.Errorf("%w: user id is required", ErrValidation)
	}
	if ev.BookID == 0 {
		return time.Time{}, fmt.Errorf("%w: book id is required", ErrValidation)
	}
	if ev.PagesRead <= 0 {
		return time.Time{}, fmt.Errorf("%w: pages read must be positive, got %d", ErrValidation, ev.PagesRead)
	}
	if s.maxPages > 0 && ev.PagesRead > s.maxPages {
		return time.Time{}, fmt.Errorf("%w: pages read %d exceeds the limit of %d", ErrValidation, ev.PagesRead, s.maxPages)
	}

	today := s.Today()
	if ev.OccurredOn.IsZero() {
		return today, nil
	}
	day := utils.Day(ev.OccurredOn, s.location)
	if day.After(today) {
		return time.Time{}, fmt.Errorf("%w: reading date %s is in the future", ErrValidation, day.Format(time.DateOnly))
	}
	return day, nil
}

// ApplyReadingEvent records the event and evaluates every milestone it can
// trigger. The whole event commits or rolls back as one transaction.
func (s *ProgressionService) ApplyReadingEvent(ctx context.Context, ev ReadingEvent) (*ApplyResult, error) {
	day, err := s.validateEvent(ev)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(ev.UserID)
	defer unlock()

	var result ApplyResult
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireReader(tx, ev.UserID, ErrValidation); err != nil {
			return err
		}
		if ev.LeagueID != nil {
			if _, err := loadLeague(tx, *ev.LeagueID, ErrValidation); err != nil {
				return err
			}
		}

		state, err := s.Store.getOrCreate(tx, ev.UserID, true)
		if err != nil {
			return err
		}
		progress, err := s.Books.RecordProgress(tx, ev, day)
		if err != nil {
			return err
		}

		state.TotalPagesRead += int64(ev.PagesRead)
		advanceStreak(state, day)
		state.XP += int64(ev.PagesRead)

		aw := s.newAwarder(tx, state)

		if m, ok := exactMilestone(StreakMilestones, state.CurrentStreak); ok {
			meta := datatypes.JSONMap{"streak": m.Threshold, "tier": StreakTier(m.Threshold)}
			if err := aw.award(m, nil, meta); err != nil {
				return err
			}
		}

		for _, m := range reachedMilestones(PageMilestones, state.TotalPagesRead) {
			if err := aw.award(m, nil, datatypes.JSONMap{"pages": m.Threshold}); err != nil {
				return err
			}
		}

		daily, err := s.Books.PagesReadOn(tx, ev.UserID, day)
		if err != nil {
			return err
		}
		for _, m := range reachedMilestones(DailyMilestones, daily) {
			if err := aw.award(m, nil, datatypes.JSONMap{"pages": daily}); err != nil {
				return err
			}
		}

		completed, err := s.Books.CompletedCount(tx, ev.UserID)
		if err != nil {
			return err
		}
		state.BooksCompleted = completed
		if progress.JustCompleted {
			if m, ok := exactMilestone(BookMilestones, completed); ok {
				meta := datatypes.JSONMap{"book_id": progress.BookID, "completed_count": completed}
				if err := aw.award(m, nil, meta); err != nil {
					return err
				}
			}
		}

		if err := aw.levelUp(); err != nil {
			return err
		}
		if err := s.Store.save(tx, state); err != nil {
			return err
		}

		result = ApplyResult{Snapshot: *state, NewAchievements: aw.minted}
		return nil
	})
	if err != nil {
		log.Printf("❌ [ENGINE] Reading event for %s rejected: %v", ev.UserID, err)
		return nil, classify("apply reading event", err)
	}

	log.Printf("📖 [ENGINE] %s +%d pages on book %d → streak=%d xp=%d lvl=%d (%d new achievements)",
		ev.UserID, ev.PagesRead, ev.BookID, result.Snapshot.CurrentStreak, result.Snapshot.XP,
		result.Snapshot.Level, len(result.NewAchievements))
	return &result, nil
}

// CheckLeagueAchievements awards the league participation and league page
// milestones for an active member.
func (s *ProgressionService) CheckLeagueAchievements(ctx context.Context, userID string, leagueID uint, pagesReadInLeague int64) ([]models.Achievement, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrValidation)
	}
	if pagesReadInLeague < 0 {
		return nil, fmt.Errorf("%w: pages read in league cannot be negative", ErrValidation)
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	var minted []models.Achievement
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireReader(tx, userID, ErrValidation); err != nil {
			return err
		}
		if _, err := loadLeague(tx, leagueID, ErrNotFound); err != nil {
			return err
		}
		if err := requireActiveMember(tx, leagueID, userID); err != nil {
			return err
		}

		state, err := s.Store.getOrCreate(tx, userID, true)
		if err != nil {
			return err
		}

		aw := s.newAwarder(tx, state)
		league := leagueID
		if err := aw.award(CommunityContributor, &league, datatypes.JSONMap{"league_id": leagueID}); err != nil {
			return err
		}
		for _, m := range reachedMilestones(LeaguePageMilestones, pagesReadInLeague) {
			meta := datatypes.JSONMap{"league_id": leagueID, "pages": m.Threshold}
			if err := aw.award(m, &league, meta); err != nil {
				return err
			}
		}
		if err := aw.levelUp(); err != nil {
			return err
		}
		if len(aw.minted) == 0 {
			return nil
		}
		if err := s.Store.save(tx, state); err != nil {
			return err
		}
		minted = aw.minted
		return nil
	})
	if err != nil {
		return nil, classify("check league achievements", err)
	}

	if len(minted) > 0 {
		log.Printf("🏆 [ENGINE] %s earned %d league achievement(s) in league %d", userID, len(minted), leagueID)
	}
	return minted, nil
}

// GetProgressionSnapshot is a read-only view of the reader's state.
func (s *ProgressionService) GetProgressionSnapshot(ctx context.Context, userID string) (models.ProgressionState, error) {
	if err := requireReader(s.DB.WithContext(ctx), userID, ErrNotFound); err != nil {
		return models.ProgressionState{}, classify("progression snapshot", err)
	}
	return s.Store.Snapshot(ctx, userID)
}

func (s *ProgressionService) GetLeagueProgressionView(ctx context.Context, userID string, leagueID uint) (LeagueProgressionView, error) {
	return s.Leagues.Compute(ctx, userID, leagueID)
}

// awarder mints achievements for one reader inside one transaction and
// credits their XP to state.
type awarder struct {
	svc    *ProgressionService
	tx     *gorm.DB
	state  *models.ProgressionState
	now    time.Time
	minted []models.Achievement
}

func (s *ProgressionService) newAwarder(tx *gorm.DB, state *models.ProgressionState) *awarder {
	return &awarder{svc: s, tx: tx, state: state, now: s.now().UTC()}
}

func (a *awarder) award(m Milestone, leagueID *uint, meta datatypes.JSONMap) error {
	held, err := a.svc.Ledger.exists(a.tx, a.state.UserID, m.Type)
	if err != nil || held {
		return err
	}

	resolved, err := a.svc.Registry.resolve(a.tx, m)
	if err != nil {
		return err
	}
	if meta == nil {
		meta = datatypes.JSONMap{}
	}
	meta["xp_reward"] = resolved.XPReward

	rec := models.Achievement{
		UserID:      a.state.UserID,
		Type:        resolved.Type,
		Title:       resolved.Title,
		Description: resolved.Description,
		XPReward:    resolved.XPReward,
		LeagueID:    leagueID,
		Metadata:    meta,
		EarnedAt:    a.now,
	}
	if err := a.svc.Ledger.create(a.tx, &rec); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return nil
		}
		return err
	}

	a.state.XP += resolved.XPReward
	a.state.TotalAchievements++
	a.minted = append(a.minted, rec)
	return nil
}

// levelUp re-derives the level and mints one level-up achievement when it
// rose. XP from that reward updates the level again without another award.
func (a *awarder) levelUp() error {
	previous := a.state.Level
	a.state.Level = models.LevelForXP(a.state.XP)
	if a.state.Level <= previous {
		return nil
	}
	reached := a.state.Level
	if err := a.award(LevelUpMilestone(reached), nil, datatypes.JSONMap{"level": reached}); err != nil {
		return err
	}
	a.state.Level = models.LevelForXP(a.state.XP)
	return nil
}

func requireReader(tx *gorm.DB, userID string, missingErr error) error {
	var reader models.Reader
	err := tx.Where("external_user_id = ?", userID).First(&reader).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: unknown reader %s", missingErr, userID)
	}
	if err != nil {
		return storageErr("load reader", err)
	}
	if reader.IsBanned {
		return fmt.Errorf("%w: reader %s is banned", ErrValidation, userID)
	}
	return nil
}

func loadLeague(tx *gorm.DB, leagueID uint, missingErr error) (*models.League, error) {
	var league models.League
	err := tx.First(&league, leagueID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: unknown league %d", missingErr, leagueID)
	}
	if err != nil {
		return nil, storageErr("load league", err)
	}
	return &league, nil
}

func requireActiveMember(tx *gorm.DB, leagueID uint, userID string) error {
	var count int64
	if err := tx.Model(&models.LeagueMember{}).
		Where("league_id = ? AND user_id = ? AND is_active = ?", leagueID, userID, true).
		Count(&count).Error; err != nil {
		return storageErr("check membership", err)
	}
	if count == 0 {
		return fmt.Errorf("%w: %s is not an active member of league %d", ErrValidation, userID, leagueID)
	}
	return nil
}
