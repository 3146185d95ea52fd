package services

import (
	"context"
	"fmt"
	"sort"

	"reading-progress-service/models"

	"gorm.io/gorm"
)

// LeagueProgressionView is a reader's standing in one league.
type LeagueProgressionView struct {
	UserID                   string `json:"user_id"`
	LeagueID                 uint   `json:"league_id"`
	BookID                   uint   `json:"book_id"`
	TotalPages               int    `json:"total_pages"`
	PagesReadInLeague        int    `json:"pages_read_in_league"`
	BooksCompletedInLeague   int    `json:"books_completed_in_league"`
	AchievementCountInLeague int64  `json:"achievement_count_in_league"`
	RankPosition             int    `json:"rank_position"`
}

// LeaderboardEntry is one row of the display leaderboard.
type LeaderboardEntry struct {
	Rank            int     `json:"rank"`
	UserID          string  `json:"user_id"`
	DisplayName     string  `json:"display_name"`
	PagesRead       int     `json:"pages_read"`
	TotalPages      int     `json:"total_pages"`
	ProgressPercent float64 `json:"progress_percent"`
}

// LeagueView derives league standings from per-book progress. It never writes.
type LeagueView struct {
	db     *gorm.DB
	ledger *AchievementLedger
}

func NewLeagueView(db *gorm.DB, ledger *AchievementLedger) *LeagueView {
	return &LeagueView{db: db, ledger: ledger}
}

func (v *LeagueView) leagueBook(tx *gorm.DB, leagueID uint) (*models.Book, error) {
	league, err := loadLeague(tx, leagueID, ErrNotFound)
	if err != nil {
		return nil, err
	}
	if league.CurrentBookID == nil {
		return nil, fmt.Errorf("%w: league %d has no designated book", ErrNotFound, leagueID)
	}
	var book models.Book
	if err := tx.First(&book, *league.CurrentBookID).Error; err != nil {
		return nil, classify("load league book", err)
	}
	return &book, nil
}

// Compute returns the stats of an active member. Members with equal pages
// share a rank position.
func (v *LeagueView) Compute(ctx context.Context, userID string, leagueID uint) (LeagueProgressionView, error) {
	tx := v.db.WithContext(ctx)
	book, err := v.leagueBook(tx, leagueID)
	if err != nil {
		return LeagueProgressionView{}, classify("league view", err)
	}
	if err := requireReader(tx, userID, ErrNotFound); err != nil {
		return LeagueProgressionView{}, classify("league view", err)
	}
	if err := requireActiveMember(tx, leagueID, userID); err != nil {
		return LeagueProgressionView{}, err
	}

	view := LeagueProgressionView{UserID: userID, LeagueID: leagueID, BookID: book.ID, TotalPages: book.TotalPages}

	var pages int64
	if err := tx.Model(&models.UserBook{}).
		Select("COALESCE(SUM(pages_read), 0)").
		Where("user_id = ? AND book_id = ?", userID, book.ID).
		Row().Scan(&pages); err != nil {
		return view, storageErr("league pages", err)
	}
	view.PagesReadInLeague = int(pages)
	if book.TotalPages > 0 && view.PagesReadInLeague >= book.TotalPages {
		view.BooksCompletedInLeague = 1
	}

	if view.AchievementCountInLeague, err = v.ledger.countForLeague(tx, userID, leagueID); err != nil {
		return view, err
	}

	var ahead int64
	if err := tx.Table("league_members AS lm").
		Joins("JOIN user_books AS ub ON ub.user_id = lm.user_id AND ub.book_id = ?", book.ID).
		Where("lm.league_id = ? AND lm.is_active = ? AND lm.user_id <> ?", leagueID, true, userID).
		Where("ub.pages_read > ?", view.PagesReadInLeague).
		Count(&ahead).Error; err != nil {
		return view, storageErr("league rank", err)
	}
	view.RankPosition = int(ahead) + 1

	return view, nil
}

// Leaderboard lists active members by completion percentage, then pages.
// Ranks are strictly sequential, so tied members get different ranks here
// while Compute gives them the same position.
func (v *LeagueView) Leaderboard(ctx context.Context, leagueID uint) ([]LeaderboardEntry, error) {
	tx := v.db.WithContext(ctx)
	book, err := v.leagueBook(tx, leagueID)
	if err != nil {
		return nil, classify("leaderboard", err)
	}

	var rows []struct {
		UserID      string
		DisplayName string
		Username    string
		PagesRead   int
	}
	if err := tx.Table("league_members AS lm").
		Select("lm.user_id, COALESCE(r.display_name, '') AS display_name, COALESCE(r.username, '') AS username, COALESCE(ub.pages_read, 0) AS pages_read").
		Joins("LEFT JOIN user_books AS ub ON ub.user_id = lm.user_id AND ub.book_id = ?", book.ID).
		Joins("LEFT JOIN readers AS r ON r.external_user_id = lm.user_id").
		Where("lm.league_id = ? AND lm.is_active = ?", leagueID, true).
		Scan(&rows).Error; err != nil {
		return nil, storageErr("leaderboard", err)
	}

	entries := make([]LeaderboardEntry, 0, len(rows))
	for _, r := range rows {
		name := r.DisplayName
		if name == "" {
			name = r.Username
		}
		if name == "" {
			name = r.UserID
		}
		pct := 0.0
		if book.TotalPages > 0 {
			pct = float64(r.PagesRead) / float64(book.TotalPages) * 100
			if pct > 100 {
				pct = 100
			}
		}
		entries = append(entries, LeaderboardEntry{
			UserID:          r.UserID,
			DisplayName:     name,
			PagesRead:       r.PagesRead,
			TotalPages:      book.TotalPages,
			ProgressPercent: pct,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].ProgressPercent != entries[j].ProgressPercent {
			return entries[i].ProgressPercent > entries[j].ProgressPercent
		}
		if entries[i].PagesRead != entries[j].PagesRead {
			return entries[i].PagesRead > entries[j].PagesRead
		}
		return entries[i].UserID < entries[j].UserID
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}
