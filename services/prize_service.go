// services/prize_service.go
package services

import (
	"log"
	"sort"

	"pickem-pool-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WeeklyPrizeStanding accumulates one player's season-long weekly-win
// record. WinningPicksInWinWeeks only counts picks from weeks the player
// actually won a share of.
type WeeklyPrizeStanding struct {
	User                   models.User `json:"user"`
	TotalWins              float64     `json:"total_wins"`
	WinningPicksInWinWeeks int         `json:"winning_picks_in_win_weeks"`
	WinWeeks               []int       `json:"win_weeks"`
}

// WeeklyPrizeResult carries the resolved winner set plus the full ranking.
// Standings always includes every player with a result row, wins or not.
type WeeklyPrizeResult struct {
	Winners   []*WeeklyPrizeStanding `json:"winners"`
	Standings []*WeeklyPrizeStanding `json:"standings"`
}

type PrizeService struct {
	DB        *gorm.DB
	Standings *StandingsService
}

func NewPrizeService(db *gorm.DB, standings *StandingsService) *PrizeService {
	return &PrizeService{DB: db, Standings: standings}
}

// DetermineWeeklyPrizeWinner resolves the season-long "most weekly wins"
// competition over all completed weeks. Early-season no-data states return
// empty slices, never errors.
func (s *PrizeService) DetermineWeeklyPrizeWinner(season *models.Season) (*WeeklyPrizeResult, error) {
	empty := &WeeklyPrizeResult{
		Winners:   []*WeeklyPrizeStanding{},
		Standings: []*WeeklyPrizeStanding{},
	}

	var weeks []models.Week
	if err := s.DB.Where("season_id = ? AND is_completed = ?", season.ID, true).
		Order("week_number").Find(&weeks).Error; err != nil {
		return nil, err
	}
	if len(weeks) == 0 {
		return empty, nil
	}

	byUser := make(map[string]*WeeklyPrizeStanding)
	for _, w := range weeks {
		var rows []models.WeeklyResult
		if err := s.DB.Preload("User").Where("week_id = ?", w.ID).Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, r := range rows {
			st, ok := byUser[r.UserID]
			if !ok {
				st = &WeeklyPrizeStanding{User: r.User}
				byUser[r.UserID] = st
			}
			if r.WeeklyWinShare > 0 {
				st.TotalWins += r.WeeklyWinShare
				st.WinningPicksInWinWeeks += r.WinningPicks
				st.WinWeeks = append(st.WinWeeks, w.WeekNumber)
			}
		}
	}
	if len(byUser) == 0 {
		return empty, nil
	}

	standings := make([]*WeeklyPrizeStanding, 0, len(byUser))
	for _, st := range byUser {
		standings = append(standings, st)
	}
	sortWeeklyPrizeStandings(standings)

	highest := weeks[len(weeks)-1].WeekNumber
	return &WeeklyPrizeResult{
		Winners:   resolveWeeklyPrize(standings, highest),
		Standings: standings,
	}, nil
}

// sortWeeklyPrizeStandings ranks by total wins, then by winning picks inside
// winning weeks. The secondary key inside the sort also fixes the candidate
// group ordering resolveWeeklyPrize relies on.
func sortWeeklyPrizeStandings(standings []*WeeklyPrizeStanding) {
	sort.SliceStable(standings, func(i, j int) bool {
		if standings[i].TotalWins != standings[j].TotalWins {
			return standings[i].TotalWins > standings[j].TotalWins
		}
		return standings[i].WinningPicksInWinWeeks > standings[j].WinningPicksInWinWeeks
	})
}

// resolveWeeklyPrize applies the weekly-prize tiebreak cascade to sorted
// standings. Candidates are everyone tied on the single best
// (TotalWins, WinningPicksInWinWeeks) pair. Candidates who won exactly the
// same weeks split the prize; otherwise the latest week where some of them
// won and others did not decides it, with no deeper cascade inside the
// winning subgroup.
func resolveWeeklyPrize(standings []*WeeklyPrizeStanding, highestCompletedWeek int) []*WeeklyPrizeStanding {
	if len(standings) == 0 || standings[0].TotalWins <= 0 {
		return []*WeeklyPrizeStanding{}
	}
	best := standings[0]
	var candidates []*WeeklyPrizeStanding
	for _, st := range standings {
		if st.TotalWins == best.TotalWins && st.WinningPicksInWinWeeks == best.WinningPicksInWinWeeks {
			candidates = append(candidates, st)
		}
	}
	if len(candidates) == 1 {
		return candidates
	}
	if identicalWinWeeks(candidates) {
		return candidates
	}
	for wn := highestCompletedWeek; wn >= 1; wn-- {
		var won, missed []*WeeklyPrizeStanding
		for _, c := range candidates {
			if containsWeek(c.WinWeeks, wn) {
				won = append(won, c)
			} else {
				missed = append(missed, c)
			}
		}
		if len(won) > 0 && len(missed) > 0 {
			return won
		}
	}
	// Unreachable once the identical-sets check above has failed; returning
	// every candidate keeps the result well-formed regardless.
	return candidates
}

// identicalWinWeeks compares the candidates' win weeks as unordered sets.
func identicalWinWeeks(candidates []*WeeklyPrizeStanding) bool {
	ref := sortedWeeks(candidates[0].WinWeeks)
	for _, c := range candidates[1:] {
		weeks := sortedWeeks(c.WinWeeks)
		if len(weeks) != len(ref) {
			return false
		}
		for i := range ref {
			if weeks[i] != ref[i] {
				return false
			}
		}
	}
	return true
}

func sortedWeeks(weeks []int) []int {
	out := make([]int, len(weeks))
	copy(out, weeks)
	sort.Ints(out)
	return out
}

func containsWeek(weeks []int, wn int) bool {
	for _, w := range weeks {
		if w == wn {
			return true
		}
	}
	return false
}

// --- Prize pool ---

// PrizeWinner is one payout line: the winner's own entry-fee refund plus
// their share(s). A player who takes both prizes appears once, in the
// yearly list, flagged.
type PrizeWinner struct {
	UserID             string          `json:"user_id"`
	DisplayName        string          `json:"display_name"`
	PrizeAmount        decimal.Decimal `json:"prize_amount"`
	IsAlsoWeeklyWinner bool            `json:"is_also_weekly_winner,omitempty"`
}

// PrizeBreakdown is the season's cash split. RemainingAfterRefunds reserves
// one entry fee per prize category that has a winner (at most two slots);
// the remainder splits two thirds yearly, one third weekly.
type PrizeBreakdown struct {
	TotalPool             decimal.Decimal `json:"total_pool"`
	EntryFee              decimal.Decimal `json:"entry_fee"`
	NumEntries            int             `json:"num_entries"`
	RemainingAfterRefunds decimal.Decimal `json:"remaining_after_refunds"`
	YearlyTotal           decimal.Decimal `json:"yearly_total"`
	WeeklyTotal           decimal.Decimal `json:"weekly_total"`
	YearlyPerWinner       decimal.Decimal `json:"yearly_per_winner"`
	WeeklyPerWinner       decimal.Decimal `json:"weekly_per_winner"`
	TotalRefunds          decimal.Decimal `json:"total_refunds"`
	YearlyWinners         []PrizeWinner   `json:"yearly_winners"`
	WeeklyWinners         []PrizeWinner   `json:"weekly_winners"`
}

// CalculatePrizePool resolves both prize competitions and splits the pool.
func (s *PrizeService) CalculatePrizePool(season *models.Season) (*PrizeBreakdown, error) {
	var entries []models.SeasonEntry
	if err := s.DB.Where("season_id = ? AND has_paid = ?", season.ID, true).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	weekly, err := s.DetermineWeeklyPrizeWinner(season)
	if err != nil {
		return nil, err
	}
	yearly, err := s.Standings.GetYearlyWinners(season)
	if err != nil {
		return nil, err
	}
	return buildPrizeBreakdown(season.EntryFee, entries, yearly, weekly.Winners), nil
}

// buildPrizeBreakdown is the pure money split. Pool is the sum of amounts
// actually paid (entry fee when an entry has no explicit amount). One refund
// slot is reserved per category that produced a winner even when the same
// player holds both; TotalRefunds counts distinct winning users and is
// reporting only — it never feeds back into the remaining-pool arithmetic.
func buildPrizeBreakdown(entryFee float64, entries []models.SeasonEntry, yearlyWinners []*YearlyStanding, weeklyWinners []*WeeklyPrizeStanding) *PrizeBreakdown {
	b := &PrizeBreakdown{
		EntryFee:      decimal.NewFromFloat(entryFee),
		NumEntries:    len(entries),
		YearlyWinners: []PrizeWinner{},
		WeeklyWinners: []PrizeWinner{},
	}
	if len(entries) == 0 {
		return b
	}

	pool := decimal.Zero
	for _, e := range entries {
		if e.AmountPaid != nil {
			pool = pool.Add(decimal.NewFromFloat(*e.AmountPaid))
		} else {
			pool = pool.Add(b.EntryFee)
		}
	}
	b.TotalPool = pool

	slots := int64(0)
	if len(yearlyWinners) > 0 {
		slots++
	}
	if len(weeklyWinners) > 0 {
		slots++
	}
	remaining := pool.Sub(b.EntryFee.Mul(decimal.NewFromInt(slots)))
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	b.RemainingAfterRefunds = remaining

	b.YearlyTotal = remaining.Mul(decimal.NewFromInt(2)).Div(decimal.NewFromInt(3))
	b.WeeklyTotal = remaining.Div(decimal.NewFromInt(3))
	if n := len(yearlyWinners); n > 0 {
		b.YearlyPerWinner = b.YearlyTotal.Div(decimal.NewFromInt(int64(n)))
	}
	if n := len(weeklyWinners); n > 0 {
		b.WeeklyPerWinner = b.WeeklyTotal.Div(decimal.NewFromInt(int64(n)))
	}

	weeklyByUser := make(map[string]*WeeklyPrizeStanding, len(weeklyWinners))
	for _, w := range weeklyWinners {
		weeklyByUser[w.User.ID] = w
	}
	yearlyByUser := make(map[string]bool, len(yearlyWinners))

	distinct := make(map[string]bool)
	for _, yw := range yearlyWinners {
		yearlyByUser[yw.User.ID] = true
		distinct[yw.User.ID] = true
		amount := b.EntryFee.Add(b.YearlyPerWinner)
		_, alsoWeekly := weeklyByUser[yw.User.ID]
		if alsoWeekly {
			amount = amount.Add(b.WeeklyPerWinner)
		}
		b.YearlyWinners = append(b.YearlyWinners, PrizeWinner{
			UserID:             yw.User.ID,
			DisplayName:        yw.User.DisplayName,
			PrizeAmount:        amount,
			IsAlsoWeeklyWinner: alsoWeekly,
		})
	}
	for _, ww := range weeklyWinners {
		if yearlyByUser[ww.User.ID] {
			// Already paid out under the yearly breakdown.
			continue
		}
		distinct[ww.User.ID] = true
		b.WeeklyWinners = append(b.WeeklyWinners, PrizeWinner{
			UserID:      ww.User.ID,
			DisplayName: ww.User.DisplayName,
			PrizeAmount: b.EntryFee.Add(b.WeeklyPerWinner),
		})
	}
	b.TotalRefunds = b.EntryFee.Mul(decimal.NewFromInt(int64(len(distinct))))
	return b
}

// --- HTTP handlers ---

// GetWeeklyPrize returns the weekly-prize winners and full standings.
func (s *PrizeService) GetWeeklyPrize(c *fiber.Ctx) error {
	season, err := findSeason(s.DB, c.Params("id"))
	if err != nil {
		return seasonLookupError(c, err)
	}
	result, err := s.DetermineWeeklyPrizeWinner(season)
	if err != nil {
		log.Printf("DB Error resolving weekly prize for season %s: %v", season.ID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to resolve weekly prize"})
	}
	return c.JSON(result)
}

// GetPrizePool returns the season's cash breakdown.
func (s *PrizeService) GetPrizePool(c *fiber.Ctx) error {
	season, err := findSeason(s.DB, c.Params("id"))
	if err != nil {
		return seasonLookupError(c, err)
	}
	breakdown, err := s.CalculatePrizePool(season)
	if err != nil {
		log.Printf("DB Error calculating prize pool for season %s: %v", season.ID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to calculate prize pool"})
	}
	return c.JSON(breakdown)
}
