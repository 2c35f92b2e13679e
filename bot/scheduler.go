package bot

import (
	"context"
	"log"
	"sync"
	"time"

	"mod-bot/model"
	"mod-bot/moderation"
	casedb "mod-bot/utils/database/cases"
)

// Scheduler runs the background expiry loop: tempbans are reversed and
// their cases closed once case_expires_at passes. Timeouts expire on
// Discord's side, so their cases are only closed.
type Scheduler struct {
	bot  *Bot
	done chan struct{}
	wg   sync.WaitGroup
}

// NewScheduler creates a scheduler bound to the bot.
func NewScheduler(bot *Bot) *Scheduler {
	return &Scheduler{
		bot:  bot,
		done: make(chan struct{}),
	}
}

// Start begins the expiry loop.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.runExpiryLoop()
}

// Stop terminates all scheduled tasks gracefully.
func (s *Scheduler) Stop() {
	log.Println("Stopping scheduler...")
	close(s.done)
	s.wg.Wait()
	log.Println("Scheduler stopped.")
}

func (s *Scheduler) runExpiryLoop() {
	defer s.wg.Done()

	interval := s.bot.GetConfig().CaseExpiryInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.processExpiredCases()
		}
	}
}

func (s *Scheduler) processExpiredCases() {
	expired, err := casedb.GetExpiredActiveCases(s.bot.DB, time.Now().UTC())
	if err != nil {
		log.Printf("Error getting expired cases: %v", err)
		return
	}

	for _, c := range expired {
		switch c.CaseType {
		case model.CaseTypeTempBan:
			s.expireTempBan(c)
		case model.CaseTypeTimeout:
			// Discord lifts the timeout itself; just close the case.
			if err := casedb.CloseCase(s.bot.DB, c.CaseID); err != nil {
				log.Printf("Error closing expired timeout case %d: %v", c.CaseID, err)
			}
		default:
			if err := casedb.CloseCase(s.bot.DB, c.CaseID); err != nil {
				log.Printf("Error closing expired case %d: %v", c.CaseID, err)
			}
		}
	}
}

// expireTempBan lifts the ban through the coordinator so the unban gets
// its own audit case; closing the tempban case rides on the UNBAN's
// reversal semantics.
func (s *Scheduler) expireTempBan(c model.Case) {
	session := s.bot.Session
	botID := s.bot.GetConfig().AppID

	out := s.bot.Coordinator.Execute(context.Background(), moderation.Request{
		GuildID:     c.GuildID,
		TargetID:    c.CaseUserID,
		ModeratorID: botID,
		Reason:      "Temporary ban expired",
		CaseType:    model.CaseTypeUnban,
		Actions: []moderation.Action{
			{
				Op: moderation.OpBanKick,
				Run: func() error {
					return session.GuildBanDelete(c.GuildID, c.CaseUserID)
				},
			},
		},
	})
	if out.Err != nil {
		log.Printf("Error lifting expired tempban (case %d, user %s): %v", c.CaseNumber, c.CaseUserID, out.Err)
		return
	}
	log.Printf("Expired tempban lifted for user %s in guild %s (case %d)", c.CaseUserID, c.GuildID, c.CaseNumber)
}
