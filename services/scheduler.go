// services/scheduler.go
package services

import (
	"fmt"
	"log"
	"time"

	"foerderkreis-service/models"

	"github.com/go-co-op/gocron/v2"
)

// StartOutreachScheduler runs the periodic outreach jobs. Each run only
// writes EmailOutreachLog rows; the mail service picks those up and does
// the actual delivery.
func (s *AdminService) StartOutreachScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	// 1st of each month, 06:00: monthly summary per active family
	_, _ = sched.NewJob(
		gocron.CronJob("0 6 1 * *", false),
		gocron.NewTask(func() {
			if err := s.RecordMonthlySummaries(time.Now()); err != nil {
				log.Printf("[Scheduler] monthly summary failed: %v", err)
			}
		}),
	)

	// Mondays 06:00 in the second half of the month: nudge families
	// under half their target
	_, _ = sched.NewJob(
		gocron.CronJob("0 6 * * 1", false),
		gocron.NewTask(func() {
			now := time.Now()
			if now.Day() < 15 {
				return
			}
			if err := s.RecordHourReminders(now); err != nil {
				log.Printf("[Scheduler] hour reminders failed: %v", err)
			}
		}),
	)
}

// RecordMonthlySummaries writes one monthly_summary outreach row per
// active family, covering the previous month.
func (s *AdminService) RecordMonthlySummaries(now time.Time) error {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	lastMonthStart := monthStart.AddDate(0, -1, 0)
	lastMonthName := lastMonthStart.Format("January 2006")

	var families []models.Family
	if err := s.DB.Where("is_active = true").Find(&families).Error; err != nil {
		return err
	}

	sent := 0
	for _, family := range families {
		hours := s.sumFamilyHours(family.ID, lastMonthStart) - s.sumFamilyHours(family.ID, monthStart)
		metadata := fmt.Sprintf(`{"hours": %.2f, "target": %.2f}`, hours, family.MonthlyHourTarget)
		entry := models.EmailOutreachLog{
			FamilyID:  family.ID,
			EmailType: "monthly_summary",
			Subject:   fmt.Sprintf("Dein Monatsrueckblick: %s", lastMonthName),
			Metadata:  &metadata,
		}
		if err := s.DB.Create(&entry).Error; err != nil {
			log.Printf("[Scheduler] summary log failed for family %s: %v", family.ID, err)
			continue
		}
		sent++
	}
	log.Printf("✅ Monthly summaries recorded for %d families", sent)
	return nil
}

// RecordHourReminders writes hours_reminder rows for families under 50%
// of their monthly target, at most once per family and month.
func (s *AdminService) RecordHourReminders(now time.Time) error {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var families []models.Family
	if err := s.DB.Where("is_active = true").Find(&families).Error; err != nil {
		return err
	}

	sent := 0
	for _, family := range families {
		if !s.familyBelowTarget(&family, monthStart, 0.5) {
			continue
		}

		var already int64
		s.DB.Model(&models.EmailOutreachLog{}).
			Where("family_id = ? AND email_type = ? AND sent_at >= ?",
				family.ID, "hours_reminder", monthStart).
			Count(&already)
		if already > 0 {
			continue
		}

		entry := models.EmailOutreachLog{
			FamilyID:  family.ID,
			EmailType: "hours_reminder",
			Subject:   "Erinnerung: Eure Foerderkreis-Stunden diesen Monat",
		}
		if err := s.DB.Create(&entry).Error; err != nil {
			log.Printf("[Scheduler] reminder log failed for family %s: %v", family.ID, err)
			continue
		}
		sent++
	}
	log.Printf("✅ Hour reminders recorded for %d families", sent)
	return nil
}
