package jobs

import "github.com/fedtech/jobtracker/constants"

// SeedJobs is the sample collection written on first start.
func SeedJobs() []Job {
	return []Job{
		{
			ID:          "1",
			Title:       "Senior Frontend Developer",
			Company:     "TechCorp",
			Location:    "Jakarta, Indonesia",
			Salary:      "$80,000 - $120,000",
			Status:      constants.StatusInterview,
			DateApplied: "2026-02-05",
			Notes:       "Second round interview scheduled",
		},
		{
			ID:          "2",
			Title:       "Full Stack Engineer",
			Company:     "StartupXYZ",
			Location:    "Remote",
			Salary:      "$70,000 - $100,000",
			Status:      constants.StatusApplied,
			DateApplied: "2026-02-07",
			Notes:       "Applied through LinkedIn",
		},
		{
			ID:          "3",
			Title:       "React Developer",
			Company:     "DigitalAgency",
			Location:    "Bandung, Indonesia",
			Salary:      "$60,000 - $90,000",
			Status:      constants.StatusOffer,
			DateApplied: "2026-01-28",
			Notes:       "Received offer letter!",
		},
	}
}
