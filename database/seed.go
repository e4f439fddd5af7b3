package database

import (
	"context"
	"fmt"
)

func int64ptr(v int64) *int64 { return &v }

// SeedDemoData loads a small set of jobs and conversations for a demo
// user so the board is not empty on first launch.
func SeedDemoData(ctx context.Context, store Store, userID string) error {
	jobs := []JobParams{
		{
			Company:         "Google",
			Position:        "Frontend Developer",
			SalaryMin:       int64ptr(120000),
			SalaryMax:       int64ptr(150000),
			TechStack:       []string{"React", "TypeScript"},
			WorkMode:        WorkModeRemote,
			ApplicationDate: "2023-05-10",
			Status:          StatusInterviewObtained,
		},
		{
			Company:         "Microsoft",
			Position:        "Full Stack Engineer",
			SalaryMin:       int64ptr(130000),
			SalaryMax:       int64ptr(160000),
			TechStack:       []string{"React", "Node", "Azure"},
			WorkMode:        WorkModeHybrid,
			ApplicationDate: "2023-05-08",
			Status:          StatusInProcess,
		},
		{
			Company:         "Amazon",
			Position:        "Software Development Engineer",
			SalaryMin:       int64ptr(140000),
			TechStack:       []string{"Java", "AWS"},
			WorkMode:        WorkModeOnSite,
			ApplicationDate: "2023-05-02",
			Status:          StatusAccepted,
		},
		{
			Company:         "Netflix",
			Position:        "Senior Frontend Engineer",
			TechStack:       []string{"React", "Node"},
			WorkMode:        WorkModeRemote,
			ApplicationDate: "2023-04-28",
			Status:          StatusRejected,
		},
	}
	for _, params := range jobs {
		if _, err := store.CreateJob(ctx, userID, params); err != nil {
			return fmt.Errorf("failed to seed job %s: %w", params.Company, err)
		}
	}

	conversations := []ConversationParams{
		{
			FullName:         "Sarah Johnson",
			Email:            "sarah.johnson@example.com",
			Channel:          ChannelEmail,
			Status:           ConversationResponded,
			Notes:            "Recruiter for the Frontend Developer role.",
			ConversationDate: "2023-05-14",
			ResponseDate:     "2023-05-16",
		},
		{
			FullName:         "David Chen",
			Phone:            "+1 555 0102",
			Channel:          ChannelLinkedIn,
			Status:           ConversationPending,
			Notes:            "Technical hiring manager, coding challenge due Friday.",
			ConversationDate: "2023-05-10",
		},
	}
	for _, params := range conversations {
		if _, err := store.CreateConversation(ctx, userID, params); err != nil {
			return fmt.Errorf("failed to seed conversation %s: %w", params.FullName, err)
		}
	}

	return nil
}
