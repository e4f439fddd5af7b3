package database

import (
	"time"

	"github.com/dustin/go-humanize"
)

// Status is the presentation form of a job application's board status.
// The store keeps the lowercase/underscore form; EncodeStatus and
// DecodeStatus convert losslessly between the two.
type Status string

const (
	StatusInterviewObtained Status = "interview-obtained"
	StatusInProcess         Status = "in-process"
	StatusAccepted          Status = "accepted"
	StatusRejected          Status = "rejected"
)

// AllStatuses is the fixed board column order.
var AllStatuses = []Status{
	StatusInterviewObtained,
	StatusInProcess,
	StatusAccepted,
	StatusRejected,
}

// ColumnTitles maps each status to its board column title.
var ColumnTitles = map[Status]string{
	StatusInterviewObtained: "Interview Obtained",
	StatusInProcess:         "In Process",
	StatusAccepted:          "Accepted",
	StatusRejected:          "Rejected",
}

// ValidStatus reports whether s is one of the four board statuses.
func ValidStatus(s Status) bool {
	for _, v := range AllStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// WorkMode is the presentation form of the work arrangement.
type WorkMode string

const (
	WorkModeRemote WorkMode = "Remote"
	WorkModeHybrid WorkMode = "Hybrid"
	WorkModeOnSite WorkMode = "On-site"
)

// Job is one job application as presented to clients. Salary is a derived
// display string; the numeric bounds live only in the store.
type Job struct {
	ID              string   `json:"id"`
	Company         string   `json:"company"`
	Position        string   `json:"position"`
	Salary          string   `json:"salary"`
	TechStack       []string `json:"techStack"`
	WorkMode        WorkMode `json:"workMode"`
	ApplicationDate string   `json:"applicationDate"`
	Status          Status   `json:"status"`
	Notes           string   `json:"notes,omitempty"`
}

// JobParams carries user-supplied fields for creating a job.
type JobParams struct {
	Company         string   `json:"company"`
	Position        string   `json:"position"`
	SalaryMin       *int64   `json:"salaryMin"`
	SalaryMax       *int64   `json:"salaryMax"`
	TechStack       []string `json:"techStack"`
	WorkMode        WorkMode `json:"workMode"`
	ApplicationDate string   `json:"applicationDate"`
	Status          Status   `json:"status"`
	Notes           string   `json:"notes"`
}

// JobUpdate is a partial update; nil fields are left untouched.
type JobUpdate struct {
	Position  *string   `json:"position"`
	SalaryMin *int64    `json:"salaryMin"`
	SalaryMax *int64    `json:"salaryMax"`
	TechStack *[]string `json:"techStack"`
	WorkMode  *WorkMode `json:"workMode"`
	Notes     *string   `json:"notes"`
}

// ConversationStatus tracks where a recruiter thread stands.
type ConversationStatus string

const (
	ConversationPending   ConversationStatus = "pending"
	ConversationResponded ConversationStatus = "responded"
	ConversationClosed    ConversationStatus = "closed"
	ConversationFollowUp  ConversationStatus = "follow_up"
)

// Channel is the medium a conversation happens over.
type Channel string

const (
	ChannelWhatsApp Channel = "whatsapp"
	ChannelEmail    Channel = "email"
	ChannelLinkedIn Channel = "linkedin"
	ChannelPhone    Channel = "phone"
	ChannelOther    Channel = "other"
)

// Conversation is a messaging thread with one contact. LinkedJobs holds
// weak references by job id; deleting a job does not clean them up.
type Conversation struct {
	ID               string             `json:"id"`
	FullName         string             `json:"fullName"`
	Phone            string             `json:"phone,omitempty"`
	Email            string             `json:"email,omitempty"`
	Channel          Channel            `json:"channel"`
	Status           ConversationStatus `json:"status"`
	Notes            string             `json:"notes,omitempty"`
	ConversationDate string             `json:"conversationDate"`
	ResponseDate     string             `json:"responseDate,omitempty"`
	LinkedJobs       []string           `json:"linkedJobs"`
}

// Message is one entry in a conversation thread.
type Message struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}

// ConversationParams carries user-supplied fields for creating a thread.
type ConversationParams struct {
	FullName         string             `json:"fullName"`
	Phone            string             `json:"phone"`
	Email            string             `json:"email"`
	Channel          Channel            `json:"channel"`
	Status           ConversationStatus `json:"status"`
	Notes            string             `json:"notes"`
	ConversationDate string             `json:"conversationDate"`
	ResponseDate     string             `json:"responseDate"`
}

// SalaryNotSpecified is the display string when no bounds were given.
const SalaryNotSpecified = "Salary not specified"

// FormatSalary derives the display string from the stored bounds. The
// derivation is display-only and never parsed back.
func FormatSalary(min, max *int64) string {
	switch {
	case min != nil && max != nil:
		return "$" + humanize.Comma(*min) + " - $" + humanize.Comma(*max)
	case min != nil:
		return "$" + humanize.Comma(*min) + "+"
	default:
		return SalaryNotSpecified
	}
}

// EncodeStatus converts a presented status to its stored form.
func EncodeStatus(s Status) string {
	switch s {
	case StatusInterviewObtained:
		return "interview_obtained"
	case StatusInProcess:
		return "in_process"
	case StatusAccepted:
		return "accepted"
	case StatusRejected:
		return "rejected"
	}
	return string(s)
}

// DecodeStatus converts a stored status back to its presented form.
func DecodeStatus(s string) Status {
	switch s {
	case "interview_obtained":
		return StatusInterviewObtained
	case "in_process":
		return StatusInProcess
	case "accepted":
		return StatusAccepted
	case "rejected":
		return StatusRejected
	}
	return Status(s)
}

// EncodeWorkMode converts a presented work mode to its stored form.
func EncodeWorkMode(m WorkMode) string {
	switch m {
	case WorkModeRemote:
		return "remote"
	case WorkModeHybrid:
		return "hybrid"
	case WorkModeOnSite:
		return "onsite"
	}
	return "remote"
}

// DecodeWorkMode converts a stored work mode back to its presented form.
func DecodeWorkMode(m string) WorkMode {
	switch m {
	case "remote":
		return WorkModeRemote
	case "hybrid":
		return WorkModeHybrid
	case "onsite":
		return WorkModeOnSite
	}
	return WorkModeRemote
}
