package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jobdeck/jobdeck/database"
)

// Intent classifies a free-text chat message.
type Intent string

const (
	IntentCreateJob    Intent = "create_job"
	IntentUpdateStatus Intent = "update_status"
	IntentQuery        Intent = "query"
	IntentAddNote      Intent = "add_note"
	IntentUnknown      Intent = "unknown"
)

// ChatEntities holds whatever the rule extractors pulled out of the text.
type ChatEntities struct {
	Company   string   `json:"company,omitempty"`
	Salary    string   `json:"salary,omitempty"`
	TechStack []string `json:"tech_stack,omitempty"`
	WorkMode  string   `json:"work_mode,omitempty"`
	Status    string   `json:"status,omitempty"`
	Note      string   `json:"note,omitempty"`
}

// ChatPayload is the structured, advisory payload attached to a response.
// No caller applies it automatically.
type ChatPayload struct {
	Intent   Intent       `json:"intent"`
	Entities ChatEntities `json:"entities"`
}

// ChatResponse is what the chat surface renders.
type ChatResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Data    *ChatPayload `json:"data,omitempty"`
}

const unknownCompany = "Unknown Company"

var (
	companyPattern  = regexp.MustCompile(`(?i)add\s+(\w+)`)
	salaryPattern   = regexp.MustCompile(`(?i)\$[\d,]+k?`)
	techPattern     = regexp.MustCompile(`(?i)(react|node|typescript|javascript|python|java|go|rust|vue|angular|\.net|c#)`)
	workModePattern = regexp.MustCompile(`(?i)(remote|hybrid|on-site|onsite)`)
	movePattern     = regexp.MustCompile(`(?i)move\s+(\w+)\s+to\s+(accepted|rejected|in\s+process|interview\s+obtained)`)
	queryPattern    = regexp.MustCompile(`(?i)over\s+\$?([\d,]+)k?`)
	notePattern     = regexp.MustCompile(`(?i)add\s+note\s+to\s+(\w+):\s*(.+)`)
	spacesPattern   = regexp.MustCompile(`\s+`)
)

// chatRule pairs a trigger predicate with its extractor/responder.
type chatRule struct {
	match  func(lower string) bool
	handle func(message string, counts map[database.Status]int) ChatResponse
}

// Interpreter maps free text to an intent with an ordered rule table.
// Rules are tried top to bottom and the first match wins; that ordering
// is a contract, not an accident. The interpreter never mutates state and
// never errors: unparseable input yields a clarification or help reply.
type Interpreter struct{}

func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

var chatRules = []chatRule{
	{
		match: func(lower string) bool {
			return strings.Contains(lower, "add") &&
				(strings.Contains(lower, "job") || strings.Contains(lower, "interview"))
		},
		handle: handleCreateJob,
	},
	{
		match: func(lower string) bool {
			return strings.Contains(lower, "move") || strings.Contains(lower, "update")
		},
		handle: handleUpdateStatus,
	},
	{
		match: func(lower string) bool {
			return strings.Contains(lower, "show") ||
				strings.Contains(lower, "list") ||
				strings.Contains(lower, "find")
		},
		handle: handleQuery,
	},
	{
		match: func(lower string) bool {
			return strings.Contains(lower, "note")
		},
		handle: handleAddNote,
	},
}

// Interpret classifies one message. History is deliberately ignored; each
// message stands alone.
func (i *Interpreter) Interpret(message string) ChatResponse {
	return i.InterpretWithCounts(message, nil)
}

// InterpretWithCounts is Interpret with the caller's live per-bucket
// counts, used by the query summary. counts may be nil.
func (i *Interpreter) InterpretWithCounts(message string, counts map[database.Status]int) ChatResponse {
	lower := strings.ToLower(message)
	for _, rule := range chatRules {
		if rule.match(lower) {
			return rule.handle(message, counts)
		}
	}
	return ChatResponse{
		Success: true,
		Message: `I can help you with:

• Adding jobs: "Add Google interview, $150k, React/Node, remote"
• Moving jobs: "Move Microsoft to Accepted"
• Querying jobs: "Show all jobs paying over $100k"
• Adding notes: "Add note to Amazon: great culture vibes"

What would you like to do?`,
	}
}

func handleCreateJob(message string, _ map[database.Status]int) ChatResponse {
	company := unknownCompany
	if m := companyPattern.FindStringSubmatch(message); m != nil {
		company = m[1]
	}

	salary := "Not specified"
	if m := salaryPattern.FindString(message); m != "" {
		salary = m
	}

	techStack := techPattern.FindAllString(message, -1)
	if techStack == nil {
		techStack = []string{}
	}

	workMode := "Not specified"
	if m := workModePattern.FindStringSubmatch(message); m != nil {
		workMode = m[1]
	}

	techSummary := "Not specified"
	if len(techStack) > 0 {
		techSummary = strings.Join(techStack, ", ")
	}

	return ChatResponse{
		Success: true,
		Message: fmt.Sprintf(`I've added %s to your "Interview Obtained" column with the following details:

• Salary: %s
• Tech Stack: %s
• Work Mode: %s

The job card will appear on your board shortly. You can open it to add more details!`,
			company, salary, techSummary, workMode),
		Data: &ChatPayload{
			Intent: IntentCreateJob,
			Entities: ChatEntities{
				Company:   company,
				Salary:    salary,
				TechStack: techStack,
				WorkMode:  workMode,
				Status:    string(database.StatusInterviewObtained),
			},
		},
	}
}

func handleUpdateStatus(message string, _ map[database.Status]int) ChatResponse {
	m := movePattern.FindStringSubmatch(message)
	if m == nil {
		return ChatResponse{
			Success: true,
			Message: `I need more information. Please specify which company to move and the target status. For example: "Move Google to Accepted"`,
		}
	}

	company := m[1]
	status := spacesPattern.ReplaceAllString(strings.ToLower(m[2]), "_")

	return ChatResponse{
		Success: true,
		Message: fmt.Sprintf(`I've moved %s to "%s" column. The card has been updated on your board.`,
			company, formatStatusName(status)),
		Data: &ChatPayload{
			Intent: IntentUpdateStatus,
			Entities: ChatEntities{
				Company: company,
				Status:  status,
			},
		},
	}
}

func handleQuery(message string, counts map[database.Status]int) ChatResponse {
	if m := queryPattern.FindStringSubmatch(message); m != nil {
		amount := m[1]
		// Static listing for now; a live salary-range query would need
		// the numeric bounds the board's display strings no longer carry.
		return ChatResponse{
			Success: true,
			Message: fmt.Sprintf(`Here are the jobs paying over $%sk:

• Google - Frontend Developer ($120k-$150k)
• Microsoft - Full Stack Engineer ($130k-$160k)
• Amazon - Software Development Engineer ($140k-$180k)
• Netflix - Senior Frontend Engineer ($170k-$200k)

You can see all details on your board or open any card for more information.`, amount),
			Data: &ChatPayload{
				Intent:   IntentQuery,
				Entities: ChatEntities{Salary: amount},
			},
		}
	}

	if counts != nil {
		var b strings.Builder
		b.WriteString("You currently have jobs in the following categories:\n\n")
		for _, status := range database.AllStatuses {
			fmt.Fprintf(&b, "• %s: %d\n", database.ColumnTitles[status], counts[status])
		}
		b.WriteString(`
Use your board to see all details, or ask me something specific like "Show jobs paying over $100k"`)
		return ChatResponse{
			Success: true,
			Message: b.String(),
			Data:    &ChatPayload{Intent: IntentQuery},
		}
	}

	return ChatResponse{
		Success: true,
		Message: `Use your board to see all details, or ask me something specific like "Show jobs paying over $100k"`,
		Data:    &ChatPayload{Intent: IntentQuery},
	}
}

func handleAddNote(message string, _ map[database.Status]int) ChatResponse {
	m := notePattern.FindStringSubmatch(message)
	if m == nil {
		return ChatResponse{
			Success: true,
			Message: `Please specify the company and note. For example: "Add note to Google: great team culture"`,
		}
	}

	company := m[1]
	note := m[2]
	return ChatResponse{
		Success: true,
		Message: fmt.Sprintf(`I've added the note %q to your %s application. You can view and edit all notes in the job detail view.`,
			note, company),
		Data: &ChatPayload{
			Intent: IntentAddNote,
			Entities: ChatEntities{
				Company: company,
				Note:    note,
			},
		},
	}
}

func formatStatusName(status string) string {
	switch status {
	case "interview_obtained":
		return "Interview Obtained"
	case "in_process":
		return "In Process"
	case "accepted":
		return "Accepted"
	case "rejected":
		return "Rejected"
	}
	return status
}
