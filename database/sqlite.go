package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// InitDB opens the SQLite database at path and creates the schema.
func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		name TEXT,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return nil, fmt.Errorf("failed to create users table: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		company TEXT NOT NULL,
		position TEXT,
		salary_min INTEGER,
		salary_max INTEGER,
		tech_stack TEXT,
		work_mode TEXT,
		application_date TEXT,
		status TEXT NOT NULL DEFAULT 'interview_obtained',
		notes TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users(id)
	)`)
	if err != nil {
		return nil, fmt.Errorf("failed to create jobs table: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS conversations (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		full_name TEXT NOT NULL,
		phone TEXT,
		email TEXT,
		channel TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		notes TEXT,
		conversation_date TEXT,
		response_date TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users(id)
	)`)
	if err != nil {
		return nil, fmt.Errorf("failed to create conversations table: %w", err)
	}

	// Join table holds weak references; no cascade on job deletion.
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS job_conversations (
		conversation_id TEXT NOT NULL,
		job_id TEXT NOT NULL,
		PRIMARY KEY (conversation_id, job_id)
	)`)
	if err != nil {
		return nil, fmt.Errorf("failed to create job_conversations table: %w", err)
	}

	log.Println("Database initialized successfully")
	return db, nil
}

// SQLStore is the persisted Store implementation backed by SQLite.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) ListJobs(ctx context.Context, userID string) ([]Job, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, company, position, salary_min, salary_max, tech_stack,
			work_mode, application_date, status, notes
		FROM jobs
		WHERE user_id = ?
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()

	jobs := []Job{}
	for rows.Next() {
		var (
			job                  Job
			position, techStack  sql.NullString
			workMode, notes      sql.NullString
			applicationDate      sql.NullString
			salaryMin, salaryMax sql.NullInt64
			status               string
		)
		err := rows.Scan(&job.ID, &job.Company, &position, &salaryMin, &salaryMax,
			&techStack, &workMode, &applicationDate, &status, &notes)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}

		job.Position = position.String
		job.Salary = FormatSalary(nullableInt(salaryMin), nullableInt(salaryMax))
		job.TechStack = decodeTechStack(techStack.String)
		job.WorkMode = DecodeWorkMode(workMode.String)
		job.ApplicationDate = applicationDate.String
		job.Status = DecodeStatus(status)
		job.Notes = notes.String
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read jobs: %w", err)
	}
	return jobs, nil
}

func (s *SQLStore) CreateJob(ctx context.Context, userID string, params JobParams) (Job, error) {
	if userID == "" {
		return Job{}, ErrUnauthenticated
	}

	status := params.Status
	if !ValidStatus(status) {
		status = StatusInterviewObtained
	}
	applicationDate := params.ApplicationDate
	if applicationDate == "" {
		applicationDate = time.Now().Format("2006-01-02")
	}
	techStack := params.TechStack
	if techStack == nil {
		techStack = []string{}
	}

	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO jobs (id, user_id, company, position, salary_min, salary_max,
			tech_stack, work_mode, application_date, status, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, userID, params.Company, params.Position, params.SalaryMin, params.SalaryMax,
		encodeTechStack(techStack), EncodeWorkMode(params.WorkMode),
		applicationDate, EncodeStatus(status), params.Notes)
	if err != nil {
		return Job{}, fmt.Errorf("failed to insert job: %w", err)
	}

	return Job{
		ID:              id,
		Company:         params.Company,
		Position:        params.Position,
		Salary:          FormatSalary(params.SalaryMin, params.SalaryMax),
		TechStack:       techStack,
		WorkMode:        params.WorkMode,
		ApplicationDate: applicationDate,
		Status:          status,
		Notes:           params.Notes,
	}, nil
}

func (s *SQLStore) UpdateJobStatus(ctx context.Context, userID, jobID string, status Status) error {
	if userID == "" {
		return ErrUnauthenticated
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET status = ? WHERE id = ? AND user_id = ?`,
		EncodeStatus(status), jobID, userID)
	if err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}
	return checkAffected(res)
}

func (s *SQLStore) UpdateJobFields(ctx context.Context, userID, jobID string, update JobUpdate) error {
	if userID == "" {
		return ErrUnauthenticated
	}

	sets := []string{}
	args := []any{}
	if update.Position != nil {
		sets = append(sets, "position = ?")
		args = append(args, *update.Position)
	}
	if update.SalaryMin != nil {
		sets = append(sets, "salary_min = ?")
		args = append(args, *update.SalaryMin)
	}
	if update.SalaryMax != nil {
		sets = append(sets, "salary_max = ?")
		args = append(args, *update.SalaryMax)
	}
	if update.TechStack != nil {
		sets = append(sets, "tech_stack = ?")
		args = append(args, encodeTechStack(*update.TechStack))
	}
	if update.WorkMode != nil {
		sets = append(sets, "work_mode = ?")
		args = append(args, EncodeWorkMode(*update.WorkMode))
	}
	if update.Notes != nil {
		sets = append(sets, "notes = ?")
		args = append(args, *update.Notes)
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, jobID, userID)
	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET `+strings.Join(sets, ", ")+` WHERE id = ? AND user_id = ?`, args...)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	return checkAffected(res)
}

func (s *SQLStore) DeleteJob(ctx context.Context, userID, jobID string) error {
	if userID == "" {
		return ErrUnauthenticated
	}

	// Linked-id rows in job_conversations are intentionally left behind.
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM jobs WHERE id = ? AND user_id = ?`, jobID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	return checkAffected(res)
}

func (s *SQLStore) ListConversations(ctx context.Context, userID string) ([]Conversation, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, full_name, phone, email, channel, status, notes,
			conversation_date, response_date
		FROM conversations
		WHERE user_id = ?
		ORDER BY conversation_date DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	defer rows.Close()

	conversations := []Conversation{}
	for rows.Next() {
		var (
			conv                   Conversation
			phone, email, notes    sql.NullString
			convDate, responseDate sql.NullString
			channel, status        string
		)
		err := rows.Scan(&conv.ID, &conv.FullName, &phone, &email, &channel,
			&status, &notes, &convDate, &responseDate)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}

		conv.Phone = phone.String
		conv.Email = email.String
		conv.Channel = Channel(channel)
		conv.Status = ConversationStatus(status)
		conv.Notes = notes.String
		conv.ConversationDate = convDate.String
		conv.ResponseDate = responseDate.String
		conv.LinkedJobs = []string{}
		conversations = append(conversations, conv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read conversations: %w", err)
	}

	// Attach linked job ids from the join table.
	linkRows, err := s.db.QueryContext(ctx, `
		SELECT jc.conversation_id, jc.job_id
		FROM job_conversations jc
		JOIN conversations c ON c.id = jc.conversation_id
		WHERE c.user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversation links: %w", err)
	}
	defer linkRows.Close()

	links := map[string][]string{}
	for linkRows.Next() {
		var convID, jobID string
		if err := linkRows.Scan(&convID, &jobID); err != nil {
			return nil, fmt.Errorf("failed to scan conversation link: %w", err)
		}
		links[convID] = append(links[convID], jobID)
	}
	if err := linkRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read conversation links: %w", err)
	}
	for i := range conversations {
		if ids, ok := links[conversations[i].ID]; ok {
			conversations[i].LinkedJobs = ids
		}
	}

	return conversations, nil
}

func (s *SQLStore) CreateConversation(ctx context.Context, userID string, params ConversationParams) (Conversation, error) {
	if userID == "" {
		return Conversation{}, ErrUnauthenticated
	}

	status := params.Status
	if status == "" {
		status = ConversationPending
	}
	convDate := params.ConversationDate
	if convDate == "" {
		convDate = time.Now().Format("2006-01-02")
	}

	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversations (id, user_id, full_name, phone, email, channel,
			status, notes, conversation_date, response_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, userID, params.FullName, params.Phone, params.Email, string(params.Channel),
		string(status), params.Notes, convDate, params.ResponseDate)
	if err != nil {
		return Conversation{}, fmt.Errorf("failed to insert conversation: %w", err)
	}

	return Conversation{
		ID:               id,
		FullName:         params.FullName,
		Phone:            params.Phone,
		Email:            params.Email,
		Channel:          params.Channel,
		Status:           status,
		Notes:            params.Notes,
		ConversationDate: convDate,
		ResponseDate:     params.ResponseDate,
		LinkedJobs:       []string{},
	}, nil
}

func (s *SQLStore) UpdateConversation(ctx context.Context, userID, convID string, params ConversationParams) error {
	if userID == "" {
		return ErrUnauthenticated
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE conversations
		SET full_name = ?, phone = ?, email = ?, channel = ?, status = ?,
			notes = ?, conversation_date = ?, response_date = ?
		WHERE id = ? AND user_id = ?`,
		params.FullName, params.Phone, params.Email, string(params.Channel),
		string(params.Status), params.Notes, params.ConversationDate,
		params.ResponseDate, convID, userID)
	if err != nil {
		return fmt.Errorf("failed to update conversation: %w", err)
	}
	return checkAffected(res)
}

func (s *SQLStore) DeleteConversation(ctx context.Context, userID, convID string) error {
	if userID == "" {
		return ErrUnauthenticated
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM conversations WHERE id = ? AND user_id = ?`, convID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	if err := checkAffected(res); err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`DELETE FROM job_conversations WHERE conversation_id = ?`, convID)
	if err != nil {
		return fmt.Errorf("failed to delete conversation links: %w", err)
	}
	return nil
}

func (s *SQLStore) LinkConversationToJob(ctx context.Context, userID, convID, jobID string) error {
	if userID == "" {
		return ErrUnauthenticated
	}

	// INSERT OR IGNORE keeps the link set-valued; duplicate calls are no-ops.
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO job_conversations (conversation_id, job_id)
		VALUES (?, ?)`, convID, jobID)
	if err != nil {
		return fmt.Errorf("failed to link conversation to job: %w", err)
	}
	return nil
}

func (s *SQLStore) UnlinkConversationFromJob(ctx context.Context, userID, convID, jobID string) error {
	if userID == "" {
		return ErrUnauthenticated
	}

	_, err := s.db.ExecContext(ctx, `
		DELETE FROM job_conversations
		WHERE conversation_id = ? AND job_id = ?`, convID, jobID)
	if err != nil {
		return fmt.Errorf("failed to unlink conversation from job: %w", err)
	}
	return nil
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullableInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

func encodeTechStack(stack []string) string {
	if len(stack) == 0 {
		return "[]"
	}
	b, err := json.Marshal(stack)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func decodeTechStack(s string) []string {
	if s == "" {
		return []string{}
	}
	var stack []string
	if err := json.Unmarshal([]byte(s), &stack); err != nil {
		return []string{}
	}
	return stack
}
