package sqlite

import (
	"fmt"
	"time"

	"github.com/mandalnilabja/chatrelay/internal/storage/models"
)

// LogRequest stores a request log entry
func (s *Storage) LogRequest(log *models.RequestLog) error {
	if log == nil || log.Provider == "" || log.Outcome == "" {
		return ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStorageClosed
	}

	if log.ID == "" {
		log.ID = generateID("log")
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(`
		INSERT INTO request_logs (id, request_id, identity, provider, outcome,
			attempts, message_count, prompt_tokens, completion_tokens,
			status_code, error_message, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, log.ID, log.RequestID, nullString(log.Identity), log.Provider, log.Outcome,
		log.Attempts, log.MessageCount, log.PromptTokens, log.CompletionTokens,
		log.StatusCode, nullString(log.ErrorMessage), log.DurationMs, formatTime(log.CreatedAt))

	return err
}

// GetRequestLogs retrieves request logs with filtering, newest first.
func (s *Storage) GetRequestLogs(filter models.LogFilter) ([]*models.RequestLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStorageClosed
	}

	query := `SELECT id, request_id, COALESCE(identity, ''), provider, outcome,
		attempts, message_count, prompt_tokens, completion_tokens,
		status_code, COALESCE(error_message, ''), duration_ms, created_at
		FROM request_logs WHERE 1=1`

	var args []any

	if filter.Provider != "" {
		query += " AND provider = ?"
		args = append(args, filter.Provider)
	}
	if filter.Outcome != "" {
		query += " AND outcome = ?"
		args = append(args, filter.Outcome)
	}
	if filter.Since != nil {
		query += " AND created_at >= ?"
		args = append(args, formatTime(*filter.Since))
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		if filter.Limit <= 0 {
			query += " LIMIT -1"
		}
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*models.RequestLog
	for rows.Next() {
		var log models.RequestLog
		var created string

		err := rows.Scan(&log.ID, &log.RequestID, &log.Identity, &log.Provider, &log.Outcome,
			&log.Attempts, &log.MessageCount, &log.PromptTokens, &log.CompletionTokens,
			&log.StatusCode, &log.ErrorMessage, &log.DurationMs, &created)
		if err != nil {
			return nil, err
		}

		log.CreatedAt, err = time.ParseInLocation(timeLayout, created, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("invalid created_at %q: %w", created, err)
		}
		logs = append(logs, &log)
	}

	return logs, rows.Err()
}

// DeleteRequestLogs removes logs created before olderThan.
func (s *Storage) DeleteRequestLogs(olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrStorageClosed
	}

	result, err := s.db.Exec("DELETE FROM request_logs WHERE created_at < ?", formatTime(olderThan))
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// nullString returns nil for empty strings so nullable columns stay NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
