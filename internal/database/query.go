package database

import (
	"fmt"
	"time"
)

// RunSummary - итоги одного запуска по журналу циклов
type RunSummary struct {
	RunID     string
	Cycles    int
	Attacks   int
	StartedAt time.Time
	EndedAt   time.Time
}

// VerificationStat - сколько раз действие проверялось и сколько раз дало эффект
type VerificationStat struct {
	Label     string
	Total     int
	Effective int
	AvgRatio  float64
}

// Rate возвращает долю проверок с эффектом
func (s VerificationStat) Rate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Effective) / float64(s.Total)
}

const (
	recentRunsSQL = `SELECT run_id, COUNT(*), SUM(action LIKE '%attack%' OR action LIKE '%sweep%'), MIN(created_at), MAX(created_at)
		FROM agent_cycles GROUP BY run_id ORDER BY MAX(created_at) DESC LIMIT ?`

	verificationStatsSQL = `SELECT label, COUNT(*), SUM(effect), AVG(ratio)
		FROM action_verifications GROUP BY label ORDER BY label`
)

// RecentRuns возвращает последние запуски, новые первыми
func (h *DatabaseManager) RecentRuns(limit int) ([]RunSummary, error) {
	rows, err := h.db.Query(recentRunsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения запусков: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.RunID, &r.Cycles, &r.Attacks, &r.StartedAt, &r.EndedAt); err != nil {
			return nil, fmt.Errorf("ошибка чтения запуска: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// VerificationStats возвращает статистику проверок по каждому действию
func (h *DatabaseManager) VerificationStats() ([]VerificationStat, error) {
	rows, err := h.db.Query(verificationStatsSQL)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения проверок: %w", err)
	}
	defer rows.Close()

	var stats []VerificationStat
	for rows.Next() {
		var s VerificationStat
		if err := rows.Scan(&s.Label, &s.Total, &s.Effective, &s.AvgRatio); err != nil {
			return nil, fmt.Errorf("ошибка чтения проверки: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
