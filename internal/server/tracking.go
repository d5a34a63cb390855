package server

import (
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	clog "github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

// Visitor is one recorded page view. IPs are hashed with a per-process salt
// before storage; the raw address never touches disk.
type Visitor struct {
	ID        int       `json:"id"`
	HashedIP  string    `json:"hashed_ip"`
	UserAgent string    `json:"user_agent"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

// VisitorStats is the aggregate view served to the admin endpoint.
type VisitorStats struct {
	TotalVisitors    int64     `json:"total_visitors"`
	UniqueVisitors   int64     `json:"unique_visitors"`
	VisitorsToday    int64     `json:"visitors_today"`
	VisitorsThisWeek int64     `json:"visitors_this_week"`
	RecentVisitors   []Visitor `json:"recent_visitors"`
}

// Tracker records page views with privacy protections: hashed IPs, DNT
// respected, operational paths skipped, and records older than twelve months
// purged.
type Tracker struct {
	db   *sql.DB
	log  *clog.Logger
	salt string
}

func NewTracker(db *sql.DB, log *clog.Logger) (*Tracker, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS visitors (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			hashed_ip TEXT NOT NULL,
			user_agent TEXT,
			path TEXT,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
		)`)
	if err != nil {
		return nil, fmt.Errorf("create visitors table: %w", err)
	}

	saltBytes := make([]byte, 32)
	if _, err := rand.Read(saltBytes); err != nil {
		return nil, fmt.Errorf("generate hashing salt: %w", err)
	}

	t := &Tracker{db: db, log: log, salt: hex.EncodeToString(saltBytes)}
	go t.cleanupOld()
	return t, nil
}

// hashIP hashes consistently per IP within this process, truncated for
// storage efficiency.
func (t *Tracker) hashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip + t.salt))
	return hex.EncodeToString(sum[:])[:16]
}

// skippedPrefixes are paths excluded from tracking: operational endpoints
// and the admin surface itself.
var skippedPrefixes = []string{"/metrics", "/healthz", "/favicon", "/api/admin"}

// Middleware records each request in the background. Requests carrying a
// DNT header are never recorded.
func (t *Tracker) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, prefix := range skippedPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}
		if c.GetHeader("DNT") == "1" {
			c.Next()
			return
		}

		go t.record(c.ClientIP(), c.GetHeader("User-Agent"), path)
		c.Next()
	}
}

func (t *Tracker) record(ip, userAgent, path string) {
	_, err := t.db.Exec(`
		INSERT INTO visitors (hashed_ip, user_agent, path, timestamp)
		VALUES (?, ?, ?, ?)`,
		t.hashIP(ip), userAgent, path, time.Now())
	if err != nil {
		t.log.Warn("recording visitor failed", "err", err)
	}
}

// Stats aggregates the visitor log.
func (t *Tracker) Stats() (*VisitorStats, error) {
	stats := &VisitorStats{}

	if err := t.db.QueryRow(`SELECT COUNT(*) FROM visitors`).Scan(&stats.TotalVisitors); err != nil {
		return nil, fmt.Errorf("count visitors: %w", err)
	}
	if err := t.db.QueryRow(`SELECT COUNT(DISTINCT hashed_ip) FROM visitors`).Scan(&stats.UniqueVisitors); err != nil {
		return nil, fmt.Errorf("count unique visitors: %w", err)
	}
	if err := t.db.QueryRow(`
		SELECT COUNT(*) FROM visitors
		WHERE DATE(timestamp) = DATE('now')`).Scan(&stats.VisitorsToday); err != nil {
		return nil, fmt.Errorf("count visitors today: %w", err)
	}
	if err := t.db.QueryRow(`
		SELECT COUNT(*) FROM visitors
		WHERE timestamp >= datetime('now', '-7 days')`).Scan(&stats.VisitorsThisWeek); err != nil {
		return nil, fmt.Errorf("count visitors this week: %w", err)
	}

	rows, err := t.db.Query(`
		SELECT id, hashed_ip, user_agent, path, timestamp
		FROM visitors
		ORDER BY timestamp DESC
		LIMIT 50`)
	if err != nil {
		return nil, fmt.Errorf("list recent visitors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var v Visitor
		if err := rows.Scan(&v.ID, &v.HashedIP, &v.UserAgent, &v.Path, &v.Timestamp); err != nil {
			continue
		}
		stats.RecentVisitors = append(stats.RecentVisitors, v)
	}
	return stats, rows.Err()
}

// cleanupOld purges records older than twelve months.
func (t *Tracker) cleanupOld() {
	result, err := t.db.Exec(`
		DELETE FROM visitors
		WHERE timestamp < datetime('now', '-12 months')`)
	if err != nil {
		t.log.Warn("visitor cleanup failed", "err", err)
		return
	}
	if deleted, _ := result.RowsAffected(); deleted > 0 {
		t.log.Info("purged old visitor records", "deleted", deleted)
	}
}
