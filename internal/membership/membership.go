package membership

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/NadavMozeson/typescript-discord-bot/internal/config"
)

// discordMetaKey is the usermeta key the WordPress Discord plugin stores the user id under
const discordMetaKey = "_ets_pmpro_discord_user_id"

// Oracle answers whether Discord users hold a paid membership. It is read only.
//
//go:generate mockgen -source=membership.go -destination=../mocks/membership.go -package=mocks -mock_names=Oracle=MockOracle
type Oracle interface {
	IsMember(ctx context.Context, discordID string) (bool, error)
	ListAllMembers(ctx context.Context) ([]string, error)
	// ListExpiring returns members whose membership ends within the given window
	ListExpiring(ctx context.Context, within time.Duration) ([]string, error)
}

// MySQLOracle reads Paid Memberships Pro tables of the WordPress site
type MySQLOracle struct {
	db       *sql.DB
	levelIDs []int
	timeout  time.Duration
}

// Open connects to the membership database described by cfg
func Open(cfg config.MembershipConfig) (*MySQLOracle, error) {
	db, err := sql.Open("mysql", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open membership database: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(5 * time.Minute)
	return New(db, cfg.LevelIDs, cfg.QueryTimeout), nil
}

// New wraps an open database handle
func New(db *sql.DB, levelIDs []int, timeout time.Duration) *MySQLOracle {
	return &MySQLOracle{db: db, levelIDs: levelIDs, timeout: timeout}
}

// DSN builds the driver connection string
func DSN(cfg config.MembershipConfig) string {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	mc.DBName = cfg.DBName
	mc.ParseTime = true
	if cfg.QueryTimeout > 0 {
		mc.Timeout = cfg.QueryTimeout
		mc.ReadTimeout = cfg.QueryTimeout
	}
	return mc.FormatDSN()
}

func (o *MySQLOracle) Ping(ctx context.Context) error {
	return o.db.PingContext(ctx)
}

func (o *MySQLOracle) Close() error {
	return o.db.Close()
}

func (o *MySQLOracle) IsMember(ctx context.Context, discordID string) (bool, error) {
	ctx, cancel := o.withTimeout(ctx)
	defer cancel()

	query, args := isMemberQuery(discordID, o.levelIDs)
	var n int
	if err := o.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return n > 0, nil
}

func (o *MySQLOracle) ListAllMembers(ctx context.Context) ([]string, error) {
	ctx, cancel := o.withTimeout(ctx)
	defer cancel()

	query, args := allMembersQuery(o.levelIDs)
	return o.discordIDs(ctx, query, args)
}

func (o *MySQLOracle) ListExpiring(ctx context.Context, within time.Duration) ([]string, error) {
	ctx, cancel := o.withTimeout(ctx)
	defer cancel()

	query, args := expiringQuery(o.levelIDs, within)
	return o.discordIDs(ctx, query, args)
}

func (o *MySQLOracle) discordIDs(ctx context.Context, query string, args []any) ([]string, error) {
	rows, err := o.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (o *MySQLOracle) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.timeout)
}

// activeMembership filters rows of wp_pmpro_memberships_users to current paid levels
func activeMembership(levelIDs []int) (string, []any) {
	placeholders := make([]string, len(levelIDs))
	args := make([]any, len(levelIDs))
	for i, id := range levelIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	levels := strings.Join(placeholders, ", ")
	if levels == "" {
		levels = "NULL"
	}
	return "membership_id IN (" + levels + ") AND status = 'active'", args
}

func isMemberQuery(discordID string, levelIDs []int) (string, []any) {
	active, args := activeMembership(levelIDs)
	query := `SELECT COUNT(1) FROM wp_pmpro_memberships_users
		WHERE user_id IN (SELECT user_id FROM wp_usermeta WHERE meta_key = ? AND meta_value = ?)
		AND ` + active + `
		AND (enddate IS NULL OR enddate = '0000-00-00 00:00:00' OR enddate > NOW())`
	return query, append([]any{discordMetaKey, discordID}, args...)
}

func allMembersQuery(levelIDs []int) (string, []any) {
	active, args := activeMembership(levelIDs)
	query := `SELECT meta_value FROM wp_usermeta
		WHERE meta_key = ?
		AND user_id IN (SELECT user_id FROM wp_pmpro_memberships_users WHERE ` + active + `
			AND (enddate IS NULL OR enddate = '0000-00-00 00:00:00' OR enddate > NOW()))`
	return query, append([]any{discordMetaKey}, args...)
}

func expiringQuery(levelIDs []int, within time.Duration) (string, []any) {
	active, args := activeMembership(levelIDs)
	query := `SELECT meta_value FROM wp_usermeta
		WHERE meta_key = ?
		AND user_id IN (SELECT user_id FROM wp_pmpro_memberships_users WHERE ` + active + `
			AND enddate > NOW() AND enddate <= DATE_ADD(NOW(), INTERVAL ? SECOND))`
	args = append([]any{discordMetaKey}, args...)
	return query, append(args, int64(within/time.Second))
}
