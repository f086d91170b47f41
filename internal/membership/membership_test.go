package membership

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/NadavMozeson/typescript-discord-bot/internal/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.MembershipConfig{
		Host:         "db.example.com",
		Port:         3306,
		User:         "reader",
		Password:     "secret",
		DBName:       "wordpress",
		QueryTimeout: 5 * time.Second,
	})

	assert.True(t, strings.HasPrefix(dsn, "reader:secret@tcp(db.example.com:3306)/wordpress?"), dsn)
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "timeout=5s")
}

func TestIsMemberQuery_BindsEverything(t *testing.T) {
	query, args := isMemberQuery("123", []int{4, 5, 6})

	assert.Equal(t, strings.Count(query, "?"), len(args))
	assert.Contains(t, query, "membership_id IN (?, ?, ?)")
	assert.NotContains(t, query, "123")
	assert.Equal(t, []any{discordMetaKey, "123", 4, 5, 6}, args)
}

func TestExpiringQuery(t *testing.T) {
	query, args := expiringQuery([]int{4}, 7*24*time.Hour)

	assert.Equal(t, strings.Count(query, "?"), len(args))
	assert.Equal(t, int64(7*24*3600), args[len(args)-1])
	assert.Contains(t, query, "DATE_ADD(NOW(), INTERVAL ? SECOND)")
}

func TestAllMembersQuery_NoLevels(t *testing.T) {
	query, args := allMembersQuery(nil)

	assert.Contains(t, query, "membership_id IN (NULL)")
	assert.Equal(t, []any{discordMetaKey}, args)
}
