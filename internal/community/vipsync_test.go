package community_test

import (
	"context"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NadavMozeson/typescript-discord-bot/internal/community"
)

func TestSyncAll_GrantsAndRevokes(t *testing.T) {
	f := newFixture(t)
	f.discord.addMember(mainGuild, "u1")
	f.discord.addMember(mainGuild, "u3", "role-main-vip", "role-member")
	f.discord.addMember(vipGuild, "u2")
	f.discord.addMember(vipGuild, "u4", "role-vip")

	f.oracle.EXPECT().ListAllMembers(gomock.Any()).Return([]string{"u1", "u2"}, nil)

	report, err := f.svc.SyncAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, community.SyncReport{Members: 2, Granted: 2, Revoked: 2}, report)
	assert.Equal(t, []string{"role-main-vip"}, f.discord.roles(mainGuild, "u1"))
	assert.Equal(t, []string{"role-vip"}, f.discord.roles(vipGuild, "u2"))
	assert.Equal(t, []string{"role-member"}, f.discord.roles(mainGuild, "u3"))
	assert.Empty(t, f.discord.roles(vipGuild, "u4"))
}

func TestSyncAll_OracleFailure(t *testing.T) {
	f := newFixture(t)
	f.oracle.EXPECT().ListAllMembers(gomock.Any()).Return(nil, assert.AnError)

	_, err := f.svc.SyncAll(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
	assert.Empty(t, f.discord.removed)
}

func TestRequestRole(t *testing.T) {
	t.Run("member in VIP guild gets the VIP guild role", func(t *testing.T) {
		f := newFixture(t)
		f.discord.addMember(vipGuild, "u1")
		f.oracle.EXPECT().IsMember(gomock.Any(), "u1").Return(true, nil)

		granted, err := f.svc.RequestRole(context.Background(), vipGuild, "u1")
		require.NoError(t, err)
		assert.True(t, granted)
		assert.Equal(t, []string{"role-vip"}, f.discord.roles(vipGuild, "u1"))
	})

	t.Run("unknown guild falls back to the main guild", func(t *testing.T) {
		f := newFixture(t)
		f.discord.addMember(mainGuild, "u1")
		f.oracle.EXPECT().IsMember(gomock.Any(), "u1").Return(true, nil)

		granted, err := f.svc.RequestRole(context.Background(), "elsewhere", "u1")
		require.NoError(t, err)
		assert.True(t, granted)
		assert.Equal(t, []string{"role-main-vip"}, f.discord.roles(mainGuild, "u1"))
	})

	t.Run("non member gets nothing", func(t *testing.T) {
		f := newFixture(t)
		f.discord.addMember(mainGuild, "u1")
		f.oracle.EXPECT().IsMember(gomock.Any(), "u1").Return(false, nil)

		granted, err := f.svc.RequestRole(context.Background(), mainGuild, "u1")
		require.NoError(t, err)
		assert.False(t, granted)
		assert.Empty(t, f.discord.roles(mainGuild, "u1"))
	})
}

func TestUpdateUser_RemovesRolesOfLapsedMember(t *testing.T) {
	f := newFixture(t)
	f.discord.addMember(mainGuild, "u1", "role-main-vip")
	f.discord.addMember(vipGuild, "u1", "role-vip")
	f.oracle.EXPECT().IsMember(gomock.Any(), "u1").Return(false, nil)

	member, err := f.svc.UpdateUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, member)
	assert.Empty(t, f.discord.roles(mainGuild, "u1"))
	assert.Empty(t, f.discord.roles(vipGuild, "u1"))
}

func TestOnVIPJoin(t *testing.T) {
	t.Run("paying member", func(t *testing.T) {
		f := newFixture(t)
		f.discord.addMember(vipGuild, "u5")
		f.oracle.EXPECT().IsMember(gomock.Any(), "u5").Return(true, nil)

		m, _ := f.discord.GuildMember(vipGuild, "u5")
		require.NoError(t, f.svc.OnVIPJoin(context.Background(), m))

		welcome := f.chat.sentTo("welcome")
		require.Len(t, welcome, 1)
		assert.Equal(t, 0x4caf50, welcome[0].Embeds[0].Color)
		assert.Len(t, f.chat.sentTo("vip-log"), 1)
		assert.Equal(t, []string{"role-vip"}, f.discord.roles(vipGuild, "u5"))
	})

	t.Run("not a member", func(t *testing.T) {
		f := newFixture(t)
		f.discord.addMember(vipGuild, "u5")
		f.oracle.EXPECT().IsMember(gomock.Any(), "u5").Return(false, nil)

		m, _ := f.discord.GuildMember(vipGuild, "u5")
		require.NoError(t, f.svc.OnVIPJoin(context.Background(), m))

		welcome := f.chat.sentTo("welcome")
		require.Len(t, welcome, 1)
		assert.Equal(t, 0xff5252, welcome[0].Embeds[0].Color)
		assert.Empty(t, f.chat.sentTo("vip-log"))
	})
}

func TestPostHelp_OnlyInEmptyChannel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.PostHelp(ctx, "help"))
	require.NoError(t, f.svc.PostHelp(ctx, "help"))

	sent := f.chat.sentTo("help")
	require.Len(t, sent, 1)
	row := sent[0].Components[0].(discordgo.ActionsRow)
	assert.Equal(t, community.RequestRoleButton, row.Components[0].(discordgo.Button).CustomID)
}
