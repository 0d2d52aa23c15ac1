package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studychat/internal/models"
)

func TestAddFriendSymmetry(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.rel.AddFriend(ctx, "alice", "bob"))

	friends, err := env.rel.FriendsOf(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, friends)

	friends, err = env.rel.FriendsOf(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, friends)

	are, err := env.rel.AreFriends(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.True(t, are)
}

func TestRemoveFriendRestoresBothSides(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.befriend(t, "alice", "bob")
	require.NoError(t, env.rel.RemoveFriend(ctx, "alice", "bob"))

	friends, err := env.rel.FriendsOf(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, friends)

	friends, err = env.rel.FriendsOf(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, friends)

	// 解除后可以重新添加，关系依旧对称。
	require.NoError(t, env.rel.AddFriend(ctx, "bob", "alice"))
	are, err := env.rel.AreFriends(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.True(t, are)
}

func TestAddFriendErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	assert.ErrorIs(t, env.rel.AddFriend(ctx, "alice", "alice"), ErrSelfFriend)

	env.befriend(t, "alice", "bob")
	assert.ErrorIs(t, env.rel.AddFriend(ctx, "alice", "bob"), ErrAlreadyFriends)
	assert.ErrorIs(t, env.rel.AddFriend(ctx, "bob", "alice"), ErrAlreadyFriends)

	assert.ErrorIs(t, env.rel.RemoveFriend(ctx, "alice", "carol"), ErrNotFriends)
}

func TestFriendsOfUnknownUser(t *testing.T) {
	env := newTestEnv(t)

	friends, err := env.rel.FriendsOf(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Empty(t, friends)
}

func TestCreateGroup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.rel.CreateGroup(ctx, "bob", "   ")
	assert.ErrorIs(t, err, ErrEmptyGroupName)

	groupID, err := env.rel.CreateGroup(ctx, "bob", "  一起学习  ")
	require.NoError(t, err)
	require.NotEmpty(t, groupID)

	group, err := env.rel.GetGroup(ctx, groupID)
	require.NoError(t, err)
	assert.Equal(t, "一起学习", group.Name)
	assert.Equal(t, "bob", group.Creator)
	assert.Equal(t, models.NormalKind, group.Kind)
	assert.Equal(t, []string{"bob"}, group.MemberNames())
}

func TestGroupMembership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	groupID, err := env.rel.CreateGroup(ctx, "bob", "study")
	require.NoError(t, err)

	// 只有群主才能管理成员。
	assert.ErrorIs(t, env.rel.AddMember(ctx, groupID, "carol", "alice"), ErrNotCreator)

	require.NoError(t, env.rel.AddMember(ctx, groupID, "alice", "bob"))
	assert.ErrorIs(t, env.rel.AddMember(ctx, groupID, "alice", "bob"), ErrAlreadyMember)

	assert.ErrorIs(t, env.rel.RemoveMember(ctx, groupID, "eve", "bob"), ErrNotMember)
	assert.ErrorIs(t, env.rel.RemoveMember(ctx, groupID, "bob", "bob"), ErrCreatorSelfLeave)

	require.NoError(t, env.rel.RemoveMember(ctx, groupID, "alice", "bob"))
	group, err := env.rel.GetGroup(ctx, groupID)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, group.MemberNames())
}

func TestGroupMemberInsertionOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	groupID, err := env.rel.CreateGroup(ctx, "bob", "study")
	require.NoError(t, err)
	require.NoError(t, env.rel.AddMember(ctx, groupID, "carol", "bob"))
	require.NoError(t, env.rel.AddMember(ctx, groupID, "alice", "bob"))

	group, err := env.rel.GetGroup(ctx, groupID)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "carol", "alice"}, group.MemberNames())
}

func TestGroupNotFound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.rel.GetGroup(ctx, "no-such-group")
	assert.ErrorIs(t, err, ErrGroupNotFound)
	assert.ErrorIs(t, env.rel.AddMember(ctx, "no-such-group", "alice", "bob"), ErrGroupNotFound)
	assert.ErrorIs(t, env.rel.RemoveMember(ctx, "no-such-group", "alice", "bob"), ErrGroupNotFound)
}

func TestDisbandGroupUnimplemented(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	groupID, err := env.rel.CreateGroup(ctx, "bob", "study")
	require.NoError(t, err)
	assert.ErrorIs(t, env.rel.DisbandGroup(ctx, groupID, "bob"), ErrDisbandUnimplemented)
}

func TestGroupsOfExcludesBroadcast(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	groupID, err := env.rel.CreateGroup(ctx, "bob", "study")
	require.NoError(t, err)

	groups, err := env.rel.GroupsOf(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Contains(t, groups, groupID)
	assert.NotContains(t, groups, models.BroadcastRoomID)

	all, err := env.rel.AllGroups(ctx)
	require.NoError(t, err)
	assert.Contains(t, all, models.BroadcastRoomID)
	assert.Contains(t, all, groupID)
	assert.Equal(t, models.BroadcastKind, all[models.BroadcastRoomID].Kind)
	assert.Equal(t, models.SystemSender, all[models.BroadcastRoomID].Creator)
}

func TestBroadcastID(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, "BROADCAST_ROOM", env.rel.BroadcastID())
}
