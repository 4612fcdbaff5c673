package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRoleServiceSetAndGet 测试角色覆写式配置
func TestRoleServiceSetAndGet(t *testing.T) {
	f := newFixture(t)

	roles, err := f.roles.GetRoles()
	require.NoError(t, err)
	assert.Nil(t, roles.InitiatorID)
	require.NotNil(t, roles.ApproverID) // 夹具已配置审批人
	assert.Equal(t, testApproverID, *roles.ApproverID)
	assert.Nil(t, roles.ViewerID)

	require.NoError(t, f.roles.SetInitiator(100))
	require.NoError(t, f.roles.SetViewer(300))

	roles, err = f.roles.GetRoles()
	require.NoError(t, err)
	assert.Equal(t, int64(100), *roles.InitiatorID)
	assert.Equal(t, int64(300), *roles.ViewerID)

	// 覆写不保留历史
	require.NoError(t, f.roles.SetApprover(201))
	roles, _ = f.roles.GetRoles()
	assert.Equal(t, int64(201), *roles.ApproverID)
}

// TestRoleServiceSetAllTo 测试单人部署快捷配置
func TestRoleServiceSetAllTo(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.roles.SetAllTo(777))

	roles, err := f.roles.GetRoles()
	require.NoError(t, err)
	assert.Equal(t, int64(777), *roles.InitiatorID)
	assert.Equal(t, int64(777), *roles.ApproverID)
	assert.Equal(t, int64(777), *roles.ViewerID)
}

// TestRoleServiceSeedIfEmpty 测试默认值只在未配置时写入
func TestRoleServiceSeedIfEmpty(t *testing.T) {
	f := newFixture(t)

	// 审批人已配置,不覆盖;观察人未配置,写入默认值
	require.NoError(t, f.roles.SeedIfEmpty(999, 300))

	roles, err := f.roles.GetRoles()
	require.NoError(t, err)
	assert.Equal(t, testApproverID, *roles.ApproverID)
	assert.Equal(t, int64(300), *roles.ViewerID)

	// 再次播种不改变任何配置
	require.NoError(t, f.roles.SeedIfEmpty(888, 444))
	roles, _ = f.roles.GetRoles()
	assert.Equal(t, testApproverID, *roles.ApproverID)
	assert.Equal(t, int64(300), *roles.ViewerID)
}

// TestRoleServiceBindGroup 测试群绑定
func TestRoleServiceBindGroup(t *testing.T) {
	f := newFixture(t)

	_, ok, err := f.roles.GetGroupID()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, f.roles.BindGroup(-1001234))

	id, ok, err := f.roles.GetGroupID()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(-1001234), id)

	// 重新绑定覆盖旧值
	require.NoError(t, f.roles.BindGroup(-1005678))
	id, _, _ = f.roles.GetGroupID()
	assert.Equal(t, int64(-1005678), id)
}
