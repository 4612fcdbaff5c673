package service

import (
	"context"
	"testing"

	"github.com/mautops/payment-ledger/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMethodServiceEnsureWhitelist 测试启动时白名单方式就位且幂等
func TestMethodServiceEnsureWhitelist(t *testing.T) {
	f := newFixture(t)

	// newFixture 已调用过一次,重复调用不产生重复记录
	require.NoError(t, f.methods.EnsureWhitelist())

	all, err := f.methods.List()
	assert.NoError(t, err)
	assert.Len(t, all, len(model.WhitelistMethods))

	names := make([]string, 0, len(all))
	for _, m := range all {
		names = append(names, m.Name)
	}
	assert.ElementsMatch(t, model.WhitelistMethods, names)
}

// TestMethodServiceAdd 测试添加支付方式的幂等性
func TestMethodServiceAdd(t *testing.T) {
	f := newFixture(t)

	method, err := f.methods.Add("PromptPay")
	require.NoError(t, err)
	assert.NotZero(t, method.ID)

	// 重复添加返回现有记录
	again, err := f.methods.Add("PromptPay")
	assert.NoError(t, err)
	assert.Equal(t, method.ID, again.ID)

	// 空白名称被拒
	_, err = f.methods.Add("   ")
	assert.Error(t, err)

	custom, err := f.methods.ListCustom()
	assert.NoError(t, err)
	require.Len(t, custom, 1)
	assert.Equal(t, "PromptPay", custom[0].Name)
}

// TestMethodServiceRemoveProtected 测试白名单方式拒绝删除
func TestMethodServiceRemoveProtected(t *testing.T) {
	f := newFixture(t)

	for _, name := range model.WhitelistMethods {
		method, err := f.methodByName(t, name)
		require.NoError(t, err)
		assert.ErrorIs(t, f.methods.Remove(method.ID), ErrProtectedMethod)
	}

	// 目录保持完整
	all, err := f.methods.List()
	assert.NoError(t, err)
	assert.Len(t, all, len(model.WhitelistMethods))
}

// TestMethodServiceRemoveInUse 测试被支付引用的方式拒绝删除
func TestMethodServiceRemoveInUse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	method, err := f.methods.Add("PromptPay")
	require.NoError(t, err)

	req := submitRequest()
	req.Method = "PromptPay"
	payment, err := f.payments.SubmitCommitted(ctx, req)
	require.NoError(t, err)

	assert.ErrorIs(t, f.methods.Remove(method.ID), ErrMethodInUse)

	// 被拒后引用依然成立,任意状态都算引用
	_, err = f.payments.Decide(ctx, int64(payment.ID), testApproverID, DecisionReject)
	require.NoError(t, err)
	assert.ErrorIs(t, f.methods.Remove(method.ID), ErrMethodInUse)
}

// TestMethodServiceRemove 测试删除无引用的自定义方式
func TestMethodServiceRemove(t *testing.T) {
	f := newFixture(t)

	method, err := f.methods.Add("PromptPay")
	require.NoError(t, err)

	assert.NoError(t, f.methods.Remove(method.ID))
	_, err = f.methods.Get(method.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// 不存在的 ID
	assert.ErrorIs(t, f.methods.Remove(99999), ErrNotFound)
}

// TestMethodServicePruneUnreferenced 测试维护性清理只删零引用的自定义方式
func TestMethodServicePruneUnreferenced(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.methods.Add("PromptPay")
	require.NoError(t, err)
	_, err = f.methods.Add("TrueMoney")
	require.NoError(t, err)

	req := submitRequest()
	req.Method = "PromptPay"
	_, err = f.payments.SubmitCommitted(ctx, req)
	require.NoError(t, err)

	pruned, err := f.methods.PruneUnreferenced()
	assert.NoError(t, err)
	assert.Equal(t, 1, pruned)

	all, err := f.methods.List()
	assert.NoError(t, err)
	assert.Len(t, all, len(model.WhitelistMethods)+1)
}

// methodByName 按名称取方式,测试辅助
func (f *fixture) methodByName(t *testing.T, name string) (*model.MethodModel, error) {
	all, err := f.methods.List()
	require.NoError(t, err)
	for _, m := range all {
		if m.Name == name {
			return m, nil
		}
	}
	return nil, ErrNotFound
}
