package designkit

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPolicy() *Policy {
	p := NewPolicy()
	p.DefineRole("viewer").Label("Viewer").
		DefineRole("editor").Inherits("viewer").
		DefineRole("admin").Inherits("editor")

	p.Object("orders").
		Public(ActionExport).
		Grant("viewer").Actions(ActionRead).
		Grant("editor").Actions(ActionCreate, ActionUpdate).Field("margin", Bool(false), Bool(false)).
		Grant("admin").Actions(ActionDelete)
	return p
}

// TestNewStore tests store construction and Check
func TestNewStore(t *testing.T) {
	p := testPolicy()
	store := NewStore(StoreConfig{
		Roles:       p.Roles,
		Permissions: p.Permissions,
		UserRoles:   []string{"editor"},
		User:        &User{ID: "u1", Name: "Ada"},
	})

	assert.True(t, store.Can("orders", ActionRead))
	assert.True(t, store.Can("orders", ActionUpdate))
	assert.False(t, store.Can("orders", ActionDelete))
	assert.True(t, store.Can("orders", ActionExport))
	assert.True(t, store.Can("customers", ActionDelete))

	res := store.Check("orders", ActionUpdate, nil)
	assert.False(t, res.CanWriteField("margin"))

	require.NotNil(t, store.User())
	assert.Equal(t, "u1", store.User().ID)
	assert.Equal(t, []string{"editor", "viewer"}, store.EffectiveRoles())
}

// TestStoreSettersTakeEffect tests that checks read the latest state
func TestStoreSettersTakeEffect(t *testing.T) {
	p := testPolicy()
	store := NewStoreFromPolicy(p, "viewer")
	assert.False(t, store.Can("orders", ActionDelete))

	store.SetUserRoles([]string{"admin"})
	assert.True(t, store.Can("orders", ActionDelete))
	assert.Equal(t, []string{"admin"}, store.UserRoles())

	store.SetPermissions(Permissions{"orders": {Roles: map[string]RolePermission{}}})
	assert.False(t, store.Can("orders", ActionRead))

	store.SetPermissions(p.Permissions)
	store.SetRoles(nil)
	assert.False(t, store.Can("orders", ActionRead), "admin no longer inherits viewer")

	store.SetPolicy(p)
	assert.True(t, store.Can("orders", ActionRead))
}

// TestStoreCheckAnyAll tests the multi-action helpers
func TestStoreCheckAnyAll(t *testing.T) {
	store := NewStoreFromPolicy(testPolicy(), "editor")

	assert.True(t, store.CheckAny("orders", ActionDelete, ActionUpdate))
	assert.False(t, store.CheckAny("orders", ActionDelete, ActionShare))
	assert.False(t, store.CheckAny("orders"))

	assert.True(t, store.CheckAll("orders", ActionRead, ActionUpdate))
	assert.False(t, store.CheckAll("orders", ActionRead, ActionDelete))
	assert.True(t, store.CheckAll("orders"))
}

// TestDefaultStore tests the fail-open store
func TestDefaultStore(t *testing.T) {
	store := DefaultStore()

	for _, action := range []Action{ActionCreate, ActionRead, ActionDelete, "anything"} {
		assert.True(t, store.Can("orders", action))
	}
	assert.Nil(t, store.User())
	assert.Empty(t, store.UserRoles())
}

// TestStoreForUser tests deriving a store for another user
func TestStoreForUser(t *testing.T) {
	base := NewStoreFromPolicy(testPolicy())
	admin := base.ForUser([]string{"admin"}, &User{ID: "a"})
	viewer := base.ForUser([]string{"viewer"}, nil)

	assert.True(t, admin.Can("orders", ActionDelete))
	assert.False(t, viewer.Can("orders", ActionDelete))
	assert.False(t, base.Can("orders", ActionRead))
	assert.Equal(t, "a", admin.User().ID)
	assert.Nil(t, viewer.User())
}

// TestStoreUserRolesIsACopy tests that callers cannot mutate the store's roles
func TestStoreUserRolesIsACopy(t *testing.T) {
	store := NewStoreFromPolicy(testPolicy(), "viewer")

	roles := store.UserRoles()
	roles[0] = "admin"

	assert.Equal(t, []string{"viewer"}, store.UserRoles())
}

// TestStoreConcurrentAccess tests checks racing with setters
func TestStoreConcurrentAccess(t *testing.T) {
	p := testPolicy()
	store := NewStoreFromPolicy(p, "viewer")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Check("orders", ActionRead, nil)
		}()
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				store.SetUserRoles([]string{"admin"})
			} else {
				store.SetPolicy(p)
			}
		}(i)
	}
	wg.Wait()

	assert.True(t, store.Can("orders", ActionRead))
}
