package designkit

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPermissionCheckResultFields tests default-allow field checks
func TestPermissionCheckResultFields(t *testing.T) {
	res := PermissionCheckResult{
		Allowed: true,
		FieldRestrictions: []FieldLevelPermission{
			{Field: "salary", Read: Bool(false), Write: Bool(false)},
			{Field: "email", Read: Bool(true), Write: Bool(false)},
			{Field: "notes"},
		},
	}

	tests := []struct {
		field string
		read  bool
		write bool
	}{
		{"salary", false, false},
		{"email", true, false},
		{"notes", true, true},
		{"unlisted", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assert.Equal(t, tt.read, res.CanReadField(tt.field))
			assert.Equal(t, tt.write, res.CanWriteField(tt.field))
		})
	}

	denied := PermissionCheckResult{Allowed: false}
	assert.False(t, denied.CanReadField("anything"))
	assert.False(t, denied.CanWriteField("anything"))
}

// TestObjectPermissionConfigJSON tests the wire field names
func TestObjectPermissionConfigJSON(t *testing.T) {
	data := []byte(`{
		"publicAccess": ["read"],
		"roles": {
			"editor": {
				"actions": ["update"],
				"fieldPermissions": [{"field": "margin", "write": false}],
				"rowPermissions": [{"actions": ["update"], "filter": "owner == user"}]
			}
		}
	}`)

	var cfg ObjectPermissionConfig
	require.NoError(t, json.Unmarshal(data, &cfg))

	assert.Equal(t, []Action{ActionRead}, cfg.PublicAccess)
	editor := cfg.Roles["editor"]
	assert.Equal(t, []Action{ActionUpdate}, editor.Actions)
	require.Len(t, editor.FieldPermissions, 1)
	assert.Nil(t, editor.FieldPermissions[0].Read)
	require.NotNil(t, editor.FieldPermissions[0].Write)
	assert.False(t, *editor.FieldPermissions[0].Write)
	assert.Equal(t, "owner == user", editor.RowPermissions[0].Filter)
}

// TestAuditEntryToModel tests conversion to the stored row
func TestAuditEntryToModel(t *testing.T) {
	entry := &AuditEntry{
		ActorID:   "admin",
		Action:    AuditActionRoleSaved,
		Role:      "editor",
		IPAddress: "10.0.0.1",
		UserAgent: "curl/8",
		RequestID: "req-1",
		Metadata:  map[string]any{"inherits": []string{"viewer"}},
	}

	before := time.Now()
	row := entry.ToModel("id-1")

	assert.Equal(t, "id-1", row.ID)
	assert.Equal(t, "admin", row.ActorID)
	assert.Equal(t, "role_saved", row.Action)
	assert.Equal(t, "editor", row.Role)
	assert.Empty(t, row.Object)
	assert.Equal(t, "10.0.0.1", row.IPAddress)
	assert.Equal(t, "curl/8", row.UserAgent)
	assert.Equal(t, "req-1", row.RequestID)
	assert.Equal(t, entry.Metadata, row.Metadata)
	assert.False(t, row.Timestamp.Before(before))
}
