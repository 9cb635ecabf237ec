package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDbRole(t *testing.T) {
	for _, valid := range []string{"OWNER", "ADMIN", "READWRITE", "READONLY"} {
		role, err := ParseDbRole(valid)
		require.NoError(t, err)
		assert.Equal(t, DbRole(valid), role)
	}

	for _, invalid := range []string{"", "owner", "Admin", "WRITE", "root"} {
		_, err := ParseDbRole(invalid)
		assert.Error(t, err, "expected %q to be rejected", invalid)
	}
}

func TestAtLeast_Ordering(t *testing.T) {
	assert.True(t, RoleOwner.AtLeast(RoleOwner))
	assert.True(t, RoleOwner.AtLeast(RoleReadOnly))
	assert.True(t, RoleAdmin.AtLeast(RoleReadWrite))
	assert.True(t, RoleReadWrite.AtLeast(RoleReadOnly))

	assert.False(t, RoleAdmin.AtLeast(RoleOwner))
	assert.False(t, RoleReadWrite.AtLeast(RoleAdmin))
	assert.False(t, RoleReadOnly.AtLeast(RoleReadWrite))
}

func TestGrantStatement_Templates(t *testing.T) {
	tests := []struct {
		role DbRole
		want string
	}{
		{RoleOwner, "GRANT ALL PRIVILEGES ON `shop`.* TO 'shop_alice'@'%' WITH GRANT OPTION"},
		{RoleAdmin, "GRANT ALL PRIVILEGES ON `shop`.* TO 'shop_alice'@'%'"},
		{RoleReadWrite, "GRANT SELECT, INSERT, UPDATE, DELETE ON `shop`.* TO 'shop_alice'@'%'"},
		{RoleReadOnly, "GRANT SELECT ON `shop`.* TO 'shop_alice'@'%'"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.role.GrantStatement("shop", "shop_alice"), "role %s", tt.role)
	}
}
