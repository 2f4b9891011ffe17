package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	doc, err := Load()
	require.NoError(t, err)

	for _, path := range []string{
		"/api/auth/login",
		"/api/roles/{id}",
		"/api/users/{id}/role",
		"/api/samiti/{samitiType}/{id}",
		"/api/sidebar-access",
	} {
		assert.NotNil(t, doc.Paths.Find(path), path)
	}
}
