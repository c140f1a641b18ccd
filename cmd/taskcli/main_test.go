package main

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"tasktracker/config"
	"tasktracker/models"
	"tasktracker/routes"
	"tasktracker/services"
	"tasktracker/testutils"
	"tasktracker/utils/token"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, cfg config.Config, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(cfg)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func newServerConfig(t *testing.T) config.Config {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutils.SetupSQLiteDB(t)
	router := gin.New()
	routes.RegisterTaskRoutes(router.Group("/api"), db, &services.TaskService{})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return config.Config{APIURL: server.URL}
}

func TestCLI_AddListToggleDelete(t *testing.T) {
	cfg := newServerConfig(t)

	out, err := runCLI(t, cfg, "add", "Buy", "Milk", "--priority", "high")
	require.NoError(t, err)
	assert.Contains(t, out, "Buy Milk")

	_, err = runCLI(t, cfg, "add", "Call mom")
	require.NoError(t, err)

	out, err = runCLI(t, cfg, "list", "--json")
	require.NoError(t, err)
	var tasks []models.Task
	require.NoError(t, json.Unmarshal([]byte(out), &tasks))
	require.Len(t, tasks, 2)
	assert.Equal(t, "Call mom", tasks[0].Title)

	var milk models.Task
	for _, task := range tasks {
		if task.Title == "Buy Milk" {
			milk = task
		}
	}
	assert.Equal(t, models.HighPriority, milk.Priority)

	out, err = runCLI(t, cfg, "toggle", milk.ID.String())
	require.NoError(t, err)
	assert.Contains(t, out, "Buy Milk is now completed")

	out, err = runCLI(t, cfg, "list", "--filter", "completed")
	require.NoError(t, err)
	assert.Contains(t, out, "2 total, 1 active, 1 completed (50%)")
	assert.Contains(t, out, "[x]")
	assert.NotContains(t, out, "Call mom")

	out, err = runCLI(t, cfg, "list", "--search", "MOM")
	require.NoError(t, err)
	assert.Contains(t, out, "Call mom")
	assert.NotContains(t, out, "Buy Milk")

	_, err = runCLI(t, cfg, "rm", milk.ID.String())
	require.NoError(t, err)

	out, err = runCLI(t, cfg, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "1 total")
}

func TestCLI_Errors(t *testing.T) {
	cfg := newServerConfig(t)

	_, err := runCLI(t, cfg, "add", "Task", "--priority", "urgent")
	assert.Error(t, err)

	_, err = runCLI(t, cfg, "add", "   ")
	assert.Error(t, err)

	_, err = runCLI(t, cfg, "list", "--filter", "archived")
	assert.Error(t, err)

	_, err = runCLI(t, cfg, "toggle", "00000000-0000-0000-0000-000000000000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestCLI_Token(t *testing.T) {
	_, err := runCLI(t, config.Config{}, "token")
	assert.Error(t, err)

	cfg := config.Config{JWTSecret: "cli-secret", JWTExpirationHours: 1}
	out, err := runCLI(t, cfg, "token", "--subject", "ops")
	require.NoError(t, err)

	claims, err := token.ValidateToken(strings.TrimSpace(out), []byte(cfg.JWTSecret))
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)
}
