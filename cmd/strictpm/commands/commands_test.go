package commands

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strictpm/core/internal/domain/entities"
)

func useSQLite(t *testing.T) {
	t.Helper()
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "cli.db"))
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "")
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, NewVersionCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "StrictPM v"+Version)
}

func TestTasksCommandsRoundTrip(t *testing.T) {
	useSQLite(t)

	out, err := execute(t, NewTasksCommand(), "add", "Write blog post",
		"--duration", "50", "--tag", "work", "--date", "2024-05-01", "--subtask", "Draft", "--subtask", "Edit")
	require.NoError(t, err)
	assert.Contains(t, out, "Task created:")

	out, err = execute(t, NewTasksCommand(), "list", "--date", "2024-05-01", "--json")
	require.NoError(t, err)

	var tasks []entities.Task
	require.NoError(t, json.Unmarshal([]byte(out), &tasks))
	require.Len(t, tasks, 1)
	task := tasks[0]
	assert.Equal(t, "Write blog post", task.Title)
	assert.Equal(t, entities.TaskTagWork, task.Tag)
	assert.Equal(t, 50, task.EstimatedDuration)
	assert.Len(t, task.Subtasks, 2)

	out, err = execute(t, NewTasksCommand(), "start", task.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "in-progress")

	_, err = execute(t, NewTasksCommand(), "start", task.ID)
	assert.ErrorIs(t, err, entities.ErrInvalidTransition)

	out, err = execute(t, NewTasksCommand(), "toggle", task.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "completed")

	out, err = execute(t, NewTasksCommand(), "list")
	require.NoError(t, err)
	assert.Contains(t, out, "0/2")
	assert.Contains(t, out, "Write blog post")

	_, err = execute(t, NewTasksCommand(), "delete", task.ID)
	require.NoError(t, err)

	_, err = execute(t, NewTasksCommand(), "delete", task.ID)
	assert.ErrorIs(t, err, entities.ErrTaskNotFound)
}

func TestTasksAddRejectsUnknownTag(t *testing.T) {
	useSQLite(t)

	_, err := execute(t, NewTasksCommand(), "add", "Something", "--tag", "chores")
	assert.ErrorIs(t, err, entities.ErrInvalidTag)
}

func TestReviewRequiresAPIKey(t *testing.T) {
	useSQLite(t)

	_, err := execute(t, NewReviewCommand())
	assert.ErrorContains(t, err, "api key is required")
}
