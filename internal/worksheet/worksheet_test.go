package worksheet

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"mathdrill/internal/generator"
	"mathdrill/internal/task"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableTasks(t *testing.T) []*task.Task {
	t.Helper()
	tasks := generator.NewSeeded(1).Multiplication([]int{3, 7}, true)
	require.NotEmpty(t, tasks)
	for i, tt := range tasks {
		tasks[i] = tt.WithDisplay(task.Typographic())
	}
	return tasks
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	err := NewWriter(DefaultConfig()).Write(&buf, generator.Multiplication, tableTasks(t))
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestWrite_AnswerKeyAddsPage(t *testing.T) {
	tasks := tableTasks(t)

	var withKey, withoutKey bytes.Buffer
	require.NoError(t, NewWriter(Config{AnswerKey: true}).Write(&withKey, generator.Multiplication, tasks))
	require.NoError(t, NewWriter(Config{}).Write(&withoutKey, generator.Multiplication, tasks))

	assert.Greater(t, withKey.Len(), withoutKey.Len())
}

func TestWrite_NoTasks(t *testing.T) {
	var buf bytes.Buffer
	err := NewWriter(DefaultConfig()).Write(&buf, generator.Sum, nil)
	assert.ErrorIs(t, err, ErrNoTasks)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sheet.pdf")
	tasks := generator.NewSeeded(2).Sum(generator.Range(1, 5), 10, true)

	require.NoError(t, NewWriter(DefaultConfig()).WriteFile(path, generator.Sum, tasks))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Multiplication Worksheet", Title(generator.Multiplication))
	assert.Equal(t, "Sum Worksheet", Title(generator.Sum))
}
