package pipeline

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xhsauto/xhsauto/internal/ai"
	"github.com/xhsauto/xhsauto/internal/note"
)

func TestCreateRunDir(t *testing.T) {
	base := t.TempDir()
	now := time.Date(2025, 10, 3, 14, 30, 5, 0, time.UTC)

	dir, err := createRunDir(base, "秋季 穿搭!", now)

	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(dir))
	assert.Equal(t, "20251003_143005_秋季_穿搭_", filepath.Base(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestSaveContent(t *testing.T) {
	dir := t.TempDir()
	content := note.TextContent{Title: "标题", Body: "正文", Tags: []string{"a", "b"}}

	require.NoError(t, saveContent(dir, content))

	data, err := os.ReadFile(filepath.Join(dir, "content.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"标题"`)
	assert.Contains(t, string(data), `"tags"`)
}

func TestSaveImages(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2025, 10, 3, 14, 30, 5, 0, time.UTC)
	images := []ai.Image{
		{Data: []byte("one"), MIMEType: "image/png"},
		{Data: []byte("two"), MIMEType: "image/jpeg"},
	}

	paths, err := saveImages(dir, "modelscope", images, now)

	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, "modelscope_image_20251003_143005_1.png", filepath.Base(paths[0]))
	assert.Equal(t, "modelscope_image_20251003_143005_2.jpg", filepath.Base(paths[1]))

	for i, p := range paths {
		assert.True(t, filepath.IsAbs(p))
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.Equal(t, images[i].Data, data)
	}
}
