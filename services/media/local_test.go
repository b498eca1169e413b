package mediasvc

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_Put(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStorage(dir, "/media/")

	url, err := s.Put(context.Background(), "news/cover.jpg", strings.NewReader("jpeg"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "/media/news/cover.jpg", url)

	content, err := os.ReadFile(filepath.Join(dir, "news", "cover.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(content))
}

func TestCleanKey(t *testing.T) {
	tests := []struct {
		key     string
		want    string
		wantErr bool
	}{
		{key: "news/a.jpg", want: "news/a.jpg"},
		{key: "/news/a.jpg", want: "news/a.jpg"},
		{key: "../../etc/passwd", want: "etc/passwd"},
		{key: "news/../../a.jpg", want: "a.jpg"},
		{key: "", wantErr: true},
		{key: "  ", wantErr: true},
		{key: "/", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := cleanKey(tt.key)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidKey)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
