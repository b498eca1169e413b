package news_test

import (
	"bytes"
	"context"
	"image/color"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/college/core"
	"github.com/trezcool/college/core/news"
	"github.com/trezcool/college/tests"
)

func pngCover(t *testing.T, width, height int) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	img := imaging.New(width, height, color.NRGBA{R: 30, G: 90, B: 160, A: 255})
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	return &buf
}

func TestService_Create(t *testing.T) {
	app := testutil.NewApp(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		nn        news.NewNews
		wantField string
	}{
		{name: "missing title", nn: news.NewNews{Text: "Body", Cover: pngCover(t, 10, 10)}, wantField: "title"},
		{name: "blank text", nn: news.NewNews{Title: "Open day", Text: "   ", Cover: pngCover(t, 10, 10)}, wantField: "text"},
		{name: "missing cover", nn: news.NewNews{Title: "Open day", Text: "Body"}, wantField: "cover"},
		{name: "not an image", nn: news.NewNews{Title: "Open day", Text: "Body", Cover: strings.NewReader("lol")}, wantField: "cover"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := app.News.Create(ctx, tt.nn)
			assert.Contains(t, core.FieldErrors(err, app.Translator), tt.wantField)
		})
	}

	t.Run("cover is downscaled", func(t *testing.T) {
		n, err := app.News.Create(ctx, news.NewNews{
			Title: " Open day ",
			Text:  "Doors open at 10:00",
			Tag:   "events",
			Cover: pngCover(t, 2000, 1000),
		})
		require.NoError(t, err)
		assert.Equal(t, "Open day", n.Title)
		assert.Equal(t, "/media/news/"+n.ID+".jpg", n.CoverURL)

		img, err := imaging.Open(filepath.Join(app.Media.Dir, "news", n.ID+".jpg"))
		require.NoError(t, err)
		assert.Equal(t, 1280, img.Bounds().Dx())
		assert.Equal(t, 640, img.Bounds().Dy())
	})

	t.Run("small cover is kept", func(t *testing.T) {
		n, err := app.News.Create(ctx, news.NewNews{Title: "Tiny", Text: "Body", Cover: pngCover(t, 40, 20)})
		require.NoError(t, err)
		img, err := imaging.Open(filepath.Join(app.Media.Dir, "news", n.ID+".jpg"))
		require.NoError(t, err)
		assert.Equal(t, 40, img.Bounds().Dx())
	})

	recent, err := app.News.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
}

func TestService_CreateBroadcast(t *testing.T) {
	app := testutil.NewApp(t)
	ctx := context.Background()
	active := app.CreateUser(t, "Asel", "asel", "", "", true)
	inactive := app.CreateUser(t, "Bolot", "bolot", "", "", false)

	_, err := app.News.Create(ctx, news.NewNews{Title: "Quiet", Text: "Body", Cover: pngCover(t, 10, 10)})
	require.NoError(t, err)
	n, err := app.Notifications.UnreadCount(ctx, active.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = app.News.Create(ctx, news.NewNews{Title: "Loud", Text: "Body", Cover: pngCover(t, 10, 10), Broadcast: true})
	require.NoError(t, err)

	notes, err := app.Notifications.List(ctx, active.ID, 10)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Loud", notes[0].Title)
	assert.Equal(t, "/news", notes[0].Link)

	n, err = app.Notifications.UnreadCount(ctx, inactive.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}
