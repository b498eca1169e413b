package news

import (
	"io"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/college/core"
)

type News struct {
	ID        string    `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Text      string    `db:"text" json:"text"`
	Tag       string    `db:"tag" json:"tag"`
	CoverURL  string    `db:"cover_url" json:"cover_url"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type NewNews struct {
	Title string `json:"title" validate:"required,max=200"`
	Text  string `json:"text" validate:"required,notblank"`
	Tag   string `json:"tag" validate:"max=50"`

	// Cover is the mandatory cover image (jpeg, png, gif, bmp or tiff).
	Cover io.Reader `json:"-"`
	// Broadcast notifies every active user.
	Broadcast bool `json:"broadcast"`
}

func (nn *NewNews) Validate(validate *validator.Validate) error {
	nn.Title = core.CleanString(nn.Title)
	nn.Text = core.CleanString(nn.Text)
	nn.Tag = core.CleanString(nn.Tag)
	if err := validate.Struct(nn); err != nil {
		return err
	}
	if nn.Cover == nil {
		return core.NewValidationError(nil, core.FieldError{Field: "cover", Error: "a cover image is required"})
	}
	return nil
}
