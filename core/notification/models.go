package notification

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/college/core"
)

type Type string

const (
	TypeSystem   Type = "system"
	TypeGrade    Type = "grade"
	TypeHomework Type = "homework"
	TypeRemark   Type = "remark"
	TypeNews     Type = "news"
)

type Notification struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Type      Type      `db:"type" json:"type"`
	Title     string    `db:"title" json:"title"`
	Message   string    `db:"message" json:"message"`
	Link      string    `db:"link" json:"link"`
	IsRead    bool      `db:"is_read" json:"is_read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type NewNotification struct {
	UserID  string `json:"user_id" validate:"required"`
	Type    Type   `json:"type" validate:"omitempty,oneof=system grade homework remark news"`
	Title   string `json:"title" validate:"required,max=200"`
	Message string `json:"message"`
	Link    string `json:"link" validate:"max=255"`
}

func (nn *NewNotification) Validate(validate *validator.Validate) error {
	nn.Title = core.CleanString(nn.Title)
	nn.Message = core.CleanString(nn.Message)
	nn.Link = core.CleanString(nn.Link)
	if nn.Type == "" {
		nn.Type = TypeSystem
	}
	return validate.Struct(nn)
}
