package academic

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/college/core"
)

// Group is a study group (eg: "PO-1").
type Group struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Code      string    `db:"code" json:"code"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Subject struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Code      string    `db:"code" json:"code"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type NewGroup struct {
	Name string `json:"name" validate:"required,max=100"`
	Code string `json:"code" validate:"required,max=32,code"`
}

func (ng *NewGroup) Validate(validate *validator.Validate) error {
	ng.Name = core.CleanString(ng.Name)
	ng.Code = normalizeCode(ng.Code)
	return validate.Struct(ng)
}

type NewSubject struct {
	Name string `json:"name" validate:"required,max=150"`
	Code string `json:"code" validate:"required,max=32,code"`
}

func (ns *NewSubject) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Code = normalizeCode(ns.Code)
	return validate.Struct(ns)
}
