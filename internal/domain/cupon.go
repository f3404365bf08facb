package domain

import (
	"strings"
	"time"
)

type Cupon struct {
	ID              string  `json:"id"`
	Codigo          string  `json:"codigo"`
	Descuento       float64 `json:"descuento"`
	FechaExpiracion Date    `json:"fechaExpiracion"`
	Activo          bool    `json:"activo"`
	UsoMaximo       int     `json:"usoMaximo"`
	UsoActual       int     `json:"usoActual"`
	Version         int     `json:"-"`
}

// NormalizeCodigo is applied to every code before it is stored or looked up.
func NormalizeCodigo(codigo string) string {
	return strings.ToUpper(strings.TrimSpace(codigo))
}

// CheckRedeemable reports why the cupon cannot be used right now, checking
// activation, then expiration, then remaining uses.
func (c *Cupon) CheckRedeemable(now time.Time) error {
	if !c.Activo {
		return Errorf(ErrRule, "cupon is not active")
	}
	if c.FechaExpiracion.BeforeDay(now) {
		return Errorf(ErrRule, "cupon has expired")
	}
	if c.UsoActual >= c.UsoMaximo {
		return Errorf(ErrRule, "cupon has reached maximum uses")
	}
	return nil
}

func (c *Cupon) Disable() error {
	if !c.Activo {
		return Errorf(ErrRule, "cupon is already disabled")
	}
	c.Activo = false
	return nil
}

func (c *Cupon) Enable() error {
	if c.Activo {
		return Errorf(ErrRule, "cupon is already enabled")
	}
	c.Activo = true
	return nil
}
