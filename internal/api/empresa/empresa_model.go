package empresa

import (
	"fmt"
	"unicode/utf8"
)

const (
	maxCedRucLength          = 20
	maxRazonSocialLength     = 100
	maxNombreComercialLength = 100
)

// Empresa is a row of the empresas table. EmpresaID is assigned by the
// store on creation and immutable afterwards.
type Empresa struct {
	EmpresaID            int     `json:"empresaId"`
	CedRuc               string  `json:"cedRuc"`
	RazonSocial          string  `json:"razonSocial"`
	NombreComercial      *string `json:"nombreComercial,omitempty"`
	ObligadoContabilidad *bool   `json:"obligadoContabilidad,omitempty"`
	FechaDoc             *string `json:"fechaDoc,omitempty"`
	Estado               *string `json:"estado,omitempty"`
}

// Validate returns every constraint violation on the record, or nil.
// Lengths are counted in characters, matching the VARCHAR columns.
func (e *Empresa) Validate() []string {
	var errs []string
	if e.CedRuc == "" {
		errs = append(errs, "The CedRuc field is required.")
	} else if utf8.RuneCountInString(e.CedRuc) > maxCedRucLength {
		errs = append(errs, fmt.Sprintf("The field CedRuc must be a string with a maximum length of %d.", maxCedRucLength))
	}
	if e.RazonSocial == "" {
		errs = append(errs, "The RazonSocial field is required.")
	} else if utf8.RuneCountInString(e.RazonSocial) > maxRazonSocialLength {
		errs = append(errs, fmt.Sprintf("The field RazonSocial must be a string with a maximum length of %d.", maxRazonSocialLength))
	}
	if e.NombreComercial != nil && utf8.RuneCountInString(*e.NombreComercial) > maxNombreComercialLength {
		errs = append(errs, fmt.Sprintf("The field NombreComercial must be a string with a maximum length of %d.", maxNombreComercialLength))
	}
	return errs
}
